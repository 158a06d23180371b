// Package file provides file-based persistence for automations. Every
// automation is stored as one JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	mu   sync.RWMutex
	root string
	now  func() time.Time
}

// NewPersistence creates a new instance of Persistence with the specified root
// directory. A file:// prefix is accepted.
func NewPersistence(root string) *Persistence {
	return &Persistence{
		root: strings.Replace(root, "file://", "", 1),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) dir() string {
	return filepath.Join(fp.root, "automations")
}

func (fp *Persistence) path(id string) string {
	return filepath.Join(fp.dir(), id+".json")
}

// Automations returns every stored automation, newest first.
func (fp *Persistence) Automations(ctx context.Context) ([]*models.Automation, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(fp.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list automation files: %w", err)
	}

	automations := make([]*models.Automation, 0, len(files))

	for _, file := range files {
		automation, err := fp.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	sort.Slice(automations, func(i, j int) bool {
		if automations[i].CreatedAt.Equal(automations[j].CreatedAt) {
			return automations[i].ID < automations[j].ID
		}

		return automations[i].CreatedAt.After(automations[j].CreatedAt)
	})

	return automations, nil
}

// AutomationByID returns persistence.ErrAutomationNotFound for unknown ids.
func (fp *Persistence) AutomationByID(_ context.Context, id string) (*models.Automation, error) {
	if !validID(id) {
		return nil, persistence.NewAutomationError("GetByID", id, persistence.ErrAutomationNotFound)
	}

	fp.mu.RLock()
	defer fp.mu.RUnlock()

	return fp.read(id)
}

func (fp *Persistence) SaveAutomation(_ context.Context, automation *models.Automation) error {
	if err := persistence.PrepareForSave(automation, fp.now()); err != nil {
		return err
	}

	if !validID(automation.ID) {
		return persistence.NewAutomationError("Save", automation.ID, persistence.ErrInvalidAutomation)
	}

	data, err := json.MarshalIndent(automation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal automation: %w", err)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.MkdirAll(fp.dir(), 0o750); err != nil {
		return fmt.Errorf("failed to create automations directory: %w", err)
	}

	tmp := fp.path(automation.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write automation file: %w", err)
	}

	if err := os.Rename(tmp, fp.path(automation.ID)); err != nil {
		return fmt.Errorf("failed to move automation file into place: %w", err)
	}

	return nil
}

func (fp *Persistence) DeleteAutomation(_ context.Context, id string) error {
	if !validID(id) {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete automation file: %w", err)
	}

	return nil
}

func (fp *Persistence) read(id string) (*models.Automation, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewAutomationError("GetByID", id, persistence.ErrAutomationNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read automation file: %w", err)
	}

	var automation models.Automation
	if err := json.Unmarshal(data, &automation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation %s: %w", id, err)
	}

	return &automation, nil
}

// validID rejects ids that would escape the automations directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
