// Package templates supplies predefined automation templates and applies them
// to an editor graph.
package templates

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
)

//go:embed catalogue/*.yaml
var builtin embed.FS

// Source supplies templates on demand. Returned templates are copies.
type Source interface {
	Templates(ctx context.Context) ([]*models.AutomationTemplate, error)
	Template(ctx context.Context, id string) (*models.AutomationTemplate, error)
}

// Catalogue is an in-memory Source keeping templates in insertion order.
type Catalogue struct {
	mu        sync.RWMutex
	order     []string
	templates map[string]*models.AutomationTemplate
}

func NewCatalogue(templates ...*models.AutomationTemplate) *Catalogue {
	catalogue := &Catalogue{
		order:     make([]string, 0, len(templates)),
		templates: make(map[string]*models.AutomationTemplate, len(templates)),
	}

	for _, template := range templates {
		catalogue.Add(template)
	}

	return catalogue
}

// Add stores template, replacing one with the same id in place.
func (c *Catalogue) Add(template *models.AutomationTemplate) {
	if template == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.templates[template.ID]; !exists {
		c.order = append(c.order, template.ID)
	}

	c.templates[template.ID] = copyTemplate(template)
}

func (c *Catalogue) Templates(_ context.Context) ([]*models.AutomationTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.AutomationTemplate, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyTemplate(c.templates[id]))
	}

	return out, nil
}

func (c *Catalogue) Template(_ context.Context, id string) (*models.AutomationTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	template, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	return copyTemplate(template), nil
}

func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.order)
}

// Builtin returns the catalogue shipped with the binary.
func Builtin() (*Catalogue, error) {
	return loadFS(builtin, "catalogue")
}

// LoadDir reads every .yaml, .yml and .json template in dir.
func LoadDir(dir string) (*Catalogue, error) {
	return loadFS(os.DirFS(dir), ".")
}

// Load returns the builtin catalogue, overlaid with the templates in dir when
// dir is not empty. Directory templates win on id clashes.
func Load(dir string) (*Catalogue, error) {
	catalogue, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin templates: %w", err)
	}

	if dir == "" {
		return catalogue, nil
	}

	overlay, err := LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates from %s: %w", dir, err)
	}

	extra, _ := overlay.Templates(context.Background())
	for _, template := range extra {
		catalogue.Add(template)
	}

	return catalogue, nil
}

func loadFS(fsys fs.FS, dir string) (*Catalogue, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains([]string{".yaml", ".yml", ".json"}, ext) {
			continue
		}

		names = append(names, entry.Name())
	}

	sort.Strings(names)

	catalogue := NewCatalogue()

	for _, name := range names {
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, name)))
		if err != nil {
			return nil, err
		}

		template, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		catalogue.Add(template)
	}

	return catalogue, nil
}

// Parse decodes a YAML (or JSON) template document, validates it against the
// template schema and derives category, typed config and configured state of
// every block.
func Parse(data []byte) (*models.AutomationTemplate, error) {
	document := make(map[string]any)
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	if err := Validate(document); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	var template models.AutomationTemplate
	if err := json.Unmarshal(raw, &template); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	for _, block := range template.Blocks {
		block.Configured = models.IsConfigured(block.Config)
	}

	return &template, nil
}

func copyTemplate(template *models.AutomationTemplate) *models.AutomationTemplate {
	return &models.AutomationTemplate{
		ID:          template.ID,
		Name:        template.Name,
		Description: template.Description,
		Blocks:      template.CloneBlocks(),
	}
}
