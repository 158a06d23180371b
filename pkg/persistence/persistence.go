// Package persistence provides the storage abstraction for saved automations.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

type Persistence interface {
	Automations(ctx context.Context) ([]*models.Automation, error)
	SaveAutomation(ctx context.Context, automation *models.Automation) error
	AutomationByID(ctx context.Context, id string) (*models.Automation, error)
	DeleteAutomation(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// PrepareForSave assigns an id to new automations and stamps the timestamps.
func PrepareForSave(automation *models.Automation, now time.Time) error {
	if automation == nil {
		return NewAutomationError("Save", "", ErrInvalidAutomation)
	}

	if automation.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate automation ID: %w", err)
		}

		automation.ID = id.String()
	}

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = now
	}

	automation.UpdatedAt = now

	if automation.Blocks == nil {
		automation.Blocks = make([]*models.Block, 0)
	}

	return nil
}
