package persistence_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		err := persistence.NewAutomationError("GetByID", "automation-123", persistence.ErrAutomationNotFound)

		assert.True(t, persistence.IsAutomationNotFound(err))
		assert.True(t, errors.Is(err, persistence.ErrAutomationNotFound))
		assert.True(t, persistence.IsAutomationNotFound(fmt.Errorf("wrapped: %w", err)))
		assert.False(t, persistence.IsAutomationNotFound(errors.New("other")))
	})

	t.Run("automation error contains context", func(t *testing.T) {
		err := persistence.NewAutomationError("Delete", "automation-123", persistence.ErrAutomationNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "automation-123")
		assert.Contains(t, err.Error(), "automation not found")
	})

	t.Run("message is included", func(t *testing.T) {
		err := &persistence.AutomationError{Op: "Save", AutomationID: "a", Err: persistence.ErrInvalidAutomation, Message: "empty name"}

		assert.Equal(t, "Save operation failed for automation a: empty name (invalid automation)", err.Error())
	})
}

func TestPrepareForSave(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	automation := &models.Automation{Name: "Welcome"}
	require.NoError(t, persistence.PrepareForSave(automation, now))

	assert.NotEmpty(t, automation.ID)
	assert.Equal(t, now, automation.CreatedAt)
	assert.Equal(t, now, automation.UpdatedAt)
	assert.NotNil(t, automation.Blocks)

	later := now.Add(time.Hour)
	id := automation.ID

	require.NoError(t, persistence.PrepareForSave(automation, later))
	assert.Equal(t, id, automation.ID)
	assert.Equal(t, now, automation.CreatedAt)
	assert.Equal(t, later, automation.UpdatedAt)

	require.ErrorIs(t, persistence.PrepareForSave(nil, now), persistence.ErrInvalidAutomation)
}
