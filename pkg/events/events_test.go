package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

func TestBlockAdded_JSONSerialization(t *testing.T) {
	block, err := models.NewBlock("block-1", models.BlockTypeNewLead, models.Position{X: 20, Y: 40})
	require.NoError(t, err)

	original := NewBlockAdded(block)
	original.SetSessionID("session-1")

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"block_id":"block-1"`)
	assert.Contains(t, string(jsonData), `"block_type":"new_lead"`)
	assert.Contains(t, string(jsonData), `"session_id":"session-1"`)

	var deserialized BlockAdded

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.BlockID, deserialized.BlockID)
	assert.Equal(t, original.Position, deserialized.Position)
	assert.Equal(t, BlockAddedEvent, deserialized.Type)
	assert.Equal(t, BlockAddedEvent, deserialized.GetType())
}

func TestNew_KnownTypes(t *testing.T) {
	eventTypes := []EventType{
		BlockAddedEvent,
		BlockMovedEvent,
		BlockConfiguredEvent,
		BlockDeletedEvent,
		ConnectionCreatedEvent,
		ConnectionRemovedEvent,
		GraphReplacedEvent,
		TemplateAppliedEvent,
		AutomationSavedEvent,
		NotificationEmittedEvent,
	}

	for _, eventType := range eventTypes {
		event, ok := New(eventType)
		require.True(t, ok, eventType)
		assert.Equal(t, eventType, event.GetType())
	}

	_, ok := New("workflow.triggered")
	assert.False(t, ok)
}

func TestNewBaseEvent_HasIdentity(t *testing.T) {
	first := NewBlockDeleted("a")
	second := NewBlockDeleted("a")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Timestamp.IsZero())
}
