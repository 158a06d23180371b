// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

// CreateTestBlock creates a test Block with default values that can be overridden.
// The default is an unconfigured send_message action.
func CreateTestBlock(overrides ...func(*models.Block)) *models.Block {
	block := &models.Block{
		ID:          uuid.New().String(),
		Type:        models.BlockTypeSendMessage,
		Category:    models.CategoryTypeAction,
		Position:    models.Position{X: 100, Y: 200},
		Config:      models.SendMessageConfig{},
		Connections: []string{},
	}

	for _, override := range overrides {
		override(block)
	}

	return block
}

// WithType sets the block type and its derived category and empty config.
func WithType(blockType models.BlockType) func(*models.Block) {
	return func(b *models.Block) {
		b.Type = blockType
		b.Category = blockType.Category()
		b.Config = blockType.EmptyConfig()
	}
}

// WithTriggerBlock configures the block as a new_lead trigger.
func WithTriggerBlock() func(*models.Block) {
	return WithType(models.BlockTypeNewLead)
}

// WithConditionBlock configures the block as a has_tag condition.
func WithConditionBlock() func(*models.Block) {
	return WithType(models.BlockTypeHasTag)
}

// WithID sets the block ID.
func WithID(id string) func(*models.Block) {
	return func(b *models.Block) {
		b.ID = id
	}
}

// WithPosition sets the block position.
func WithPosition(x, y float64) func(*models.Block) {
	return func(b *models.Block) {
		b.Position = models.Position{X: x, Y: y}
	}
}

// WithConnections sets the outgoing connections.
func WithConnections(targets ...string) func(*models.Block) {
	return func(b *models.Block) {
		b.Connections = append([]string{}, targets...)
	}
}

// WithConfig sets the block config and recomputes Configured.
func WithConfig(config models.BlockConfig) func(*models.Block) {
	return func(b *models.Block) {
		b.Config = config
		b.Configured = models.IsConfigured(config)
	}
}

// CreateTestTemplate creates a trigger -> condition -> action template.
func CreateTestTemplate() *models.AutomationTemplate {
	return &models.AutomationTemplate{
		ID:          "tpl-test",
		Name:        "Test template",
		Description: "A template for testing",
		Blocks: []*models.Block{
			CreateTestBlock(WithID("tpl-trigger"), WithTriggerBlock(), WithPosition(0, 0), WithConnections("tpl-condition")),
			CreateTestBlock(WithID("tpl-condition"), WithConditionBlock(), WithPosition(300, 0), WithConnections("tpl-action")),
			CreateTestBlock(WithID("tpl-action"), WithPosition(600, 0),
				WithConfig(models.SendMessageConfig{Channel: "whatsapp", Message: "Hi!"})),
		},
	}
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	next := 0

	return func() string {
		next++

		return prefix + "-" + strconv.Itoa(next)
	}
}
