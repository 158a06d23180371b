// Package models defines the core domain models for the visual automation builder.
package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// CategoryType represents the coarse role of a block in an automation graph.
type CategoryType string

const (
	CategoryTypeTrigger   CategoryType = "trigger"   // Graph roots (new lead, schedule, etc.)
	CategoryTypeCondition CategoryType = "condition" // Filters between triggers and actions
	CategoryTypeAction    CategoryType = "action"    // Leaves that do something (send message, tag, etc.)
)

// Categories returns every category in palette order.
func Categories() []CategoryType {
	return []CategoryType{CategoryTypeTrigger, CategoryTypeCondition, CategoryTypeAction}
}

// AcceptsInput reports whether blocks of this category may receive connections.
func (c CategoryType) AcceptsInput() bool {
	return c == CategoryTypeCondition || c == CategoryTypeAction
}

// EmitsOutput reports whether blocks of this category may have outgoing connections.
func (c CategoryType) EmitsOutput() bool {
	return c == CategoryTypeTrigger || c == CategoryTypeCondition
}

// Position is a canvas-local coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Block is a node in the automation graph.
type Block struct {
	ID          string       `json:"id"`
	Type        BlockType    `json:"type"`
	Category    CategoryType `json:"category"`
	Position    Position     `json:"position"`
	Configured  bool         `json:"configured"`
	Config      BlockConfig  `json:"config"`
	Connections []string     `json:"connections"`
}

// NewBlock creates an unconfigured block of the given type.
func NewBlock(id string, blockType BlockType, position Position) (*Block, error) {
	if !blockType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}

	return &Block{
		ID:          id,
		Type:        blockType,
		Category:    blockType.Category(),
		Position:    position,
		Configured:  false,
		Config:      blockType.EmptyConfig(),
		Connections: []string{},
	}, nil
}

// HasConnection reports whether targetID is already in the block's outgoing connections.
func (b *Block) HasConnection(targetID string) bool {
	return slices.Contains(b.Connections, targetID)
}

// Clone returns a copy that shares no mutable state with b.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}

	clone := *b
	clone.Connections = slices.Clone(b.Connections)

	if clone.Connections == nil {
		clone.Connections = []string{}
	}

	return &clone
}

// Summary returns a human readable description of the block's configuration.
func (b *Block) Summary() string {
	if b.Config == nil || !b.Configured {
		return b.Type.Description()
	}

	return b.Config.Summary()
}

// UnmarshalJSON decodes a block, resolving the typed config from the block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block

	var raw struct {
		alias

		Config json.RawMessage `json:"config"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	block := Block(raw.alias)

	if block.Category == "" && block.Type.Valid() {
		block.Category = block.Type.Category()
	}

	if block.Connections == nil {
		block.Connections = []string{}
	}

	if block.Type.Valid() {
		config, err := DecodeConfig(block.Type, raw.Config)
		if err != nil {
			return fmt.Errorf("failed to decode config for block %s: %w", block.ID, err)
		}

		block.Config = config
	}

	*b = block

	return nil
}
