// Package events defines event types and structures for automation editor notifications.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

type EventType string

const Topic = "automation.editor.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Graph mutation events.
	BlockAddedEvent        EventType = "block.added"
	BlockMovedEvent        EventType = "block.moved"
	BlockConfiguredEvent   EventType = "block.configured"
	BlockDeletedEvent      EventType = "block.deleted"
	ConnectionCreatedEvent EventType = "connection.created"
	ConnectionRemovedEvent EventType = "connection.removed"
	GraphReplacedEvent     EventType = "graph.replaced"

	// Editor lifecycle events.
	TemplateAppliedEvent     EventType = "template.applied"
	AutomationSavedEvent     EventType = "automation.saved"
	NotificationEmittedEvent EventType = "notification.emitted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func newBase(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

type BlockAdded struct {
	BaseEvent

	BlockID   string           `json:"block_id"`
	BlockType models.BlockType `json:"block_type"`
	Position  models.Position  `json:"position"`
}

func (e BlockAdded) GetType() EventType {
	return BlockAddedEvent
}

func NewBlockAdded(block *models.Block) *BlockAdded {
	return &BlockAdded{
		BaseEvent: newBase(BlockAddedEvent),
		BlockID:   block.ID,
		BlockType: block.Type,
		Position:  block.Position,
	}
}

type BlockMoved struct {
	BaseEvent

	BlockID  string          `json:"block_id"`
	Position models.Position `json:"position"`
}

func (e BlockMoved) GetType() EventType {
	return BlockMovedEvent
}

func NewBlockMoved(blockID string, position models.Position) *BlockMoved {
	return &BlockMoved{
		BaseEvent: newBase(BlockMovedEvent),
		BlockID:   blockID,
		Position:  position,
	}
}

type BlockConfigured struct {
	BaseEvent

	BlockID    string `json:"block_id"`
	Configured bool   `json:"configured"`
}

func (e BlockConfigured) GetType() EventType {
	return BlockConfiguredEvent
}

func NewBlockConfigured(blockID string, configured bool) *BlockConfigured {
	return &BlockConfigured{
		BaseEvent:  newBase(BlockConfiguredEvent),
		BlockID:    blockID,
		Configured: configured,
	}
}

type BlockDeleted struct {
	BaseEvent

	BlockID string `json:"block_id"`
}

func (e BlockDeleted) GetType() EventType {
	return BlockDeletedEvent
}

func NewBlockDeleted(blockID string) *BlockDeleted {
	return &BlockDeleted{
		BaseEvent: newBase(BlockDeletedEvent),
		BlockID:   blockID,
	}
}

type ConnectionCreated struct {
	BaseEvent

	SourceBlockID string `json:"source_block_id"`
	TargetBlockID string `json:"target_block_id"`
}

func (e ConnectionCreated) GetType() EventType {
	return ConnectionCreatedEvent
}

func NewConnectionCreated(sourceID, targetID string) *ConnectionCreated {
	return &ConnectionCreated{
		BaseEvent:     newBase(ConnectionCreatedEvent),
		SourceBlockID: sourceID,
		TargetBlockID: targetID,
	}
}

type ConnectionRemoved struct {
	BaseEvent

	SourceBlockID string `json:"source_block_id"`
	TargetBlockID string `json:"target_block_id"`
}

func (e ConnectionRemoved) GetType() EventType {
	return ConnectionRemovedEvent
}

func NewConnectionRemoved(sourceID, targetID string) *ConnectionRemoved {
	return &ConnectionRemoved{
		BaseEvent:     newBase(ConnectionRemovedEvent),
		SourceBlockID: sourceID,
		TargetBlockID: targetID,
	}
}

type GraphReplaced struct {
	BaseEvent

	BlockCount int `json:"block_count"`
}

func (e GraphReplaced) GetType() EventType {
	return GraphReplacedEvent
}

func NewGraphReplaced(blockCount int) *GraphReplaced {
	return &GraphReplaced{
		BaseEvent:  newBase(GraphReplacedEvent),
		BlockCount: blockCount,
	}
}

type TemplateApplied struct {
	BaseEvent

	TemplateID string `json:"template_id"`
}

func (e TemplateApplied) GetType() EventType {
	return TemplateAppliedEvent
}

func NewTemplateApplied(templateID string) *TemplateApplied {
	return &TemplateApplied{
		BaseEvent:  newBase(TemplateAppliedEvent),
		TemplateID: templateID,
	}
}

type AutomationSaved struct {
	BaseEvent

	AutomationID string `json:"automation_id"`
	BlockCount   int    `json:"block_count"`
}

func (e AutomationSaved) GetType() EventType {
	return AutomationSavedEvent
}

func NewAutomationSaved(automationID string, blockCount int) *AutomationSaved {
	return &AutomationSaved{
		BaseEvent:    newBase(AutomationSavedEvent),
		AutomationID: automationID,
		BlockCount:   blockCount,
	}
}

type NotificationEmitted struct {
	BaseEvent

	Level   string `json:"level"`
	Message string `json:"message"`
}

func (e NotificationEmitted) GetType() EventType {
	return NotificationEmittedEvent
}

func NewNotificationEmitted(level, message string) *NotificationEmitted {
	return &NotificationEmitted{
		BaseEvent: newBase(NotificationEmittedEvent),
		Level:     level,
		Message:   message,
	}
}

// Event is implemented by every editor event.
type Event interface {
	GetType() EventType
	SetSessionID(sessionID string)
}

// SetSessionID scopes the event to an editor session.
func (b *BaseEvent) SetSessionID(sessionID string) {
	b.SessionID = sessionID
}

// New returns an empty event value for the given type, for decoding.
func New(eventType EventType) (Event, bool) {
	switch eventType {
	case BlockAddedEvent:
		return &BlockAdded{}, true
	case BlockMovedEvent:
		return &BlockMoved{}, true
	case BlockConfiguredEvent:
		return &BlockConfigured{}, true
	case BlockDeletedEvent:
		return &BlockDeleted{}, true
	case ConnectionCreatedEvent:
		return &ConnectionCreated{}, true
	case ConnectionRemovedEvent:
		return &ConnectionRemoved{}, true
	case GraphReplacedEvent:
		return &GraphReplaced{}, true
	case TemplateAppliedEvent:
		return &TemplateApplied{}, true
	case AutomationSavedEvent:
		return &AutomationSaved{}, true
	case NotificationEmittedEvent:
		return &NotificationEmitted{}, true
	default:
		return nil, false
	}
}
