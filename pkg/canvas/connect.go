package canvas

import (
	"fmt"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
)

// PickingHint is shown system-wide while a connection is pending.
const PickingHint = "Click another block to connect, or the canvas to cancel"

// Connector is the connection-drawing state machine: Idle, or PickingTarget
// with a source block id. It is not safe for concurrent use.
type Connector struct {
	store    *graph.Store
	sourceID string
	picking  bool
}

func NewConnector(store *graph.Store) *Connector {
	return &Connector{store: store}
}

// Start enters PickingTarget from the output connector of sourceID, replacing
// any pending source.
func (c *Connector) Start(sourceID string) error {
	block, ok := c.store.Block(sourceID)
	if !ok {
		return fmt.Errorf("start connection %s: %w", sourceID, ErrUnknownBlock)
	}

	if !block.Category.EmitsOutput() {
		return fmt.Errorf("start connection %s: %w", sourceID, ErrNoOutput)
	}

	c.sourceID = sourceID
	c.picking = true

	return nil
}

// Complete connects the pending source to targetID and returns to Idle whatever
// the outcome. The store reports the outcome to its notifier.
func (c *Connector) Complete(targetID string) error {
	if !c.picking {
		return ErrNotPicking
	}

	sourceID := c.sourceID
	c.reset()

	return c.store.Connect(sourceID, targetID)
}

// Cancel returns to Idle without touching the store.
func (c *Connector) Cancel() bool {
	if !c.picking {
		return false
	}

	c.reset()

	return true
}

// BlockDeleted resets the machine when the pending source is id.
func (c *Connector) BlockDeleted(id string) bool {
	if !c.picking || c.sourceID != id {
		return false
	}

	c.reset()

	return true
}

// Pending returns the source block id while picking a target.
func (c *Connector) Pending() (string, bool) {
	return c.sourceID, c.picking
}

// Hint returns the indicator text, empty when idle.
func (c *Connector) Hint() string {
	if !c.picking {
		return ""
	}

	return PickingHint
}

func (c *Connector) reset() {
	c.sourceID = ""
	c.picking = false
}
