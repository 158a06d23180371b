package canvas

import (
	"fmt"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

// Drag tracks the block being dragged and writes its candidate positions into
// the store. It is not safe for concurrent use; Controller serializes access.
type Drag struct {
	store    *graph.Store
	viewport Viewport
	snap     SnapFunc

	dragging bool
	blockID  string
	offset   Point
	last     models.Position
}

func NewDrag(store *graph.Store, viewport Viewport, snap SnapFunc) *Drag {
	return &Drag{
		store:    store,
		viewport: viewport,
		snap:     snap,
	}
}

// SetViewport replaces the canvas reference used by subsequent updates.
func (d *Drag) SetViewport(viewport Viewport) {
	d.viewport = viewport
}

// Begin starts dragging blockID, remembering the pointer offset from the
// block's top-left corner.
func (d *Drag) Begin(blockID string, pointer Point) error {
	if d.dragging {
		return ErrGestureInProgress
	}

	block, ok := d.store.Block(blockID)
	if !ok {
		return fmt.Errorf("drag %s: %w", blockID, ErrUnknownBlock)
	}

	d.offset = Point{}
	if d.viewport != nil {
		local := toLocal(pointer, d.viewport)
		d.offset = Point{X: local.X - block.Position.X, Y: local.Y - block.Position.Y}
	}

	d.dragging = true
	d.blockID = blockID
	d.last = block.Position

	return nil
}

// Update moves the dragged block under pointer. It reports false when no drag
// is active or the block disappeared, which also ends the drag.
func (d *Drag) Update(pointer Point) (models.Position, bool) {
	if !d.dragging {
		return models.Position{}, false
	}

	position := ToCanvas(Point{X: pointer.X - d.offset.X, Y: pointer.Y - d.offset.Y}, d.viewport, d.snap)

	if !d.store.MoveBlock(d.blockID, position) {
		d.reset()

		return models.Position{}, false
	}

	d.last = position

	return position, true
}

// End finishes the drag. The block stays at the last computed position, which
// is also the policy for releases outside the canvas.
func (d *Drag) End() (models.Position, bool) {
	if !d.dragging {
		return models.Position{}, false
	}

	last := d.last
	d.reset()

	return last, true
}

// Active returns the dragged block id.
func (d *Drag) Active() (string, bool) {
	return d.blockID, d.dragging
}

func (d *Drag) Offset() Point {
	return d.offset
}

func (d *Drag) reset() {
	d.dragging = false
	d.blockID = ""
	d.offset = Point{}
	d.last = models.Position{}
}
