package canvas

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/templates"
)

// EmptyPrompt is displayed when the graph has no blocks.
const EmptyPrompt = "Add a trigger block to start, or begin from a template"

type GestureKind string

const (
	GestureIdle          GestureKind = "idle"
	GestureDragging      GestureKind = "dragging"
	GesturePickingTarget GestureKind = "picking_target"
)

// Gesture is the single interactive gesture in flight on the canvas.
type Gesture struct {
	Kind    GestureKind `json:"kind"`
	BlockID string      `json:"block_id,omitempty"`
}

// HitKind tells what lies under the pointer.
type HitKind string

const (
	HitCanvas  HitKind = "canvas"
	HitBlock   HitKind = "block"
	HitOutput  HitKind = "output"
	HitInput   HitKind = "input"
	HitOutside HitKind = "outside"
)

type Hit struct {
	Kind    HitKind `json:"kind"`
	BlockID string  `json:"block_id,omitempty"`
}

// PointerEvent is a pointer-down, move or up reported by the canvas shell.
type PointerEvent struct {
	Point Point `json:"point"`
	Hit   Hit   `json:"hit"`
}

// BlockView is what the render surface needs to draw one block.
type BlockView struct {
	ID          string              `json:"id"`
	Type        models.BlockType    `json:"type"`
	Category    models.CategoryType `json:"category"`
	Label       string              `json:"label"`
	Summary     string              `json:"summary"`
	Position    models.Position     `json:"position"`
	Configured  bool                `json:"configured"`
	Connections []string            `json:"connections"`
	HasInput    bool                `json:"has_input"`
	HasOutput   bool                `json:"has_output"`
	Selected    bool                `json:"selected"`
	Connectable bool                `json:"connectable"`
	Dragging    bool                `json:"dragging"`
}

// View is a snapshot of the render surface.
type View struct {
	Blocks             []BlockView `json:"blocks"`
	Gesture            Gesture     `json:"gesture"`
	Hint               string      `json:"hint,omitempty"`
	Empty              bool        `json:"empty"`
	EmptyPrompt        string      `json:"empty_prompt,omitempty"`
	TemplatesOffered   bool        `json:"templates_offered"`
	TemplatePickerOpen bool        `json:"template_picker_open"`
}

// Controller routes pointer input to the drag and connection gestures and
// persists their effects through the store. At most one gesture is active.
type Controller struct {
	mu sync.Mutex

	store     *graph.Store
	drag      *Drag
	connector *Connector
	loader    *templates.Loader
	viewport  Viewport
	snap      SnapFunc
	logger    *slog.Logger

	pickerOpen bool
}

type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	viewport Viewport
	snap     SnapFunc
	notifier notify.Sink
	listener graph.Listener
	logger   *slog.Logger
}

func WithViewport(viewport Viewport) ControllerOption {
	return func(o *controllerOptions) {
		o.viewport = viewport
	}
}

// WithSnap sets the snapping applied to dragged and added blocks.
func WithSnap(snap SnapFunc) ControllerOption {
	return func(o *controllerOptions) {
		o.snap = snap
	}
}

// WithNotifier sets the sink for template notifications. Connection outcomes
// are reported by the store's own notifier.
func WithNotifier(sink notify.Sink) ControllerOption {
	return func(o *controllerOptions) {
		o.notifier = sink
	}
}

// WithListener receives the events of template application.
func WithListener(listener graph.Listener) ControllerOption {
	return func(o *controllerOptions) {
		o.listener = listener
	}
}

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(o *controllerOptions) {
		o.logger = logger
	}
}

func NewController(store *graph.Store, opts ...ControllerOption) *Controller {
	options := &controllerOptions{
		notifier: notify.Discard{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(options)
	}

	controller := &Controller{
		store:     store,
		drag:      NewDrag(store, options.viewport, options.snap),
		connector: NewConnector(store),
		viewport:  options.viewport,
		snap:      options.snap,
		logger:    options.logger,
	}

	loaderOpts := []templates.LoaderOption{
		templates.WithNotifier(options.notifier),
		templates.WithLogger(options.logger),
	}
	if options.listener != nil {
		loaderOpts = append(loaderOpts, templates.WithListener(options.listener))
	}

	controller.loader = templates.NewLoader(store, controller, loaderOpts...)

	return controller
}

func (c *Controller) Store() *graph.Store {
	return c.store
}

// SetViewport updates the canvas reference, for example after mounting or
// scrolling. A nil viewport means the canvas is not mounted.
func (c *Controller) SetViewport(viewport Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.viewport = viewport
	c.drag.SetViewport(viewport)
}

// Gesture returns the gesture in flight.
func (c *Controller) Gesture() Gesture {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gesture()
}

func (c *Controller) gesture() Gesture {
	if id, ok := c.drag.Active(); ok {
		return Gesture{Kind: GestureDragging, BlockID: id}
	}

	if id, ok := c.connector.Pending(); ok {
		return Gesture{Kind: GesturePickingTarget, BlockID: id}
	}

	return Gesture{Kind: GestureIdle}
}

// AddBlock adds a block at position, clamped and snapped like dragged blocks.
func (c *Controller) AddBlock(blockType models.BlockType, position models.Position) (*models.Block, error) {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	return c.store.AddBlock(blockType, place(position, snap))
}

// MoveBlock places a block outside of a pointer gesture. It refuses to move the
// block being dragged and reports false when the id is unknown.
func (c *Controller) MoveBlock(id string, position models.Position) (models.Position, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dragged, ok := c.drag.Active(); ok && dragged == id {
		return models.Position{}, false, fmt.Errorf("move %s: %w", id, ErrGestureInProgress)
	}

	position = place(position, c.snap)

	return position, c.store.MoveBlock(id, position), nil
}

// PointerDown starts or completes a gesture depending on what was hit.
func (c *Controller) PointerDown(event PointerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	gesture := c.gesture()

	switch event.Hit.Kind {
	case HitOutput:
		if gesture.Kind == GestureDragging {
			return ErrGestureInProgress
		}

		if gesture.Kind == GesturePickingTarget && gesture.BlockID == event.Hit.BlockID {
			c.connector.Cancel()

			return nil
		}

		return c.connector.Start(event.Hit.BlockID)

	case HitInput, HitBlock:
		if gesture.Kind == GesturePickingTarget {
			return c.completeConnection(event.Hit.BlockID)
		}

		if event.Hit.Kind == HitBlock && gesture.Kind == GestureIdle {
			return c.drag.Begin(event.Hit.BlockID, event.Point)
		}

	case HitCanvas, HitOutside:
		if gesture.Kind == GesturePickingTarget {
			c.connector.Cancel()
		}
	}

	return nil
}

// PointerMove feeds the pointer into an active drag.
func (c *Controller) PointerMove(event PointerEvent) (models.Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.drag.Update(event.Point)
}

// PointerUp ends a drag, or completes or cancels a pending connection when the
// pointer is released over another block or over the empty canvas. Releasing
// anywhere else keeps the connection pending.
func (c *Controller) PointerUp(event PointerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dragging := c.drag.Active(); dragging {
		position, _ := c.drag.End()

		c.logger.Debug("Drag ended", "position", position, "hit", event.Hit.Kind)

		return nil
	}

	sourceID, picking := c.connector.Pending()
	if !picking {
		return nil
	}

	switch event.Hit.Kind {
	case HitInput, HitBlock:
		if event.Hit.BlockID != sourceID {
			return c.completeConnection(event.Hit.BlockID)
		}
	case HitCanvas:
		c.connector.Cancel()
	}

	return nil
}

func (c *Controller) completeConnection(targetID string) error {
	err := c.connector.Complete(targetID)
	if err != nil && !graph.IsValidationError(err) {
		c.logger.Error("Failed to complete connection", "target_id", targetID, "error", err)
	}

	return err
}

// Cancel abandons the gesture in flight. A cancelled drag keeps the block at
// its last computed position.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, dragged := c.drag.End()

	return c.connector.Cancel() || dragged
}

// DeleteBlock removes a block and resets any gesture referencing it.
func (c *Controller) DeleteBlock(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.store.DeleteBlock(id) {
		return false
	}

	c.connector.BlockDeleted(id)

	if dragged, ok := c.drag.Active(); ok && dragged == id {
		c.drag.End()
	}

	return true
}

// StartConnection enters PickingTarget from blockID's output connector.
func (c *Controller) StartConnection(blockID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dragging := c.drag.Active(); dragging {
		return ErrGestureInProgress
	}

	return c.connector.Start(blockID)
}

// CompleteConnection connects the pending source to targetID.
func (c *Controller) CompleteConnection(targetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, picking := c.connector.Pending(); !picking {
		return ErrNotPicking
	}

	return c.completeConnection(targetID)
}

func (c *Controller) OpenTemplatePicker() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pickerOpen = true
}

func (c *Controller) CloseTemplatePicker() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pickerOpen = false
}

func (c *Controller) TemplatePickerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pickerOpen
}

// ApplyTemplate abandons any gesture and replaces the graph with template.
func (c *Controller) ApplyTemplate(template *models.AutomationTemplate) ([]graph.Issue, error) {
	if template == nil {
		return nil, errors.New("template cannot be nil")
	}

	c.mu.Lock()
	c.drag.End()
	c.connector.Cancel()
	c.mu.Unlock()

	return c.loader.Apply(template), nil
}

// View builds the render surface snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	gesture := c.gesture()
	blocks := c.store.Blocks()

	view := View{
		Blocks:             make([]BlockView, 0, len(blocks)),
		Gesture:            gesture,
		Hint:               c.connector.Hint(),
		Empty:              len(blocks) == 0,
		TemplatePickerOpen: c.pickerOpen,
	}

	if view.Empty {
		view.EmptyPrompt = EmptyPrompt
		view.TemplatesOffered = true
	}

	for _, block := range blocks {
		blockView := BlockView{
			ID:          block.ID,
			Type:        block.Type,
			Category:    block.Category,
			Label:       block.Type.Label(),
			Summary:     block.Summary(),
			Position:    block.Position,
			Configured:  block.Configured,
			Connections: block.Connections,
			HasInput:    block.Category.AcceptsInput(),
			HasOutput:   block.Category.EmitsOutput(),
			Dragging:    gesture.Kind == GestureDragging && gesture.BlockID == block.ID,
		}

		if gesture.Kind == GesturePickingTarget {
			blockView.Selected = gesture.BlockID == block.ID
			blockView.Connectable = c.store.CanConnect(gesture.BlockID, block.ID) == nil
		}

		view.Blocks = append(view.Blocks, blockView)
	}

	return view
}
