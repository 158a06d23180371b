package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/testutil"
)

func newTestController(t *testing.T) (*canvas.Controller, *notify.Recorder) {
	t.Helper()

	recorder := notify.NewRecorder()
	store := graph.NewStore(
		graph.WithNotifier(recorder),
		graph.WithIDGenerator(testutil.SequentialIDs("block")),
	)

	controller := canvas.NewController(store,
		canvas.WithViewport(testViewport()),
		canvas.WithNotifier(recorder),
	)

	return controller, recorder
}

func down(kind canvas.HitKind, blockID string, x, y float64) canvas.PointerEvent {
	return canvas.PointerEvent{Point: canvas.Point{X: x, Y: y}, Hit: canvas.Hit{Kind: kind, BlockID: blockID}}
}

func TestController_EmptyState(t *testing.T) {
	controller, _ := newTestController(t)

	view := controller.View()
	assert.True(t, view.Empty)
	assert.True(t, view.TemplatesOffered)
	assert.Equal(t, canvas.EmptyPrompt, view.EmptyPrompt)
	assert.Empty(t, view.Blocks)
	assert.Equal(t, canvas.Gesture{Kind: canvas.GestureIdle}, view.Gesture)

	_, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)

	view = controller.View()
	assert.False(t, view.Empty)
	assert.False(t, view.TemplatesOffered)
	assert.Empty(t, view.EmptyPrompt)
}

func TestController_ClickToConnect(t *testing.T) {
	controller, recorder := newTestController(t)

	trigger, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)
	action, err := controller.AddBlock(models.BlockTypeSendMessage, models.Position{X: 300})
	require.NoError(t, err)

	require.NoError(t, controller.PointerDown(down(canvas.HitOutput, trigger.ID, 0, 0)))
	require.NoError(t, controller.PointerUp(down(canvas.HitOutput, trigger.ID, 0, 0)))

	view := controller.View()
	assert.Equal(t, canvas.Gesture{Kind: canvas.GesturePickingTarget, BlockID: trigger.ID}, view.Gesture)
	assert.Equal(t, canvas.PickingHint, view.Hint)
	assert.True(t, view.Blocks[0].Selected)
	assert.False(t, view.Blocks[0].Connectable)
	assert.False(t, view.Blocks[1].Selected)
	assert.True(t, view.Blocks[1].Connectable)

	require.NoError(t, controller.PointerDown(down(canvas.HitInput, action.ID, 0, 0)))
	require.NoError(t, controller.PointerUp(down(canvas.HitInput, action.ID, 0, 0)))

	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)

	stored, _ := controller.Store().Block(trigger.ID)
	assert.Equal(t, []string{action.ID}, stored.Connections)

	last, _ := recorder.Last()
	assert.Equal(t, notify.Success("Blocks connected"), last)
}

func TestController_DragToConnect(t *testing.T) {
	controller, _ := newTestController(t)

	condition, err := controller.AddBlock(models.BlockTypeHasTag, models.Position{})
	require.NoError(t, err)
	action, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{X: 300})
	require.NoError(t, err)

	require.NoError(t, controller.PointerDown(down(canvas.HitOutput, condition.ID, 0, 0)))
	require.NoError(t, controller.PointerUp(down(canvas.HitInput, action.ID, 0, 0)))

	stored, _ := controller.Store().Block(condition.ID)
	assert.Equal(t, []string{action.ID}, stored.Connections)
	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)
}

func TestController_CancelPendingConnection(t *testing.T) {
	testCases := []struct {
		name   string
		cancel func(*canvas.Controller, string) error
	}{
		{"canvas press", func(c *canvas.Controller, _ string) error {
			return c.PointerDown(down(canvas.HitCanvas, "", 0, 0))
		}},
		{"canvas release", func(c *canvas.Controller, _ string) error {
			return c.PointerUp(down(canvas.HitCanvas, "", 0, 0))
		}},
		{"second press on source", func(c *canvas.Controller, id string) error {
			return c.PointerDown(down(canvas.HitOutput, id, 0, 0))
		}},
		{"explicit cancel", func(c *canvas.Controller, _ string) error {
			c.Cancel()

			return nil
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			controller, recorder := newTestController(t)

			trigger, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
			require.NoError(t, err)
			_, err = controller.AddBlock(models.BlockTypeAddTag, models.Position{})
			require.NoError(t, err)

			before := controller.Store().Blocks()

			require.NoError(t, controller.StartConnection(trigger.ID))
			require.NoError(t, tc.cancel(controller, trigger.ID))

			assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)
			assert.Empty(t, controller.View().Hint)
			assert.Equal(t, before, controller.Store().Blocks())
			assert.Empty(t, recorder.Drain())
		})
	}
}

func TestController_InvalidTargetReportsAndResets(t *testing.T) {
	controller, recorder := newTestController(t)

	trigger, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)
	otherTrigger, err := controller.AddBlock(models.BlockTypeFormSubmitted, models.Position{})
	require.NoError(t, err)

	require.NoError(t, controller.StartConnection(trigger.ID))
	assert.False(t, controller.View().Blocks[1].Connectable)

	err = controller.PointerDown(down(canvas.HitBlock, otherTrigger.ID, 0, 0))
	require.ErrorIs(t, err, graph.ErrInvalidCategoryPairing)

	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)

	last, _ := recorder.Last()
	assert.Equal(t, notify.Error("Invalid connection between these block types"), last)
}

func TestController_Drag(t *testing.T) {
	controller, _ := newTestController(t)
	controller.SetViewport(testViewport())

	block, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{X: 200, Y: 100})
	require.NoError(t, err)

	require.NoError(t, controller.PointerDown(down(canvas.HitBlock, block.ID, 280, 145)))
	assert.Equal(t, canvas.Gesture{Kind: canvas.GestureDragging, BlockID: block.ID}, controller.Gesture())
	assert.True(t, controller.View().Blocks[0].Dragging)

	require.ErrorIs(t, controller.StartConnection(block.ID), canvas.ErrGestureInProgress)

	position, ok := controller.PointerMove(down(canvas.HitCanvas, "", 310, 160))
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 230, Y: 115}, position)

	// Released outside the canvas: the block stays where it was last moved.
	require.NoError(t, controller.PointerUp(down(canvas.HitOutside, "", 5000, 5000)))

	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)

	stored, _ := controller.Store().Block(block.ID)
	assert.Equal(t, models.Position{X: 230, Y: 115}, stored.Position)

	_, ok = controller.PointerMove(down(canvas.HitCanvas, "", 400, 400))
	assert.False(t, ok)
}

func TestController_AddBlockSnaps(t *testing.T) {
	store := graph.NewStore()
	controller := canvas.NewController(store, canvas.WithSnap(canvas.SnapToGrid(20)))

	block, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{X: 33, Y: 48})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 40, Y: 40}, block.Position)
}

func TestController_AddBlockClampsToOrigin(t *testing.T) {
	store := graph.NewStore()
	controller := canvas.NewController(store, canvas.WithSnap(canvas.SnapToGrid(20)))

	block, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{X: -75, Y: 48})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 0, Y: 40}, block.Position)
}

func TestController_MoveBlock(t *testing.T) {
	controller, _ := newTestController(t)

	dragged, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{X: 200, Y: 100})
	require.NoError(t, err)

	other, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)

	require.NoError(t, controller.PointerDown(down(canvas.HitBlock, dragged.ID, 280, 145)))

	_, moved, err := controller.MoveBlock(dragged.ID, models.Position{X: 600, Y: 600})
	require.ErrorIs(t, err, canvas.ErrGestureInProgress)
	assert.False(t, moved)

	position, moved, err := controller.MoveBlock(other.ID, models.Position{X: -10, Y: 300})
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, models.Position{X: 0, Y: 300}, position)

	stored, _ := controller.Store().Block(dragged.ID)
	assert.Equal(t, models.Position{X: 200, Y: 100}, stored.Position)

	require.NoError(t, controller.PointerUp(down(canvas.HitCanvas, "", 280, 145)))

	_, moved, err = controller.MoveBlock(dragged.ID, models.Position{X: 600, Y: 600})
	require.NoError(t, err)
	assert.True(t, moved)

	_, moved, err = controller.MoveBlock("ghost", models.Position{})
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestController_DeleteBlockResetsGestures(t *testing.T) {
	controller, _ := newTestController(t)

	trigger, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)
	action, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{})
	require.NoError(t, err)

	require.NoError(t, controller.StartConnection(trigger.ID))
	assert.True(t, controller.DeleteBlock(trigger.ID))
	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)

	require.NoError(t, controller.PointerDown(down(canvas.HitBlock, action.ID, 10, 10)))
	assert.True(t, controller.DeleteBlock(action.ID))
	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)

	assert.False(t, controller.DeleteBlock("ghost"))
	assert.True(t, controller.View().Empty)
}

func TestController_DeleteOtherBlockKeepsPendingConnection(t *testing.T) {
	controller, _ := newTestController(t)

	trigger, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)
	action, err := controller.AddBlock(models.BlockTypeAddTag, models.Position{})
	require.NoError(t, err)

	require.NoError(t, controller.StartConnection(trigger.ID))
	assert.True(t, controller.DeleteBlock(action.ID))

	assert.Equal(t, canvas.Gesture{Kind: canvas.GesturePickingTarget, BlockID: trigger.ID}, controller.Gesture())
}

func TestController_CompleteConnectionRequiresPending(t *testing.T) {
	controller, _ := newTestController(t)

	require.ErrorIs(t, controller.CompleteConnection("anything"), canvas.ErrNotPicking)
}

func TestController_ApplyTemplate(t *testing.T) {
	recorder := notify.NewRecorder()

	var received []events.EventType

	store := graph.NewStore()
	controller := canvas.NewController(store,
		canvas.WithNotifier(recorder),
		canvas.WithListener(func(event events.Event) { received = append(received, event.GetType()) }),
	)

	existing, err := controller.AddBlock(models.BlockTypeNewLead, models.Position{})
	require.NoError(t, err)
	require.NoError(t, controller.StartConnection(existing.ID))

	controller.OpenTemplatePicker()
	assert.True(t, controller.View().TemplatePickerOpen)

	template := testutil.CreateTestTemplate()
	issues, err := controller.ApplyTemplate(template)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.False(t, controller.TemplatePickerOpen())
	assert.Equal(t, canvas.GestureIdle, controller.Gesture().Kind)
	assert.Equal(t, template.Blocks, store.Blocks())

	_, exists := store.Block(existing.ID)
	assert.False(t, exists)

	assert.Equal(t, []notify.Notification{notify.Success(`Template "Test template" applied`)}, recorder.Drain())
	assert.Equal(t, []events.EventType{events.TemplateAppliedEvent}, received)

	_, err = controller.ApplyTemplate(nil)
	require.Error(t, err)
}

func TestController_ViewAffordances(t *testing.T) {
	controller, _ := newTestController(t)

	for _, blockType := range []models.BlockType{models.BlockTypeNewLead, models.BlockTypeLeadStatus, models.BlockTypeAddTag} {
		_, err := controller.AddBlock(blockType, models.Position{})
		require.NoError(t, err)
	}

	_, err := controller.Store().ConfigureBlock("block-3", models.AddTagConfig{Tag: "vip"})
	require.NoError(t, err)

	view := controller.View()
	require.Len(t, view.Blocks, 3)

	trigger, condition, action := view.Blocks[0], view.Blocks[1], view.Blocks[2]

	assert.False(t, trigger.HasInput)
	assert.True(t, trigger.HasOutput)
	assert.True(t, condition.HasInput)
	assert.True(t, condition.HasOutput)
	assert.True(t, action.HasInput)
	assert.False(t, action.HasOutput)

	assert.Equal(t, models.BlockTypeNewLead.Label(), trigger.Label)
	assert.True(t, action.Configured)
	assert.Equal(t, "Add tag vip", action.Summary)
	assert.Equal(t, models.BlockTypeLeadStatus.Description(), condition.Summary)
}
