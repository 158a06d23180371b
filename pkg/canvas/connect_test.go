package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/canvas"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
)

type connectFixture struct {
	store     *graph.Store
	recorder  *notify.Recorder
	trigger   *models.Block
	condition *models.Block
	action    *models.Block
}

func newConnectFixture(t *testing.T) connectFixture {
	t.Helper()

	recorder := notify.NewRecorder()
	store := graph.NewStore(graph.WithNotifier(recorder))

	add := func(blockType models.BlockType) *models.Block {
		block, err := store.AddBlock(blockType, models.Position{})
		require.NoError(t, err)

		return block
	}

	return connectFixture{
		store:     store,
		recorder:  recorder,
		trigger:   add(models.BlockTypeNewLead),
		condition: add(models.BlockTypeHasTag),
		action:    add(models.BlockTypeSendMessage),
	}
}

func TestConnector_PickAndComplete(t *testing.T) {
	f := newConnectFixture(t)
	connector := canvas.NewConnector(f.store)

	assert.Empty(t, connector.Hint())

	require.NoError(t, connector.Start(f.trigger.ID))

	source, picking := connector.Pending()
	assert.True(t, picking)
	assert.Equal(t, f.trigger.ID, source)
	assert.Equal(t, canvas.PickingHint, connector.Hint())

	require.NoError(t, connector.Complete(f.condition.ID))

	_, picking = connector.Pending()
	assert.False(t, picking)

	stored, _ := f.store.Block(f.trigger.ID)
	assert.Equal(t, []string{f.condition.ID}, stored.Connections)

	require.ErrorIs(t, connector.Complete(f.action.ID), canvas.ErrNotPicking)
}

func TestConnector_FailedCompletionReturnsToIdle(t *testing.T) {
	f := newConnectFixture(t)
	connector := canvas.NewConnector(f.store)

	require.NoError(t, connector.Start(f.condition.ID))
	require.ErrorIs(t, connector.Complete(f.trigger.ID), graph.ErrInvalidCategoryPairing)

	_, picking := connector.Pending()
	assert.False(t, picking)

	last, _ := f.recorder.Last()
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestConnector_StartRejections(t *testing.T) {
	f := newConnectFixture(t)
	connector := canvas.NewConnector(f.store)

	require.ErrorIs(t, connector.Start(f.action.ID), canvas.ErrNoOutput)
	require.ErrorIs(t, connector.Start("ghost"), canvas.ErrUnknownBlock)

	_, picking := connector.Pending()
	assert.False(t, picking)
}

func TestConnector_CancelLeavesStoreUntouched(t *testing.T) {
	f := newConnectFixture(t)
	connector := canvas.NewConnector(f.store)
	before := f.store.Blocks()

	assert.False(t, connector.Cancel())

	require.NoError(t, connector.Start(f.trigger.ID))
	assert.True(t, connector.Cancel())

	_, picking := connector.Pending()
	assert.False(t, picking)
	assert.Equal(t, before, f.store.Blocks())
	assert.Empty(t, f.recorder.Drain())
}

func TestConnector_SourceDeleted(t *testing.T) {
	f := newConnectFixture(t)
	connector := canvas.NewConnector(f.store)

	require.NoError(t, connector.Start(f.condition.ID))

	assert.False(t, connector.BlockDeleted(f.action.ID))
	assert.True(t, connector.BlockDeleted(f.condition.ID))

	_, picking := connector.Pending()
	assert.False(t, picking)
}
