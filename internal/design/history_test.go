package design

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(max int) *HistoryStack {
	return NewHistoryStack(HistoryConfig{MaxEntries: max, PositionTolerance: 0.5, RotationTolerance: 0.000001})
}

func designAt(x float64) Design {
	return Design{
		NecklaceID: "chain-gold",
		Charms:     []Placement{{InstanceID: "i1", CharmID: "charm-star", X: x, Y: 0}},
	}
}

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	h := newTestHistory(10)
	first, ok := h.PushDesign(designAt(0))
	require.True(t, ok)
	second, ok := h.PushDesign(designAt(10))
	require.True(t, ok)

	undone, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, first.ID, undone.ID)

	redone, ok := h.Redo()
	require.True(t, ok)
	want, err := json.Marshal(second)
	require.NoError(t, err)
	got, err := json.Marshal(redone)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestHistoryBoundsAreNoops(t *testing.T) {
	h := newTestHistory(10)
	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, -1, h.Cursor())

	h.PushDesign(designAt(0))
	_, ok = h.Undo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Cursor())
}

func TestHistoryDropsEquivalentPush(t *testing.T) {
	h := newTestHistory(10)
	h.PushDesign(designAt(0))
	_, pushed := h.PushDesign(designAt(0.3))
	assert.False(t, pushed)
	assert.Equal(t, 1, h.Len())

	_, pushed = h.PushDesign(designAt(5))
	assert.True(t, pushed)
	assert.Equal(t, 2, h.Len())
}

func TestHistoryCapsAtMaxEntries(t *testing.T) {
	h := newTestHistory(50)
	var last Snapshot
	for i := 0; i < 60; i++ {
		snap, ok := h.PushDesign(designAt(float64(i * 10)))
		require.True(t, ok, fmt.Sprintf("push %d", i))
		last = snap
	}
	assert.Equal(t, 50, h.Len())
	assert.Equal(t, 49, h.Cursor())
	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, last.ID, cur.ID)
}

func TestHistoryBranchOverwrite(t *testing.T) {
	h := newTestHistory(10)
	h.PushDesign(designAt(0))
	h.PushDesign(designAt(10))
	h.PushDesign(designAt(20))
	h.Undo()
	h.Undo()
	require.True(t, h.CanRedo())

	h.PushDesign(designAt(99))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())
}

func TestHistoryMarkers(t *testing.T) {
	h := newTestHistory(10)
	require.True(t, pkgerrors.IsCode(h.MarkMilestone("x"), pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(h.MarkExported("li"), pkgerrors.CodeNotFound))

	first, _ := h.PushDesign(designAt(0))
	h.PushDesign(designAt(10))
	require.NoError(t, h.MarkMilestone("draft"))
	require.NoError(t, h.MarkExported("design-1"))
	require.NoError(t, h.MarkExportedSnapshot(first.ID, "design-1"))
	require.Error(t, h.MarkExportedSnapshot("missing", "design-1"))

	cur, _ := h.Current()
	assert.Equal(t, "draft", cur.Milestone)
	assert.Equal(t, "design-1", cur.ExportedLineItemID)
	assert.Equal(t, 1, h.Cursor())
	assert.Equal(t, []string{"design-1"}, h.ExportedLineItemIDs())

	assert.Equal(t, 2, h.ClearExported("design-1"))
	assert.Equal(t, 0, h.ClearExported("design-1"))
	assert.Empty(t, h.ExportedLineItemIDs())
}

func TestHistoryReturnsCopies(t *testing.T) {
	h := newTestHistory(10)
	h.PushDesign(designAt(0))
	cur, _ := h.Current()
	cur.Design.Charms[0].X = 500
	cur.Milestone = "mutated"

	again, _ := h.Current()
	assert.Equal(t, float64(0), again.Design.Charms[0].X)
	assert.Empty(t, again.Milestone)
}

func TestHistoryPushAssignsIdentity(t *testing.T) {
	h := newTestHistory(10)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.True(t, h.Push(Snapshot{Design: designAt(0)}))
	cur, _ := h.Current()
	assert.NotEmpty(t, cur.ID)
	assert.Equal(t, 2026, cur.CreatedAt.Year())

	h.Reset()
	assert.Equal(t, 0, h.Len())
}
