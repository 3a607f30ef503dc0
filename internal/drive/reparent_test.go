package drive

import (
	"context"
	"testing"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInA(t *testing.T, f *fakeRemote) *Drive {
	t.Helper()
	d := New(f, Options{DismissAfter: time.Minute})
	require.NoError(t, d.Navigator.EnterFolder(context.Background(), types.IDPtr(1), "A"))
	return d
}

func moveIntent(src types.ItemRef, kind types.DragTargetKind, folder *int64) types.DragIntent {
	return types.DragIntent{
		Source:  src,
		Target:  types.DragTarget{Kind: kind, FolderID: folder},
		ToIndex: -1,
	}
}

func TestSelfNestingIsRefused(t *testing.T) {
	for _, kind := range []types.DragTargetKind{types.TargetFolder, types.TargetBreadcrumb} {
		t.Run(string(kind), func(t *testing.T) {
			f := fixtureTree()
			d := openInA(t, f)
			items, crumbs := d.Navigator.Items(), d.Navigator.Breadcrumbs()

			src := types.ItemRef{Type: types.ItemTypeFolder, ID: 2}
			err := d.Engine.OnDragEnd(context.Background(), moveIntent(src, kind, types.IDPtr(2)))

			assert.ErrorIs(t, err, ErrSelfNesting)
			assert.Empty(t, f.callsTo("MoveItem"))
			assert.Equal(t, items, d.Navigator.Items())
			assert.Equal(t, crumbs, d.Navigator.Breadcrumbs())
			assert.Empty(t, d.Banner.Message(), "self-nesting is not a user-facing error")
		})
	}
}

func TestHistoryWithFolderIDMayMove(t *testing.T) {
	// A history whose id matches the target folder id is not self-nesting
	f := fixtureTree()
	f.addHistory(2, "same id as B", 1)
	d := openInA(t, f)

	src := types.ItemRef{Type: types.ItemTypeHistory, ID: 2}
	require.NoError(t, d.Engine.OnDragEnd(context.Background(), moveIntent(src, types.TargetFolder, types.IDPtr(2))))
	assert.Equal(t, []string{"MoveItem history:2 2"}, f.callsTo("MoveItem"))
}

func TestCombinePrecedenceDecidesMoveTarget(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)

	err := d.Engine.HandleDrop(context.Background(), DropResult{
		DragUpdate: DragUpdate{
			DraggableID: "history:41",
			Source:      DragLocation{DroppableID: ListDroppableID, Index: 1},
			Destination: &DragLocation{DroppableID: FolderDroppableID(2)},
			Combine:     &Combine{DraggableID: FolderDroppableID(4), DroppableID: ListDroppableID},
		},
		Reason: ReasonDrop,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"MoveItem history:41 4"}, f.callsTo("MoveItem"))
}

func TestReorderHasNoRemoteEffect(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	callsBefore := len(f.calls)

	err := d.Engine.HandleDrop(context.Background(), DropResult{
		DragUpdate: DragUpdate{
			DraggableID: "folder:2",
			Source:      DragLocation{DroppableID: ListDroppableID, Index: 0},
			Destination: &DragLocation{DroppableID: ListDroppableID, Index: 2},
		},
		Reason: ReasonDrop,
	})
	require.NoError(t, err)

	assert.Len(t, f.calls, callsBefore, "a reorder must not reach the service")
	assert.Equal(t, []string{"history:41", "history:42", "folder:2"}, refs(d.Navigator.Items()))
}

func TestMoveReloadsOpenFolder(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	loadsBefore := len(f.callsTo("ListFolders 1"))

	src := types.ItemRef{Type: types.ItemTypeFolder, ID: 2}
	require.NoError(t, d.Engine.OnDragEnd(context.Background(), moveIntent(src, types.TargetFolder, types.IDPtr(4))))

	assert.Equal(t, []string{"MoveItem folder:2 4"}, f.callsTo("MoveItem"))
	assert.Len(t, f.callsTo("ListFolders 1"), loadsBefore+1)
	assert.Equal(t, []string{"history:41", "history:42"}, refs(d.Navigator.Items()))
	assert.Equal(t, []string{types.RootName, "A"}, crumbNames(d.Navigator.Breadcrumbs()))
}

func TestFailedMoveShowsBannerAndReloads(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	f.setFail("MoveItem", serviceError(400, "Cannot move a folder into its own descendant"))
	loadsBefore := len(f.callsTo("ListFolders 1"))

	src := types.ItemRef{Type: types.ItemTypeFolder, ID: 2}
	err := d.Engine.OnDragEnd(context.Background(), moveIntent(src, types.TargetFolder, types.IDPtr(4)))

	require.Error(t, err)
	assert.Equal(t, "Failed to move item: Cannot move a folder into its own descendant", d.Banner.Message())
	assert.Len(t, f.callsTo("ListFolders 1"), loadsBefore+1)
	assert.Equal(t, []string{"folder:2", "history:41", "history:42"}, refs(d.Navigator.Items()))
}

func TestMalformedDropReloads(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	loadsBefore := len(f.callsTo("ListFolders 1"))

	err := d.Engine.HandleDrop(context.Background(), DropResult{
		DragUpdate: DragUpdate{DraggableID: "widget:1"},
		Reason:     ReasonDrop,
	})
	require.Error(t, err)
	assert.Empty(t, f.callsTo("MoveItem"))
	assert.Equal(t, "Failed to move item: "+GenericFailure, d.Banner.Message())
	assert.Len(t, f.callsTo("ListFolders 1"), loadsBefore+1)
}

func TestHighlightFollowsPointerAndClears(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	e := d.Engine
	callsBefore := len(f.calls)

	// Updates before a drag starts are ignored
	require.NoError(t, e.HandleUpdate(DragUpdate{DraggableID: "history:41", Combine: &Combine{DraggableID: "folder:2"}}))
	assert.Equal(t, types.TargetNone, e.Highlight().Kind)

	require.NoError(t, e.OnDragStart(types.ItemRef{Type: types.ItemTypeHistory, ID: 41}))
	src, ok := e.Dragging()
	require.True(t, ok)
	assert.Equal(t, int64(41), src.ID)

	require.NoError(t, e.HandleUpdate(DragUpdate{DraggableID: "history:41", Combine: &Combine{DraggableID: "folder:2"}}))
	assert.Equal(t, types.DragTarget{Kind: types.TargetFolder, FolderID: types.IDPtr(2)}, e.Highlight())

	require.NoError(t, e.HandleUpdate(DragUpdate{DraggableID: "history:41", Destination: &DragLocation{DroppableID: "breadcrumb:root"}}))
	assert.Equal(t, types.DragTarget{Kind: types.TargetBreadcrumb}, e.Highlight())

	// Hovering a history row highlights nothing, whatever container is below
	require.NoError(t, e.HandleUpdate(DragUpdate{
		DraggableID: "history:41",
		Destination: &DragLocation{DroppableID: "breadcrumb:root"},
		Combine:     &Combine{DraggableID: "history:42"},
	}))
	assert.Equal(t, types.TargetNone, e.Highlight().Kind)

	assert.Len(t, f.calls, callsBefore, "highlighting never calls the service")

	// Cancel clears the highlight
	require.NoError(t, e.HandleDrop(context.Background(), DropResult{
		DragUpdate: DragUpdate{DraggableID: "history:41", Combine: &Combine{DraggableID: "folder:2"}},
		Reason:     ReasonCancel,
	}))
	assert.Equal(t, types.TargetNone, e.Highlight().Kind)
	_, ok = e.Dragging()
	assert.False(t, ok)
	assert.Empty(t, f.callsTo("MoveItem"))
}

func TestTeardownClearsAndIgnoresDrops(t *testing.T) {
	f := fixtureTree()
	d := openInA(t, f)
	e := d.Engine

	require.NoError(t, e.OnDragStart(types.ItemRef{Type: types.ItemTypeHistory, ID: 41}))
	require.NoError(t, e.OnDragUpdate(types.DragTarget{Kind: types.TargetFolder, FolderID: types.IDPtr(2)}))
	e.Teardown()

	assert.Equal(t, types.TargetNone, e.Highlight().Kind)
	_, ok := e.Dragging()
	assert.False(t, ok)

	src := types.ItemRef{Type: types.ItemTypeHistory, ID: 41}
	err := e.OnDragEnd(context.Background(), moveIntent(src, types.TargetFolder, types.IDPtr(2)))
	assert.ErrorIs(t, err, ErrDetached)
	assert.Empty(t, f.callsTo("MoveItem"))
	assert.ErrorIs(t, e.OnDragStart(src), ErrDetached)
}

func TestMoveDuringNavigationKeepsNavigationTarget(t *testing.T) {
	ctx := context.Background()
	f := fixtureTree()
	d := openInA(t, f)

	gate := f.setGate("2")

	entered := make(chan error, 1)
	go func() { entered <- d.Navigator.EnterFolder(ctx, types.IDPtr(2), "B") }()
	require.Eventually(t, d.Navigator.Loading, time.Second, time.Millisecond)

	moved := make(chan error, 1)
	src := types.ItemRef{Type: types.ItemTypeHistory, ID: 41}
	go func() { moved <- d.Engine.OnDragEnd(ctx, moveIntent(src, types.TargetFolder, types.IDPtr(2))) }()
	require.Eventually(t, func() bool { return len(f.callsTo("MoveItem")) == 1 }, time.Second, time.Millisecond)
	close(gate)

	for _, ch := range []chan error{entered, moved} {
		select {
		case err := <-ch:
			if err != nil {
				assert.ErrorIs(t, err, ErrSuperseded)
			}
		case <-time.After(time.Second):
			t.Fatal("load did not return")
		}
	}
	require.Eventually(t, func() bool { return !d.Navigator.Loading() }, time.Second, time.Millisecond)

	assert.Equal(t, []string{types.RootName, "A", "B"}, crumbNames(d.Navigator.Breadcrumbs()))
	assert.Equal(t, []string{"folder:3", "history:41"}, refs(d.Navigator.Items()))
	assert.Empty(t, d.Banner.Message())
}
