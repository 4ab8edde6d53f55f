package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/engine/history"
	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

func strPtr(s string) *string { return &s }

func undo(t *testing.T, h *history.History, state *history.State) {
	t.Helper()
	jump, ok := h.Undo()
	if !ok {
		return
	}
	require.NoError(t, history.ApplyJumpToState(h, state, jump))
}

func redo(t *testing.T, h *history.History, state *history.State) {
	t.Helper()
	jump, ok := h.Redo()
	if !ok {
		return
	}
	require.NoError(t, history.ApplyJumpToState(h, state, jump))
}

func TestHistoryUndoRedo(t *testing.T) {
	h := history.New()
	state := history.State{
		Doc:       rope.FromString("hello"),
		Selection: selection.PointSelection(0),
	}

	tx1, err := transaction.Change(state.Doc, []transaction.Change{{From: 5, To: 5, Text: strPtr(" world!")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx1, state))
	require.NoError(t, tx1.Apply(&state.Doc))
	assert.Equal(t, "hello world!", state.Doc.String())

	tx2, err := transaction.Change(state.Doc, []transaction.Change{{From: 6, To: 11, Text: strPtr("世界")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx2, state))
	require.NoError(t, tx2.Apply(&state.Doc))
	assert.Equal(t, "hello 世界!", state.Doc.String())

	undo(t, h, &state)
	assert.Equal(t, "hello world!", state.Doc.String())

	redo(t, h, &state)
	assert.Equal(t, "hello 世界!", state.Doc.String())

	undo(t, h, &state)
	undo(t, h, &state)
	assert.Equal(t, "hello", state.Doc.String())

	// undo at root is a no-op
	undo(t, h, &state)
	assert.Equal(t, "hello", state.Doc.String())
}

func TestHistoryUndoDoesNotMutateBeforeApply(t *testing.T) {
	h := history.New()
	state := history.State{
		Doc:       rope.FromString("hello"),
		Selection: selection.PointSelection(0),
	}

	tx, err := transaction.Change(state.Doc, []transaction.Change{{From: 5, To: 5, Text: strPtr(" world")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx, state))
	require.NoError(t, tx.Apply(&state.Doc))
	require.Equal(t, 1, h.CurrentRevision())

	jump, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0, jump.Target)

	// History state shouldn't move until the jump is applied.
	assert.Equal(t, 1, h.CurrentRevision())

	require.NoError(t, history.ApplyJumpToState(h, &state, jump))
	assert.Equal(t, 0, h.CurrentRevision())
	assert.Equal(t, "hello", state.Doc.String())
}

func TestHistoryJumpAcrossBranches(t *testing.T) {
	h := history.New()
	state := history.State{
		Doc:       rope.FromString("a"),
		Selection: selection.PointSelection(0),
	}

	tx1, err := transaction.Change(state.Doc, []transaction.Change{{From: 1, To: 1, Text: strPtr("b")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx1, state))
	require.NoError(t, tx1.Apply(&state.Doc))
	assert.Equal(t, "ab", state.Doc.String())

	checkpoint := h.CreateCheckpoint()

	tx2, err := transaction.Change(state.Doc, []transaction.Change{{From: 2, To: 2, Text: strPtr("c")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx2, state))
	require.NoError(t, tx2.Apply(&state.Doc))
	assert.Equal(t, "abc", state.Doc.String())

	jump, err := h.JumpToCheckpoint(checkpoint)
	require.NoError(t, err)
	require.NoError(t, history.ApplyJumpToState(h, &state, jump))
	assert.Equal(t, "ab", state.Doc.String())
}

func TestHistoryGroupScopeComposesIntoOneRevision(t *testing.T) {
	h := history.New()
	state := history.State{
		Doc:       rope.FromString("hello"),
		Selection: selection.PointSelection(0),
	}
	original := state

	scope := h.GroupScope("batch insert", original)

	tx1, err := transaction.Change(state.Doc, []transaction.Change{{From: 5, To: 5, Text: strPtr(",")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx1, state))
	require.NoError(t, tx1.Apply(&state.Doc))

	tx2, err := transaction.Change(state.Doc, []transaction.Change{{From: 6, To: 6, Text: strPtr(" world")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx2, state))
	require.NoError(t, tx2.Apply(&state.Doc))

	require.NoError(t, scope.End())
	assert.Equal(t, "hello, world", state.Doc.String())
	assert.Equal(t, 1, h.CurrentRevision())

	undo(t, h, &state)
	assert.Equal(t, "hello", state.Doc.String())
	assert.Equal(t, 0, h.CurrentRevision())
}

func TestHistoryAtRootAndLen(t *testing.T) {
	h := history.New()
	assert.True(t, h.AtRoot())
	assert.True(t, h.IsEmpty())
	assert.Equal(t, 1, h.Len())

	state := history.State{Doc: rope.FromString("x"), Selection: selection.PointSelection(0)}
	tx, err := transaction.Change(state.Doc, []transaction.Change{{From: 1, To: 1, Text: strPtr("y")}})
	require.NoError(t, err)
	require.NoError(t, h.CommitRevision(tx, state))

	assert.False(t, h.AtRoot())
	assert.False(t, h.IsEmpty())
	assert.Equal(t, 2, h.Len())
}
