package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/engine/document"
	"github.com/vitex-editor/vitex/internal/engine/history"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

func strPtr(s string) *string { return &s }

func TestDocumentApplyTransactionUpdatesTextSelectionAndVersion(t *testing.T) {
	d := document.New(document.WithContent("hello"))
	assert.Equal(t, "hello", d.Text())
	assert.Equal(t, uint64(0), d.Version())
	assert.False(t, d.Modified())

	tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr(" world")}})
	require.NoError(t, err)

	require.NoError(t, d.ApplyTransaction(tx))
	assert.Equal(t, "hello world", d.Text())
	assert.Equal(t, uint64(1), d.Version())
	assert.True(t, d.Modified())

	// No explicit selection on tx: the old point selection (0) maps through
	// the insert at 5 and stays put.
	assert.Equal(t, uint64(0), d.Selection().Primary().Head)
}

func TestDocumentApplyTransactionHonorsExplicitSelection(t *testing.T) {
	d := document.New(document.WithContent("hello"))
	sel := selection.Single(5, 11)

	tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr(" world")}})
	require.NoError(t, err)
	tx = tx.WithSelection(sel)

	require.NoError(t, d.ApplyTransaction(tx))
	assert.Equal(t, uint64(11), d.Selection().Primary().Head)
}

func TestDocumentUndoRedo(t *testing.T) {
	d := document.New(document.WithContent("hello"))

	tx1, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr(" world")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx1))
	assert.Equal(t, "hello world", d.Text())

	tx2, err := transaction.Change(d.Rope(), []transaction.Change{{From: 0, To: 5, Text: strPtr("goodbye")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx2))
	assert.Equal(t, "goodbye world", d.Text())

	require.NoError(t, d.Undo())
	assert.Equal(t, "hello world", d.Text())

	require.NoError(t, d.Undo())
	assert.Equal(t, "hello", d.Text())
	assert.False(t, d.CanUndo())

	var nothingErr *document.NothingToUndoError
	require.ErrorAs(t, d.Undo(), &nothingErr)

	require.NoError(t, d.Redo())
	assert.Equal(t, "hello world", d.Text())
}

func TestDocumentSetSelectionDoesNotBumpVersion(t *testing.T) {
	d := document.New(document.WithContent("hello world"))
	d.SetSelection(selection.Single(0, 5))
	assert.Equal(t, uint64(0), d.Version())
	assert.False(t, d.Modified())
	assert.Equal(t, uint64(5), d.Selection().Primary().Head)
}

func TestDocumentCompoundEditComposesIntoOneUndoStep(t *testing.T) {
	d := document.New(document.WithContent("hello"))
	require.NoError(t, d.BeginCompoundEdit("insert run"))

	tx1, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr(",")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx1))

	tx2, err := transaction.Change(d.Rope(), []transaction.Change{{From: 6, To: 6, Text: strPtr(" world")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx2))

	require.NoError(t, d.EndCompoundEdit())
	assert.Equal(t, "hello, world", d.Text())

	require.NoError(t, d.Undo())
	assert.Equal(t, "hello", d.Text())
}

func TestDocumentCancelCompoundEditDropsHistoryOnly(t *testing.T) {
	d := document.New(document.WithContent("hello"))
	require.NoError(t, d.BeginCompoundEdit("scratch"))

	tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr("!")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx))

	d.CancelCompoundEdit()
	assert.Equal(t, "hello!", d.Text())
	assert.False(t, d.CanUndo())
}

func TestDocumentReadOnlyRejectsMutation(t *testing.T) {
	d := document.New(document.WithContent("hello"), document.WithReadOnly())

	tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr("!")}})
	require.NoError(t, err)

	var roErr *document.ReadOnlyError
	require.ErrorAs(t, d.ApplyTransaction(tx), &roErr)
	require.ErrorAs(t, d.Undo(), &roErr)
}

func TestDocumentMarkCleanClearsModified(t *testing.T) {
	d := document.New(document.WithContent("hello"))
	tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: 5, To: 5, Text: strPtr("!")}})
	require.NoError(t, err)
	require.NoError(t, d.ApplyTransaction(tx))
	require.True(t, d.Modified())

	d.MarkClean()
	assert.False(t, d.Modified())
}

func TestDocumentEarlierByStepsAndPeriod(t *testing.T) {
	d := document.New(document.WithContent("a"))
	for _, s := range []string{"b", "c", "d"} {
		tx, err := transaction.Change(d.Rope(), []transaction.Change{{From: d.CharLen(), To: d.CharLen(), Text: strPtr(s)}})
		require.NoError(t, err)
		require.NoError(t, d.ApplyTransaction(tx))
	}
	assert.Equal(t, "abcd", d.Text())

	require.NoError(t, d.Earlier(history.UndoSteps(2)))
	assert.Equal(t, "ab", d.Text())

	require.NoError(t, d.Later(history.UndoSteps(1)))
	assert.Equal(t, "abc", d.Text())
}

func TestNewFromReaderLoadsFullContent(t *testing.T) {
	d, err := document.NewFromReader(strings.NewReader("loaded content"))
	require.NoError(t, err)
	assert.Equal(t, "loaded content", d.Text())
	assert.False(t, d.Modified())
}
