package transaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/engine/selection"
	"github.com/vitex-editor/vitex/internal/engine/transaction"
)

func strPtr(s string) *string { return &s }

func TestTransactionChangeInsertAndDelete(t *testing.T) {
	doc := rope.FromString("hello world")
	tx, err := transaction.Change(doc, []transaction.Change{
		{From: 6, To: 11, Text: strPtr("there")},
	})
	require.NoError(t, err)

	out, err := tx.ApplyTo(doc)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out.String())
}

func TestTransactionChangeRejectsOverlap(t *testing.T) {
	doc := rope.FromString("hello world")
	_, err := transaction.Change(doc, []transaction.Change{
		{From: 0, To: 5},
		{From: 3, To: 8},
	})
	require.Error(t, err)
	var overlap *transaction.OverlappingRangeError
	require.ErrorAs(t, err, &overlap)
}

func TestTransactionChangeIgnoreOverlappingDropsSecond(t *testing.T) {
	doc := rope.FromString("0123456789")
	tx, err := transaction.ChangeIgnoreOverlapping(doc,
		[]transaction.Change{{From: 0, To: 5}, {From: 3, To: 8}},
		func(from, to uint64) *string { return strPtr("X") },
	)
	require.NoError(t, err)
	out, err := tx.ApplyTo(doc)
	require.NoError(t, err)
	assert.Equal(t, "X56789", out.String())
}

func TestTransactionDeleteMergesOverlaps(t *testing.T) {
	doc := rope.FromString("0123456789")
	tx, err := transaction.Delete(doc, []transaction.Deletion{
		{From: 2, To: 5},
		{From: 4, To: 7},
	})
	require.NoError(t, err)
	out, err := tx.ApplyTo(doc)
	require.NoError(t, err)
	assert.Equal(t, "01789", out.String())
}

func TestTransactionInvertRoundTrips(t *testing.T) {
	doc := rope.FromString("hello world")
	tx, err := transaction.Change(doc, []transaction.Change{
		{From: 6, To: 11, Text: strPtr("there!")},
	})
	require.NoError(t, err)

	out, err := tx.ApplyTo(doc)
	require.NoError(t, err)

	inv, err := tx.Invert(doc)
	require.NoError(t, err)

	back, err := inv.ApplyTo(out)
	require.NoError(t, err)
	assert.Equal(t, doc.String(), back.String())
}

func TestTransactionInsertAtEveryCursor(t *testing.T) {
	doc := rope.FromString("aa aa aa")
	sel, err := selection.New([]selection.Range{
		selection.Point(0),
		selection.Point(3),
		selection.Point(6),
	}, 0)
	require.NoError(t, err)

	tx, err := transaction.Insert(doc, sel, "X")
	require.NoError(t, err)

	out, err := tx.ApplyTo(doc)
	require.NoError(t, err)
	assert.Equal(t, "Xaa Xaa Xaa", out.String())
}

func TestTransactionWithSelectionRoundTrip(t *testing.T) {
	doc := rope.FromString("abc")
	sel := selection.PointSelection(0)
	tx := transaction.New(doc).WithSelection(sel)

	got, ok := tx.Selection()
	require.True(t, ok)
	assert.Equal(t, sel.Primary(), got.Primary())
}
