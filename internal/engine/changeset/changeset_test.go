package changeset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitex-editor/vitex/internal/engine/changeset"
	"github.com/vitex-editor/vitex/internal/engine/rope"
)

func apply(t *testing.T, doc string, build func(*changeset.ChangeSet)) string {
	t.Helper()
	r := rope.FromString(doc)
	cs := changeset.WithCapacity(4)
	build(&cs)
	out, err := cs.ApplyTo(r)
	require.NoError(t, err)
	return out.String()
}

func TestChangeSetApplyInsertDeleteRetain(t *testing.T) {
	got := apply(t, "hello world", func(cs *changeset.ChangeSet) {
		cs.Retain(6)
		cs.AppendDelete(5)
		cs.AppendInsert("there")
	})
	assert.Equal(t, "hello there", got)
}

func TestChangeSetInsertMergesAdjacent(t *testing.T) {
	var cs changeset.ChangeSet
	cs.AppendInsert("foo")
	cs.AppendInsert("bar")
	require.Len(t, cs.Ops(), 1)
	assert.Equal(t, "foobar", cs.Ops()[0].Text)
}

func TestChangeSetInsertNormalizesDeleteThenInsert(t *testing.T) {
	var cs changeset.ChangeSet
	cs.AppendDelete(3)
	cs.AppendInsert("xyz")
	require.Len(t, cs.Ops(), 2)
	assert.Equal(t, changeset.OpInsert, cs.Ops()[0].Kind)
	assert.Equal(t, changeset.OpDelete, cs.Ops()[1].Kind)
}

func TestChangeSetComposition(t *testing.T) {
	r := rope.FromString("hello world!")
	a := changeset.WithCapacity(4)
	a.Retain(6)
	a.AppendDelete(5)
	a.AppendInsert("there")
	a.Retain(1)

	mid, err := a.ApplyTo(r)
	require.NoError(t, err)
	require.Equal(t, "hello there!", mid.String())

	b := changeset.WithCapacity(2)
	b.Retain(12)
	b.AppendInsert(" How are you?")

	composed, err := a.Compose(b)
	require.NoError(t, err)

	out, err := composed.ApplyTo(r)
	require.NoError(t, err)
	assert.Equal(t, "hello there! How are you?", out.String())
}

func TestChangeSetCombineWithEmpty(t *testing.T) {
	r := rope.FromString("some text")
	a := changeset.New(r)
	empty := changeset.New(r)

	composed, err := a.Compose(empty)
	require.NoError(t, err)
	assert.True(t, composed.IsEmpty())
}

func TestChangeSetCombineWithUTF8(t *testing.T) {
	r := rope.FromString("Hello, 世界!")
	a := changeset.WithCapacity(4)
	a.Retain(7)
	a.AppendDelete(2)
	a.AppendInsert("World")
	a.Retain(1)

	out, err := a.ApplyTo(r)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out.String())
}

func TestChangeSetInvert(t *testing.T) {
	r := rope.FromString("hello world")
	a := changeset.WithCapacity(4)
	a.Retain(6)
	a.AppendDelete(5)
	a.AppendInsert("there!")

	forward, err := a.ApplyTo(r)
	require.NoError(t, err)

	inv, err := a.Invert(r)
	require.NoError(t, err)

	back, err := inv.ApplyTo(forward)
	require.NoError(t, err)
	assert.Equal(t, r.String(), back.String())
}

func TestChangeSetInvertEmptyIsIdentity(t *testing.T) {
	r := rope.FromString("abc")
	cs := changeset.New(r)
	inv, err := cs.Invert(r)
	require.NoError(t, err)
	assert.True(t, inv.IsEmpty())
}

func TestChangeSetApplyErrorsOnLengthMismatch(t *testing.T) {
	r := rope.FromString("short")
	cs := changeset.New(rope.FromString("a much longer document"))
	_, err := cs.ApplyTo(r)
	require.Error(t, err)
	var mismatch *changeset.LengthMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestChangeSetMapPosAssocVariants(t *testing.T) {
	cs := changeset.WithCapacity(3)
	cs.Retain(4)
	cs.AppendInsert("XYZ")
	cs.Retain(4)

	before, err := cs.MapPos(4, changeset.Before)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), before)

	after, err := cs.MapPos(4, changeset.After)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), after)
}

func TestChangeSetMapPosWordAssoc(t *testing.T) {
	cs := changeset.WithCapacity(3)
	cs.Retain(3)
	cs.AppendInsert("_baz")
	cs.Retain(4)

	// "_baz" is entirely word characters, so AfterWord keeps the position
	// past the whole insertion, same as After.
	afterWord, err := cs.MapPos(3, changeset.AfterWord)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), afterWord)

	// BeforeWord walks back from the end over word characters; since all of
	// "_baz" is word characters, the insert offset collapses to 0.
	beforeWord, err := cs.MapPos(3, changeset.BeforeWord)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), beforeWord)
}

func TestChangeSetUpdatePositionsBulkOutOfOrder(t *testing.T) {
	cs := changeset.WithCapacity(4)
	cs.Retain(2)
	cs.AppendDelete(3)
	cs.AppendInsert("XY")
	cs.Retain(5)

	p1, p2, p3 := uint64(9), uint64(0), uint64(5)
	positions := []changeset.PosAssoc{
		{Pos: &p1, Assoc: changeset.After},
		{Pos: &p2, Assoc: changeset.After},
		{Pos: &p3, Assoc: changeset.After},
	}
	require.NoError(t, cs.UpdatePositions(positions))
	assert.Equal(t, uint64(8), p1)
	assert.Equal(t, uint64(0), p2)
	assert.Equal(t, uint64(4), p3)
}

func TestChangeSetUpdatePositionsOutOfBounds(t *testing.T) {
	cs := changeset.WithCapacity(1)
	cs.Retain(3)

	p := uint64(10)
	err := cs.UpdatePositions([]changeset.PosAssoc{{Pos: &p, Assoc: changeset.After}})
	require.Error(t, err)
	var oob *changeset.PositionsOutOfBoundsError
	require.ErrorAs(t, err, &oob)
}

func TestChangeSetChangesIter(t *testing.T) {
	cs := changeset.WithCapacity(3)
	cs.Retain(6)
	cs.AppendDelete(5)
	cs.AppendInsert("there")

	changes := cs.ChangesIter()
	require.Len(t, changes, 1)
	assert.Equal(t, uint64(6), changes[0].From)
	assert.Equal(t, uint64(11), changes[0].To)
	require.NotNil(t, changes[0].Insert)
	assert.Equal(t, "there", *changes[0].Insert)
}

func FuzzChangeSetComposeInvertRoundTrip(f *testing.F) {
	f.Add("hello world", uint64(2), uint64(3), "XY")
	f.Add("", uint64(0), uint64(0), "abc")
	f.Add("日本語のテスト", uint64(1), uint64(2), "ab")

	f.Fuzz(func(t *testing.T, doc string, retain, del uint64, ins string) {
		r := rope.FromString(doc)
		n := r.CharLen()
		if n == 0 {
			retain, del = 0, 0
		} else {
			retain %= n + 1
			if retain > n {
				retain = n
			}
			if n-retain > 0 {
				del %= (n - retain) + 1
			} else {
				del = 0
			}
		}

		cs := changeset.WithCapacity(4)
		cs.Retain(retain)
		cs.AppendDelete(del)
		cs.AppendInsert(ins)
		cs.Retain(n - retain - del)

		out, err := cs.ApplyTo(r)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		inv, err := cs.Invert(r)
		if err != nil {
			t.Fatalf("invert failed: %v", err)
		}
		back, err := inv.ApplyTo(out)
		if err != nil {
			t.Fatalf("invert apply failed: %v", err)
		}
		if back.String() != r.String() {
			t.Fatalf("round trip mismatch: got %q want %q", back.String(), r.String())
		}
	})
}
