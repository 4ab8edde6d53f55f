// Package transaction pairs a changeset.ChangeSet with the selection it
// should leave behind, and provides the builders that turn a set of
// (possibly selection-driven) edits into one.
package transaction

import (
	"sort"

	"github.com/vitex-editor/vitex/internal/engine/changeset"
	"github.com/vitex-editor/vitex/internal/engine/rope"
	"github.com/vitex-editor/vitex/internal/engine/selection"
)

// Change describes a single edit: replace doc[From:To) with Text (chars).
// A nil Text is a pure deletion.
type Change struct {
	From, To uint64
	Text     *string
}

// Deletion describes a single char range to remove.
type Deletion struct {
	From, To uint64
}

// Transaction is a ChangeSet plus the (optional) selection it should leave
// the document in once applied.
type Transaction struct {
	changes   changeset.ChangeSet
	selection *selection.Selection
}

// New returns the identity transaction over doc: no edits, no selection
// override.
func New(doc rope.Rope) Transaction {
	return Transaction{changes: changeset.New(doc)}
}

// Changes returns the underlying ChangeSet.
func (t Transaction) Changes() changeset.ChangeSet { return t.changes }

// Selection returns the selection this transaction should leave behind, if
// any was set.
func (t Transaction) Selection() (selection.Selection, bool) {
	if t.selection == nil {
		return selection.Selection{}, false
	}
	return *t.selection, true
}

// WithSelection returns t with its post-apply selection set to sel.
func (t Transaction) WithSelection(sel selection.Selection) Transaction {
	t.selection = &sel
	return t
}

// Apply applies the transaction's changes to *doc in place.
func (t Transaction) Apply(doc *rope.Rope) error {
	return t.changes.Apply(doc)
}

// ApplyTo applies the transaction's changes to doc and returns the result.
func (t Transaction) ApplyTo(doc rope.Rope) (rope.Rope, error) {
	return t.changes.ApplyTo(doc)
}

// Invert returns a Transaction that undoes t when applied to the document
// that resulted from applying t. The returned transaction carries no
// selection; callers restore the prior selection from the Revision itself.
func (t Transaction) Invert(original rope.Rope) (Transaction, error) {
	inv, err := t.changes.Invert(original)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{changes: inv}, nil
}

// Compose combines t then other into a single Transaction. other's
// selection (if set) takes precedence.
func (t Transaction) Compose(other Transaction) (Transaction, error) {
	composed, err := t.changes.Compose(other.changes)
	if err != nil {
		return Transaction{}, err
	}
	out := Transaction{changes: composed, selection: t.selection}
	if other.selection != nil {
		out.selection = other.selection
	}
	return out, nil
}

// InsertAtEOF appends a trailing insert to t's ChangeSet (used for the
// "append to end of file" family of commands).
func (t Transaction) InsertAtEOF(text string) Transaction {
	t.changes.AppendInsert(text)
	return t
}

// ChangesIter reconstructs the (from, to, insert) edits of this
// transaction, for external consumers like LSP incremental sync.
func (t Transaction) ChangesIter() []changeset.ChangeEntry {
	return t.changes.ChangesIter()
}

func validateChangeBounds(from, to, length uint64) error {
	if from > to {
		return &InvalidRangeError{From: from, To: to}
	}
	if to > length {
		return &RangeOutOfBoundsError{From: from, To: to, Len: length}
	}
	return nil
}

// Change builds a Transaction from a set of non-overlapping, in-order edits
// against doc. Each edit's From must be >= the previous edit's To.
func Change(doc rope.Rope, changes []Change) (Transaction, error) {
	length := doc.CharLen()

	cs := changeset.WithCapacity(2*len(changes) + 1)
	var last uint64
	for _, c := range changes {
		if err := validateChangeBounds(c.From, c.To, length); err != nil {
			return Transaction{}, err
		}
		if c.From < last {
			return Transaction{}, &OverlappingRangeError{PrevEnd: last, From: c.From, To: c.To}
		}

		cs.Retain(c.From - last)
		span := c.To - c.From
		if c.Text != nil {
			cs.AppendInsert(*c.Text)
			cs.AppendDelete(span)
		} else {
			cs.AppendDelete(span)
		}
		last = c.To
	}
	cs.Retain(length - last)

	return Transaction{changes: cs}, nil
}

// ChangeIgnoreOverlapping is like Change, but edits overlapping an earlier
// (sorted-by-position) edit are dropped instead of erroring. process
// returns the replacement text for a surviving edit, or nil for a pure
// deletion.
func ChangeIgnoreOverlapping(doc rope.Rope, ranges []Change, process func(from, to uint64) *string) (Transaction, error) {
	length := doc.CharLen()

	sorted := append([]Change{}, ranges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	var last uint64
	var changes []Change
	for _, c := range sorted {
		if err := validateChangeBounds(c.From, c.To, length); err != nil {
			return Transaction{}, err
		}
		if c.From < last {
			continue
		}
		text := process(c.From, c.To)
		last = c.To
		changes = append(changes, Change{From: c.From, To: c.To, Text: text})
	}
	return Change(doc, changes)
}

// Delete builds a Transaction from a set of (possibly overlapping)
// deletions, merging overlapping ones together first.
func Delete(doc rope.Rope, deletions []Deletion) (Transaction, error) {
	length := doc.CharLen()

	sorted := append([]Deletion{}, deletions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	var merged []Deletion
	for _, d := range sorted {
		if err := validateChangeBounds(d.From, d.To, length); err != nil {
			return Transaction{}, err
		}
		if len(merged) > 0 && d.From <= merged[len(merged)-1].To {
			if d.To > merged[len(merged)-1].To {
				merged[len(merged)-1].To = d.To
			}
			continue
		}
		merged = append(merged, d)
	}

	changes := make([]Change, len(merged))
	for i, d := range merged {
		changes[i] = Change{From: d.From, To: d.To}
	}
	return Change(doc, changes)
}

// ChangeBySelection builds a Transaction with one Change per range of sel,
// via f, preserving the CursorId ordering of sel for range-by-range
// commands (like per-cursor inserts).
func ChangeBySelection(doc rope.Rope, sel selection.Selection, f func(selection.Range) Change) (Transaction, error) {
	ranges := sel.Ranges()
	changes := make([]Change, len(ranges))
	for i, r := range ranges {
		changes[i] = f(r)
	}
	return Change(doc, changes)
}

// ChangeBySelectionIgnoreOverlapping builds a Transaction with one Change
// per range of sel, dropping any whose computed (from, to) overlaps an
// earlier range, and returns the Selection rebuilt from the surviving
// ranges (tracking each surviving range's own post-apply position).
func ChangeBySelectionIgnoreOverlapping(
	doc rope.Rope,
	sel selection.Selection,
	changeRange func(selection.Range) (uint64, uint64),
	createText func(from, to uint64) *string,
) (Transaction, selection.Selection, error) {
	ranges := sel.Ranges()

	type keyed struct {
		from, to uint64
		r        selection.Range
	}
	keys := make([]keyed, len(ranges))
	for i, r := range ranges {
		from, to := changeRange(r)
		keys[i] = keyed{from: from, to: to, r: r}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})

	length := doc.CharLen()
	var last uint64
	var changes []Change
	var survivors []selection.Range
	for _, k := range keys {
		if err := validateChangeBounds(k.from, k.to, length); err != nil {
			return Transaction{}, selection.Selection{}, err
		}
		if k.from < last {
			continue
		}
		text := createText(k.from, k.to)
		last = k.to
		changes = append(changes, Change{From: k.from, To: k.to, Text: text})
		survivors = append(survivors, k.r)
	}

	tx, err := Change(doc, changes)
	if err != nil {
		return Transaction{}, selection.Selection{}, err
	}

	newSelection := sel
	if len(survivors) > 0 {
		newSelection, err = selection.New(survivors, 0)
		if err != nil {
			return Transaction{}, selection.Selection{}, err
		}
	}
	return tx, newSelection, nil
}

// DeleteBySelection builds a Transaction with one Deletion per range of
// sel, via f, merging any overlaps.
func DeleteBySelection(doc rope.Rope, sel selection.Selection, f func(selection.Range) Deletion) (Transaction, error) {
	ranges := sel.Ranges()
	deletions := make([]Deletion, len(ranges))
	for i, r := range ranges {
		deletions[i] = f(r)
	}
	return Delete(doc, deletions)
}

// Insert builds a Transaction that inserts text at every range's head.
func Insert(doc rope.Rope, sel selection.Selection, text string) (Transaction, error) {
	return ChangeBySelection(doc, sel, func(r selection.Range) Change {
		t := text
		return Change{From: r.Head, To: r.Head, Text: &t}
	})
}
