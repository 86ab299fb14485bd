package kind

import (
	"fmt"
	"strconv"
	"strings"
)

// LayoutEntry names one labeled bit range in a Kind's flattened layout.
// Row groups entries that must not overlap each other (one row per nesting
// level, with each Enum variant getting its own row so that alternative
// variants sharing the same physical bits do not count as an overlap).
// Grounded on generate_kind_layout in
// original_source/rhdl-core/src/kind.rs, keeping its row bookkeeping but
// not the SVG renderer it drives there (out of scope here; TextLayout below
// is the text-only replacement).
type LayoutEntry struct {
	Row        int
	Start, End int // bit range, End exclusive, LSB-first numbering
	Name       string
}

func (e LayoutEntry) Len() int { return e.End - e.Start }

// Layout walks k and returns every LayoutEntry describing its bit-level
// shape, from the whole-Kind entry down to each leaf field.
func Layout(k *Kind) []LayoutEntry {
	return layoutAt(k, rootLabel(k), 0, 0).entries
}

type layoutResult struct {
	entries []LayoutEntry
	nextRow int // one past the highest row used
}

func rootLabel(k *Kind) string { return k.String() }

func layoutAt(k *Kind, name string, row, offset int) layoutResult {
	self := LayoutEntry{Row: row, Start: offset, End: offset + k.Bits(), Name: name}
	switch k.tag {
	case TagEmpty, TagBits, TagSigned, TagClock, TagReset:
		return layoutResult{entries: []LayoutEntry{self}, nextRow: row + 1}

	case TagArray:
		out := []LayoutEntry{self}
		stride := k.base.Bits()
		next := row + 1
		for i := 0; i < k.size; i++ {
			r := layoutAt(k.base, fmt.Sprintf("[%d]", i), row+1, offset+i*stride)
			out = append(out, r.entries...)
			if r.nextRow > next {
				next = r.nextRow
			}
		}
		return layoutResult{entries: out, nextRow: next}

	case TagTuple:
		out := []LayoutEntry{self}
		cur := offset
		next := row + 1
		for i, e := range k.elems {
			r := layoutAt(e, fmt.Sprintf(".%d", i), row+1, cur)
			out = append(out, r.entries...)
			cur += e.Bits()
			if r.nextRow > next {
				next = r.nextRow
			}
		}
		return layoutResult{entries: out, nextRow: next}

	case TagStruct, TagUnion:
		out := []LayoutEntry{self}
		cur := offset
		next := row + 1
		for _, f := range k.fields {
			r := layoutAt(f.Kind, "."+f.Name, row+1, cur)
			out = append(out, r.entries...)
			if k.tag == TagStruct {
				cur += f.Kind.Bits()
			}
			if r.nextRow > next {
				next = r.nextRow
			}
		}
		return layoutResult{entries: out, nextRow: next}

	case TagSignal:
		r := layoutAt(k.base, name, row, offset)
		return layoutResult{entries: r.entries, nextRow: r.nextRow}

	case TagEnum:
		w := k.discriminantWidth()
		discStart, payloadStart := offset, offset+w
		if k.layout.Alignment == Msb {
			discStart, payloadStart = offset+k.Bits()-w, offset
		}
		out := []LayoutEntry{self}
		curRow := row + 1
		for _, v := range k.variants {
			out = append(out, LayoutEntry{
				Row: curRow, Start: discStart, End: discStart + w,
				Name: fmt.Sprintf("%s(%s)", v.Name, strconv.FormatInt(v.Discriminant, 2)),
			})
			r := layoutAt(v.Payload, v.Name, curRow, payloadStart)
			out = append(out, r.entries[1:]...) // skip v.Payload's own whole-kind header row; disc row already carries it
			curRow = r.nextRow
		}
		return layoutResult{entries: out, nextRow: curRow}

	default:
		return layoutResult{entries: []LayoutEntry{self}, nextRow: row + 1}
	}
}

// ValidateLayout reports whether no two entries sharing a Row overlap, per
// original_source's is_layout_valid (there implemented as a dense grid scan;
// here as a pairwise interval check within each row, since rows are
// independent).
func ValidateLayout(entries []LayoutEntry) error {
	byRow := map[int][]LayoutEntry{}
	for _, e := range entries {
		byRow[e.Row] = append(byRow[e.Row], e)
	}
	for row, es := range byRow {
		for i := 0; i < len(es); i++ {
			for j := i + 1; j < len(es); j++ {
				if es[i].Start < es[j].End && es[j].Start < es[i].End {
					return &LayoutOverlap{Row: row, A: es[i], B: es[j]}
				}
			}
		}
	}
	return nil
}

// LayoutOverlap reports two same-row layout entries with overlapping bit
// ranges.
type LayoutOverlap struct {
	Row  int
	A, B LayoutEntry
}

func (e *LayoutOverlap) Error() string {
	return fmt.Sprintf("layout row %d: %q [%d,%d) overlaps %q [%d,%d)",
		e.Row, e.A.Name, e.A.Start, e.A.End, e.B.Name, e.B.Start, e.B.End)
}

// TextLayout renders k's layout as one text line per row, each entry shown
// as "name[start:end)"; a text-only stand-in for the original's SVG/grid
// renderer (out of scope per spec.md §1).
func TextLayout(k *Kind) string {
	entries := Layout(k)
	maxRow := 0
	for _, e := range entries {
		if e.Row > maxRow {
			maxRow = e.Row
		}
	}
	var sb strings.Builder
	for row := 0; row <= maxRow; row++ {
		var parts []string
		for _, e := range entries {
			if e.Row == row {
				parts = append(parts, fmt.Sprintf("%s[%d:%d)", e.Name, e.Start, e.End))
			}
		}
		if len(parts) == 0 {
			continue
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
