// Package source defines byte/line/column positions and ranges shared by
// every later compiler stage, from diagnostics to debug info.
package source

import "fmt"

// Position is a single point in a source file. Line and Column are 1-based;
// Offset is the 0-based byte offset from the start of the file.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Less orders positions by offset, falling back to line/column for
// positions synthesized without an offset.
func (p Position) Less(o Position) bool {
	if p.Offset != o.Offset {
		return p.Offset < o.Offset
	}
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Range is a closed [Start, End] span; both ends are inclusive (the
// membership test treats End as included).
type Range struct {
	Start Position
	End   Position
}

// String renders "start-end".
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Contains reports whether pos lies within [Start, End] inclusive.
func (r Range) Contains(pos Position) bool {
	return !pos.Less(r.Start) && !r.End.Less(pos)
}

// Less gives ranges a total order, lexicographic over Start.
func (r Range) Less(o Range) bool {
	return r.Start.Less(o.Start)
}

// Point builds a zero-width range at pos, used for synthesized nodes that
// carry no real source span (e.g. implicit init-function calls).
func Point(pos Position) Range {
	return Range{Start: pos, End: pos}
}

// Location names a range inside a specific file, the unit the "find
// references" / "go to definition" buckets traffic in.
type Location struct {
	File  string
	Range Range
}

// RefBucket is the shared, append-only list of use-site Locations a
// symbol or named type accumulates over one emission; the definition
// and every use hold the same bucket by reference.
type RefBucket struct {
	locs []Location
}

// NewRefBucket returns an empty bucket.
func NewRefBucket() *RefBucket { return &RefBucket{} }

// Push records a new use site.
func (b *RefBucket) Push(loc Location) { b.locs = append(b.locs, loc) }

// All returns every recorded use site, definition included.
func (b *RefBucket) All() []Location { return b.locs }

// Len reports how many use sites (definition included) have been recorded;
// used directly by the UNUSED_VARIABLE rule.
func (b *RefBucket) Len() int { return len(b.locs) }
