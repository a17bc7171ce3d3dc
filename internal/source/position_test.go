package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivot-lang/plc/internal/source"
)

func pos(line, col, off int) source.Position {
	return source.Position{Line: line, Column: col, Offset: off}
}

func TestPositionLess(t *testing.T) {
	assert.True(t, pos(1, 1, 0).Less(pos(1, 1, 1)))
	assert.False(t, pos(1, 1, 5).Less(pos(1, 1, 5)))
	// Offset takes priority over line/column when both are set.
	assert.True(t, pos(2, 1, 0).Less(pos(1, 1, 1)))
}

func TestRangeContains(t *testing.T) {
	r := source.Range{Start: pos(1, 1, 0), End: pos(1, 10, 9)}
	assert.True(t, r.Contains(pos(1, 1, 0)))
	assert.True(t, r.Contains(pos(1, 10, 9)))
	assert.True(t, r.Contains(pos(1, 5, 4)))
	assert.False(t, r.Contains(pos(1, 11, 10)))
}

func TestRangeLessIsLexicographicOverStart(t *testing.T) {
	a := source.Range{Start: pos(1, 1, 0), End: pos(1, 5, 4)}
	b := source.Range{Start: pos(1, 2, 1), End: pos(1, 2, 1)}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestPointIsZeroWidth(t *testing.T) {
	p := pos(3, 4, 20)
	r := source.Point(p)
	assert.Equal(t, p, r.Start)
	assert.Equal(t, p, r.End)
	assert.True(t, r.Contains(p))
}

func TestRefBucketAccumulatesInOrder(t *testing.T) {
	b := source.NewRefBucket()
	assert.Equal(t, 0, b.Len())
	def := source.Location{File: "a.pl", Range: source.Point(pos(1, 1, 0))}
	use := source.Location{File: "a.pl", Range: source.Point(pos(5, 1, 40))}
	b.Push(def)
	b.Push(use)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []source.Location{def, use}, b.All())
}
