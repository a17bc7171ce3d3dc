package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

func pos(line, col, off int) source.Position {
	return source.Position{Line: line, Column: col, Offset: off}
}

func TestGetTypeFallsBackToPrimitivesAndVoid(t *testing.T) {
	m := module.New("m", "proj")
	ty, ok := m.GetType("i64")
	require.True(t, ok)
	assert.Equal(t, pltype.KindPrimitive, ty.Kind())

	ty, ok = m.GetType("void")
	require.True(t, ok)
	assert.Equal(t, pltype.KindVoid, ty.Kind())

	_, ok = m.GetType("Nope")
	assert.False(t, ok)
}

func TestAddTypeRejectsDuplicate(t *testing.T) {
	m := module.New("m", "proj")
	require.True(t, m.AddType("Point", &pltype.Struct{NameField: "Point"}))
	assert.False(t, m.AddType("Point", &pltype.Struct{NameField: "Point"}))
}

func TestReplaceTypePromotesOpaqueStruct(t *testing.T) {
	m := module.New("m", "proj")
	require.True(t, m.AddType("Node", &pltype.Struct{NameField: "Node"}))
	resolved := &pltype.Struct{NameField: "Node", OrderedFields: []*pltype.Field{{Index: 0, Name: "val"}}}
	m.ReplaceType("Node", resolved)

	got, ok := m.GetType("Node")
	require.True(t, ok)
	assert.Same(t, resolved, got)
}

func TestFullNameAndShortNameRoundTrip(t *testing.T) {
	m := module.New("m", "proj/geo")
	full := m.FullName("Point")
	assert.Equal(t, "proj/geo..Point", full)
	assert.Equal(t, "Point", m.ShortName(full))

	assert.Equal(t, "main", m.FullName("main"))
	assert.Equal(t, "main", m.ShortName("main"))
}

func TestAddGlobalSymbolRejectsDuplicate(t *testing.T) {
	m := module.New("m", "proj")
	rng := source.Point(pos(1, 1, 0))
	_, ok := m.AddGlobalSymbol("K", &pltype.Primitive{PKind: pltype.I64}, rng, true)
	require.True(t, ok)

	_, ok = m.AddGlobalSymbol("K", &pltype.Primitive{PKind: pltype.I64}, rng, true)
	assert.False(t, ok)
}

func TestNewChildSharesSubmodsButNotOwnTables(t *testing.T) {
	m := module.New("m", "proj")
	m.Submods["dep"] = module.New("dep", "dep")
	require.True(t, m.AddType("Parent", &pltype.Struct{NameField: "Parent"}))

	child := m.NewChild()
	assert.Same(t, m.Submods["dep"], child.Submods["dep"])

	require.True(t, child.AddType("ChildOnly", &pltype.Struct{NameField: "ChildOnly"}))
	_, hasInParent := m.Types["ChildOnly"]
	assert.False(t, hasInParent, "a child's own type additions must not leak back into the parent")
}

func TestHoverAtReturnsTightestContainingRange(t *testing.T) {
	m := module.New("m", "proj")
	outer := source.Range{Start: pos(1, 1, 0), End: pos(5, 1, 40)}
	inner := source.Range{Start: pos(2, 1, 10), End: pos(2, 10, 19)}
	m.PublishHover(outer, "outer")
	m.PublishHover(inner, "inner")

	got, ok := m.HoverAt(pos(2, 5, 14))
	require.True(t, ok)
	assert.Equal(t, "inner", got.Contents)

	got, ok = m.HoverAt(pos(1, 1, 0))
	require.True(t, ok)
	assert.Equal(t, "outer", got.Contents)

	_, ok = m.HoverAt(pos(10, 1, 100))
	assert.False(t, ok)
}

func TestDefsAndHoversAreSortedByRange(t *testing.T) {
	m := module.New("m", "proj")
	later := source.Point(pos(5, 1, 40))
	earlier := source.Point(pos(1, 1, 0))
	m.PublishHover(later, "later")
	m.PublishHover(earlier, "earlier")

	hovers := m.Hovers()
	require.Len(t, hovers, 2)
	assert.Equal(t, "earlier", hovers[0].Contents)
	assert.Equal(t, "later", hovers[1].Contents)
}

func TestPublishRefAccumulatesUseSites(t *testing.T) {
	m := module.New("m", "proj")
	bucket := source.NewRefBucket()
	rng := source.Point(pos(1, 1, 0))
	m.PublishRef(bucket, rng, "a.pl")
	m.PublishRef(bucket, source.Point(pos(2, 1, 10)), "a.pl")

	assert.Equal(t, 2, bucket.Len())
	got, ok := m.RefsAt(pos(1, 1, 0))
	require.True(t, ok)
	assert.Same(t, bucket, got)
}

func TestCompletionsAndHintsPreservePublicationOrder(t *testing.T) {
	m := module.New("m", "proj")
	m.PublishHint(artifacts.InlayHint{Label: "i64"})
	m.PublishHint(artifacts.InlayHint{Label: "bool"})
	require.Len(t, m.Hints(), 2)
	assert.Equal(t, "i64", m.Hints()[0].Label)

	m.PublishCompletions([]artifacts.CompletionItem{{Label: "foo"}, {Label: "bar"}})
	require.Len(t, m.Completions(), 2)
	assert.Equal(t, "foo", m.Completions()[0].Label)
}
