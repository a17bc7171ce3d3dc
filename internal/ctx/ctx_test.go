package ctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

func newRootCtx() *ctx.Ctx {
	mod := module.New("m", "proj")
	return ctx.New(mod, &irbuild.NoopBuilder{}, "f.pl", ctx.Compile, nil)
}

func rng(line int) source.Range {
	p := source.Position{Line: line, Column: 1, Offset: line * 10}
	return source.Range{Start: p, End: p}
}

func i64() pltype.PLType { return &pltype.Primitive{PKind: pltype.I64} }

// TestScopeShadowing: an inner `x` shadows an outer `x`; both are
// distinct symbols resolvable from their own scope, and the outer one
// is unaffected by the inner declaration.
func TestScopeShadowing(t *testing.T) {
	root := newRootCtx()
	outerVal := &irbuild.Value{}
	require.Nil(t, root.AddSymbol("x", outerVal, i64(), rng(1), false))

	child := root.NewChild(rng(2).Start)
	innerVal := &irbuild.Value{}
	require.Nil(t, child.AddSymbol("x", innerVal, i64(), rng(2), false))

	innerSym, ok := child.GetSymbol("x")
	require.True(t, ok)
	assert.Same(t, innerVal, innerSym.Ptr)

	outerSym, ok := root.GetSymbol("x")
	require.True(t, ok)
	assert.Same(t, outerVal, outerSym.Ptr)
	assert.NotSame(t, outerSym.Ptr, innerSym.Ptr)
}

func TestAddSymbolRedeclarationInSameScope(t *testing.T) {
	root := newRootCtx()
	require.Nil(t, root.AddSymbol("x", &irbuild.Value{}, i64(), rng(1), false))

	d := root.AddSymbol("x", &irbuild.Value{}, i64(), rng(2), false)
	require.NotNil(t, d)
	assert.True(t, d.IsErr())
	assert.Equal(t, diagnostics.Redeclaration, d.Code)
}

func TestChildLookupWalksToGlobalTable(t *testing.T) {
	root := newRootCtx()
	_, ok := root.Mod.AddGlobalSymbol("K", i64(), rng(1), true)
	require.True(t, ok)

	child := root.NewChild(rng(2).Start)
	sym, ok := child.GetSymbol("K")
	require.True(t, ok)
	assert.True(t, sym.IsConst)
}

func TestAddTypeRedefinition(t *testing.T) {
	root := newRootCtx()
	require.Nil(t, root.AddType("Point", &pltype.Struct{NameField: "Point", Path: "proj"}, rng(1)))

	d := root.AddType("Point", &pltype.Struct{NameField: "Point", Path: "proj"}, rng(2))
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.RedefineType, d.Code)
}

func TestGetTypeFallsBackToPrimitive(t *testing.T) {
	root := newRootCtx()
	ty, d := root.GetType("i64", rng(1))
	require.Nil(t, d)
	assert.Equal(t, pltype.KindPrimitive, ty.Kind())
}

func TestGetTypeUndefined(t *testing.T) {
	root := newRootCtx()
	_, d := root.GetType("Nope", rng(1))
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.UndefinedType, d.Code)
}

func TestGenericScopeStackDiscipline(t *testing.T) {
	root := newRootCtx()
	g := &pltype.Generic{NameField: "T"}
	require.Nil(t, root.AddGenericType("T", g, rng(1)))

	saved := root.MoveGenericTypes()
	assert.Empty(t, root.GenericTypes, "MoveGenericTypes must clear the current scope for the nested call")

	inner := &pltype.Generic{NameField: "U"}
	require.Nil(t, root.AddGenericType("U", inner, rng(2)))

	root.ResetGenericTypes(saved)
	_, hasT := root.GenericTypes["T"]
	_, hasU := root.GenericTypes["U"]
	assert.True(t, hasT, "restoring the saved scope must bring back the outer generic")
	assert.False(t, hasU, "the inner call's generic scope must not leak into the restored outer scope")
}

func TestAllocRegistersGCRootForPointerBearingType(t *testing.T) {
	root := newRootCtx()
	root.Function = &irbuild.Function{Name: "f"}
	root.UseGC = true

	ptrType := &pltype.Pointer{Elem: i64()}
	v := root.Alloc("p", ptrType, source.Position{})
	assert.Contains(t, root.Roots, v)
}

func TestAllocDoesNotRootScalars(t *testing.T) {
	root := newRootCtx()
	root.Function = &irbuild.Function{Name: "f"}
	root.UseGC = true

	v := root.Alloc("x", i64(), source.Position{})
	assert.NotContains(t, root.Roots, v)
}

func TestGCRmRootCurrentRemovesOnlyMatchingValue(t *testing.T) {
	root := newRootCtx()
	root.Function = &irbuild.Function{Name: "f"}
	root.UseGC = true

	ptrType := &pltype.Pointer{Elem: i64()}
	a := root.Alloc("a", ptrType, source.Position{})
	b := root.Alloc("b", ptrType, source.Position{})
	require.Len(t, root.Roots, 2)

	root.GCRmRootCurrent(a)
	assert.NotContains(t, root.Roots, a)
	assert.Contains(t, root.Roots, b)
}

func TestTryLoad2VarLoadsPointerLValue(t *testing.T) {
	root := newRootCtx()
	root.Function = &irbuild.Function{Name: "f"}
	ptr := root.Builder.Alloc(root.Function, "x", irbuild.BasicType{Kind: irbuild.KInt, Width: 64}, source.Position{}, false)

	v, d := root.TryLoad2Var(rng(1), ctx.PLValue{Value: ptr})
	require.Nil(t, d)
	assert.False(t, v.IsPointer())
}

func TestTryLoad2VarPassesThroughNonPointerValue(t *testing.T) {
	root := newRootCtx()
	scalar := root.Builder.ConstInt(1, 64)

	v, d := root.TryLoad2Var(rng(1), ctx.PLValue{Value: scalar})
	require.Nil(t, d)
	assert.Same(t, scalar, v)
}

func TestTryLoad2VarNilValueIsExpectValueError(t *testing.T) {
	root := newRootCtx()
	_, d := root.TryLoad2Var(rng(1), ctx.PLValue{})
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.ExpectValue, d.Code)
}

func TestHasEmittedInstantiationIsTrueOnlyAfterFirstCall(t *testing.T) {
	root := newRootCtx()
	assert.False(t, root.HasEmittedInstantiation("id[i64]"))
	assert.True(t, root.HasEmittedInstantiation("id[i64]"))
	assert.False(t, root.HasEmittedInstantiation("id[f64]"), "a distinct instantiation key must be tracked independently")
}
