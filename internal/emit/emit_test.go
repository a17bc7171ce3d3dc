package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/emit"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

func rng(line int) source.Range {
	p := source.Position{Line: line, Column: 1, Offset: line * 10}
	return source.Range{Start: p, End: p}
}

func intLit(line int, v int64) *ast.IntLit {
	n := &ast.IntLit{Value: v}
	n.Rng = rng(line)
	return n
}

func variable(line int, name string) *ast.Variable {
	n := &ast.Variable{Name: name}
	n.Rng = rng(line)
	return n
}

// newFuncCtx builds a root Ctx already positioned inside a declared
// function's entry block, with a return block/slot wired up exactly the
// way emitFuncBody does it, so individual statement emitters (Let, If,
// Return, Binary) can be exercised without going through a full
// FuncDef.
func newFuncCtx(t *testing.T, retType pltype.PLType) (*ctx.Ctx, *irbuild.Emitter) {
	t.Helper()
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	mod := module.New("m", "proj")
	c := ctx.New(mod, e, "f.pl", ctx.Compile, nil)

	i64 := irbuild.BasicType{Kind: irbuild.KInt, Width: 64}
	fn := e.DeclareFunction("f", nil, i64, false)
	e.DefineFunction(fn)
	c.Function = fn

	e.PositionAtEnd(fn.AllocBlock)
	var slot *irbuild.Value
	retBlock := e.AppendBlock(fn, "return")
	if retType != nil {
		slot = c.Alloc("retslot", retType, source.Position{})
	}
	c.ReturnBlock = &ctx.ReturnTarget{Block: retBlock, Slot: slot}

	e.PositionAtEnd(fn.EntryBlock)
	return c, e
}

func TestEmitLetInfersTypeFromInitializer(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)

	res, d := emit.Emit(c, let)
	require.Nil(t, d)
	assert.Equal(t, emit.TermNone, res.Terminator)

	sym, ok := c.GetSymbol("y")
	require.True(t, ok)
	assert.Equal(t, pltype.KindPrimitive, sym.Type.Kind())
	assert.False(t, sym.IsConst)
}

func TestEmitLetAnnotationMismatchIsTypeMismatch(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{
		Name:    "y",
		NameRng: rng(1),
		Type:    &pltype.TypeNode{Name: "bool", Range: rng(1)},
		Value:   intLit(1, 5),
	}
	let.Rng = rng(1)

	_, d := emit.Emit(c, let)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.TypeMismatch, d.Code)
}

func TestEmitLetRedeclarationInSameScope(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	first := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 1)}
	first.Rng = rng(1)
	_, d := emit.Emit(c, first)
	require.Nil(t, d)

	second := &ast.Let{Name: "y", NameRng: rng(2), Value: intLit(2, 2)}
	second.Rng = rng(2)
	_, d = emit.Emit(c, second)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.Redeclaration, d.Code)
}

func TestEmitProgramSynthesizesModuleInitForTopLevelLets(t *testing.T) {
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	mod := module.New("m", "proj")
	c := ctx.New(mod, e, "f.pl", ctx.Compile, nil)

	let := &ast.Let{Name: "count", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	prog := &ast.Program{Lets: []*ast.Let{let}}

	emit.EmitProgram(c, prog)

	var found *irbuild.Function
	for _, fn := range e.Mod.Functions {
		if fn.LLVMName == "m..__init_global" {
			found = fn
		}
	}
	require.NotNil(t, found, "EmitProgram must synthesize a module init function for top-level Lets")
}

func TestEmitProgramModuleInitCallsSubmoduleInitsInSortedOrder(t *testing.T) {
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	mod := module.New("m", "proj")
	mod.Submods["zeta"] = module.New("zeta", "zeta.pl")
	mod.Submods["alpha"] = module.New("alpha", "alpha.pl")
	c := ctx.New(mod, e, "f.pl", ctx.Compile, nil)

	emit.EmitProgram(c, &ast.Program{})

	names := map[string]bool{}
	for _, fn := range e.Mod.Functions {
		names[fn.LLVMName] = true
	}
	assert.True(t, names["alpha..__init_global"])
	assert.True(t, names["zeta..__init_global"])
}

func TestCheckUnusedVariablesWarnsOnNeverReferencedLocal(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	_, d := emit.Emit(c, let)
	require.Nil(t, d)

	c.CheckUnusedVariables()

	diags := c.Mod.Diags.All()
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.UnusedVariable, diags[0].Code)
}

func TestCheckUnusedVariablesSkipsReferencedLocal(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	_, d := emit.Emit(c, let)
	require.Nil(t, d)

	_, d = emit.Emit(c, variable(2, "y"))
	require.Nil(t, d)

	c.CheckUnusedVariables()

	assert.Empty(t, c.Mod.Diags.All())
}

func TestCheckUnusedVariablesSkipsSelf(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "self", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	_, d := emit.Emit(c, let)
	require.Nil(t, d)

	c.CheckUnusedVariables()

	assert.Empty(t, c.Mod.Diags.All())
}

func TestEmitBlockPublishesKeywordCompletionsInGap(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	block := &ast.Block{Stmts: []ast.Node{let}}
	block.Rng = source.Range{Start: rng(1).Start, End: rng(2).End}

	c.Action = ctx.Completion
	c.LSPParams = &ctx.LSPParams{Pos: rng(2).Start, Action: ctx.Completion}

	_, d := emit.Emit(c, block)
	require.Nil(t, d)

	var labels []string
	for _, item := range c.Mod.Completions() {
		assert.Equal(t, artifacts.CompletionKeyword, item.Kind)
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "let")
	assert.Contains(t, labels, "return")
	assert.NotContains(t, labels, "break")
}

func TestEmitBlockSkipsKeywordCompletionsInsideAStatement(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	let := &ast.Let{Name: "y", NameRng: rng(1), Value: intLit(1, 5)}
	let.Rng = rng(1)
	block := &ast.Block{Stmts: []ast.Node{let}}
	block.Rng = source.Range{Start: rng(1).Start, End: rng(2).End}

	c.Action = ctx.Completion
	c.LSPParams = &ctx.LSPParams{Pos: rng(1).Start, Action: ctx.Completion}

	_, d := emit.Emit(c, block)
	require.Nil(t, d)
	assert.Empty(t, c.Mod.Completions())
}

func TestEmitProgramPublishesTopLevelKeywordCompletionsInGap(t *testing.T) {
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	mod := module.New("m", "proj")
	fd := &ast.FuncDef{Name: "f", NameRng: rng(1), RetType: pltype.TypeNode{Name: "void"}, Body: &ast.Block{}}
	fd.Rng = rng(1)
	prog := &ast.Program{Funcs: []*ast.FuncDef{fd}}
	prog.Rng = source.Range{Start: rng(1).Start, End: rng(2).End}

	c := ctx.New(mod, e, "f.pl", ctx.Completion, &ctx.LSPParams{Pos: rng(2).Start, Action: ctx.Completion})
	emit.EmitProgram(c, prog)

	var labels []string
	for _, item := range mod.Completions() {
		assert.Equal(t, artifacts.CompletionKeyword, item.Kind)
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "fn")
	assert.Contains(t, labels, "struct")
}

func TestEmitBinaryAddRequiresMatchingNumericOperands(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	bin := &ast.Binary{Op: ast.OpAdd, Left: intLit(1, 1), Right: intLit(1, 2)}
	bin.Rng = rng(1)

	res, d := emit.Emit(c, bin)
	require.Nil(t, d)
	assert.Equal(t, pltype.I64, res.Type.(*pltype.Primitive).PKind)
}

func TestEmitBinaryOperandTypeMismatch(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	boolLit := &ast.BoolLit{Value: true}
	boolLit.Rng = rng(1)
	bin := &ast.Binary{Op: ast.OpAdd, Left: intLit(1, 1), Right: boolLit}
	bin.Rng = rng(1)

	_, d := emit.Emit(c, bin)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.TypeMismatch, d.Code)
}

func TestEmitBinaryComparisonYieldsBool(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	bin := &ast.Binary{Op: ast.OpGt, Left: intLit(1, 2), Right: intLit(1, 1)}
	bin.Rng = rng(1)

	res, d := emit.Emit(c, bin)
	require.Nil(t, d)
	assert.Equal(t, pltype.Bool, res.Type.(*pltype.Primitive).PKind)
}

func TestEmitIfBothArmsReturningIsTermReturn(t *testing.T) {
	c, _ := newFuncCtx(t, &pltype.Primitive{PKind: pltype.I64})

	thenRet := &ast.Return{Value: intLit(2, 1)}
	thenRet.Rng = rng(2)
	thenBlock := &ast.Block{Stmts: []ast.Node{thenRet}}
	thenBlock.Rng = rng(2)

	elseRet := &ast.Return{Value: intLit(3, 2)}
	elseRet.Rng = rng(3)
	elseBlock := &ast.Block{Stmts: []ast.Node{elseRet}}
	elseBlock.Rng = rng(3)

	boolLit := &ast.BoolLit{Value: true}
	boolLit.Rng = rng(1)
	ifNode := &ast.If{Cond: boolLit, Then: thenBlock, Else: elseBlock}
	ifNode.Rng = rng(1)

	res, d := emit.Emit(c, ifNode)
	require.Nil(t, d)
	assert.Equal(t, emit.TermReturn, res.Terminator)
}

func TestEmitIfConditionMustBeBool(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	then := &ast.Block{}
	then.Rng = rng(1)
	ifNode := &ast.If{Cond: intLit(1, 1), Then: then}
	ifNode.Rng = rng(1)

	_, d := emit.Emit(c, ifNode)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.IfConditionMustBeBool, d.Code)
}

func TestEmitReturnWithoutEnclosingFunctionReturnBlock(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	c.ReturnBlock = nil
	ret := &ast.Return{Value: intLit(1, 1)}
	ret.Rng = rng(1)

	_, d := emit.Emit(c, ret)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.ReturnTypeMismatch, d.Code)
}

func TestEmitReturnStoresValueAndBranchesToReturnBlock(t *testing.T) {
	c, e := newFuncCtx(t, &pltype.Primitive{PKind: pltype.I64})
	ret := &ast.Return{Value: intLit(1, 7)}
	ret.Rng = rng(1)

	res, d := emit.Emit(c, ret)
	require.Nil(t, d)
	assert.Equal(t, emit.TermReturn, res.Terminator)
	assert.True(t, c.Function.EntryBlock.Terminated())
	_ = e
}

func TestEmitBreakOutsideLoopIsError(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	brk := &ast.Break{}
	brk.Rng = rng(1)

	_, d := emit.Emit(c, brk)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.BreakMustBeInLoop, d.Code)
}

func TestEmitWhileWiresBreakAndContinueBlocks(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	boolLit := &ast.BoolLit{Value: true}
	boolLit.Rng = rng(1)
	brk := &ast.Break{}
	brk.Rng = rng(2)
	body := &ast.Block{Stmts: []ast.Node{brk}}
	body.Rng = rng(2)
	while := &ast.While{Cond: boolLit, Body: body}
	while.Rng = rng(1)

	_, d := emit.Emit(c, while)
	require.Nil(t, d)
}

func TestEmitUndefinedVariableIsUndefinedType(t *testing.T) {
	c, _ := newFuncCtx(t, nil)
	v := variable(1, "nope")

	_, d := emit.Emit(c, v)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.UndefinedType, d.Code)
}
