package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/emit"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/pltype"
)

func i64Node() pltype.TypeNode  { return pltype.TypeNode{Name: "i64"} }
func voidNode() pltype.TypeNode { return pltype.TypeNode{Name: "void"} }

func funcDef(line int, name string, params []ast.Param, ret pltype.TypeNode, stmts ...ast.Node) *ast.FuncDef {
	body := &ast.Block{Stmts: stmts}
	body.Rng = rng(line + 1)
	fd := &ast.FuncDef{Name: name, NameRng: rng(line), Params: params, RetType: ret, Body: body}
	fd.Rng = rng(line)
	return fd
}

func callExpr(line int, callee string, args ...ast.Node) *ast.Call {
	call := &ast.Call{Callee: variable(line, callee), Args: args}
	call.Rng = rng(line)
	return call
}

func letStmt(line int, name string, value ast.Node) *ast.Let {
	l := &ast.Let{Name: name, NameRng: rng(line), Value: value}
	l.Rng = rng(line)
	return l
}

func returnStmt(line int, value ast.Node) *ast.Return {
	r := &ast.Return{Value: value}
	r.Rng = rng(line)
	return r
}

func emitWholeProgram(t *testing.T, prog *ast.Program) (*irbuild.Emitter, *module.Mod) {
	t.Helper()
	e := irbuild.NewEmitter("m", "f.pl", "/proj")
	mod := module.New("m", "f.pl")
	c := ctx.New(mod, e, "f.pl", ctx.Compile, nil)
	emit.EmitProgram(c, prog)
	return e, mod
}

func errorCodes(mod *module.Mod) []diagnostics.Code {
	var codes []diagnostics.Code
	for _, d := range mod.Diags.All() {
		if d.IsErr() {
			codes = append(codes, d.Code)
		}
	}
	return codes
}

func functionNames(e *irbuild.Emitter) map[string]bool {
	names := map[string]bool{}
	for _, fn := range e.Mod.Functions {
		names[fn.LLVMName] = true
	}
	return names
}

func TestEmitCallBindsArgumentAndReturnsValue(t *testing.T) {
	add := funcDef(1, "add",
		[]ast.Param{{Name: "x", NameRng: rng(1), Type: i64Node()}},
		i64Node(),
		returnStmt(2, variable(2, "x")))
	main := funcDef(10, "main", nil, voidNode(),
		letStmt(11, "y", callExpr(11, "add", intLit(11, 1))),
		returnStmt(12, nil))

	_, mod := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{add, main}})
	assert.Empty(t, errorCodes(mod))
}

func TestEmitCallArityMismatch(t *testing.T) {
	add := funcDef(1, "add",
		[]ast.Param{{Name: "x", NameRng: rng(1), Type: i64Node()}},
		i64Node(),
		returnStmt(2, variable(2, "x")))
	main := funcDef(10, "main", nil, voidNode(),
		letStmt(11, "y", callExpr(11, "add", intLit(11, 1), intLit(11, 2))),
		returnStmt(12, nil))

	_, mod := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{add, main}})
	assert.Contains(t, errorCodes(mod), diagnostics.ParameterLengthNotMatch)
}

func TestEmitCallArgumentTypeMismatch(t *testing.T) {
	add := funcDef(1, "add",
		[]ast.Param{{Name: "x", NameRng: rng(1), Type: i64Node()}},
		i64Node(),
		returnStmt(2, variable(2, "x")))
	badArg := &ast.BoolLit{Value: true}
	badArg.Rng = rng(11)
	main := funcDef(10, "main", nil, voidNode(),
		letStmt(11, "y", callExpr(11, "add", badArg)),
		returnStmt(12, nil))

	_, mod := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{add, main}})
	assert.Contains(t, errorCodes(mod), diagnostics.ParameterTypeNotMatch)
}

func TestEmitCallOnNonFunctionIsNotAFunction(t *testing.T) {
	point := &ast.StructDef{Name: "Point", NameRng: rng(1)}
	point.Rng = rng(1)
	main := funcDef(10, "main", nil, voidNode(),
		letStmt(11, "y", callExpr(11, "Point")),
		returnStmt(12, nil))

	_, mod := emitWholeProgram(t, &ast.Program{Structs: []*ast.StructDef{point}, Funcs: []*ast.FuncDef{main}})
	assert.Contains(t, errorCodes(mod), diagnostics.NotAFunction)
}

// TestGenericInstantiationPerType: id(1) and id(1.0) produce two IR
// functions with distinct instantiated parameter types; a third call with
// an already-seen instantiation does not add another.
func TestGenericInstantiationPerType(t *testing.T) {
	id := funcDef(1, "id",
		[]ast.Param{{Name: "x", NameRng: rng(1), Type: pltype.TypeNode{Name: "T"}}},
		pltype.TypeNode{Name: "T"},
		returnStmt(2, variable(2, "x")))
	id.Generics = []ast.GenericParam{{Name: "T", Rng: rng(1)}}

	floatArg := &ast.FloatLit{Value: 1.0}
	floatArg.Rng = rng(12)
	main := funcDef(10, "main", nil, voidNode(),
		letStmt(11, "a", callExpr(11, "id", intLit(11, 1))),
		letStmt(12, "b", callExpr(12, "id", floatArg)),
		letStmt(13, "c", callExpr(13, "id", intLit(13, 2))),
		returnStmt(14, nil))

	e, mod := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{id, main}})
	require.Empty(t, errorCodes(mod))

	names := functionNames(e)
	assert.True(t, names["id<T=i64>"], "int instantiation must exist")
	assert.True(t, names["id<T=f64>"], "float instantiation must exist")
	assert.False(t, names["id"], "the uninstantiated generic must not be code-generated")

	intInstances := 0
	for _, fn := range e.Mod.Functions {
		if fn.LLVMName == "id<T=i64>" {
			intInstances++
		}
	}
	assert.Equal(t, 1, intInstances, "a repeated instantiation must not add another function")
}

func TestGenericFunctionNotEmittedUntilCalled(t *testing.T) {
	id := funcDef(1, "id",
		[]ast.Param{{Name: "x", NameRng: rng(1), Type: pltype.TypeNode{Name: "T"}}},
		pltype.TypeNode{Name: "T"},
		returnStmt(2, variable(2, "x")))
	id.Generics = []ast.GenericParam{{Name: "T", Rng: rng(1)}}

	e, _ := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{id}})
	for name := range functionNames(e) {
		assert.NotContains(t, name, "id<", "no instantiation may exist before a call")
	}
}

func TestMethodCallThroughFieldAccess(t *testing.T) {
	point := &ast.StructDef{
		Name:    "Point",
		NameRng: rng(1),
		Fields:  []ast.FieldDef{{Name: "x", NameRng: rng(2), Type: i64Node()}},
	}
	point.Rng = rng(1)

	getx := &ast.FuncDef{
		Name:     "getx",
		NameRng:  rng(5),
		Receiver: &ast.Param{Name: "self", NameRng: rng(5), Type: pltype.TypeNode{Name: "Point"}},
		RetType:  i64Node(),
	}
	selfX := &ast.FieldAccess{Head: variable(6, "self"), Field: "x", FieldRng: rng(6), Complete: true}
	selfX.Rng = rng(6)
	getx.Body = &ast.Block{Stmts: []ast.Node{returnStmt(6, selfX)}}
	getx.Body.Rng = rng(6)
	getx.Rng = rng(5)

	impl := &ast.ImplDef{Struct: "Point", StructRng: rng(4), Methods: []*ast.FuncDef{getx}}
	impl.Rng = rng(4)

	pLet := &ast.Let{Name: "p", NameRng: rng(11), Type: &pltype.TypeNode{Name: "Point"}}
	pLet.Rng = rng(11)
	access := &ast.FieldAccess{Head: variable(12, "p"), Field: "getx", FieldRng: rng(12), Complete: true}
	access.Rng = rng(12)
	methodCall := &ast.Call{Callee: access}
	methodCall.Rng = rng(12)
	main := funcDef(10, "main", nil, voidNode(),
		pLet,
		letStmt(12, "v", methodCall),
		returnStmt(13, nil))

	e, mod := emitWholeProgram(t, &ast.Program{
		Structs: []*ast.StructDef{point},
		Impls:   []*ast.ImplDef{impl},
		Funcs:   []*ast.FuncDef{main},
	})
	require.Empty(t, errorCodes(mod))
	assert.True(t, functionNames(e)["f.pl..Point.getx"], "the method body must be emitted under its owner-qualified name")
}

func TestImplMethodNotInTrait(t *testing.T) {
	point := &ast.StructDef{Name: "Point", NameRng: rng(1)}
	point.Rng = rng(1)

	sig := &ast.FuncDef{Name: "area", NameRng: rng(3), RetType: i64Node()}
	sig.Rng = rng(3)
	shape := &ast.TraitDef{Name: "Shape", NameRng: rng(2), Methods: []*ast.FuncDef{sig}}
	shape.Rng = rng(2)

	extra := &ast.FuncDef{Name: "perimeter", NameRng: rng(5), RetType: i64Node(), Body: &ast.Block{}}
	extra.Rng = rng(5)
	impl := &ast.ImplDef{Trait: "Shape", TraitRng: rng(4), Struct: "Point", StructRng: rng(4), Methods: []*ast.FuncDef{extra}}
	impl.Rng = rng(4)

	_, mod := emitWholeProgram(t, &ast.Program{
		Structs: []*ast.StructDef{point},
		Traits:  []*ast.TraitDef{shape},
		Impls:   []*ast.ImplDef{impl},
	})
	assert.Contains(t, errorCodes(mod), diagnostics.MethodNotInTrait)
}

func TestUnusedFunctionWarning(t *testing.T) {
	helper := funcDef(1, "helper", nil, voidNode(), returnStmt(2, nil))
	main := funcDef(10, "main", nil, voidNode(), returnStmt(11, nil))

	_, mod := emitWholeProgram(t, &ast.Program{Funcs: []*ast.FuncDef{helper, main}})

	var warned bool
	for _, d := range mod.Diags.All() {
		if d.Code == diagnostics.UnusedFunction {
			warned = true
		}
	}
	assert.True(t, warned, "a never-referenced non-main function must warn")
}
