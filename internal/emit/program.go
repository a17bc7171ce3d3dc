package emit

import (
	"sort"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
)

// EmitProgram processes one file's Program: every struct name
// is registered opaque first, then trait and function signatures are
// bound, then struct fields and bodies are resolved — so two structs
// that reference each other, a function that calls one declared later in
// the file, or an impl block that precedes the struct it widens, all
// resolve regardless of textual order.
func EmitProgram(c *ctx.Ctx, prog *ast.Program) {
	if c.IfCompletion(prog.Range()) && !cursorInAnyRange(c, topLevelNodes(prog)) {
		c.PushCompletions(prog.Range(), ctx.KeywordCompletions(true, false))
	}

	for _, sd := range prog.Structs {
		opaque := &pltype.Struct{
			NameField:    sd.Name,
			Path:         c.File,
			FieldsByName: map[string]*pltype.Field{},
			Methods:      map[string]*pltype.Fn{},
			RangeField:   sd.NameRng,
		}
		_ = c.AddType(sd.Name, opaque, sd.NameRng)
		c.PushSemanticToken(sd.NameRng, artifacts.TokType)
		c.PushDocSymbol(artifacts.DocSymbol{Name: sd.Name, Kind: "struct", Range: sd.Range()})
	}

	for _, td := range prog.Traits {
		_ = emitTraitDef(c, td)
		c.PushSemanticToken(td.NameRng, artifacts.TokType)
		c.PushDocSymbol(artifacts.DocSymbol{Name: td.Name, Kind: "trait", Range: td.Range()})
	}

	for _, fd := range prog.Funcs {
		fn := funcToFn(c, fd, "")
		_ = c.AddType(fd.Name, fn, fd.NameRng)
		c.SaveIfCommentDocHover(fd.NameRng, signatureOf(fn), fd.Doc)
		c.PushSemanticToken(fd.NameRng, artifacts.TokFunction)
		c.PushDocSymbol(artifacts.DocSymbol{Name: fd.Name, Kind: "function", Range: fd.Range()})
	}

	for _, l := range prog.Lets {
		kind := "variable"
		if l.IsConst {
			kind = "constant"
		}
		c.PushDocSymbol(artifacts.DocSymbol{Name: l.Name, Kind: kind, Range: l.Range()})
	}

	for _, sd := range prog.Structs {
		_ = emitStructDef(c, sd)
	}

	for _, im := range prog.Impls {
		_ = declareImpl(c, im)
	}

	emitModuleInit(c, prog)

	for _, fd := range prog.Funcs {
		t, derr := c.GetType(fd.Name, fd.NameRng)
		if derr != nil {
			continue
		}
		fn, ok := t.(*pltype.Fn)
		if !ok || fn.IsGeneric() {
			continue
		}
		emitFuncBody(c, fn, fd, nil, c.NeedHighlight)
	}

	for _, im := range prog.Impls {
		defineImplBodies(c, im)
	}

	// A function nothing ever referenced gets one UNUSED_FUNCTION warning;
	// main is the entry point and always counts as used.
	for _, fd := range prog.Funcs {
		if fd.Name == "main" {
			continue
		}
		t, derr := c.GetType(fd.Name, fd.NameRng)
		if derr != nil {
			continue
		}
		if fn, ok := t.(*pltype.Fn); ok && fn.RefsField != nil && fn.RefsField.Len() == 0 {
			c.NewWarn(fd.NameRng, diagnostics.UnusedFunction, fd.Name)
		}
	}
}

// topLevelNodes flattens every top-level declaration into one slice so
// EmitProgram can test "cursor falls outside every declaration" the same
// way emitBlock does for statements.
func topLevelNodes(prog *ast.Program) []ast.Node {
	nodes := make([]ast.Node, 0, len(prog.Uses)+len(prog.Lets)+len(prog.Funcs)+len(prog.Structs)+len(prog.Traits)+len(prog.Impls))
	for _, u := range prog.Uses {
		nodes = append(nodes, u)
	}
	for _, l := range prog.Lets {
		nodes = append(nodes, l)
	}
	for _, fd := range prog.Funcs {
		nodes = append(nodes, fd)
	}
	for _, sd := range prog.Structs {
		nodes = append(nodes, sd)
	}
	for _, td := range prog.Traits {
		nodes = append(nodes, td)
	}
	for _, im := range prog.Impls {
		nodes = append(nodes, im)
	}
	return nodes
}

// initFnName is the synthesized per-module init function's LLVM name
func initFnName(modName string) string {
	return modName + "..__init_global"
}

// emitModuleInit synthesizes this file's __init_global function: it
// first calls every directly-`use`d submodule's own init function
// exactly once (each already deduplicated by Mod.Submods being a map),
// chaining transitively since each of those was itself built the same
// way by compile_dry, then runs this file's own top-level `Let`
// initializers.
func emitModuleInit(c *ctx.Ctx, prog *ast.Program) {
	fn := c.Builder.DeclareFunction(initFnName(c.Mod.Name), nil, irbuild.BasicType{Kind: irbuild.KVoid}, true)
	c.Builder.DefineFunction(fn)

	prevFn, prevBlock := c.Function, c.Block
	c.Function = fn
	c.Builder.PositionAtEnd(fn.AllocBlock)
	c.Builder.BuildBr(fn.EntryBlock)
	c.Builder.PositionAtEnd(fn.EntryBlock)
	c.Block = fn.EntryBlock

	names := make([]string, 0, len(c.Mod.Submods))
	for name := range c.Mod.Submods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sub := c.Mod.Submods[name]
		subFn := c.Builder.DeclareFunction(initFnName(sub.Name), nil, irbuild.BasicType{Kind: irbuild.KVoid}, true)
		c.Builder.BuildCall(subFn, nil, "initcall")
	}

	for _, l := range prog.Lets {
		_, _ = Emit(c, l)
	}

	if !c.Builder.CurrentBlock().Terminated() {
		c.Builder.BuildReturn(nil)
	}

	c.Function, c.Block = prevFn, prevBlock
	if prevBlock != nil {
		c.Builder.PositionAtEnd(prevBlock)
	}
}
