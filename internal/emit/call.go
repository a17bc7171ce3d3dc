package emit

import (
	"strconv"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// emitCall runs a call end to end: callee resolution, generic-scope
// setup, receiver binding, arity and per-argument type checks with
// inference, on-demand generic instantiation, and the call itself.
func emitCall(c *ctx.Ctx, n *ast.Call) (Result, *diagnostics.Diagnostic) {
	// Step 2: save enclosing generic scope, start a fresh one for this call.
	saved := c.MoveGenericTypes()
	defer c.ResetGenericTypes(saved)

	// Step 1: emit callee; require FN.
	calleeRes, err := Emit(c, n.Callee)
	if err != nil {
		return none(), err
	}
	fnType, ok := calleeRes.Type.(*pltype.Fn)
	if !ok {
		name := "expression"
		if v, isVar := n.Callee.(*ast.Variable); isVar {
			name = v.Name
		}
		if calleeRes.Type == nil {
			return none(), c.NewErr(n.Callee.Range(), diagnostics.FunctionNotFound, name)
		}
		return none(), c.NewErr(n.Callee.Range(), diagnostics.NotAFunction, name)
	}

	// Clone the function's own generic map into the fresh scope so
	// eq_or_infer below can bind against it.
	gm := fnType.GenericMap.Clone()
	for _, name := range gm.Names() {
		g, _ := gm.Get(name)
		_ = c.AddGenericType(name, g, n.Range())
	}

	// Step 4: explicit generic params bind positionally.
	if len(n.ExplicitTypes) > 0 {
		if len(n.ExplicitTypes) != gm.Len() {
			return none(), c.NewErr(n.Range(), diagnostics.GenericParamLenMismatch)
		}
		for i, tn := range n.ExplicitTypes {
			resolved, derr := c.ResolveTypeNode(tn)
			if derr != nil {
				return none(), derr
			}
			g, _ := gm.Get(gm.Names()[i])
			g.CurType = resolved
		}
	}

	// Step 3: a receiver (from field-access chaining) is pushed as arg #0.
	var argVals []*irbuild.Value
	skip := 0
	if calleeRes.Value != nil && calleeRes.Value.Receiver != nil {
		argVals = append(argVals, calleeRes.Value.Receiver)
		skip = 1
	}

	// Step 5: arity check.
	if len(fnType.ParamTypes)-skip != len(n.Args) {
		return none(), c.NewErr(n.Range(), diagnostics.ParameterLengthNotMatch, strconv.Itoa(len(fnType.ParamTypes)-skip))
	}

	// Step 6: param/signature hints for the active argument.
	prev := n.Callee.Range().End
	for i, arg := range n.Args {
		rng := source.Range{Start: prev, End: arg.Range().End}
		prev = arg.Range().End
		c.PushParamHint(arg.Range(), fnType.ParamNames[i+skip])
		c.ArtifactMod().PublishSignatureHelp(rng, artifacts.SignatureHelp{
			Range:        rng,
			FunctionName: fnType.NameField,
			Params:       fnType.ParamNames,
			ActiveParam:  i + skip,
		})
	}

	// Step 7: emit each argument, running eq_or_infer against its expected
	// param type.
	for i, arg := range n.Args {
		paramTN := fnType.ParamTypes[i+skip]
		expected, derr := c.ResolveTypeNode(paramTN)
		if derr != nil {
			return none(), derr
		}
		ares, aerr := Emit(c, arg)
		if aerr != nil {
			return none(), aerr
		}
		apl, aerr := requireValue(c, arg.Range(), ares)
		if aerr != nil {
			return none(), aerr
		}
		aval, aerr2 := c.TryLoad2Var(arg.Range(), apl)
		if aerr2 != nil {
			return none(), aerr2
		}
		if !pltype.EqOrInfer(expected, ares.Type) {
			return none(), c.NewErr(arg.Range(), diagnostics.ParameterTypeNotMatch)
		}
		argVals = append(argVals, aval)
	}

	// Step 8: every generic parameter must now be resolved.
	resolved, allResolved := gm.ResolvedMap()
	if !allResolved {
		for _, name := range gm.Names() {
			g, _ := gm.Get(name)
			if !g.Resolved() {
				return none(), c.NewErr(n.Range(), diagnostics.GenericCannotBeInfer, name)
			}
		}
	}

	// Step 9: re-enter the definition emitter for a not-yet-generated
	// generic instantiation. Each distinct instantiation gets its own
	// backend function, its name suffixed by the resolved generic map, so
	// id(1) and id(1.0) coexist as two IR functions.
	callFn := fnType
	if fnType.IsGeneric() {
		key := pltype.InstantiationKey(resolved, gm.Names())
		inst := *fnType
		inst.LLVMName = fnType.LLVMName + "<" + key + ">"
		callFn = &inst
		if !c.HasEmittedInstantiation(inst.LLVMName) {
			if funcDef, ok := fnType.Node.(*ast.FuncDef); ok {
				savedFn, savedBlk := c.Function, c.Block
				emitFuncBody(c, callFn, funcDef, gm, false)
				c.Function, c.Block = savedFn, savedBlk
				c.Builder.PositionAtEnd(c.Block)
			}
		}
	}
	irFn := declareFn(c, callFn)

	// Step 10: emit the call, publishing hover/def/refs for the callee
	// occurrence regardless of whether a value comes back.
	c.SaveIfHover(n.Callee.Range(), fnType.Doc)
	c.SendIfGotoDef(n.Callee.Range(), fnType.RangeField, fnType.Path)
	if fnType.RefsField != nil {
		c.ArtifactMod().PublishRef(fnType.RefsField, n.Callee.Range(), c.File)
	}
	callVal := c.Builder.BuildCall(irFn, argVals, "calltmp")
	if fnType.RetType.Name == "void" {
		return none(), nil
	}
	retType, derr := c.ResolveTypeNode(fnType.RetType)
	if derr != nil {
		return none(), derr
	}
	slot := c.Alloc("calltmp", retType, n.Range().Start)
	c.Builder.BuildStore(slot, callVal)
	return Result{Value: &ctx.PLValue{Value: slot}, Type: retType}, nil
}

// declareFn looks up or forward-declares the backend function handle for
// fnType so a call site never depends on emission order.
func declareFn(c *ctx.Ctx, fnType *pltype.Fn) *irbuild.Function {
	params := make([]irbuild.BasicType, 0, len(fnType.ParamTypes))
	for _, p := range fnType.ParamTypes {
		t, err := c.ResolveTypeNode(p)
		if err != nil {
			continue
		}
		params = append(params, irbuild.LowerType(t, c.StructCache()))
	}
	isVoid := fnType.RetType.Name == "void"
	var ret irbuild.BasicType
	if !isVoid {
		if t, err := c.ResolveTypeNode(fnType.RetType); err == nil {
			ret = irbuild.LowerType(t, c.StructCache())
		}
	}
	return c.Builder.DeclareFunction(fnType.LLVMName, params, ret, isVoid)
}
