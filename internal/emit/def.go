package emit

import (
	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// emitLet binds n.Value into a fresh stack slot, inferring the symbol's
// type from the initializer when no explicit annotation is written, and
// running eq_or_infer against the annotation otherwise.
func emitLet(c *ctx.Ctx, n *ast.Let) (Result, *diagnostics.Diagnostic) {
	if n.Value == nil && n.Type == nil {
		return none(), c.NewErr(n.Range(), diagnostics.ExpectType)
	}

	var declType pltype.PLType
	if n.Type != nil {
		resolved, derr := c.ResolveTypeNode(*n.Type)
		if derr != nil {
			return none(), derr
		}
		declType = resolved
	}

	var val *irbuild.Value
	if n.Value != nil {
		vres, err := Emit(c, n.Value)
		if err != nil {
			return none(), err
		}
		if vres.Value == nil || vres.Type == nil {
			return none(), c.NewErr(n.Value.Range(), diagnostics.ExpectValue)
		}
		val, err = c.TryLoad2Var(n.Value.Range(), *vres.Value)
		if err != nil {
			return none(), err
		}
		if declType == nil {
			declType = vres.Type
			c.PushTypeHint(n.NameRng, declType.Name())
		} else if !pltype.EqOrInfer(declType, vres.Type) {
			return none(), c.NewErr(n.Value.Range(), diagnostics.TypeMismatch)
		}
	}

	slot := c.Alloc(n.Name, declType, n.NameRng.Start)
	if val != nil {
		c.Builder.BuildStore(slot, val)
	}
	c.Builder.InsertDeclareAtEnd(slot, n.Name, c.DebugType(declType), n.NameRng.Start)
	if derr := c.AddSymbol(n.Name, slot, declType, n.NameRng, n.IsConst); derr != nil {
		return none(), derr
	}
	c.PushSemanticToken(n.NameRng, artifacts.TokVariable)
	if n.Doc != "" {
		c.SaveIfCommentDocHover(n.NameRng, n.Name+": "+declType.Name(), n.Doc)
	}
	return none(), nil
}

// emitFuncBody generates one concrete instantiation of funcDef's body: a
// fresh function-scoped Ctx, the alloc/entry block split, parameter
// (receiver-first) binding, and a return block created up front so every
// `return` in the body has somewhere to branch. gm is nil for a
// non-generic function.
func emitFuncBody(c *ctx.Ctx, fnType *pltype.Fn, funcDef *ast.FuncDef, gm *pltype.GenericMap, needHighlight bool) {
	fc := c.Root().NewChild(funcDef.Range().Start)
	fc.NeedHighlight = needHighlight
	fc.GenericTypes = map[string]*pltype.Generic{}
	if gm != nil {
		for _, name := range gm.Names() {
			g, _ := gm.Get(name)
			fc.GenericTypes[name] = g
		}
	}

	irFn := declareFn(fc, fnType)
	fc.Builder.DefineFunction(irFn)
	fc.Function = irFn
	sp := fc.Builder.NewSubprogram(fnType.LLVMName, uint32(funcDef.Range().Start.Line))
	sp.Scope = fc.DebugScope
	fc.Builder.PositionAtEnd(irFn.AllocBlock)

	isVoid := fnType.RetType.Name == "void"
	retBlock := fc.Builder.AppendBlock(irFn, "return")
	var retSlot *irbuild.Value
	var retPLType pltype.PLType
	if !isVoid {
		retType, derr := fc.ResolveTypeNode(fnType.RetType)
		if derr == nil {
			retPLType = retType
			retSlot = fc.Alloc("retslot", retType, funcDef.Range().Start)
		}
	}
	fc.ReturnBlock = &ctx.ReturnTarget{Block: retBlock, Slot: retSlot, Type: retPLType}

	paramOffset := 0
	if funcDef.Receiver != nil {
		recvType, derr := fc.ResolveTypeNode(funcDef.Receiver.Type)
		if derr == nil {
			recvSlot := fc.Alloc(funcDef.Receiver.Name, recvType, funcDef.Receiver.NameRng.Start)
			fc.Builder.BuildStore(recvSlot, fc.Builder.GetParam(irFn, 0))
			fc.Builder.InsertDeclareAtEnd(recvSlot, funcDef.Receiver.Name, fc.DebugType(recvType), funcDef.Receiver.NameRng.Start)
			_ = fc.AddSymbol(funcDef.Receiver.Name, recvSlot, recvType, funcDef.Receiver.NameRng, false)
		}
		paramOffset = 1
	}
	for i, p := range funcDef.Params {
		pt, derr := fc.ResolveTypeNode(p.Type)
		if derr != nil {
			continue
		}
		slot := fc.Alloc(p.Name, pt, p.NameRng.Start)
		fc.Builder.BuildStore(slot, fc.Builder.GetParam(irFn, i+paramOffset))
		fc.Builder.InsertDeclareAtEnd(slot, p.Name, fc.DebugType(pt), p.NameRng.Start)
		fc.PushSemanticToken(p.NameRng, artifacts.TokParameter)
		_ = fc.AddSymbol(p.Name, slot, pt, p.NameRng, false)
	}

	entryBlock := irFn.EntryBlock
	fc.Block = entryBlock
	fc.Builder.PositionAtEnd(entryBlock)
	bodyRes, _ := Emit(fc, funcDef.Body)
	if !fc.Builder.CurrentBlock().Terminated() {
		if isVoid {
			// Falling off the end of a void body is an implicit tail
			// return; it needs the same collect-and-unroot as an
			// explicit `return`.
			fc.GCCollect(fc.GCCollectFn())
			fc.GCRmRootAll()
			fc.Builder.BuildBr(retBlock)
		} else if bodyRes.Terminator != TermReturn {
			fc.NewErr(funcDef.Range(), diagnostics.FunctionMustHaveReturn)
			fc.Builder.BuildUnreachable()
		}
	}

	fc.CheckUnusedVariables()

	fc.Builder.PositionAtEnd(irFn.AllocBlock)
	fc.Builder.BuildBr(entryBlock)

	fc.Builder.PositionAtEnd(retBlock)
	if isVoid {
		fc.Builder.BuildReturn(nil)
	} else if retSlot != nil {
		loaded := fc.Builder.BuildLoad(retSlot, "retval")
		fc.Builder.BuildReturn(loaded)
	}
}

// funcToFn converts a parsed FuncDef into the FN PLType stored in the
// module's type table, carrying the node itself for generic re-entry
// and, for methods, the owning struct's full name.
func funcToFn(c *ctx.Ctx, fd *ast.FuncDef, methodOf string) *pltype.Fn {
	paramTypes := make([]pltype.TypeNode, 0, len(fd.Params)+1)
	paramNames := make([]string, 0, len(fd.Params)+1)
	if fd.Receiver != nil {
		paramTypes = append(paramTypes, fd.Receiver.Type)
		paramNames = append(paramNames, fd.Receiver.Name)
	}
	for _, p := range fd.Params {
		if p.Type.Name == "void" && p.Type.Pointer == 0 {
			c.NewErr(p.NameRng, diagnostics.VoidTypeCannotBeParameter)
		}
		paramTypes = append(paramTypes, p.Type)
		paramNames = append(paramNames, p.Name)
	}

	gm := pltype.NewGenericMap()
	for _, g := range fd.Generics {
		gm.Declare(g.Name)
	}

	llvmName := fd.Name
	if methodOf != "" {
		llvmName = methodOf + "." + fd.Name
	}

	return &pltype.Fn{
		NameField:    fd.Name,
		LLVMName:     llvmName,
		Path:         c.File,
		ParamTypes:   paramTypes,
		ParamNames:   paramNames,
		RetType:      fd.RetType,
		GenericMap:   gm,
		GenericBound: genericBounds(fd.Generics),
		MethodOf:     methodOf,
		IsMethod:     fd.Receiver != nil,
		Doc:          fd.Doc,
		RangeField:   fd.NameRng,
		RefsField:    source.NewRefBucket(),
		Node:         fd,
	}
}

func genericBounds(gps []ast.GenericParam) map[string]string {
	out := map[string]string{}
	for _, g := range gps {
		if g.Bound != "" {
			out[g.Name] = g.Bound
		}
	}
	return out
}

// emitFuncDef registers a free function's signature in the module's type
// table.
func emitFuncDef(c *ctx.Ctx, fd *ast.FuncDef) *diagnostics.Diagnostic {
	fn := funcToFn(c, fd, "")
	if err := c.AddType(fd.Name, fn, fd.NameRng); err != nil {
		return err
	}
	c.SaveIfCommentDocHover(fd.NameRng, signatureOf(fn), fd.Doc)
	if !fn.IsGeneric() {
		emitFuncBody(c, fn, fd, nil, c.NeedHighlight)
	}
	return nil
}

func signatureOf(fn *pltype.Fn) string {
	sig := "fn " + fn.NameField + "("
	for i, n := range fn.ParamNames {
		if i > 0 {
			sig += ", "
		}
		sig += n + ": " + fn.ParamTypes[i].Name
	}
	sig += ") " + fn.RetType.Name
	return sig
}

// emitStructDef resolves every declared field's type against the
// already-opaque-declared struct table (the pre-pass in program.go has
// registered every struct name first, so mutually-referential field types
// resolve regardless of declaration order) and replaces the opaque
// placeholder with the fully-resolved struct.
func emitStructDef(c *ctx.Ctx, sd *ast.StructDef) *diagnostics.Diagnostic {
	st := &pltype.Struct{
		NameField:    sd.Name,
		Path:         c.File,
		FieldsByName: map[string]*pltype.Field{},
		Methods:      map[string]*pltype.Fn{},
		RangeField:   sd.NameRng,
		RefsField:    source.NewRefBucket(),
		Doc:          sd.Doc,
	}
	for i, fdef := range sd.Fields {
		ft, err := c.ResolveTypeNode(fdef.Type)
		if err != nil {
			return err
		}
		if direct, ok := ft.(*pltype.Struct); ok && direct.NameField == sd.Name && fdef.Type.Pointer == 0 {
			return c.NewErr(fdef.NameRng, diagnostics.IllegalSelfRecursion)
		}
		f := &pltype.Field{
			Index: i,
			Type:  ft,
			Name:  fdef.Name,
			Range: fdef.NameRng,
			Refs:  source.NewRefBucket(),
			Doc:   fdef.Doc,
		}
		st.OrderedFields = append(st.OrderedFields, f)
		st.FieldsByName[fdef.Name] = f
	}
	c.Mod.ReplaceType(sd.Name, st)
	c.SaveIfCommentDocHover(sd.NameRng, "struct "+sd.Name, sd.Doc)
	return nil
}

// emitTraitDef registers a trait's method signatures; bodies are
// forbidden.
func emitTraitDef(c *ctx.Ctx, td *ast.TraitDef) *diagnostics.Diagnostic {
	tr := &pltype.Trait{
		NameField:  td.Name,
		Path:       c.File,
		Methods:    map[string]*pltype.Fn{},
		RangeField: td.NameRng,
		RefsField:  source.NewRefBucket(),
	}
	for _, m := range td.Methods {
		if m.Body != nil {
			return c.NewErr(m.NameRng, diagnostics.TraitMethodShallNotHaveModifier)
		}
		tr.Methods[m.Name] = funcToFn(c, m, td.Name)
	}
	return c.AddType(td.Name, tr, td.NameRng)
}

// declareImpl binds every method's signature onto its struct's method
// table, checking, for a trait impl, that the method sets match exactly
// in both directions.
// Bodies are deferred to defineImplBodies so every impl block in a file
// sees every other's signatures first.
func declareImpl(c *ctx.Ctx, im *ast.ImplDef) *diagnostics.Diagnostic {
	t, err := c.GetType(im.Struct, im.StructRng)
	if err != nil {
		return err
	}
	st, ok := t.(*pltype.Struct)
	if !ok {
		return c.NewErr(im.StructRng, diagnostics.TypeMismatch)
	}

	var tr *pltype.Trait
	if im.Trait != "" {
		tt, err := c.GetType(im.Trait, im.TraitRng)
		if err != nil {
			return err
		}
		tr, ok = tt.(*pltype.Trait)
		if !ok {
			return c.NewErr(im.TraitRng, diagnostics.TypeMismatch)
		}
	}

	implemented := map[string]bool{}
	for _, m := range im.Methods {
		if tr != nil {
			if _, inTrait := tr.Methods[m.Name]; !inTrait {
				return c.NewErr(m.NameRng, diagnostics.MethodNotInTrait, m.Name)
			}
		}
		st.Methods[m.Name] = funcToFn(c, m, st.FullName())
		implemented[m.Name] = true
	}
	if tr != nil {
		for name := range tr.Methods {
			if !implemented[name] {
				return c.NewErr(im.StructRng, diagnostics.MethodNotInImpl, name)
			}
		}
	}
	return nil
}

// defineImplBodies emits every non-generic method body declareImpl
// already bound a signature for; generic methods wait for call-site
// re-entry.
func defineImplBodies(c *ctx.Ctx, im *ast.ImplDef) {
	t, err := c.GetType(im.Struct, im.StructRng)
	if err != nil {
		return
	}
	st, ok := t.(*pltype.Struct)
	if !ok {
		return
	}
	for _, m := range im.Methods {
		fn, ok := st.Methods[m.Name]
		if !ok || fn.IsGeneric() {
			continue
		}
		emitFuncBody(c, fn, m, nil, c.NeedHighlight)
	}
}

// emitImplDef declares and immediately defines one impl block in a single
// pass, for callers (e.g. the REPL/shell) that process one declaration at
// a time rather than a whole file's pre-pass.
func emitImplDef(c *ctx.Ctx, im *ast.ImplDef) *diagnostics.Diagnostic {
	if err := declareImpl(c, im); err != nil {
		return err
	}
	defineImplBodies(c, im)
	return nil
}
