package emit

import (
	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
)

// emitAssignment evaluates target as an l-value (must not be const) and
// rhs with expectation = lhs type, then stores.
func emitAssignment(c *ctx.Ctx, n *ast.Assignment) (Result, *diagnostics.Diagnostic) {
	lres, err := Emit(c, n.Target)
	if err != nil {
		return none(), err
	}
	lval, err := requireValue(c, n.Target.Range(), lres)
	if err != nil {
		return none(), err
	}
	if lval.IsConst {
		return none(), c.NewErr(n.Target.Range(), diagnostics.AssignConst)
	}
	if lval.Value == nil || !lval.Value.IsPointer() {
		return none(), c.NewErr(n.Target.Range(), diagnostics.ExpectValue)
	}
	rres, err := Emit(c, n.Value)
	if err != nil {
		return none(), err
	}
	rpl, err := requireValue(c, n.Value.Range(), rres)
	if err != nil {
		return none(), err
	}
	rval, err := c.TryLoad2Var(n.Value.Range(), rpl)
	if err != nil {
		return none(), err
	}
	if !pltype.EqOrInfer(lres.Type, rres.Type) {
		return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
	}
	c.Builder.BuildStore(lval.Value, rval)
	return none(), nil
}

// emitFieldAccess auto-derefs the head, requires STRUCT, and GEPs the
// named field; an incomplete access (`head.` with cursor inside) instead
// publishes member completions and fails with the COMPLETION sentinel.
func emitFieldAccess(c *ctx.Ctx, n *ast.FieldAccess) (Result, *diagnostics.Diagnostic) {
	hres, err := Emit(c, n.Head)
	if err != nil {
		return none(), err
	}
	hval, err := requireValue(c, n.Head.Range(), hres)
	if err != nil {
		return none(), err
	}
	if hval.Value == nil || !hval.Value.IsPointer() {
		return none(), c.NewErr(n.Head.Range(), diagnostics.ExpectValue)
	}
	// Keep the head as an l-value pointer: a GEP needs pointer-to-struct,
	// so only the declared pointer layers are loaded through, one per
	// auto-deref step.
	headVal := hval.Value
	elem, depth := pltype.AutoDeref(hres.Type)
	for i := 0; i < depth; i++ {
		headVal = c.Builder.BuildLoad(headVal, "deref")
	}
	st, ok := elem.(*pltype.Struct)
	if !ok {
		return none(), c.NewErr(n.Range(), diagnostics.StructFieldNotFound, n.Field)
	}

	if !n.Complete {
		if c.IfCompletion(n.Range()) {
			names := make([]string, 0, len(st.OrderedFields))
			for _, f := range st.OrderedFields {
				names = append(names, f.Name)
			}
			methods := make([]string, 0, len(st.Methods))
			for name := range st.Methods {
				methods = append(methods, name)
			}
			c.PushCompletions(n.Range(), ctx.MemberCompletions(names, methods))
		}
		// The sentinel unwinds the expression without entering the file's
		// diagnostic bag; it is control flow, not a user-facing error.
		return none(), diagnostics.NewError(n.Range(), diagnostics.Completion).SetSource(c.File)
	}

	field, ok := st.Field(n.Field)
	if !ok {
		// Method lookup is by unqualified name on the struct after
		// auto-deref; the access forwards the instance pointer as
		// the receiver for the call emitter to bind as arg #0.
		if m, mok := st.Method(n.Field); mok {
			c.PushSemanticToken(n.FieldRng, artifacts.TokFunction)
			c.SaveIfHover(n.FieldRng, m.Doc)
			c.SendIfGotoDef(n.FieldRng, m.RangeField, m.Path)
			if m.RefsField != nil {
				c.ArtifactMod().PublishRef(m.RefsField, n.FieldRng, c.File)
			}
			return Result{Value: &ctx.PLValue{Receiver: headVal}, Type: m}, nil
		}
		return none(), c.NewErr(n.FieldRng, diagnostics.StructFieldNotFound, n.Field)
	}
	c.SendIfGotoDef(n.FieldRng, field.Range, st.Path)
	if field.Refs != nil {
		c.ArtifactMod().PublishRef(field.Refs, n.FieldRng, c.File)
	}
	bt := irbuild.LowerType(field.Type, c.StructCache())
	gep := c.Builder.BuildStructGEP(headVal, field.Index, bt, "structgep")
	return Result{Value: &ctx.PLValue{Value: gep, Receiver: headVal}, Type: field.Type}, nil
}

// emitIndex requires an ARR head and I64 index, producing an in-bounds
// GEP; a constant out-of-range index fails eagerly.
func emitIndex(c *ctx.Ctx, n *ast.Index) (Result, *diagnostics.Diagnostic) {
	hres, err := Emit(c, n.Head)
	if err != nil {
		return none(), err
	}
	hval, err := requireValue(c, n.Head.Range(), hres)
	if err != nil {
		return none(), err
	}
	if hval.Value == nil || !hval.Value.IsPointer() {
		return none(), c.NewErr(n.Head.Range(), diagnostics.ExpectValue)
	}
	arr, ok := hres.Type.(*pltype.Arr)
	if !ok {
		return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
	}
	ires, err := Emit(c, n.Idx)
	if err != nil {
		return none(), err
	}
	ipl, err := requireValue(c, n.Idx.Range(), ires)
	if err != nil {
		return none(), err
	}
	idxVal, err := c.TryLoad2Var(n.Idx.Range(), ipl)
	if err != nil {
		return none(), err
	}
	if !isI64(ires.Type) {
		return none(), c.NewErr(n.Idx.Range(), diagnostics.TypeMismatch)
	}
	if lit, ok := constIntLiteral(n.Idx); ok && (lit < 0 || uint32(lit) >= arr.Size) {
		return none(), c.NewErr(n.Range(), diagnostics.ArrayIndexOutOfBounds)
	}
	bt := irbuild.LowerType(arr.Elem, c.StructCache())
	gep := c.Builder.BuildArrayGEP(hval.Value, idxVal, bt, "arrgep")
	return Result{Value: &ctx.PLValue{Value: gep}, Type: arr.Elem}, nil
}

func isI64(t pltype.PLType) bool {
	p, ok := t.(*pltype.Primitive)
	return ok && p.PKind == pltype.I64
}

func constIntLiteral(n ast.Node) (int64, bool) {
	lit, ok := n.(*ast.IntLit)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}
