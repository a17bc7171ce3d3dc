package emit

import (
	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/pltype"
)

func emitBoolLit(c *ctx.Ctx, n *ast.BoolLit) (Result, *diagnostics.Diagnostic) {
	c.Builder.BuildDbgLocation(n.Range().Start)
	v := c.Builder.ConstBool(n.Value)
	t := &pltype.Primitive{PKind: pltype.Bool}
	return Result{Value: &ctx.PLValue{Value: v, IsConst: true}, Type: t}, nil
}

func emitIntLit(c *ctx.Ctx, n *ast.IntLit) (Result, *diagnostics.Diagnostic) {
	c.Builder.BuildDbgLocation(n.Range().Start)
	v := c.Builder.ConstInt(n.Value, 64)
	t := &pltype.Primitive{PKind: pltype.I64}
	return Result{Value: &ctx.PLValue{Value: v, IsConst: true}, Type: t}, nil
}

func emitFloatLit(c *ctx.Ctx, n *ast.FloatLit) (Result, *diagnostics.Diagnostic) {
	c.Builder.BuildDbgLocation(n.Range().Start)
	v := c.Builder.ConstFloat(n.Value)
	t := &pltype.Primitive{PKind: pltype.F64}
	return Result{Value: &ctx.PLValue{Value: v, IsConst: true}, Type: t}, nil
}

func emitCharLit(c *ctx.Ctx, n *ast.CharLit) (Result, *diagnostics.Diagnostic) {
	c.Builder.BuildDbgLocation(n.Range().Start)
	v := c.Builder.ConstChar(n.Value)
	t := &pltype.Primitive{PKind: pltype.Char}
	return Result{Value: &ctx.PLValue{Value: v, IsConst: true}, Type: t}, nil
}

// emitStringLit lowers to a pointer-to-char constant, mirroring pivot-lang's
// global string constants.
func emitStringLit(c *ctx.Ctx, n *ast.StringLit) (Result, *diagnostics.Diagnostic) {
	c.Builder.BuildDbgLocation(n.Range().Start)
	v := c.Builder.ConstString(n.Value)
	t := &pltype.Pointer{Elem: &pltype.Primitive{PKind: pltype.Char}}
	return Result{Value: &ctx.PLValue{Value: v, IsConst: true}, Type: t}, nil
}

// emitVariable resolves name via get_symbol, yielding an l-value pointer
// with is_const set to the symbol's constness. A name
// bound to a function instead resolves through get_type, since FN is a
// named PLType rather than a local/global variable.
func emitVariable(c *ctx.Ctx, n *ast.Variable) (Result, *diagnostics.Diagnostic) {
	if sym, ok := c.GetSymbol(n.Name); ok {
		if sym.Refs != nil {
			c.ArtifactMod().PublishRef(sym.Refs, n.Range(), c.File)
		}
		c.PushSemanticToken(n.Range(), artifacts.TokVariable)
		return Result{
			Value: &ctx.PLValue{Value: sym.Ptr, IsConst: sym.IsConst},
			Type:  sym.Type,
		}, nil
	}
	t, derr := c.GetType(n.Name, n.Range())
	if derr != nil {
		return none(), derr
	}
	if fn, isFn := t.(*pltype.Fn); isFn {
		c.PushSemanticToken(n.Range(), artifacts.TokFunction)
		if fn.RefsField != nil {
			c.ArtifactMod().PublishRef(fn.RefsField, n.Range(), c.File)
		}
		return Result{Value: &ctx.PLValue{}, Type: fn}, nil
	}
	// A bare type name is not a value, but consumers decide how to
	// complain (a call site reports NOT_A_FUNCTION, a load reports
	// EXPECT_VALUE), so hand the type through with no value.
	c.PushSemanticToken(n.Range(), artifacts.TokType)
	if t.Refs() != nil {
		c.ArtifactMod().PublishRef(t.Refs(), n.Range(), c.File)
	}
	return Result{Value: &ctx.PLValue{}, Type: t}, nil
}
