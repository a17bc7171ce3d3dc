package emit

import (
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
)

func isNumeric(t pltype.PLType) (floating bool, ok bool) {
	p, isPrim := t.(*pltype.Primitive)
	if !isPrim {
		return false, false
	}
	switch p.PKind {
	case pltype.I64:
		return false, true
	case pltype.F64:
		return true, true
	}
	return false, false
}

// emitUnary implements `-` on int/float and `!` on bool.
func emitUnary(c *ctx.Ctx, n *ast.Unary) (Result, *diagnostics.Diagnostic) {
	res, err := Emit(c, n.Exp)
	if err != nil {
		return none(), err
	}
	pl, err := requireValue(c, n.Exp.Range(), res)
	if err != nil {
		return none(), err
	}
	val, err := c.TryLoad2Var(n.Exp.Range(), pl)
	if err != nil {
		return none(), err
	}
	floating, numeric := isNumeric(res.Type)
	switch n.Op {
	case ast.UnNeg:
		if !numeric {
			return none(), c.NewErr(n.Range(), diagnostics.InvalidUnaryExpression)
		}
		var out *irbuild.Value
		if floating {
			out = c.Builder.BuildFloatBinOp("sub", c.Builder.ConstFloat(0), val, "negtmp")
		} else {
			out = c.Builder.BuildIntBinOp("sub", c.Builder.ConstInt(0, 64), val, "negtmp")
		}
		return Result{Value: &ctx.PLValue{Value: out}, Type: res.Type}, nil
	case ast.UnNot:
		if !isBool(res.Type) {
			return none(), c.NewErr(n.Range(), diagnostics.InvalidUnaryExpression)
		}
		out := c.Builder.BuildCompare(irbuild.PredEQ, val, c.Builder.ConstBool(false), "nottmp")
		return Result{Value: &ctx.PLValue{Value: out}, Type: res.Type}, nil
	default:
		return none(), c.NewErr(n.Range(), diagnostics.InvalidUnaryExpression)
	}
}

// emitBinary implements the arithmetic, comparison and logical
// operators.
func emitBinary(c *ctx.Ctx, n *ast.Binary) (Result, *diagnostics.Diagnostic) {
	lres, err := Emit(c, n.Left)
	if err != nil {
		return none(), err
	}
	lpl, err := requireValue(c, n.Left.Range(), lres)
	if err != nil {
		return none(), err
	}
	lval, err := c.TryLoad2Var(n.Left.Range(), lpl)
	if err != nil {
		return none(), err
	}
	rres, err := Emit(c, n.Right)
	if err != nil {
		return none(), err
	}
	rpl, err := requireValue(c, n.Right.Range(), rres)
	if err != nil {
		return none(), err
	}
	rval, err := c.TryLoad2Var(n.Right.Range(), rpl)
	if err != nil {
		return none(), err
	}
	if !pltype.Eq(lres.Type, rres.Type) {
		return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		floating, numeric := isNumeric(lres.Type)
		if !numeric {
			return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
		}
		op := map[ast.BinOp]string{ast.OpAdd: "add", ast.OpSub: "sub", ast.OpMul: "mul", ast.OpDiv: "div"}[n.Op]
		var out *irbuild.Value
		if floating {
			out = c.Builder.BuildFloatBinOp(op, lval, rval, "calctmp")
		} else {
			if n.Op == ast.OpDiv {
				// Integer division is signed; an unsigned type is a
				// future extension.
				op = "sdiv"
			}
			out = c.Builder.BuildIntBinOp(op, lval, rval, "calctmp")
		}
		return Result{Value: &ctx.PLValue{Value: out}, Type: lres.Type}, nil

	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if _, numeric := isNumeric(lres.Type); !numeric {
			return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
		}
		pred := map[ast.BinOp]irbuild.Predicate{
			ast.OpEq: irbuild.PredEQ, ast.OpNe: irbuild.PredNE,
			ast.OpLt: irbuild.PredLT, ast.OpLe: irbuild.PredLE,
			ast.OpGt: irbuild.PredGT, ast.OpGe: irbuild.PredGE,
		}[n.Op]
		out := c.Builder.BuildCompare(pred, lval, rval, "cmptmp")
		return Result{Value: &ctx.PLValue{Value: out}, Type: &pltype.Primitive{PKind: pltype.Bool}}, nil

	case ast.OpAnd, ast.OpOr:
		if !isBool(lres.Type) || !isBool(rres.Type) {
			return none(), c.NewErr(n.Range(), diagnostics.TypeMismatch)
		}
		op := "and"
		if n.Op == ast.OpOr {
			op = "or"
		}
		out := c.Builder.BuildIntBinOp(op, lval, rval, "logictmp")
		return Result{Value: &ctx.PLValue{Value: out}, Type: &pltype.Primitive{PKind: pltype.Bool}}, nil

	default:
		return none(), c.NewErr(n.Range(), diagnostics.UnrecognizedBinOperator)
	}
}
