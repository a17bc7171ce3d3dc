// Package emit implements the node emitters: the uniform
// `emit(ctx, builder) -> (value, type, terminator)` contract, dispatched
// over internal/ast's node tree from a single type switch.
package emit

import (
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// Terminator classifies how a statement or block ended, driving whether
// a caller needs to synthesize a fallthrough branch.
type Terminator int

const (
	TermNone Terminator = iota
	TermBreak
	TermContinue
	TermReturn
	TermDead
)

// Result is the uniform per-node emit outcome.
type Result struct {
	Value      *ctx.PLValue
	Type       pltype.PLType
	Terminator Terminator
}

func none() Result { return Result{Terminator: TermNone} }

// requireValue guards the soft-failure contract: an
// emitter that recorded a diagnostic but returned "no value, no type"
// yields EXPECT_VALUE at the consuming site instead of a nil dereference.
func requireValue(c *ctx.Ctx, rng source.Range, r Result) (ctx.PLValue, *diagnostics.Diagnostic) {
	if r.Value == nil {
		return ctx.PLValue{}, c.NewErr(rng, diagnostics.ExpectValue)
	}
	return *r.Value, nil
}

// Emit dispatches on n's concrete type and runs its emitter.
func Emit(c *ctx.Ctx, n ast.Node) (Result, *diagnostics.Diagnostic) {
	switch v := n.(type) {
	case *ast.BoolLit:
		return emitBoolLit(c, v)
	case *ast.IntLit:
		return emitIntLit(c, v)
	case *ast.FloatLit:
		return emitFloatLit(c, v)
	case *ast.CharLit:
		return emitCharLit(c, v)
	case *ast.StringLit:
		return emitStringLit(c, v)
	case *ast.Variable:
		return emitVariable(c, v)
	case *ast.Unary:
		return emitUnary(c, v)
	case *ast.Binary:
		return emitBinary(c, v)
	case *ast.Assignment:
		return emitAssignment(c, v)
	case *ast.FieldAccess:
		return emitFieldAccess(c, v)
	case *ast.Index:
		return emitIndex(c, v)
	case *ast.Call:
		return emitCall(c, v)
	case *ast.Let:
		return emitLet(c, v)
	case *ast.If:
		return emitIf(c, v)
	case *ast.While:
		return emitWhile(c, v)
	case *ast.For:
		return emitFor(c, v)
	case *ast.Break:
		return emitBreak(c, v)
	case *ast.Continue:
		return emitContinue(c, v)
	case *ast.Return:
		return emitReturn(c, v)
	case *ast.Block:
		return emitBlock(c, v)
	default:
		return none(), c.NewErr(n.Range(), diagnostics.ExpectValue)
	}
}

// emitBlock runs every statement in sequence, short-circuiting once one
// of them produces a non-NONE terminator. A cursor sitting in the gap between statements
// (not inside any one of them) gets statement-keyword completions
// published, scoped by whether a loop target is currently set.
func emitBlock(c *ctx.Ctx, b *ast.Block) (Result, *diagnostics.Diagnostic) {
	if c.IfCompletion(b.Range()) && !cursorInAnyRange(c, b.Stmts) {
		c.PushCompletions(b.Range(), ctx.KeywordCompletions(false, c.BreakBlock != nil))
	}

	last := none()
	for i, stmt := range b.Stmts {
		r, err := Emit(c, stmt)
		if err != nil {
			if err.Code.IsCompletionSentinel() {
				return r, err
			}
			continue
		}
		last = r
		if r.Terminator != TermNone {
			if i+1 < len(b.Stmts) {
				c.NewWarn(b.Stmts[i+1].Range(), diagnostics.UnreachableStatement)
			}
			break
		}
	}
	return last, nil
}

// cursorInAnyRange reports whether the LSP cursor falls inside any of
// nodes' own ranges, used to tell "cursor between statements" (where a
// new keyword could start) from "cursor inside an existing statement".
func cursorInAnyRange(c *ctx.Ctx, nodes []ast.Node) bool {
	if c.LSPParams == nil {
		return false
	}
	for _, n := range nodes {
		if n.Range().Contains(c.LSPParams.Pos) {
			return true
		}
	}
	return false
}
