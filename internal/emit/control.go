package emit

import (
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/pltype"
)

func isBool(t pltype.PLType) bool {
	p, ok := t.(*pltype.Primitive)
	return ok && p.PKind == pltype.Bool
}

// emitIf emits cond/then/else/after blocks; the combined terminator is
// RETURN only if both arms terminate.
func emitIf(c *ctx.Ctx, n *ast.If) (Result, *diagnostics.Diagnostic) {
	fn := c.Function
	condBlock := c.Builder.AppendBlock(fn, "if.cond")
	thenBlock := c.Builder.AppendBlock(fn, "if.then")
	elseBlock := c.Builder.AppendBlock(fn, "if.else")
	afterBlock := c.Builder.AppendBlock(fn, "if.after")

	c.Builder.BuildBr(condBlock)
	c.Builder.PositionAtEnd(condBlock)
	condRng := n.Cond.Range()
	condRes, err := Emit(c, n.Cond)
	if err != nil {
		return none(), err
	}
	condPL, err := requireValue(c, condRng, condRes)
	if err != nil {
		return none(), err
	}
	condVal, err := c.TryLoad2Var(condRng, condPL)
	if err != nil {
		return none(), err
	}
	if !isBool(condRes.Type) {
		return none(), c.NewErr(condRng, diagnostics.IfConditionMustBeBool)
	}
	c.Builder.BuildCondBr(condVal, thenBlock, elseBlock)

	c.Builder.PositionAtEnd(thenBlock)
	thenRes, _ := Emit(c, n.Then)
	if !c.Builder.CurrentBlock().Terminated() {
		c.Builder.BuildBr(afterBlock)
	}

	c.Builder.PositionAtEnd(elseBlock)
	elseTerm := TermNone
	if n.Else != nil {
		elseRes, _ := Emit(c, n.Else)
		elseTerm = elseRes.Terminator
	}
	if !c.Builder.CurrentBlock().Terminated() {
		c.Builder.BuildBr(afterBlock)
	}

	c.Builder.PositionAtEnd(afterBlock)
	term := TermNone
	if thenRes.Terminator == TermReturn && elseTerm == TermReturn {
		term = TermReturn
	}
	return Result{Terminator: term}, nil
}

// emitWhile emits cond/body/after; break_block=after, continue_block=cond
func emitWhile(c *ctx.Ctx, n *ast.While) (Result, *diagnostics.Diagnostic) {
	child := c.NewChild(n.Range().Start)
	fn := child.Function
	condBlock := child.Builder.AppendBlock(fn, "while.cond")
	bodyBlock := child.Builder.AppendBlock(fn, "while.body")
	afterBlock := child.Builder.AppendBlock(fn, "while.after")
	child.BreakBlock = afterBlock
	child.ContinueBlock = condBlock

	child.Builder.BuildBr(condBlock)
	child.Builder.PositionAtEnd(condBlock)
	condRng := n.Cond.Range()
	condRes, err := Emit(child, n.Cond)
	if err != nil {
		return none(), err
	}
	condPL, err := requireValue(child, condRng, condRes)
	if err != nil {
		return none(), err
	}
	condVal, err := child.TryLoad2Var(condRng, condPL)
	if err != nil {
		return none(), err
	}
	if !isBool(condRes.Type) {
		return none(), child.NewErr(condRng, diagnostics.WhileConditionMustBeBool)
	}
	child.Builder.BuildCondBr(condVal, bodyBlock, afterBlock)

	child.Builder.PositionAtEnd(bodyBlock)
	_, _ = Emit(child, n.Body)
	if !child.Builder.CurrentBlock().Terminated() {
		child.Builder.BuildBr(condBlock)
	}
	child.Builder.PositionAtEnd(afterBlock)
	child.CheckUnusedVariables()
	return none(), nil
}

// emitFor emits pre/cond/opt/body/after; opt runs between body and cond,
// continue_block=cond, not opt.
func emitFor(c *ctx.Ctx, n *ast.For) (Result, *diagnostics.Diagnostic) {
	child := c.NewChild(n.Range().Start)
	fn := child.Function
	preBlock := child.Builder.AppendBlock(fn, "for.pre")
	condBlock := child.Builder.AppendBlock(fn, "for.cond")
	optBlock := child.Builder.AppendBlock(fn, "for.opt")
	bodyBlock := child.Builder.AppendBlock(fn, "for.body")
	afterBlock := child.Builder.AppendBlock(fn, "for.after")
	child.BreakBlock = afterBlock
	child.ContinueBlock = condBlock

	child.Builder.BuildBr(preBlock)
	child.Builder.PositionAtEnd(preBlock)
	if n.Pre != nil {
		_, _ = Emit(child, n.Pre)
	}
	child.Builder.BuildBr(condBlock)

	child.Builder.PositionAtEnd(condBlock)
	condRng := n.Cond.Range()
	condRes, err := Emit(child, n.Cond)
	if err != nil {
		return none(), err
	}
	condPL, err := requireValue(child, condRng, condRes)
	if err != nil {
		return none(), err
	}
	condVal, err := child.TryLoad2Var(condRng, condPL)
	if err != nil {
		return none(), err
	}
	if !isBool(condRes.Type) {
		return none(), child.NewErr(condRng, diagnostics.ForConditionMustBeBool)
	}
	child.Builder.BuildCondBr(condVal, bodyBlock, afterBlock)

	child.Builder.PositionAtEnd(optBlock)
	if n.Opt != nil {
		_, _ = Emit(child, n.Opt)
	}
	if !child.Builder.CurrentBlock().Terminated() {
		child.Builder.BuildBr(condBlock)
	}

	child.Builder.PositionAtEnd(bodyBlock)
	_, _ = Emit(child, n.Body)
	if !child.Builder.CurrentBlock().Terminated() {
		child.Builder.BuildBr(optBlock)
	}

	child.Builder.PositionAtEnd(afterBlock)
	child.CheckUnusedVariables()
	return none(), nil
}

// emitBreak branches to break_block, failing with BREAK_MUST_BE_IN_LOOP
// if unset, and opens a dead block to absorb any following statements
func emitBreak(c *ctx.Ctx, n *ast.Break) (Result, *diagnostics.Diagnostic) {
	if c.BreakBlock == nil {
		return none(), c.NewErr(n.Range(), diagnostics.BreakMustBeInLoop)
	}
	c.Builder.BuildBr(c.BreakBlock)
	c.Builder.PositionAtEnd(c.Builder.AppendBlock(c.Function, "dead"))
	return Result{Terminator: TermDead}, nil
}

// emitContinue branches to continue_block.
func emitContinue(c *ctx.Ctx, n *ast.Continue) (Result, *diagnostics.Diagnostic) {
	if c.ContinueBlock == nil {
		return none(), c.NewErr(n.Range(), diagnostics.ContinueMustBeInLoop)
	}
	c.Builder.BuildBr(c.ContinueBlock)
	c.Builder.PositionAtEnd(c.Builder.AppendBlock(c.Function, "dead"))
	return Result{Terminator: TermDead}, nil
}

// emitReturn stores into return_block's slot (if non-void) and branches
// there. Every return point calls collect() and unroots the current
// scope's locals before leaving; function exit must drop every GC root
// the function registered.
func emitReturn(c *ctx.Ctx, n *ast.Return) (Result, *diagnostics.Diagnostic) {
	if c.ReturnBlock == nil {
		return none(), c.NewErr(n.Range(), diagnostics.ReturnTypeMismatch)
	}
	if n.Value == nil {
		if c.ReturnBlock.Slot != nil {
			return none(), c.NewErr(n.Range(), diagnostics.ReturnTypeMismatch)
		}
		c.GCCollect(c.GCCollectFn())
		c.GCRmRootAll()
		c.Builder.BuildBr(c.ReturnBlock.Block)
		return Result{Terminator: TermReturn}, nil
	}
	if c.ReturnBlock.Slot == nil {
		return none(), c.NewErr(n.Range(), diagnostics.ReturnTypeMismatch)
	}
	res, err := Emit(c, n.Value)
	if err != nil {
		return none(), err
	}
	pl, err := requireValue(c, n.Value.Range(), res)
	if err != nil {
		return none(), err
	}
	val, err := c.TryLoad2Var(n.Value.Range(), pl)
	if err != nil {
		return none(), err
	}
	if c.ReturnBlock.Type != nil && !pltype.EqOrInfer(c.ReturnBlock.Type, res.Type) {
		return none(), c.NewErr(n.Value.Range(), diagnostics.ReturnTypeMismatch)
	}
	c.Builder.BuildStore(c.ReturnBlock.Slot, val)
	c.GCCollect(c.GCCollectFn())
	c.GCRmRootAll()
	c.Builder.BuildBr(c.ReturnBlock.Block)
	return Result{Terminator: TermReturn}, nil
}
