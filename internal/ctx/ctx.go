// Package ctx implements Ctx: the scoped compilation context every
// emitter threads through a file's AST. Scopes form a plain parent
// chain; a child never owns its parent.
package ctx

import (
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// LSPParams is the cursor-plus-trigger-character bundle threaded as an
// LSP param only for the focal file; every other file's
// Ctx tree carries a nil LSPParams.
type LSPParams struct {
	Pos     source.Position
	Trigger *string
	Action  Action
}

// ReturnTarget is the block a `return` branches to, plus the slot its
// value is stored into and the declared return type for non-void
// functions.
type ReturnTarget struct {
	Block *irbuild.Block
	Slot  *irbuild.Value
	Type  pltype.PLType
}

// localVar is one entry of Ctx.Table.
type localVar struct {
	Ptr     *irbuild.Value
	Type    pltype.PLType
	Range   source.Range
	Refs    *source.RefBucket
	IsConst bool
}

// PLValue is the uniform emit-result payload: a value plus its
// constness and, for field-access expressions, the receiver pointer a
// subsequent method call should bind as argument #0.
type PLValue struct {
	Value    *irbuild.Value
	IsConst  bool
	Receiver *irbuild.Value
}

// shared holds the state that is genuinely global to one emit_file call
//: the struct/DIType lowering caches and
// the set of generic function instantiations already code-generated.
type shared struct {
	StructCache     *irbuild.StructCache
	DICache         *irbuild.DICache
	emittedGenerics map[string]bool
	gcCollectFn     *irbuild.Function
}

// Ctx is the scoped compilation context.
type Ctx struct {
	Mod    *module.Mod
	Father *Ctx

	Builder irbuild.IRBuilder
	File    string

	Function      *irbuild.Function
	Block         *irbuild.Block
	ContinueBlock *irbuild.Block
	BreakBlock    *irbuild.Block
	ReturnBlock   *ReturnTarget
	DebugScope    *irbuild.DILexicalBlock

	Table        map[string]*localVar
	GenericTypes map[string]*pltype.Generic

	Roots []*irbuild.Value
	UseGC bool

	NeedHighlight bool
	Action        Action
	LSPParams     *LSPParams

	shared *shared
}

// New creates the root Ctx for one emit_file call.
func New(mod *module.Mod, builder irbuild.IRBuilder, file string, action Action, lsp *LSPParams) *Ctx {
	return &Ctx{
		Mod:           mod,
		Builder:       builder,
		File:          file,
		Table:         map[string]*localVar{},
		GenericTypes:  map[string]*pltype.Generic{},
		UseGC:         true,
		NeedHighlight: true,
		Action:        action,
		LSPParams:     lsp,
		shared: &shared{
			StructCache:     irbuild.NewStructCache(),
			DICache:         irbuild.NewDICache(),
			emittedGenerics: map[string]bool{},
		},
	}
}

// NewChild creates a lexical child Ctx sharing module, function, and
// debug builder; the new debug scope is a lexical block anchored at
// startPos.
func (c *Ctx) NewChild(startPos source.Position) *Ctx {
	child := &Ctx{
		Mod:           c.Mod.NewChild(),
		Father:        c,
		Builder:       c.Builder,
		File:          c.File,
		Function:      c.Function,
		Block:         c.Block,
		ContinueBlock: c.ContinueBlock,
		BreakBlock:    c.BreakBlock,
		ReturnBlock:   c.ReturnBlock,
		DebugScope:    c.Builder.NewLexicalBlock(c.DebugScope, startPos),
		Table:         map[string]*localVar{},
		GenericTypes:  map[string]*pltype.Generic{},
		UseGC:         c.UseGC,
		NeedHighlight: c.NeedHighlight,
		Action:        c.Action,
		LSPParams:     c.LSPParams,
		shared:        c.shared,
	}
	return child
}

// Root walks to the outermost ancestor; used when a diagnostic or
// artifact must be recorded against the file's single Mod.Diags bag
// regardless of how deep the current lexical scope is.
func (c *Ctx) Root() *Ctx {
	r := c
	for r.Father != nil {
		r = r.Father
	}
	return r
}

// ArtifactMod returns the root Mod, where every LSP artifact bucket for
// the file lives; lexical child Ctxs carry their own Mod snapshot for
// scoped type/global tables, but artifacts always accumulate on the
// file's single root module.
func (c *Ctx) ArtifactMod() *module.Mod { return c.Root().Mod }

// StructCache returns the shared struct-type lowering cache for this
// emit_file call.
func (c *Ctx) StructCache() *irbuild.StructCache { return c.shared.StructCache }

// DICache returns the shared debug-type lowering cache.
func (c *Ctx) DICache() *irbuild.DICache { return c.shared.DICache }

// DebugType mirrors get_ditype: the DWARF-style debug type for t,
// computed through the shared lowering caches.
func (c *Ctx) DebugType(t pltype.PLType) *irbuild.DIType {
	if t == nil {
		return nil
	}
	return irbuild.LowerDIType(t, irbuild.TargetData{}, c.shared.StructCache, c.shared.DICache)
}

// HasEmittedInstantiation reports whether a generic function's
// instantiation keyed by key has already been code-generated, and marks it emitted if not.
func (c *Ctx) HasEmittedInstantiation(key string) bool {
	if c.shared.emittedGenerics[key] {
		return true
	}
	c.shared.emittedGenerics[key] = true
	return false
}

// Location builds a source.Location for rng in the current file.
func (c *Ctx) Location(rng source.Range) source.Location {
	return source.Location{File: c.File, Range: rng}
}

// NewErr constructs and records a hard-error diagnostic against the
// root's diagnostic bag, mirroring pivot-lang's Ctx::add_err.
func (c *Ctx) NewErr(rng source.Range, code diagnostics.Code, args ...string) *diagnostics.Diagnostic {
	d := diagnostics.NewError(rng, code, args...).SetSource(c.File)
	c.Mod.Diags.Add(d)
	return d
}

// NewWarn constructs and records a warning diagnostic.
func (c *Ctx) NewWarn(rng source.Range, code diagnostics.Code, args ...string) *diagnostics.Diagnostic {
	d := diagnostics.NewWarn(rng, code, args...).SetSource(c.File)
	c.Mod.Diags.Add(d)
	return d
}

// AddDiag records an already-built diagnostic.
func (c *Ctx) AddDiag(d *diagnostics.Diagnostic) { c.Mod.Diags.Add(d) }

// Alloc allocates a new stack slot in the current function's alloc block,
// registering it as a GC root when UseGC is set and the type may hold
// pointers.
func (c *Ctx) Alloc(name string, t pltype.PLType, pos source.Position) *irbuild.Value {
	bt := irbuild.LowerType(t, c.StructCache())
	v := c.Builder.Alloc(c.Function, name, bt, pos, c.UseGC)
	if c.UseGC && bt.IsPointerBearing() {
		c.Roots = append(c.Roots, v)
	}
	return v
}

// GCCollectFn lazily declares the implicit gc module's collect() function
// and caches it for the whole emit_file call, so every call site shares
// one declaration.
func (c *Ctx) GCCollectFn() *irbuild.Function {
	if !c.UseGC {
		return nil
	}
	if c.shared.gcCollectFn == nil {
		c.shared.gcCollectFn = c.Builder.DeclareFunction("gc..collect", nil, irbuild.BasicType{Kind: irbuild.KVoid}, true)
	}
	return c.shared.gcCollectFn
}

// GCCollect emits a call to the implicit gc module's collect() function,
// unless UseGC is false.
func (c *Ctx) GCCollect(gcCollectFn *irbuild.Function) {
	if !c.UseGC || gcCollectFn == nil {
		return
	}
	c.Builder.BuildCall(gcCollectFn, nil, "gccollect")
}

// GCRmRootCurrent removes v from the current function's root list, used
// when a value's ownership is transferred out of the current scope (e.g.
// returned) so the GC doesn't double-root it.
func (c *Ctx) GCRmRootCurrent(v *irbuild.Value) {
	for i, r := range c.Roots {
		if r == v {
			c.Roots = append(c.Roots[:i], c.Roots[i+1:]...)
			return
		}
	}
}

// GCRmRootAll unroots every value this Ctx has registered, used at a
// `return` site where the current scope's locals go out of existence
// regardless of which lexical child emitted them.
func (c *Ctx) GCRmRootAll() {
	c.Roots = c.Roots[:0]
}

// TryLoad2Var loads an l-value pointer into an r-value, or passes a
// non-pointer value through unchanged. Fails with
// EXPECT_VALUE if v carries neither a pointer nor an already-loaded
// scalar/aggregate value.
func (c *Ctx) TryLoad2Var(rng source.Range, v PLValue) (*irbuild.Value, *diagnostics.Diagnostic) {
	if v.Value == nil {
		return nil, c.NewErr(rng, diagnostics.ExpectValue)
	}
	if !v.Value.IsPointer() {
		return v.Value, nil
	}
	return c.Builder.BuildLoad(v.Value, "loadtmp"), nil
}

// CheckUnusedVariables warns on every local in this Ctx's own scope whose
// ref bucket never grew past the declaration occurrence itself. Called once the scope that owns
// Table is done emitting (a function body, or a loop's own child scope).
func (c *Ctx) CheckUnusedVariables() {
	for name, lv := range c.Table {
		if name == "self" {
			continue
		}
		if lv.Refs != nil && lv.Refs.Len() <= 1 {
			c.NewWarn(lv.Range, diagnostics.UnusedVariable, name)
		}
	}
}

// pushToken/pushHint/etc. live in lsp.go; symbol/type lookups live in
// symbols.go; generic-scope stack discipline lives in generics.go.
