package ctx

import (
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// SymbolInfo is the result of GetSymbol.
type SymbolInfo struct {
	Ptr     *irbuild.Value
	Type    pltype.PLType
	Range   source.Range
	Refs    *source.RefBucket
	IsConst bool
}

// GetSymbol walks the parent chain, then the module's global table.
func (c *Ctx) GetSymbol(name string) (SymbolInfo, bool) {
	if lv, ok := c.Table[name]; ok {
		return SymbolInfo{Ptr: lv.Ptr, Type: lv.Type, Range: lv.Range, Refs: lv.Refs, IsConst: lv.IsConst}, true
	}
	if c.Father != nil {
		return c.Father.GetSymbol(name)
	}
	if g, ok := c.Mod.GetGlobalSymbol(name); ok {
		return SymbolInfo{Type: g.Type, Range: g.Range, Refs: g.Refs, IsConst: g.IsConst}, true
	}
	return SymbolInfo{}, false
}

// AddSymbol registers a new variable in the innermost scope; fails with
// REDECLARATION if already present there. Constants
// (is_const, always at module scope in this language: `const`) are stored
// in the module's global table instead of the lexical Table.
func (c *Ctx) AddSymbol(name string, ptr *irbuild.Value, t pltype.PLType, rng source.Range, isConst bool) *diagnostics.Diagnostic {
	if _, exists := c.Table[name]; exists {
		return c.NewErr(rng, diagnostics.Redeclaration, name)
	}
	refs := source.NewRefBucket()
	if isConst {
		if _, ok := c.Mod.AddGlobalSymbol(name, t, rng, true); !ok {
			return c.NewErr(rng, diagnostics.Redeclaration, name)
		}
	} else {
		c.Table[name] = &localVar{Ptr: ptr, Type: t, Range: rng, Refs: refs, IsConst: false}
	}
	c.SendIfGotoDef(rng, rng, c.File)
	c.SetIfRefs(refs, rng)
	return nil
}

// GetType resolves a name against the module's type table, then the
// parent chain, then the virtual primitive/void fallback.
func (c *Ctx) GetType(name string, rng source.Range) (pltype.PLType, *diagnostics.Diagnostic) {
	if t, ok := c.Mod.GetType(name); ok {
		return t, nil
	}
	if c.Father != nil {
		return c.Father.GetType(name, rng)
	}
	return nil, c.NewErr(rng, diagnostics.UndefinedType, name)
}

// AddType registers a named type in the current module; fails with
// REDEFINE_TYPE if already present.
func (c *Ctx) AddType(name string, t pltype.PLType, rng source.Range) *diagnostics.Diagnostic {
	if _, exists := c.Mod.Types[name]; exists {
		return c.NewErr(rng, diagnostics.RedefineType, name)
	}
	c.SendIfGotoDef(rng, rng, c.File)
	c.Mod.AddType(name, t)
	return nil
}

// resolveTypeNode turns a syntactic TypeNode into a concrete PLType,
// applying pointer/array wrapping and, inside a generic scope, binding to
// the in-scope generic parameter instead of a module type.
func (c *Ctx) resolveTypeNode(tn pltype.TypeNode) (pltype.PLType, *diagnostics.Diagnostic) {
	var base pltype.PLType
	if g, ok := c.lookupGenericType(tn.Name); ok {
		base = g
	} else {
		t, err := c.GetType(tn.Name, tn.Range)
		if err != nil {
			return nil, err
		}
		base = t
	}
	for i := 0; i < tn.Pointer; i++ {
		base = &pltype.Pointer{Elem: base}
	}
	if tn.ArrSize != nil {
		base = &pltype.Arr{Elem: base, Size: *tn.ArrSize}
	}
	return base, nil
}

// ResolveTypeNode is the exported form used by internal/emit.
func (c *Ctx) ResolveTypeNode(tn pltype.TypeNode) (pltype.PLType, *diagnostics.Diagnostic) {
	return c.resolveTypeNode(tn)
}
