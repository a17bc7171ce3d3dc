package ast

import (
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// Let is `let name[: Type] = value` or `const name: Type = value` at
// module scope. IsConst mirrors the `const` keyword.
type Let struct {
	base
	Name    string
	NameRng source.Range
	Type    *pltype.TypeNode // nil if the annotation is absent
	Value   Node             // nil if the initializer is absent
	IsConst bool
	Doc     string
}

// Param is one function parameter.
type Param struct {
	Name    string
	NameRng source.Range
	Type    pltype.TypeNode
}

// GenericParam is one declared generic type parameter, optionally bound
// to a trait (`T: Shape`).
type GenericParam struct {
	Name  string
	Bound string // "" if unbound
	Rng   source.Range
}

// FuncDef is a top-level or method function definition. Body is nil for a Trait method signature.
type FuncDef struct {
	base
	Name       string
	NameRng    source.Range
	Receiver   *Param // non-nil for `impl` methods; receiver's type names the struct
	Generics   []GenericParam
	Params     []Param
	RetType    pltype.TypeNode
	Body       *Block
	Doc        string
}

// FieldDef is one struct field declaration.
type FieldDef struct {
	Name    string
	NameRng source.Range
	Type    pltype.TypeNode
	Doc     string
}

// StructDef is `struct Name { fields... }`.
type StructDef struct {
	base
	Name    string
	NameRng source.Range
	Fields  []FieldDef
	Doc     string
}

// TraitDef is `trait Name { fn sig... }`: method bodies
// must be absent.
type TraitDef struct {
	base
	Name    string
	NameRng source.Range
	Methods []*FuncDef
	Doc     string
}

// ImplDef is `impl [Trait for] Struct { fn ... }`. Trait is
// "" for an inherent impl block.
type ImplDef struct {
	base
	Trait    string
	TraitRng source.Range
	Struct   string
	StructRng source.Range
	Methods  []*FuncDef
}

// UsePath is one `use a::b::c` path segment chain.
type UsePath struct {
	base
	Segments []string
}

// Program is a whole source file's parse result: the unit `compile_dry`
// and `emit_file` operate on.
type Program struct {
	base
	Uses  []*UsePath
	Lets  []*Let
	Funcs []*FuncDef
	Structs []*StructDef
	Traits  []*TraitDef
	Impls   []*ImplDef
}
