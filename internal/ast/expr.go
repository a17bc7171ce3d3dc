package ast

import (
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// UnOp enumerates unary operators.
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

// Variable is an identifier reference, resolved via get_symbol.
type Variable struct {
	base
	Name string
}

// Unary is `-exp` or `!exp`.
type Unary struct {
	base
	Op  UnOp
	Exp Node
}

// Binary is `left op right`.
type Binary struct {
	base
	Op    BinOp
	Left  Node
	Right Node
}

// Assignment is `target = value`.
type Assignment struct {
	base
	Target Node
	Value  Node
}

// FieldAccess is `head.field` (and chained `head.a.b`), mirroring
// pivot-lang's TakeOpNode. Complete is false when the source ends right
// after the trailing `.` with no field name yet — the signal to emit
// member completions instead of resolving a field.
type FieldAccess struct {
	base
	Head     Node
	Field    string
	FieldRng source.Range
	Complete bool
}

// Index is `head[idx]`.
type Index struct {
	base
	Head Node
	Idx  Node
}

// Call is `callee(args…)`, with an optional explicit generic-parameter
// list `callee::<T, U>(args…)`.
type Call struct {
	base
	Callee        Node
	Args          []Node
	ExplicitTypes []pltype.TypeNode
}
