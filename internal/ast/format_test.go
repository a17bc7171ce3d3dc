package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/pltype"
)

func i64Type() pltype.TypeNode { return pltype.TypeNode{Name: "i64"} }

func sampleProgram() *Program {
	return &Program{
		Uses: []*UsePath{{Segments: []string{"std", "io"}}},
		Lets: []*Let{{
			Name:    "K",
			IsConst: true,
			Type:    &pltype.TypeNode{Name: "i64"},
			Value:   &IntLit{Value: 1},
		}},
		Structs: []*StructDef{{
			Name: "Point",
			Doc:  "a 2d point",
			Fields: []FieldDef{
				{Name: "x", Type: i64Type()},
				{Name: "y", Type: i64Type()},
			},
		}},
		Impls: []*ImplDef{{
			Struct: "Point",
			Methods: []*FuncDef{{
				Name:     "sum",
				Receiver: &Param{Name: "self"},
				RetType:  i64Type(),
				Body: &Block{Stmts: []Node{
					&Return{Value: &Binary{
						Op:    OpAdd,
						Left:  &FieldAccess{Head: &Variable{Name: "self"}, Field: "x", Complete: true},
						Right: &FieldAccess{Head: &Variable{Name: "self"}, Field: "y", Complete: true},
					}},
				}},
			}},
		}},
		Funcs: []*FuncDef{{
			Name:    "main",
			RetType: pltype.TypeNode{Name: "void"},
			Body: &Block{Stmts: []Node{
				&Let{Name: "p", Value: &Call{Callee: &Variable{Name: "Point"}}},
				&If{
					Cond: &Binary{Op: OpLt, Left: &Variable{Name: "K"}, Right: &IntLit{Value: 2}},
					Then: &Block{Stmts: []Node{&Return{}}},
					Else: &Block{Stmts: []Node{
						&While{
							Cond: &BoolLit{Value: true},
							Body: &Block{Stmts: []Node{&Break{}}},
						},
					}},
				},
				&Return{},
			}},
		}},
	}
}

func TestFormatSampleProgram(t *testing.T) {
	got := Format(sampleProgram())
	want := strings.Join([]string{
		"use std::io;",
		"",
		"const K: i64 = 1;",
		"",
		"// a 2d point",
		"struct Point {",
		"    x: i64;",
		"    y: i64;",
		"}",
		"",
		"impl Point {",
		"    fn sum(self) i64 {",
		"        return self.x + self.y;",
		"    }",
		"}",
		"",
		"fn main() void {",
		"    let p = Point();",
		"    if K < 2 {",
		"        return;",
		"    } else {",
		"        while true {",
		"            break;",
		"        }",
		"    }",
		"    return;",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatDeterministic(t *testing.T) {
	// Formatting the same tree twice must agree byte for byte; this is
	// the AST-level half of the fmt(fmt(src)) == fmt(src) law (the
	// parser contributes the other half).
	a := Format(sampleProgram())
	b := Format(sampleProgram())
	assert.Equal(t, a, b)
}

func TestFormatExprPrecedence(t *testing.T) {
	// (a + b) * c needs parentheses; a + b * c does not.
	mul := &Binary{
		Op: OpMul,
		Left: &Binary{
			Op:    OpAdd,
			Left:  &Variable{Name: "a"},
			Right: &Variable{Name: "b"},
		},
		Right: &Variable{Name: "c"},
	}
	assert.Equal(t, "(a + b) * c", FormatExpr(mul))

	add := &Binary{
		Op:   OpAdd,
		Left: &Variable{Name: "a"},
		Right: &Binary{
			Op:    OpMul,
			Left:  &Variable{Name: "b"},
			Right: &Variable{Name: "c"},
		},
	}
	assert.Equal(t, "a + b * c", FormatExpr(add))

	not := &Unary{Op: UnNot, Exp: &Binary{
		Op:    OpAnd,
		Left:  &Variable{Name: "a"},
		Right: &Variable{Name: "b"},
	}}
	assert.Equal(t, "!(a && b)", FormatExpr(not))
}

func TestFormatElseIfChain(t *testing.T) {
	prog := &Program{Funcs: []*FuncDef{{
		Name:    "f",
		RetType: i64Type(),
		Body: &Block{Stmts: []Node{
			&If{
				Cond: &Variable{Name: "a"},
				Then: &Block{Stmts: []Node{&Return{Value: &IntLit{Value: 1}}}},
				Else: &If{
					Cond: &Variable{Name: "b"},
					Then: &Block{Stmts: []Node{&Return{Value: &IntLit{Value: 2}}}},
					Else: &Block{Stmts: []Node{&Return{Value: &IntLit{Value: 3}}}},
				},
			},
		}},
	}}}
	got := Format(prog)
	assert.Contains(t, got, "} else if b {")
	assert.NotContains(t, got, "else {\n        if")
}

func TestFormatTypeNode(t *testing.T) {
	size := uint32(4)
	assert.Equal(t, "i64", FormatTypeNode(pltype.TypeNode{Name: "i64"}))
	assert.Equal(t, "**Point", FormatTypeNode(pltype.TypeNode{Name: "Point", Pointer: 2}))
	assert.Equal(t, "[4]f64", FormatTypeNode(pltype.TypeNode{Name: "f64", ArrSize: &size}))
}

func TestPrintProgram(t *testing.T) {
	out := Print(sampleProgram())
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"type": "Program"`)
	assert.Contains(t, out, `"type": "Struct"`)
	assert.Contains(t, out, `"name": "Point"`)
	assert.Contains(t, out, `"type": "While"`)

	// Deterministic across runs, so golden snapshots are stable.
	assert.Equal(t, out, Print(sampleProgram()))
}

func TestPrintNilProgram(t *testing.T) {
	assert.Equal(t, "null", Print(nil))
}
