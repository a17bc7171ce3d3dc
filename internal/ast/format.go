package ast

import (
	"fmt"
	"strings"

	"github.com/pivot-lang/plc/internal/pltype"
)

// fmtBuilder accumulates formatted source text with indentation
// tracking, mirroring pivot-lang's FmtBuilder that every node's format
// method appends into.
type fmtBuilder struct {
	sb    strings.Builder
	depth int
}

func (b *fmtBuilder) line(s string) {
	b.sb.WriteString(strings.Repeat("    ", b.depth))
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func (b *fmtBuilder) blank() { b.sb.WriteByte('\n') }

// Format renders prog back to canonical source text. Declarations are
// grouped by kind (uses, constants, structs, traits, impls, functions)
// in their recorded order, so formatting an already-formatted tree
// reproduces the same text byte for byte.
func Format(prog *Program) string {
	b := &fmtBuilder{}
	for _, u := range prog.Uses {
		b.line("use " + strings.Join(u.Segments, "::") + ";")
	}
	if len(prog.Uses) > 0 {
		b.blank()
	}
	for _, l := range prog.Lets {
		formatDoc(b, l.Doc)
		b.line(formatLet(l) + ";")
	}
	if len(prog.Lets) > 0 {
		b.blank()
	}
	for i, s := range prog.Structs {
		if i > 0 {
			b.blank()
		}
		formatStruct(b, s)
	}
	if len(prog.Structs) > 0 {
		b.blank()
	}
	for i, t := range prog.Traits {
		if i > 0 {
			b.blank()
		}
		formatTrait(b, t)
	}
	if len(prog.Traits) > 0 {
		b.blank()
	}
	for i, im := range prog.Impls {
		if i > 0 {
			b.blank()
		}
		formatImpl(b, im)
	}
	if len(prog.Impls) > 0 {
		b.blank()
	}
	for i, f := range prog.Funcs {
		if i > 0 {
			b.blank()
		}
		formatDoc(b, f.Doc)
		formatFunc(b, f)
	}
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}

func formatDoc(b *fmtBuilder, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		b.line("// " + line)
	}
}

func formatLet(l *Let) string {
	kw := "let"
	if l.IsConst {
		kw = "const"
	}
	s := kw + " " + l.Name
	if l.Type != nil {
		s += ": " + FormatTypeNode(*l.Type)
	}
	if l.Value != nil {
		s += " = " + FormatExpr(l.Value)
	}
	return s
}

func formatStruct(b *fmtBuilder, s *StructDef) {
	formatDoc(b, s.Doc)
	b.line("struct " + s.Name + " {")
	b.depth++
	for _, f := range s.Fields {
		formatDoc(b, f.Doc)
		b.line(f.Name + ": " + FormatTypeNode(f.Type) + ";")
	}
	b.depth--
	b.line("}")
}

func formatTrait(b *fmtBuilder, t *TraitDef) {
	formatDoc(b, t.Doc)
	b.line("trait " + t.Name + " {")
	b.depth++
	for _, m := range t.Methods {
		formatDoc(b, m.Doc)
		b.line(formatSignature(m) + ";")
	}
	b.depth--
	b.line("}")
}

func formatImpl(b *fmtBuilder, im *ImplDef) {
	head := "impl "
	if im.Trait != "" {
		head += im.Trait + " for "
	}
	b.line(head + im.Struct + " {")
	b.depth++
	for i, m := range im.Methods {
		if i > 0 {
			b.blank()
		}
		formatDoc(b, m.Doc)
		formatFunc(b, m)
	}
	b.depth--
	b.line("}")
}

func formatSignature(f *FuncDef) string {
	s := "fn " + f.Name
	if len(f.Generics) > 0 {
		parts := make([]string, len(f.Generics))
		for i, g := range f.Generics {
			parts[i] = g.Name
			if g.Bound != "" {
				parts[i] += ": " + g.Bound
			}
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	params := make([]string, 0, len(f.Params)+1)
	if f.Receiver != nil {
		params = append(params, f.Receiver.Name)
	}
	for _, p := range f.Params {
		params = append(params, p.Name+": "+FormatTypeNode(p.Type))
	}
	return s + "(" + strings.Join(params, ", ") + ") " + FormatTypeNode(f.RetType)
}

func formatFunc(b *fmtBuilder, f *FuncDef) {
	if f.Body == nil {
		b.line(formatSignature(f) + ";")
		return
	}
	b.line(formatSignature(f) + " {")
	b.depth++
	for _, st := range f.Body.Stmts {
		formatStmt(b, st)
	}
	b.depth--
	b.line("}")
}

func formatStmt(b *fmtBuilder, n Node) {
	switch s := n.(type) {
	case *Block:
		b.line("{")
		b.depth++
		for _, st := range s.Stmts {
			formatStmt(b, st)
		}
		b.depth--
		b.line("}")
	case *Let:
		b.line(formatLet(s) + ";")
	case *If:
		formatIf(b, s)
	case *While:
		b.line("while " + FormatExpr(s.Cond) + " {")
		b.depth++
		for _, st := range s.Body.Stmts {
			formatStmt(b, st)
		}
		b.depth--
		b.line("}")
	case *For:
		head := "for "
		if s.Pre != nil {
			head += formatInline(s.Pre)
		}
		head += "; " + FormatExpr(s.Cond) + ";"
		if s.Opt != nil {
			head += " " + formatInline(s.Opt)
		}
		b.line(head + " {")
		b.depth++
		for _, st := range s.Body.Stmts {
			formatStmt(b, st)
		}
		b.depth--
		b.line("}")
	case *Break:
		b.line("break;")
	case *Continue:
		b.line("continue;")
	case *Return:
		if s.Value == nil {
			b.line("return;")
		} else {
			b.line("return " + FormatExpr(s.Value) + ";")
		}
	case *Assignment:
		b.line(FormatExpr(s.Target) + " = " + FormatExpr(s.Value) + ";")
	default:
		b.line(FormatExpr(n) + ";")
	}
}

// formatIf renders an if statement, folding nested else-If chains into
// `} else if` continuations at the same depth.
func formatIf(b *fmtBuilder, s *If) {
	head := "if " + FormatExpr(s.Cond) + " {"
	for {
		b.line(head)
		b.depth++
		for _, st := range s.Then.Stmts {
			formatStmt(b, st)
		}
		b.depth--
		switch els := s.Else.(type) {
		case *If:
			s = els
			head = "} else if " + FormatExpr(els.Cond) + " {"
			continue
		case *Block:
			b.line("} else {")
			b.depth++
			for _, st := range els.Stmts {
				formatStmt(b, st)
			}
			b.depth--
			b.line("}")
		default:
			b.line("}")
		}
		return
	}
}

// formatInline renders a statement-shaped node (a for-loop's pre/opt
// slot) without a trailing semicolon or newline.
func formatInline(n Node) string {
	switch s := n.(type) {
	case *Let:
		return formatLet(s)
	case *Assignment:
		return FormatExpr(s.Target) + " = " + FormatExpr(s.Value)
	default:
		return FormatExpr(n)
	}
}

// Operator precedence levels, loosest binding first; used to decide
// where parentheses are required when rendering nested expressions.
const (
	precOr = iota + 1
	precAnd
	precCmp
	precAdd
	precMul
	precUnary
	precPrimary
)

func (op BinOp) prec() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return precCmp
	case OpAdd, OpSub:
		return precAdd
	default:
		return precMul
	}
}

// Spelling returns the operator's source-level token.
func (op BinOp) Spelling() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	default:
		return "||"
	}
}

// FormatExpr renders one expression node as source text.
func FormatExpr(n Node) string {
	return formatExpr(n, 0)
}

func formatExpr(n Node, parent int) string {
	switch e := n.(type) {
	case *BoolLit:
		return fmt.Sprintf("%t", e.Value)
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *FloatLit:
		s := fmt.Sprintf("%g", e.Value)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case *CharLit:
		return fmt.Sprintf("%q", e.Value)
	case *StringLit:
		return fmt.Sprintf("%q", e.Value)
	case *Variable:
		return e.Name
	case *Unary:
		op := "-"
		if e.Op == UnNot {
			op = "!"
		}
		return op + formatExpr(e.Exp, precUnary)
	case *Binary:
		p := e.Op.prec()
		s := formatExpr(e.Left, p) + " " + e.Op.Spelling() + " " + formatExpr(e.Right, p+1)
		if p < parent {
			return "(" + s + ")"
		}
		return s
	case *FieldAccess:
		if !e.Complete {
			return formatExpr(e.Head, precPrimary) + "."
		}
		return formatExpr(e.Head, precPrimary) + "." + e.Field
	case *Index:
		return formatExpr(e.Head, precPrimary) + "[" + FormatExpr(e.Idx) + "]"
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = FormatExpr(a)
		}
		s := formatExpr(e.Callee, precPrimary)
		if len(e.ExplicitTypes) > 0 {
			tps := make([]string, len(e.ExplicitTypes))
			for i, t := range e.ExplicitTypes {
				tps[i] = FormatTypeNode(t)
			}
			s += "::<" + strings.Join(tps, ", ") + ">"
		}
		return s + "(" + strings.Join(args, ", ") + ")"
	default:
		return ""
	}
}

// FormatTypeNode renders a syntactic type reference: leading '*'
// wrappers, then an optional fixed-array size, then the base name.
func FormatTypeNode(t pltype.TypeNode) string {
	s := strings.Repeat("*", t.Pointer)
	if t.ArrSize != nil {
		s += fmt.Sprintf("[%d]", *t.ArrSize)
	}
	return s + t.Name
}
