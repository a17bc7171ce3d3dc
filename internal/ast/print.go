package ast

import (
	"encoding/json"
	"fmt"

	"github.com/pivot-lang/plc/internal/pltype"
)

// Print produces a deterministic JSON representation of a Program for
// the PrintAst action and golden snapshot tests. Source ranges and other
// instance-specific metadata are omitted; every node carries a "type"
// field identifying its kind.
func Print(prog *Program) string {
	if prog == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(prog), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// simplify converts AST nodes to plain JSON-serializable maps, dropping
// position info.
func simplify(node any) any {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		m := map[string]any{"type": "Program"}
		if len(n.Uses) > 0 {
			m["uses"] = simplifySlice(len(n.Uses), func(i int) any { return simplify(n.Uses[i]) })
		}
		if len(n.Lets) > 0 {
			m["lets"] = simplifySlice(len(n.Lets), func(i int) any { return simplify(n.Lets[i]) })
		}
		if len(n.Structs) > 0 {
			m["structs"] = simplifySlice(len(n.Structs), func(i int) any { return simplify(n.Structs[i]) })
		}
		if len(n.Traits) > 0 {
			m["traits"] = simplifySlice(len(n.Traits), func(i int) any { return simplify(n.Traits[i]) })
		}
		if len(n.Impls) > 0 {
			m["impls"] = simplifySlice(len(n.Impls), func(i int) any { return simplify(n.Impls[i]) })
		}
		if len(n.Funcs) > 0 {
			m["funcs"] = simplifySlice(len(n.Funcs), func(i int) any { return simplify(n.Funcs[i]) })
		}
		return m

	case *UsePath:
		return map[string]any{"type": "Use", "path": n.Segments}

	case *Let:
		m := map[string]any{"type": "Let", "name": n.Name, "const": n.IsConst}
		if n.Type != nil {
			m["annotation"] = FormatTypeNode(*n.Type)
		}
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
		if n.Doc != "" {
			m["doc"] = n.Doc
		}
		return m

	case *FuncDef:
		m := map[string]any{"type": "Func", "name": n.Name, "ret": FormatTypeNode(n.RetType)}
		if n.Receiver != nil {
			m["receiver"] = n.Receiver.Name
		}
		if len(n.Generics) > 0 {
			m["generics"] = simplifySlice(len(n.Generics), func(i int) any {
				g := map[string]any{"name": n.Generics[i].Name}
				if n.Generics[i].Bound != "" {
					g["bound"] = n.Generics[i].Bound
				}
				return g
			})
		}
		if len(n.Params) > 0 {
			m["params"] = simplifySlice(len(n.Params), func(i int) any {
				return map[string]any{"name": n.Params[i].Name, "paramType": FormatTypeNode(n.Params[i].Type)}
			})
		}
		if n.Body != nil {
			m["body"] = simplify(n.Body)
		}
		if n.Doc != "" {
			m["doc"] = n.Doc
		}
		return m

	case *StructDef:
		m := map[string]any{"type": "Struct", "name": n.Name}
		m["fields"] = simplifySlice(len(n.Fields), func(i int) any {
			return map[string]any{"name": n.Fields[i].Name, "fieldType": FormatTypeNode(n.Fields[i].Type)}
		})
		if n.Doc != "" {
			m["doc"] = n.Doc
		}
		return m

	case *TraitDef:
		return map[string]any{
			"type": "Trait", "name": n.Name,
			"methods": simplifySlice(len(n.Methods), func(i int) any { return simplify(n.Methods[i]) }),
		}

	case *ImplDef:
		m := map[string]any{
			"type": "Impl", "struct": n.Struct,
			"methods": simplifySlice(len(n.Methods), func(i int) any { return simplify(n.Methods[i]) }),
		}
		if n.Trait != "" {
			m["trait"] = n.Trait
		}
		return m

	case *Block:
		return map[string]any{
			"type":  "Block",
			"stmts": simplifySlice(len(n.Stmts), func(i int) any { return simplify(n.Stmts[i]) }),
		}

	case *If:
		m := map[string]any{"type": "If", "cond": simplify(n.Cond), "then": simplify(n.Then)}
		if n.Else != nil {
			m["else"] = simplify(n.Else)
		}
		return m

	case *While:
		return map[string]any{"type": "While", "cond": simplify(n.Cond), "body": simplify(n.Body)}

	case *For:
		m := map[string]any{"type": "For", "cond": simplify(n.Cond), "body": simplify(n.Body)}
		if n.Pre != nil {
			m["pre"] = simplify(n.Pre)
		}
		if n.Opt != nil {
			m["opt"] = simplify(n.Opt)
		}
		return m

	case *Break:
		return map[string]any{"type": "Break"}
	case *Continue:
		return map[string]any{"type": "Continue"}

	case *Return:
		m := map[string]any{"type": "Return"}
		if n.Value != nil {
			m["value"] = simplify(n.Value)
		}
		return m

	case *Assignment:
		return map[string]any{"type": "Assign", "target": simplify(n.Target), "value": simplify(n.Value)}

	case *Variable:
		return map[string]any{"type": "Var", "name": n.Name}

	case *Unary:
		op := "-"
		if n.Op == UnNot {
			op = "!"
		}
		return map[string]any{"type": "Unary", "op": op, "exp": simplify(n.Exp)}

	case *Binary:
		return map[string]any{
			"type": "Binary", "op": n.Op.Spelling(),
			"left": simplify(n.Left), "right": simplify(n.Right),
		}

	case *FieldAccess:
		return map[string]any{"type": "FieldAccess", "head": simplify(n.Head), "field": n.Field}

	case *Index:
		return map[string]any{"type": "Index", "head": simplify(n.Head), "idx": simplify(n.Idx)}

	case *Call:
		m := map[string]any{
			"type": "Call", "callee": simplify(n.Callee),
			"args": simplifySlice(len(n.Args), func(i int) any { return simplify(n.Args[i]) }),
		}
		if len(n.ExplicitTypes) > 0 {
			m["typeArgs"] = simplifySlice(len(n.ExplicitTypes), func(i int) any { return FormatTypeNode(n.ExplicitTypes[i]) })
		}
		return m

	case *BoolLit:
		return map[string]any{"type": "Lit", "kind": "bool", "value": n.Value}
	case *IntLit:
		return map[string]any{"type": "Lit", "kind": "int", "value": n.Value}
	case *FloatLit:
		return map[string]any{"type": "Lit", "kind": "float", "value": n.Value}
	case *CharLit:
		return map[string]any{"type": "Lit", "kind": "char", "value": string(n.Value)}
	case *StringLit:
		return map[string]any{"type": "Lit", "kind": "string", "value": n.Value}

	case pltype.TypeNode:
		return FormatTypeNode(n)

	default:
		return map[string]any{"type": fmt.Sprintf("%T", node)}
	}
}

func simplifySlice(n int, f func(int) any) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}
