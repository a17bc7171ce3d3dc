package irbuild

import (
	"strconv"

	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// NoopBuilder is the IR-builder implementation installed whenever the
// active action is a language-service query rather than compilation.
// Every operation returns a syntactically valid handle but emits no
// IR and touches no filesystem; it only appends blocks to functions and
// tracks which block is current and terminated. This is the mechanism by
// which editor queries stay responsive without producing backend
// artifacts.
type NoopBuilder struct {
	blockSeq int
	valueSeq int
	cur      *Block
}

var _ IRBuilder = (*NoopBuilder)(nil)

func (n *NoopBuilder) fresh() string {
	n.valueSeq++
	return "%noop." + strconv.Itoa(n.valueSeq)
}

func (n *NoopBuilder) DeclareFunction(llvmName string, params []BasicType, ret BasicType, isVoid bool) *Function {
	return &Function{Name: llvmName, LLVMName: llvmName, ParamTypes: params, RetType: ret, IsVoid: isVoid}
}

func (n *NoopBuilder) DefineFunction(fn *Function) {
	if fn.AllocBlock == nil {
		fn.AllocBlock = n.AppendBlock(fn, "alloc")
	}
	if fn.EntryBlock == nil {
		fn.EntryBlock = n.AppendBlock(fn, "entry")
	}
}

func (n *NoopBuilder) GetParam(fn *Function, i int) *Value {
	if i < 0 || i >= len(fn.ParamTypes) {
		return &Value{Type: BasicType{Kind: KVoid}}
	}
	return &Value{Type: fn.ParamTypes[i]}
}

func (n *NoopBuilder) BuildCall(fn *Function, args []*Value, name string) *Value {
	return &Value{name: n.fresh(), Type: fn.RetType}
}

func (n *NoopBuilder) Alloc(fn *Function, name string, t BasicType, pos source.Position, usegc bool) *Value {
	return &Value{name: n.fresh(), Type: BasicType{Kind: KPointer, Elem: &t}}
}

func (n *NoopBuilder) BuildLoad(ptr *Value, name string) *Value {
	elem := BasicType{Kind: KVoid}
	if ptr.Type.Elem != nil {
		elem = *ptr.Type.Elem
	}
	return &Value{name: n.fresh(), Type: elem}
}

func (n *NoopBuilder) BuildStore(ptr, val *Value) {}

func (n *NoopBuilder) AppendBlock(fn *Function, name string) *Block {
	n.blockSeq++
	b := &Block{name: name, fn: fn}
	fn.blocks = append(fn.blocks, b)
	return b
}

func (n *NoopBuilder) PositionAtEnd(b *Block) { n.cur = b }
func (n *NoopBuilder) CurrentBlock() *Block   { return n.cur }

func (n *NoopBuilder) BuildBr(b *Block) {
	if n.cur != nil {
		n.cur.terminated = true
	}
}
func (n *NoopBuilder) BuildCondBr(cond *Value, then, els *Block) {
	if n.cur != nil {
		n.cur.terminated = true
	}
}
func (n *NoopBuilder) BuildReturn(val *Value) {
	if n.cur != nil {
		n.cur.terminated = true
	}
}
func (n *NoopBuilder) BuildUnreachable() {
	if n.cur != nil {
		n.cur.terminated = true
	}
}

func (n *NoopBuilder) BuildIntBinOp(op string, lhs, rhs *Value, name string) *Value {
	return &Value{name: n.fresh(), Type: lhs.Type}
}
func (n *NoopBuilder) BuildFloatBinOp(op string, lhs, rhs *Value, name string) *Value {
	return &Value{name: n.fresh(), Type: lhs.Type}
}
func (n *NoopBuilder) BuildCompare(pred Predicate, lhs, rhs *Value, name string) *Value {
	return &Value{name: n.fresh(), Type: BasicType{Kind: KInt, Width: pltype.TruthWidth}}
}

func (n *NoopBuilder) BuildStructGEP(ptr *Value, index int, fieldType BasicType, name string) *Value {
	return &Value{name: n.fresh(), Type: BasicType{Kind: KPointer, Elem: &fieldType}}
}
func (n *NoopBuilder) BuildArrayGEP(ptr *Value, index *Value, elemType BasicType, name string) *Value {
	return &Value{name: n.fresh(), Type: BasicType{Kind: KPointer, Elem: &elemType}}
}

func (n *NoopBuilder) ConstInt(v int64, width int) *Value {
	return &Value{Type: BasicType{Kind: KInt, Width: width}, isConst: true}
}
func (n *NoopBuilder) ConstFloat(v float64) *Value {
	return &Value{Type: BasicType{Kind: KFloat, Width: 64}, isConst: true}
}
func (n *NoopBuilder) ConstBool(b bool) *Value {
	return &Value{Type: BasicType{Kind: KInt, Width: 8}, isConst: true}
}
func (n *NoopBuilder) ConstChar(r rune) *Value {
	return &Value{Type: BasicType{Kind: KInt, Width: 8}, isConst: true}
}
func (n *NoopBuilder) ConstString(s string) *Value {
	return &Value{Type: BasicType{Kind: KPointer, Elem: &BasicType{Kind: KInt, Width: 8}}, isConst: true}
}

func (n *NoopBuilder) BuildDbgLocation(pos source.Position)                      {}
func (n *NoopBuilder) UnsetDbgLocation()                                         {}
func (n *NoopBuilder) InsertDeclareAtEnd(ptr *Value, name string, di *DIType, pos source.Position) {}
func (n *NoopBuilder) NewSubprogram(name string, line uint32) *DISubprogram {
	return &DISubprogram{Name: name, Line: line}
}
func (n *NoopBuilder) NewLexicalBlock(parent *DILexicalBlock, start source.Position) *DILexicalBlock {
	return &DILexicalBlock{Parent: parent, Start: start}
}
func (n *NoopBuilder) FinalizeDebug() {}

func (n *NoopBuilder) PrintToFile(path string) error  { return nil }
func (n *NoopBuilder) WriteBitcode(path string) error { return nil }
