package irbuild

import "github.com/pivot-lang/plc/internal/source"

// Value is an opaque handle to an IR value. Constant values carry
// their literal text directly so arithmetic on them doesn't need a
// separate "constant" pass.
type Value struct {
	name    string
	Type    BasicType
	isConst bool
	literal string
}

// IsPointer reports whether the value's static type is itself a pointer
func (v *Value) IsPointer() bool { return v != nil && v.Type.Kind == KPointer }

// Block is one basic block within a Function.
type Block struct {
	name        string
	fn          *Function
	lines       []string
	terminated  bool
}

// Name returns the block's label.
func (b *Block) Name() string { return b.name }

// Terminated reports whether the block already ends in a terminator
// (br/cond-br/ret/unreachable); break/continue emitters rely on this
// when they open a dead block afterwards.
func (b *Block) Terminated() bool { return b.terminated }

// Function is one emitted function: its alloc/entry split plus every subsequent block.
type Function struct {
	Name       string
	LLVMName   string
	ParamTypes []BasicType
	RetType    BasicType // zero value with Kind==KVoid for void functions
	IsVoid     bool

	AllocBlock *Block
	EntryBlock *Block
	blocks     []*Block
	blockSeq   int
	valueSeq   int
	declOnly   bool
	emitted    bool
}

// Blocks returns every block in emission order, alloc block first.
func (f *Function) Blocks() []*Block { return f.blocks }

// IRBuilder is the capability interface node emitters use; it is never
// called directly against a backend. Two implementations exist:
// Emitter (real) and NoopBuilder.
type IRBuilder interface {
	// Functions
	DeclareFunction(llvmName string, params []BasicType, ret BasicType, isVoid bool) *Function
	DefineFunction(fn *Function)
	GetParam(fn *Function, n int) *Value
	BuildCall(fn *Function, args []*Value, name string) *Value

	// Allocation and memory
	Alloc(fn *Function, name string, t BasicType, pos source.Position, usegc bool) *Value
	BuildLoad(ptr *Value, name string) *Value
	BuildStore(ptr, val *Value)

	// Control flow
	AppendBlock(fn *Function, name string) *Block
	PositionAtEnd(b *Block)
	CurrentBlock() *Block
	BuildBr(b *Block)
	BuildCondBr(cond *Value, then, els *Block)
	BuildReturn(val *Value)
	BuildUnreachable()

	// Arithmetic and comparison
	BuildIntBinOp(op string, lhs, rhs *Value, name string) *Value
	BuildFloatBinOp(op string, lhs, rhs *Value, name string) *Value
	BuildCompare(pred Predicate, lhs, rhs *Value, name string) *Value

	// Struct/array access
	BuildStructGEP(ptr *Value, index int, fieldType BasicType, name string) *Value
	BuildArrayGEP(ptr *Value, index *Value, elemType BasicType, name string) *Value

	// Constants
	ConstInt(v int64, width int) *Value
	ConstFloat(v float64) *Value
	ConstBool(b bool) *Value
	ConstChar(r rune) *Value
	ConstString(s string) *Value

	// Debug info
	BuildDbgLocation(pos source.Position)
	UnsetDbgLocation()
	InsertDeclareAtEnd(ptr *Value, name string, di *DIType, pos source.Position)
	NewSubprogram(name string, line uint32) *DISubprogram
	NewLexicalBlock(parent *DILexicalBlock, start source.Position) *DILexicalBlock
	FinalizeDebug()

	// Output
	PrintToFile(path string) error
	WriteBitcode(path string) error
}
