package irbuild

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// Module is the emitted IR module: every declared/defined function plus
// the struct type table and debug info, serialized either as textual IR
// (an LLVM-flavored text form, written as .ll) or as a sorted-key JSON
// encoding (written as .bc).
type Module struct {
	Name        string
	Functions   []*Function
	StructDefs  []structDef
	DebugInfo   *DebugInfo
}

type structDef struct {
	Name   string
	Fields []BasicType
}

// Emitter is the real IRBuilder implementation. It tracks the position
// (current function/block) internally; Ctx.function/Ctx.block hold the
// same *Function/*Block handles this type hands back, so Ctx never
// duplicates builder state.
type Emitter struct {
	Mod      *Module
	curBlock *Block
	dbgPos   *source.Position
}

// NewEmitter starts a real builder for a freshly created module.
func NewEmitter(moduleName, file, dir string) *Emitter {
	return &Emitter{Mod: &Module{Name: moduleName, DebugInfo: NewDebugInfo(file, dir)}}
}

var _ IRBuilder = (*Emitter)(nil)

func (e *Emitter) DeclareFunction(llvmName string, params []BasicType, ret BasicType, isVoid bool) *Function {
	for _, f := range e.Mod.Functions {
		if f.LLVMName == llvmName {
			return f
		}
	}
	fn := &Function{Name: llvmName, LLVMName: llvmName, ParamTypes: params, RetType: ret, IsVoid: isVoid, declOnly: true}
	e.Mod.Functions = append(e.Mod.Functions, fn)
	return fn
}

func (e *Emitter) DefineFunction(fn *Function) {
	fn.declOnly = false
	if fn.AllocBlock == nil {
		fn.AllocBlock = e.AppendBlock(fn, "alloc")
	}
	if fn.EntryBlock == nil {
		fn.EntryBlock = e.AppendBlock(fn, "entry")
	}
}

func (e *Emitter) GetParam(fn *Function, n int) *Value {
	if n < 0 || n >= len(fn.ParamTypes) {
		return &Value{name: "undef", Type: BasicType{Kind: KVoid}}
	}
	return &Value{name: fmt.Sprintf("%%arg%d", n), Type: fn.ParamTypes[n]}
}

func (e *Emitter) BuildCall(fn *Function, args []*Value, name string) *Value {
	res := &Value{name: e.fresh(name), Type: fn.RetType}
	argStrs := make([]string, len(args))
	for i, a := range args {
		argStrs[i] = operand(a)
	}
	line := fmt.Sprintf("%s = call %s @%s(%s)", res.name, fn.RetType, fn.LLVMName, join(argStrs))
	if fn.IsVoid {
		line = fmt.Sprintf("call void @%s(%s)", fn.LLVMName, join(argStrs))
	}
	e.emit(line)
	return res
}

func (e *Emitter) Alloc(fn *Function, name string, t BasicType, pos source.Position, usegc bool) *Value {
	v := &Value{name: e.freshIn(fn, name), Type: BasicType{Kind: KPointer, Elem: &t}}
	line := fmt.Sprintf("%s = alloca %s", v.name, t)
	if usegc && t.IsPointerBearing() {
		line += " ; gc-root"
	}
	if fn.AllocBlock != nil {
		fn.AllocBlock.lines = append(fn.AllocBlock.lines, line)
	} else {
		e.emit(line)
	}
	return v
}

func (e *Emitter) BuildLoad(ptr *Value, name string) *Value {
	elem := BasicType{Kind: KVoid}
	if ptr.Type.Elem != nil {
		elem = *ptr.Type.Elem
	}
	v := &Value{name: e.fresh(name), Type: elem}
	e.emit(fmt.Sprintf("%s = load %s, ptr %s", v.name, elem, operand(ptr)))
	return v
}

func (e *Emitter) BuildStore(ptr, val *Value) {
	e.emit(fmt.Sprintf("store %s %s, ptr %s", val.Type, operand(val), operand(ptr)))
}

func (e *Emitter) AppendBlock(fn *Function, name string) *Block {
	fn.blockSeq++
	label := name
	if name != "alloc" && name != "entry" {
		label = fmt.Sprintf("%s.%d", name, fn.blockSeq)
	}
	b := &Block{name: label, fn: fn}
	fn.blocks = append(fn.blocks, b)
	return b
}

func (e *Emitter) PositionAtEnd(b *Block) { e.curBlock = b }
func (e *Emitter) CurrentBlock() *Block   { return e.curBlock }

func (e *Emitter) BuildBr(b *Block) {
	if e.curBlock == nil || e.curBlock.terminated {
		return
	}
	e.emit(fmt.Sprintf("br label %%%s", b.name))
	e.curBlock.terminated = true
}

func (e *Emitter) BuildCondBr(cond *Value, then, els *Block) {
	if e.curBlock == nil || e.curBlock.terminated {
		return
	}
	e.emit(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", operand(cond), then.name, els.name))
	e.curBlock.terminated = true
}

func (e *Emitter) BuildReturn(val *Value) {
	if e.curBlock == nil || e.curBlock.terminated {
		return
	}
	if val == nil {
		e.emit("ret void")
	} else {
		e.emit(fmt.Sprintf("ret %s %s", val.Type, operand(val)))
	}
	e.curBlock.terminated = true
}

func (e *Emitter) BuildUnreachable() {
	if e.curBlock == nil || e.curBlock.terminated {
		return
	}
	e.emit("unreachable")
	e.curBlock.terminated = true
}

func (e *Emitter) BuildIntBinOp(op string, lhs, rhs *Value, name string) *Value {
	v := &Value{name: e.fresh(name), Type: lhs.Type}
	e.emit(fmt.Sprintf("%s = %s %s %s, %s", v.name, op, lhs.Type, operand(lhs), operand(rhs)))
	return v
}

func (e *Emitter) BuildFloatBinOp(op string, lhs, rhs *Value, name string) *Value {
	v := &Value{name: e.fresh(name), Type: lhs.Type}
	e.emit(fmt.Sprintf("%s = f%s %s %s, %s", v.name, op, lhs.Type, operand(lhs), operand(rhs)))
	return v
}

func (e *Emitter) BuildCompare(pred Predicate, lhs, rhs *Value, name string) *Value {
	v := &Value{name: e.fresh(name), Type: BasicType{Kind: KInt, Width: pltype.TruthWidth}}
	op := "icmp"
	predStr := pred.llvmIntOp()
	if lhs.Type.Kind == KFloat {
		op = "fcmp"
		predStr = pred.llvmFloatOp()
	}
	e.emit(fmt.Sprintf("%s = %s %s %s %s, %s", v.name, op, predStr, lhs.Type, operand(lhs), operand(rhs)))
	return v
}

func (e *Emitter) BuildStructGEP(ptr *Value, index int, fieldType BasicType, name string) *Value {
	v := &Value{name: e.fresh(name), Type: BasicType{Kind: KPointer, Elem: &fieldType}}
	e.emit(fmt.Sprintf("%s = getelementptr inbounds %s, ptr %s, i32 0, i32 %d", v.name, ptrElem(ptr), operand(ptr), index))
	return v
}

func (e *Emitter) BuildArrayGEP(ptr *Value, index *Value, elemType BasicType, name string) *Value {
	v := &Value{name: e.fresh(name), Type: BasicType{Kind: KPointer, Elem: &elemType}}
	e.emit(fmt.Sprintf("%s = getelementptr inbounds %s, ptr %s, i64 0, i64 %s", v.name, ptrElem(ptr), operand(ptr), operand(index)))
	return v
}

func ptrElem(ptr *Value) string {
	if ptr.Type.Elem != nil {
		return ptr.Type.Elem.String()
	}
	return "void"
}

func (e *Emitter) ConstInt(v int64, width int) *Value {
	return &Value{Type: BasicType{Kind: KInt, Width: width}, isConst: true, literal: fmt.Sprintf("%d", v)}
}
func (e *Emitter) ConstFloat(v float64) *Value {
	return &Value{Type: BasicType{Kind: KFloat, Width: 64}, isConst: true, literal: fmt.Sprintf("%g", v)}
}
func (e *Emitter) ConstBool(b bool) *Value {
	lit := "0"
	if b {
		lit = "1"
	}
	return &Value{Type: BasicType{Kind: KInt, Width: 8}, isConst: true, literal: lit}
}
func (e *Emitter) ConstChar(r rune) *Value {
	return &Value{Type: BasicType{Kind: KInt, Width: 8}, isConst: true, literal: fmt.Sprintf("%d", r)}
}
func (e *Emitter) ConstString(s string) *Value {
	return &Value{Type: BasicType{Kind: KPointer, Elem: &BasicType{Kind: KInt, Width: 8}}, isConst: true, literal: fmt.Sprintf("%q", s)}
}

func (e *Emitter) BuildDbgLocation(pos source.Position) { e.dbgPos = &pos }
func (e *Emitter) UnsetDbgLocation()                    { e.dbgPos = nil }

func (e *Emitter) InsertDeclareAtEnd(ptr *Value, name string, di *DIType, pos source.Position) {
	size := uint64(0)
	if di != nil {
		size = di.SizeBits
	}
	e.emit(fmt.Sprintf("call void @llvm.dbg.declare(ptr %s, !\"%s\", i64 %d, !%d)", operand(ptr), name, size, pos.Line))
}

func (e *Emitter) NewSubprogram(name string, line uint32) *DISubprogram {
	return e.Mod.DebugInfo.NewSubprogram(name, line)
}

func (e *Emitter) NewLexicalBlock(parent *DILexicalBlock, start source.Position) *DILexicalBlock {
	return &DILexicalBlock{Parent: parent, Start: start}
}

func (e *Emitter) FinalizeDebug() { e.Mod.DebugInfo.Finalize() }

// PrintToFile writes the module's textual IR form.
func (e *Emitter) PrintToFile(path string) error {
	return os.WriteFile(path, []byte(e.Render()), 0o644)
}

// WriteBitcode writes the module's deterministically-marshaled
// snapshot, the bitcode-equivalent "<stem>_<hash>.bc" artifact.
func (e *Emitter) WriteBitcode(path string) error {
	data, err := MarshalDeterministic(e.snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

type snapshotFn struct {
	Name   string
	Void   bool
	Blocks []snapshotBlock
}
type snapshotBlock struct {
	Name  string
	Lines []string
}

func (e *Emitter) snapshot() []snapshotFn {
	out := make([]snapshotFn, 0, len(e.Mod.Functions))
	for _, fn := range e.Mod.Functions {
		sf := snapshotFn{Name: fn.LLVMName, Void: fn.IsVoid}
		for _, b := range fn.blocks {
			sf.Blocks = append(sf.Blocks, snapshotBlock{Name: b.name, Lines: append([]string{}, b.lines...)})
		}
		out = append(out, sf)
	}
	return out
}

// Render produces the module's textual IR, stable and diffable across
// repeated emission of unchanged ASTs.
func (e *Emitter) Render() string {
	var out bytes.Buffer
	fmt.Fprintf(&out, "; module %s\n", e.Mod.Name)
	for _, fn := range e.Mod.Functions {
		ret := fn.RetType.String()
		if fn.IsVoid {
			ret = "void"
		}
		params := make([]string, len(fn.ParamTypes))
		for i, p := range fn.ParamTypes {
			params[i] = p.String()
		}
		if fn.declOnly {
			fmt.Fprintf(&out, "declare %s @%s(%s)\n", ret, fn.LLVMName, join(params))
			continue
		}
		fmt.Fprintf(&out, "define %s @%s(%s) {\n", ret, fn.LLVMName, join(params))
		for _, b := range fn.blocks {
			fmt.Fprintf(&out, "%s:\n", b.name)
			for _, l := range b.lines {
				fmt.Fprintf(&out, "  %s\n", l)
			}
		}
		fmt.Fprintln(&out, "}")
	}
	return out.String()
}

func (e *Emitter) emit(line string) {
	if e.curBlock == nil || e.curBlock.terminated {
		return
	}
	e.curBlock.lines = append(e.curBlock.lines, line)
}

func (e *Emitter) fresh(hint string) string {
	if e.curBlock == nil || e.curBlock.fn == nil {
		return "%" + hint
	}
	return e.freshIn(e.curBlock.fn, hint)
}

func (e *Emitter) freshIn(fn *Function, hint string) string {
	fn.valueSeq++
	return fmt.Sprintf("%%%s.%d", hint, fn.valueSeq)
}

func operand(v *Value) string {
	if v.isConst {
		return v.literal
	}
	return v.name
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
