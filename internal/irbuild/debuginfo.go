package irbuild

import "github.com/pivot-lang/plc/internal/source"

// DW_ATE encodings attached to DIType.Encoding.
const (
	dwAteBoolean = 0x02
	dwAteFloat   = 0x04
	dwAteSigned  = 0x05
)

// DIKind discriminates the DWARF-shaped debug type tree.
type DIKind int

const (
	DIBasic DIKind = iota
	DIPointer
	DIArray
	DIStruct
	DIMemberType
)

// DIType is a DWARF-style debug info type (basic, pointer, array,
// struct and member entries), built without linking an actual DWARF
// writer.
type DIType struct {
	Kind       DIKind
	Name       string
	SizeBits   uint64
	AlignBits  uint64
	Encoding   int
	Elem       *DIType
	ArrLen     uint32
	Members    []DIMember
	Line       uint32
}

// DIMember is one field of a DIStruct, carrying its bit offset.
type DIMember struct {
	Name       string
	Type       *DIType
	OffsetBits uint64
	Line       uint32
}

// DISubprogram is the debug info for one function, anchoring its lexical
// scopes.
type DISubprogram struct {
	Name  string
	Line  uint32
	Scope *DILexicalBlock
}

// DILexicalBlock mirrors create_lexical_block: every
// lexical child Ctx gets one, anchored at the child's start position.
type DILexicalBlock struct {
	Parent *DILexicalBlock
	Start  source.Position
}

// DebugInfo accumulates a compilation unit's debug info tree: one
// DISubprogram per emitted function plus the file/dir identifying the
// compile unit.
type DebugInfo struct {
	File        string
	Dir         string
	Producer    string
	Subprograms []*DISubprogram
	finalized   bool
}

// NewDebugInfo starts a fresh debug info unit for one source file.
func NewDebugInfo(file, dir string) *DebugInfo {
	return &DebugInfo{File: file, Dir: dir, Producer: "plc frontend"}
}

// NewSubprogram registers a function's debug info and returns its root
// lexical scope.
func (d *DebugInfo) NewSubprogram(name string, line uint32) *DISubprogram {
	sp := &DISubprogram{Name: name, Line: line}
	d.Subprograms = append(d.Subprograms, sp)
	return sp
}

// Finalize marks the debug info unit complete. After this, no further
// subprograms may be added.
func (d *DebugInfo) Finalize() { d.finalized = true }
