// Package irbuild implements the capability interface the emitter uses
// to produce code: a real, Go-native IR module builder and a no-op
// builder installed for pure language-service queries. Neither talks to
// an actual LLVM; real backend bindings live outside this module.
package irbuild

import (
	"fmt"
	"strings"
)

// BasicKind discriminates the backend type representation mirrored from
// PLType via LowerType.
type BasicKind int

const (
	KInt BasicKind = iota
	KFloat
	KPointer
	KArray
	KStruct
	KFunctionPtr
	KVoid
)

// BasicType is the backend-level type produced by lowering a PLType.
type BasicType struct {
	Kind       BasicKind
	Width      int // bit width for Int/Float
	Elem       *BasicType
	ArrLen     uint32
	StructName string
	Params     []BasicType
	Ret        *BasicType
}

// String renders an LLVM-flavored type name for textual IR output.
func (t BasicType) String() string {
	switch t.Kind {
	case KInt:
		return fmt.Sprintf("i%d", t.Width)
	case KFloat:
		if t.Width == 32 {
			return "float"
		}
		return "double"
	case KPointer:
		return "ptr"
	case KArray:
		return fmt.Sprintf("[%d x %s]", t.ArrLen, t.Elem.String())
	case KStruct:
		return "%" + t.StructName
	case KFunctionPtr:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		ret := "void"
		if t.Ret != nil {
			ret = t.Ret.String()
		}
		return fmt.Sprintf("%s (%s)*", ret, strings.Join(params, ", "))
	case KVoid:
		return "void"
	default:
		return "?"
	}
}

// IsPointerBearing reports whether values of this type might hold a
// pointer and therefore need GC-root bookkeeping on allocation.
func (t BasicType) IsPointerBearing() bool {
	switch t.Kind {
	case KPointer, KFunctionPtr:
		return true
	case KArray:
		return t.Elem.IsPointerBearing()
	case KStruct:
		return true // conservative: structs may contain pointer fields
	default:
		return false
	}
}

// Predicate enumerates the comparison operators build_compare accepts.
type Predicate int

const (
	PredEQ Predicate = iota
	PredNE
	PredLT
	PredLE
	PredGT
	PredGE
)

func (p Predicate) llvmIntOp() string {
	switch p {
	case PredEQ:
		return "eq"
	case PredNE:
		return "ne"
	case PredLT:
		return "slt"
	case PredLE:
		return "sle"
	case PredGT:
		return "sgt"
	default:
		return "sge"
	}
}

func (p Predicate) llvmFloatOp() string {
	switch p {
	case PredEQ:
		return "oeq"
	case PredNE:
		return "one"
	case PredLT:
		return "olt"
	case PredLE:
		return "ole"
	case PredGT:
		return "ogt"
	default:
		return "oge"
	}
}

// TargetData computes size/alignment facts the way a real target-machine
// data layout would, kept deliberately
// simple: every scalar is naturally aligned, structs are non-packed and
// pointers are 64-bit, matching a generic LP64 target.
type TargetData struct{}

// BitSize returns a type's size in bits.
func (TargetData) BitSize(t BasicType) uint64 {
	switch t.Kind {
	case KInt, KFloat:
		return uint64(t.Width)
	case KPointer, KFunctionPtr:
		return 64
	case KArray:
		return TargetData{}.BitSize(*t.Elem) * uint64(t.ArrLen)
	case KStruct:
		var total uint64
		for _, f := range t.Params {
			total += align(TargetData{}.BitSize(f), TargetData{}.PreferredAlignment(f))
		}
		return total
	default:
		return 0
	}
}

// PreferredAlignment returns a type's alignment in bits.
func (TargetData) PreferredAlignment(t BasicType) uint64 {
	switch t.Kind {
	case KInt, KFloat:
		return uint64(t.Width)
	case KPointer, KFunctionPtr:
		return 64
	case KArray:
		return TargetData{}.PreferredAlignment(*t.Elem)
	case KStruct:
		var max uint64 = 8
		for _, f := range t.Params {
			if a := (TargetData{}).PreferredAlignment(f); a > max {
				max = a
			}
		}
		return max
	default:
		return 8
	}
}

// ABIAlignment mirrors PreferredAlignment for this simplified layout.
func (td TargetData) ABIAlignment(t BasicType) uint64 { return td.PreferredAlignment(t) }

func align(offset, alignment uint64) uint64 {
	if alignment == 0 {
		return offset
	}
	rem := offset % alignment
	if rem == 0 {
		return offset
	}
	return offset + (alignment - rem)
}
