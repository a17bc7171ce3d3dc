package irbuild

import "github.com/pivot-lang/plc/internal/pltype"

// StructCache memoizes the opaque named struct type created for each
// "<path>..<name>", the way pivot-lang's STType::struct_type checks
// ctx.module.get_struct_type before creating a new opaque type.
type StructCache struct {
	byFullName map[string]*BasicType
}

// NewStructCache returns an empty cache.
func NewStructCache() *StructCache { return &StructCache{byFullName: map[string]*BasicType{}} }

func priWidth(k pltype.PriKind) int { return k.BitWidth() }

// LowerType computes get_basic_type(ctx) for t: canonical bit
// widths for primitives, pointer-to-element for pointers, element*size
// for arrays, an opaque-then-populated named struct for structs, a
// function-pointer type for FN, and the placeholder type for an
// unresolved generic. VOID lowers to the KVoid marker type rather than a
// value type (it is only legal as a return type, handled by callers via
// Fn.RetType/IsVoid).
func LowerType(t pltype.PLType, cache *StructCache) BasicType {
	switch t.Kind() {
	case pltype.KindPrimitive:
		p := t.(*pltype.Primitive)
		if p.PKind == pltype.F64 {
			return BasicType{Kind: KFloat, Width: 64}
		}
		return BasicType{Kind: KInt, Width: priWidth(p.PKind)}
	case pltype.KindVoid:
		return BasicType{Kind: KVoid}
	case pltype.KindPointer:
		p := t.(*pltype.Pointer)
		elem := LowerType(p.Elem, cache)
		return BasicType{Kind: KPointer, Elem: &elem}
	case pltype.KindArr:
		a := t.(*pltype.Arr)
		elem := LowerType(a.Elem, cache)
		return BasicType{Kind: KArray, Elem: &elem, ArrLen: a.Size}
	case pltype.KindStruct:
		s := t.(*pltype.Struct)
		full := s.FullName()
		if cached, ok := cache.byFullName[full]; ok {
			return *cached
		}
		bt := BasicType{Kind: KStruct, StructName: full}
		cache.byFullName[full] = &bt // opaque placeholder breaks self-recursion
		fields := make([]BasicType, len(s.OrderedFields))
		for i, f := range s.OrderedFields {
			fields[i] = LowerType(f.Type, cache)
		}
		bt.Params = fields
		cache.byFullName[full] = &bt
		return bt
	case pltype.KindFn:
		f := t.(*pltype.Fn)
		// Resolved param/ret types are looked up by the caller before
		// lowering a function value type; here we only need arity-shaped
		// placeholders, since a first-class function value is always a
		// pointer to an already-declared Function.
		return BasicType{Kind: KFunctionPtr, Params: make([]BasicType, len(f.ParamTypes))}
	case pltype.KindGeneric:
		g := t.(*pltype.Generic)
		if g.Resolved() {
			return LowerType(g.CurType, cache)
		}
		// Placeholder type: an opaque i8 until resolved.
		return BasicType{Kind: KInt, Width: 8}
	case pltype.KindTrait:
		// Traits have no runtime representation of their own; values are
		// always accessed through the implementing struct.
		return BasicType{Kind: KPointer, Elem: &BasicType{Kind: KInt, Width: 8}}
	default:
		return BasicType{Kind: KVoid}
	}
}

// DICache memoizes struct DIType trees the same way StructCache does for
// BasicType, avoiding duplicate DWARF struct definitions.
type DICache struct {
	byFullName map[string]*DIType
}

// NewDICache returns an empty cache.
func NewDICache() *DICache { return &DICache{byFullName: map[string]*DIType{}} }

// LowerDIType computes the debug-info type for t, threading a running
// bit offset through a struct's ordered fields.
func LowerDIType(t pltype.PLType, td TargetData, sc *StructCache, dc *DICache) *DIType {
	switch t.Kind() {
	case pltype.KindPrimitive:
		p := t.(*pltype.Primitive)
		bt := LowerType(t, sc)
		enc := dwAteSigned
		if p.PKind == pltype.F64 {
			enc = dwAteFloat
		} else if p.PKind == pltype.Bool {
			enc = dwAteBoolean
		}
		return &DIType{Kind: DIBasic, Name: p.Name(), SizeBits: td.BitSize(bt), Encoding: enc}
	case pltype.KindVoid:
		return nil
	case pltype.KindPointer:
		p := t.(*pltype.Pointer)
		elemDI := LowerDIType(p.Elem, td, sc, dc)
		if elemDI == nil {
			return nil
		}
		bt := LowerType(t, sc)
		return &DIType{Kind: DIPointer, SizeBits: td.BitSize(bt), AlignBits: td.PreferredAlignment(bt), Elem: elemDI}
	case pltype.KindArr:
		a := t.(*pltype.Arr)
		elemDI := LowerDIType(a.Elem, td, sc, dc)
		if elemDI == nil {
			return nil
		}
		elemBT := LowerType(a.Elem, sc)
		return &DIType{
			Kind:      DIArray,
			SizeBits:  td.BitSize(elemBT) * uint64(a.Size),
			AlignBits: td.PreferredAlignment(elemBT),
			Elem:      elemDI,
			ArrLen:    a.Size,
		}
	case pltype.KindStruct:
		s := t.(*pltype.Struct)
		full := s.FullName()
		if cached, ok := dc.byFullName[full]; ok {
			return cached
		}
		bt := LowerType(t, sc)
		di := &DIType{Kind: DIStruct, Name: s.NameField, SizeBits: td.BitSize(bt), AlignBits: td.ABIAlignment(bt)}
		dc.byFullName[full] = di
		var offset uint64
		for i, f := range s.OrderedFields {
			mdi := LowerDIType(f.Type, td, sc, dc)
			if mdi == nil {
				continue
			}
			di.Members = append(di.Members, DIMember{
				Name:       f.Name,
				Type:       mdi,
				OffsetBits: offset,
				Line:       uint32(i),
			})
			offset += mdi.SizeBits
		}
		return di
	case pltype.KindFn, pltype.KindTrait:
		return nil
	case pltype.KindGeneric:
		g := t.(*pltype.Generic)
		if g.Resolved() {
			return LowerDIType(g.CurType, td, sc, dc)
		}
		return nil
	default:
		return nil
	}
}
