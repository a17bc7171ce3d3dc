// Package pltype implements PLType, the closed sum of types the
// analyzer and IR driver operate over: primitive, void, pointer, array,
// struct, trait, function and generic. Equality is structural, and
// path-sensitive for named types.
package pltype

import "github.com/pivot-lang/plc/internal/source"

// Kind discriminates the PLType sum.
type Kind int

const (
	KindPrimitive Kind = iota
	KindVoid
	KindPointer
	KindArr
	KindStruct
	KindTrait
	KindFn
	KindGeneric
)

// PriKind enumerates primitive scalar kinds.
type PriKind int

const (
	I64 PriKind = iota
	F64
	Bool
	Char
)

// Name returns the primitive's source-level spelling.
func (p PriKind) Name() string {
	switch p {
	case I64:
		return "i64"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Char:
		return "char"
	default:
		return "?"
	}
}

// BitWidth returns the canonical storage width used by get_basic_type.
// BOOL is 8 bits in storage and 1 bit in truth; this
// module commits to the recommended resolution: 8-bit storage everywhere
// a BOOL occupies memory, 1-bit truth only at comparison sites.
func (p PriKind) BitWidth() int {
	switch p {
	case I64, F64:
		return 64
	case Bool:
		return 8
	case Char:
		return 8
	default:
		return 0
	}
}

// TruthWidth is the bit width BOOL occupies when used purely as a
// condition (branch operands), distinct from its storage width.
const TruthWidth = 1

// PLType is the interface every member of the sum implements. Primitive,
// void, pointer and array types carry no source range and no refs bucket
type PLType interface {
	Kind() Kind
	Name() string
	Range() (source.Range, bool)
	Refs() *source.RefBucket
}

// Primitive is PRIMITIVE(kind).
type Primitive struct{ PKind PriKind }

func (p *Primitive) Kind() Kind                      { return KindPrimitive }
func (p *Primitive) Name() string                    { return p.PKind.Name() }
func (p *Primitive) Range() (source.Range, bool)      { return source.Range{}, false }
func (p *Primitive) Refs() *source.RefBucket          { return nil }

// Void is the VOID type, legal only as a return type.
type Void struct{}

func (Void) Kind() Kind                 { return KindVoid }
func (Void) Name() string               { return "void" }
func (Void) Range() (source.Range, bool) { return source.Range{}, false }
func (Void) Refs() *source.RefBucket     { return nil }

// Pointer is POINTER(element); equality is structural over Elem.
type Pointer struct{ Elem PLType }

func (p *Pointer) Kind() Kind                 { return KindPointer }
func (p *Pointer) Name() string               { return "*" + p.Elem.Name() }
func (p *Pointer) Range() (source.Range, bool) { return source.Range{}, false }
func (p *Pointer) Refs() *source.RefBucket     { return nil }

// Arr is ARR{element, size}, a fixed-size array.
type Arr struct {
	Elem PLType
	Size uint32
}

func (a *Arr) Kind() Kind                 { return KindArr }
func (a *Arr) Name() string               { return a.Elem.Name() + "[]" }
func (a *Arr) Range() (source.Range, bool) { return source.Range{}, false }
func (a *Arr) Refs() *source.RefBucket     { return nil }

// Field is a named, indexed member of a STRUCT.
type Field struct {
	Index int
	Type  PLType
	Name  string
	Range source.Range
	Refs  *source.RefBucket
	Doc   string
}

// Struct is STRUCT{name, path, ordered_fields, fields, methods, ...}.
type Struct struct {
	NameField     string
	Path          string
	OrderedFields []*Field
	FieldsByName  map[string]*Field
	Methods       map[string]*Fn
	RangeField    source.Range
	RefsField     *source.RefBucket
	Doc           string
}

func (s *Struct) Kind() Kind                 { return KindStruct }
func (s *Struct) Name() string               { return s.NameField }
func (s *Struct) Range() (source.Range, bool) { return s.RangeField, true }
func (s *Struct) Refs() *source.RefBucket     { return s.RefsField }

// FullName is the owner-qualified name used as the IR-level struct type
// name, "<path>..<name>", matching pivot-lang's get_st_full_name.
func (s *Struct) FullName() string { return s.Path + ".." + s.NameField }

// Field looks up a field by unqualified name.
func (s *Struct) Field(name string) (*Field, bool) {
	f, ok := s.FieldsByName[name]
	return f, ok
}

// Method looks up a method by unqualified name.
func (s *Struct) Method(name string) (*Fn, bool) {
	f, ok := s.Methods[name]
	return f, ok
}

// Trait is TRAIT{name, path, methods}: signatures only, no bodies.
type Trait struct {
	NameField  string
	Path       string
	Methods    map[string]*Fn
	RangeField source.Range
	RefsField  *source.RefBucket
}

func (t *Trait) Kind() Kind                 { return KindTrait }
func (t *Trait) Name() string               { return t.NameField }
func (t *Trait) Range() (source.Range, bool) { return t.RangeField, true }
func (t *Trait) Refs() *source.RefBucket     { return t.RefsField }

// TypeNode is an unresolved, syntactic type reference as written by the
// parser (a name plus pointer/array wrapping), resolved against a scope
// via Ctx.GetType before it becomes a concrete PLType. FN stores its
// parameter/return types this way until first use.
type TypeNode struct {
	Name    string
	Pointer int    // number of leading '*' wrappers
	ArrSize *uint32 // non-nil for "[N]T" array types
	Range   source.Range
}

// Fn is FN{name, llvmname, params, generics, ...}.
type Fn struct {
	NameField   string
	LLVMName    string
	Path        string // defining file's path, where RangeField points
	ParamTypes  []TypeNode
	ParamNames  []string
	RetType     TypeNode
	GenericMap  *GenericMap
	GenericBound map[string]string // type-param name -> required trait name
	MethodOf    string            // owning struct's full name, "" if free function
	IsMethod    bool
	Doc         string
	RangeField  source.Range
	RefsField   *source.RefBucket
	Node        any // the AST function-definition node, for generic re-entry
}

func (f *Fn) Kind() Kind                 { return KindFn }
func (f *Fn) Name() string               { return f.NameField }
func (f *Fn) Range() (source.Range, bool) { return f.RangeField, true }
func (f *Fn) Refs() *source.RefBucket     { return f.RefsField }

// IsGeneric reports whether the function has any generic type parameters.
func (f *Fn) IsGeneric() bool { return f.GenericMap != nil && f.GenericMap.Len() > 0 }

// Generic is GENERIC{name, cur_type, placeholder}; cur_type is nil while
// the parameter is unresolved.
type Generic struct {
	NameField string
	CurType   PLType // nil until resolved
}

func (g *Generic) Kind() Kind                 { return KindGeneric }
func (g *Generic) Name() string               { return g.NameField }
func (g *Generic) Range() (source.Range, bool) { return source.Range{}, false }
func (g *Generic) Refs() *source.RefBucket     { return nil }

// Resolved reports whether CurType has been bound.
func (g *Generic) Resolved() bool { return g.CurType != nil }
