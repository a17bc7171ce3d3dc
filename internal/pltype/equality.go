package pltype

// Eq is structural equality: fails if either side is an unresolved
// generic that cannot be unified. Two structs/traits/functions are equal
// iff they share the same owning path and name.
func Eq(a, b PLType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if g, ok := a.(*Generic); ok {
		return eqGeneric(g, b)
	}
	if g, ok := b.(*Generic); ok {
		return eqGeneric(g, a)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Primitive:
		return av.PKind == b.(*Primitive).PKind
	case Void:
		return true
	case *Pointer:
		return Eq(av.Elem, b.(*Pointer).Elem)
	case *Arr:
		bv := b.(*Arr)
		return av.Size == bv.Size && Eq(av.Elem, bv.Elem)
	case *Struct:
		bv := b.(*Struct)
		return av.Path == bv.Path && av.NameField == bv.NameField
	case *Trait:
		bv := b.(*Trait)
		return av.Path == bv.Path && av.NameField == bv.NameField
	case *Fn:
		bv := b.(*Fn)
		return av.NameField == bv.NameField && av.MethodOf == bv.MethodOf
	default:
		return false
	}
}

func eqGeneric(g *Generic, other PLType) bool {
	if g.Resolved() {
		return Eq(g.CurType, other)
	}
	// An unresolved generic only equals another identical, still
	// unresolved generic (used when comparing two uninstantiated
	// signatures, e.g. METHOD_NOT_IN_TRAIT checks).
	if og, ok := other.(*Generic); ok {
		return !og.Resolved() && g.NameField == og.NameField
	}
	return false
}

// EqOrInfer is eq_or_infer(ctx, expected, actual): if expected is
// an unresolved GENERIC, binds it to actual and succeeds; otherwise falls
// back to structural equality. This is the single mechanism by which
// generic call arguments get their type parameters inferred.
func EqOrInfer(expected, actual PLType) bool {
	if g, ok := expected.(*Generic); ok && !g.Resolved() {
		g.CurType = actual
		return true
	}
	return Eq(expected, actual)
}

// AutoDeref repeatedly strips POINTER(.) until a non-pointer type is
// reached, returning the dereferenced type and the number of pointer
// layers removed: AutoDeref(POINTER^k(T)) == T for any k >= 0.
func AutoDeref(t PLType) (PLType, int) {
	depth := 0
	for {
		p, ok := t.(*Pointer)
		if !ok {
			return t, depth
		}
		t = p.Elem
		depth++
	}
}
