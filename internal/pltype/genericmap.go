package pltype

// GenericMap is the ordered name -> (optionally bound) PLType mapping a
// generic FN carries. Order matters: explicit
// instantiation args bind positionally.
type GenericMap struct {
	order []string
	byName map[string]*Generic
}

// NewGenericMap returns an empty, ordered generic map.
func NewGenericMap() *GenericMap {
	return &GenericMap{byName: map[string]*Generic{}}
}

// Len reports the number of generic parameters.
func (m *GenericMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Declare adds a new, unresolved generic parameter at the end of the
// order. It is an error to call this twice with the same name; callers
// are expected to have already checked for duplicates (mirrors add_type's
// REDEFINE_TYPE check at the call site, not inside the map itself).
func (m *GenericMap) Declare(name string) *Generic {
	g := &Generic{NameField: name}
	m.order = append(m.order, name)
	m.byName[name] = g
	return g
}

// Get looks up a generic parameter by name.
func (m *GenericMap) Get(name string) (*Generic, bool) {
	if m == nil {
		return nil, false
	}
	g, ok := m.byName[name]
	return g, ok
}

// Names returns the generic parameter names in declaration order.
func (m *GenericMap) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string{}, m.order...)
}

// AllResolved reports whether every generic parameter has been bound.
func (m *GenericMap) AllResolved() bool {
	if m == nil {
		return true
	}
	for _, n := range m.order {
		if !m.byName[n].Resolved() {
			return false
		}
	}
	return true
}

// ResolvedMap returns a name -> concrete PLType snapshot, usable as an
// instantiation key.
// Returns false if any parameter is still unresolved.
func (m *GenericMap) ResolvedMap() (map[string]PLType, bool) {
	out := map[string]PLType{}
	if m == nil {
		return out, true
	}
	for _, n := range m.order {
		g := m.byName[n]
		if !g.Resolved() {
			return nil, false
		}
		out[n] = g.CurType
	}
	return out, true
}

// InstantiationKey renders a stable string key from a resolved generic
// map, used to detect "has this instantiation been emitted?".
func InstantiationKey(resolved map[string]PLType, order []string) string {
	key := ""
	for _, n := range order {
		if key != "" {
			key += ","
		}
		key += n + "=" + resolved[n].Name()
	}
	return key
}

// Clone produces a deep-enough copy for save/restore during call emission
//: each Generic's current
// binding is preserved but the two maps no longer alias each other's
// future Declare calls.
func (m *GenericMap) Clone() *GenericMap {
	if m == nil {
		return nil
	}
	out := NewGenericMap()
	for _, n := range m.order {
		g := m.byName[n]
		out.order = append(out.order, n)
		out.byName[n] = &Generic{NameField: g.NameField, CurType: g.CurType}
	}
	return out
}
