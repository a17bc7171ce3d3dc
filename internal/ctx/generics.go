package ctx

import (
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// lookupGenericType walks the generic-type scope chain: unlike
// GetType, this never touches the module's type table, only the
// enclosing generic scope pushed by a call's stack discipline.
func (c *Ctx) lookupGenericType(name string) (*pltype.Generic, bool) {
	if g, ok := c.GenericTypes[name]; ok {
		return g, true
	}
	if c.Father != nil {
		return c.Father.lookupGenericType(name)
	}
	return nil, false
}

// MoveGenericTypes snapshots and clears the current generic scope,
// returning the snapshot so a call emission can restore it afterwards
func (c *Ctx) MoveGenericTypes() map[string]*pltype.Generic {
	saved := c.GenericTypes
	c.GenericTypes = map[string]*pltype.Generic{}
	return saved
}

// AddGenericType declares a new generic type parameter in the current
// scope.
func (c *Ctx) AddGenericType(name string, g *pltype.Generic, rng source.Range) *diagnostics.Diagnostic {
	if _, exists := c.GenericTypes[name]; exists {
		return c.NewErr(rng, diagnostics.RedefineType, name)
	}
	c.GenericTypes[name] = g
	return nil
}

// ResetGenericTypes restores a previously saved generic scope.
func (c *Ctx) ResetGenericTypes(saved map[string]*pltype.Generic) {
	c.GenericTypes = saved
}
