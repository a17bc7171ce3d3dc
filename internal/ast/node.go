// Package ast defines the syntax tree node shapes the emitter
// (internal/emit) walks: nodes carry only syntax and a source range,
// and all emission logic lives in internal/emit.
package ast

import "github.com/pivot-lang/plc/internal/source"

// Node is any syntax tree node. Behavior is added by type-switching in
// internal/emit rather than by a method on this interface, so this package
// stays free of any dependency on ctx/irbuild.
type Node interface {
	Range() source.Range
}

// base carries the one field every concrete node embeds.
type base struct {
	Rng source.Range
}

func (b base) Range() source.Range { return b.Rng }

// Doc is a contiguous run of `//` comments immediately preceding a
// definition, attached as documentation.
type Doc struct {
	Text string
}
