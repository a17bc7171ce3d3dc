// Package module implements Mod: the per-file symbol and type table,
// submodules, global variables, and every LSP artifact bucket an
// emission accumulates.
package module

import (
	"sort"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/pltype"
	"github.com/pivot-lang/plc/internal/source"
)

// GlobalVar is one module-level variable or const.
type GlobalVar struct {
	Type    pltype.PLType
	Range   source.Range
	Refs    *source.RefBucket
	IsConst bool
}

// rangeKeyed pairs a payload with the range it was published at, so
// buckets can be queried by "tightest range containing p".
type rangeKeyed[T any] struct {
	Range source.Range
	Value T
}

// Mod is the per-file analysis artifact. It is created once per
// `emit_file` and never mutated after that call returns, except through
// NewChild, which snapshots submods by reference without carrying edits
// back to the parent.
type Mod struct {
	Name string
	Path string

	Types       map[string]pltype.PLType
	Submods     map[string]*Mod
	GlobalTable map[string]*GlobalVar

	Diags *diagnostics.Bag

	refsBucket         []rangeKeyed[*source.RefBucket]
	defs               []rangeKeyed[artifacts.GotoDef]
	hovers             []rangeKeyed[artifacts.Hover]
	sigHelps           []rangeKeyed[artifacts.SignatureHelp]
	hints              []artifacts.InlayHint
	docSymbols         []artifacts.DocSymbol
	completions        []artifacts.CompletionItem
	SemanticTokens     *artifacts.SemanticTokensBuilder
}

// New creates an empty module rooted at path with short name name.
func New(name, path string) *Mod {
	m := &Mod{
		Name:           name,
		Path:           path,
		Types:          map[string]pltype.PLType{},
		Submods:        map[string]*Mod{},
		GlobalTable:    map[string]*GlobalVar{},
		Diags:          &diagnostics.Bag{},
		SemanticTokens: &artifacts.SemanticTokensBuilder{},
	}
	return m
}

// NewChild snapshots m's submodule table by reference into a fresh Mod
// with its own type/global tables, mirroring Mod::new_child: edits inside
// a lexical child never leak back into the parent's own types/globals,
// but sibling submodules remain shared.
func (m *Mod) NewChild() *Mod {
	child := New(m.Name, m.Path)
	for k, v := range m.Submods {
		child.Submods[k] = v
	}
	child.Diags = m.Diags
	child.SemanticTokens = m.SemanticTokens
	return child
}

// GetGlobalSymbol looks up a module-level variable or const by name.
func (m *Mod) GetGlobalSymbol(name string) (*GlobalVar, bool) {
	g, ok := m.GlobalTable[name]
	return g, ok
}

// AddGlobalSymbol registers a module-level variable or const. Returns
// false if name is already bound (caller raises REDECLARATION).
func (m *Mod) AddGlobalSymbol(name string, t pltype.PLType, rng source.Range, isConst bool) (*source.RefBucket, bool) {
	if _, exists := m.GlobalTable[name]; exists {
		return nil, false
	}
	refs := source.NewRefBucket()
	m.GlobalTable[name] = &GlobalVar{Type: t, Range: rng, Refs: refs, IsConst: isConst}
	return refs, true
}

// GetType looks up a named type, falling back to the virtually-present
// primitive/void types.
func (m *Mod) GetType(name string) (pltype.PLType, bool) {
	if t, ok := m.Types[name]; ok {
		return t, true
	}
	if p, ok := primitiveByName(name); ok {
		return p, true
	}
	if name == "void" {
		return pltype.Void{}, true
	}
	return nil, false
}

func primitiveByName(name string) (pltype.PLType, bool) {
	switch name {
	case "i64":
		return &pltype.Primitive{PKind: pltype.I64}, true
	case "f64":
		return &pltype.Primitive{PKind: pltype.F64}, true
	case "bool":
		return &pltype.Primitive{PKind: pltype.Bool}, true
	case "char":
		return &pltype.Primitive{PKind: pltype.Char}, true
	}
	return nil, false
}

// AddType registers a named type. Returns false if already present
// (caller raises REDEFINE_TYPE).
func (m *Mod) AddType(name string, t pltype.PLType) bool {
	if _, exists := m.Types[name]; exists {
		return false
	}
	m.Types[name] = t
	return true
}

// ReplaceType overwrites a type, used by the struct pre-declaration pass
// to promote an opaque forward-declared struct to its fully-resolved form
func (m *Mod) ReplaceType(name string, t pltype.PLType) { m.Types[name] = t }

// FullName is the owner-qualified IR-level name, "<path>..<name>", with
// "main" kept bare (pivot-lang's Mod::get_full_name).
func (m *Mod) FullName(name string) string {
	if name == "main" {
		return name
	}
	return m.Path + ".." + name
}

// ShortName strips the owner-qualification a FullName added.
func (m *Mod) ShortName(name string) string {
	if name == "main" {
		return name
	}
	for i := 0; i+1 < len(name); i++ {
		if name[i] == '.' && name[i+1] == '.' {
			return name[i+2:]
		}
	}
	return name
}

// PublishRef records a use-site Location on bucket and registers bucket
// under rng, so RefsAt returns it for any position inside rng.
func (m *Mod) PublishRef(bucket *source.RefBucket, rng source.Range, file string) {
	bucket.Push(source.Location{File: file, Range: rng})
	m.refsBucket = append(m.refsBucket, rangeKeyed[*source.RefBucket]{Range: rng, Value: bucket})
}

// PublishDef records a go-to-definition mapping at rng.
func (m *Mod) PublishDef(rng source.Range, dest source.Location) {
	m.defs = append(m.defs, rangeKeyed[artifacts.GotoDef]{Range: rng, Value: artifacts.GotoDef{Range: rng, Dest: dest}})
}

// PublishHover records a hover payload at rng.
func (m *Mod) PublishHover(rng source.Range, contents string) {
	m.hovers = append(m.hovers, rangeKeyed[artifacts.Hover]{Range: rng, Value: artifacts.Hover{Range: rng, Contents: contents}})
}

// PublishSignatureHelp records a signature-help payload at rng.
func (m *Mod) PublishSignatureHelp(rng source.Range, help artifacts.SignatureHelp) {
	m.sigHelps = append(m.sigHelps, rangeKeyed[artifacts.SignatureHelp]{Range: rng, Value: help})
}

// PublishHint appends an inlay hint.
func (m *Mod) PublishHint(h artifacts.InlayHint) { m.hints = append(m.hints, h) }

// PublishDocSymbol appends one outline entry.
func (m *Mod) PublishDocSymbol(s artifacts.DocSymbol) { m.docSymbols = append(m.docSymbols, s) }

// PublishCompletions appends a batch of completion items.
func (m *Mod) PublishCompletions(items []artifacts.CompletionItem) {
	m.completions = append(m.completions, items...)
}

// Refs returns every (range, bucket) pair recorded so far.
func (m *Mod) Refs() []struct {
	Range source.Range
	Bucket *source.RefBucket
} {
	out := make([]struct {
		Range  source.Range
		Bucket *source.RefBucket
	}, len(m.refsBucket))
	for i, r := range m.refsBucket {
		out[i] = struct {
			Range  source.Range
			Bucket *source.RefBucket
		}{r.Range, r.Value}
	}
	return out
}

// Defs returns every published go-to-definition entry, sorted by range.
func (m *Mod) Defs() []artifacts.GotoDef {
	out := make([]artifacts.GotoDef, len(m.defs))
	for i, d := range m.defs {
		out[i] = d.Value
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Less(out[j].Range) })
	return out
}

// Hovers returns every published hover, sorted by range.
func (m *Mod) Hovers() []artifacts.Hover {
	out := make([]artifacts.Hover, len(m.hovers))
	for i, h := range m.hovers {
		out[i] = h.Value
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Less(out[j].Range) })
	return out
}

// SignatureHelps returns every published signature-help entry.
func (m *Mod) SignatureHelps() []artifacts.SignatureHelp {
	out := make([]artifacts.SignatureHelp, len(m.sigHelps))
	for i, s := range m.sigHelps {
		out[i] = s.Value
	}
	return out
}

// Hints returns every inlay hint in publication order.
func (m *Mod) Hints() []artifacts.InlayHint { return m.hints }

// DocSymbols returns every outline entry in publication order.
func (m *Mod) DocSymbols() []artifacts.DocSymbol { return m.docSymbols }

// Completions returns every published completion item.
func (m *Mod) Completions() []artifacts.CompletionItem { return m.completions }

func findAt[T any](entries []rangeKeyed[T], pos source.Position) (T, bool) {
	var best *rangeKeyed[T]
	for i := range entries {
		e := &entries[i]
		if !e.Range.Contains(pos) {
			continue
		}
		if best == nil || best.Range.Start.Less(e.Range.Start) {
			best = e
		}
	}
	if best == nil {
		var zero T
		return zero, false
	}
	return best.Value, true
}

// HoverAt returns the tightest hover containing pos.
func (m *Mod) HoverAt(pos source.Position) (artifacts.Hover, bool) { return findAt(m.hovers, pos) }

// DefAt returns the tightest go-to-definition entry containing pos.
func (m *Mod) DefAt(pos source.Position) (artifacts.GotoDef, bool) { return findAt(m.defs, pos) }

// SignatureHelpAt returns the tightest signature-help entry containing pos.
func (m *Mod) SignatureHelpAt(pos source.Position) (artifacts.SignatureHelp, bool) {
	return findAt(m.sigHelps, pos)
}

// RefsAt returns the reference bucket whose publication range contains
// pos, the mechanism "find references" uses.
func (m *Mod) RefsAt(pos source.Position) (*source.RefBucket, bool) {
	return findAt(m.refsBucket, pos)
}
