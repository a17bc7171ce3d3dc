package ctx

import (
	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/source"
)

// SendIfGotoDef records a go-to-definition mapping from useRng (the
// identifier occurrence being resolved) to defRng inside file. AddSymbol/AddType call this with useRng==defRng
// since the definition site is its own target.
func (c *Ctx) SendIfGotoDef(useRng, defRng source.Range, file string) {
	c.ArtifactMod().PublishDef(useRng, source.Location{File: file, Range: defRng})
}

// SetIfRefs registers refs as the lookup bucket for rng and records the
// definition occurrence itself as the bucket's first entry, so "find
// references" issued from the declaring token also returns every use
func (c *Ctx) SetIfRefs(refs *source.RefBucket, rng source.Range) {
	c.ArtifactMod().PublishRef(refs, rng, c.File)
}

// SaveIfHover records hover text for rng.
func (c *Ctx) SaveIfHover(rng source.Range, contents string) {
	c.ArtifactMod().PublishHover(rng, contents)
}

// SaveIfCommentDocHover is like SaveIfHover but folds a preceding doc
// comment into the rendered hover text, mirroring pivot-lang's
// save_if_comment_doc_hover which appends /// lines above a declaration.
func (c *Ctx) SaveIfCommentDocHover(rng source.Range, signature, doc string) {
	contents := signature
	if doc != "" {
		contents = doc + "\n\n" + signature
	}
	c.ArtifactMod().PublishHover(rng, contents)
}

// PushSemanticToken records one token/kind pair for semantic highlighting,
// skipped entirely when NeedHighlight is false.
func (c *Ctx) PushSemanticToken(rng source.Range, kind artifacts.SemanticTokenKind) {
	if !c.NeedHighlight {
		return
	}
	c.Mod.SemanticTokens.Push(rng, kind, 0)
}

// PushTypeHint records an inferred-type inlay hint positioned right after
// rng's end.
func (c *Ctx) PushTypeHint(rng source.Range, typeStr string) {
	if !c.NeedHighlight {
		return
	}
	c.ArtifactMod().PublishHint(artifacts.InlayHint{
		Pos:   rng.End,
		Kind:  artifacts.InlayType,
		Label: ": " + typeStr,
	})
}

// PushParamHint records a call-argument name inlay hint positioned
// right before argRng's start, the `f(x: 1)`-style parameter name
// annotation for an unnamed call-site argument.
func (c *Ctx) PushParamHint(argRng source.Range, paramName string) {
	if !c.NeedHighlight {
		return
	}
	c.ArtifactMod().PublishHint(artifacts.InlayHint{
		Pos:   argRng.Start,
		Kind:  artifacts.InlayParam,
		Label: paramName + ": ",
	})
}

// PushDocSymbol records one outline entry.
func (c *Ctx) PushDocSymbol(s artifacts.DocSymbol) {
	c.ArtifactMod().PublishDocSymbol(s)
}

// IfCompletion reports whether the cursor sits inside rng under the
// Completion action, the condition under which a completion set computed
// for rng should actually be published.
func (c *Ctx) IfCompletion(rng source.Range) bool {
	if c.LSPParams == nil || c.Action != Completion {
		return false
	}
	return rng.Contains(c.LSPParams.Pos)
}

// PushCompletions publishes items when IfCompletion(rng) holds.
func (c *Ctx) PushCompletions(rng source.Range, items []artifacts.CompletionItem) {
	if !c.IfCompletion(rng) {
		return
	}
	c.ArtifactMod().PublishCompletions(items)
}

// KeywordCompletions builds scope-sensitive keyword completions: top-level
// keywords only at file scope, statement keywords only inside a function
// body, break/continue only added when inLoop holds.
func KeywordCompletions(topLevel, inLoop bool) []artifacts.CompletionItem {
	var words []string
	if topLevel {
		words = []string{"fn", "struct", "const", "use", "impl"}
	} else {
		words = []string{"let", "if", "while", "for", "return"}
		if inLoop {
			words = append(words, "break", "continue")
		}
	}
	items := make([]artifacts.CompletionItem, 0, len(words))
	for _, w := range words {
		items = append(items, artifacts.CompletionItem{Label: w, Kind: artifacts.CompletionKeyword})
	}
	return items
}

// MemberCompletions builds completion items for a struct's fields and
// methods, used after `.` and `::`.
func MemberCompletions(fieldNames []string, methodNames []string) []artifacts.CompletionItem {
	items := make([]artifacts.CompletionItem, 0, len(fieldNames)+len(methodNames))
	for _, f := range fieldNames {
		items = append(items, artifacts.CompletionItem{Label: f, Kind: artifacts.CompletionField})
	}
	for _, m := range methodNames {
		items = append(items, artifacts.CompletionItem{Label: m, Kind: artifacts.CompletionMethod})
	}
	return items
}
