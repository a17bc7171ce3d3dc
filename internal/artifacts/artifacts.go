// Package artifacts defines the editor-service payload shapes every
// emitter may publish: hovers, go-to-definition, inlay hints, signature
// help, completions and semantic tokens. These are plain JSON-tagged Go
// structs; LSP wire transport lives outside this module, which only
// needs the artifact shape.
package artifacts

import "github.com/pivot-lang/plc/internal/source"

// CompletionKind mirrors the handful of completion-item kinds the driver
// needs to distinguish.
type CompletionKind int

const (
	CompletionVariable CompletionKind = iota
	CompletionType
	CompletionFunction
	CompletionField
	CompletionMethod
	CompletionNamespace
	CompletionKeyword
	CompletionConstant
)

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

// Hover is the doc-comment payload shown for a range.
type Hover struct {
	Range    source.Range
	Contents string
}

// GotoDef maps a use-site range to its definition location.
type GotoDef struct {
	Range source.Range
	Dest  source.Location
}

// SignatureHelp describes the active parameter of a call expression.
type SignatureHelp struct {
	Range         source.Range
	FunctionName  string
	Params        []string
	ActiveParam   int
}

// InlayHintKind distinguishes inferred-type hints from parameter-name
// hints.
type InlayHintKind int

const (
	InlayType InlayHintKind = iota
	InlayParam
)

// InlayHint is one inline annotation.
type InlayHint struct {
	Pos   source.Position
	Label string
	Kind  InlayHintKind
}

// SemanticTokenKind enumerates the token classes the highlighter emits.
type SemanticTokenKind int

const (
	TokKeyword SemanticTokenKind = iota
	TokType
	TokFunction
	TokParameter
	TokVariable
	TokComment
	TokString
	TokNumber
)

// SemanticToken is one classified span.
type SemanticToken struct {
	Range     source.Range
	Kind      SemanticTokenKind
	Modifiers uint32
}

// DocSymbol is one entry of a file's outline (functions, structs, traits).
type DocSymbol struct {
	Name  string
	Kind  string
	Range source.Range
}

// SemanticTokensBuilder accumulates tokens in emission order, mirroring
// pivot-lang's SemanticTokensBuilder (push appends; encoding to the LSP
// delta wire format is left to the caller since no wire library is in
// scope here).
type SemanticTokensBuilder struct {
	tokens []SemanticToken
}

// Push appends one classified span.
func (b *SemanticTokensBuilder) Push(rng source.Range, kind SemanticTokenKind, modifiers uint32) {
	b.tokens = append(b.tokens, SemanticToken{Range: rng, Kind: kind, Modifiers: modifiers})
}

// All returns every token recorded so far, in source order.
func (b *SemanticTokensBuilder) All() []SemanticToken { return b.tokens }
