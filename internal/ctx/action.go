package ctx

// Action enumerates the language-service actions a query can be run
// for. Compile is the only action that installs the real IR builder;
// every other action runs through irbuild.NoopBuilder.
type Action int

const (
	Compile Action = iota
	PrintAst
	Fmt
	LspFmt
	Completion
	Hover
	GotoDef
	FindReferences
	SignatureHelp
	SemanticTokensFull
	InlayHints
	DocSymbols
	Diagnostics
)

// NeedsRealBuilder reports whether the action requires actual code
// generation rather than a no-op pass.
func (a Action) NeedsRealBuilder() bool { return a == Compile }
