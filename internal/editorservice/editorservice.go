// Package editorservice implements the editor-service driver: given a
// Mod produced by one emit_file query plus a cursor position and the
// action that was asked for, it resolves the published artifact bucket
// for that action and shapes a JSON-ready response. Responses are plain
// JSON-tagged structs, the same choice internal/artifacts and
// internal/diagnostics's LSPDiagnostic/Encoded already made.
package editorservice

import (
	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/source"
)

// Request names one language-service query against an already-emitted
// Mod: which file it belongs to, which action was
// asked for, and the cursor position that action resolves against.
type Request struct {
	File   string          `json:"file"`
	Action ctx.Action      `json:"action"`
	Pos    source.Position `json:"pos"`
}

// Response carries exactly the fields its Action populates; every other
// field is left zero. Bundling every action's payload into one struct
// keeps the driver a single dispatch instead of N response types, since
// no wire format forces a tagged union here.
type Response struct {
	Found bool `json:"found"`

	Hover          *artifacts.Hover            `json:"hover,omitempty"`
	Def            *artifacts.GotoDef          `json:"def,omitempty"`
	References     []source.Location           `json:"references,omitempty"`
	SignatureHelp  *artifacts.SignatureHelp    `json:"signatureHelp,omitempty"`
	Completions    []artifacts.CompletionItem  `json:"completions,omitempty"`
	SemanticTokens []artifacts.SemanticToken   `json:"semanticTokens,omitempty"`
	InlayHints     []artifacts.InlayHint       `json:"inlayHints,omitempty"`
	DocSymbols     []artifacts.DocSymbol       `json:"docSymbols,omitempty"`
	Diagnostics    []diagnostics.LSPDiagnostic `json:"diagnostics,omitempty"`
}

// Serve dispatches req against mod: given a cursor position p, find
// the tightest published range containing p in the respective bucket
// and return its payload. Actions with no positional meaning
// (SemanticTokensFull, InlayHints, DocSymbols, Diagnostics) ignore
// req.Pos and return everything Mod accumulated.
func Serve(mod *module.Mod, req Request) Response {
	switch req.Action {
	case ctx.Hover:
		h, ok := mod.HoverAt(req.Pos)
		if !ok {
			return Response{}
		}
		return Response{Found: true, Hover: &h}

	case ctx.GotoDef:
		d, ok := mod.DefAt(req.Pos)
		if !ok {
			return Response{}
		}
		return Response{Found: true, Def: &d}

	case ctx.FindReferences:
		bucket, ok := mod.RefsAt(req.Pos)
		if !ok {
			return Response{}
		}
		return Response{Found: true, References: bucket.All()}

	case ctx.SignatureHelp:
		s, ok := mod.SignatureHelpAt(req.Pos)
		if !ok {
			return Response{}
		}
		return Response{Found: true, SignatureHelp: &s}

	case ctx.Completion:
		items := mod.Completions()
		return Response{Found: len(items) > 0, Completions: items}

	case ctx.SemanticTokensFull:
		toks := mod.SemanticTokens.All()
		return Response{Found: len(toks) > 0, SemanticTokens: toks}

	case ctx.InlayHints:
		hints := mod.Hints()
		return Response{Found: len(hints) > 0, InlayHints: hints}

	case ctx.DocSymbols:
		syms := mod.DocSymbols()
		return Response{Found: len(syms) > 0, DocSymbols: syms}

	case ctx.Diagnostics:
		byFile := map[string][]diagnostics.LSPDiagnostic{}
		for _, d := range mod.Diags.All() {
			d.ToLSP(byFile)
		}
		diags := byFile[req.File]
		return Response{Found: len(diags) > 0, Diagnostics: diags}

	default:
		return Response{}
	}
}
