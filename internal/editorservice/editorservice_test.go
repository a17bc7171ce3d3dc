package editorservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/module"
	"github.com/pivot-lang/plc/internal/source"
)

func at(line, col int) source.Position { return source.Position{Line: line, Column: col, Offset: col} }

func rng(startCol, endCol int) source.Range {
	return source.Range{Start: at(1, startCol), End: at(1, endCol)}
}

func TestServeHoverFindsContainingRange(t *testing.T) {
	mod := module.New("main", "main.pi")
	mod.PublishHover(rng(1, 10), "fn foo(): i64")

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.Hover, Pos: at(1, 5)})
	require.True(t, resp.Found)
	require.NotNil(t, resp.Hover)
	assert.Equal(t, "fn foo(): i64", resp.Hover.Contents)
}

func TestServeHoverOutsideRangeNotFound(t *testing.T) {
	mod := module.New("main", "main.pi")
	mod.PublishHover(rng(1, 10), "fn foo(): i64")

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.Hover, Pos: at(1, 50)})
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Hover)
}

func TestServeGotoDef(t *testing.T) {
	mod := module.New("main", "main.pi")
	dest := source.Location{File: "main.pi", Range: rng(20, 23)}
	mod.PublishDef(rng(1, 5), dest)

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.GotoDef, Pos: at(1, 3)})
	require.True(t, resp.Found)
	assert.Equal(t, dest, resp.Def.Dest)
}

func TestServeFindReferencesReturnsAllUseSites(t *testing.T) {
	mod := module.New("main", "main.pi")
	bucket := source.NewRefBucket()
	mod.PublishRef(bucket, rng(1, 3), "main.pi")
	bucket.Push(source.Location{File: "main.pi", Range: rng(10, 13)})

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.FindReferences, Pos: at(1, 2)})
	require.True(t, resp.Found)
	assert.Len(t, resp.References, 2)
}

func TestServeCompletionsReturnsEverythingPublished(t *testing.T) {
	mod := module.New("main", "main.pi")
	mod.PublishCompletions([]artifacts.CompletionItem{{Label: "x", Kind: artifacts.CompletionVariable}})

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.Completion})
	require.True(t, resp.Found)
	assert.Equal(t, "x", resp.Completions[0].Label)
}

func TestServeDiagnosticsFiltersByFile(t *testing.T) {
	mod := module.New("main", "main.pi")
	mod.Diags.Add(diagnostics.NewError(rng(1, 2), diagnostics.UndefinedType, "Foo").SetSource("main.pi"))
	mod.Diags.Add(diagnostics.NewError(rng(1, 2), diagnostics.UndefinedType, "Bar").SetSource("other.pi"))

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.Diagnostics})
	require.True(t, resp.Found)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "UNDEFINED_TYPE", resp.Diagnostics[0].Code)
}

func TestServeSemanticTokensFull(t *testing.T) {
	mod := module.New("main", "main.pi")
	mod.SemanticTokens.Push(rng(1, 3), artifacts.TokKeyword, 0)

	resp := Serve(mod, Request{File: "main.pi", Action: ctx.SemanticTokensFull})
	require.True(t, resp.Found)
	assert.Len(t, resp.SemanticTokens, 1)
}

func TestServeUnknownActionReturnsEmpty(t *testing.T) {
	mod := module.New("main", "main.pi")
	resp := Serve(mod, Request{File: "main.pi", Action: ctx.Fmt})
	assert.False(t, resp.Found)
}
