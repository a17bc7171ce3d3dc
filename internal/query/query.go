// Package query implements the incremental module/query engine:
// memoized parse / compile_dry / emit_file queries binding file text to
// a typed, IR-emitted module, invalidated per-file on content change.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pivot-lang/plc/internal/artifacts"
	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/emit"
	"github.com/pivot-lang/plc/internal/irbuild"
	"github.com/pivot-lang/plc/internal/manifest"
	"github.com/pivot-lang/plc/internal/module"
)

// Parser is the external collaborator that turns source text into an
// AST. The lexer/parser pipeline lives outside this module; the engine
// only ever depends on this interface.
type Parser interface {
	Parse(file, text string) (*ast.Program, []*diagnostics.Diagnostic)
}

// DocSet is the in-memory set of known file contents a query runs
// against.
type DocSet map[string]string

// Action re-exports ctx.Action so callers of this package need not import
// internal/ctx just to name a language-service action.
type Action = ctx.Action

type parseEntry struct {
	hash  string
	prog  *ast.Program
	diags []*diagnostics.Diagnostic
}

type dryEntry struct {
	hash string
	mod  *module.Mod
}

// Engine memoizes the parse, compile_dry and emit_file queries, each
// invalidated only when its own transitive inputs change.
type Engine struct {
	Parser   Parser
	Manifest *manifest.Manifest

	mu         sync.Mutex
	parseCache map[string]parseEntry
	dryCache   map[string]dryEntry
}

// NewEngine builds an engine over parser p and project manifest m.
func NewEngine(p Parser, m *manifest.Manifest) *Engine {
	return &Engine{
		Parser:     p,
		Manifest:   m,
		parseCache: map[string]parseEntry{},
		dryCache:   map[string]dryEntry{},
	}
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parse runs the parse query, memoized by the file's text hash.
func (e *Engine) Parse(file, text string) (*ast.Program, []*diagnostics.Diagnostic) {
	h := hashText(text)
	e.mu.Lock()
	if cached, ok := e.parseCache[file]; ok && cached.hash == h {
		e.mu.Unlock()
		return cached.prog, cached.diags
	}
	e.mu.Unlock()

	prog, diags := e.Parser.Parse(file, text)

	e.mu.Lock()
	e.parseCache[file] = parseEntry{hash: h, prog: prog, diags: diags}
	e.mu.Unlock()
	return prog, diags
}

// compileState threads the in-progress set through one compile_dry call
// tree so an import cycle substitutes the in-progress file's own partial
// module instead of recursing forever.
type compileState struct {
	docs     DocSet
	visiting map[string]*module.Mod
}

// CompileDry runs the compile_dry query: parse, resolve every `use`,
// recurse into dependencies, and bind every top-level signature with the
// no-op builder and no LSP params — the type-check-only half of
// emit_file a dependent file imports.
func (e *Engine) CompileDry(file string, docs DocSet) (*module.Mod, []*diagnostics.Diagnostic) {
	return e.compileDry(file, &compileState{docs: docs, visiting: map[string]*module.Mod{}})
}

func (e *Engine) compileDry(file string, st *compileState) (*module.Mod, []*diagnostics.Diagnostic) {
	if m, ok := st.visiting[file]; ok {
		return m, nil
	}
	text, ok := st.docs[file]
	if !ok {
		return nil, nil
	}

	h := hashText(text)
	e.mu.Lock()
	if cached, ok := e.dryCache[file]; ok && cached.hash == h {
		e.mu.Unlock()
		return cached.mod, nil
	}
	e.mu.Unlock()

	prog, diags := e.Parse(file, text)

	mod := module.New(stem(file), file)
	st.visiting[file] = mod
	defer delete(st.visiting, file)

	e.importUses(file, prog, mod, st, &diags, nil)

	c := ctx.New(mod, &irbuild.NoopBuilder{}, file, ctx.Diagnostics, nil)
	if file == e.gcModuleFile() {
		c.UseGC = false
	}
	emit.EmitProgram(c, prog)
	diags = append(diags, mod.Diags.All()...)

	e.mu.Lock()
	e.dryCache[file] = dryEntry{hash: h, mod: mod}
	e.mu.Unlock()
	return mod, diags
}

// importUses resolves the implicit `gc` import plus every explicit `use`,
// merging each dependency's top-level types into mod's type table. lsp is
// non-nil only for the focal file of an emit_file Completion query; when the cursor falls inside a `use` path, its namespace
// completions are published.
func (e *Engine) importUses(file string, prog *ast.Program, mod *module.Mod, st *compileState, diags *[]*diagnostics.Diagnostic, lsp *ctx.LSPParams) {
	if file != e.gcModuleFile() {
		e.resolveUse(&ast.UsePath{Segments: []string{"gc"}}, file, mod, st, diags, lsp, true)
	}
	for _, u := range prog.Uses {
		e.resolveUse(u, file, mod, st, diags, lsp, false)
	}
}

// namespaceCompletions publishes directory-scan completions for u's path
// segments when lsp's cursor lies inside u's range.
func (e *Engine) namespaceCompletions(u *ast.UsePath, mod *module.Mod, lsp *ctx.LSPParams) {
	if e.Manifest == nil || lsp == nil || lsp.Action != ctx.Completion || !u.Range().Contains(lsp.Pos) {
		return
	}
	items := make([]artifacts.CompletionItem, 0)
	for _, name := range e.Manifest.NamespaceCompletions(u.Segments) {
		items = append(items, artifacts.CompletionItem{Label: name, Kind: artifacts.CompletionNamespace})
	}
	mod.PublishCompletions(items)
}

// resolveUse binds one `use` path, merging the resolved module's
// exported types into mod under its last path segment as well as into
// Submods. A missing dependency produces one UNRESOLVED_MODULE
// diagnostic at the use site, covering every reference through it
//; the implicit gc import stays silent instead, since a project
// without a core gc source must still compile its own files.
func (e *Engine) resolveUse(u *ast.UsePath, fromFile string, mod *module.Mod, st *compileState, diags *[]*diagnostics.Diagnostic, lsp *ctx.LSPParams, implicit bool) {
	e.namespaceCompletions(u, mod, lsp)
	if e.Manifest == nil || len(u.Segments) == 0 {
		return
	}
	target, ok := e.Manifest.ResolveUse(u.Segments)
	if !ok {
		return
	}
	depMod, depDiags := e.compileDry(target, st)
	if depMod == nil {
		if !implicit {
			*diags = append(*diags, diagnostics.NewError(u.Range(), diagnostics.UnresolvedModule, strings.Join(u.Segments, "::")).SetSource(fromFile))
		}
		return
	}
	*diags = append(*diags, depDiags...)
	name := u.Segments[len(u.Segments)-1]
	mod.Submods[name] = depMod
	for tname, t := range depMod.Types {
		mod.AddType(tname, t)
	}
}

func (e *Engine) gcModuleFile() string {
	if e.Manifest == nil {
		return ""
	}
	p, ok := e.Manifest.ResolveUse([]string{"gc"})
	if !ok {
		return ""
	}
	return p
}

// EmitResult is the output of one emit_file query. Rendered is
// populated only for the Fmt, LspFmt and PrintAst actions, which render
// the AST instead of emitting IR.
type EmitResult struct {
	RunID    string
	File     string
	Mod      *module.Mod
	Diags    []*diagnostics.Diagnostic
	IRText   string
	IRPath   string
	BCPath   string
	Rendered string
}

// EmitFile runs the emit_file query for one focal file: parse, resolve
// uses (reusing compile_dry results for each dependency), then emit with
// LSP params threaded only for this file. outDir is where Compile
// writes target/<stem>_<hash>.bc|.ll; it is ignored for every other
// action.
func (e *Engine) EmitFile(file string, docs DocSet, action Action, lsp *ctx.LSPParams, outDir string) (*EmitResult, error) {
	text, ok := docs[file]
	if !ok {
		return nil, fmt.Errorf("query: unknown file %q", file)
	}
	prog, diags := e.Parse(file, text)

	mod := module.New(stem(file), file)
	st := &compileState{docs: docs, visiting: map[string]*module.Mod{file: mod}}
	e.importUses(file, prog, mod, st, &diags, lsp)

	var builder irbuild.IRBuilder
	var emitter *irbuild.Emitter
	if action.NeedsRealBuilder() {
		emitter = irbuild.NewEmitter(stem(file), file, outDir)
		builder = emitter
	} else {
		builder = &irbuild.NoopBuilder{}
	}

	c := ctx.New(mod, builder, file, action, lsp)
	if file == e.gcModuleFile() {
		// The gc core module compiles itself without GC bookkeeping.
		c.UseGC = false
	}
	emit.EmitProgram(c, prog)
	diags = append(diags, mod.Diags.All()...)

	res := &EmitResult{RunID: uuid.NewString(), File: file, Mod: mod, Diags: diags}
	switch action {
	case ctx.Fmt, ctx.LspFmt:
		res.Rendered = ast.Format(prog)
	case ctx.PrintAst:
		res.Rendered = ast.Print(prog)
	}
	if emitter != nil {
		emitter.FinalizeDebug()
		res.IRText = emitter.Render()
		h := hashText(text)
		res.BCPath = filepath.Join(outDir, fmt.Sprintf("%s_%s.bc", stem(file), h))
		res.IRPath = filepath.Join(outDir, fmt.Sprintf("%s_%s.ll", stem(file), h))
		if err := emitter.WriteBitcode(res.BCPath); err != nil {
			return res, err
		}
		if err := emitter.PrintToFile(res.IRPath); err != nil {
			return res, err
		}
	}
	return res, nil
}

// EmitFiles runs emit_file concurrently across files, since concurrent
// queries on different focal files are independent.
// Every file in the batch runs as a background (no LSP params) Compile
// query; callers needing a single focal file's LSP artifacts should call
// EmitFile directly instead.
func (e *Engine) EmitFiles(files []string, docs DocSet, outDir string) (map[string]*EmitResult, error) {
	var g errgroup.Group
	var mu sync.Mutex
	out := make(map[string]*EmitResult, len(files))
	for _, f := range files {
		f := f
		g.Go(func() error {
			res, err := e.EmitFile(f, docs, ctx.Compile, nil, outDir)
			if err != nil {
				return err
			}
			mu.Lock()
			out[f] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
