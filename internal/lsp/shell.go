// Package lsp hosts the interactive "explore" shell: a liner-based
// prompt over the query/editorservice stack, used to inspect
// diagnostics, hovers, and references while developing against a
// source file.
package lsp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/editorservice"
	"github.com/pivot-lang/plc/internal/query"
	"github.com/pivot-lang/plc/internal/source"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Shell is a line-editing explorer over one engine/focal-file pair.
// Every source line typed at the prompt is appended to the focal file's
// in-memory buffer and immediately re-emitted for diagnostics; `:`
// commands query the other editor-service actions against the latest
// emission.
type Shell struct {
	engine *query.Engine
	file   string
	docs   query.DocSet
	source strings.Builder
	lastOK bool
}

// New builds a shell exploring file inside engine's project. engine's
// Parser is supplied by the caller, since lexing/parsing PL source is
// deliberately out of scope here.
func New(engine *query.Engine, file string) *Shell {
	return &Shell{engine: engine, file: file, docs: query.DocSet{}}
}

// Start runs the read-eval-print loop against in and out.
func (s *Shell) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".plc_shell_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("plc explore"), dim(s.file))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))

	line.SetCompleter(func(input string) (c []string) {
		if !strings.HasPrefix(input, ":") {
			return nil
		}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return c
	})

	for {
		prompt := "λ> "
		if !s.lastOK {
			prompt = "λ!> "
		}
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimRight(input, "\n")
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if handleQuit(input) {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			s.handleCommand(input, out)
			continue
		}

		s.appendSource(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

var commands = []string{":help", ":quit", ":hover", ":def", ":refs", ":tokens", ":symbols", ":diagnostics", ":reset"}

func handleQuit(input string) bool {
	cmd := strings.Fields(input)[0]
	return cmd == ":quit" || cmd == ":q" || cmd == ":exit"
}

// appendSource adds one line of source to the focal file's buffer and
// re-runs the diagnostics action, echoing anything new after each
// input line.
func (s *Shell) appendSource(input string, out io.Writer) {
	s.source.WriteString(input)
	s.source.WriteByte('\n')
	s.docs[s.file] = s.source.String()

	res, err := s.engine.EmitFile(s.file, s.docs, ctx.Diagnostics, nil, "")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		s.lastOK = false
		return
	}
	s.lastOK = !res.Mod.Diags.HasErrors()
	for _, d := range res.Diags {
		text := d.Render(s.file, nil)
		if d.IsErr() {
			fmt.Fprint(out, red(text))
		} else {
			fmt.Fprint(out, yellow(text))
		}
	}
	if s.lastOK {
		fmt.Fprintln(out, green("ok"))
	}
}

func (s *Shell) handleCommand(input string, out io.Writer) {
	parts := strings.Fields(input)
	switch parts[0] {
	case ":help", ":h":
		s.printHelp(out)

	case ":reset":
		s.source.Reset()
		delete(s.docs, s.file)
		fmt.Fprintln(out, yellow("buffer cleared"))

	case ":hover":
		s.servePositional(out, ctx.Hover, parts)
	case ":def":
		s.servePositional(out, ctx.GotoDef, parts)
	case ":refs":
		s.servePositional(out, ctx.FindReferences, parts)
	case ":tokens":
		s.serveWhole(out, ctx.SemanticTokensFull)
	case ":symbols":
		s.serveWhole(out, ctx.DocSymbols)
	case ":diagnostics":
		s.serveWhole(out, ctx.Diagnostics)

	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("error"), parts[0])
	}
}

func (s *Shell) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :hover <line> <col>        show the hover at a position")
	fmt.Fprintln(out, "  :def <line> <col>          show the definition location at a position")
	fmt.Fprintln(out, "  :refs <line> <col>         list references at a position")
	fmt.Fprintln(out, "  :tokens                    list semantic tokens for the whole file")
	fmt.Fprintln(out, "  :symbols                   list the outline for the whole file")
	fmt.Fprintln(out, "  :diagnostics               list current diagnostics")
	fmt.Fprintln(out, "  :reset                     clear the buffer")
	fmt.Fprintln(out, "  :quit                      exit")
}

// servePositional re-emits the focal file for a positional action
// (Hover, GotoDef, FindReferences) with the cursor threaded as an LSP
// param, then dispatches through editorservice.Serve.
func (s *Shell) servePositional(out io.Writer, action ctx.Action, parts []string) {
	if len(parts) != 3 {
		fmt.Fprintf(out, "Usage: %s <line> <col>\n", parts[0])
		return
	}
	line, err1 := strconv.Atoi(parts[1])
	col, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, red("error: line and col must be integers"))
		return
	}
	pos := source.Position{Line: line, Column: col}

	res, err := s.engine.EmitFile(s.file, s.docs, action, &ctx.LSPParams{Pos: pos, Action: action}, "")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	resp := editorservice.Serve(res.Mod, editorservice.Request{File: s.file, Action: action, Pos: pos})
	if !resp.Found {
		fmt.Fprintln(out, dim("nothing at that position"))
		return
	}
	s.printResponse(out, resp)
}

func (s *Shell) serveWhole(out io.Writer, action ctx.Action) {
	res, err := s.engine.EmitFile(s.file, s.docs, action, nil, "")
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	resp := editorservice.Serve(res.Mod, editorservice.Request{File: s.file, Action: action})
	s.printResponse(out, resp)
}

func (s *Shell) printResponse(out io.Writer, resp editorservice.Response) {
	switch {
	case resp.Hover != nil:
		fmt.Fprintf(out, "%s %s\n", cyan(resp.Hover.Range.String()), resp.Hover.Contents)
	case resp.Def != nil:
		fmt.Fprintf(out, "%s -> %s:%s\n", cyan(resp.Def.Range.String()), resp.Def.Dest.File, resp.Def.Dest.Range.Start)
	case len(resp.References) > 0:
		for _, loc := range resp.References {
			fmt.Fprintf(out, "  %s:%s\n", loc.File, loc.Range.Start)
		}
	case resp.SignatureHelp != nil:
		fmt.Fprintf(out, "%s(%s)\n", resp.SignatureHelp.FunctionName, strings.Join(resp.SignatureHelp.Params, ", "))
	case len(resp.SemanticTokens) > 0:
		for _, tok := range resp.SemanticTokens {
			fmt.Fprintf(out, "  %s kind=%d\n", tok.Range.String(), tok.Kind)
		}
	case len(resp.DocSymbols) > 0:
		sort.Slice(resp.DocSymbols, func(i, j int) bool { return resp.DocSymbols[i].Range.Less(resp.DocSymbols[j].Range) })
		for _, sym := range resp.DocSymbols {
			fmt.Fprintf(out, "  %s %s %s\n", sym.Kind, sym.Name, sym.Range.String())
		}
	case len(resp.Diagnostics) > 0:
		for _, d := range resp.Diagnostics {
			fmt.Fprintf(out, "  [%s] %s %s\n", d.Code, d.Range.String(), d.Message)
		}
	default:
		fmt.Fprintln(out, dim("(empty)"))
	}
}
