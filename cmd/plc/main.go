// Command plc is the compiler-front-end CLI. It loads a project
// manifest, runs the query engine's Compile action over the requested
// source file(s), renders diagnostics, and writes the resulting
// bitcode/textual IR: stdlib flag, fatih/color output, non-zero exit
// on error.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/pivot-lang/plc/internal/ast"
	"github.com/pivot-lang/plc/internal/ctx"
	"github.com/pivot-lang/plc/internal/diagnostics"
	"github.com/pivot-lang/plc/internal/lsp"
	"github.com/pivot-lang/plc/internal/manifest"
	"github.com/pivot-lang/plc/internal/query"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	fs := flag.NewFlagSet("plc", flag.ExitOnError)
	out := fs.String("o", "", "output directory for .bc/.ll artifacts (default: <dir of source>/target)")
	optLevel := fs.Int("O", 0, "optimization level 0-3")
	printAST := fs.Bool("printast", false, "print the parsed AST instead of compiling")
	genIR := fs.Bool("genir", false, "also print the textual IR to stdout")
	genSource := fs.Bool("gensource", false, "round-trip format the source instead of compiling")
	explore := fs.Bool("explore", false, "start the interactive explorer instead of compiling")
	manifestPath := fs.String("manifest", "", "project manifest path (default: <dir of source>/project.yaml)")

	if len(os.Args) < 2 {
		printUsage(fs)
		os.Exit(1)
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	_ = optLevel // accepted for CLI-shape compatibility; optimization is out of scope
	if fs.NArg() == 0 {
		printUsage(fs)
		os.Exit(1)
	}

	args := fs.Args()
	command := args[0]
	if command == "run" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "%s: run requires a file argument\n", red("error"))
			os.Exit(1)
		}
		command = args[1]
	}

	srcPath := command
	dir := filepath.Dir(srcPath)

	mpath := *manifestPath
	if mpath == "" {
		mpath = filepath.Join(dir, "project.yaml")
	}
	m, err := manifest.Load(mpath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	engine := query.NewEngine(&placeholderParser{}, m)

	if *explore {
		lsp.New(engine, srcPath).Start(os.Stdin, os.Stdout)
		return
	}

	text, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	docs := query.DocSet{srcPath: string(text)}

	action := ctx.Compile
	switch {
	case *printAST:
		action = ctx.PrintAst
	case *genSource:
		action = ctx.Fmt
	}

	outDir := *out
	if outDir == "" {
		outDir = filepath.Join(dir, "target")
	}
	if action == ctx.Compile {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
	}

	res, err := engine.EmitFile(srcPath, docs, action, nil, outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	hasError := false
	for _, d := range res.Diags {
		fmt.Fprint(os.Stderr, colorizeDiag(d))
		if d.IsErr() {
			hasError = true
		}
	}

	if res.Rendered != "" {
		fmt.Print(res.Rendered)
		if !strings.HasSuffix(res.Rendered, "\n") {
			fmt.Println()
		}
	}
	if *genIR && res.IRText != "" {
		fmt.Println(res.IRText)
	}
	if action == ctx.Compile && !hasError {
		fmt.Printf("%s %s, %s\n", bold("wrote"), res.BCPath, res.IRPath)
	}

	if hasError {
		os.Exit(1)
	}
}

func colorizeDiag(d *diagnostics.Diagnostic) string {
	text := d.Render(d.Source, nil)
	if d.IsErr() {
		return red(text)
	}
	return yellow(text)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, bold("plc - pivot-lang compiler front end"))
	fmt.Fprintln(os.Stderr, "Usage: plc <source> [-o out] [-O 0..3] [--printast] [--genir] [--gensource] [--explore]")
	fmt.Fprintln(os.Stderr, "       plc run <file>")
	fs.PrintDefaults()
}

// placeholderParser satisfies query.Parser without a real
// lexer/parser, which is a deliberately external collaborator. It
// mirrors irbuild.NoopBuilder's role: a second, inert body behind an
// interface whose real implementation lives outside this module. Every
// file
// parses to an empty Program, so the rest of the pipeline (query
// caching, diagnostics rendering, IR writing) is exercised end to end
// even though no source is actually understood.
type placeholderParser struct{}

func (placeholderParser) Parse(file, text string) (*ast.Program, []*diagnostics.Diagnostic) {
	return &ast.Program{}, nil
}
