// Package diagnostics implements the typed error/warning records the
// compiler emits, with human-readable, JSON and LSP-shaped rendering.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/pivot-lang/plc/internal/source"
)

// helpWrapWidth is the column budget Render wraps long help strings to.
const helpWrapWidth = 80

// wrapHelp breaks s into lines no wider than helpWrapWidth columns, counting
// east-asian wide runes as two columns so comments carrying full-width
// punctuation or CJK text still line up under "help:".
func wrapHelp(s string) []string {
	var lines []string
	var cur strings.Builder
	col := 0
	for _, word := range strings.Fields(s) {
		wordCols := 0
		for _, r := range word {
			wordCols += runeCols(r)
		}
		if col > 0 && col+1+wordCols > helpWrapWidth {
			lines = append(lines, cur.String())
			cur.Reset()
			col = 0
		}
		if col > 0 {
			cur.WriteByte(' ')
			col++
		}
		cur.WriteString(word)
		col += wordCols
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func runeCols(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Severity distinguishes hard errors from warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Label attaches a secondary range (e.g. "first declared here") to a
// diagnostic, optionally in a different file.
type Label struct {
	Range    source.Range
	File     string
	Template string
	Args     []string
}

// Message renders the label's template with its args, falling back to the
// template verbatim when there are no args.
func (l Label) Message() string {
	if l.Template == "" {
		return ""
	}
	return applyArgs(l.Template, l.Args)
}

// Diagnostic is the sole error/warning record type threaded through
// emission. It is intentionally immutable except through its builder
// methods, mirroring pivot-lang's PLDiag.
type Diagnostic struct {
	Range    source.Range
	Severity Severity
	Code     Code
	Args     []string
	Help     string
	Source   string
	Labels   []Label
}

// NewError constructs a hard-error diagnostic.
func NewError(rng source.Range, code Code, args ...string) *Diagnostic {
	return &Diagnostic{Range: rng, Severity: SeverityError, Code: code, Args: args}
}

// NewWarn constructs a warning diagnostic.
func NewWarn(rng source.Range, code Code, args ...string) *Diagnostic {
	return &Diagnostic{Range: rng, Severity: SeverityWarning, Code: code, Args: args}
}

// IsErr reports whether the diagnostic is a hard error.
func (d *Diagnostic) IsErr() bool { return d.Severity == SeverityError }

// AddHelp attaches help text and returns the receiver for chaining.
func (d *Diagnostic) AddHelp(text string) *Diagnostic {
	d.Help = text
	return d
}

// AddLabel attaches a secondary, optionally templated, range.
func (d *Diagnostic) AddLabel(rng source.Range, file string, template string, args ...string) *Diagnostic {
	d.Labels = append(d.Labels, Label{Range: rng, File: file, Template: template, Args: args})
	return d
}

// SetSource records the owning file path.
func (d *Diagnostic) SetSource(file string) *Diagnostic {
	d.Source = file
	return d
}

// SetRange overrides the primary range, used when a caller wants to
// re-anchor a diagnostic built generically (e.g. from a shared helper).
func (d *Diagnostic) SetRange(rng source.Range) *Diagnostic {
	d.Range = rng
	return d
}

// Message renders the diagnostic's message template with its arguments.
func (d *Diagnostic) Message() string {
	return applyArgs(d.Code.Template(), d.Args)
}

func applyArgs(template string, args []string) string {
	anys := make([]any, len(args))
	for i, a := range args {
		anys[i] = a
	}
	// Re-interpret %s/%q verbs positionally; templates only ever use one
	// verb per argument, in order.
	return fmt.Sprintf(template, anys...)
}

// AddToCtx appends the diagnostic to a file-scoped bag. Callers pass a
// *Bag owned by the active Ctx/Mod tree.
func (d *Diagnostic) AddToCtx(bag *Bag) {
	bag.Add(d)
}

// Bag aggregates diagnostics for one file during emission.
type Bag struct {
	diags []*Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d *Diagnostic) { b.diags = append(b.diags, d) }

// All returns every diagnostic added so far, in emission order.
func (b *Bag) All() []*Diagnostic { return b.diags }

// HasErrors reports whether any diagnostic in the bag is a hard error;
// the CLI uses this to decide its exit code.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.IsErr() {
			return true
		}
	}
	return false
}

// SourceFetcher resolves a file path to its source text, so Render can
// quote the offending line. The query engine's doc set implements this.
type SourceFetcher interface {
	SourceLine(file string, line int) (string, bool)
}

// Render produces a human-readable report for one diagnostic, in the
// style of pivot-lang's PLDiag::print (kept uncolored here; cmd/plc layers
// color on top so this stays usable from tests and non-tty output).
func (d *Diagnostic) Render(file string, fetch SourceFetcher) string {
	kind := "error"
	if d.Severity == SeverityWarning {
		kind = "warning"
	}
	out := fmt.Sprintf("%s[%s]: %s\n  --> %s:%d:%d\n", kind, d.Code, d.Message(), file, d.Range.Start.Line, d.Range.Start.Column)
	if fetch != nil {
		if line, ok := fetch.SourceLine(file, d.Range.Start.Line); ok {
			out += fmt.Sprintf("   |\n%3d| %s\n", d.Range.Start.Line, line)
		}
	}
	for _, l := range d.Labels {
		out += fmt.Sprintf("  note: %s:%d:%d: %s\n", l.File, l.Range.Start.Line, l.Range.Start.Column, l.Message())
	}
	if d.Help != "" {
		wrapped := wrapHelp(d.Help)
		out += fmt.Sprintf("  help: %s\n", wrapped[0])
		for _, rest := range wrapped[1:] {
			out += fmt.Sprintf("        %s\n", rest)
		}
	}
	return out
}

// LSPDiagnostic is the wire-shaped projection of a Diagnostic used by
// editor-service responses.
type LSPDiagnostic struct {
	Range    source.Range `json:"range"`
	Severity int          `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Tags     []string     `json:"tags,omitempty"`
}

// ToLSP pushes d into byFile, keyed by its owning Source file, tagging
// UNUSED_VARIABLE/UNUSED_FUNCTION as "unnecessary".
func (d *Diagnostic) ToLSP(byFile map[string][]LSPDiagnostic) {
	sev := 1
	if d.Severity == SeverityWarning {
		sev = 2
	}
	lsp := LSPDiagnostic{Range: d.Range, Severity: sev, Code: d.Code.String(), Message: d.Message()}
	if d.Code == UnusedVariable || d.Code == UnusedFunction {
		lsp.Tags = append(lsp.Tags, "unnecessary")
	}
	file := d.Source
	byFile[file] = append(byFile[file], lsp)
}

// Encoded is the JSON-first structured form of a Diagnostic.
type Encoded struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Range   *source.Range  `json:"range,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Help    string         `json:"help,omitempty"`
}

// Encode converts d to its structured JSON form.
func (d *Diagnostic) Encode(phase string) *Encoded {
	data := map[string]any{}
	if len(d.Args) > 0 {
		data["args"] = d.Args
	}
	return &Encoded{
		Schema:  "plc.diagnostic/v1",
		Code:    d.Code.String(),
		Phase:   phase,
		Message: d.Message(),
		Range:   &d.Range,
		Data:    data,
		Help:    d.Help,
	}
}

// ToJSON renders the encoded diagnostic as JSON text.
func (e *Encoded) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(e)
	} else {
		data, err = json.MarshalIndent(e, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReportError wraps a Diagnostic so it survives errors.As unwrapping.
type ReportError struct {
	Diag *Diagnostic
}

func (e *ReportError) Error() string {
	if e.Diag == nil {
		return "unknown diagnostic"
	}
	return e.Diag.Code.String() + ": " + e.Diag.Message()
}

// Wrap turns a *Diagnostic into an error.
func Wrap(d *Diagnostic) error {
	if d == nil {
		return nil
	}
	return &ReportError{Diag: d}
}

// AsDiagnostic extracts a *Diagnostic from an error chain, if present.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Diag, true
	}
	return nil, false
}
