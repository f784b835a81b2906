// Package output renders command results for the terminal and for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Label   lipgloss.Style
}

// NewStyles builds the styles for r. A renderer writing to a non-terminal
// strips colors, so piped output stays plain.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Label:   r.NewStyle().Bold(true),
	}
}

// Renderer writes styled text to an output and an error stream.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	styles *Styles
}

// NewRenderer creates a renderer. Colors are enabled only when out is a terminal.
func NewRenderer(out, errOut io.Writer) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		styles: NewStyles(lipgloss.NewRenderer(out)),
	}
}

// Out returns the primary output stream.
func (r *Renderer) Out() io.Writer { return r.out }

// Styles returns the active styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a plain line.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted plain text.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section title. Level 1 is underlined.
func (r *Renderer) Header(level int, text string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(text))
	if level == 1 {
		_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(strings.Repeat("-", lipgloss.Width(text))))
	}
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+msg))
}

// Warning writes a warning to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Error writes an error to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: ")+msg)
}

// Muted writes secondary text.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

// KeyValue writes an aligned "label: value" line.
func (r *Renderer) KeyValue(label string, value any) {
	_, _ = fmt.Fprintf(r.out, "%s %v\n", r.styles.Label.Render(fmt.Sprintf("%-10s", label+":")), value)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	return WriteJSON(r.out, v)
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
