package versionbumper

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Color palette for dark terminal backgrounds.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorHighlight)

	// CmdStyle highlights commands the operator can copy.
	CmdStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight)
	// OldVersionStyle and NewVersionStyle color the bump arrow.
	OldVersionStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	NewVersionStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight)
)

// Tone picks the border color of a panel.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneError
	ToneAccent
)

func (t Tone) color() lipgloss.Color {
	switch t {
	case ToneSuccess:
		return ColorSuccess
	case ToneWarning:
		return ColorWarning
	case ToneError:
		return ColorError
	case ToneAccent:
		return ColorPrimary
	}
	return ColorHighlight
}

// Presenter renders operator-facing output: bordered panels, status lines
// and markdown.
type Presenter struct {
	Out io.Writer
	// Width wraps markdown; zero disables wrapping.
	Width int
}

// NewPresenter returns a Presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{Out: out, Width: 80}
}

// Panel prints body inside a rounded border, with an optional bold title.
func (p *Presenter) Panel(title, body string, tone Tone) {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tone.color()).
		Padding(0, 1)
	content := body
	if title != "" {
		head := titleStyle.Foreground(tone.color()).Render(title)
		if body == "" {
			content = head
		} else {
			content = head + "\n\n" + body
		}
	}
	fmt.Fprintln(p.Out, style.Render(content))
}

// Success prints a check-marked line.
func (p *Presenter) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Presenter) Warn(format string, args ...any) {
	fmt.Fprintln(p.Out, warningStyle.Render("⚠️  "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Presenter) Error(format string, args ...any) {
	fmt.Fprintln(p.Out, errorStyle.Render("❌ "+fmt.Sprintf(format, args...)))
}

// Info prints a highlighted line.
func (p *Presenter) Info(format string, args ...any) {
	fmt.Fprintln(p.Out, infoStyle.Render(fmt.Sprintf(format, args...)))
}

// Markdown renders md for the terminal. Rendering problems fall back to the
// raw text.
func (p *Presenter) Markdown(md string) string {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if p.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(p.Width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Bullets joins items as "• item" lines.
func Bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}
