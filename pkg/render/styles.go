// Package render formats expanded command streams for terminals.
package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/macro"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorMagenta = lipgloss.Color("201")
)

var (
	markerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	blockStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	commentStyle = lipgloss.NewStyle().Foreground(colorDim)
	pauseStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	spindleStyle = lipgloss.NewStyle().Foreground(colorMagenta)
	probeStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

var (
	spindleWord = regexp.MustCompile(`(?i)^M0*[345]\b`)
	probeWord   = regexp.MustCompile(`(?i)^(G38\.\d|G43\.1|M66)\b`)
	pauseWord   = regexp.MustCompile(`(?i)^M0*0\b`)
)

// Highlight colors one program line by what it does. Indentation is kept
// outside the styled text.
func Highlight(line string) string {
	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]

	var style lipgloss.Style
	switch {
	case body == "":
		return line
	case isMarker(body):
		style = markerStyle
	case gcode.IsBlockKeyword(body):
		style = blockStyle
	case strings.HasPrefix(body, "(") || strings.HasPrefix(body, ";"):
		style = commentStyle
	case pauseWord.MatchString(body):
		style = pauseStyle
	case spindleWord.MatchString(body):
		style = spindleStyle
	case probeWord.MatchString(body):
		style = probeStyle
	default:
		return line
	}
	return indent + style.Render(body)
}

// HighlightAll applies Highlight to every line.
func HighlightAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Highlight(l)
	}
	return out
}

func isMarker(line string) bool {
	_, ok := macro.ParseMarker(line)
	return ok
}
