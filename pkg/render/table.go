package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/atcmacro/pkg/engine"
)

// MaxCellWidth caps a column; longer cells are truncated with an ellipsis.
const MaxCellWidth = 48

var tableHeader = []string{"#", "command", "display", "flags"}

// Table lays out command entries in aligned columns. Widths are measured
// in terminal cells so wide characters in display text stay aligned.
func Table(cmds []engine.Command) string {
	rows := [][]string{tableHeader}
	for i, c := range cmds {
		display := ""
		if c.DisplayCommand != nil {
			display = *c.DisplayCommand
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), c.Command, display, flags(c)})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = min(w, MaxCellWidth)
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" │ ")
			}
			b.WriteString(pad(cell, widths[i]))
		}
		b.WriteString("\n")
		if r == 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString("─┼─")
				}
				b.WriteString(strings.Repeat("─", w))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func flags(c engine.Command) string {
	var f []string
	if c.IsOriginal {
		f = append(f, "original")
	}
	if c.Meta.Silent {
		f = append(f, "silent")
	}
	return strings.Join(f, ",")
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
