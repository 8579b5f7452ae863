package render

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/atcmacro/pkg/engine"
)

func TestHighlight_KeepsText(t *testing.T) {
	lines := []string{
		"(MSG, ATC:LOAD_FAILED)",
		"  o100 IF [#5399 EQ 1]",
		"(Load T2)",
		"M0",
		"M3 S1200",
		"G38.2 G91 Z-50 F800",
		"G53 G0 Z0",
		"",
	}
	for _, l := range lines {
		got := Highlight(l)
		if !strings.Contains(got, strings.TrimSpace(l)) {
			t.Errorf("Highlight(%q) = %q, lost text", l, got)
		}
		if indent := l[:len(l)-len(strings.TrimLeft(l, " "))]; !strings.HasPrefix(got, indent) {
			t.Errorf("Highlight(%q) dropped indentation", l)
		}
	}
	if got := Highlight("G53 G0 Z0"); got != "G53 G0 Z0" {
		t.Errorf("plain move changed: %q", got)
	}
	if n := len(HighlightAll(lines)); n != len(lines) {
		t.Errorf("HighlightAll returned %d lines", n)
	}
}

func TestTable_Alignment(t *testing.T) {
	shown := "工具 M6 T2"
	cmds := []engine.Command{
		{Command: "(ATC T1 -> T2)", DisplayCommand: &shown},
		{Command: "G53 G0 Z0", Meta: engine.Meta{Silent: true}},
		engine.Original("G0 X1"),
	}
	out := Table(cmds)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5:\n%s", len(lines), out)
	}
	width := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if w := runewidth.StringWidth(l); w != width {
			t.Errorf("row width %d != header width %d:\n%s", w, width, out)
		}
	}
	if !strings.Contains(lines[3], "silent") || !strings.Contains(lines[4], "original") {
		t.Errorf("flags missing:\n%s", out)
	}
}

func TestTable_Truncates(t *testing.T) {
	long := strings.Repeat("G1 X1 ", 20)
	out := Table([]engine.Command{engine.Original(long)})
	if !strings.Contains(out, "…") {
		t.Errorf("long command not truncated:\n%s", out)
	}
}
