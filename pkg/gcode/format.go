package gcode

import (
	"regexp"
	"strings"
)

// Indent is the per-level indentation used by Format.
const Indent = "  "

var (
	// closing lines end a block; ELSE both closes and reopens.
	closingPattern = regexp.MustCompile(`(?i)^(?:o\S+\s+)?(ENDIF|ENDWHILE|ENDREPEAT|ENDSUB|ELSE)\b`)
	openingPattern = regexp.MustCompile(`(?i)^(?:o\S+\s+)?(IF|WHILE|DO|REPEAT|SUB|ELSE)\b`)
)

// Format indents a flat instruction list by block depth. It never reorders
// or rewrites instructions, and unbalanced input never produces negative
// indentation.
func Format(lines []string) []string {
	out := make([]string, 0, len(lines))
	depth := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if closingPattern.MatchString(line) && depth > 0 {
			depth--
		}
		out = append(out, strings.Repeat(Indent, depth)+line)
		if openingPattern.MatchString(line) {
			depth++
		}
	}
	return out
}

// IsBlockKeyword reports whether line opens or closes a block.
func IsBlockKeyword(line string) bool {
	line = strings.TrimSpace(line)
	return closingPattern.MatchString(line) || openingPattern.MatchString(line)
}
