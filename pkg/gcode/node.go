// Package gcode is the intermediate representation for generated macros and
// the text passes that render it: Flatten produces a flat instruction list
// and Format lays it out with nested-block indentation.
package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of a generated program.
type Node interface {
	// emit appends the node's instruction lines to out.
	emit(out []string) []string
}

// Line is a raw instruction emitted verbatim.
type Line string

func (l Line) emit(out []string) []string { return append(out, string(l)) }

// Linef formats a raw instruction.
func Linef(format string, args ...any) Line {
	return Line(fmt.Sprintf(format, args...))
}

// Comment renders as a parenthesized G-code comment.
type Comment string

func (c Comment) emit(out []string) []string {
	return append(out, "("+string(c)+")")
}

// Message is an operator-facing marker: (MSG, <NAMESPACE>:<CODE>).
type Message struct {
	Namespace string
	Code      string
}

func (m Message) emit(out []string) []string {
	return append(out, m.String())
}

func (m Message) String() string {
	return fmt.Sprintf("(MSG, %s:%s)", m.Namespace, m.Code)
}

// Move is a single-axis-group motion. Nil axes are omitted.
type Move struct {
	Machine bool // G53 machine coordinates
	Rapid   bool // G0 when set, G1 otherwise
	X, Y, Z *float64
	Feed    float64 // F word for G1; zero omits it
}

func (m Move) emit(out []string) []string {
	var b strings.Builder
	if m.Machine {
		b.WriteString("G53 ")
	}
	if m.Rapid {
		b.WriteString("G0")
	} else {
		b.WriteString("G1")
	}
	for _, ax := range []struct {
		name string
		v    *float64
	}{{"X", m.X}, {"Y", m.Y}, {"Z", m.Z}} {
		if ax.v != nil {
			b.WriteString(" " + ax.name + Num(*ax.v))
		}
	}
	if !m.Rapid && m.Feed > 0 {
		b.WriteString(" F" + Num(m.Feed))
	}
	return append(out, b.String())
}

// Conditional is an O-word IF block with an optional ELSE branch.
type Conditional struct {
	ID        int
	Condition string
	Then      []Node
	Else      []Node
}

func (c Conditional) emit(out []string) []string {
	out = append(out, fmt.Sprintf("o%d IF %s", c.ID, c.Condition))
	out = flatten(out, c.Then)
	if len(c.Else) > 0 {
		out = append(out, fmt.Sprintf("o%d ELSE", c.ID))
		out = flatten(out, c.Else)
	}
	return append(out, fmt.Sprintf("o%d ENDIF", c.ID))
}

// Block groups nodes so a routine can be passed around as one Node.
type Block []Node

func (b Block) emit(out []string) []string { return flatten(out, b) }

// Flatten renders nodes into a flat, unindented instruction list.
func Flatten(nodes []Node) []string {
	return flatten(nil, nodes)
}

func flatten(out []string, nodes []Node) []string {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = n.emit(out)
	}
	return out
}

// Render flattens and formats nodes in one step.
func Render(nodes []Node) []string {
	return Format(Flatten(nodes))
}

// Snippet splits user-supplied multi-line G-code into Line nodes, dropping
// blank lines.
func Snippet(text string) []Node {
	var nodes []Node
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		nodes = append(nodes, Line(l))
	}
	return nodes
}

// Num formats a coordinate with at most three decimals and no trailing
// zeros.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Ptr returns a pointer to v, for Move axes.
func Ptr(v float64) *float64 { return &v }

// MachineRapid is a G53 G0 move.
func MachineRapid(x, y, z *float64) Move {
	return Move{Machine: true, Rapid: true, X: x, Y: y, Z: z}
}

// MachineFeed is a G53 G1 move along Z.
func MachineFeed(z, feed float64) Move {
	return Move{Machine: true, Z: Ptr(z), Feed: feed}
}
