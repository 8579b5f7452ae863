package macro

import (
	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// HomeGuard is true when no tool length offset is active and a tool is
// loaded, which only holds for the first home after the controller starts.
const HomeGuard = "[[#5403 EQ 0] AND [#<_current_tool> NE 0]]"

// ToolChange is a complete tool-change program, kept in sections so each
// can be inspected on its own.
type ToolChange struct {
	Current int
	Target  int

	Preamble []gcode.Node
	Unload   []gcode.Node
	Load     []gcode.Node
	TLS      []gcode.Node
	Finish   []gcode.Node
}

// Nodes returns the sections in execution order.
func (p ToolChange) Nodes() []gcode.Node {
	var nodes []gcode.Node
	for _, section := range [][]gcode.Node{p.Preamble, p.Unload, p.Load, p.TLS, p.Finish} {
		nodes = append(nodes, section...)
	}
	return nodes
}

// Lines renders the program as formatted instruction lines.
func (p ToolChange) Lines() []string {
	return gcode.Render(p.Nodes())
}

// BuildToolChange builds the program that swaps current for target. It is
// emitted even when current == target; skipping a same-tool change is the
// host's decision. The TLS section measures the target tool with its own
// offset whenever a tool ends up in the spindle.
func BuildToolChange(s settings.Settings, current, target int, table offsets.Provider, units string) ToolChange {
	b := NewBuilder(s)
	p := ToolChange{Current: current, Target: target}

	p.Preamble = []gcode.Node{describe("ATC T%d -> T%d", current, target)}
	if s.ATCStartDelay > 0 {
		p.Preamble = append(p.Preamble, gcode.Linef("G4 P%d", s.ATCStartDelay))
	}
	p.Preamble = append(p.Preamble, gcode.Snippet(s.PreToolChangeGcode)...)
	p.Preamble = append(p.Preamble, gcode.Line("G21"))
	p.Preamble = append(p.Preamble, b.spindle("M5")...)

	p.Unload = b.Unload(current)
	p.Load = b.Load(target)
	if target > 0 {
		p.TLS = b.TLS(offsets.Lookup(table, target), units)
	}

	p.Finish = []gcode.Node{rapidZ(s.ZSafe), gcode.Line(Units(units))}
	if target <= 0 {
		p.Finish = append(p.Finish, activateTool(0))
	}
	p.Finish = append(p.Finish, gcode.Snippet(s.PostToolChangeGcode)...)
	return p
}

// BuildTLS builds the standalone tool length setter program for the tool
// currently in the spindle.
func BuildTLS(s settings.Settings, tool int, table offsets.Provider, units string) []gcode.Node {
	b := NewBuilder(s)
	nodes := []gcode.Node{describe("TLS T%d", tool), gcode.Line("G21")}
	return append(nodes, b.TLS(offsets.Lookup(table, tool), units)...)
}

// BuildHome builds the home program that measures the loaded tool after
// the first home of a session.
func BuildHome(s settings.Settings, tool int, table offsets.Provider, units string) []gcode.Node {
	b := NewBuilder(s)
	guard := gcode.Conditional{ID: b.blockID(), Condition: HomeGuard}
	guard.Then = append([]gcode.Node{gcode.Line("G21")}, b.TLS(offsets.Lookup(table, tool), units)...)
	return []gcode.Node{gcode.Line("$H"), guard}
}

// BuildPocketMove moves to the given pocket at safe height. Pocket numbers
// are clamped to the magazine.
func BuildPocketMove(s settings.Settings, pocket int, units string) []gcode.Node {
	if pocket < 1 {
		pocket = 1
	}
	if pocket > s.Pockets {
		pocket = s.Pockets
	}
	return []gcode.Node{
		describe("Pocket %d", pocket),
		gcode.Line("G21"),
		rapidZ(s.ZSafe),
		rapidXY(PocketPosition(s, pocket)),
		gcode.Line(Units(units)),
	}
}

// BuildAbort is what the host sends when the operator aborts a manual
// recovery: stop the spindle, run the user's abort snippet, clear Z.
func BuildAbort(s settings.Settings) []gcode.Node {
	b := NewBuilder(s)
	nodes := []gcode.Node{describe("ATC abort")}
	nodes = append(nodes, b.spindle("M5")...)
	nodes = append(nodes, gcode.Snippet(s.AbortEventGcode)...)
	return append(nodes, rapidZ(s.ZSafe))
}
