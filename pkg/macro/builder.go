// Package macro builds the tool-change, tool-length-setter, home and pocket
// programs that replace trigger commands. Builders are pure: they read a
// settings snapshot and return gcode nodes, and every sensor outcome is
// compiled into the program as a conditional branch for the controller to
// resolve.
package macro

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// ProbeTool is the reserved tool number for the touch probe.
const ProbeTool = 99

// FirstBlockID is the first O-word number allocated in a program.
const FirstBlockID = 100

const (
	waitForSpeed gcode.Line = "G4 P2"
	settleDwell  gcode.Line = "G4 P0.2"
	engageCycles            = 3
)

// Builder assembles routines for one program. Block ids are unique within
// the builder, so one builder must not be shared between programs that are
// concatenated unless the ids should keep counting.
type Builder struct {
	s      settings.Settings
	sensor SensorCheck
	nextID int
}

// NewBuilder returns a builder over a settings snapshot.
func NewBuilder(s settings.Settings) *Builder {
	return &Builder{
		s:      s,
		sensor: NewSensorCheck(s.ToolSensor),
		nextID: FirstBlockID,
	}
}

// Settings returns the snapshot the builder reads.
func (b *Builder) Settings() settings.Settings { return b.s }

func (b *Builder) blockID() int {
	id := b.nextID
	b.nextID++
	return id
}

// spindle wraps a spindle command with wait-for-speed dwells unless the
// controller monitors spindle speed itself.
func (b *Builder) spindle(cmd string) []gcode.Node {
	if b.s.SpindleAtSpeed {
		return []gcode.Node{gcode.Line(cmd)}
	}
	return []gcode.Node{waitForSpeed, gcode.Line(cmd), waitForSpeed}
}

func (b *Builder) isProbeTool(tool int) bool {
	return tool == ProbeTool
}

// inMagazine reports whether tool lives in an automated pocket.
func (b *Builder) inMagazine(tool int) bool {
	return tool >= 1 && tool <= b.s.Pockets
}

func rapidZ(z float64) gcode.Node {
	return gcode.MachineRapid(nil, nil, gcode.Ptr(z))
}

func rapidXY(p settings.Point) gcode.Node {
	return gcode.MachineRapid(gcode.Ptr(p.X), gcode.Ptr(p.Y), nil)
}

// ManualFallback parks the spindle at the manual tool position and pauses
// for the operator. Continuing resumes the program; aborting is handled by
// the controller and the host's recovery dialog.
func (b *Builder) ManualFallback() gcode.Block {
	return gcode.Block{
		rapidZ(b.s.ZSafe),
		rapidXY(b.s.ManualTool),
		gcode.Line("M0"),
	}
}

// failure emits the operator marker for code followed by the manual
// fallback.
func (b *Builder) failure(code string) []gcode.Node {
	return []gcode.Node{Marker(code), b.ManualFallback()}
}

// probeSwap runs the user's probe snippet, or falls back to a manual swap
// when none is configured.
func (b *Builder) probeSwap(snippet, code string) []gcode.Node {
	if strings.TrimSpace(snippet) != "" {
		return gcode.Snippet(snippet)
	}
	return b.failure(code)
}

func activateTool(tool int) gcode.Node {
	return gcode.Linef("M61 Q%d", tool)
}

// Units returns the modal units word to restore, defaulting to millimetres.
func Units(u string) string {
	if strings.EqualFold(strings.TrimSpace(u), "G20") {
		return "G20"
	}
	return "G21"
}

func describe(format string, args ...any) gcode.Node {
	return gcode.Comment(fmt.Sprintf(format, args...))
}
