package macro

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// Controller variables read by the generated conditions.
const (
	AuxInputRegister = "#5399"
	ProbeState       = "#<_probe_state>"
	ToolsetterState  = "#<_toolsetter_state>"
)

// SensorCheck builds the instructions that read the tool sensor and branch
// on its state. One strategy is selected per expansion from the configured
// sensor name.
type SensorCheck interface {
	// Guard returns the instructions that sample the sensor before a
	// condition is evaluated. It may be empty.
	Guard() []gcode.Node
	// Expression is the O-word condition that is true when the sensor's
	// triggered state equals triggered.
	Expression(triggered bool) string
}

// Check returns an IF block testing the sensor state, tagged with id. The
// caller fills in Then and Else.
func Check(sc SensorCheck, id int, triggered bool) gcode.Conditional {
	return gcode.Conditional{ID: id, Condition: sc.Expression(triggered)}
}

var auxSensor = regexp.MustCompile(`^Aux P(\d+)$`)

// NewSensorCheck selects the strategy for a normalized sensor name.
// Unrecognized names fall back to the probe input.
func NewSensorCheck(name string) SensorCheck {
	if m := auxSensor.FindStringSubmatch(name); m != nil {
		port, _ := strconv.Atoi(m[1])
		return AuxPort{Port: port}
	}
	switch name {
	case settings.SensorProbeToolsetter:
		return CombinedProbeToolsetter{}
	case settings.SensorToolsetter:
		return NamedState{Variable: ToolsetterState}
	default:
		return NamedState{Variable: ProbeState}
	}
}

// AuxPort samples an auxiliary digital input with M66 and branches on the
// result register.
type AuxPort struct {
	Port int
}

func (a AuxPort) Guard() []gcode.Node {
	return []gcode.Node{gcode.Linef("M66 P%d L0", a.Port)}
}

func (a AuxPort) Expression(triggered bool) string {
	return fmt.Sprintf("[%s EQ %d]", AuxInputRegister, state(triggered))
}

// CombinedProbeToolsetter treats the probe and tool setter inputs as one
// sensor: triggered when either is active, idle only when both are.
type CombinedProbeToolsetter struct{}

func (CombinedProbeToolsetter) Guard() []gcode.Node { return nil }

func (CombinedProbeToolsetter) Expression(triggered bool) string {
	if triggered {
		return fmt.Sprintf("[[%s EQ 1] OR [%s EQ 1]]", ProbeState, ToolsetterState)
	}
	return fmt.Sprintf("[[%s EQ 0] AND [%s EQ 0]]", ProbeState, ToolsetterState)
}

// NamedState branches directly on a controller state variable.
type NamedState struct {
	Variable string
}

func (NamedState) Guard() []gcode.Node { return nil }

func (n NamedState) Expression(triggered bool) string {
	return fmt.Sprintf("[%s EQ %d]", n.Variable, state(triggered))
}

func state(triggered bool) int {
	if triggered {
		return 1
	}
	return 0
}
