package macro

import (
	"fmt"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// unloadPass spins the tool out of the spindle into its pocket once and
// lifts to the first check zone.
func (b *Builder) unloadPass(tool int) gcode.Block {
	s := b.s
	nodes := gcode.Block{
		rapidZ(s.ZSafe),
		rapidXY(PocketPosition(s, tool)),
		rapidZ(s.ZSpinOff),
	}
	nodes = append(nodes, b.spindle(fmt.Sprintf("M4 S%d", s.UnloadRPM))...)
	nodes = append(nodes,
		gcode.MachineFeed(s.ZEngagement, s.EngageFeedrate),
		gcode.MachineFeed(s.ZEngagement+s.ZRetreat, s.EngageFeedrate),
	)
	nodes = append(nodes, b.spindle("M5")...)
	return append(nodes, rapidZ(s.Zone1), settleDwell)
}

// Unload returns the routine that returns tool to the magazine. Tool 0
// yields nothing. Tools outside the magazine are removed by the operator.
//
// A magazine unload runs once and checks the sensor; if the tool is still
// detected it runs exactly once more, and a second detection stops for
// manual recovery.
func (b *Builder) Unload(tool int) []gcode.Node {
	switch {
	case tool <= 0:
		return nil
	case b.isProbeTool(tool):
		return append([]gcode.Node{describe("Unload probe T%d", tool)}, b.probeSwap(b.s.ProbeUnloadGcode, CodeProbeUnload)...)
	case !b.inMagazine(tool):
		return append([]gcode.Node{describe("Unload T%d manually", tool)}, b.failure(CodeManualUnload)...)
	}

	first := Check(b.sensor, b.blockID(), true)
	retry := Check(b.sensor, b.blockID(), true)
	retry.Then = b.failure(CodeUnloadFailed)

	first.Then = append([]gcode.Node{b.unloadPass(tool)}, b.sensor.Guard()...)
	first.Then = append(first.Then, retry)

	nodes := []gcode.Node{describe("Unload T%d", tool), b.unloadPass(tool)}
	nodes = append(nodes, b.sensor.Guard()...)
	return append(nodes, first)
}

// Load returns the routine that picks tool from the magazine and verifies
// it at two heights:
//
//	zone1 not triggered  -> nothing was picked up
//	zone2 triggered      -> the tool hangs low, it is not seated
//
// Only when neither holds does the routine fall through without a stop.
// The tool is declared active afterwards in every case, since a manual
// recovery leaves the requested tool in the spindle.
func (b *Builder) Load(tool int) []gcode.Node {
	switch {
	case tool <= 0:
		return nil
	case b.isProbeTool(tool):
		nodes := []gcode.Node{describe("Load probe T%d", tool)}
		nodes = append(nodes, b.probeSwap(b.s.ProbeLoadGcode, CodeProbeLoad)...)
		return append(nodes, activateTool(tool))
	case !b.inMagazine(tool):
		nodes := []gcode.Node{describe("Load T%d manually", tool)}
		nodes = append(nodes, b.failure(CodeManualLoad)...)
		return append(nodes, activateTool(tool))
	}

	s := b.s
	nodes := []gcode.Node{
		describe("Load T%d", tool),
		rapidZ(s.ZSafe),
		rapidXY(PocketPosition(s, tool)),
		rapidZ(s.ZSpinOff),
	}
	nodes = append(nodes, b.spindle(fmt.Sprintf("M3 S%d", s.LoadRPM))...)
	for i := 0; i < engageCycles; i++ {
		nodes = append(nodes,
			gcode.MachineFeed(s.ZEngagement, s.EngageFeedrate),
			gcode.MachineFeed(s.ZEngagement+s.ZRetreat, s.EngageFeedrate),
		)
	}
	nodes = append(nodes, b.spindle("M5")...)
	nodes = append(nodes, rapidZ(s.Zone1), settleDwell)
	nodes = append(nodes, b.sensor.Guard()...)

	picked := Check(b.sensor, b.blockID(), false)
	seated := Check(b.sensor, b.blockID(), true)
	picked.Then = b.failure(CodeLoadFailed)
	seated.Then = b.failure(CodeSeatFailed)

	picked.Else = []gcode.Node{rapidZ(s.Zone2), settleDwell}
	picked.Else = append(picked.Else, b.sensor.Guard()...)
	picked.Else = append(picked.Else, seated)

	return append(nodes, picked, activateTool(tool))
}

// TLS returns the tool length setter routine for a tool with the given
// offset. The measured length is applied with G43.1 and completion is
// signalled through #<_atc_tls_done>.
func (b *Builder) TLS(off offsets.Offset, units string) []gcode.Node {
	s := b.s
	nodes := []gcode.Node{
		describe("Tool length setter"),
		rapidZ(s.ZSafe),
		rapidXY(pointAdd(s.ToolSetter, off)),
		rapidZ(s.ZProbeStart),
	}
	if off.Z != 0 {
		nodes = append(nodes, gcode.Linef("G91 G0 Z%s", gcode.Num(-off.Z)), gcode.Line("G90"))
	}
	auxOn, auxOff := auxOutput(s.TLSAuxOutput)
	nodes = append(nodes, auxOn...)
	nodes = append(nodes,
		gcode.Linef("G38.2 G91 Z-%s F%s", gcode.Num(s.SeekDistance), gcode.Num(s.SeekFeedrate)),
		gcode.Line("G91 G0 Z2"),
		gcode.Linef("G38.2 G91 Z-4 F%s", gcode.Num(s.SeekFeedrate/10)),
		gcode.Line("G90"),
	)
	nodes = append(nodes, auxOff...)
	return append(nodes,
		// probe Z in work coordinates plus the active WCS Z offset
		gcode.Line("G43.1 Z[#5063 + #[5203 + [#5220 * 20]]]"),
		rapidZ(s.ZSafe),
		gcode.Line(Units(units)),
		gcode.Line("#<_atc_tls_done> = 1"),
	)
}

// auxOutput returns the instructions that switch the tool setter's
// auxiliary output (vacuum, air blast) on and off.
func auxOutput(sel string) (on, off []gcode.Node) {
	switch sel {
	case "", settings.AuxDisabled:
		return nil, nil
	case settings.AuxFlood:
		return []gcode.Node{gcode.Line("M8")}, []gcode.Node{gcode.Line("M9")}
	case settings.AuxMist:
		return []gcode.Node{gcode.Line("M7")}, []gcode.Node{gcode.Line("M9")}
	default:
		return []gcode.Node{gcode.Linef("M64 P%s", sel)}, []gcode.Node{gcode.Linef("M65 P%s", sel)}
	}
}
