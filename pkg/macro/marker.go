package macro

import (
	"regexp"

	"github.com/ormasoftchile/atcmacro/pkg/gcode"
)

// MarkerNamespace prefixes every operator marker this engine emits.
const MarkerNamespace = "ATC"

// Marker codes. The host's dialog layer matches these to show recovery UI.
const (
	CodeUnloadFailed = "UNLOAD_FAILED"
	CodeLoadFailed   = "LOAD_FAILED"
	CodeSeatFailed   = "SEAT_FAILED"
	CodeManualUnload = "MANUAL_UNLOAD"
	CodeManualLoad   = "MANUAL_LOAD"
	CodeProbeUnload  = "PROBE_UNLOAD"
	CodeProbeLoad    = "PROBE_LOAD"
)

var markerPattern = regexp.MustCompile(`^\s*\(MSG,\s*([A-Za-z0-9_]+):([A-Za-z0-9_]+)\)\s*$`)

// Marker returns the message node for code.
func Marker(code string) gcode.Message {
	return gcode.Message{Namespace: MarkerNamespace, Code: code}
}

// ParseMarker extracts the namespace and code from a marker line.
func ParseMarker(line string) (gcode.Message, bool) {
	m := markerPattern.FindStringSubmatch(line)
	if m == nil {
		return gcode.Message{}, false
	}
	return gcode.Message{Namespace: m[1], Code: m[2]}, true
}
