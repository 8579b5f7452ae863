package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Bounds for the clamped integer fields.
const (
	MinPockets       = 1
	MaxPockets       = 8
	MinStartDelay    = 0
	MaxStartDelay    = 10
	MinRPM           = 500
	MaxRPM           = 2000
	MaxAuxOutputPin  = 15
	defaultPockets   = 6
	defaultPocketGap = 45
)

var (
	colletSizes  = []string{ColletER11, ColletER16, ColletER20, ColletER25, ColletER32}
	models       = []string{ModelBasic, ModelPro, ModelPremium}
	orientations = []string{OrientationX, OrientationY}
	directions   = []string{DirectionPositive, DirectionNegative}
	namedSensors = []string{SensorProbe, SensorToolsetter, SensorProbeToolsetter}
	auxTokens    = []string{AuxDisabled, AuxFlood, AuxMist}

	auxSensorPattern = regexp.MustCompile(`(?i)^aux\s*p(\d+)$`)
	auxPinPattern    = regexp.MustCompile(`^\d+$`)
)

// colletDefaults returns the spindle speeds and retreat distance a collet
// size implies when the caller does not override them.
func colletDefaults(collet string) (load, unload int, retreat float64) {
	if collet == ColletER16 {
		return 1600, 2000, 17
	}
	return 1200, 1500, 7
}

// Normalize converts an arbitrary, possibly partial settings object into a
// complete Settings value. It never fails: every missing or malformed field
// falls back to its default and bounded fields are clamped.
func Normalize(raw map[string]any) Settings {
	f := fold(raw)

	var s Settings
	s.ColletSize = f.choice("colletSize", colletSizes, ColletER20)
	s.Model = f.choice("model", models, ModelPro)
	s.Orientation = f.choice("orientation", orientations, OrientationY)
	s.Direction = f.choice("direction", directions, DirectionPositive)

	s.Pockets = f.integer("pockets", defaultPockets, MinPockets, MaxPockets)
	s.PocketDistance = f.number("pocketDistance", defaultPocketGap)
	s.ATCStartDelay = f.integer("atcStartDelay", 0, MinStartDelay, MaxStartDelay)

	load, unload, retreat := colletDefaults(s.ColletSize)
	s.LoadRPM = f.integer("loadRpm", load, MinRPM, MaxRPM)
	s.UnloadRPM = f.integer("unloadRpm", unload, MinRPM, MaxRPM)

	s.Pocket1 = f.point("pocket1", Point{})
	s.ToolSetter = f.point("toolSetter", Point{})
	s.ManualTool = f.point("manualTool", Point{})

	s.ZEngagement = f.number("zEngagement", -50)
	s.ZSafe = f.number("zSafe", 0)
	s.ZSpinOff = f.number("zSpinOff", -25)
	s.ZRetreat = f.number("zRetreat", retreat)
	s.ZProbeStart = f.number("zProbeStart", -10)
	s.Zone1 = f.number("zone1", -31)
	s.Zone2 = f.number("zone2", -23)

	s.EngageFeedrate = f.number("engageFeedrate", 3500)
	s.SeekDistance = f.number("seekDistance", 50)
	s.SeekFeedrate = f.number("seekFeedrate", 800)

	s.ShowMacroCommand = f.boolean("showMacroCommand", false)
	s.PerformTLSAfterHome = f.boolean("performTlsAfterHome", false)
	s.SpindleAtSpeed = f.boolean("spindleAtSpeed", false)
	s.AddProbe = f.boolean("addProbe", false)

	s.ToolSensor = normalizeSensor(f.text("toolSensor"))
	s.TLSAuxOutput = normalizeAuxOutput(f.text("tlsAuxOutput"))

	s.ProbeLoadGcode = f.snippet("probeLoadGcode")
	s.ProbeUnloadGcode = f.snippet("probeUnloadGcode")
	s.PreToolChangeGcode = f.snippet("preToolChangeGcode")
	s.PostToolChangeGcode = f.snippet("postToolChangeGcode")
	s.AbortEventGcode = f.snippet("abortEventGcode")
	return s
}

func normalizeSensor(v string) string {
	v = strings.TrimSpace(v)
	if m := auxSensorPattern.FindStringSubmatch(v); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return fmt.Sprintf("Aux P%d", n)
		}
	}
	if c, ok := matchChoice(v, namedSensors); ok {
		return c
	}
	return SensorProbe
}

func normalizeAuxOutput(v string) string {
	v = strings.TrimSpace(v)
	if auxPinPattern.MatchString(v) {
		n, err := strconv.Atoi(v)
		if err == nil && n <= MaxAuxOutputPin {
			return strconv.Itoa(n)
		}
		return AuxDisabled
	}
	if c, ok := matchChoice(v, auxTokens); ok {
		return c
	}
	return AuxDisabled
}

func matchChoice(v string, choices []string) (string, bool) {
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, true
		}
	}
	return "", false
}

// folded is a settings object looked up case-insensitively, so that sources
// which do not preserve key case (environment, viper) still match. An exact
// key wins over a folded one; among keys that fold alike the lowest in
// sort order wins.
type folded struct {
	exact map[string]any
	lower map[string]any
}

func fold(raw map[string]any) folded {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := folded{exact: raw, lower: make(map[string]any, len(raw))}
	for _, k := range keys {
		lk := strings.ToLower(k)
		if _, seen := f.lower[lk]; !seen {
			f.lower[lk] = raw[k]
		}
	}
	return f
}

func (f folded) get(key string) (any, bool) {
	v, ok := f.exact[key]
	if !ok {
		v, ok = f.lower[strings.ToLower(key)]
	}
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (f folded) text(key string) string {
	v, ok := f.get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (f folded) snippet(key string) string {
	return strings.ReplaceAll(f.text(key), "\r\n", "\n")
}

func (f folded) choice(key string, choices []string, fallback string) string {
	if c, ok := matchChoice(strings.TrimSpace(f.text(key)), choices); ok {
		return c
	}
	return fallback
}

func (f folded) number(key string, fallback float64) float64 {
	v, ok := f.get(key)
	if !ok {
		return fallback
	}
	n, ok := toFloat(v)
	if !ok {
		return fallback
	}
	return n
}

func (f folded) integer(key string, fallback, lo, hi int) int {
	n := f.number(key, math.NaN())
	if math.IsNaN(n) {
		return clampInt(fallback, lo, hi)
	}
	n = math.Trunc(n)
	if n < float64(lo) {
		return lo
	}
	if n > float64(hi) {
		return hi
	}
	return int(n)
}

func (f folded) boolean(key string, fallback bool) bool {
	v, ok := f.get(key)
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return fallback
		}
		return parsed
	}
	if n, ok := toFloat(v); ok {
		return n != 0
	}
	return fallback
}

func (f folded) point(key string, fallback Point) Point {
	v, ok := f.get(key)
	if !ok {
		return fallback
	}
	var sub folded
	switch p := v.(type) {
	case Point:
		return p
	case *Point:
		if p == nil {
			return fallback
		}
		return *p
	case map[string]any:
		sub = fold(p)
	case map[any]any:
		m := make(map[string]any, len(p))
		for k, val := range p {
			m[fmt.Sprint(k)] = val
		}
		sub = fold(m)
	default:
		return fallback
	}
	return Point{
		X: sub.number("x", fallback.X),
		Y: sub.number("y", fallback.Y),
	}
}

// toFloat accepts every numeric representation a decoded settings object
// may carry. Non-finite results are treated as unparseable.
func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case int32:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint64:
		n = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
