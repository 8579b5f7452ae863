// Package settings defines the tool-changer configuration record and the
// normalizer that turns arbitrary host input into it.
package settings

// Collet sizes.
const (
	ColletER11 = "ER11"
	ColletER16 = "ER16"
	ColletER20 = "ER20"
	ColletER25 = "ER25"
	ColletER32 = "ER32"
)

// Magazine models.
const (
	ModelBasic   = "Basic"
	ModelPro     = "Pro"
	ModelPremium = "Premium"
)

// Magazine axis and direction.
const (
	OrientationX      = "X"
	OrientationY      = "Y"
	DirectionPositive = "Positive"
	DirectionNegative = "Negative"
)

// Named tool sensors. Auxiliary inputs are written "Aux P<n>".
const (
	SensorProbe           = "Probe"
	SensorToolsetter      = "Toolsetter"
	SensorProbeToolsetter = "Probe/Toolsetter"
)

// Auxiliary output selectors for the tool length setter. A numeric string
// selects an aux output pin.
const (
	AuxDisabled = "Disabled"
	AuxFlood    = "Flood"
	AuxMist     = "Mist"
)

// Point is an X/Y pair in machine coordinates.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Settings is the canonical, always-valid configuration snapshot. It is
// produced by Normalize and never mutated afterwards.
type Settings struct {
	ColletSize  string `yaml:"colletSize"  json:"colletSize"`
	Model       string `yaml:"model"       json:"model"`
	Orientation string `yaml:"orientation" json:"orientation"`
	Direction   string `yaml:"direction"   json:"direction"`

	Pockets        int     `yaml:"pockets"        json:"pockets"`
	PocketDistance float64 `yaml:"pocketDistance" json:"pocketDistance"`
	ATCStartDelay  int     `yaml:"atcStartDelay"  json:"atcStartDelay"`
	LoadRPM        int     `yaml:"loadRpm"        json:"loadRpm"`
	UnloadRPM      int     `yaml:"unloadRpm"      json:"unloadRpm"`

	Pocket1    Point `yaml:"pocket1"    json:"pocket1"`
	ToolSetter Point `yaml:"toolSetter" json:"toolSetter"`
	ManualTool Point `yaml:"manualTool" json:"manualTool"`

	ZEngagement float64 `yaml:"zEngagement" json:"zEngagement"`
	ZSafe       float64 `yaml:"zSafe"       json:"zSafe"`
	ZSpinOff    float64 `yaml:"zSpinOff"    json:"zSpinOff"`
	ZRetreat    float64 `yaml:"zRetreat"    json:"zRetreat"`
	ZProbeStart float64 `yaml:"zProbeStart" json:"zProbeStart"`
	Zone1       float64 `yaml:"zone1"       json:"zone1"`
	Zone2       float64 `yaml:"zone2"       json:"zone2"`

	EngageFeedrate float64 `yaml:"engageFeedrate" json:"engageFeedrate"`
	SeekDistance   float64 `yaml:"seekDistance"   json:"seekDistance"`
	SeekFeedrate   float64 `yaml:"seekFeedrate"   json:"seekFeedrate"`

	ShowMacroCommand    bool `yaml:"showMacroCommand"    json:"showMacroCommand"`
	PerformTLSAfterHome bool `yaml:"performTlsAfterHome" json:"performTlsAfterHome"`
	SpindleAtSpeed      bool `yaml:"spindleAtSpeed"      json:"spindleAtSpeed"`
	// AddProbe asks the host to list tool 99; macro generation ignores it.
	AddProbe            bool `yaml:"addProbe"            json:"addProbe"`

	ToolSensor   string `yaml:"toolSensor"   json:"toolSensor"`
	TLSAuxOutput string `yaml:"tlsAuxOutput" json:"tlsAuxOutput"`

	ProbeLoadGcode      string `yaml:"probeLoadGcode"      json:"probeLoadGcode"`
	ProbeUnloadGcode    string `yaml:"probeUnloadGcode"    json:"probeUnloadGcode"`
	PreToolChangeGcode  string `yaml:"preToolChangeGcode"  json:"preToolChangeGcode"`
	PostToolChangeGcode string `yaml:"postToolChangeGcode" json:"postToolChangeGcode"`
	AbortEventGcode     string `yaml:"abortEventGcode"     json:"abortEventGcode"`
}

// Default returns the settings produced from an empty input.
func Default() Settings {
	return Normalize(nil)
}

// Raw returns the settings as a generic map keyed like the host's settings
// object. Normalize(s.Raw()) == s for any normalized s.
func (s Settings) Raw() map[string]any {
	point := func(p Point) map[string]any {
		return map[string]any{"x": p.X, "y": p.Y}
	}
	return map[string]any{
		"colletSize":          s.ColletSize,
		"model":               s.Model,
		"orientation":         s.Orientation,
		"direction":           s.Direction,
		"pockets":             s.Pockets,
		"pocketDistance":      s.PocketDistance,
		"atcStartDelay":       s.ATCStartDelay,
		"loadRpm":             s.LoadRPM,
		"unloadRpm":           s.UnloadRPM,
		"pocket1":             point(s.Pocket1),
		"toolSetter":          point(s.ToolSetter),
		"manualTool":          point(s.ManualTool),
		"zEngagement":         s.ZEngagement,
		"zSafe":               s.ZSafe,
		"zSpinOff":            s.ZSpinOff,
		"zRetreat":            s.ZRetreat,
		"zProbeStart":         s.ZProbeStart,
		"zone1":               s.Zone1,
		"zone2":               s.Zone2,
		"engageFeedrate":      s.EngageFeedrate,
		"seekDistance":        s.SeekDistance,
		"seekFeedrate":        s.SeekFeedrate,
		"showMacroCommand":    s.ShowMacroCommand,
		"performTlsAfterHome": s.PerformTLSAfterHome,
		"spindleAtSpeed":      s.SpindleAtSpeed,
		"addProbe":            s.AddProbe,
		"toolSensor":          s.ToolSensor,
		"tlsAuxOutput":        s.TLSAuxOutput,
		"probeLoadGcode":      s.ProbeLoadGcode,
		"probeUnloadGcode":    s.ProbeUnloadGcode,
		"preToolChangeGcode":  s.PreToolChangeGcode,
		"postToolChangeGcode": s.PostToolChangeGcode,
		"abortEventGcode":     s.AbortEventGcode,
	}
}

// Keys lists every recognized settings key in the host's spelling.
var Keys = []string{
	"colletSize", "model", "orientation", "direction",
	"pockets", "pocketDistance", "atcStartDelay", "loadRpm", "unloadRpm",
	"pocket1", "toolSetter", "manualTool",
	"zEngagement", "zSafe", "zSpinOff", "zRetreat", "zProbeStart", "zone1", "zone2",
	"engageFeedrate", "seekDistance", "seekFeedrate",
	"showMacroCommand", "performTlsAfterHome", "spindleAtSpeed", "addProbe",
	"toolSensor", "tlsAuxOutput",
	"probeLoadGcode", "probeUnloadGcode", "preToolChangeGcode", "postToolChangeGcode", "abortEventGcode",
}
