package settings

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the exported settings schema.
const SchemaID = "https://github.com/ormasoftchile/atcmacro/schemas/settings.json"

// Document describes the settings object as the host stores it. It exists
// to generate the JSON Schema; Normalize accepts anything.
type Document struct {
	ColletSize  string `json:"colletSize,omitempty"  jsonschema:"enum=ER11,enum=ER16,enum=ER20,enum=ER25,enum=ER32"`
	Model       string `json:"model,omitempty"       jsonschema:"enum=Basic,enum=Pro,enum=Premium"`
	Orientation string `json:"orientation,omitempty" jsonschema:"enum=X,enum=Y"`
	Direction   string `json:"direction,omitempty"   jsonschema:"enum=Positive,enum=Negative"`

	Pockets        int     `json:"pockets,omitempty"        jsonschema:"minimum=1,maximum=8"`
	PocketDistance float64 `json:"pocketDistance,omitempty" jsonschema:"description=Distance between adjacent pockets in mm"`
	ATCStartDelay  int     `json:"atcStartDelay,omitempty"  jsonschema:"minimum=0,maximum=10,description=Seconds to dwell before a tool change"`
	LoadRPM        int     `json:"loadRpm,omitempty"        jsonschema:"minimum=500,maximum=2000"`
	UnloadRPM      int     `json:"unloadRpm,omitempty"      jsonschema:"minimum=500,maximum=2000"`

	Pocket1    *Position `json:"pocket1,omitempty"`
	ToolSetter *Position `json:"toolSetter,omitempty"`
	ManualTool *Position `json:"manualTool,omitempty"`

	ZEngagement float64 `json:"zEngagement,omitempty"`
	ZSafe       float64 `json:"zSafe,omitempty"`
	ZSpinOff    float64 `json:"zSpinOff,omitempty"`
	ZRetreat    float64 `json:"zRetreat,omitempty"`
	ZProbeStart float64 `json:"zProbeStart,omitempty"`
	Zone1       float64 `json:"zone1,omitempty" jsonschema:"description=Machine Z of the first (tool present) sensor check"`
	Zone2       float64 `json:"zone2,omitempty" jsonschema:"description=Machine Z of the second (seat) sensor check"`

	EngageFeedrate float64 `json:"engageFeedrate,omitempty" jsonschema:"exclusiveMinimum=0"`
	SeekDistance   float64 `json:"seekDistance,omitempty"   jsonschema:"exclusiveMinimum=0"`
	SeekFeedrate   float64 `json:"seekFeedrate,omitempty"   jsonschema:"exclusiveMinimum=0"`

	ShowMacroCommand    bool `json:"showMacroCommand,omitempty"`
	PerformTLSAfterHome bool `json:"performTlsAfterHome,omitempty"`
	SpindleAtSpeed      bool `json:"spindleAtSpeed,omitempty"`
	AddProbe            bool `json:"addProbe,omitempty"`

	ToolSensor   string `json:"toolSensor,omitempty"   jsonschema:"pattern=^(Probe|Toolsetter|Probe/Toolsetter|Aux P[0-9]+)$"`
	TLSAuxOutput string `json:"tlsAuxOutput,omitempty" jsonschema:"pattern=^(Disabled|Flood|Mist|[0-9]|1[0-5])$"`

	ProbeLoadGcode      string `json:"probeLoadGcode,omitempty"`
	ProbeUnloadGcode    string `json:"probeUnloadGcode,omitempty"`
	PreToolChangeGcode  string `json:"preToolChangeGcode,omitempty"`
	PostToolChangeGcode string `json:"postToolChangeGcode,omitempty"`
	AbortEventGcode     string `json:"abortEventGcode,omitempty"`
}

// Position is the schema form of Point.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document for the
// settings object.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Document{})
	s.ID = SchemaID
	s.Title = "ATC macro settings"
	s.Description = "Tool changer settings consumed by the macro expansion engine"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal settings schema: %w", err)
	}
	return data, nil
}
