package settings

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_Empty(t *testing.T) {
	s := Normalize(nil)
	if s.ColletSize != ColletER20 {
		t.Errorf("colletSize = %q, want ER20", s.ColletSize)
	}
	if s.Orientation != OrientationY {
		t.Errorf("orientation = %q, want Y", s.Orientation)
	}
	if s.Direction != DirectionPositive {
		t.Errorf("direction = %q, want Positive", s.Direction)
	}
	if s.Pockets != 6 {
		t.Errorf("pockets = %d, want 6", s.Pockets)
	}
	if s.LoadRPM != 1200 || s.UnloadRPM != 1500 {
		t.Errorf("rpm = %d/%d, want 1200/1500", s.LoadRPM, s.UnloadRPM)
	}
	if s.ZRetreat != 7 {
		t.Errorf("zRetreat = %v, want 7", s.ZRetreat)
	}
	if s.ToolSensor != SensorProbe {
		t.Errorf("toolSensor = %q, want Probe", s.ToolSensor)
	}
	if s.TLSAuxOutput != AuxDisabled {
		t.Errorf("tlsAuxOutput = %q, want Disabled", s.TLSAuxOutput)
	}
}

func TestNormalize_UnknownEnumsFallBack(t *testing.T) {
	s := Normalize(map[string]any{
		"orientation": "Z",
		"direction":   42,
		"colletSize":  "ER99",
		"model":       "",
	})
	if s.Orientation != OrientationY {
		t.Errorf("orientation = %q, want Y", s.Orientation)
	}
	if s.Direction != DirectionPositive {
		t.Errorf("direction = %q", s.Direction)
	}
	if s.ColletSize != ColletER20 {
		t.Errorf("colletSize = %q", s.ColletSize)
	}
	if s.Model != ModelPro {
		t.Errorf("model = %q", s.Model)
	}
}

func TestNormalize_EnumsAreCaseInsensitive(t *testing.T) {
	s := Normalize(map[string]any{"orientation": "x", "direction": "negative", "colletSize": "er16"})
	if s.Orientation != OrientationX || s.Direction != DirectionNegative || s.ColletSize != ColletER16 {
		t.Errorf("got %q/%q/%q", s.Orientation, s.Direction, s.ColletSize)
	}
}

func TestNormalize_Clamping(t *testing.T) {
	s := Normalize(map[string]any{
		"pockets":       12,
		"atcStartDelay": -3,
		"loadRpm":       "100",
		"unloadRpm":     9000.0,
	})
	if s.Pockets != MaxPockets {
		t.Errorf("pockets = %d, want %d", s.Pockets, MaxPockets)
	}
	if s.ATCStartDelay != 0 {
		t.Errorf("atcStartDelay = %d, want 0", s.ATCStartDelay)
	}
	if s.LoadRPM != MinRPM {
		t.Errorf("loadRpm = %d, want %d", s.LoadRPM, MinRPM)
	}
	if s.UnloadRPM != MaxRPM {
		t.Errorf("unloadRpm = %d, want %d", s.UnloadRPM, MaxRPM)
	}
}

func TestNormalize_NaNFallsBack(t *testing.T) {
	s := Normalize(map[string]any{
		"pockets":        "lots",
		"pocketDistance": math.NaN(),
		"zSafe":          "abc",
		"seekFeedrate":   math.Inf(1),
	})
	if s.Pockets != 6 {
		t.Errorf("pockets = %d, want 6", s.Pockets)
	}
	if s.PocketDistance != 45 {
		t.Errorf("pocketDistance = %v, want 45", s.PocketDistance)
	}
	if s.ZSafe != 0 {
		t.Errorf("zSafe = %v", s.ZSafe)
	}
	if s.SeekFeedrate != 800 {
		t.Errorf("seekFeedrate = %v", s.SeekFeedrate)
	}
}

func TestNormalize_IntegersTruncate(t *testing.T) {
	s := Normalize(map[string]any{"pockets": "4.9", "atcStartDelay": json.Number("2.2")})
	if s.Pockets != 4 {
		t.Errorf("pockets = %d, want 4", s.Pockets)
	}
	if s.ATCStartDelay != 2 {
		t.Errorf("atcStartDelay = %d, want 2", s.ATCStartDelay)
	}
}

func TestNormalize_ColletDefaults(t *testing.T) {
	s := Normalize(map[string]any{"colletSize": "ER16"})
	if s.LoadRPM != 1600 || s.UnloadRPM != 2000 {
		t.Errorf("ER16 rpm = %d/%d, want 1600/2000", s.LoadRPM, s.UnloadRPM)
	}
	if s.ZRetreat != 17 {
		t.Errorf("ER16 zRetreat = %v, want 17", s.ZRetreat)
	}

	explicit := Normalize(map[string]any{"colletSize": "ER16", "loadRpm": 900, "zRetreat": 10})
	if explicit.LoadRPM != 900 {
		t.Errorf("explicit loadRpm = %d, want 900", explicit.LoadRPM)
	}
	if explicit.UnloadRPM != 2000 {
		t.Errorf("unloadRpm = %d, want collet default 2000", explicit.UnloadRPM)
	}
	if explicit.ZRetreat != 10 {
		t.Errorf("explicit zRetreat = %v, want 10", explicit.ZRetreat)
	}
}

func TestNormalize_Points(t *testing.T) {
	s := Normalize(map[string]any{
		"pocket1":    map[string]any{"x": "-250.5", "y": 12},
		"toolSetter": map[string]any{"X": 10},
		"manualTool": "nowhere",
	})
	if s.Pocket1 != (Point{X: -250.5, Y: 12}) {
		t.Errorf("pocket1 = %+v", s.Pocket1)
	}
	if s.ToolSetter != (Point{X: 10, Y: 0}) {
		t.Errorf("toolSetter = %+v", s.ToolSetter)
	}
	if s.ManualTool != (Point{}) {
		t.Errorf("manualTool = %+v", s.ManualTool)
	}
}

func TestNormalize_SensorAndAux(t *testing.T) {
	tests := []struct {
		sensor, wantSensor string
		aux, wantAux       string
	}{
		{"aux p3", "Aux P3", "3", "3"},
		{"Aux P03", "Aux P3", "flood", AuxFlood},
		{"probe/toolsetter", SensorProbeToolsetter, "Mist", AuxMist},
		{"Toolsetter", SensorToolsetter, "16", AuxDisabled},
		{"laser", SensorProbe, "relay", AuxDisabled},
	}
	for _, tt := range tests {
		s := Normalize(map[string]any{"toolSensor": tt.sensor, "tlsAuxOutput": tt.aux})
		if s.ToolSensor != tt.wantSensor {
			t.Errorf("toolSensor(%q) = %q, want %q", tt.sensor, s.ToolSensor, tt.wantSensor)
		}
		if s.TLSAuxOutput != tt.wantAux {
			t.Errorf("tlsAuxOutput(%q) = %q, want %q", tt.aux, s.TLSAuxOutput, tt.wantAux)
		}
	}
}

func TestNormalize_Booleans(t *testing.T) {
	s := Normalize(map[string]any{
		"showMacroCommand":    "true",
		"performTlsAfterHome": 1,
		"spindleAtSpeed":      "maybe",
		"addProbe":            true,
	})
	if !s.ShowMacroCommand || !s.PerformTLSAfterHome || s.SpindleAtSpeed || !s.AddProbe {
		t.Errorf("flags = %v %v %v %v", s.ShowMacroCommand, s.PerformTLSAfterHome, s.SpindleAtSpeed, s.AddProbe)
	}
}

func TestNormalize_KeysCaseInsensitive(t *testing.T) {
	s := Normalize(map[string]any{"POCKETS": 3, "colletsize": "ER25"})
	if s.Pockets != 3 || s.ColletSize != ColletER25 {
		t.Errorf("got pockets=%d collet=%q", s.Pockets, s.ColletSize)
	}
}

func TestNormalize_KeysDifferingOnlyInCase(t *testing.T) {
	raw := map[string]any{"pockets": 3, "Pockets": 5, "POCKETS": 7, "ColletSize": "ER11", "COLLETSIZE": "ER32"}
	for i := 0; i < 200; i++ {
		s := Normalize(raw)
		if s.Pockets != 3 {
			t.Fatalf("run %d: pockets = %d, want exact key value 3", i, s.Pockets)
		}
		// "COLLETSIZE" sorts before "ColletSize"
		if s.ColletSize != ColletER32 {
			t.Fatalf("run %d: colletSize = %q, want %q", i, s.ColletSize, ColletER32)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{"pockets": 99, "orientation": "q", "loadRpm": "x"},
		{"colletSize": "er16", "toolSensor": "aux p7", "pocket1": map[string]any{"x": 1.5}},
		{"preToolChangeGcode": "M7\r\nG4 P1", "tlsAuxOutput": "05", "direction": "Negative"},
	}
	for i, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once.Raw())
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d: normalize not idempotent:\n once  %+v\n twice %+v", i, once, twice)
		}
	}
}

func TestValidate_Warnings(t *testing.T) {
	errs := Validate(map[string]any{
		"pockets":     12,
		"orientation": "Z",
		"bogus":       true,
	})
	if len(errs) == 0 {
		t.Fatal("expected schema warnings")
	}
	for _, e := range errs {
		if e.Severity != "warning" {
			t.Errorf("severity = %q, want warning (%s)", e.Severity, e.Message)
		}
	}
	if HasErrors(errs) {
		t.Error("HasErrors = true for warnings only")
	}
}

func TestValidate_Clean(t *testing.T) {
	errs := Validate(Default().Raw())
	if len(errs) != 0 {
		t.Errorf("default settings should validate cleanly, got %v", errs)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{SchemaID, "colletSize", "ER16", "performTlsAfterHome"} {
		if !strings.Contains(s, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atc.yaml")
	content := `
colletSize: ER16
pockets: 4
pocket1:
  x: -200
  y: 15
orientation: X
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Pockets != 4 || s.ColletSize != ColletER16 || s.Orientation != OrientationX {
		t.Errorf("got %+v", s)
	}
	if s.Pocket1 != (Point{X: -200, Y: 15}) {
		t.Errorf("pocket1 = %+v", s.Pocket1)
	}
	if s.LoadRPM != 1600 {
		t.Errorf("loadRpm = %d, want collet default 1600", s.LoadRPM)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("ATCMACRO_POCKETS", "2")
	s, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Pockets != 2 {
		t.Errorf("pockets = %d, want 2 from environment", s.Pockets)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atc.yaml")
	if err := os.WriteFile(path, []byte("pockets: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, errs := ValidateFile(path)
	if raw == nil {
		t.Fatal("expected raw document")
	}
	if len(errs) != 1 || errs[0].Path != "pockets" {
		t.Errorf("errs = %v, want one warning at pockets", errs)
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository(map[string]any{"pockets": 3})
	if repo.Snapshot().Pockets != 3 {
		t.Fatalf("seeded pockets = %d", repo.Snapshot().Pockets)
	}
	snap := repo.Snapshot()
	saved := repo.Save(map[string]any{"pockets": 5})
	if saved.Pockets != 5 || repo.Snapshot().Pockets != 5 {
		t.Errorf("saved pockets = %d", repo.Snapshot().Pockets)
	}
	if snap.Pockets != 3 {
		t.Error("earlier snapshot changed after Save")
	}
}
