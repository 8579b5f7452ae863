package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/atcmacro/pkg/engine"
)

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func TestHandleExpand_MissingCommands(t *testing.T) {
	result := call(t, HandleExpand, map[string]any{})
	if !result.IsError {
		t.Error("expected error for missing commands")
	}
}

func TestHandleExpand(t *testing.T) {
	result := call(t, HandleExpand, map[string]any{
		"commands":     "G21\nM6 T2\nG0 X0",
		"current_tool": float64(1),
		"settings":     `{"pockets": 4, "showMacroCommand": true}`,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	var cmds []engine.Command
	if err := json.Unmarshal([]byte(text(t, result)), &cmds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmds[0].Command != "G21" || cmds[len(cmds)-1].Command != "G0 X0" {
		t.Errorf("untouched entries moved: first=%q last=%q", cmds[0].Command, cmds[len(cmds)-1].Command)
	}
	joined := strings.Join(engine.Texts(cmds), "\n")
	if !strings.Contains(joined, "(ATC T1 -> T2)") || !strings.Contains(joined, "M61 Q2") {
		t.Errorf("expansion missing:\n%s", joined)
	}
}

func TestHandleExpand_BadSettings(t *testing.T) {
	result := call(t, HandleExpand, map[string]any{"commands": "M6 T1", "settings": "[1,2]"})
	if !result.IsError {
		t.Error("expected error for non-object settings")
	}
}

func TestHandleExpand_OffsetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offsets.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  \"1\": {x: 0, y: 0, z: 2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := call(t, HandleExpand, map[string]any{
		"commands":     "$TLS",
		"current_tool": float64(1),
		"offsets_path": path,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	if !strings.Contains(text(t, result), "G91 G0 Z-2") {
		t.Error("offset approach missing")
	}
}

func TestHandleNormalize(t *testing.T) {
	result := call(t, HandleNormalize, map[string]any{"settings": `{"pockets": 42, "colletSize": "ER16"}`})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text(t, result)), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["pockets"] != float64(8) {
		t.Errorf("pockets = %v, want 8", raw["pockets"])
	}
	if raw["loadRpm"] != float64(1600) {
		t.Errorf("loadRpm = %v, want 1600", raw["loadRpm"])
	}
}

func TestHandleValidate(t *testing.T) {
	if result := call(t, HandleValidate, map[string]any{}); !result.IsError {
		t.Error("expected error for missing path")
	}
	if result := call(t, HandleValidate, map[string]any{"path": "/nonexistent/settings.yaml"}); !result.IsError {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("pockets: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := call(t, HandleValidate, map[string]any{"path": path})
	if result.IsError {
		t.Fatalf("warnings should not be errors: %s", text(t, result))
	}
	if !strings.Contains(text(t, result), "1 warning") {
		t.Errorf("text = %q", text(t, result))
	}
}

func TestHandleSimulate(t *testing.T) {
	result := call(t, HandleSimulate, map[string]any{
		"command":  "M6 T2",
		"readings": "0",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text(t, result)), &out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "recovered" {
		t.Errorf("status = %v", out["status"])
	}
	markers, _ := out["markers"].([]any)
	if len(markers) != 1 || markers[0] != "(MSG, ATC:LOAD_FAILED)" {
		t.Errorf("markers = %v", out["markers"])
	}

	if result := call(t, HandleSimulate, map[string]any{"command": "G0 X1"}); !result.IsError {
		t.Error("expected error for non-trigger")
	}
	if result := call(t, HandleSimulate, map[string]any{"command": "M6 T1", "readings": "x"}); !result.IsError {
		t.Error("expected error for bad readings")
	}
}

func TestHandleSimulate_MatchesExpand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offsets.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  \"1\": {x: 0, y: 0, z: 2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := call(t, HandleSimulate, map[string]any{
		"command":      "$TLS",
		"current_tool": float64(1),
		"units":        "G20",
		"offsets_path": path,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}
	var out struct {
		Executed []string `json:"executed"`
	}
	if err := json.Unmarshal([]byte(text(t, result)), &out); err != nil {
		t.Fatal(err)
	}
	executed := strings.Join(out.Executed, "\n")
	for _, want := range []string{"G91 G0 Z-2", "G20"} {
		if !strings.Contains(executed, want) {
			t.Errorf("executed missing %q:\n%s", want, executed)
		}
	}

	// $H only expands when performTlsAfterHome is set, as in expand
	if result := call(t, HandleSimulate, map[string]any{"command": "$H"}); !result.IsError {
		t.Error("expected $H to be rejected without performTlsAfterHome")
	}
	result = call(t, HandleSimulate, map[string]any{
		"command":      "$H",
		"current_tool": float64(1),
		"settings":     `{"performTlsAfterHome": true}`,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", text(t, result))
	}

	if result := call(t, HandleSimulate, map[string]any{"command": "$TLS", "offsets_path": filepath.Join(t.TempDir(), "missing.yaml")}); !result.IsError {
		t.Error("expected error for missing offsets file")
	}
}

func TestHandleSchema(t *testing.T) {
	result := call(t, HandleSchema, map[string]any{})
	if result.IsError {
		t.Fatal("expected success")
	}
	if !strings.Contains(text(t, result), "pocketDistance") {
		t.Error("schema missing pocketDistance")
	}
}

func TestNewServer(t *testing.T) {
	if s := NewServer("test"); s == nil {
		t.Fatal("NewServer returned nil")
	}
}
