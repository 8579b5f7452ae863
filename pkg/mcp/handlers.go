package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/atcmacro/pkg/dryrun"
	"github.com/ormasoftchile/atcmacro/pkg/engine"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// HandleExpand implements the atcmacro/expand tool.
func HandleExpand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["commands"].(string)
	if strings.TrimSpace(text) == "" {
		return errorResult("commands argument is required"), nil
	}
	s, err := settingsArg(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	cmds, err := engine.ReadCommands(strings.NewReader(text))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	mctx, err := contextArg(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(engine.Process(cmds, mctx, s))
}

// HandleNormalize implements the atcmacro/normalize tool.
func HandleNormalize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := settingsArg(req.GetArguments())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(s.Raw())
}

// HandleValidate implements the atcmacro/validate tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _ := req.GetArguments()["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	_, errs := settings.ValidateFile(path)
	if settings.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	if len(errs) > 0 {
		return textResult(fmt.Sprintf("✓ %s loads with %d warning(s)\n%s", path, len(errs), formatErrors(errs))), nil
	}
	return textResult(fmt.Sprintf("✓ %s is valid", path)), nil
}

// HandleSimulate implements the atcmacro/simulate tool.
func HandleSimulate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	command, _ := args["command"].(string)
	if command == "" {
		return errorResult("command argument is required"), nil
	}
	s, err := settingsArg(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	readings, err := dryrun.ParseReadings(stringArg(args, "readings"))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	mctx, err := contextArg(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	m, ok := engine.Scan([]engine.Command{engine.Original(command)}, s.PerformTLSAfterHome)
	if !ok {
		return errorResult(fmt.Sprintf("%q is not a trigger", command)), nil
	}
	lines := engine.Expand(m, mctx, s)
	res, err := dryrun.Run(lines, dryrun.Machine{CurrentTool: mctx.CurrentTool, Readings: readings})
	if err != nil {
		return errorResult(err.Error()), nil
	}

	markers := make([]string, len(res.Markers))
	for i, mk := range res.Markers {
		markers[i] = mk.String()
	}
	return jsonResult(map[string]any{
		"status":        res.Status(),
		"active_tool":   res.ActiveTool,
		"markers":       markers,
		"pauses":        res.Pauses,
		"tls_done":      res.TLSDone,
		"readings_used": res.ReadingsUsed,
		"executed":      res.Executed,
	})
}

// HandleSchema implements the atcmacro/schema tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := settings.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// settingsArg resolves settings from an inline JSON object or a file. With
// neither, defaults apply.
func settingsArg(args map[string]any) (settings.Settings, error) {
	if path := stringArg(args, "settings_path"); path != "" {
		return settings.LoadFile(path)
	}
	raw := map[string]any{}
	if inline := stringArg(args, "settings"); strings.TrimSpace(inline) != "" {
		if err := json.Unmarshal([]byte(inline), &raw); err != nil {
			return settings.Settings{}, fmt.Errorf("settings is not a JSON object: %w", err)
		}
	}
	return settings.Normalize(raw), nil
}

// contextArg builds the machine context shared by the expand and simulate
// tools.
func contextArg(args map[string]any) (engine.Context, error) {
	mctx := engine.Context{
		CurrentTool: intArg(args, "current_tool"),
		Units:       stringArg(args, "units"),
	}
	if path := stringArg(args, "offsets_path"); path != "" {
		table, err := offsets.LoadFile(path)
		if err != nil {
			return engine.Context{}, err
		}
		mctx.Offsets = table
	}
	return mctx, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func formatErrors(errs []*settings.ValidationError) string {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "%s: %s\n", e.Severity, e.Error())
	}
	return b.String()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
