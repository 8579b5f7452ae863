// Package mcp exposes the macro engine as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with the atcmacro tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"atcmacro",
		version,
		server.WithToolCapabilities(true),
	)

	settingsArgs := []mcp.ToolOption{
		mcp.WithString("settings", mcp.Description("Settings as a JSON object (optional)")),
		mcp.WithString("settings_path", mcp.Description("Path to a YAML, JSON or TOML settings file (optional)")),
	}

	s.AddTool(
		mcp.NewTool("atcmacro/expand", append([]mcp.ToolOption{
			mcp.WithDescription("Expand the first trigger ($H, $TLS, $POCKET, M6 T<n>) in a G-code command stream"),
			mcp.WithString("commands", mcp.Required(), mcp.Description("G-code, one command per line")),
			mcp.WithNumber("current_tool", mcp.Description("Tool in the spindle (0 for none)")),
			mcp.WithString("units", mcp.Description("Units to restore: G20 or G21")),
			mcp.WithString("offsets_path", mcp.Description("Path to a tool offset table (optional)")),
		}, settingsArgs...)...),
		HandleExpand,
	)

	s.AddTool(
		mcp.NewTool("atcmacro/normalize", append([]mcp.ToolOption{
			mcp.WithDescription("Normalize settings, filling defaults and clamping ranges"),
		}, settingsArgs...)...),
		HandleNormalize,
	)

	s.AddTool(
		mcp.NewTool("atcmacro/validate",
			mcp.WithDescription("Report settings values that normalization would change"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the settings file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("atcmacro/simulate", append([]mcp.ToolOption{
			mcp.WithDescription("Dry-run the macro for a trigger against scripted sensor readings"),
			mcp.WithString("command", mcp.Required(), mcp.Description("Trigger command, e.g. M6 T3")),
			mcp.WithNumber("current_tool", mcp.Description("Tool in the spindle (0 for none)")),
			mcp.WithString("readings", mcp.Description("Comma-separated sensor readings, 1 triggered / 0 idle")),
			mcp.WithString("units", mcp.Description("Units to restore: G20 or G21")),
			mcp.WithString("offsets_path", mcp.Description("Path to a tool offset table (optional)")),
		}, settingsArgs...)...),
		HandleSimulate,
	)

	s.AddTool(
		mcp.NewTool("atcmacro/schema",
			mcp.WithDescription("Export the settings JSON Schema"),
		),
		HandleSchema,
	)

	return s
}
