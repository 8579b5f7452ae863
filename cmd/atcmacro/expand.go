package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/atcmacro/pkg/engine"
	"github.com/ormasoftchile/atcmacro/pkg/logger"
	"github.com/ormasoftchile/atcmacro/pkg/render"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

var (
	expandTool  int
	expandUnits string
	expandAll   bool
	expandTable bool
	expandColor bool
	expandJSON  bool
)

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Expand trigger commands in a G-code or command-list file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().IntVarP(&expandTool, "tool", "t", 0, "Tool in the spindle before the stream runs")
	expandCmd.Flags().StringVar(&expandUnits, "units", "G21", "Units to restore after a macro: G20 or G21")
	expandCmd.Flags().BoolVar(&expandAll, "all", false, "Expand every trigger, tracking the tool across changes")
	expandCmd.Flags().BoolVar(&expandTable, "table", false, "Show entries as a table with display text and flags")
	expandCmd.Flags().BoolVar(&expandColor, "color", false, "Highlight markers, blocks and comments")
	expandCmd.Flags().BoolVar(&expandJSON, "json", false, "Output command entries as JSON")
}

func runExpand(cmd *cobra.Command, args []string) error {
	s, table, err := loadInputs()
	if err != nil {
		return err
	}

	var cmds []engine.Command
	if len(args) == 1 && args[0] != "-" {
		cmds, err = engine.LoadCommandFile(args[0])
	} else {
		cmds, err = engine.ReadCommands(os.Stdin)
	}
	if err != nil {
		return err
	}

	ctx := engine.Context{CurrentTool: expandTool, Units: expandUnits, Offsets: table}
	out := expandStream(cmds, ctx, s, expandAll)
	return writeCommands(cmd.OutOrStdout(), out)
}

// expandStream runs the engine once, or until no trigger is left. Each
// tool change updates the tool the next expansion starts from.
func expandStream(cmds []engine.Command, ctx engine.Context, s settings.Settings, all bool) []engine.Command {
	for {
		m, ok := engine.Scan(cmds, s.PerformTLSAfterHome)
		if !ok {
			return cmds
		}
		cmds = engine.Process(cmds, ctx, s, engine.WithLogger(logger.Base()))
		if m.Trigger == engine.TriggerToolChange {
			ctx.CurrentTool = m.Arg
		}
		if !all {
			return cmds
		}
	}
}

func writeCommands(w io.Writer, cmds []engine.Command) error {
	switch {
	case expandJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cmds)
	case expandTable:
		_, err := io.WriteString(w, render.Table(cmds))
		return err
	}
	lines := engine.Texts(cmds)
	if expandColor {
		lines = render.HighlightAll(lines)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
