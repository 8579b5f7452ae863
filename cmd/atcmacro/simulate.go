package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/atcmacro/pkg/console"
	"github.com/ormasoftchile/atcmacro/pkg/dryrun"
	"github.com/ormasoftchile/atcmacro/pkg/engine"
	"github.com/ormasoftchile/atcmacro/pkg/logger"
	"github.com/ormasoftchile/atcmacro/pkg/render"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
	"github.com/ormasoftchile/atcmacro/pkg/trace"
)

var (
	simTool     int
	simTLO      float64
	simReadings string
	simDefault  bool
	simStop     bool
	simTrace    string
	simShow     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <trigger>",
	Short: "Dry-run the macro for a trigger, e.g. 'M6 T3', against scripted sensor readings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

var consoleTool int

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console: type G-code and see what the controller receives",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, table, err := loadInputs()
		if err != nil {
			return err
		}
		session := console.NewSession(settings.NewMemoryRepository(s.Raw()), table, os.Stdout, logger.Base())
		session.Tool = consoleTool
		return console.Run(session)
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&simTool, "tool", "t", 0, "Tool in the spindle")
	simulateCmd.Flags().Float64Var(&simTLO, "tlo", 0, "Active tool length offset (#5403)")
	simulateCmd.Flags().StringVarP(&simReadings, "readings", "r", "", "Sensor readings in order, e.g. 1,0")
	simulateCmd.Flags().BoolVar(&simDefault, "default-reading", false, "Reading used once the scripted ones run out")
	simulateCmd.Flags().BoolVar(&simStop, "stop-at-pause", false, "End the run at the first M0")
	simulateCmd.Flags().StringVar(&simTrace, "trace", "", "Append run events to a JSONL file")
	simulateCmd.Flags().BoolVar(&simShow, "show", false, "Print the executed lines")

	consoleCmd.Flags().IntVarP(&consoleTool, "tool", "t", 0, "Tool in the spindle")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, table, err := loadInputs()
	if err != nil {
		return err
	}
	readings, err := dryrun.ParseReadings(simReadings)
	if err != nil {
		return err
	}

	m, ok := engine.Scan([]engine.Command{engine.Original(args[0])}, true)
	if !ok {
		return fmt.Errorf("%q is not a trigger", args[0])
	}
	lines := engine.Expand(m, engine.Context{CurrentTool: simTool, Offsets: table}, s)

	opts := []dryrun.Option{dryrun.WithLogger(logger.Base())}
	if simTrace != "" {
		tw, f, err := trace.NewFileWriter(simTrace, uuid.NewString())
		if err != nil {
			return err
		}
		defer f.Close()
		opts = append(opts, dryrun.WithTrace(tw))
	}

	res, err := dryrun.Run(lines, dryrun.Machine{
		CurrentTool:      simTool,
		ToolLengthOffset: simTLO,
		Readings:         readings,
		DefaultReading:   simDefault,
		StopAtPause:      simStop,
	}, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if simShow {
		for _, l := range res.Executed {
			fmt.Fprintln(out, render.Highlight(l))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "status:      %s\n", res.Status())
	fmt.Fprintf(out, "active tool: T%d\n", res.ActiveTool)
	fmt.Fprintf(out, "readings:    %d used\n", res.ReadingsUsed)
	fmt.Fprintf(out, "pauses:      %d\n", res.Pauses)
	fmt.Fprintf(out, "tls done:    %v\n", res.TLSDone)
	for _, mk := range res.Markers {
		fmt.Fprintf(out, "  %s\n", render.Highlight(mk.String()))
	}
	return nil
}
