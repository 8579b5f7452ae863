// Package main provides the atcmacro CLI:
//
//	atcmacro expand [file]        expand triggers in a command stream
//	atcmacro normalize [file]     print normalized settings
//	atcmacro validate <file>      report settings that normalization changes
//	atcmacro schema               export the settings JSON Schema
//	atcmacro simulate <trigger>   dry-run a macro against sensor readings
//	atcmacro console              interactive expansion console
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/atcmacro/pkg/logger"
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	settingsPath string
	offsetsPath  string
	logJSON      bool
	verbose      bool
)

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "atcmacro",
	Short:         "Automatic tool changer macro expansion",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize(logJSON, verbose)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atcmacro %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "Settings file (YAML, JSON or TOML); ATCMACRO_* env vars override")
	rootCmd.PersistentFlags().StringVar(&offsetsPath, "offsets", "", "Tool offset table (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadInputs resolves the settings snapshot and offset table from flags.
func loadInputs() (settings.Settings, offsets.Table, error) {
	s, err := settings.LoadFile(settingsPath)
	if err != nil {
		return settings.Settings{}, nil, err
	}
	var table offsets.Table
	if offsetsPath != "" {
		table, err = offsets.LoadFile(offsetsPath)
		if err != nil {
			return settings.Settings{}, nil, err
		}
	}
	logger.Logger.Debugw("inputs loaded",
		logger.FieldPath, settingsPath,
		"pockets", s.Pockets,
		"sensor", s.ToolSensor,
		logger.FieldCount, len(table),
	)
	return s, table, nil
}
