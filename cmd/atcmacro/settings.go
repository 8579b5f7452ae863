package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Print settings after defaults, clamping and environment overrides",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath
		if len(args) == 1 {
			path = args[0]
		}
		s, err := settings.LoadFile(path)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(s.Raw())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [settings.yaml]",
	Short: "Report settings values that normalization would replace",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	_, errs := settings.ValidateFile(path)

	var failures []*settings.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
			}
			continue
		}
		failures = append(failures, e)
	}
	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(failures))
		for i, e := range failures {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		}
		return fmt.Errorf("validation failed with %d error(s)", len(failures))
	}
	fmt.Printf("✓ %s is valid (%d warning(s))\n", path, len(errs))
	return nil
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the settings JSON Schema to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := settings.GenerateJSONSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}
