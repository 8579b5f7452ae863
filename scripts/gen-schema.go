//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

func main() {
	data, err := settings.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll("schemas", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/settings.json", append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/settings.json")
}
