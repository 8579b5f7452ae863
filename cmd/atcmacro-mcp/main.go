// Package main provides the atcmacro-mcp binary, an MCP server exposing the
// macro engine to agents over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	amcp "github.com/ormasoftchile/atcmacro/pkg/mcp"
)

var version = "dev"

func main() {
	s := amcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
