// Package main is the entry point for the Homebox MCP gateway.
package main

import (
	"os"

	"github.com/oangelo/homebox-mcp/cmd/homebox-mcp/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
