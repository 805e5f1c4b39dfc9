// Package app provides the CLI for the Homebox MCP gateway.
package app

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oangelo/homebox-mcp/pkg/config"
	"github.com/oangelo/homebox-mcp/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the root command for the gateway CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "homebox-mcp",
		Short:   "MCP gateway for Homebox inventory management",
		Long:    "homebox-mcp exposes a Homebox inventory instance as a set of MCP tools over an SSE transport.",
		Version: version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// .env is optional; environment and flags win over it.
			_ = godotenv.Load()
			config.SetDefaults()
			logger.Initialize()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Fatalf("failed to bind debug flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}
