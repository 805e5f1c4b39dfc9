package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oangelo/homebox-mcp/pkg/auth"
	"github.com/oangelo/homebox-mcp/pkg/config"
	"github.com/oangelo/homebox-mcp/pkg/homebox"
	"github.com/oangelo/homebox-mcp/pkg/logger"
	"github.com/oangelo/homebox-mcp/pkg/tools"
	"github.com/oangelo/homebox-mcp/pkg/transport/httpsse"
)

const gracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Homebox MCP gateway",
		Long: `Start the gateway. Clients open an SSE stream on /sse, receive a
session endpoint, and invoke inventory tools over it. Homebox credentials and
the optional MCP auth gate are taken from flags or environment variables.`,
		RunE: runServe,
	}

	flags := serveCmd.Flags()
	flags.String("homebox-url", "http://localhost:7745", "Base URL of the Homebox instance")
	flags.String("auth-method", config.AuthMethodPassword, "Homebox auth method: password or token")
	flags.String("homebox-email", "", "Homebox account email (password method)")
	flags.String("homebox-password", "", "Homebox account password (password method)")
	flags.String("homebox-token", "", "Homebox API token (token method)")
	flags.Bool("mcp-auth-enabled", false, "Require a bearer token on the MCP endpoints")
	flags.String("mcp-auth-token", "", "Bearer token for the MCP endpoints")
	flags.String("host", "0.0.0.0", "Address to listen on")
	flags.Int("port", 8099, "Port to listen on")

	for _, name := range []string{
		"homebox-url", "auth-method", "homebox-email", "homebox-password",
		"homebox-token", "mcp-auth-enabled", "mcp-auth-token", "host", "port",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			logger.Fatalf("failed to bind %s flag: %v", name, err)
		}
	}

	return serveCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Infof("starting Homebox MCP gateway %s", version)
	logger.Infof("connecting to Homebox at %s", cfg.HomeboxURL)
	if cfg.MCPAuthEnabled {
		logger.Info("MCP authentication: enabled, bearer token required")
	} else {
		logger.Warn("MCP authentication: disabled, endpoint is open")
	}

	creds := homebox.NewCredentials(cfg)
	client := homebox.NewClient(cfg, creds)
	dispatcher := tools.NewDispatcher(client)

	mcpServer := mcpserver.NewMCPServer(
		"homebox-mcp",
		version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithLogging(),
	)
	dispatcher.Register(mcpServer)

	transport := httpsse.NewServer(
		httpsse.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			HomeboxURL:  cfg.HomeboxURL,
			AuthEnabled: cfg.MCPAuthEnabled,
		},
		mcpServer,
		client,
		auth.BearerMiddleware(cfg.MCPAuthEnabled, cfg.MCPAuthToken),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := transport.Start(ctx); err != nil {
		return err
	}
	logger.Infof("gateway listening on %s", transport.Address())

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	return transport.Stop(shutdownCtx)
}
