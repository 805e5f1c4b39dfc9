// Package tools maps named MCP tool invocations to Homebox API calls.
//
// The tool catalog is a static table built once at startup; invocations are
// resolved by name lookup and validated against the tool's input schema
// before any backing service call is issued.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oangelo/homebox-mcp/pkg/errors"
	"github.com/oangelo/homebox-mcp/pkg/homebox"
	"github.com/oangelo/homebox-mcp/pkg/logger"
)

// Dispatcher routes tool invocations to the Homebox client.
type Dispatcher struct {
	catalog map[string]Definition
}

// NewDispatcher builds the static tool catalog bound to the given client.
func NewDispatcher(client *homebox.Client) *Dispatcher {
	return &Dispatcher{catalog: buildCatalog(client)}
}

// Tools returns the catalog's tool definitions sorted by name.
func (d *Dispatcher) Tools() []mcp.Tool {
	names := make([]string, 0, len(d.catalog))
	for name := range d.catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]mcp.Tool, 0, len(names))
	for _, name := range names {
		out = append(out, d.catalog[name].Tool)
	}
	return out
}

// Invoke executes the named tool. Unknown names and invalid arguments fail
// fast before any backing service call; backing errors are tagged with the
// tool name but otherwise propagate unmodified.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	def, ok := d.catalog[name]
	if !ok {
		return nil, errors.NewUnknownToolError(name)
	}

	if err := validateArguments(name, def.Tool.InputSchema, args); err != nil {
		return nil, err
	}

	result, err := def.Handler(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

// Register wires every catalog entry into the MCP server. Tool handlers
// convert dispatcher errors into protocol-level tool errors so a failed
// invocation never terminates the session.
func (d *Dispatcher) Register(mcpServer *server.MCPServer) {
	for _, def := range d.catalog {
		name := def.Tool.Name
		mcpServer.AddTool(def.Tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := d.Invoke(ctx, name, request.GetArguments())
			if err != nil {
				logger.Debugw("tool invocation failed", "tool", name, "error", err)
				return mcp.NewToolResultError(err.Error()), nil
			}
			if text, ok := result.(string); ok {
				return mcp.NewToolResultText(text), nil
			}
			return mcp.NewToolResultStructuredOnly(result), nil
		})
	}
	logger.Infof("registered %d tools", len(d.catalog))
}
