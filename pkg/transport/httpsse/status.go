package httpsse

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/oangelo/homebox-mcp/pkg/homebox"
	"github.com/oangelo/homebox-mcp/pkg/logger"
	"github.com/oangelo/homebox-mcp/pkg/transport/ssecommon"
)

// statusTimeout bounds the backing-service probes issued by the status
// endpoint.
const statusTimeout = 10 * time.Second

// InventoryReader is the slice of the Homebox client the status endpoint
// needs for its connectivity probe and entity counts.
type InventoryReader interface {
	ListLocations(ctx context.Context) ([]homebox.Location, error)
	ListItems(ctx context.Context, filter homebox.ItemFilter) (*homebox.ItemsPage, error)
	ListLabels(ctx context.Context) ([]homebox.Label, error)
}

// Status is the dashboard status payload.
type Status struct {
	HomeboxURL       string `json:"homebox_url"`
	HomeboxConnected bool   `json:"homebox_connected"`
	HomeboxError     string `json:"homebox_error,omitempty"`
	LocationsCount   int    `json:"locations_count"`
	ItemsCount       int    `json:"items_count"`
	LabelsCount      int    `json:"labels_count"`
	ServerUptime     string `json:"server_uptime"`
	ActiveSessions   int    `json:"active_sessions"`
	MCPEndpoint      string `json:"mcp_endpoint"`
	MCPAuthEnabled   bool   `json:"mcp_auth_enabled"`
}

// handleStatus reports gateway and backing-service status for the dashboard.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statusTimeout)
	defer cancel()

	status := Status{
		HomeboxURL:     s.config.HomeboxURL,
		ServerUptime:   time.Since(s.startTime).Truncate(time.Second).String(),
		ActiveSessions: s.sessions.Count(),
		MCPEndpoint:    ssecommon.HTTPSSEEndpoint,
		MCPAuthEnabled: s.config.AuthEnabled,
	}

	if locations, err := s.inventory.ListLocations(ctx); err != nil {
		status.HomeboxError = err.Error()
		logger.Errorw("status probe failed", "error", err)
	} else {
		status.HomeboxConnected = true
		status.LocationsCount = len(locations)

		if page, err := s.inventory.ListItems(ctx, homebox.ItemFilter{}); err == nil {
			status.ItemsCount = len(page.Items)
		}
		if labels, err := s.inventory.ListLabels(ctx); err == nil {
			status.LabelsCount = len(labels)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logger.Warnf("failed to write status response: %v", err)
	}
}
