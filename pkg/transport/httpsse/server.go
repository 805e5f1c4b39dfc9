// Package httpsse provides the SSE transport for the MCP gateway: it accepts
// streaming connections, assigns session identifiers, and multiplexes
// concurrent sessions over per-session message channels.
package httpsse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/exp/jsonrpc2"

	"github.com/oangelo/homebox-mcp/pkg/logger"
	"github.com/oangelo/homebox-mcp/pkg/transport/session"
	"github.com/oangelo/homebox-mcp/pkg/transport/ssecommon"
)

const (
	readHeaderTimeout = 10 * time.Second // Prevent Slowloris attacks
	keepAliveInterval = 30 * time.Second
)

// Config holds the transport server configuration.
type Config struct {
	Host        string
	Port        int
	HomeboxURL  string
	AuthEnabled bool
}

// Server is the HTTP server hosting the SSE transport. Each GET /sse
// connection becomes a session with a unique server-generated identifier;
// tool invocations are POSTed to /messages?session_id=<id> and their results
// delivered as events on that session's stream only.
type Server struct {
	config Config

	mcpServer *mcpserver.MCPServer
	inventory InventoryReader
	gate      func(http.Handler) http.Handler

	httpServer *http.Server
	sessions   *session.Manager
	startTime  time.Time

	// baseCtx outlives individual requests: in-flight invocations run to
	// completion even after their session's connection is gone; only their
	// results are dropped.
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// NewServer creates the transport server.
func NewServer(config Config, mcpServer *mcpserver.MCPServer, inventory InventoryReader, gate func(http.Handler) http.Handler) *Server {
	sseFactory := func(id string) session.Session {
		return session.NewSSESession(id)
	}

	return &Server{
		config:    config,
		mcpServer: mcpServer,
		inventory: inventory,
		gate:      gate,
		sessions:  session.NewManager(session.DefaultSessionTTL, sseFactory),
		startTime: time.Now(),
	}
}

// Start binds the listener and starts serving. Failing to bind is the only
// process-fatal condition and is returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx, s.baseCancel = context.WithCancel(context.WithoutCancel(ctx))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	// The gate protects the MCP endpoints only; status and health are
	// expected to be protected upstream.
	r.Group(func(r chi.Router) {
		r.Use(s.gate)
		r.Get(ssecommon.HTTPSSEEndpoint, s.handleSSEConnection)
		r.Post(ssecommon.HTTPMessagesEndpoint, s.handlePostRequest)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Infof("SSE endpoint: http://%s%s", s.httpServer.Addr, ssecommon.HTTPSSEEndpoint)
		logger.Infof("messages endpoint: http://%s%s", s.httpServer.Addr, ssecommon.HTTPMessagesEndpoint)

		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down, disconnecting all active sessions.
func (s *Server) Stop(ctx context.Context) error {
	if s.baseCancel != nil {
		s.baseCancel()
	}

	s.sessions.Stop()
	s.sessions.Range(func(_ string, sess session.Session) bool {
		if sseSession, ok := sess.(*session.SSESession); ok {
			sseSession.Disconnect()
		}
		return true
	})

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Address returns the bound listen address, available after Start.
func (s *Server) Address() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// handleSSEConnection establishes a session: it mints the session ID, emits
// the endpoint event carrying the messages URL, then drains the session's
// channel until the client disconnects.
func (s *Server) handleSSEConnection(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sessionID := uuid.New().String()
	sess, err := s.sessions.AddWithID(sessionID)
	if err != nil {
		logger.Errorf("failed to add session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	sseSession := sess.(*session.SSESession)

	// The endpoint event must reach the client before any invocation result.
	endpointURL := fmt.Sprintf("%s%s?session_id=%s", baseURL(r), ssecommon.HTTPMessagesEndpoint, sessionID)
	endpointMsg := ssecommon.NewSSEMessage("endpoint", endpointURL)
	fmt.Fprint(w, endpointMsg.ToSSEString())
	flusher.Flush()

	logger.Infow("session opened", "session_id", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		<-ctx.Done()
		s.removeSession(sessionID)
		logger.Infow("session closed", "session_id", sessionID)
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sseSession.MessageCh():
			if !ok {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handlePostRequest accepts a JSON-RPC message for an established session
// and dispatches it asynchronously; the response is delivered as an event on
// the session's stream.
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if _, exists := s.sessions.Get(sessionID); !exists {
		http.Error(w, "Could not find session", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading request body: %v", err), http.StatusInternalServerError)
		return
	}

	// Validate the JSON-RPC framing before accepting the message.
	if _, err := jsonrpc2.DecodeMessage(body); err != nil {
		http.Error(w, fmt.Sprintf("Error parsing JSON-RPC message: %v", err), http.StatusBadRequest)
		return
	}

	go s.dispatch(sessionID, body)

	w.WriteHeader(http.StatusAccepted)
	if _, err := w.Write([]byte("Accepted")); err != nil {
		logger.Warnf("failed to write response: %v", err)
	}
}

// dispatch runs one JSON-RPC message through the MCP server and delivers the
// response to the requesting session. Invocations within a session may run
// concurrently; responses carry the request ID so the client can correlate
// them regardless of delivery order.
func (s *Server) dispatch(sessionID string, message []byte) {
	response := s.mcpServer.HandleMessage(s.baseCtx, message)
	if response == nil {
		// Notification, nothing to deliver.
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		logger.Errorf("failed to encode JSON-RPC response: %v", err)
		return
	}

	msg := ssecommon.NewSSEMessage("message", string(data)).WithTargetClientID(sessionID)
	s.deliver(sessionID, msg)
}

// deliver sends an event to one session. Results for sessions that are gone
// are dropped; backing-service side effects are not rolled back.
func (s *Server) deliver(sessionID string, msg *ssecommon.SSEMessage) {
	sess, exists := s.sessions.Get(sessionID)
	if !exists {
		logger.Debugw("dropping message for closed session", "session_id", sessionID)
		return
	}

	sseSession, ok := sess.(*session.SSESession)
	if !ok {
		return
	}

	if err := sseSession.SendMessage(msg.ToSSEString()); err != nil {
		switch err {
		case session.ErrSessionDisconnected:
			logger.Debugw("session disconnected, dropping message", "session_id", sessionID)
		case session.ErrMessageChannelFull:
			logger.Warnw("session channel full, dropping message", "session_id", sessionID)
		}
	}
}

// removeSession disconnects and forgets a session.
func (s *Server) removeSession(sessionID string) {
	sess, exists := s.sessions.Get(sessionID)
	if exists {
		if sseSession, ok := sess.(*session.SSESession); ok {
			sseSession.Disconnect()
		}
	}
	s.sessions.Delete(sessionID)
}

// baseURL reconstructs the externally visible base URL of the request.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwardedProto := r.Header.Get("X-Forwarded-Proto"); forwardedProto != "" {
		scheme = forwardedProto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.sessions.Count())
}
