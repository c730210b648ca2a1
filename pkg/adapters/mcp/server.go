package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSession is used by tool calls that do not name a session.
const DefaultSession = "default"

// ElementArgs identifies an element, optionally in a named session.
type ElementArgs struct {
	SessionID string `json:"session_id,omitempty"`
	ID        string `json:"id"`
}

// AddElementArgs are the arguments of add_element.
type AddElementArgs struct {
	SessionID string       `json:"session_id,omitempty"`
	Type      string       `json:"type"`
	Props     domain.Patch `json:"props,omitempty"`
}

// UpdateElementArgs are the arguments of update_element.
type UpdateElementArgs struct {
	SessionID string       `json:"session_id,omitempty"`
	ID        string       `json:"id"`
	Props     domain.Patch `json:"props"`
}

// MoveElementArgs are the arguments of move_element.
type MoveElementArgs struct {
	SessionID string `json:"session_id,omitempty"`
	ID        string `json:"id"`
	ParentID  string `json:"parent_id,omitempty"`
	BeforeID  string `json:"before_id,omitempty"`
}

// DragArgs are the arguments of handle_drag.
type DragArgs struct {
	SessionID string `json:"session_id,omitempty"`
	domain.Gesture
}

// SessionArgs are the arguments of get_forest.
type SessionArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// Server exposes the sessions of a Manager as MCP tools.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. The default session is created if
// the manager does not hold it yet.
func NewServer(ctx context.Context, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := sessions.Create(ctx, DefaultSession); err != nil && !errors.Is(err, domain.ErrSessionExists) {
		return nil, err
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	sessionParam := mcp.WithString("session_id", mcp.Description("Session to operate on (default: \""+DefaultSession+"\")"))

	s.mcpServer.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element inside the selected container, or at the root. The new element becomes the selection."),
		mcp.WithString("type", mcp.Required(), mcp.Enum(typeNames()...), mcp.Description("Element type")),
		mcp.WithObject("props", mcp.Description("Initial props, e.g. {\"text\": \"Hello\", \"fontSize\": 18}")),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleAddElement))

	s.mcpServer.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Shallow-merge props into an element. Keys not given are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
		mcp.WithObject("props", mcp.Required(), mcp.Description("Props to overwrite")),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleUpdateElement))

	s.mcpServer.AddTool(mcp.NewTool("remove_element",
		mcp.WithDescription("Remove an element and everything inside it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleRemoveElement))

	s.mcpServer.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element under another container, or to the root when parent_id is empty."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Element ID")),
		mcp.WithString("parent_id", mcp.Description("Target container (empty for root)")),
		mcp.WithString("before_id", mcp.Description("Sibling to insert before (default: append)")),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleMoveElement))

	s.mcpServer.AddTool(mcp.NewTool("select_element",
		mcp.WithDescription("Select an element. An empty id clears the selection."),
		mcp.WithString("id", mcp.Description("Element ID")),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleSelectElement))

	s.mcpServer.AddTool(mcp.NewTool("handle_drag",
		mcp.WithDescription("Apply a completed drag gesture: drop onto a container to nest, onto a sibling to reorder."),
		mcp.WithString("active_id", mcp.Required(), mcp.Description("Dragged element")),
		mcp.WithString("over_id", mcp.Required(), mcp.Description("Element the drag was released over")),
		mcp.WithString("parent_id", mcp.Description("Container whose sortable list the gesture happened in")),
		mcp.WithOutputSchema[domain.DragResult](),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleDrag))

	s.mcpServer.AddTool(mcp.NewTool("get_forest",
		mcp.WithDescription("Get the document tree and the current selection."),
		sessionParam,
	), mcp.NewStructuredToolHandler(s.handleGetForest))
}

func (s *Server) registerResources() {
	uri := "lattice://sessions/" + DefaultSession + "/forest"
	s.mcpServer.AddResource(mcp.NewResource(uri, "Default document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := s.sessions.Snapshot(ctx, DefaultSession)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		jsonBytes, _ := json.Marshal(snap)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) handleAddElement(ctx context.Context, _ mcp.CallToolRequest, args AddElementArgs) (*domain.Node, error) {
	typ, err := domain.ParseElementType(args.Type)
	if err != nil {
		return nil, err
	}
	var node *domain.Node
	err = s.with(ctx, args.SessionID, "add_element", func(ctx context.Context, b ports.Builder) error {
		var err error
		node, err = b.AddElement(ctx, typ, args.Props)
		return err
	})
	return node, err
}

func (s *Server) handleUpdateElement(ctx context.Context, _ mcp.CallToolRequest, args UpdateElementArgs) (*domain.Node, error) {
	var node *domain.Node
	err := s.with(ctx, args.SessionID, "update_element", func(ctx context.Context, b ports.Builder) error {
		var err error
		node, err = b.UpdateElement(ctx, args.ID, args.Props)
		return err
	})
	return node, err
}

func (s *Server) handleRemoveElement(ctx context.Context, _ mcp.CallToolRequest, args ElementArgs) (*domain.Snapshot, error) {
	return s.snapshotAfter(ctx, args.SessionID, "remove_element", func(ctx context.Context, b ports.Builder) error {
		return b.RemoveElement(ctx, args.ID)
	})
}

func (s *Server) handleMoveElement(ctx context.Context, _ mcp.CallToolRequest, args MoveElementArgs) (*domain.Snapshot, error) {
	return s.snapshotAfter(ctx, args.SessionID, "move_element", func(ctx context.Context, b ports.Builder) error {
		return b.MoveElement(ctx, args.ID, args.ParentID, args.BeforeID)
	})
}

func (s *Server) handleSelectElement(ctx context.Context, _ mcp.CallToolRequest, args ElementArgs) (*domain.Snapshot, error) {
	return s.snapshotAfter(ctx, args.SessionID, "select_element", func(ctx context.Context, b ports.Builder) error {
		return b.SelectElement(ctx, args.ID)
	})
}

func (s *Server) handleDrag(ctx context.Context, _ mcp.CallToolRequest, args DragArgs) (domain.DragResult, error) {
	var result domain.DragResult
	err := s.with(ctx, args.SessionID, "handle_drag", func(ctx context.Context, b ports.Builder) error {
		result = b.HandleDrag(ctx, args.Gesture)
		return nil
	})
	return result, err
}

func (s *Server) handleGetForest(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (*domain.Snapshot, error) {
	return s.sessions.Snapshot(ctx, sessionOrDefault(args.SessionID))
}

func (s *Server) snapshotAfter(ctx context.Context, sessionID, tool string, fn func(context.Context, ports.Builder) error) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.with(ctx, sessionID, tool, func(ctx context.Context, b ports.Builder) error {
		if err := fn(ctx, b); err != nil {
			return err
		}
		snap = b.Snapshot()
		return nil
	})
	return snap, err
}

func (s *Server) with(ctx context.Context, sessionID, tool string, fn func(context.Context, ports.Builder) error) error {
	err := s.sessions.WithLock(ctx, sessionOrDefault(sessionID), fn)
	if err != nil {
		s.logger.Debug("MCP tool rejected", "tool", tool, "session_id", sessionOrDefault(sessionID), "error", err)
	}
	return err
}

func sessionOrDefault(id string) string {
	if id == "" {
		return DefaultSession
	}
	return id
}

func typeNames() []string {
	names := make([]string, len(domain.ElementTypes))
	for i, t := range domain.ElementTypes {
		names[i] = string(t)
	}
	return names
}
