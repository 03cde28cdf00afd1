// Package mcp exposes log trees to agents as Model Context Protocol tools.
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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ts-factory/bublik-logtree"
	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
	"github.com/ts-factory/bublik-logtree/pkg/tree"
)

// Service is the part of logtree.Service the tools need.
type Service interface {
	Tree(ctx context.Context, runID int64) (*domain.Tree, error)
	Normalize(ctx context.Context, payload []byte) (*domain.Tree, error)
	NodePath(ctx context.Context, runID, nodeID int64) ([]int64, error)
}

var _ Service = (*logtree.Service)(nil)

// TreeResult is returned by get_log_tree and normalize_tree.
type TreeResult struct {
	RunID  int64              `json:"run_id,omitempty"`
	Empty  bool               `json:"empty"`
	Nodes  int                `json:"nodes"`
	Leaves int                `json:"leaves"`
	Root   *domain.PathedNode `json:"root,omitempty"`
	Issues []domain.Issue     `json:"issues,omitempty"`
}

// PathResult is returned by get_node_path.
type PathResult struct {
	RunID  int64   `json:"run_id" jsonschema_description:"Run the node belongs to"`
	NodeID int64   `json:"node_id" jsonschema_description:"Requested node"`
	Path   []int64 `json:"path" jsonschema_description:"Identifiers from the root down to the node"`
}

// treeResultSchema is the output schema of the tree tools. Nodes nest
// recursively, so children refer back to the node definition.
const treeResultSchema = `{
	"type": "object",
	"properties": {
		"run_id": {"type": "integer", "description": "Run the tree belongs to"},
		"empty": {"type": "boolean", "description": "True when the run has no main package"},
		"nodes": {"type": "integer", "description": "Number of nodes after compression"},
		"leaves": {"type": "integer", "description": "Number of leaf nodes"},
		"root": {"$ref": "#/$defs/node", "description": "Nested tree with camelCase keys and paths"},
		"issues": {
			"type": "array",
			"description": "Malformed nodes skipped while decoding",
			"items": {
				"type": "object",
				"properties": {
					"location": {"type": "string"},
					"nodeId": {"type": "integer"},
					"reason": {"type": "string"}
				},
				"required": ["location", "reason"]
			}
		}
	},
	"required": ["empty", "nodes", "leaves"],
	"$defs": {
		"node": {
			"type": "object",
			"properties": {
				"id": {"type": "integer"},
				"name": {"type": "string"},
				"type": {"type": "string", "enum": ["package", "session", "test", "iteration"]},
				"parentId": {"type": ["integer", "null"]},
				"path": {"type": "array", "items": {"type": "integer"}},
				"mergedIds": {"type": "array", "items": {"type": "integer"}},
				"hasError": {"type": "boolean"},
				"skipped": {"type": "boolean"},
				"attributes": {"type": "object"},
				"children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
			},
			"required": ["id", "name", "type", "parentId", "path", "children"]
		}
	}
}`

type treeArgs struct {
	RunID int64 `json:"run_id"`
}

type pathArgs struct {
	RunID  int64 `json:"run_id"`
	NodeID int64 `json:"node_id"`
}

type normalizeArgs struct {
	Payload string `json:"payload"`
}

// Server exposes a Service as an MCP server.
type Server struct {
	svc       Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("logtree-mcp", strings.TrimSpace(logtree.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+host))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_log_tree",
		mcp.WithDescription("Get the normalized log tree of a Bublik run. Single-child package chains are merged into one node labeled 'a/b/c'."),
		mcp.WithNumber("run_id", mcp.Required(), mcp.Description("Bublik run identifier")),
		mcp.WithRawOutputSchema(json.RawMessage(treeResultSchema)),
	), mcp.NewStructuredToolHandler(s.handleGetTree))

	s.mcpServer.AddTool(mcp.NewTool("get_node_path",
		mcp.WithDescription("Get the root-to-node identifier path of a log tree node, for deep links. Identifiers merged away by compression resolve to their merged node."),
		mcp.WithNumber("run_id", mcp.Required(), mcp.Description("Bublik run identifier")),
		mcp.WithNumber("node_id", mcp.Required(), mcp.Description("Node identifier")),
		mcp.WithOutputSchema[PathResult](),
	), mcp.NewStructuredToolHandler(s.handleGetPath))

	s.mcpServer.AddTool(mcp.NewTool("normalize_tree",
		mcp.WithDescription("Normalize a raw log tree response (JSON rooted at main_package) without fetching it from Bublik."),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Raw log tree JSON")),
		mcp.WithRawOutputSchema(json.RawMessage(treeResultSchema)),
	), mcp.NewStructuredToolHandler(s.handleNormalize))
}

func newTreeResult(runID int64, t *domain.Tree) TreeResult {
	return TreeResult{
		RunID:  runID,
		Empty:  t.IsEmpty(),
		Nodes:  t.Len(),
		Leaves: len(tree.Leaves(t)),
		Root:   tree.Nest(t),
		Issues: t.Issues,
	}
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest, args treeArgs) (TreeResult, error) {
	t, err := s.svc.Tree(ctx, args.RunID)
	if err != nil {
		s.logger.Warn("MCP get_log_tree failed", "run_id", args.RunID, "err", err)
		return TreeResult{}, fmt.Errorf("get tree of run %d: %w", args.RunID, err)
	}
	return newTreeResult(args.RunID, t), nil
}

func (s *Server) handleGetPath(ctx context.Context, request mcp.CallToolRequest, args pathArgs) (PathResult, error) {
	path, err := s.svc.NodePath(ctx, args.RunID, args.NodeID)
	if err != nil {
		return PathResult{}, fmt.Errorf("get path of node %d: %w", args.NodeID, err)
	}
	return PathResult{RunID: args.RunID, NodeID: args.NodeID, Path: path}, nil
}

func (s *Server) handleNormalize(ctx context.Context, request mcp.CallToolRequest, args normalizeArgs) (TreeResult, error) {
	if strings.TrimSpace(args.Payload) == "" {
		return TreeResult{}, errors.New("payload is required")
	}
	t, err := s.svc.Normalize(ctx, []byte(args.Payload))
	if err != nil {
		return TreeResult{}, fmt.Errorf("normalize: %w", err)
	}
	return newTreeResult(0, t), nil
}
