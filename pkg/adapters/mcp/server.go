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

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/pkg/template"
)

// RenderResponse is the structured result of the render tools.
type RenderResponse struct {
	Output string `json:"output" jsonschema_description:"The rendered text"`
}

// CheckResponse is the structured result of check_template.
type CheckResponse struct {
	Valid  bool   `json:"valid" jsonschema_description:"Whether the template parsed"`
	Error  string `json:"error,omitempty" jsonschema_description:"The parse error, if any"`
	Line   int    `json:"line,omitempty" jsonschema_description:"1-based line of the parse error"`
	Column int    `json:"column,omitempty" jsonschema_description:"0-based column of the parse error"`
}

// Engine defines what the MCP server needs from a Tinct engine.
type Engine interface {
	Render(ctx context.Context, name string, data any, opts ...tinct.RenderOption) (string, error)
	RenderString(ctx context.Context, src string, data any, opts ...tinct.RenderOption) (string, error)
	List(ctx context.Context) ([]string, error)
	Check(ctx context.Context, name string) error
}

var _ Engine = (*tinct.Engine)(nil)

// Server wraps the Tinct Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("tinct-mcp", strings.TrimSpace(tinct.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

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
	// TOOL: render_template
	s.mcpServer.AddTool(mcp.NewTool("render_template",
		mcp.WithDescription("Render template source text with JSON data."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Template source, e.g. \"Hello {{name}}\"")),
		mcp.WithString("data", mcp.Description("JSON value used as the root context (optional)")),
		mcp.WithString("formats", mcp.Description("JSON object mapping type names to format strings (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenderTemplate))

	// TOOL: render_named
	s.mcpServer.AddTool(mcp.NewTool("render_named",
		mcp.WithDescription("Render a stored template by name with JSON data."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Template name as listed by list_templates")),
		mcp.WithString("data", mcp.Description("JSON value used as the root context (optional)")),
		mcp.WithString("formats", mcp.Description("JSON object mapping type names to format strings (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenderNamed))

	// TOOL: check_template
	s.mcpServer.AddTool(mcp.NewTool("check_template",
		mcp.WithDescription("Parse a stored template and report the first syntax error."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
		mcp.WithOutputSchema[CheckResponse](),
	), mcp.NewStructuredToolHandler(s.handleCheck))

	// TOOL: list_templates
	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the names of all stored templates."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleRenderTemplate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RenderResponse, error) {
	src, _ := args["template"].(string)
	data, opts, err := decodeArgs(args)
	if err != nil {
		return RenderResponse{}, err
	}

	out, err := s.engine.RenderString(ctx, src, data, opts...)
	if err != nil {
		s.logger.Debug("MCP render_template failed", "err", err)
		return RenderResponse{}, err
	}
	return RenderResponse{Output: out}, nil
}

func (s *Server) handleRenderNamed(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RenderResponse, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return RenderResponse{}, errors.New("name is required")
	}
	data, opts, err := decodeArgs(args)
	if err != nil {
		return RenderResponse{}, err
	}

	out, err := s.engine.Render(ctx, name, data, opts...)
	if err != nil {
		s.logger.Debug("MCP render_named failed", "template", name, "err", err)
		return RenderResponse{}, err
	}
	return RenderResponse{Output: out}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (CheckResponse, error) {
	name, _ := args["name"].(string)
	err := s.engine.Check(ctx, name)
	if err == nil {
		return CheckResponse{Valid: true}, nil
	}

	var perr *template.ParseError
	if !errors.As(err, &perr) {
		return CheckResponse{}, err
	}
	return CheckResponse{
		Error:  perr.Error(),
		Line:   perr.Line,
		Column: perr.Column,
	}, nil
}

// decodeArgs reads the optional "data" and "formats" JSON strings.
func decodeArgs(args map[string]any) (any, []tinct.RenderOption, error) {
	var data any
	if raw, ok := args["data"].(string); ok && raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, nil, fmt.Errorf("invalid data JSON: %w", err)
		}
	}

	var opts []tinct.RenderOption
	if raw, ok := args["formats"].(string); ok && raw != "" {
		var formats map[string]string
		if err := json.Unmarshal([]byte(raw), &formats); err != nil {
			return nil, nil, fmt.Errorf("invalid formats JSON: %w", err)
		}
		for typeName, format := range formats {
			opts = append(opts, tinct.Override(typeName, format))
		}
	}
	return data, opts, nil
}

func (s *Server) registerResources() {
	// EXPOSE: tinct://templates
	s.mcpServer.AddResource(mcp.NewResource("tinct://templates", "Available Templates",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tinct://templates",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
