package server

import (
	"context"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/tools"
)

// Config identifies the server to MCP clients
type Config struct {
	Name     string
	Version  string
	HTTPAddr string
}

// MCPServer exposes the tool registry over the Model Context Protocol
type MCPServer struct {
	mcp      *server.MCPServer
	registry *tools.Registry
	config   Config
	logger   *logger.Logger
}

// NewMCPServer registers every tool of registry with an mcp-go server
func NewMCPServer(cfg Config, registry *tools.Registry, log *logger.Logger) *MCPServer {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Name == "" {
		cfg.Name = "grok"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	s := &MCPServer{
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		registry: registry,
		config:   cfg,
		logger:   log.Named("mcp"),
	}

	for _, t := range registry.Tools() {
		s.mcp.AddTool(toMCPTool(t), s.handler(t.Name))
	}

	s.logger.Debug("mcp tools registered", zap.Int("count", len(registry.Tools())))

	return s
}

func toMCPTool(t tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case tools.TypeNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case tools.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		case tools.TypeArray:
			props = append(props, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}

// handler adapts a registry call. Tool failures are reported in the
// result, never as protocol errors.
func (s *MCPServer) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := s.registry.Call(ctx, name, request.GetArguments())
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

// Server returns the underlying mcp-go server
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks MCP over in/out until ctx is done or in is closed
func (s *MCPServer) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("serving mcp over stdio", zap.String("name", s.config.Name))

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Logger))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
