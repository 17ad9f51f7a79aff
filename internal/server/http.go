package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/pkg/response"
)

// MCPPath where the streamable HTTP transport is mounted
const MCPPath = "/mcp"

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// Router builds the gin engine: /health, /tools and the MCP endpoint
func (s *MCPServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(logger.GinRecovery(s.logger))
	router.Use(logger.GinLogger(s.logger, "/health"))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{
			"status": "ok",
			"name":   s.config.Name,
			"tools":  len(s.registry.Tools()),
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/tools", func(c *gin.Context) {
		list := make([]gin.H, 0, len(s.registry.Tools()))
		for _, t := range s.registry.Tools() {
			list = append(list, gin.H{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": t.InputSchema(),
			})
		}
		response.Success(c, list)
	})

	streamable := server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(MCPPath),
		server.WithStateLess(true),
	)
	router.Any(MCPPath, gin.WrapH(streamable))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
	router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c, "method not allowed")
	})

	return router
}

// NewHTTPServer wraps the router in an http.Server listening on addr
func (s *MCPServer) NewHTTPServer(addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           s.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: s.logger,
	}
}

// Start blocks until the server stops
func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down when ctx is done
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
