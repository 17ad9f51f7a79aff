package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lk2023060901/grok-bridge/internal/cli"
	"github.com/lk2023060901/grok-bridge/internal/pkg/logger"
	"github.com/lk2023060901/grok-bridge/internal/server"
	"github.com/lk2023060901/grok-bridge/internal/tools"
)

var (
	configFile = flag.String("config", "", "config file path (default ./grok.yaml if present)")
	logLevel   = flag.String("log-level", "", "log level override")
	logFile    = flag.String("log-file", "", "write JSON logs to this file instead of stderr")
	httpAddr   = flag.String("http", "", "serve streamable HTTP on this address instead of stdio")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// stdout carries the protocol, so logs stay on stderr or in a file
	opts := cli.LevelOptions(*logLevel)
	if *logFile != "" {
		opts = append(opts,
			logger.WithOutput("file"),
			logger.WithFilename(*logFile),
			logger.WithFormat("json"),
		)
	}

	config, log, err := cli.Setup(*configFile, opts...)
	if err != nil {
		return err
	}
	defer log.Sync()

	deps, err := cli.NewDeps(ctx, config, log)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	registry := tools.NewRegistry(deps.Backend, log)
	srv := server.NewMCPServer(server.Config{
		Name:     config.MCP.Name,
		Version:  config.MCP.Version,
		HTTPAddr: config.MCP.HTTPAddr,
	}, registry, log)

	addr := *httpAddr
	if addr == "" {
		addr = config.MCP.HTTPAddr
	}
	if addr != "" {
		return srv.NewHTTPServer(addr).Run(ctx)
	}

	return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
}
