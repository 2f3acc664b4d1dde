package main

import (
	"context"
	"flag"
	"os"

	"github.com/jllopis/paideia/pkg/agents"
	"github.com/jllopis/paideia/pkg/config"
	"github.com/jllopis/paideia/pkg/mcpserver"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
	"github.com/jllopis/paideia/pkg/telemetry"
)

func runMCP(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol, so logs must go to stderr.
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	svc, cleanup, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := registry.New()
	agents.RegisterAll(reg, svc)
	rt := router.New(reg)

	srv := mcpserver.New("paideia", version, rt, reg)
	srv.RegisterSkills()
	return srv.ServeStdio()
}
