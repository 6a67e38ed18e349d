// Command oracled serves agent decisions over HTTP for simulations started
// with -oracle-url.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
	"github.com/pthm-cable/pasture/oracle/remote"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	h := remote.Handler{Oracle: oracle.NewUtility(cfg.Oracle), Log: logger}
	s := server.Default(server.WithHostPorts(*addr))
	h.RegisterRoutes(s)

	slog.Info("oracle server listening", "addr", *addr)
	s.Spin()
}
