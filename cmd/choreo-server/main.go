// choreo-server exposes the light painting and formation planners over a
// JSON HTTP API.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"choreo-planner/internal/config"
	"choreo-planner/internal/log"
	"choreo-planner/internal/pipeline"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "JSON or YAML configuration file")
	storeDir := flag.String("store", "", "directory to persist formation plans in")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "choreo-server: %v\n", err)
			os.Exit(1)
		}
	}
	logger := log.New(cfg.Log.Level, cfg.Log.Dir)

	if *storeDir != "" {
		if err := os.MkdirAll(*storeDir, 0755); err != nil {
			logger.Errorf("failed to create store directory: %v", err)
			os.Exit(1)
		}
	}

	s := newServer(cfg, pipeline.New(cfg, logger), *storeDir, logger)
	if n, err := s.loadPlans(); err != nil {
		logger.Warn("failed to load stored plans", "error", err)
	} else if n > 0 {
		logger.Infof("loaded %d stored formation plans from %s", n, *storeDir)
	}

	logger.Info("server starting", "addr", *addr,
		"endpoints", []string{"POST /waypoints", "POST /formation", "GET /formation?id=", "GET /health"})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
