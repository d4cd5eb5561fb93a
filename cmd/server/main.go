// Package main - Entry point for the engagement judgment server
package main

import (
	"flag"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"bookmark-engagement/adapters/profile"
	"bookmark-engagement/api"
	"bookmark-engagement/core/judgment"
	"bookmark-engagement/internal/config"
	"bookmark-engagement/internal/logging"
)

const version = "0.3.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Config file (JSON or TOML)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	profilePath := flag.String("profile", "", "HCL threshold profile (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logging.Fatal("failed to load config", zap.Error(err))
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *profilePath != "" {
		cfg.Judgment.ProfilePath = *profilePath
	}

	judgmentCfg := judgment.DefaultConfig()
	if cfg.Judgment.ProfilePath != "" {
		judgmentCfg, err = profile.Load(cfg.Judgment.ProfilePath)
		if err != nil {
			logging.Fatal("failed to load profile", zap.String("path", cfg.Judgment.ProfilePath), zap.Error(err))
		}
	}

	engine, err := judgment.NewEngine(judgmentCfg,
		judgment.WithLogger(logging.Named("judgment")),
		judgment.WithDebug(cfg.Judgment.Debug),
	)
	if err != nil {
		logging.Fatal("invalid judgment configuration", zap.Error(err))
	}

	server := api.NewServer(engine, version,
		api.WithLogger(logging.Named("api")),
		api.WithBatchWorkers(cfg.Server.BatchWorkers),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", server))

	fmt.Printf("Engagement judgment server v%s\n", version)
	fmt.Printf("   API: http://localhost%s/api\n", cfg.Server.Addr)
	fmt.Println()

	logging.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		logging.Fatal("server stopped", zap.Error(err))
	}
}
