package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cogsguard-agent/internal/engine"
	"cogsguard-agent/internal/network"
	"cogsguard-agent/internal/server"
	"cogsguard-agent/internal/version"
	"cogsguard-agent/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var (
		configPath string
		url        string
		name       string
		debugAddr  string
		seed       int64
	)
	flag.StringVar(&configPath, "config", "", "Path to agent YAML config")
	flag.StringVar(&url, "url", "", "Environment websocket URL")
	flag.StringVar(&name, "name", "", "Client name sent in HELLO")
	flag.StringVar(&debugAddr, "debug", "", "Debug HTTP address (empty disables)")
	// Читаем флаг -seed. По умолчанию 0 (значит взять зерно эпизода).
	flag.Int64Var(&seed, "seed", 0, "Master seed for tie-breaking (0 uses the episode seed)")
	flag.Parse()

	cfg := engine.NewConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			logger.Log.Fatal("Failed to load config: ", err)
		}
		cfg = loaded
	}
	if url != "" {
		cfg.URL = url
	}
	if name != "" {
		cfg.Name = name
	}
	if debugAddr != "" {
		cfg.DebugAddr = debugAddr
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	logger.Log.Info("Starting CogsGuard agent...")
	logger.Log.Info(version.String())
	if cfg.Seed != 0 {
		logger.Log.Infof("Using explicit master seed: %d", cfg.Seed)
	}

	// 2. Сервис эпизодов
	service, err := engine.NewService(cfg)
	if err != nil {
		logger.Log.Fatal("Service init error: ", err)
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DebugAddr != "" {
		debug := server.New(service, cfg.DebugAddr)
		go func() {
			if err := debug.Run(); err != nil {
				logger.Log.WithError(err).Error("Debug server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = debug.Shutdown(shutdownCtx)
		}()
	}

	// 3. Подключение к среде
	client, err := network.Dial(ctx, cfg.URL)
	if err != nil {
		logger.Log.Fatal("Connection error: ", err)
	}
	logger.Log.WithField("url", cfg.URL).Info("Connected to environment")

	if err := client.Run(ctx, service); err != nil && ctx.Err() == nil {
		logger.Log.WithError(err).Error("Session ended with error")
	}

	if inst := service.Current(); inst != nil {
		inst.Summary("disconnected")
	}
	logger.Log.Info("Done.")
}
