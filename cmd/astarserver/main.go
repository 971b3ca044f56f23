package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astarviz/internal/config"
	"astarviz/internal/server"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "astar.yaml", "path to the search server configuration file")
	flag.Parse()

	wrote, err := writeConfigFromEnv(cfgPath)
	if err != nil {
		log.Fatalf("sync config: %v", err)
	}
	if wrote {
		log.Printf("configuration from environment written to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefault(cfgPath); err != nil {
				log.Fatalf("write default config: %v", err)
			}
			log.Printf("no configuration found, default configuration written to %s", cfgPath)
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("initialise search server: %v", err)
	}

	ctx, cancel := signalContext(cfg.Server.ShutdownTimeout.Duration() * 2)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func signalContext(grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(grace, func() {
			log.Printf("forced shutdown after %s", grace)
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
