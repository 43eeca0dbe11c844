package main

import (
	"context"
	"fmt"

	"github.com/amirasaad/pixflow/infra/initializer"
	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/amirasaad/pixflow/webapi"
	"github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	deps.Processor.Start(ctx, cfg.Processor.Interval)

	app := webapi.NewApp(webapi.Deps{
		Service:     deps.Service,
		Reads:       deps.Reads,
		Idempotency: deps.Idempotency,
		Notifier:    deps.Notifier,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
		RateLimit:   *cfg.RateLimit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"timezone", cfg.Timezone,
	)
	return app.Listen(addr)
}
