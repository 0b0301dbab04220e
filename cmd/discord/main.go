// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/pokebox/internal/app"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/internal/discord"
	"github.com/keshon/pokebox/internal/logging"
)

func main() {
	cfg := config.New()

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()
	sugar.Info("Starting pokebox bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := app.OpenStorage(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to open storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer store.Close()

	bot, err := discord.NewBot(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to create bot", "error", err)
	}
	services := app.NewServices(cfg, store, bot.Transport(), bot.Directory(), logger)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx, services); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		sugar.Infow("Received signal, shutting down...", "signal", s.String())
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			sugar.Errorw("Discord bot error", "error", err)
		}
		cancel()
	}

	sugar.Info("Discord bot exited cleanly")
}
