// Package app wires storage, the game engines and the command registry for
// a chat adapter.
package app

import (
	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
	boxcmd "github.com/keshon/pokebox/internal/command/pokemon"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/internal/dialogue"
	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/internal/middleware"
	"github.com/keshon/pokebox/internal/storage"
	"github.com/keshon/pokebox/internal/trade"
	"github.com/keshon/pokebox/pkg/cmd"
)

// OpenStorage opens the backend selected by cfg.
func OpenStorage(cfg *config.Config, logger *zap.Logger) (*storage.Storage, error) {
	return storage.Open(storage.Options{
		Driver:     cfg.StorageDriver,
		Path:       cfg.StoragePath,
		SQLitePath: cfg.SQLitePath,
		RedisAddr:  cfg.RedisAddr,
		Logger:     logger,
	})
}

// NewRegistry registers every command. Box commands refuse private messages.
func NewRegistry(logger *zap.Logger) *cmd.Registry {
	r := cmd.NewRegistry()
	logged := []cmd.Middleware{
		middleware.WithCommandLogger(logger),
		middleware.WithRecover(logger),
	}

	boxcmd.Register(r, append([]cmd.Middleware{middleware.WithGuildOnly()}, logged...)...)
	command.RegisterCommand(r, &command.HelpCommand{}, logged...)
	return r
}

// NewServices builds the shared command services around one transport.
func NewServices(cfg *config.Config, store *storage.Storage, tr chat.Transport, dir command.Directory, logger *zap.Logger) *command.Services {
	logger = logging.OrNop(logger)
	game := cfg.Game

	return &command.Services{
		Transport: tr,
		Store:     store,
		Dialogue: dialogue.New(dialogue.Config{
			Transport:     tr,
			Store:         store,
			Logger:        logger,
			PromptTimeout: game.PromptTimeout,
			DataTimeout:   game.DataTimeout,
			CancelKeyword: game.CancelKeyword,
			SkipKeyword:   game.SkipKeyword,
		}),
		Trade: trade.New(trade.Config{
			Transport:     tr,
			Store:         store,
			Logger:        logger,
			Timeout:       game.TradeTimeout,
			AcceptPhrase:  cfg.AcceptPhrase(),
			DeclinePhrase: cfg.DeclinePhrase(),
		}),
		Directory: dir,
		Registry:  NewRegistry(logger),
		Logger:    logger,
		Prefix:    cfg.CommandPrefix,
	}
}
