package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger(logger *zap.Logger) cmd.Middleware {
	log := logging.OrNop(logger).Sugar().Named("command")
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			fields := []interface{}{"command", c.Name(), "args", inv.Args, "took", time.Since(start)}
			if v, ok := inv.Data.(*command.Context); ok {
				fields = append(fields, "guild", v.GuildID, "channel", v.ChannelID, "user", v.Author.ID, "username", v.Author.Name)
			}
			if err != nil {
				log.Warnw("Command failed", append(fields, "error", err)...)
			} else {
				log.Infow("Command executed", fields...)
			}
			return err
		})
	}
}
