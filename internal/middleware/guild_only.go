package middleware

import (
	"context"

	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/pkg/cmd"
)

const guildOnlyMessage = "This command cannot be used in private messages."

// WithGuildOnly wraps a command to enforce guild-only access
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.Context); ok && v.Private() {
				return v.Reply(ctx, guildOnlyMessage)
			}
			return c.Run(ctx, inv)
		})
	}
}
