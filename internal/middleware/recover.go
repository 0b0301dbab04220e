package middleware

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/pkg/cmd"
)

// WithRecover turns a panicking command into an error so one bad command
// cannot take the event loop down.
func WithRecover(logger *zap.Logger) cmd.Middleware {
	log := logging.OrNop(logger).Named("command")
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("Command panicked", zap.String("command", c.Name()), zap.Any("panic", r), zap.Stack("stack"))
					err = fmt.Errorf("command %s panicked: %v", c.Name(), r)
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}
