// Package dialogue runs the multi-step conversation that creates a Pokemon:
// nickname, species, stats, extra data, then a commit to the owner's box.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/internal/pokemon"
)

const (
	msgIntro     = "In any step type '%s' to cancel"
	msgName      = "What will its nickname be?"
	msgSpecies   = "What species of Pokemon is it?"
	msgStats     = "In any order, what are its stats? (level, health, attack, defense, spatk, spdef, speed)For example `level: 5, health: 22, attack: 56` Type '%s' to skip."
	msgMeta      = "Any additional data? (Format like the above, for example nature: hasty, color: brown)"
	msgBadStat   = "%s is not a valid stat! Try again"
	msgBadFormat = "Invalid formatting! Try again"
	msgTimedOut  = "Timed out! Try again"
	msgFinished  = "Finished! Pokemon has been added to box with ID %d"
)

// Store is what the dialogue needs from the inventory.
type Store interface {
	AddCreature(ctx context.Context, owner pokemon.Owner, c pokemon.Creature) (int, error)
}

type Config struct {
	Transport chat.Transport
	Store     Store
	Logger    *zap.Logger

	// PromptTimeout bounds the nickname and species waits.
	PromptTimeout time.Duration
	// DataTimeout bounds each stats and extra data wait.
	DataTimeout time.Duration

	CancelKeyword string
	SkipKeyword   string
}

// Engine runs creation dialogues. It is safe for concurrent use; each Create
// call holds its own state.
type Engine struct {
	cfg Config
	log *zap.SugaredLogger
}

func New(cfg Config) *Engine {
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = 30 * time.Second
	}
	if cfg.DataTimeout <= 0 {
		cfg.DataTimeout = 60 * time.Second
	}
	if cfg.CancelKeyword == "" {
		cfg.CancelKeyword = "cancel"
	}
	if cfg.SkipKeyword == "" {
		cfg.SkipKeyword = "skip"
	}
	return &Engine{
		cfg: cfg,
		log: logging.OrNop(cfg.Logger).Sugar().Named("dialogue"),
	}
}

// Session identifies who is creating and where the conversation happens.
type Session struct {
	Owner     pokemon.Owner
	ChannelID string
	UserID    string
}

func (s Session) match() func(chat.Message) bool {
	return chat.From(s.ChannelID, s.UserID)
}

// Create walks the user through the dialogue and commits the result. The
// returned Result carries the new id on success. Failures that are not the
// user's doing are logged and end the session without a further message.
func (e *Engine) Create(ctx context.Context, s Session) Result[int] {
	r := e.create(ctx, s)
	switch r.Outcome {
	case Ok:
		e.log.Infow("Pokemon created", "owner", s.Owner.String(), "id", r.Value)
	case Failed:
		e.log.Errorw("Creation dialogue failed", "owner", s.Owner.String(), "error", r.Reason)
	default:
		e.log.Debugw("Creation dialogue ended", "owner", s.Owner.String(), "outcome", r.Outcome.String())
	}
	return r
}

func (e *Engine) create(ctx context.Context, s Session) Result[int] {
	if err := e.say(ctx, s, fmt.Sprintf(msgIntro, e.cfg.CancelKeyword)); err != nil {
		return failed[int](err)
	}

	name := e.askText(ctx, s, msgName)
	if name.Outcome != Ok {
		return stop[int](name)
	}

	species := e.askText(ctx, s, msgSpecies)
	if species.Outcome != Ok {
		return stop[int](species)
	}

	stats := collect(ctx, e, s, fmt.Sprintf(msgStats, e.cfg.SkipKeyword), stepText{cancelled: "Cancelled", skipped: "Skipping"}, parseStats)
	if stats.Outcome != Ok {
		return stop[int](stats)
	}

	meta := collect(ctx, e, s, msgMeta, stepText{cancelled: "Cancelling!", skipped: "Skipping!"}, parseMeta)
	if meta.Outcome != Ok {
		return stop[int](meta)
	}

	id, err := e.cfg.Store.AddCreature(ctx, s.Owner, pokemon.Creature{
		Name:    name.Value,
		Species: species.Value,
		Stats:   stats.Value,
		Meta:    meta.Value,
	})
	if err != nil {
		return failed[int](fmt.Errorf("add pokemon: %w", err))
	}

	if err := e.say(ctx, s, fmt.Sprintf(msgFinished, id)); err != nil {
		return failed[int](err)
	}
	return ok(id)
}

// askText prompts once and returns the next reply verbatim.
func (e *Engine) askText(ctx context.Context, s Session, prompt string) Result[string] {
	if err := e.say(ctx, s, prompt); err != nil {
		return failed[string](err)
	}
	reply := e.next(ctx, s, e.cfg.PromptTimeout, "Cancelled")
	if reply.Outcome != Ok {
		return stop[string](reply)
	}
	return ok(reply.Value.Content)
}

type stepText struct {
	cancelled string
	skipped   string
}

// collect prompts for key/value data and keeps waiting until a reply parses,
// the user skips or cancels, or a wait times out. Skipping yields the zero
// value of the parser's result.
func collect[T any](ctx context.Context, e *Engine, s Session, prompt string, text stepText, parse func(string) Result[T]) Result[T] {
	if err := e.say(ctx, s, prompt); err != nil {
		return failed[T](err)
	}

	for {
		reply := e.next(ctx, s, e.cfg.DataTimeout, text.cancelled)
		if reply.Outcome != Ok {
			return stop[T](reply)
		}

		if isKeyword(reply.Value.Content, e.cfg.SkipKeyword) {
			if err := e.say(ctx, s, text.skipped); err != nil {
				return failed[T](err)
			}
			var empty T
			return skipped(empty)
		}

		parsed := parse(reply.Value.Content)
		if parsed.Outcome != Invalid {
			return parsed
		}
		if err := e.say(ctx, s, parsed.Reason.Error()); err != nil {
			return failed[T](err)
		}
	}
}

// next waits for the user's next message and handles the cancel keyword and
// timeouts, telling the user about either.
func (e *Engine) next(ctx context.Context, s Session, timeout time.Duration, cancelText string) Result[chat.Message] {
	m, err := e.cfg.Transport.WaitForMessage(ctx, s.match(), timeout)
	if errors.Is(err, chat.ErrTimeout) {
		if err := e.say(ctx, s, msgTimedOut); err != nil {
			return failed[chat.Message](err)
		}
		return timedOut[chat.Message]()
	}
	if err != nil {
		return failed[chat.Message](fmt.Errorf("wait for reply: %w", err))
	}

	if isKeyword(m.Content, e.cfg.CancelKeyword) {
		if err := e.say(ctx, s, cancelText); err != nil {
			return failed[chat.Message](err)
		}
		return cancelled[chat.Message]()
	}
	return ok(m)
}

func (e *Engine) say(ctx context.Context, s Session, text string) error {
	if err := e.cfg.Transport.Send(ctx, s.ChannelID, chat.Text(text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// isKeyword matches the whole message, ignoring case only.
func isKeyword(content, keyword string) bool {
	return strings.EqualFold(content, keyword)
}

// parseStats turns one reply into stats, or Invalid with the text to show.
func parseStats(content string) Result[map[string]int] {
	stats, err := pokemon.ParseStats(content)
	if err == nil {
		return ok(stats)
	}
	var bad *pokemon.InvalidStatError
	if errors.As(err, &bad) {
		return invalid[map[string]int](fmt.Errorf(msgBadStat, bad.Key))
	}
	return invalid[map[string]int](errors.New(msgBadFormat))
}

func parseMeta(content string) Result[map[string]string] {
	meta, err := pokemon.ParseMeta(content)
	if err != nil {
		return invalid[map[string]string](errors.New(msgBadFormat))
	}
	return ok(meta)
}
