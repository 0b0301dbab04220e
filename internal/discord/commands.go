package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/pkg/cmd"
	"github.com/keshon/pokebox/pkg/retrylimit"
	"github.com/keshon/pokebox/pkg/util"
)

// registrar syncs slash commands for a guild with Discord: it deletes
// obsolete ones and creates commands whose definition changed.
type registrar struct {
	api     restAPI
	cache   *hashCache
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	log     *zap.SugaredLogger
}

func newRegistrar(api restAPI, cacheDir string, logger *zap.Logger) *registrar {
	retry := retrylimit.DefaultConfig()
	retry.Logger = logger
	return &registrar{
		api:   api,
		cache: &hashCache{dir: cacheDir},
		// Discord allows about 50 requests per second per bot.
		limiter: retrylimit.NewAdaptiveLimiter(20, 1, 40, 1, 0.5),
		retry:   retry,
		log:     logger.Sugar(),
	}
}

func (r *registrar) do(ctx context.Context, fn func() error) error {
	return retrylimit.WithRetry(ctx, r.retry, r.limiter, fn)
}

func (r *registrar) sync(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	var remote []*discordgo.ApplicationCommand
	err := r.do(ctx, func() error {
		var err error
		remote, err = r.api.Commands(appID, guildID)
		return err
	})
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}

	wanted := make(map[string]bool, len(defs))
	for _, d := range defs {
		wanted[d.Name] = true
	}
	hashes := r.cache.load(guildID)
	registered := make(map[string]bool, len(remote))

	for _, rc := range remote {
		if wanted[rc.Name] {
			registered[rc.Name] = true
			continue
		}
		r.log.Infow("Deleting obsolete command", "guild", guildID, "command", rc.Name)
		if err := r.do(ctx, func() error { return r.api.DeleteCommand(appID, guildID, rc.ID) }); err != nil {
			r.log.Errorw("Failed to delete command", "guild", guildID, "command", rc.Name, "error", err)
			continue
		}
		delete(hashes, rc.Name)
	}

	var changed []*discordgo.ApplicationCommand
	for _, d := range defs {
		if hashes[d.Name] != hashCommand(d) || !registered[d.Name] {
			changed = append(changed, d)
		}
	}

	var mu sync.Mutex
	err = util.Parallel(ctx, changed, 4, func(ctx context.Context, d *discordgo.ApplicationCommand) error {
		err := r.do(ctx, func() error { return r.api.CreateCommand(appID, guildID, d) })

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			r.log.Errorw("Can't create command", "guild", guildID, "command", d.Name, "error", err)
			delete(hashes, d.Name)
			return nil
		}
		hashes[d.Name] = hashCommand(d)
		return nil
	})
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		r.log.Infow("Registered changed commands", "guild", guildID, "count", len(changed))
	}

	return r.cache.save(guildID, hashes)
}

// commandDefinitions collects the slash definitions of every command in reg.
func commandDefinitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		sp, ok := cmd.Root(c).(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	return defs
}
