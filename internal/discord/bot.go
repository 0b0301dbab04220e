package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/pkg/jobmgr"
)

// Bot is a Discord bot
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	log       *zap.SugaredLogger
	waiter    *chat.Waiter
	transport *Transport
	registrar *registrar
	jobs      *jobmgr.Manager
	services  *command.Services

	// ctx is the bot's lifetime; handlers run commands under it.
	ctx context.Context
}

// NewBot creates the session without connecting. Build the command services
// around Transport and Directory, then call Run.
func NewBot(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger = logging.OrNop(logger).Named("discord")
	api := sessionAPI{dg: dg}
	waiter := chat.NewWaiter()

	return &Bot{
		dg:        dg,
		cfg:       cfg,
		log:       logger.Sugar(),
		waiter:    waiter,
		transport: NewTransport(api, waiter),
		registrar: newRegistrar(api, cfg.CommandCacheDir, logger),
		ctx:       context.Background(),
	}, nil
}

// Transport is the chat transport commands and game engines reply through.
func (b *Bot) Transport() *Transport {
	return b.transport
}

// Directory resolves guild members for commands.
func (b *Bot) Directory() command.Directory {
	return &directory{dg: b.dg}
}

// Run connects and serves commands until ctx is done.
func (b *Bot) Run(ctx context.Context, services *command.Services) error {
	b.ctx = ctx
	b.services = services
	b.jobs = jobmgr.NewManager(ctx, b.log.Desugar())

	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onGuildCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info("Shutdown signal received. Cleaning up...")
	b.jobs.Shutdown()
	return nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.handleMessage(b.ctx, toChatMessage(m.Message), memberUser(m.Member, m.Author))
}

// handleMessage offers msg to waiting dialogues and trades first; only an
// unclaimed message can start a command.
func (b *Bot) handleMessage(ctx context.Context, msg chat.Message, author command.User) {
	if b.waiter.Dispatch(msg) {
		return
	}
	name, args, ok := command.ParsePrefixed(b.services.Prefix, msg.Content)
	if !ok {
		return
	}
	c := &command.Context{
		Services:  b.services,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		Author:    author,
	}
	if err := b.execute(ctx, c, name, args); err != nil {
		reply := chat.Outgoing{Embed: &chat.Embed{Description: fmt.Sprintf("Error running command: %v", err)}}
		if err := b.transport.Send(ctx, msg.ChannelID, reply); err != nil {
			b.log.Warnw("Failed to report command error", "channel", msg.ChannelID, "error", err)
		}
	}
}

// execute runs a command and logs its failure. Unknown commands are ignored.
func (b *Bot) execute(ctx context.Context, c *command.Context, name string, args []string) error {
	err := command.Dispatch(ctx, c, name, args)
	if errors.Is(err, command.ErrUnknownCommand) {
		b.log.Debugw("Unknown command", "command", name)
		return nil
	}
	if err != nil {
		b.log.Errorw("Error running command", "command", name, "error", err)
	}
	return err
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	member, user := interactionUser(i)
	if user == nil {
		return
	}

	if err := RespondDeferredEphemeral(s, i); err != nil {
		b.log.Warnw("Failed to acknowledge interaction", "command", data.Name, "error", err)
		return
	}

	c := &command.Context{
		Services:  b.services,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Author:    memberUser(member, user),
	}
	status := "Done"
	if err := b.execute(b.ctx, c, data.Name, command.SlashArgs(data.Options)); err != nil {
		status = fmt.Sprintf("Error running command: %v", err)
	}
	if err := EditResponse(s, i, status); err != nil {
		b.log.Warnw("Failed to edit interaction response", "command", data.Name, "error", err)
	}
}

// onReady only logs: Discord follows Ready with a GuildCreate for every guild
// the bot is in, and those do the per-guild work.
func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Infow("Discord bot is running", "user", r.User.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Infow("Guild available", "guild", g.Guild.ID, "name", g.Guild.Name)
	b.joinGuild(s, g.Guild.ID, g.Guild.Name)
}

// joinGuild leaves blacklisted guilds and registers slash commands in the rest.
func (b *Bot) joinGuild(s *discordgo.Session, guildID, name string) {
	if b.isGuildBlacklisted(guildID) {
		b.log.Infow("Leaving blacklisted guild", "guild", guildID, "name", name)
		if err := s.GuildLeave(guildID); err != nil {
			b.log.Errorw("Failed to leave guild", "guild", guildID, "error", err)
		}
		return
	}
	if !b.cfg.InitSlashCommands {
		b.log.Debugw("Registering slash commands skipped", "guild", guildID)
		return
	}
	// Reconnects replay GuildCreate; a sync already in flight covers them.
	err := b.jobs.Start("commands:"+guildID, func(ctx context.Context) error {
		return b.registerCommands(ctx, guildID)
	})
	if err != nil {
		b.log.Debugw("Slash command sync already running", "guild", guildID)
	}
}

func (b *Bot) registerCommands(ctx context.Context, guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}
	if err := b.registrar.sync(ctx, appID, guildID, commandDefinitions(b.services.Registry)); err != nil {
		return fmt.Errorf("register slash commands in %s: %w", guildID, err)
	}
	return nil
}

// appID returns the bot's application ID, fetching from Discord if not cached in State.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}
