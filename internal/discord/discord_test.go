package discord

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
	boxcmd "github.com/keshon/pokebox/internal/command/pokemon"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/pkg/cmd"
)

type statusErr int

func (s statusErr) Error() string   { return "discord said no" }
func (s statusErr) StatusCode() int { return int(s) }

type fakeAPI struct {
	mu       sync.Mutex
	texts    []string
	embeds   []*discordgo.MessageEmbed
	remote   []*discordgo.ApplicationCommand
	created  []string
	deleted  []string
	failName string
}

func (f *fakeAPI) SendText(_, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeAPI) SendEmbed(_ string, e *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, e)
	return nil
}

func (f *fakeAPI) Commands(_, _ string) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, nil
}

func (f *fakeAPI) CreateCommand(_, _ string, def *discordgo.ApplicationCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if def.Name == f.failName {
		return statusErr(400)
	}
	f.created = append(f.created, def.Name)
	for _, rc := range f.remote {
		if rc.Name == def.Name {
			return nil
		}
	}
	f.remote = append(f.remote, &discordgo.ApplicationCommand{ID: "id-" + def.Name, Name: def.Name})
	return nil
}

func (f *fakeAPI) DeleteCommand(_, _, cmdID string) error {
	for i, rc := range f.remote {
		if rc.ID == cmdID {
			f.deleted = append(f.deleted, rc.Name)
			f.remote = append(f.remote[:i], f.remote[i+1:]...)
			return nil
		}
	}
	return statusErr(404)
}

type failingCommand struct{}

func (failingCommand) Name() string        { return "boom" }
func (failingCommand) Description() string { return "fails" }
func (failingCommand) Aliases() []string   { return nil }
func (failingCommand) Category() string    { return "" }
func (failingCommand) Run(context.Context, *command.Context, []string) error {
	return errors.New("kaboom")
}

func newTestBot(api *fakeAPI) *Bot {
	waiter := chat.NewWaiter()
	reg := cmd.NewRegistry()
	command.RegisterCommand(reg, failingCommand{})
	command.RegisterCommand(reg, &command.HelpCommand{})

	b := &Bot{
		cfg:       &config.Config{CommandPrefix: "rp!", DiscordGuildBlacklist: []string{"bad"}},
		log:       zap.NewNop().Sugar(),
		waiter:    waiter,
		transport: NewTransport(api, waiter),
		ctx:       context.Background(),
	}
	b.services = &command.Services{Transport: b.transport, Registry: reg, Prefix: "rp!"}
	return b
}

func message(content string) chat.Message {
	return chat.Message{ChannelID: "c1", GuildID: "g1", AuthorID: "u1", Content: content}
}

func TestHandleMessageReportsErrors(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api)

	b.handleMessage(context.Background(), message("rp!boom"), command.User{ID: "u1"})

	require.Len(t, api.embeds, 1)
	assert.Equal(t, "Error running command: kaboom", api.embeds[0].Description)
	assert.Equal(t, EmbedColor, api.embeds[0].Color)
}

func TestHandleMessageIgnoresNoise(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api)

	b.handleMessage(context.Background(), message("hello there"), command.User{ID: "u1"})
	b.handleMessage(context.Background(), message("rp!nosuchthing"), command.User{ID: "u1"})

	assert.Empty(t, api.embeds)
	assert.Empty(t, api.texts)
}

func TestHandleMessageFeedsWaiterFirst(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api)

	got := make(chan chat.Message, 1)
	go func() {
		m, err := b.transport.WaitForMessage(context.Background(), chat.From("c1", "u1"), time.Minute)
		if err == nil {
			got <- m
		}
	}()
	require.Eventually(t, func() bool { return b.waiter.Pending() == 1 }, time.Second, time.Millisecond)

	b.handleMessage(context.Background(), message("rp!boom"), command.User{ID: "u1"})

	select {
	case m := <-got:
		assert.Equal(t, "rp!boom", m.Content)
	case <-time.After(time.Second):
		t.Fatal("waiter did not receive the message")
	}
	assert.Empty(t, api.embeds, "a claimed message must not run a command")
}

func TestTransportSend(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTransport(api, chat.NewWaiter())
	ctx := context.Background()

	require.NoError(t, tr.Send(ctx, "c1", chat.Text("hi")))
	require.NoError(t, tr.Send(ctx, "c1", chat.Outgoing{Embed: &chat.Embed{
		Title:      "Ash's Pokemon",
		AuthorName: "Ash",
		AuthorIcon: "https://cdn/ash.png",
		Fields:     []chat.EmbedField{{Name: "ID", Value: "1", Inline: true}},
	}}))

	assert.Equal(t, []string{"hi"}, api.texts)
	require.Len(t, api.embeds, 1)
	e := api.embeds[0]
	assert.Equal(t, "Ash's Pokemon", e.Title)
	assert.Equal(t, "Ash", e.Author.Name)
	assert.Equal(t, "https://cdn/ash.png", e.Author.IconURL)
	assert.Equal(t, []*discordgo.MessageEmbedField{{Name: "ID", Value: "1", Inline: true}}, e.Fields)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, tr.Send(cancelled, "c1", chat.Text("late")), context.Canceled)
}

func TestToChatMessage(t *testing.T) {
	m := toChatMessage(&discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "rp!box",
		Author:    &discordgo.User{ID: "u1", Username: "ash", GlobalName: "Ash K"},
		Member:    &discordgo.Member{Nick: "Champion"},
	})
	assert.Equal(t, chat.Message{ID: "m1", ChannelID: "c1", GuildID: "g1", AuthorID: "u1", AuthorName: "Champion", Content: "rp!box"}, m)

	u := memberUser(nil, &discordgo.User{ID: "u2", Username: "gary"})
	assert.Equal(t, "gary", u.Name)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, "Ash K", displayName("", &discordgo.User{Username: "ash", GlobalName: "Ash K"}))
}

func TestBlacklist(t *testing.T) {
	b := newTestBot(&fakeAPI{})
	assert.True(t, b.isGuildBlacklisted("bad"))
	assert.False(t, b.isGuildBlacklisted("g1"))
}

func TestCommandDefinitions(t *testing.T) {
	reg := cmd.NewRegistry()
	boxcmd.Register(reg)
	command.RegisterCommand(reg, &command.HelpCommand{})

	var names []string
	for _, d := range commandDefinitions(reg) {
		assert.Equal(t, discordgo.ChatApplicationCommand, d.Type)
		names = append(names, d.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"box", "help", "pokemon"}, names)
}

func TestHashIgnoresOptionOrder(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "x", Options: []*discordgo.ApplicationCommandOption{{Name: "a"}, {Name: "b"}}}
	b := &discordgo.ApplicationCommand{Name: "x", Options: []*discordgo.ApplicationCommandOption{{Name: "b"}, {Name: "a"}}}
	c := &discordgo.ApplicationCommand{Name: "x", Description: "changed"}

	assert.Equal(t, hashCommand(a), hashCommand(b))
	assert.NotEqual(t, hashCommand(a), hashCommand(c))
}

func TestRegistrarSync(t *testing.T) {
	api := &fakeAPI{remote: []*discordgo.ApplicationCommand{{ID: "old", Name: "music"}}}
	r := newRegistrar(api, t.TempDir(), zap.NewNop())
	ctx := context.Background()

	defs := []*discordgo.ApplicationCommand{
		{Name: "box", Description: "Check the pokemon in your box"},
		{Name: "help", Description: "Get a list of available commands"},
	}

	require.NoError(t, r.sync(ctx, "app", "g1", defs))
	assert.Equal(t, []string{"music"}, api.deleted)
	assert.ElementsMatch(t, []string{"box", "help"}, api.created)

	api.created = nil
	require.NoError(t, r.sync(ctx, "app", "g1", defs))
	assert.Empty(t, api.created, "unchanged definitions are not registered again")

	defs[1] = &discordgo.ApplicationCommand{Name: "help", Description: "Lists commands"}
	require.NoError(t, r.sync(ctx, "app", "g1", defs))
	assert.Equal(t, []string{"help"}, api.created)

	// Removed on Discord's side while the cache still has it.
	api.created = nil
	api.remote = api.remote[:1]
	require.NoError(t, r.sync(ctx, "app", "g1", defs))
	assert.Equal(t, []string{"help"}, api.created)
}

func TestRegistrarDoesNotCacheFailures(t *testing.T) {
	api := &fakeAPI{failName: "box"}
	r := newRegistrar(api, t.TempDir(), zap.NewNop())
	defs := []*discordgo.ApplicationCommand{{Name: "box"}}

	require.NoError(t, r.sync(context.Background(), "app", "g1", defs))
	assert.Empty(t, api.created)
	assert.NotContains(t, r.cache.load("g1"), "box")

	api.failName = ""
	require.NoError(t, r.sync(context.Background(), "app", "g1", defs))
	assert.Equal(t, []string{"box"}, api.created)
}
