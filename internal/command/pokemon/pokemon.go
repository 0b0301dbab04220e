// Package pokemon holds the box commands: viewing, creating, inspecting,
// releasing and trading Pokemon.
package pokemon

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/internal/dialogue"
	poke "github.com/keshon/pokebox/internal/pokemon"
	"github.com/keshon/pokebox/internal/trade"
	"github.com/keshon/pokebox/pkg/cmd"
)

// Register adds every box command to r.
func Register(r *cmd.Registry, mws ...cmd.Middleware) {
	command.RegisterCommand(r, &BoxCommand{}, mws...)
	command.RegisterCommand(r, NewGroup(), mws...)
	command.RegisterCommand(r, &ResponseCommand{name: "accept"}, mws...)
	command.RegisterCommand(r, &ResponseCommand{name: "decline"}, mws...)
}

func memberOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: "Guild member",
		Required:    required,
	}
}

func idOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func parseID(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("missing Pokemon ID")
	}
	return poke.ParseID(arg)
}

// ----- box -----

type BoxCommand struct{}

func (c *BoxCommand) Name() string        { return "box" }
func (c *BoxCommand) Description() string { return "Check the pokemon in your box" }
func (c *BoxCommand) Aliases() []string   { return []string{} }
func (c *BoxCommand) Category() string    { return command.CategoryGameplay }

func (c *BoxCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{memberOption(false)}
}

func (c *BoxCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	return showBox(ctx, cc, argAt(args, 0))
}

func showBox(ctx context.Context, cc *command.Context, memberArg string) error {
	member, err := cc.Member(ctx, memberArg)
	if err != nil {
		return err
	}
	box, err := cc.Store.GetBox(ctx, cc.OwnerOf(member.ID))
	if err != nil {
		return err
	}
	return cc.ReplyEmbed(ctx, BoxEmbed(member, box))
}

// BoxEmbed lists a box one "id: name" line per Pokemon.
func BoxEmbed(member command.User, box poke.Box) *chat.Embed {
	lines := make([]string, 0, len(box))
	for _, p := range box {
		lines = append(lines, fmt.Sprintf("%d: **%s**", p.ID, p.Name))
	}
	return &chat.Embed{
		Title:       fmt.Sprintf("%s's Pokemon", member.Name),
		Description: strings.Join(lines, "\n"),
		AuthorName:  member.Name,
		AuthorIcon:  member.AvatarURL,
	}
}

// ----- pokemon group -----

// NewGroup builds the pokemon command: without a subcommand it shows a box
// the same way box does.
func NewGroup() *command.Group {
	return &command.Group{
		GroupName:        "pokemon",
		GroupDescription: "Pokemon management, same use as box without a subcommand",
		GroupAliases:     []string{"p"},
		GroupCategory:    command.CategoryGameplay,
		Subcommands: []command.Command{
			&CreateCommand{},
			&InfoCommand{},
			&ReleaseCommand{},
			&TradeCommand{},
		},
		Default: func(ctx context.Context, cc *command.Context, args []string) error {
			return showBox(ctx, cc, argAt(args, 0))
		},
	}
}

// ----- create -----

type CreateCommand struct{}

func (c *CreateCommand) Name() string        { return "create" }
func (c *CreateCommand) Description() string { return "Create a new Pokemon to add to your box" }
func (c *CreateCommand) Aliases() []string   { return []string{"new"} }
func (c *CreateCommand) Category() string    { return command.CategoryGameplay }

func (c *CreateCommand) Run(ctx context.Context, cc *command.Context, _ []string) error {
	// Failures are logged by the engine and end the dialogue quietly.
	cc.Dialogue.Create(ctx, dialogue.Session{
		Owner:     cc.Owner(),
		ChannelID: cc.ChannelID,
		UserID:    cc.Author.ID,
	})
	return nil
}

// ----- info -----

type InfoCommand struct{}

func (c *InfoCommand) Name() string        { return "info" }
func (c *InfoCommand) Description() string { return "Get info on a Pokemon" }
func (c *InfoCommand) Aliases() []string   { return []string{} }
func (c *InfoCommand) Category() string    { return command.CategoryGameplay }

func (c *InfoCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{idOption("id", "Pokemon ID")}
}

func (c *InfoCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	id, err := parseID(argAt(args, 0))
	if err != nil {
		return err
	}
	p, err := cc.Store.GetCreature(ctx, cc.Owner(), id)
	if err != nil {
		return err
	}
	return cc.ReplyEmbed(ctx, InfoEmbed(cc.Author, p))
}

// InfoEmbed shows every field of one Pokemon.
func InfoEmbed(owner command.User, p poke.Creature) *chat.Embed {
	stats := make([]string, 0, len(p.Stats))
	for _, name := range poke.StatNames {
		if v, ok := p.Stats[name]; ok {
			stats = append(stats, fmt.Sprintf("%s: %d", name, v))
		}
	}
	meta := make([]string, 0, len(p.Meta))
	for _, k := range sortedKeys(p.Meta) {
		meta = append(meta, fmt.Sprintf("%s: %s", k, p.Meta[k]))
	}

	return &chat.Embed{
		Title:      p.Name,
		AuthorName: owner.Name,
		AuthorIcon: owner.AvatarURL,
		Fields: []chat.EmbedField{
			{Name: "Nickname", Value: p.Name, Inline: true},
			{Name: "Species", Value: p.Species, Inline: true},
			{Name: "ID", Value: strconv.Itoa(p.ID), Inline: true},
			{Name: "Stats", Value: orNone(stats), Inline: true},
			{Name: "Additional Info", Value: orNone(meta), Inline: true},
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNone(lines []string) string {
	if len(lines) == 0 {
		return "None"
	}
	return strings.Join(lines, "\n")
}

// ----- release -----

type ReleaseCommand struct{}

func (c *ReleaseCommand) Name() string        { return "release" }
func (c *ReleaseCommand) Description() string { return "Release a Pokemon from your box" }
func (c *ReleaseCommand) Aliases() []string   { return []string{"delete", "rm", "remove"} }
func (c *ReleaseCommand) Category() string    { return command.CategoryGameplay }

func (c *ReleaseCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{idOption("id", "Pokemon ID")}
}

func (c *ReleaseCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	id, err := parseID(argAt(args, 0))
	if err != nil {
		return err
	}
	p, err := cc.Store.RemoveCreature(ctx, cc.Owner(), id)
	if err != nil {
		return err
	}
	return cc.Reply(ctx, fmt.Sprintf("This Pokemon has been released! Goodbye %s!", p.Name))
}

// ----- trade -----

type TradeCommand struct{}

func (c *TradeCommand) Name() string { return "trade" }
func (c *TradeCommand) Description() string {
	return "Offer a trade to a user: your Pokemon ID, their Pokemon ID, then the user"
}
func (c *TradeCommand) Aliases() []string { return []string{} }
func (c *TradeCommand) Category() string  { return command.CategoryGameplay }

func (c *TradeCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		idOption("your_id", "The ID of the Pokemon you want to give"),
		idOption("their_id", "The ID of the Pokemon you want from them"),
		memberOption(true),
	}
}

func (c *TradeCommand) Run(ctx context.Context, cc *command.Context, args []string) error {
	yourID, err := parseID(argAt(args, 0))
	if err != nil {
		return err
	}
	theirID, err := parseID(argAt(args, 1))
	if err != nil {
		return err
	}
	if argAt(args, 2) == "" {
		return fmt.Errorf("missing member to trade with")
	}
	other, err := cc.Member(ctx, argAt(args, 2))
	if err != nil {
		return err
	}

	_, err = cc.Trade.Run(ctx, trade.Proposal{
		ChannelID:              cc.ChannelID,
		Proposer:               cc.Owner(),
		ProposerCreatureID:     yourID,
		Counterparty:           cc.OwnerOf(other.ID),
		CounterpartyCreatureID: theirID,
	})
	return err
}

// ----- accept / decline -----

// ResponseCommand makes the trade answers valid command text. The answer
// itself is consumed by the waiting trade before dispatch.
type ResponseCommand struct {
	name string
}

func (c *ResponseCommand) Name() string        { return c.name }
func (c *ResponseCommand) Description() string { return "Respond to a trade offer" }
func (c *ResponseCommand) Aliases() []string   { return []string{} }
func (c *ResponseCommand) Category() string    { return command.CategoryGameplay }
func (c *ResponseCommand) Hidden() bool        { return true }

func (c *ResponseCommand) Run(context.Context, *command.Context, []string) error {
	return nil
}
