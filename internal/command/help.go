package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/pkg/cmd"
)

const (
	CategoryInformation = "🕯️ Information"
	CategoryGameplay    = "🎲 Gameplay"
)

var categoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryGameplay:    20,
}

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{} }
func (c *HelpCommand) Category() string    { return CategoryInformation }

func (c *HelpCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "command",
			Description: "Show the subcommands of one command",
			Required:    false,
		},
	}
}

func (c *HelpCommand) Run(ctx context.Context, cc *Context, args []string) error {
	if len(args) > 0 {
		found := cc.Registry.Get(args[0])
		if found == nil || cmd.IsHidden(found) {
			return fmt.Errorf("%s: %w", args[0], ErrUnknownCommand)
		}
		return cc.ReplyEmbed(ctx, &chat.Embed{
			Title:       cc.Prefix + found.Name(),
			Description: describe(cc.Prefix, found),
		})
	}

	return cc.ReplyEmbed(ctx, &chat.Embed{
		Title:       "Help",
		Description: buildHelpByCategory(cc.Prefix, cc.Registry.Visible()),
	})
}

func buildHelpByCategory(prefix string, all []cmd.Command) string {
	categoryMap := make(map[string][]cmd.Command)
	for _, c := range all {
		cat := CategoryGameplay
		if meta, ok := cmd.Root(c).(Meta); ok && meta.Category() != "" {
			cat = meta.Category()
		}
		categoryMap[cat] = append(categoryMap[cat], c)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if categoryWeights[cats[i]] != categoryWeights[cats[j]] {
			return categoryWeights[cats[i]] < categoryWeights[cats[j]]
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		for _, c := range categoryMap[cat] {
			sb.WriteString(fmt.Sprintf("`%s%s` - %s\n", prefix, c.Name(), c.Description()))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func describe(prefix string, c cmd.Command) string {
	var sb strings.Builder
	sb.WriteString(c.Description())

	var root any = cmd.Root(c)
	if a, ok := root.(*Adapter); ok {
		root = a.Cmd
	}
	if meta, ok := root.(Meta); ok && len(meta.Aliases()) > 0 {
		sb.WriteString(fmt.Sprintf("\nAliases: `%s`", strings.Join(meta.Aliases(), "`, `")))
	}
	if g, ok := root.(*Group); ok {
		sb.WriteString("\n")
		for _, s := range g.Subcommands {
			sb.WriteString(fmt.Sprintf("\n`%s%s %s` - %s", prefix, g.Name(), s.Name(), s.Description()))
		}
	}
	return sb.String()
}
