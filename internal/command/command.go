package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/pkg/cmd"
)

// Command is what the individual bot commands implement.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Category() string
	Run(ctx context.Context, c *Context, args []string) error
}

// SlashProvider commands are also registered as Discord slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// OptionsProvider commands describe their arguments as slash options, in
// the order the text form expects them.
type OptionsProvider interface {
	Options() []*discordgo.ApplicationCommandOption
}

// Meta is exposed by the adapter so middleware and help can read the
// category without depending on the concrete command type.
type Meta interface {
	Category() string
	Aliases() []string
}

// Adapter adapts a Command to cmd.Command so it can live in the universal
// registry. It delegates the optional provider interfaces to the inner command.
type Adapter struct {
	Cmd Command
}

func (a *Adapter) Name() string        { return a.Cmd.Name() }
func (a *Adapter) Description() string { return a.Cmd.Description() }
func (a *Adapter) Aliases() []string   { return a.Cmd.Aliases() }
func (a *Adapter) Category() string    { return a.Cmd.Category() }

func (a *Adapter) Hidden() bool {
	h, ok := a.Cmd.(cmd.Hider)
	return ok && h.Hidden()
}

func (a *Adapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	c, ok := inv.Data.(*Context)
	if !ok {
		return fmt.Errorf("wrong context type %T", inv.Data)
	}
	return a.Cmd.Run(ctx, c, inv.Args)
}

func (a *Adapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	if a.Hidden() {
		return nil
	}
	def := &discordgo.ApplicationCommand{
		Name:        a.Cmd.Name(),
		Description: a.Cmd.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
	if op, ok := a.Cmd.(OptionsProvider); ok {
		def.Options = op.Options()
	}
	return def
}

// RegisterCommand registers a command with r and applies middlewares.
func RegisterCommand(r *cmd.Registry, c Command, mws ...cmd.Middleware) {
	r.Register(cmd.Apply(&Adapter{Cmd: c}, mws...))
}

// Group is a command with subcommands. The first argument picks the
// subcommand by name or alias; anything else runs Default.
type Group struct {
	GroupName        string
	GroupDescription string
	GroupAliases     []string
	GroupCategory    string
	Subcommands      []Command
	Default          func(ctx context.Context, c *Context, args []string) error
}

func (g *Group) Name() string        { return g.GroupName }
func (g *Group) Description() string { return g.GroupDescription }
func (g *Group) Aliases() []string   { return g.GroupAliases }
func (g *Group) Category() string    { return g.GroupCategory }

// Sub returns the subcommand called name, or nil.
func (g *Group) Sub(name string) Command {
	for _, s := range g.Subcommands {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
		for _, a := range s.Aliases() {
			if strings.EqualFold(a, name) {
				return s
			}
		}
	}
	return nil
}

func (g *Group) Run(ctx context.Context, c *Context, args []string) error {
	if len(args) > 0 {
		if s := g.Sub(args[0]); s != nil {
			return s.Run(ctx, c, args[1:])
		}
	}
	if g.Default == nil {
		return fmt.Errorf("unknown subcommand, see %shelp %s", c.Prefix, g.GroupName)
	}
	return g.Default(ctx, c, args)
}

// SlashDefinition exposes each subcommand as a slash subcommand.
func (g *Group) SlashDefinition() *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Name:        g.GroupName,
		Description: g.GroupDescription,
		Type:        discordgo.ChatApplicationCommand,
	}
	for _, s := range g.Subcommands {
		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        s.Name(),
			Description: s.Description(),
		}
		if op, ok := s.(OptionsProvider); ok {
			opt.Options = op.Options()
		}
		def.Options = append(def.Options, opt)
	}
	return def
}
