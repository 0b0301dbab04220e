package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/pkg/cmd"
)

// ErrUnknownCommand is returned by Dispatch for names nobody registered.
var ErrUnknownCommand = errors.New("unknown command")

// ParsePrefixed splits a prefixed message into a command name and its
// arguments. ok is false when content does not start with prefix.
func ParsePrefixed(prefix, content string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || len(content) < len(prefix) || !strings.EqualFold(content[:len(prefix)], prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command registered as name with args.
func Dispatch(ctx context.Context, c *Context, name string, args []string) error {
	found := c.Registry.Get(name)
	if found == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	return found.Run(ctx, &cmd.Invocation{Args: args, Data: c})
}

// SlashArgs flattens slash command options into positional arguments:
// subcommand names first, then option values in declaration order.
func SlashArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) []string {
	var args []string
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			args = append(args, o.Name)
			args = append(args, SlashArgs(o.Options)...)
		case discordgo.ApplicationCommandOptionUser:
			args = append(args, fmt.Sprintf("<@%v>", o.Value))
		case discordgo.ApplicationCommandOptionInteger, discordgo.ApplicationCommandOptionNumber:
			if f, ok := o.Value.(float64); ok {
				args = append(args, strconv.FormatFloat(f, 'f', -1, 64))
				continue
			}
			args = append(args, fmt.Sprint(o.Value))
		default:
			args = append(args, fmt.Sprint(o.Value))
		}
	}
	return args
}
