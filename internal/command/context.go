package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/dialogue"
	"github.com/keshon/pokebox/internal/pokemon"
	"github.com/keshon/pokebox/internal/trade"
	"github.com/keshon/pokebox/pkg/cmd"
)

// ErrMemberNotFound is returned when a member argument does not resolve.
var ErrMemberNotFound = errors.New("member not found")

// User is a guild member as commands see it.
type User struct {
	ID        string
	Name      string
	AvatarURL string
}

// Directory resolves guild members; the Discord adapter reads them from the
// session state, the console invents them from names.
type Directory interface {
	Member(ctx context.Context, guildID, userID string) (User, error)
}

// Store is the part of the inventory the box, info and release commands use.
type Store interface {
	GetBox(ctx context.Context, owner pokemon.Owner) (pokemon.Box, error)
	GetCreature(ctx context.Context, owner pokemon.Owner, id int) (pokemon.Creature, error)
	RemoveCreature(ctx context.Context, owner pokemon.Owner, id int) (pokemon.Creature, error)
}

// Services are shared by every invocation.
type Services struct {
	Transport chat.Transport
	Store     Store
	Dialogue  *dialogue.Engine
	Trade     *trade.Negotiator
	Directory Directory
	Registry  *cmd.Registry
	Logger    *zap.Logger
	Prefix    string
}

// Context is what the runtime passes when executing a command, whatever
// carried the request.
type Context struct {
	*Services

	GuildID   string
	ChannelID string
	Author    User
}

// Owner is the box of the invoking member.
func (c *Context) Owner() pokemon.Owner {
	return c.OwnerOf(c.Author.ID)
}

// OwnerOf is the box of another member of the same guild.
func (c *Context) OwnerOf(userID string) pokemon.Owner {
	return pokemon.Owner{GuildID: c.GuildID, UserID: userID}
}

// Private reports whether the command came from a direct message.
func (c *Context) Private() bool {
	return c.GuildID == ""
}

func (c *Context) Reply(ctx context.Context, text string) error {
	return c.Transport.Send(ctx, c.ChannelID, chat.Text(text))
}

func (c *Context) ReplyEmbed(ctx context.Context, embed *chat.Embed) error {
	return c.Transport.Send(ctx, c.ChannelID, chat.Outgoing{Embed: embed})
}

// Member resolves a member argument (a mention or a raw id), or the author
// when arg is empty.
func (c *Context) Member(ctx context.Context, arg string) (User, error) {
	if arg == "" {
		return c.Author, nil
	}
	id, ok := ParseUserRef(arg)
	if !ok {
		return User{}, fmt.Errorf("%q: %w", arg, ErrMemberNotFound)
	}
	if id == c.Author.ID {
		return c.Author, nil
	}
	if c.Directory == nil {
		return User{ID: id, Name: id}, nil
	}
	u, err := c.Directory.Member(ctx, c.GuildID, id)
	if err != nil {
		return User{}, fmt.Errorf("%q: %w", arg, ErrMemberNotFound)
	}
	return u, nil
}

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseUserRef accepts "<@id>", "<@!id>" or a bare id.
func ParseUserRef(arg string) (string, bool) {
	if m := mentionRe.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if arg == "" {
		return "", false
	}
	for _, r := range arg {
		if r == '<' || r == '>' || r == '@' || r == ' ' {
			return "", false
		}
	}
	return arg, true
}
