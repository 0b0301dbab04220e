package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/internal/command"
)

// directory resolves members from the session state, falling back to REST.
type directory struct {
	dg *discordgo.Session
}

func (d *directory) Member(_ context.Context, guildID, userID string) (command.User, error) {
	m, err := d.dg.State.Member(guildID, userID)
	if err != nil {
		m, err = d.dg.GuildMember(guildID, userID)
		if err != nil {
			return command.User{}, err
		}
	}
	return memberUser(m, m.User), nil
}

// memberUser builds a command.User; m may be nil or partial.
func memberUser(m *discordgo.Member, u *discordgo.User) command.User {
	if u == nil {
		return command.User{}
	}
	nick := ""
	if m != nil {
		nick = m.Nick
	}
	return command.User{
		ID:        u.ID,
		Name:      displayName(nick, u),
		AvatarURL: u.AvatarURL(""),
	}
}

// displayName prefers the guild nickname, then the global name.
func displayName(nick string, u *discordgo.User) string {
	switch {
	case nick != "":
		return nick
	case u.GlobalName != "":
		return u.GlobalName
	default:
		return u.Username
	}
}
