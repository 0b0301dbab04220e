// Package chat is the contract between game logic and whatever carries the
// conversation (Discord, a terminal). Game code sends messages and blocks on
// the next message that matches a predicate.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrTimeout is returned by WaitForMessage when nothing matched in time.
var ErrTimeout = errors.New("timed out waiting for message")

// Message is an incoming chat message.
type Message struct {
	ID         string
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
	Content    string
}

// EmbedField is a titled block inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a structured message. Adapters decide how it looks.
type Embed struct {
	Title       string
	Description string
	AuthorName  string
	AuthorIcon  string
	Fields      []EmbedField
}

// Outgoing is either plain text or an embed.
type Outgoing struct {
	Text  string
	Embed *Embed
}

// Text builds a plain text Outgoing.
func Text(s string) Outgoing { return Outgoing{Text: s} }

// Transport delivers messages and lets a caller wait for a reply.
type Transport interface {
	Send(ctx context.Context, channelID string, msg Outgoing) error
	WaitForMessage(ctx context.Context, match func(Message) bool, timeout time.Duration) (Message, error)
}

// From matches messages written by userID in channelID.
func From(channelID, userID string) func(Message) bool {
	return func(m Message) bool {
		return m.ChannelID == channelID && m.AuthorID == userID
	}
}

// FromAnyOf matches messages by userID in channelID whose trimmed content equals
// one of phrases, ignoring case.
func FromAnyOf(channelID, userID string, phrases ...string) func(Message) bool {
	return func(m Message) bool {
		if m.ChannelID != channelID || m.AuthorID != userID {
			return false
		}
		content := strings.TrimSpace(m.Content)
		for _, p := range phrases {
			if strings.EqualFold(content, p) {
				return true
			}
		}
		return false
	}
}

// Mention renders a user mention the way Discord parses it.
func Mention(userID string) string {
	return "<@" + userID + ">"
}
