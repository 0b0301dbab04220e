package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/pokebox/internal/chat"
)

const EmbedColor = 0xb01e66

// Transport carries the game conversation over Discord channels. Incoming
// messages reach waiting callers through the bot's message handler.
type Transport struct {
	api    restAPI
	waiter *chat.Waiter
}

func NewTransport(api restAPI, waiter *chat.Waiter) *Transport {
	return &Transport{api: api, waiter: waiter}
}

func (t *Transport) Send(ctx context.Context, channelID string, msg chat.Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Embed != nil {
		return t.api.SendEmbed(channelID, toEmbed(msg.Embed))
	}
	return t.api.SendText(channelID, msg.Text)
}

func (t *Transport) WaitForMessage(ctx context.Context, match func(chat.Message) bool, timeout time.Duration) (chat.Message, error) {
	return t.waiter.Wait(ctx, match, timeout)
}

func toEmbed(e *chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       EmbedColor,
	}
	if e.AuthorName != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.AuthorName, IconURL: e.AuthorIcon}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return out
}

func toChatMessage(m *discordgo.Message) chat.Message {
	msg := chat.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = displayName("", m.Author)
	}
	if m.Member != nil && m.Member.Nick != "" {
		msg.AuthorName = m.Member.Nick
	}
	return msg
}
