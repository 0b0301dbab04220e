package discord

import (
	"github.com/bwmarrin/discordgo"
)

// RespondDeferredEphemeral acknowledges an interaction ephemerally without an immediate reply.
func RespondDeferredEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// EditResponse edits an existing interaction response.
func EditResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

// interactionUser is whoever triggered i, in a guild or a DM.
func interactionUser(i *discordgo.InteractionCreate) (*discordgo.Member, *discordgo.User) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member, i.Member.User
	}
	return nil, i.User
}
