package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// restAPI is the slice of the Discord REST API the adapter uses.
type restAPI interface {
	SendText(channelID, text string) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error

	Commands(appID, guildID string) ([]*discordgo.ApplicationCommand, error)
	CreateCommand(appID, guildID string, def *discordgo.ApplicationCommand) error
	DeleteCommand(appID, guildID, cmdID string) error
}

// sessionAPI implements restAPI on a live session.
type sessionAPI struct {
	dg *discordgo.Session
}

func (a sessionAPI) SendText(channelID, text string) error {
	_, err := a.dg.ChannelMessageSend(channelID, text)
	return withStatus(err)
}

func (a sessionAPI) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := a.dg.ChannelMessageSendEmbed(channelID, embed)
	return withStatus(err)
}

func (a sessionAPI) Commands(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	cmds, err := a.dg.ApplicationCommands(appID, guildID)
	return cmds, withStatus(err)
}

func (a sessionAPI) CreateCommand(appID, guildID string, def *discordgo.ApplicationCommand) error {
	_, err := a.dg.ApplicationCommandCreate(appID, guildID, def)
	return withStatus(err)
}

func (a sessionAPI) DeleteCommand(appID, guildID, cmdID string) error {
	return withStatus(a.dg.ApplicationCommandDelete(appID, guildID, cmdID))
}

// restError exposes the HTTP status of a failed Discord request to the
// retry logic.
type restError struct {
	err *discordgo.RESTError
}

func (r *restError) Error() string { return r.err.Error() }
func (r *restError) Unwrap() error { return r.err }

func (r *restError) StatusCode() int {
	if r.err.Response == nil {
		return 0
	}
	return r.err.Response.StatusCode
}

func withStatus(err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) {
		return &restError{err: re}
	}
	return err
}
