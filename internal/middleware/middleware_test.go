package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/keshon/pokebox/internal/chat/chattest"
	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/pkg/cmd"
)

type probe struct {
	ran bool
	err error
	pan bool
}

func (p *probe) Name() string        { return "probe" }
func (p *probe) Description() string { return "probe" }
func (p *probe) Run(context.Context, *cmd.Invocation) error {
	p.ran = true
	if p.pan {
		panic("kaboom")
	}
	return p.err
}

func invocation(guildID string, tr *chattest.Transport) *cmd.Invocation {
	return &cmd.Invocation{
		Args: []string{"1"},
		Data: &command.Context{
			Services:  &command.Services{Transport: tr},
			GuildID:   guildID,
			ChannelID: "c1",
			Author:    command.User{ID: "ash", Name: "Ash"},
		},
	}
}

func TestWithGuildOnly(t *testing.T) {
	p := &probe{}
	tr := chattest.New()
	c := cmd.Apply(p, WithGuildOnly())

	require.NoError(t, c.Run(context.Background(), invocation("", tr)))
	assert.False(t, p.ran)
	assert.Equal(t, guildOnlyMessage, tr.Last())

	require.NoError(t, c.Run(context.Background(), invocation("g1", tr)))
	assert.True(t, p.ran)
}

func TestWithCommandLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	boom := errors.New("boom")
	p := &probe{err: boom}
	c := cmd.Apply(p, WithCommandLogger(zap.New(core)))

	err := c.Run(context.Background(), invocation("g1", chattest.New()))
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("Command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "probe", entries[0].ContextMap()["command"])
	assert.Equal(t, "g1", entries[0].ContextMap()["guild"])
}

func TestWithRecover(t *testing.T) {
	p := &probe{pan: true}
	c := cmd.Apply(p, WithRecover(zap.NewNop()))

	err := c.Run(context.Background(), invocation("g1", chattest.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}
