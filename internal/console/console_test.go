package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/internal/dialogue"
	"github.com/keshon/pokebox/internal/pokemon"
	"github.com/keshon/pokebox/internal/storage"
)

func TestParseLine(t *testing.T) {
	assert.Equal(t, chat.Message{ChannelID: Channel, AuthorID: "ash", AuthorName: "ash", Content: "Sparky"}, ParseLine("Sparky", "ash"))
	assert.Equal(t, chat.Message{ChannelID: Channel, AuthorID: "gary", AuthorName: "gary", Content: "rp!accept"}, ParseLine("@gary rp!accept", "ash"))
	assert.Equal(t, "@", ParseLine("@", "ash").Content)
	assert.Equal(t, "ash", ParseLine("@", "ash").AuthorID)
}

func TestRenderEmbed(t *testing.T) {
	out := RenderEmbed(&chat.Embed{
		Title:       "Sparky",
		Description: "a mouse",
		Fields: []chat.EmbedField{
			{Name: "Stats", Value: "level: 5\nattack: 12"},
		},
	})
	assert.Equal(t, "== Sparky ==\na mouse\nStats:\n  level: 5\n  attack: 12", out)
}

func TestSendWritesLines(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, "ash")
	require.NoError(t, tr.Send(context.Background(), Channel, chat.Text("hello")))
	require.NoError(t, tr.Send(context.Background(), Channel, chat.Outgoing{Embed: &chat.Embed{Title: "Box"}}))
	assert.Equal(t, "hello\n== Box ==\n", buf.String())
}

// syncBuffer lets the test read output while the dialogue writes it.
type syncBuffer struct {
	mu  chan struct{}
	buf bytes.Buffer
}

func newSyncBuffer() *syncBuffer {
	b := &syncBuffer{mu: make(chan struct{}, 1)}
	b.mu <- struct{}{}
	return b
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	<-b.mu
	defer func() { b.mu <- struct{}{} }()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	<-b.mu
	defer func() { b.mu <- struct{}{} }()
	return b.buf.String()
}

func TestCreateOverConsole(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := newSyncBuffer()
	tr := New(out, "ash")
	store := storage.New(storage.NewMemoryBackend())
	game := config.DefaultGame()
	engine := dialogue.New(dialogue.Config{
		Transport:     tr,
		Store:         store,
		PromptTimeout: game.PromptTimeout,
		DataTimeout:   game.DataTimeout,
	})

	pr, pw := io.Pipe()
	fed := make(chan error, 1)
	go func() { fed <- tr.Feed(context.Background(), pr) }()

	done := make(chan dialogue.Result[int], 1)
	owner := pokemon.Owner{GuildID: "console", UserID: "ash"}
	go func() {
		done <- engine.Create(context.Background(), dialogue.Session{Owner: owner, ChannelID: Channel, UserID: "ash"})
	}()

	steps := []struct{ prompt, line string }{
		{"What will its nickname be?", "@gary cancel"},
		{"What will its nickname be?", "Sparky"},
		{"What species of Pokemon is it?", "Pikachu"},
		{"In any order, what are its stats?", "level: 5"},
		{"Any additional data?", "skip"},
	}
	for _, step := range steps {
		require.Eventually(t, func() bool {
			return strings.Contains(out.String(), step.prompt) && tr.Waiting() == 1
		}, 5*time.Second, time.Millisecond)
		_, err := io.WriteString(pw, step.line+"\n")
		require.NoError(t, err)
	}

	r := <-done
	require.Equal(t, dialogue.Ok, r.Outcome)
	require.NoError(t, pw.Close())
	require.NoError(t, <-fed)

	box, err := store.GetBox(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, box, 1)
	assert.Equal(t, map[string]int{"level": 5}, box[0].Stats)
	assert.Contains(t, out.String(), "Finished! Pokemon has been added to box with ID 1")
}

func TestCreateWithAnswersReadAhead(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := newSyncBuffer()
	tr := New(out, "ash")
	store := storage.New(storage.NewMemoryBackend())
	engine := dialogue.New(dialogue.Config{Transport: tr, Store: store, PromptTimeout: time.Second, DataTimeout: time.Second})

	in := strings.NewReader("Sparky\n@gary cancel\nPidgey\nlevel: 5, attack: 10\nnature: hasty\n")
	require.NoError(t, tr.Feed(context.Background(), in))

	owner := pokemon.Owner{GuildID: "console", UserID: "ash"}
	r := engine.Create(context.Background(), dialogue.Session{Owner: owner, ChannelID: Channel, UserID: "ash"})
	require.Equal(t, dialogue.Ok, r.Outcome)

	box, err := store.GetBox(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, box, 1)
	assert.Equal(t, "Pidgey", box[0].Species)
	assert.Equal(t, map[string]int{"level": 5, "attack": 10}, box[0].Stats)
	assert.Equal(t, map[string]string{"nature": "hasty"}, box[0].Meta)
	assert.Contains(t, out.String(), "Finished! Pokemon has been added to box with ID 1")
}

func TestDirectory(t *testing.T) {
	u, err := Directory{}.Member(context.Background(), "console", "gary")
	require.NoError(t, err)
	assert.Equal(t, command.User{ID: "gary", Name: "gary"}, u)
}
