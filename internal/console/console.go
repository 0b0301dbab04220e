// Package console runs the box commands over a terminal: lines read from
// the input are chat messages, replies are printed to the output.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/command"
)

// Channel is the only channel a console session has.
const Channel = "console"

type Transport struct {
	mu          sync.Mutex
	out         io.Writer
	waiter      *chat.Waiter
	defaultUser string
}

// New returns a Transport printing to out. Lines without an "@name" prefix
// are attributed to defaultUser.
func New(out io.Writer, defaultUser string) *Transport {
	return &Transport{out: out, waiter: chat.NewWaiter(), defaultUser: defaultUser}
}

func (t *Transport) Send(ctx context.Context, _ string, msg chat.Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := msg.Text
	if msg.Embed != nil {
		text = RenderEmbed(msg.Embed)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, text)
	return err
}

func (t *Transport) WaitForMessage(ctx context.Context, match func(chat.Message) bool, timeout time.Duration) (chat.Message, error) {
	return t.waiter.Wait(ctx, match, timeout)
}

// Feed reads in line by line and hands each line to whoever is waiting.
// Lines read ahead of a prompt are queued for it. It returns at EOF or when
// ctx is done.
func (t *Transport) Feed(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.waiter.Offer(ParseLine(sc.Text(), t.defaultUser))
	}
	return sc.Err()
}

// Waiting is the number of callers blocked in WaitForMessage.
func (t *Transport) Waiting() int {
	return t.waiter.Pending()
}

// ParseLine turns "@gary rp!accept" into a message from gary; any other line
// comes from defaultUser.
func ParseLine(line, defaultUser string) chat.Message {
	author, content := defaultUser, line
	if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "@"); ok {
		name, text, _ := strings.Cut(rest, " ")
		if name != "" {
			author, content = name, text
		}
	}
	return chat.Message{
		ChannelID:  Channel,
		AuthorID:   author,
		AuthorName: author,
		Content:    content,
	}
}

// RenderEmbed prints an embed as plain text.
func RenderEmbed(e *chat.Embed) string {
	var sb strings.Builder
	if e.Title != "" {
		sb.WriteString("== " + e.Title + " ==\n")
	}
	if e.Description != "" {
		sb.WriteString(e.Description + "\n")
	}
	for _, f := range e.Fields {
		value := strings.ReplaceAll(f.Value, "\n", "\n  ")
		sb.WriteString(fmt.Sprintf("%s:\n  %s\n", f.Name, value))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Directory knows every name: on a console a user is whoever you type.
type Directory struct{}

func (Directory) Member(_ context.Context, _, userID string) (command.User, error) {
	return command.User{ID: userID, Name: userID}, nil
}
