// Package chattest provides a scripted chat.Transport for tests.
package chattest

import (
	"context"
	"sync"
	"time"

	"github.com/keshon/pokebox/internal/chat"
)

// Reply is one scripted event answered to WaitForMessage.
type Reply struct {
	Msg     chat.Message
	Timeout bool
	Err     error
}

// Say scripts a message from userID in channelID.
func Say(channelID, userID, content string) Reply {
	return Reply{Msg: chat.Message{ChannelID: channelID, AuthorID: userID, Content: content}}
}

// Timeout scripts a wait that runs out of time.
func Timeout() Reply {
	return Reply{Timeout: true}
}

// Sent is a recorded outgoing message.
type Sent struct {
	ChannelID string
	Msg       chat.Outgoing
}

// Transport replays scripted replies in order. Messages that do not match the
// caller's predicate are dropped, as a real channel would ignore them. An
// exhausted script behaves like a timeout.
type Transport struct {
	mu       sync.Mutex
	replies  []Reply
	sent     []Sent
	timeouts []time.Duration

	// SendErr, when set, is returned by every Send.
	SendErr error
}

// New returns a transport that will answer with replies.
func New(replies ...Reply) *Transport {
	return &Transport{replies: replies}
}

func (t *Transport) Send(_ context.Context, channelID string, msg chat.Outgoing) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.SendErr != nil {
		return t.SendErr
	}
	t.sent = append(t.sent, Sent{ChannelID: channelID, Msg: msg})
	return nil
}

func (t *Transport) WaitForMessage(ctx context.Context, match func(chat.Message) bool, timeout time.Duration) (chat.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeouts = append(t.timeouts, timeout)

	for len(t.replies) > 0 {
		if err := ctx.Err(); err != nil {
			return chat.Message{}, err
		}
		r := t.replies[0]
		t.replies = t.replies[1:]
		switch {
		case r.Timeout:
			return chat.Message{}, chat.ErrTimeout
		case r.Err != nil:
			return chat.Message{}, r.Err
		case match(r.Msg):
			return r.Msg, nil
		}
	}
	return chat.Message{}, chat.ErrTimeout
}

// Texts returns the text of every sent message; embeds contribute their title.
func (t *Transport) Texts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.sent))
	for _, s := range t.sent {
		if s.Msg.Embed != nil {
			out = append(out, s.Msg.Embed.Title)
			continue
		}
		out = append(out, s.Msg.Text)
	}
	return out
}

// Sent returns every recorded outgoing message.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// Last returns the text of the last sent message.
func (t *Transport) Last() string {
	texts := t.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Timeouts returns the timeout passed to each WaitForMessage call.
func (t *Transport) Timeouts() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.timeouts...)
}

// Remaining is the number of scripted replies not yet consumed.
func (t *Transport) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.replies)
}
