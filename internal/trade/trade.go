// Package trade negotiates a swap of one Pokemon between two boxes.
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keshon/pokebox/internal/chat"
	"github.com/keshon/pokebox/internal/logging"
	"github.com/keshon/pokebox/internal/pokemon"
)

//go:generate mockgen -destination=mock/mock_store.go -package=trademock github.com/keshon/pokebox/internal/trade Store

// ErrSelfTrade is returned when a user offers a trade to themselves.
var ErrSelfTrade = errors.New("you can't trade with yourself")

const (
	msgProposal = "%s, %s wants to trade their %s (#%d) for your %s (#%d). Say %s or %s to respond to the trade!"
	msgExpired  = "Failed to respond in time! Cancelling."
	msgDeclined = "Trade declined! Cancelling."
	msgDone     = "Trade completed! Traded %s for %s!"
)

// Store is what a trade needs from the inventory.
type Store interface {
	GetCreature(ctx context.Context, owner pokemon.Owner, id int) (pokemon.Creature, error)
	Transact(ctx context.Context, owners []pokemon.Owner, fn func(records map[string]*pokemon.Record) error) error
}

type Config struct {
	Transport chat.Transport
	Store     Store
	Logger    *zap.Logger
	Timeout   time.Duration

	AcceptPhrase  string
	DeclinePhrase string
}

// Negotiator runs trades. Concurrent trades only share the store.
type Negotiator struct {
	cfg Config
	log *zap.SugaredLogger
}

func New(cfg Config) *Negotiator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.AcceptPhrase == "" {
		cfg.AcceptPhrase = "rp!accept"
	}
	if cfg.DeclinePhrase == "" {
		cfg.DeclinePhrase = "rp!decline"
	}
	return &Negotiator{
		cfg: cfg,
		log: logging.OrNop(cfg.Logger).Sugar().Named("trade"),
	}
}

// Proposal is one offer: the proposer gives ProposerCreatureID and wants
// CounterpartyCreatureID in return. It lives only as long as the command.
type Proposal struct {
	ChannelID              string
	Proposer               pokemon.Owner
	ProposerCreatureID     int
	Counterparty           pokemon.Owner
	CounterpartyCreatureID int
}

// Outcome is how a proposal ended.
type Outcome int

const (
	Accepted Outcome = iota
	Declined
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Run announces p, waits for the counterparty's answer and swaps the two
// Pokemon on acceptance. A missing id is returned as a *pokemon.NotFoundError
// and leaves both boxes untouched.
func (n *Negotiator) Run(ctx context.Context, p Proposal) (Outcome, error) {
	if p.Proposer == p.Counterparty {
		return Declined, ErrSelfTrade
	}

	offered, err := n.cfg.Store.GetCreature(ctx, p.Proposer, p.ProposerCreatureID)
	if err != nil {
		return Declined, err
	}
	wanted, err := n.cfg.Store.GetCreature(ctx, p.Counterparty, p.CounterpartyCreatureID)
	if err != nil {
		return Declined, err
	}

	announce := fmt.Sprintf(msgProposal,
		chat.Mention(p.Counterparty.UserID), chat.Mention(p.Proposer.UserID),
		offered.Name, offered.ID, wanted.Name, wanted.ID,
		n.cfg.AcceptPhrase, n.cfg.DeclinePhrase,
	)
	if err := n.say(ctx, p.ChannelID, announce); err != nil {
		return Declined, err
	}

	answer, err := n.cfg.Transport.WaitForMessage(ctx,
		chat.FromAnyOf(p.ChannelID, p.Counterparty.UserID, n.cfg.AcceptPhrase, n.cfg.DeclinePhrase),
		n.cfg.Timeout,
	)
	if errors.Is(err, chat.ErrTimeout) {
		n.log.Debugw("Trade expired", "proposer", p.Proposer.String(), "counterparty", p.Counterparty.String())
		return Expired, n.say(ctx, p.ChannelID, msgExpired)
	}
	if err != nil {
		return Declined, fmt.Errorf("wait for answer: %w", err)
	}

	if !chat.FromAnyOf(p.ChannelID, p.Counterparty.UserID, n.cfg.AcceptPhrase)(answer) {
		return Declined, n.say(ctx, p.ChannelID, msgDeclined)
	}

	var given, received pokemon.Creature
	err = n.cfg.Store.Transact(ctx, []pokemon.Owner{p.Proposer, p.Counterparty}, func(records map[string]*pokemon.Record) error {
		var err error
		given, received, err = Swap(
			p.Proposer, records[p.Proposer.Key()], p.ProposerCreatureID,
			p.Counterparty, records[p.Counterparty.Key()], p.CounterpartyCreatureID,
		)
		return err
	})
	if err != nil {
		return Accepted, err
	}

	n.log.Infow("Trade completed",
		"proposer", p.Proposer.String(), "gave", given.Name,
		"counterparty", p.Counterparty.String(), "gave_back", received.Name,
	)
	return Accepted, n.say(ctx, p.ChannelID, fmt.Sprintf(msgDone, given.Name, received.Name))
}

// Swap moves yourID from yours to theirs and theirID from theirs to yours,
// appending each to its new box and exchanging the two ids. Both records are
// left unchanged if either id is missing. It returns the creatures as they
// were before the swap.
func Swap(you pokemon.Owner, yours *pokemon.Record, yourID int, them pokemon.Owner, theirs *pokemon.Record, theirID int) (given, received pokemon.Creature, err error) {
	if yours.Box.Index(yourID) < 0 {
		return given, received, &pokemon.NotFoundError{Owner: you, ID: yourID}
	}
	if theirs.Box.Index(theirID) < 0 {
		return given, received, &pokemon.NotFoundError{Owner: them, ID: theirID}
	}

	given, yourRest, _ := yours.Box.Take(yourID)
	received, theirRest, _ := theirs.Box.Take(theirID)

	moved, back := given.Clone(), received.Clone()
	moved.ID, back.ID = received.ID, given.ID

	yours.Box = append(yourRest, back)
	theirs.Box = append(theirRest, moved)
	return given, received, nil
}

func (n *Negotiator) say(ctx context.Context, channelID, text string) error {
	if err := n.cfg.Transport.Send(ctx, channelID, chat.Text(text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
