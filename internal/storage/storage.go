// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/keshon/pokebox/internal/pokemon"
)

// Backend persists whole user records by key.
type Backend interface {
	// Load returns the record stored under key, or false if there is none.
	Load(ctx context.Context, key string) (*pokemon.Record, bool, error)
	// Save writes all records together; backends that can do it atomically do.
	Save(ctx context.Context, records map[string]*pokemon.Record) error
	Close() error
}

// Storage is the inventory store. It serialises read-modify-write sequences
// per user record, so concurrent commands on one box never interleave.
type Storage struct {
	backend Backend
	locks   keyLocks
}

func New(backend Backend) *Storage {
	return &Storage{backend: backend}
}

func (s *Storage) Close() error {
	return s.backend.Close()
}

// getOrCreateUserRecord loads the owner's record; callers hold the key lock.
func (s *Storage) getOrCreateUserRecord(ctx context.Context, owner pokemon.Owner) (*pokemon.Record, error) {
	rec, ok, err := s.backend.Load(ctx, owner.Key())
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", owner, err)
	}
	if !ok || rec == nil {
		return &pokemon.Record{Box: pokemon.Box{}}, nil
	}
	if rec.Box == nil {
		rec.Box = pokemon.Box{}
	}
	return rec, nil
}

func (s *Storage) save(ctx context.Context, owner pokemon.Owner, rec *pokemon.Record) error {
	if err := s.backend.Save(ctx, map[string]*pokemon.Record{owner.Key(): rec}); err != nil {
		return fmt.Errorf("save record %s: %w", owner, err)
	}
	return nil
}

// GetBox returns the owner's creatures in box order.
func (s *Storage) GetBox(ctx context.Context, owner pokemon.Owner) (pokemon.Box, error) {
	rec, err := s.GetUserRecord(ctx, owner)
	if err != nil {
		return nil, err
	}
	return rec.Box, nil
}

// GetUserRecord returns a copy of the owner's record; a user with no record gets an empty one.
func (s *Storage) GetUserRecord(ctx context.Context, owner pokemon.Owner) (*pokemon.Record, error) {
	unlock := s.locks.lock(owner.Key())
	defer unlock()

	return s.getOrCreateUserRecord(ctx, owner)
}

// UpdateUserRecord replaces the owner's record.
func (s *Storage) UpdateUserRecord(ctx context.Context, owner pokemon.Owner, rec *pokemon.Record) error {
	unlock := s.locks.lock(owner.Key())
	defer unlock()

	return s.save(ctx, owner, rec.Clone())
}

// AddCreature appends c to the owner's box under a freshly assigned id and returns it.
func (s *Storage) AddCreature(ctx context.Context, owner pokemon.Owner, c pokemon.Creature) (int, error) {
	unlock := s.locks.lock(owner.Key())
	defer unlock()

	rec, err := s.getOrCreateUserRecord(ctx, owner)
	if err != nil {
		return 0, err
	}

	c = c.Clone()
	c.ID = rec.Box.NextID()
	if c.Stats == nil {
		c.Stats = map[string]int{}
	}
	if c.Meta == nil {
		c.Meta = map[string]string{}
	}
	rec.Box = append(rec.Box, c)

	if err := s.save(ctx, owner, rec); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// GetCreature returns the creature with id from the owner's box.
func (s *Storage) GetCreature(ctx context.Context, owner pokemon.Owner, id int) (pokemon.Creature, error) {
	box, err := s.GetBox(ctx, owner)
	if err != nil {
		return pokemon.Creature{}, err
	}
	c, ok := box.Get(id)
	if !ok {
		return pokemon.Creature{}, &pokemon.NotFoundError{Owner: owner, ID: id}
	}
	return c, nil
}

// RemoveCreature deletes the creature with id from the owner's box and returns it.
func (s *Storage) RemoveCreature(ctx context.Context, owner pokemon.Owner, id int) (pokemon.Creature, error) {
	unlock := s.locks.lock(owner.Key())
	defer unlock()

	rec, err := s.getOrCreateUserRecord(ctx, owner)
	if err != nil {
		return pokemon.Creature{}, err
	}

	c, rest, ok := rec.Box.Take(id)
	if !ok {
		return pokemon.Creature{}, &pokemon.NotFoundError{Owner: owner, ID: id}
	}
	rec.Box = rest

	if err := s.save(ctx, owner, rec); err != nil {
		return pokemon.Creature{}, err
	}
	return c, nil
}

// Transact loads the records of owners, hands them to fn keyed by Owner.Key
// and saves them all if fn succeeds. Nothing is written when fn fails.
func (s *Storage) Transact(ctx context.Context, owners []pokemon.Owner, fn func(records map[string]*pokemon.Record) error) error {
	keys := make([]string, 0, len(owners))
	for _, o := range owners {
		keys = append(keys, o.Key())
	}
	unlock := s.locks.lock(keys...)
	defer unlock()

	records := make(map[string]*pokemon.Record, len(owners))
	for _, o := range owners {
		rec, err := s.getOrCreateUserRecord(ctx, o)
		if err != nil {
			return err
		}
		records[o.Key()] = rec
	}

	if err := fn(records); err != nil {
		return err
	}

	if err := s.backend.Save(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// keyLocks hands out one mutex per key and forgets it once nobody holds it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// lock acquires every distinct key in sorted order and returns the release func.
func (l *keyLocks) lock(keys ...string) func() {
	keys = uniqueSorted(keys)

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*keyLock)
	}
	held := make([]*keyLock, len(keys))
	for i, k := range keys {
		kl, ok := l.locks[k]
		if !ok {
			kl = &keyLock{}
			l.locks[k] = kl
		}
		kl.refs++
		held[i] = kl
	}
	l.mu.Unlock()

	for _, kl := range held {
		kl.Lock()
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func uniqueSorted(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}
