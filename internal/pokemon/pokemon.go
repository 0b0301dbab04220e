// Package pokemon holds the box domain: creatures, the boxes that own them
// and the parsers used to read creature data typed into chat.
package pokemon

import (
	"maps"
	"slices"
)

// Creature is a single Pokemon kept in a box. ID is unique within the owning box.
type Creature struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Species string            `json:"type"`
	Stats   map[string]int    `json:"stats"`
	Meta    map[string]string `json:"meta"`
}

// Clone returns a deep copy so callers can mutate maps without touching stored data.
func (c Creature) Clone() Creature {
	out := c
	out.Stats = maps.Clone(c.Stats)
	out.Meta = maps.Clone(c.Meta)
	return out
}

// Box is the ordered collection of creatures owned by one user.
type Box []Creature

// Index returns the position of the creature with id, or -1.
func (b Box) Index(id int) int {
	return slices.IndexFunc(b, func(c Creature) bool { return c.ID == id })
}

// Get returns the creature with id.
func (b Box) Get(id int) (Creature, bool) {
	i := b.Index(id)
	if i < 0 {
		return Creature{}, false
	}
	return b[i], true
}

// Take removes the creature with id and returns it together with the shrunk box.
func (b Box) Take(id int) (Creature, Box, bool) {
	i := b.Index(id)
	if i < 0 {
		return Creature{}, b, false
	}
	c := b[i]
	return c, slices.Delete(slices.Clone(b), i, i+1), true
}

// NextID is the id the store hands to the next creature added to the box.
func (b Box) NextID() int {
	next := 1
	for _, c := range b {
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	return next
}

// Clone deep-copies the box.
func (b Box) Clone() Box {
	if b == nil {
		return nil
	}
	out := make(Box, len(b))
	for i, c := range b {
		out[i] = c.Clone()
	}
	return out
}

// Owner identifies a user record: a member of one guild.
type Owner struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

// Key is the storage key of the owner's record.
func (o Owner) Key() string {
	return o.GuildID + ":" + o.UserID
}

func (o Owner) String() string { return o.Key() }

// Record is everything stored for one user.
type Record struct {
	Box Box `json:"box"`
}

// Clone deep-copies the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return &Record{Box: Box{}}
	}
	return &Record{Box: r.Box.Clone()}
}
