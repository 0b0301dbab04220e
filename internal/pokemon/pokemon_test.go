package pokemon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxNextID(t *testing.T) {
	assert.Equal(t, 1, Box{}.NextID())
	assert.Equal(t, 4, Box{{ID: 1}, {ID: 3}, {ID: 2}}.NextID())
	assert.Equal(t, 1, Box{{ID: 0}}.NextID())
}

func TestBoxTake(t *testing.T) {
	box := Box{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}

	c, rest, ok := box.Take(2)
	assert.True(t, ok)
	assert.Equal(t, "b", c.Name)
	assert.Equal(t, Box{{ID: 1, Name: "a"}, {ID: 3, Name: "c"}}, rest)
	assert.Len(t, box, 3, "original box must be left alone")

	_, same, ok := box.Take(9)
	assert.False(t, ok)
	assert.Equal(t, box, same)
}

func TestCreatureCloneIsDeep(t *testing.T) {
	c := Creature{ID: 1, Stats: map[string]int{"level": 5}, Meta: map[string]string{"nature": "hasty"}}
	cp := c.Clone()
	cp.Stats["level"] = 99
	cp.Meta["nature"] = "calm"

	assert.Equal(t, 5, c.Stats["level"])
	assert.Equal(t, "hasty", c.Meta["nature"])
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Owner: Owner{GuildID: "g", UserID: "u"}, ID: 7})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "7 is not a valid ID!", err.Error())
	assert.Equal(t, "g:u", Owner{GuildID: "g", UserID: "u"}.Key())
}
