package zen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abel123/zeus/pkg/types"
)

func TestIdentityMap(t *testing.T) {
	m := NewIdentityMap()

	d := testDivergence(10000, types.DirectionUp, types.SignalKindNone)
	m.BindArrow("arrow-1", d)

	got, ok := m.Divergence("arrow-1")
	assert.True(t, ok)
	assert.Equal(t, d, got)

	assert.True(t, m.BindNote(d.Key(), "note-1", "group-1"))
	assert.False(t, m.BindNote(d.Key(), "note-2", "group-2"), "first writer wins")

	note, ok := m.NoteFor(d.Key())
	assert.True(t, ok)
	assert.Equal(t, "note-1", string(note))

	m.ResetArrows()
	_, ok = m.Divergence("arrow-1")
	assert.False(t, ok)
	assert.Equal(t, IdentityStats{Notes: 1, NoteKeys: 1}, m.Stats())

	_, ok = m.ReleaseNote("note-2")
	assert.False(t, ok)

	group, ok := m.ReleaseNote("note-1")
	assert.True(t, ok)
	assert.Equal(t, "group-1", string(group))
	assert.Equal(t, IdentityStats{}, m.Stats())
}

func TestIdentityMap_Clear(t *testing.T) {
	m := NewIdentityMap()
	m.BindArrow("a", types.Divergence{})
	m.BindNote("k", "n", "g")

	m.Clear()
	assert.Equal(t, IdentityStats{}, m.Stats())
}
