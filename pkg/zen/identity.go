package zen

import (
	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

// IdentityMap associates host drawing ids with the domain objects behind them.
//
// arrows is rebuilt on every reconciliation pass. notes and noteKeys survive passes
// and are only pruned when the user removes a note. IdentityMap is not safe for
// concurrent use; the controller serializes access.
type IdentityMap struct {
	// note id -> expansion group id
	notes map[chart.ShapeID]chart.GroupID

	// divergence key -> note id
	noteKeys map[string]chart.ShapeID

	// divergence arrow id -> divergence
	arrows map[chart.ShapeID]types.Divergence
}

func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		notes:    make(map[chart.ShapeID]chart.GroupID),
		noteKeys: make(map[string]chart.ShapeID),
		arrows:   make(map[chart.ShapeID]types.Divergence),
	}
}

func (m *IdentityMap) BindArrow(id chart.ShapeID, divergence types.Divergence) {
	m.arrows[id] = divergence
}

// Divergence returns the divergence drawn as the given arrow in the latest pass.
func (m *IdentityMap) Divergence(id chart.ShapeID) (types.Divergence, bool) {
	d, ok := m.arrows[id]
	return d, ok
}

func (m *IdentityMap) ResetArrows() {
	m.arrows = make(map[chart.ShapeID]types.Divergence)
}

// NoteFor returns the note already created for the divergence key.
func (m *IdentityMap) NoteFor(key string) (chart.ShapeID, bool) {
	id, ok := m.noteKeys[key]
	return id, ok
}

// BindNote records an expansion. The first note bound to a key wins; BindNote returns
// false and records nothing when the key is taken.
func (m *IdentityMap) BindNote(key string, note chart.ShapeID, group chart.GroupID) bool {
	if _, exists := m.noteKeys[key]; exists {
		return false
	}

	m.noteKeys[key] = note
	m.notes[note] = group
	return true
}

// ReleaseNote forgets the note and every key pointing at it, returning the expansion group.
func (m *IdentityMap) ReleaseNote(note chart.ShapeID) (chart.GroupID, bool) {
	group, ok := m.notes[note]
	if !ok {
		return "", false
	}

	delete(m.notes, note)
	for key, id := range m.noteKeys {
		if id == note {
			delete(m.noteKeys, key)
		}
	}

	return group, true
}

// Clear drops every table.
func (m *IdentityMap) Clear() {
	m.notes = make(map[chart.ShapeID]chart.GroupID)
	m.noteKeys = make(map[string]chart.ShapeID)
	m.arrows = make(map[chart.ShapeID]types.Divergence)
}

type IdentityStats struct {
	Notes    int `json:"notes"`
	NoteKeys int `json:"noteKeys"`
	Arrows   int `json:"arrows"`
}

func (m *IdentityMap) Stats() IdentityStats {
	return IdentityStats{
		Notes:    len(m.notes),
		NoteKeys: len(m.noteKeys),
		Arrows:   len(m.arrows),
	}
}
