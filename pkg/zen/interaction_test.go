package zen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

type interactionFixture struct {
	surface     *chart.Surface
	identity    *IdentityMap
	reconciler  *Reconciler
	interaction *Interaction
}

func newInteractionFixture(t *testing.T) *interactionFixture {
	s, identity, r := newTestReconciler(t)
	h := NewInteraction(s, identity, nil)
	s.OnDrawingEvent(func(id chart.ShapeID, event chart.DrawingEventType) {
		h.Handle(id, event)
	})

	return &interactionFixture{surface: s, identity: identity, reconciler: r, interaction: h}
}

func TestInteraction_ClickExpands(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	assert.True(t, f.interaction.Handle(arrow, chart.DrawingEventClick))

	d := testDivergence(10000, types.DirectionDown, types.SignalKindFirstSell)

	lines := f.surface.Shapes(chart.ShapeVerticalLine)
	require.Len(t, lines, 4)

	var times []types.Timestamp
	for _, line := range lines {
		times = append(times, line.Points[0].Time)
		assert.Equal(t, types.ColorBearish, line.Options.Overrides["linecolor"])
	}
	assert.ElementsMatch(t, []types.Timestamp{10000, 10600, 13000, 13600}, times)

	notes := f.surface.Shapes(chart.ShapeNote)
	require.Len(t, notes, 1)
	note := notes[0]
	assert.Equal(t, "macd_area | 1.23 | 0.50", note.Options.Text)
	assert.Equal(t, chart.Point{Time: 11800, Price: 95.5}, note.Points[0])
	assert.Equal(t, ExpansionPoint(d), note.Points[0])

	groups := f.surface.GroupsByName("divergence " + string(arrow))
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 5)

	noteID, ok := f.identity.NoteFor(d.Key())
	assert.True(t, ok)
	assert.Equal(t, note.ID, noteID)
	assert.True(t, f.surface.Selection().IsEmpty())
}

func TestInteraction_ClickIdempotence(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	f.surface.Click(arrow)
	f.surface.Click(arrow)

	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))
	assert.Len(t, f.surface.GroupsByName("divergence "+string(arrow)), 1)

	// the same divergence drawn by a later pass maps to the same note
	f.reconciler.Reconcile(testPayload())
	next := arrowOf(t, f.surface, f.identity, 10000)
	require.NotEqual(t, arrow, next)

	assert.False(t, f.interaction.Handle(next, chart.DrawingEventClick))
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))
	assert.Equal(t, IdentityStats{Notes: 1, NoteKeys: 1, Arrows: 2}, f.identity.Stats())
}

func TestInteraction_FirstWriterWins(t *testing.T) {
	f := newInteractionFixture(t)

	a := testDivergence(10000, types.DirectionDown, types.SignalKindFirstSell)
	b := a
	b.Kind = types.SignalKindSecondSell
	b.MarkerA.Time = 10100

	f.reconciler.Reconcile(&types.AnnotationPayload{
		Divergences: [][]types.Divergence{{a}, {b}},
	})

	assert.True(t, f.interaction.Handle(arrowOf(t, f.surface, f.identity, 10000), chart.DrawingEventClick))
	assert.False(t, f.interaction.Handle(arrowOf(t, f.surface, f.identity, 10100), chart.DrawingEventClick))
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))
}

func TestInteraction_RemoveCascades(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	f.surface.Click(arrow)

	note := f.surface.Shapes(chart.ShapeNote)[0].ID
	require.NoError(t, f.surface.RemoveShape(note))

	assert.Equal(t, 0, countShapes(f.surface, chart.ShapeVerticalLine))
	assert.Empty(t, f.surface.GroupsByName("divergence "+string(arrow)))
	assert.Equal(t, IdentityStats{Notes: 0, NoteKeys: 0, Arrows: 2}, f.identity.Stats())

	// the divergence can be expanded again
	assert.True(t, f.interaction.Handle(arrow, chart.DrawingEventClick))
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))
}

func TestInteraction_RemoveUnrelated(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	f.surface.Click(arrow)
	before := f.identity.Stats()
	groups := f.surface.NumGroups()

	assert.False(t, f.interaction.Handle("unknown", chart.DrawingEventRemove))

	line := f.surface.Shapes(chart.ShapeVerticalLine)[0].ID
	require.NoError(t, f.surface.RemoveShape(line))

	assert.Equal(t, before, f.identity.Stats())
	assert.Equal(t, groups, f.surface.NumGroups())
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))
}

func TestInteraction_IgnoredEvents(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	assert.False(t, f.interaction.Handle(arrow, chart.DrawingEventMove))

	segment := f.surface.Shapes(chart.ShapeTrendLine)[0].ID
	assert.False(t, f.interaction.Handle(segment, chart.DrawingEventClick))

	assert.Equal(t, 0, countShapes(f.surface, chart.ShapeNote, chart.ShapeVerticalLine))
}

func TestInteraction_NoteRefused(t *testing.T) {
	f := newInteractionFixture(t)
	f.reconciler.Reconcile(testPayload())
	f.surface.SetShapeFilter(func(points []chart.Point, options chart.ShapeOptions) bool {
		return options.Shape != chart.ShapeNote
	})

	arrow := arrowOf(t, f.surface, f.identity, 10000)
	assert.False(t, f.interaction.Handle(arrow, chart.DrawingEventClick))

	// boundary lines stay behind ungrouped, nothing is recorded
	assert.Equal(t, 4, countShapes(f.surface, chart.ShapeVerticalLine))
	assert.Empty(t, f.surface.GroupsByName("divergence "+string(arrow)))
	assert.Equal(t, 0, f.identity.Stats().Notes)
	assert.True(t, f.surface.Selection().IsEmpty())
}

type brokenGroupsChart struct {
	*chart.Surface
}

func (c *brokenGroupsChart) ShapesGroupController() chart.GroupController {
	panic("group controller unavailable")
}

func TestInteraction_PanicIsNoop(t *testing.T) {
	s, studies := newTestSurface(t)
	identity := NewIdentityMap()
	r := NewReconciler(s, identity, nil)
	r.SetStudies(studies)
	r.Reconcile(testPayload())

	h := NewInteraction(&brokenGroupsChart{s}, identity, nil)

	arrow := arrowOf(t, s, identity, 10000)
	assert.NotPanics(t, func() {
		assert.False(t, h.Handle(arrow, chart.DrawingEventClick))
	})
	assert.Equal(t, 0, identity.Stats().Notes)
}
