package zen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

var testIndicators = []types.IndicatorConfig{
	{Fast: 12, Slow: 26, Signal: 9},
	{Fast: 4, Slow: 9, Signal: 9, Source: types.PriceSourceVolume},
}

func newTestSurface(t *testing.T) (*chart.Surface, []chart.StudyID) {
	s := chart.NewSurface("BINANCE:BTCUSDT", "60")

	var studies []chart.StudyID
	for _, indicator := range testIndicators {
		id, err := s.CreateStudy(macdStudyOptions(indicator))
		require.NoError(t, err)
		studies = append(studies, id)
	}

	return s, studies
}

func newTestReconciler(t *testing.T) (*chart.Surface, *IdentityMap, *Reconciler) {
	s, studies := newTestSurface(t)
	identity := NewIdentityMap()
	r := NewReconciler(s, identity, nil)
	r.SetStudies(studies)
	return s, identity, r
}

func testSegment(start, end types.Timestamp, dir types.Direction) types.Segment {
	return types.Segment{
		StartPrice: 100,
		EndPrice:   110,
		StartTime:  start,
		EndTime:    end,
		Direction:  dir,
	}
}

// testDivergence builds a divergence whose boundary is derived from base.
func testDivergence(base types.Timestamp, dir types.Direction, kind types.SignalKind) types.Divergence {
	return types.Divergence{
		MarkerA:   types.MarkerPoint{Time: base, Value: 1.2345},
		MarkerB:   types.MarkerPoint{Time: base + 3600, Value: 0.5},
		Direction: dir,
		Kind:      kind,
		Zone: &types.ZoneInfo{
			Left:         base - 3600,
			Right:        base + 3600,
			High:         120,
			Low:          95,
			SegmentCount: 3,
		},
		Boundary: types.Boundary{
			Start: types.BoundaryWindow{LeftTime: base, RightTime: base + 600},
			End:   types.BoundaryWindow{LeftTime: base + 3000, RightTime: base + 3600},
		},
		Low:   95.5,
		Price: 101,
		Time:  base + 3600,
	}
}

func testPayload() *types.AnnotationPayload {
	return &types.AnnotationPayload{
		Segments: types.SegmentSet{
			Finished: []types.Segment{
				testSegment(1000, 2000, types.DirectionUp),
				testSegment(2000, 3000, types.DirectionDown),
			},
			Unfinished: []types.Segment{
				testSegment(3000, 4000, types.DirectionUp),
			},
		},
		Divergences: [][]types.Divergence{
			{testDivergence(10000, types.DirectionDown, types.SignalKindFirstSell)},
			{testDivergence(20000, types.DirectionUp, types.SignalKindNone)},
		},
		BarMarkers: [][]types.Timestamp{
			{1500},
			{2500, 3500},
		},
	}
}

func countShapes(s *chart.Surface, kinds ...chart.ShapeKind) int {
	return len(s.Shapes(kinds...))
}

// arrowOf returns the live arrow drawn for the divergence with the given first marker time.
func arrowOf(t *testing.T, s *chart.Surface, identity *IdentityMap, markerTime types.Timestamp) chart.ShapeID {
	for _, shape := range s.Shapes(chart.ShapeArrow) {
		d, ok := identity.Divergence(shape.ID)
		if ok && d.MarkerA.Time == markerTime {
			return shape.ID
		}
	}

	t.Fatalf("no arrow for divergence at %d", markerTime)
	return ""
}
