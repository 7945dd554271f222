package zen

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
	"github.com/abel123/zeus/pkg/zen/mocks"
)

var testEpoch = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type controllerFixture struct {
	surface    *chart.Surface
	fetcher    *mocks.MockFetcher
	clock      *clock.Mock
	controller *Controller
}

func newControllerFixture(t *testing.T, options Options) *controllerFixture {
	mockCtrl := gomock.NewController(t)

	s := chart.NewSurface("BINANCE:BTCUSDT", "60")
	s.SetVisibleRange(types.VisibleRange{From: 1000, To: 50000})

	fetcher := mocks.NewMockFetcher(mockCtrl)
	clk := clock.NewMock()
	clk.Set(testEpoch)

	if options.Indicators == nil {
		options.Indicators = testIndicators
	}
	options.QuietPeriod = 800 * time.Millisecond
	options.MaxWait = 3000 * time.Millisecond
	options.Clock = clk

	return &controllerFixture{
		surface:    s,
		fetcher:    fetcher,
		clock:      clk,
		controller: NewController(s, fetcher, options),
	}
}

func (f *controllerFixture) attach(t *testing.T) {
	require.NoError(t, f.controller.Attach(context.Background(), f.surface))
}

// The mock clock runs due timers on their own goroutine, so scheduled refreshes are
// awaited through the stats they record.

func (f *controllerFixture) waitRefreshes(t *testing.T, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.controller.Stats().Refreshes == n
	}, time.Second, time.Millisecond)
}

func (f *controllerFixture) waitSkipped(t *testing.T, n int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.controller.Stats().Skipped == n
	}, time.Second, time.Millisecond)
}

func TestController_AttachCreatesStudies(t *testing.T) {
	f := newControllerFixture(t, Options{Volume: true, MovingAverages: DefaultMovingAverages})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)

	f.attach(t)

	names := map[string]chart.StudyOptions{}
	for _, study := range f.surface.Studies() {
		names[study.Name] = study
	}

	require.Len(t, names, 4)
	assert.True(t, names["Volume"].Overlay)
	assert.Equal(t, 120, names["Moving Average Multiple"].Inputs["sixthPeriods"])
	assert.Equal(t, 12, names["MACD-XD"].Inputs["in_0"])
	assert.Equal(t, "close", names["MACD-XD"].Inputs["in_3"])
	assert.Equal(t, "volume", names["MACD"].Inputs["in_3"])

	// the first paint happens on attach
	assert.Equal(t, 4, f.surface.NumGroups())

	assert.ErrorIs(t, f.controller.Attach(context.Background(), f.surface), ErrAlreadyAttached)
}

func TestController_RequestAndAlignment(t *testing.T) {
	f := newControllerFixture(t, Options{})

	var request types.AnnotationRequest
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).
		DoAndReturn(func(ctx context.Context, req types.AnnotationRequest, historicalOnly bool) (*types.AnnotationPayload, error) {
			request = req
			return testPayload(), nil
		})

	f.attach(t)

	assert.Equal(t, types.AnnotationRequest{
		From:       1000,
		To:         50000,
		Symbol:     "BINANCE:BTCUSDT",
		Resolution: "60",
		Indicators: testIndicators,
	}, request)

	studyByName := map[string]chart.StudyID{}
	for id, study := range f.surface.Studies() {
		studyByName[study.Name] = id
	}

	owners := map[chart.StudyID]int{}
	for _, arrow := range f.surface.Shapes(chart.ShapeArrow) {
		owners[arrow.Options.OwnerStudyID]++
	}

	assert.Equal(t, map[chart.StudyID]int{
		studyByName["MACD-XD"]: 1,
		studyByName["MACD"]:    1,
	}, owners)
}

func TestController_SkipOnDegenerateRange(t *testing.T) {
	f := newControllerFixture(t, Options{})
	f.surface.SetVisibleRange(types.VisibleRange{From: 100, To: 100})

	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	f.attach(t)
	f.surface.SetVisibleRange(types.VisibleRange{From: 200, To: 100})
	f.clock.Add(5 * time.Second)
	f.waitSkipped(t, 2)

	require.NoError(t, f.controller.Refresh(context.Background()))
	assert.Equal(t, int64(3), f.controller.Stats().Skipped)
	assert.Equal(t, 0, f.surface.NumGroups())
}

func TestController_DebouncesEvents(t *testing.T) {
	f := newControllerFixture(t, Options{})

	var calls int32
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).
		DoAndReturn(func(context.Context, types.AnnotationRequest, bool) (*types.AnnotationPayload, error) {
			atomic.AddInt32(&calls, 1)
			return testPayload(), nil
		}).AnyTimes()

	f.attach(t)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: 60000})
	f.clock.Add(200 * time.Millisecond)
	f.surface.PushTick(types.Bar{Time: 60000, Close: 10})
	f.clock.Add(200 * time.Millisecond)
	f.surface.LoadData("BINANCE:ETHUSDT", "")
	f.clock.Add(799 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	f.clock.Add(time.Millisecond)
	f.waitRefreshes(t, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	assert.Equal(t, 4, f.surface.NumGroups())
	assert.Equal(t, "BINANCE:ETHUSDT", f.controller.Stats().Symbol)
}

func TestController_DebounceCeiling(t *testing.T) {
	f := newControllerFixture(t, Options{})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).AnyTimes()

	f.attach(t)
	f.waitRefreshes(t, 1)

	// a range change every 100ms never goes quiet; the ceiling still refreshes once
	// 3s after the first change of the burst
	start := f.clock.Now()
	var invocations []time.Time
	for i := 0; i < 50; i++ {
		f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: types.Timestamp(50000 + i)})
		f.clock.Add(100 * time.Millisecond)

		if f.clock.Now().Sub(start) == 3000*time.Millisecond {
			f.waitRefreshes(t, 2)
		}

		if f.controller.Stats().Refreshes > int64(len(invocations))+1 {
			invocations = append(invocations, f.clock.Now())
		}
	}
	end := f.clock.Now()

	assert.Equal(t, []time.Time{start.Add(3000 * time.Millisecond)}, invocations)

	for window := start; window.Add(3000 * time.Millisecond).Before(end.Add(time.Nanosecond)); window = window.Add(100 * time.Millisecond) {
		found := false
		for _, at := range invocations {
			if !at.Before(window) && !at.After(window.Add(3000*time.Millisecond)) {
				found = true
				break
			}
		}
		assert.True(t, found, "no refresh within the 3s window starting at %s", window.Sub(start))
	}

	// the trailing refresh lands once the burst goes quiet
	f.clock.Add(800 * time.Millisecond)
	f.waitRefreshes(t, 3)
}

func TestController_Disabled(t *testing.T) {
	f := newControllerFixture(t, Options{Disabled: true})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	f.attach(t)
	assert.False(t, f.controller.Enabled())

	f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: 70000})
	f.clock.Add(5 * time.Second)
	require.NoError(t, f.controller.Refresh(context.Background()))
	assert.Equal(t, 0, f.surface.NumGroups())
}

func TestController_SetEnabled(t *testing.T) {
	f := newControllerFixture(t, Options{})

	var calls int32
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).
		DoAndReturn(func(context.Context, types.AnnotationRequest, bool) (*types.AnnotationPayload, error) {
			atomic.AddInt32(&calls, 1)
			return testPayload(), nil
		}).AnyTimes()

	f.attach(t)
	f.controller.SetEnabled(false)

	f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: 70000})
	f.clock.Add(5 * time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	f.controller.SetEnabled(true)
	f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: 80000})
	f.clock.Add(time.Second)
	f.waitRefreshes(t, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestController_Replay(t *testing.T) {
	f := newControllerFixture(t, Options{})

	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)
	f.attach(t)

	var request types.AnnotationRequest
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), true).
		DoAndReturn(func(ctx context.Context, req types.AnnotationRequest, historicalOnly bool) (*types.AnnotationPayload, error) {
			request = req
			return testPayload(), nil
		}).Times(1)

	f.controller.SetReplay(30000)
	f.clock.Add(time.Second)
	f.waitRefreshes(t, 2)
	assert.Equal(t, types.VisibleRange{From: 1000, To: 30000}, request.Range())

	// ticks are ignored while replaying
	f.surface.PushTick(types.Bar{Time: 50000})
	f.clock.Add(5 * time.Second)

	at, replaying := f.controller.Replay()
	assert.True(t, replaying)
	assert.Equal(t, types.Timestamp(30000), at)

	// a replay before the window start leaves nothing to fetch
	f.controller.SetReplay(500)
	f.clock.Add(time.Second)
	f.waitSkipped(t, 1)

	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)
	f.controller.ClearReplay()
	f.clock.Add(time.Second)
	f.waitRefreshes(t, 3)

	_, replaying = f.controller.Replay()
	assert.False(t, replaying)
}

func TestController_FetchFailureKeepsOverlay(t *testing.T) {
	f := newControllerFixture(t, Options{})

	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)
	f.attach(t)

	groups := f.surface.ShapesGroupController().Groups()
	shapes := f.surface.NumShapes()

	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(nil, errors.New("connection refused")).Times(1)

	err := f.controller.Refresh(context.Background())
	assert.Error(t, err)

	assert.Equal(t, groups, f.surface.ShapesGroupController().Groups())
	assert.Equal(t, shapes, f.surface.NumShapes())

	stats := f.controller.Stats()
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, int64(1), stats.Refreshes)
	assert.Contains(t, stats.LastError, "connection refused")
}

func TestController_OverlappingRefreshes(t *testing.T) {
	f := newControllerFixture(t, Options{})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)
	f.attach(t)

	shapes := f.surface.NumShapes()

	// both fetches block until released, the later one is released first
	started := make(chan chan struct{}, 2)
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).
		DoAndReturn(func(context.Context, types.AnnotationRequest, bool) (*types.AnnotationPayload, error) {
			release := make(chan struct{})
			started <- release
			<-release
			return testPayload(), nil
		}).Times(2)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.controller.Refresh(context.Background())
		}()
	}

	first := <-started
	second := <-started

	close(second)
	f.waitRefreshes(t, 2)

	close(first)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, int64(3), f.controller.Stats().Refreshes)
	assert.Equal(t, 4, f.surface.NumGroups())
	for _, category := range []Category{CategorySegmentsFinished, CategorySegmentsUnfinished, CategoryDivergences, CategoryBarMarkers} {
		assert.Len(t, f.surface.GroupsByName(string(category)), 1, category)
	}

	assert.Equal(t, shapes, f.surface.NumShapes())
	assert.Equal(t, 2, countShapes(f.surface, chart.ShapeArrow))
	assert.Equal(t, IdentityStats{Arrows: 2}, f.controller.Stats().Identity)
}

func TestController_InteractionThroughEvents(t *testing.T) {
	f := newControllerFixture(t, Options{})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).AnyTimes()

	var reports []*Report
	f.controller.OnRefresh(func(report *Report) {
		reports = append(reports, report)
	})

	f.attach(t)
	require.Len(t, reports, 1)

	arrow := arrowOf(t, f.surface, f.controller.identity, 10000)
	f.surface.Click(arrow)
	f.surface.Click(arrow)
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote))

	require.NoError(t, f.controller.Refresh(context.Background()))
	assert.Equal(t, 1, countShapes(f.surface, chart.ShapeNote), "expansions survive refreshes")

	note := f.surface.Shapes(chart.ShapeNote)[0].ID
	require.NoError(t, f.surface.RemoveShape(note))
	assert.Equal(t, 0, countShapes(f.surface, chart.ShapeVerticalLine))

	stats := f.controller.Stats()
	assert.Equal(t, 4, stats.Groups)
	assert.Equal(t, IdentityStats{Arrows: 2}, stats.Identity)
}

func TestController_Dispose(t *testing.T) {
	f := newControllerFixture(t, Options{})
	f.fetcher.EXPECT().FetchAnnotations(gomock.Any(), gomock.Any(), false).Return(testPayload(), nil).Times(1)

	f.attach(t)
	arrow := arrowOf(t, f.surface, f.controller.identity, 10000)

	f.surface.SetVisibleRange(types.VisibleRange{From: 1000, To: 90000})
	f.controller.Dispose()
	f.controller.Dispose()

	f.clock.Add(5 * time.Second)
	f.surface.Click(arrow)

	assert.Equal(t, 0, countShapes(f.surface, chart.ShapeNote))
	assert.Equal(t, IdentityStats{}, f.controller.Stats().Identity)
	assert.ErrorIs(t, f.controller.Refresh(context.Background()), ErrDisposed)
	assert.ErrorIs(t, f.controller.Attach(context.Background(), f.surface), ErrDisposed)
}
