package zen

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/debounce"
	"github.com/abel123/zeus/pkg/metrics"
	"github.com/abel123/zeus/pkg/types"
	"github.com/abel123/zeus/pkg/util"
)

var (
	ErrDisposed        = errors.New("controller is disposed")
	ErrAlreadyAttached = errors.New("controller is already attached")
)

var DefaultMovingAverages = []int{5, 10, 20, 30, 60, 120}

type Options struct {
	// Indicators are the oscillators the annotations are computed for. The order is
	// kept on the wire and in the response.
	Indicators []types.IndicatorConfig

	QuietPeriod time.Duration
	MaxWait     time.Duration
	Clock       clock.Clock

	// Disabled starts the controller with refreshing turned off.
	Disabled bool

	Volume         bool
	MovingAverages []int

	Logger logrus.FieldLogger
}

type Stats struct {
	Symbol      string           `json:"symbol"`
	Resolution  string           `json:"resolution"`
	Enabled     bool             `json:"enabled"`
	Replay      *types.Timestamp `json:"replay,omitempty"`
	Groups      int              `json:"groups"`
	Identity    IdentityStats    `json:"identity"`
	Refreshes   int64            `json:"refreshes"`
	Skipped     int64            `json:"skipped"`
	Failures    int64            `json:"failures"`
	LastRefresh time.Time        `json:"lastRefresh,omitempty"`
	LastError   string           `json:"lastError,omitempty"`
}

// Controller keeps the annotation overlay of one chart in sync with the analytics
// service. It owns the identity tables of that chart.
//
//go:generate callbackgen -type Controller
type Controller struct {
	chart   chart.Chart
	fetcher Fetcher
	options Options

	// mu serializes reconciliation passes and interactions
	mu          sync.Mutex
	identity    *IdentityMap
	reconciler  *Reconciler
	interaction *Interaction

	scheduler *debounce.Debouncer

	// stateMu protects the fields below
	stateMu  sync.Mutex
	ctx      context.Context
	enabled  bool
	replay   *types.Timestamp
	attached bool
	disposed bool
	stats    Stats

	refreshCallbacks []func(report *Report)

	warnLogger *util.WarnFirstLogger
	logger     logrus.FieldLogger
}

func NewController(c chart.Chart, fetcher Fetcher, options Options) *Controller {
	if options.QuietPeriod <= 0 {
		options.QuietPeriod = debounce.DefaultQuietPeriod
	}

	if options.MaxWait <= 0 {
		options.MaxWait = debounce.DefaultMaxWait
	}

	if options.Logger == nil {
		options.Logger = logrus.WithField("component", "zen")
	}

	options.Indicators = append([]types.IndicatorConfig(nil), options.Indicators...)

	identity := NewIdentityMap()
	ctrl := &Controller{
		chart:       c,
		fetcher:     fetcher,
		options:     options,
		identity:    identity,
		reconciler:  NewReconciler(c, identity, options.Logger),
		interaction: NewInteraction(c, identity, options.Logger),
		ctx:         context.Background(),
		enabled:     !options.Disabled,
		warnLogger:  util.NewWarnFirstLogger(3, time.Minute, options.Logger),
		logger:      options.Logger,
	}

	ctrl.scheduler = debounce.New(ctrl.scheduledRefresh, options.QuietPeriod, options.MaxWait, options.Clock)
	return ctrl
}

// Attach creates the studies, subscribes the chart events and paints the first overlay.
// ctx bounds every refresh started by the events.
func (c *Controller) Attach(ctx context.Context, events chart.Events) error {
	c.stateMu.Lock()
	if c.disposed {
		c.stateMu.Unlock()
		return ErrDisposed
	}
	if c.attached {
		c.stateMu.Unlock()
		return ErrAlreadyAttached
	}
	c.attached = true
	c.ctx = ctx
	c.stateMu.Unlock()

	c.mu.Lock()
	c.reconciler.SetStudies(c.createStudies())
	c.mu.Unlock()

	events.OnDrawingEvent(func(id chart.ShapeID, event chart.DrawingEventType) {
		c.HandleDrawingEvent(id, event)
	})

	events.OnVisibleRangeChanged(func(r types.VisibleRange) {
		c.logger.Debugf("visible range changed: %s", r)
		c.Trigger()
	})

	events.OnTick(func(bar types.Bar) {
		if _, replaying := c.Replay(); replaying {
			return
		}
		c.Trigger()
	})

	events.OnDataLoaded(func() {
		c.logger.Debugf("data loaded: %s %s", c.chart.Symbol(), c.chart.Resolution())
		c.Trigger()
	}, true)

	c.scheduler.Flush()
	return nil
}

// createStudies returns the study of every indicator, empty when the host refused it.
func (c *Controller) createStudies() []chart.StudyID {
	if c.options.Volume {
		if _, err := c.chart.CreateStudy(volumeStudyOptions()); err != nil {
			c.logger.WithError(err).Warn("unable to create the volume study")
		}
	}

	if len(c.options.MovingAverages) > 0 {
		if _, err := c.chart.CreateStudy(movingAverageStudyOptions(c.options.MovingAverages)); err != nil {
			c.logger.WithError(err).Warn("unable to create the moving average study")
		}
	}

	studies := make([]chart.StudyID, len(c.options.Indicators))
	for i, indicator := range c.options.Indicators {
		id, err := c.chart.CreateStudy(macdStudyOptions(indicator))
		if err != nil {
			c.logger.WithError(err).Warnf("unable to create study for %s", indicator)
			continue
		}
		studies[i] = id
	}

	return studies
}

// Trigger schedules a debounced refresh. It does nothing while refreshing is disabled.
func (c *Controller) Trigger() {
	c.stateMu.Lock()
	active := c.enabled && !c.disposed
	c.stateMu.Unlock()

	if active {
		c.scheduler.Trigger()
	}
}

func (c *Controller) scheduledRefresh() {
	c.stateMu.Lock()
	ctx := c.ctx
	c.stateMu.Unlock()

	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrDisposed) {
		c.logger.WithError(err).Debug("scheduled refresh failed")
	}
}

// Refresh fetches the annotations of the visible range and redraws the overlay.
// A failed fetch leaves the current overlay untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	c.stateMu.Lock()
	if c.disposed {
		c.stateMu.Unlock()
		return ErrDisposed
	}

	if !c.enabled {
		c.stateMu.Unlock()
		metrics.RefreshTotalMetrics.WithLabelValues(metrics.RefreshResultDisabled).Inc()
		return nil
	}

	var replay *types.Timestamp
	if c.replay != nil {
		at := *c.replay
		replay = &at
	}
	c.stateMu.Unlock()

	request, ok := c.buildRequest(replay)
	if !ok {
		c.recordSkip()
		return nil
	}

	start := time.Now()
	payload, err := c.fetcher.FetchAnnotations(ctx, request, replay != nil)
	metrics.FetchDurationMetrics.Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure(err)
		c.warnLogger.WarnOrError(err, "unable to fetch annotations of %s %s for %s", request.Symbol, request.Resolution, request.Range())
		return errors.Wrap(err, "fetch annotations")
	}

	c.mu.Lock()
	if c.isDisposed() {
		c.mu.Unlock()
		return ErrDisposed
	}
	report := c.reconciler.Reconcile(payload)
	c.mu.Unlock()

	c.recordReport(report)
	c.EmitRefresh(report)
	return nil
}

func (c *Controller) buildRequest(replay *types.Timestamp) (types.AnnotationRequest, bool) {
	r := c.chart.VisibleRange()
	if replay != nil {
		r = r.ClampTo(*replay)
	}

	if r.IsEmpty() {
		c.logger.Debugf("skip refresh of empty range %s", r)
		return types.AnnotationRequest{}, false
	}

	return types.AnnotationRequest{
		From:       r.From,
		To:         r.To,
		Symbol:     c.chart.Symbol(),
		Resolution: c.chart.Resolution(),
		Indicators: c.options.Indicators,
	}, true
}

// HandleDrawingEvent feeds a user interaction to the interaction handler.
func (c *Controller) HandleDrawingEvent(id chart.ShapeID, event chart.DrawingEventType) bool {
	if c.isDisposed() {
		return false
	}

	c.mu.Lock()
	handled := c.interaction.Handle(id, event)
	c.mu.Unlock()

	if handled {
		metrics.InteractionsTotalMetrics.WithLabelValues(string(event)).Inc()
	}
	return handled
}

// SetEnabled turns refreshing on or off. In-flight refreshes are not cancelled.
func (c *Controller) SetEnabled(enabled bool) {
	c.stateMu.Lock()
	c.enabled = enabled
	c.stateMu.Unlock()

	c.logger.Infof("overlay refresh enabled: %v", enabled)
}

func (c *Controller) Enabled() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.enabled
}

// SetReplay freezes the chart at the given time: realtime ticks are ignored and the
// requested window ends at that time.
func (c *Controller) SetReplay(at types.Timestamp) {
	c.stateMu.Lock()
	c.replay = &at
	c.stateMu.Unlock()

	c.logger.Infof("replay at %s", at)
	c.Trigger()
}

func (c *Controller) ClearReplay() {
	c.stateMu.Lock()
	c.replay = nil
	c.stateMu.Unlock()

	c.logger.Info("replay cleared")
	c.Trigger()
}

func (c *Controller) Replay() (types.Timestamp, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.replay == nil {
		return 0, false
	}
	return *c.replay, true
}

// Dispose stops scheduling and drops the identity tables. Events arriving afterwards
// are ignored.
func (c *Controller) Dispose() {
	c.stateMu.Lock()
	if c.disposed {
		c.stateMu.Unlock()
		return
	}
	c.disposed = true
	c.stateMu.Unlock()

	c.scheduler.Stop()

	c.mu.Lock()
	c.identity.Clear()
	c.mu.Unlock()
}

func (c *Controller) isDisposed() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.disposed
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	groups := len(c.reconciler.Groups())
	identity := c.identity.Stats()
	c.mu.Unlock()

	c.stateMu.Lock()
	stats := c.stats
	stats.Enabled = c.enabled
	if c.replay != nil {
		at := *c.replay
		stats.Replay = &at
	}
	c.stateMu.Unlock()

	stats.Symbol = c.chart.Symbol()
	stats.Resolution = c.chart.Resolution()
	stats.Groups = groups
	stats.Identity = identity
	return stats
}

func (c *Controller) recordSkip() {
	metrics.RefreshTotalMetrics.WithLabelValues(metrics.RefreshResultSkipped).Inc()

	c.stateMu.Lock()
	c.stats.Skipped++
	c.stateMu.Unlock()
}

func (c *Controller) recordFailure(err error) {
	metrics.RefreshTotalMetrics.WithLabelValues(metrics.RefreshResultFetchError).Inc()

	c.stateMu.Lock()
	c.stats.Failures++
	c.stats.LastError = err.Error()
	c.stateMu.Unlock()
}

func (c *Controller) recordReport(report *Report) {
	metrics.RefreshTotalMetrics.WithLabelValues(metrics.RefreshResultOK).Inc()
	for category, n := range report.Created {
		metrics.ShapesCreatedMetrics.WithLabelValues(string(category)).Add(float64(n))
	}
	for category, n := range report.Skipped {
		metrics.ShapesSkippedMetrics.WithLabelValues(string(category)).Add(float64(n))
	}

	c.stateMu.Lock()
	c.stats.Refreshes++
	c.stats.LastRefresh = time.Now()
	c.stats.LastError = ""
	c.stateMu.Unlock()

	if report.Err != nil {
		c.logger.WithError(report.Err).Warnf("overlay refreshed with skipped shapes: %s", report)
	} else {
		c.logger.Debugf("overlay refreshed: %s", report)
	}
}
