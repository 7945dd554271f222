package zen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

// Category is a kind of overlay drawn by a reconciliation pass. The category name is
// also the name of the group holding its shapes.
type Category string

const (
	CategorySegmentsFinished   = Category("segments_finished")
	CategorySegmentsUnfinished = Category("segments_unfinished")
	CategoryDivergences        = Category("divergences")
	CategoryBarMarkers         = Category("bar_markers")
	CategoryExpansion          = Category("expansion")
)

var ErrShapeRefused = errors.New("host refused the shape")

// Report summarizes one reconciliation pass.
type Report struct {
	Created map[Category]int
	Skipped map[Category]int
	Groups  map[Category]chart.GroupID

	// RemovedGroups counts the previous pass's groups that were still present.
	RemovedGroups int

	// Err aggregates the per-shape failures of the pass.
	Err error
}

func newReport() *Report {
	return &Report{
		Created: make(map[Category]int),
		Skipped: make(map[Category]int),
		Groups:  make(map[Category]chart.GroupID),
	}
}

func (r *Report) skip(category Category, err error) {
	r.Skipped[category]++
	r.Err = multierr.Append(r.Err, errors.Wrapf(err, "%s", category))
}

func (r *Report) NumCreated() (n int) {
	for _, c := range r.Created {
		n += c
	}
	return n
}

func (r *Report) NumSkipped() (n int) {
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

func (r *Report) String() string {
	var categories []string
	for c := range r.Created {
		categories = append(categories, string(c))
	}
	for c := range r.Skipped {
		if _, ok := r.Created[c]; !ok {
			categories = append(categories, string(c))
		}
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("removed %d groups", r.RemovedGroups))
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf(", %s: %d created %d skipped", c, r.Created[Category(c)], r.Skipped[Category(c)]))
	}
	return sb.String()
}

// Reconciler redraws the overlay of a chart from an annotation payload.
type Reconciler struct {
	chart    chart.Chart
	identity *IdentityMap

	// studies[i] owns the shapes of indicator i
	studies []chart.StudyID

	// groups created by the previous pass
	groups []chart.GroupID

	logger logrus.FieldLogger
}

func NewReconciler(c chart.Chart, identity *IdentityMap, logger logrus.FieldLogger) *Reconciler {
	if logger == nil {
		logger = logrus.WithField("component", "reconciler")
	}

	return &Reconciler{
		chart:    c,
		identity: identity,
		logger:   logger,
	}
}

func (r *Reconciler) SetStudies(studies []chart.StudyID) {
	r.studies = studies
}

func (r *Reconciler) study(index int) chart.StudyID {
	if index < len(r.studies) {
		return r.studies[index]
	}
	return ""
}

// Groups returns the groups recorded by the latest pass.
func (r *Reconciler) Groups() []chart.GroupID {
	return append([]chart.GroupID(nil), r.groups...)
}

// Reconcile removes the previous pass's groups and draws the payload. Shapes the host
// refuses are skipped and reported; the pass always runs to the end.
func (r *Reconciler) Reconcile(payload *types.AnnotationPayload) *Report {
	report := newReport()
	if payload == nil {
		payload = &types.AnnotationPayload{}
	}

	r.removePreviousGroups(report)
	r.identity.ResetArrows()

	var groups []chart.GroupID
	commit := func(category Category) {
		if gid, ok := r.commitGroup(report, category); ok {
			groups = append(groups, gid)
		}
	}

	sel := r.chart.Selection()
	sel.Clear()

	for _, s := range payload.Segments.Finished {
		r.draw(report, CategorySegmentsFinished, segmentPoints(s), finishedSegmentOptions(s))
	}
	commit(CategorySegmentsFinished)

	for _, s := range payload.Segments.Unfinished {
		r.draw(report, CategorySegmentsUnfinished, segmentPoints(s), unfinishedSegmentOptions(s))
	}
	commit(CategorySegmentsUnfinished)

	for i, divergences := range payload.Divergences {
		owner := r.study(i)
		for _, d := range divergences {
			r.drawDivergence(report, d, owner)
		}
	}
	commit(CategoryDivergences)

	for i, bars := range payload.BarMarkers {
		owner := r.study(i)
		for _, ts := range bars {
			points := []chart.Point{{Time: ts, Price: 0}, {Time: ts, Price: -1}}
			r.draw(report, CategoryBarMarkers, points, barMarkerOptions(owner))
		}
	}
	commit(CategoryBarMarkers)

	r.groups = groups
	return report
}

func (r *Reconciler) drawDivergence(report *Report, d types.Divergence, owner chart.StudyID) {
	// the zone goes first so the arrow is painted over it
	if d.Zone.Drawable() {
		points := []chart.Point{
			{Time: d.Zone.Left, Price: d.Zone.High},
			{Time: d.Zone.Right, Price: d.Zone.Low},
		}
		r.draw(report, CategoryDivergences, points, zoneOptions())
	}

	points := []chart.Point{
		{Time: d.MarkerA.Time, Price: d.MarkerA.Value},
		{Time: d.MarkerB.Time, Price: d.MarkerB.Value},
	}
	if id, ok := r.draw(report, CategoryDivergences, points, divergenceArrowOptions(d, owner)); ok {
		r.identity.BindArrow(id, d)
	}

	if d.Kind.IsSignal() {
		r.draw(report, CategoryDivergences, []chart.Point{{Time: d.Time, Price: d.Price}}, signalArrowOptions(d))
	}
}

func (r *Reconciler) removePreviousGroups(report *Report) {
	controller := r.chart.ShapesGroupController()
	for _, gid := range r.groups {
		err := safely(func() error {
			return controller.RemoveGroup(gid)
		})

		switch {
		case err == nil:
			report.RemovedGroups++
		case chart.IsGroupNotFound(err):
			// removed by the user or the host
		default:
			r.logger.WithError(err).Debugf("unable to remove group %s", gid)
		}
	}

	r.groups = nil
}

// draw creates one shape and selects it.
func (r *Reconciler) draw(report *Report, category Category, points []chart.Point, options chart.ShapeOptions) (chart.ShapeID, bool) {
	var id chart.ShapeID
	err := safely(func() (err error) {
		id, err = r.chart.CreateMultipointShape(points, options)
		return err
	})

	if err == nil && id == "" {
		err = errors.Wrapf(ErrShapeRefused, "%s at %v", options.Shape, points)
	}

	if err != nil {
		report.skip(category, err)
		return "", false
	}

	report.Created[category]++
	r.chart.Selection().Add(id)
	return id, true
}

// commitGroup groups the selected shapes and clears the selection.
func (r *Reconciler) commitGroup(report *Report, category Category) (chart.GroupID, bool) {
	sel := r.chart.Selection()
	if sel.IsEmpty() {
		return "", false
	}
	defer sel.Clear()

	controller := r.chart.ShapesGroupController()

	var gid chart.GroupID
	err := safely(func() (err error) {
		gid, err = controller.CreateGroupFromSelection()
		return err
	})
	if err != nil || gid == "" {
		if err == nil {
			err = ErrShapeRefused
		}
		report.Err = multierr.Append(report.Err, errors.Wrapf(err, "unable to group %s", category))
		return "", false
	}

	if err := safely(func() error { return controller.SetGroupName(gid, string(category)) }); err != nil {
		report.Err = multierr.Append(report.Err, errors.Wrapf(err, "unable to name group %s", category))
	}

	report.Groups[category] = gid
	return gid, true
}

func segmentPoints(s types.Segment) []chart.Point {
	return []chart.Point{
		{Time: s.StartTime, Price: s.StartPrice},
		{Time: s.EndTime, Price: s.EndPrice},
	}
}

// safely runs f and turns a panic raised by the host into an error.
func safely(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("host panic: %v", r)
		}
	}()

	return f()
}
