package zen

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

// Interaction expands clicked divergence arrows into boundary lines and a note, and
// tears the expansion down when the note is removed.
type Interaction struct {
	chart    chart.Chart
	identity *IdentityMap
	logger   logrus.FieldLogger
}

func NewInteraction(c chart.Chart, identity *IdentityMap, logger logrus.FieldLogger) *Interaction {
	if logger == nil {
		logger = logrus.WithField("component", "interaction")
	}

	return &Interaction{chart: c, identity: identity, logger: logger}
}

// Handle reacts to a drawing event. It reports whether the event changed anything.
// Failures inside the handler turn the event into a no-op.
func (h *Interaction) Handle(id chart.ShapeID, event chart.DrawingEventType) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("recovered from panic while handling %s on %s: %v", event, id, r)
			handled = false
		}
	}()

	switch event {
	case chart.DrawingEventRemove:
		return h.remove(id)

	case chart.DrawingEventClick:
		expanded, err := h.expand(id)
		if err != nil {
			h.logger.WithError(err).Warnf("unable to expand divergence %s", id)
			return false
		}
		return expanded
	}

	return false
}

func (h *Interaction) remove(note chart.ShapeID) bool {
	group, ok := h.identity.ReleaseNote(note)
	if !ok {
		return false
	}

	err := h.chart.ShapesGroupController().RemoveGroup(group)
	if err != nil && !chart.IsGroupNotFound(err) {
		h.logger.WithError(err).Warnf("unable to remove expansion group %s of note %s", group, note)
	}

	h.logger.Debugf("removed expansion of note %s", note)
	return true
}

var errAlreadyExpanded = errors.New("divergence already expanded")

func (h *Interaction) expand(arrow chart.ShapeID) (bool, error) {
	d, ok := h.identity.Divergence(arrow)
	if !ok {
		return false, nil
	}

	key := d.Key()
	if _, expanded := h.identity.NoteFor(key); expanded {
		return false, nil
	}

	sel := h.chart.Selection()
	sel.Clear()
	defer sel.Clear()

	lineOptions := boundaryLineOptions(d)
	for _, ts := range d.Boundary.Times() {
		id, err := h.chart.CreateShape(chart.Point{Time: ts}, lineOptions)
		if err != nil || id == "" {
			h.logger.WithError(err).Debugf("boundary line at %s skipped", ts)
			continue
		}
		sel.Add(id)
	}

	note, err := h.chart.CreateShape(ExpansionPoint(d), noteOptions(d))
	if err != nil {
		return false, errors.Wrap(err, "unable to create note")
	}
	if note == "" {
		return false, errors.Wrap(ErrShapeRefused, "unable to create note")
	}
	sel.Add(note)

	controller := h.chart.ShapesGroupController()
	group, err := controller.CreateGroupFromSelection()
	if err != nil {
		return false, errors.Wrap(err, "unable to group expansion")
	}

	if err := controller.SetGroupName(group, expansionGroupName(arrow)); err != nil {
		h.logger.WithError(err).Warnf("unable to name expansion group %s", group)
	}

	if !h.identity.BindNote(key, note, group) {
		return false, errors.Wrapf(errAlreadyExpanded, "divergence %s", key)
	}

	h.logger.Debugf("expanded %s into note %s group %s", d, note, group)
	return true, nil
}

func expansionGroupName(arrow chart.ShapeID) string {
	return fmt.Sprintf("divergence %s", arrow)
}

// ExpansionPoint returns where the note of a divergence is placed.
func ExpansionPoint(d types.Divergence) chart.Point {
	return chart.Point{
		Time:  d.Boundary.Start.RightTime.Mid(d.Boundary.End.LeftTime),
		Price: d.Low,
	}
}
