package chart

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/abel123/zeus/pkg/types"
)

// ShapeID is the opaque identity the host assigns to a drawing.
type ShapeID string

// GroupID is the opaque identity of a shape group.
type GroupID string

// StudyID is the opaque identity of an indicator study (and its pane).
type StudyID string

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrShapeNotFound   = errors.New("shape not found")
	ErrStudyNotFound   = errors.New("study not found")
	ErrDegenerateShape = errors.New("degenerate shape geometry")
	ErrEmptySelection  = errors.New("selection is empty")
)

type ShapeKind string

const (
	ShapeTrendLine    = ShapeKind("trend_line")
	ShapeArrow        = ShapeKind("arrow")
	ShapeRectangle    = ShapeKind("rectangle")
	ShapeRay          = ShapeKind("ray")
	ShapeVerticalLine = ShapeKind("vertical_line")
	ShapeNote         = ShapeKind("note")
	ShapeArrowUp      = ShapeKind("arrow_up")
	ShapeArrowDown    = ShapeKind("arrow_down")
)

// MinPoints returns the number of anchor points the shape kind is drawn with.
func (k ShapeKind) MinPoints() int {
	switch k {
	case ShapeTrendLine, ShapeArrow, ShapeRectangle, ShapeRay:
		return 2
	}
	return 1
}

// ZOrder
const (
	ZOrderTop    = "top"
	ZOrderBottom = "bottom"
)

// Point is an anchor of a drawing in (time, price) space. On an indicator pane the
// price axis is the indicator value.
type Point struct {
	Time  types.Timestamp `json:"time"`
	Price float64         `json:"price"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %g)", p.Time, p.Price)
}

// ShapeOptions is the style, ownership and behaviour descriptor of a drawing.
type ShapeOptions struct {
	Shape             ShapeKind              `json:"shape"`
	Text              string                 `json:"text,omitempty"`
	Lock              bool                   `json:"lock,omitempty"`
	DisableSelection  bool                   `json:"disableSelection,omitempty"`
	DisableSave       bool                   `json:"disableSave,omitempty"`
	ShowInObjectsTree bool                   `json:"showInObjectsTree,omitempty"`
	OwnerStudyID      StudyID                `json:"ownerStudyId,omitempty"`
	ZOrder            string                 `json:"zOrder,omitempty"`
	Overrides         map[string]interface{} `json:"overrides,omitempty"`
}

// StudyOptions describes a study to create on the chart.
type StudyOptions struct {
	Name      string                 `json:"name"`
	Overlay   bool                   `json:"overlay,omitempty"`
	Inputs    map[string]interface{} `json:"inputs,omitempty"`
	Overrides map[string]interface{} `json:"overrides,omitempty"`
}

// Chart is the capability set required from a charting host.
type Chart interface {
	VisibleRange() types.VisibleRange
	Symbol() string
	Resolution() string

	// CreateShape creates a single-point drawing. A failure is reported either as an
	// error or as an empty id.
	CreateShape(point Point, options ShapeOptions) (ShapeID, error)

	// CreateMultipointShape creates a drawing anchored on several points.
	CreateMultipointShape(points []Point, options ShapeOptions) (ShapeID, error)

	CreateStudy(options StudyOptions) (StudyID, error)

	Selection() Selection
	ShapesGroupController() GroupController
}

// Selection is the single global selection cursor of a chart.
type Selection interface {
	Add(ids ...ShapeID)
	Clear()
	IsEmpty() bool
}

// GroupController manages shape groups.
type GroupController interface {
	// CreateGroupFromSelection groups the currently selected shapes.
	// It returns ErrEmptySelection when nothing is selected.
	CreateGroupFromSelection() (GroupID, error)
	SetGroupName(id GroupID, name string) error

	// RemoveGroup removes the group and every member shape. Unknown ids yield ErrGroupNotFound.
	RemoveGroup(id GroupID) error

	Groups() []GroupID
	GroupName(id GroupID) (string, bool)
}

// IsGroupNotFound reports whether err means the group is already gone.
func IsGroupNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound)
}
