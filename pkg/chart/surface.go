package chart

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/abel123/zeus/pkg/types"
)

type MutationType string

const (
	MutationCreateShape  = MutationType("create_shape")
	MutationRemoveShape  = MutationType("remove_shape")
	MutationCreateGroup  = MutationType("create_group")
	MutationSetGroupName = MutationType("set_group_name")
	MutationRemoveGroup  = MutationType("remove_group")
	MutationCreateStudy  = MutationType("create_study")
)

// Mutation describes one change applied to a surface.
type Mutation struct {
	Type    MutationType  `json:"type"`
	ShapeID ShapeID       `json:"shapeId,omitempty"`
	GroupID GroupID       `json:"groupId,omitempty"`
	StudyID StudyID       `json:"studyId,omitempty"`
	Points  []Point       `json:"points,omitempty"`
	Options *ShapeOptions `json:"options,omitempty"`
	Study   *StudyOptions `json:"study,omitempty"`
	Members []ShapeID     `json:"members,omitempty"`
	Name    string        `json:"name,omitempty"`
}

type Shape struct {
	ID      ShapeID
	Points  []Point
	Options ShapeOptions
	Group   GroupID
}

type Group struct {
	ID      GroupID
	Name    string
	Members []ShapeID
}

// ShapeFilter decides whether the surface accepts a drawing. A rejected drawing is
// reported with an empty id, the way a host returns null.
type ShapeFilter func(points []Point, options ShapeOptions) bool

// Surface is an in-memory drawing surface. It keeps the shapes, groups, studies and
// the selection cursor of one chart and doubles as that chart's event source.
//
//go:generate callbackgen -type Surface
type Surface struct {
	*StandardEvents

	mu sync.Mutex

	symbol       string
	resolution   string
	visibleRange types.VisibleRange

	shapes    map[ShapeID]*Shape
	groups    map[GroupID]*Group
	studies   map[StudyID]StudyOptions
	selection []ShapeID
	filter    ShapeFilter

	mutationCallbacks []func(m Mutation)

	logger logrus.FieldLogger
}

func NewSurface(symbol, resolution string) *Surface {
	return &Surface{
		StandardEvents: NewStandardEvents(),
		symbol:         symbol,
		resolution:     resolution,
		shapes:         make(map[ShapeID]*Shape),
		groups:         make(map[GroupID]*Group),
		studies:        make(map[StudyID]StudyOptions),
		logger:         logrus.WithField("component", "surface"),
	}
}

func (s *Surface) SetLogger(logger logrus.FieldLogger) {
	s.logger = logger
}

// SetShapeFilter installs a filter consulted before every drawing is accepted.
func (s *Surface) SetShapeFilter(filter ShapeFilter) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

func (s *Surface) VisibleRange() types.VisibleRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleRange
}

func (s *Surface) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

func (s *Surface) Resolution() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// SetVisibleRange moves the viewport and fires the visible range changed event.
func (s *Surface) SetVisibleRange(r types.VisibleRange) {
	s.mu.Lock()
	s.visibleRange = r
	s.mu.Unlock()

	s.EmitVisibleRangeChanged(r)
}

// LoadData switches symbol and resolution and fires the data loaded event.
func (s *Surface) LoadData(symbol, resolution string) {
	s.mu.Lock()
	if symbol != "" {
		s.symbol = symbol
	}
	if resolution != "" {
		s.resolution = resolution
	}
	s.mu.Unlock()

	s.EmitDataLoaded()
}

// PushTick fires the realtime tick event.
func (s *Surface) PushTick(bar types.Bar) {
	s.EmitTick(bar)
}

// Click simulates a user click on a drawing.
func (s *Surface) Click(id ShapeID) {
	s.EmitDrawingEvent(id, DrawingEventClick)
}

// RemoveShape simulates a user removing a drawing. The drawing leaves its group and the
// remove event is fired after the drawing is gone.
func (s *Surface) RemoveShape(id ShapeID) error {
	s.mu.Lock()
	shape, ok := s.shapes[id]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrShapeNotFound, "remove shape %s", id)
	}

	s.deleteShape(shape)
	s.mu.Unlock()

	s.EmitMutation(Mutation{Type: MutationRemoveShape, ShapeID: id})
	s.EmitDrawingEvent(id, DrawingEventRemove)
	return nil
}

// DropShape forgets a drawing that was removed on a remote host without firing events.
func (s *Surface) DropShape(id ShapeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape, ok := s.shapes[id]
	if ok {
		s.deleteShape(shape)
	}
	return ok
}

func (s *Surface) deleteShape(shape *Shape) {
	delete(s.shapes, shape.ID)
	s.selection = removeShapeID(s.selection, shape.ID)

	if g, ok := s.groups[shape.Group]; ok {
		g.Members = removeShapeID(g.Members, shape.ID)
	}
}

func (s *Surface) CreateShape(point Point, options ShapeOptions) (ShapeID, error) {
	return s.CreateMultipointShape([]Point{point}, options)
}

func (s *Surface) CreateMultipointShape(points []Point, options ShapeOptions) (ShapeID, error) {
	if err := validateGeometry(points, options.Shape); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.filter != nil && !s.filter(points, options) {
		s.mu.Unlock()
		s.logger.Debugf("shape %s rejected by filter", options.Shape)
		return "", nil
	}

	if options.OwnerStudyID != "" {
		if _, ok := s.studies[options.OwnerStudyID]; !ok {
			s.mu.Unlock()
			return "", errors.Wrapf(ErrStudyNotFound, "owner study %s", options.OwnerStudyID)
		}
	}

	id := ShapeID(uuid.NewString())
	pts := make([]Point, len(points))
	copy(pts, points)
	s.shapes[id] = &Shape{ID: id, Points: pts, Options: options}
	s.mu.Unlock()

	opts := options
	s.EmitMutation(Mutation{Type: MutationCreateShape, ShapeID: id, Points: pts, Options: &opts})
	return id, nil
}

func validateGeometry(points []Point, kind ShapeKind) error {
	if kind == "" {
		return errors.Wrap(ErrDegenerateShape, "shape kind is required")
	}

	if len(points) < kind.MinPoints() {
		return errors.Wrapf(ErrDegenerateShape, "%s requires %d points, got %d", kind, kind.MinPoints(), len(points))
	}

	if len(points) < 2 {
		return nil
	}

	a, b := points[0], points[1]
	switch kind {
	case ShapeTrendLine, ShapeArrow, ShapeRectangle:
		if a.Time == b.Time {
			return errors.Wrapf(ErrDegenerateShape, "%s %s -> %s has zero width", kind, a, b)
		}

	case ShapeRay:
		if a == b {
			return errors.Wrapf(ErrDegenerateShape, "ray %s has no direction", a)
		}
	}

	return nil
}

func (s *Surface) CreateStudy(options StudyOptions) (StudyID, error) {
	if options.Name == "" {
		return "", errors.New("study name is required")
	}

	id := StudyID(uuid.NewString())

	s.mu.Lock()
	s.studies[id] = options
	s.mu.Unlock()

	opts := options
	s.EmitMutation(Mutation{Type: MutationCreateStudy, StudyID: id, Study: &opts})
	return id, nil
}

func (s *Surface) Selection() Selection {
	return &surfaceSelection{s}
}

func (s *Surface) ShapesGroupController() GroupController {
	return &surfaceGroups{s}
}

// Shape returns a copy of the drawing.
func (s *Surface) Shape(id ShapeID) (Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape, ok := s.shapes[id]
	if !ok {
		return Shape{}, false
	}
	return copyShape(shape), true
}

// Shapes returns copies of the drawings of the given kinds, every drawing when no kind is given.
func (s *Surface) Shapes(kinds ...ShapeKind) []Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	var shapes []Shape
	for _, shape := range s.shapes {
		if len(kinds) > 0 && !containsKind(kinds, shape.Options.Shape) {
			continue
		}
		shapes = append(shapes, copyShape(shape))
	}

	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].ID < shapes[j].ID
	})
	return shapes
}

func (s *Surface) NumShapes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shapes)
}

// GroupsByName returns copies of the groups carrying the given name.
func (s *Surface) GroupsByName(name string) []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []Group
	for _, g := range s.groups {
		if g.Name == name {
			groups = append(groups, copyGroup(g))
		}
	}
	return groups
}

func (s *Surface) Group(id GroupID) (Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return Group{}, false
	}
	return copyGroup(g), true
}

func (s *Surface) NumGroups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}

func (s *Surface) Studies() map[StudyID]StudyOptions {
	s.mu.Lock()
	defer s.mu.Unlock()

	studies := make(map[StudyID]StudyOptions, len(s.studies))
	for id, st := range s.studies {
		studies[id] = st
	}
	return studies
}

type surfaceSelection struct {
	s *Surface
}

func (sel *surfaceSelection) Add(ids ...ShapeID) {
	sel.s.mu.Lock()
	defer sel.s.mu.Unlock()

	for _, id := range ids {
		if _, ok := sel.s.shapes[id]; !ok {
			continue
		}

		if containsShapeID(sel.s.selection, id) {
			continue
		}

		sel.s.selection = append(sel.s.selection, id)
	}
}

func (sel *surfaceSelection) Clear() {
	sel.s.mu.Lock()
	sel.s.selection = nil
	sel.s.mu.Unlock()
}

func (sel *surfaceSelection) IsEmpty() bool {
	sel.s.mu.Lock()
	defer sel.s.mu.Unlock()
	return len(sel.s.selection) == 0
}

type surfaceGroups struct {
	s *Surface
}

func (c *surfaceGroups) CreateGroupFromSelection() (GroupID, error) {
	s := c.s
	s.mu.Lock()
	if len(s.selection) == 0 {
		s.mu.Unlock()
		return "", ErrEmptySelection
	}

	id := GroupID(uuid.NewString())
	members := make([]ShapeID, len(s.selection))
	copy(members, s.selection)

	for _, member := range members {
		shape := s.shapes[member]
		if prev, ok := s.groups[shape.Group]; ok {
			prev.Members = removeShapeID(prev.Members, member)
		}
		shape.Group = id
	}

	s.groups[id] = &Group{ID: id, Members: members}
	s.mu.Unlock()

	s.EmitMutation(Mutation{Type: MutationCreateGroup, GroupID: id, Members: members})
	return id, nil
}

func (c *surfaceGroups) SetGroupName(id GroupID, name string) error {
	s := c.s
	s.mu.Lock()
	g, ok := s.groups[id]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrGroupNotFound, "set name of group %s", id)
	}

	g.Name = name
	s.mu.Unlock()

	s.EmitMutation(Mutation{Type: MutationSetGroupName, GroupID: id, Name: name})
	return nil
}

func (c *surfaceGroups) RemoveGroup(id GroupID) error {
	s := c.s
	s.mu.Lock()
	g, ok := s.groups[id]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrGroupNotFound, "remove group %s", id)
	}

	for _, member := range g.Members {
		delete(s.shapes, member)
		s.selection = removeShapeID(s.selection, member)
	}
	delete(s.groups, id)
	s.mu.Unlock()

	s.EmitMutation(Mutation{Type: MutationRemoveGroup, GroupID: id})
	return nil
}

func (c *surfaceGroups) Groups() []GroupID {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]GroupID, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *surfaceGroups) GroupName(id GroupID) (string, bool) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return "", false
	}
	return g.Name, true
}

func copyShape(shape *Shape) Shape {
	out := *shape
	out.Points = append([]Point(nil), shape.Points...)
	return out
}

func copyGroup(g *Group) Group {
	out := *g
	out.Members = append([]ShapeID(nil), g.Members...)
	return out
}

func containsKind(kinds []ShapeKind, kind ShapeKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func containsShapeID(ids []ShapeID, id ShapeID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeShapeID(ids []ShapeID, id ShapeID) []ShapeID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
