package chart

import (
	"github.com/abel123/zeus/pkg/types"
)

// DrawingEventType is the kind of user interaction reported for a drawing.
type DrawingEventType string

const (
	DrawingEventClick        = DrawingEventType("click")
	DrawingEventRemove       = DrawingEventType("remove")
	DrawingEventMove         = DrawingEventType("move")
	DrawingEventCreate       = DrawingEventType("create")
	DrawingEventPropsChange  = DrawingEventType("properties_changed")
	DrawingEventPointsChange = DrawingEventType("points_changed")
)

// Events is the inbound event surface of a charting host.
type Events interface {
	// OnDataLoaded subscribes cb to the data loaded event. When callNow is true cb is
	// also invoked immediately.
	OnDataLoaded(cb func(), callNow bool)
	OnVisibleRangeChanged(cb func(r types.VisibleRange))
	OnTick(cb func(bar types.Bar))
	OnDrawingEvent(cb func(id ShapeID, event DrawingEventType))
}

//go:generate callbackgen -type StandardEvents
type StandardEvents struct {
	dataLoadedCallbacks          []func()
	visibleRangeChangedCallbacks []func(r types.VisibleRange)
	tickCallbacks                []func(bar types.Bar)
	drawingEventCallbacks        []func(id ShapeID, event DrawingEventType)
}

func NewStandardEvents() *StandardEvents {
	return &StandardEvents{}
}

func (e *StandardEvents) OnDataLoaded(cb func(), callNow bool) {
	e.dataLoadedCallbacks = append(e.dataLoadedCallbacks, cb)
	if callNow {
		cb()
	}
}

func (e *StandardEvents) EmitDataLoaded() {
	for _, cb := range e.dataLoadedCallbacks {
		cb()
	}
}
