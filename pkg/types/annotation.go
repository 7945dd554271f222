package types

import (
	"encoding/json"
	"fmt"
)

// Direction is the direction of a price swing or a divergence.
type Direction string

const (
	DirectionUp   = Direction("up")
	DirectionDown = Direction("down")
)

const (
	ColorBullish = "#00ce09"
	ColorBearish = "#ff1493"
)

// Color returns the overlay color of the direction.
func (d Direction) Color() string {
	if d == DirectionDown {
		return ColorBearish
	}

	return ColorBullish
}

// SignalKind is the buy/sell point classification the analytics service attaches to a divergence.
type SignalKind string

const (
	SignalKindNone       = SignalKind("None")
	SignalKindFirstBuy   = SignalKind("FirstBuy")
	SignalKindSecondBuy  = SignalKind("SecondBuy")
	SignalKindThirdBuy   = SignalKind("ThirdBuy")
	SignalKindFirstSell  = SignalKind("FirstSell")
	SignalKindSecondSell = SignalKind("SecondSell")
	SignalKindThirdSell  = SignalKind("ThirdSell")
)

func (k SignalKind) IsBuy() bool {
	switch k {
	case SignalKindFirstBuy, SignalKindSecondBuy, SignalKindThirdBuy:
		return true
	}
	return false
}

func (k SignalKind) IsSell() bool {
	switch k {
	case SignalKindFirstSell, SignalKindSecondSell, SignalKindThirdSell:
		return true
	}
	return false
}

// IsSignal reports whether the kind denotes a buy or a sell point.
func (k SignalKind) IsSignal() bool {
	return k.IsBuy() || k.IsSell()
}

// Segment is a directional price swing ("bi") between two pivots.
type Segment struct {
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
	StartTime  Timestamp `json:"start_time"`
	EndTime    Timestamp `json:"end_time"`
	Direction  Direction `json:"direction"`
}

func (s Segment) String() string {
	return fmt.Sprintf("%s segment %s@%g -> %s@%g", s.Direction, s.StartTime, s.StartPrice, s.EndTime, s.EndPrice)
}

// SegmentSet splits the segments into the immutable finished ones and the still-forming tail.
type SegmentSet struct {
	Finished   []Segment `json:"finished"`
	Unfinished []Segment `json:"unfinished"`
}

// MarkerPoint is a point on an oscillator pane.
type MarkerPoint struct {
	Time  Timestamp `json:"time"`
	Value float64   `json:"value"`
}

// BoundaryWindow is a [left, right] bar window.
type BoundaryWindow struct {
	LeftTime  Timestamp `json:"left_time"`
	RightTime Timestamp `json:"right_time"`
}

// Boundary holds the two windows a divergence compares.
type Boundary struct {
	Start BoundaryWindow `json:"start"`
	End   BoundaryWindow `json:"end"`
}

// Times returns the four boundary timestamps in start-left, start-right, end-left, end-right order.
func (b Boundary) Times() [4]Timestamp {
	return [4]Timestamp{b.Start.LeftTime, b.Start.RightTime, b.End.LeftTime, b.End.RightTime}
}

// Key returns the canonical serialization of the boundary. Two divergences with the
// same boundary produce the same key regardless of their other fields.
func (b Boundary) Key() string {
	out, err := json.Marshal([2]BoundaryWindow{b.Start, b.End})
	if err != nil {
		// fixed-layout struct of integers, can not fail
		panic(err)
	}
	return string(out)
}

// ZoneInfo describes the consolidation zone ("zs") a divergence is measured against.
type ZoneInfo struct {
	Left         Timestamp `json:"left"`
	Right        Timestamp `json:"right"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	SegmentCount int       `json:"segment_count"`
}

// Drawable reports whether the zone spans more than one underlying segment.
func (z *ZoneInfo) Drawable() bool {
	return z != nil && z.SegmentCount > 1 && z.Right > z.Left
}

// Divergence ("beichi") is a discrepancy between price movement and an oscillator's movement.
type Divergence struct {
	MarkerA   MarkerPoint `json:"marker_a"`
	MarkerB   MarkerPoint `json:"marker_b"`
	Direction Direction   `json:"direction"`
	Kind      SignalKind  `json:"kind"`
	Zone      *ZoneInfo   `json:"zone_info,omitempty"`
	Boundary  Boundary    `json:"boundary"`
	Low       float64     `json:"low"`
	Price     float64     `json:"price"`
	Time      Timestamp   `json:"time"`
}

func (d Divergence) Key() string {
	return d.Boundary.Key()
}

func (d Divergence) String() string {
	return fmt.Sprintf("%s divergence %s kind=%s a=%.2f b=%.2f", d.Direction, d.Boundary.Key(), d.Kind, d.MarkerA.Value, d.MarkerB.Value)
}

// AnnotationRequest describes the window and the indicator set the annotations are computed for.
type AnnotationRequest struct {
	From       Timestamp         `json:"from"`
	To         Timestamp         `json:"to"`
	Symbol     string            `json:"symbol"`
	Resolution string            `json:"resolution"`
	Indicators []IndicatorConfig `json:"indicator_config"`
}

func (r AnnotationRequest) Range() VisibleRange {
	return VisibleRange{From: r.From, To: r.To}
}

// AnnotationPayload is the analytics service response. The outer index of Divergences
// and BarMarkers is aligned with the request's indicator list.
type AnnotationPayload struct {
	Segments    SegmentSet     `json:"segments"`
	Divergences [][]Divergence `json:"divergences"`
	BarMarkers  [][]Timestamp  `json:"bar_markers"`
}

// NumDivergences counts divergences over every indicator.
func (p *AnnotationPayload) NumDivergences() (n int) {
	for _, list := range p.Divergences {
		n += len(list)
	}
	return n
}

// NumBarMarkers counts marked bars over every indicator.
func (p *AnnotationPayload) NumBarMarkers() (n int) {
	for _, list := range p.BarMarkers {
		n += len(list)
	}
	return n
}

// IsEmpty reports whether the payload carries nothing to draw.
func (p *AnnotationPayload) IsEmpty() bool {
	return len(p.Segments.Finished) == 0 &&
		len(p.Segments.Unfinished) == 0 &&
		p.NumDivergences() == 0 &&
		p.NumBarMarkers() == 0
}
