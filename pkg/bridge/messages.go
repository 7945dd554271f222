package bridge

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/types"
)

type MessageType string

// inbound messages, sent by the widget shim
const (
	MessageChartReady          = MessageType("chart_ready")
	MessageDataLoaded          = MessageType("data_loaded")
	MessageVisibleRangeChanged = MessageType("visible_range_changed")
	MessageSymbolChanged       = MessageType("symbol_changed")
	MessageTick                = MessageType("tick")
	MessageDrawingEvent        = MessageType("drawing_event")
)

// outbound messages besides the surface mutations
const (
	MessageSession = MessageType("session")
	MessageError   = MessageType("error")
)

var ErrUnknownMessage = errors.New("unknown message type")

// InboundMessage is the union of every message the shim sends. Fields irrelevant to
// the message type are left empty.
type InboundMessage struct {
	Type       MessageType         `json:"type"`
	Symbol     string              `json:"symbol,omitempty"`
	Resolution string              `json:"resolution,omitempty"`
	Range      *types.VisibleRange `json:"range,omitempty"`
	Bar        *types.Bar          `json:"bar,omitempty"`

	ID    chart.ShapeID          `json:"id,omitempty"`
	Event chart.DrawingEventType `json:"event,omitempty"`
}

func ParseInboundMessage(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "malformed bridge message")
	}

	switch msg.Type {
	case MessageChartReady, MessageSymbolChanged:
		if msg.Symbol == "" || msg.Resolution == "" {
			return nil, errors.Errorf("%s requires symbol and resolution", msg.Type)
		}

	case MessageVisibleRangeChanged:
		if msg.Range == nil {
			return nil, errors.Errorf("%s requires range", msg.Type)
		}

	case MessageTick:
		if msg.Bar == nil {
			return nil, errors.Errorf("%s requires bar", msg.Type)
		}

	case MessageDrawingEvent:
		if msg.ID == "" || msg.Event == "" {
			return nil, errors.Errorf("%s requires id and event", msg.Type)
		}

	case MessageDataLoaded:

	default:
		return nil, errors.Wrapf(ErrUnknownMessage, "%q", msg.Type)
	}

	return &msg, nil
}

// SessionMessage is sent once the chart of a connection is attached.
type SessionMessage struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id"`
}

type ErrorMessage struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error"`
}
