package bridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/abel123/zeus/pkg/chart"
	"github.com/abel123/zeus/pkg/zen"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	sendBufferSize = 512
)

var ErrAlreadyAttached = errors.New("chart is already attached to this session")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Session is one websocket connection, which hosts exactly one chart.
type Session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan interface{}

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	surface    *chart.Surface
	controller *zen.Controller
	closed     bool
}

func newSession(hub *Hub, conn *websocket.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan interface{}, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ServeWS upgrades the request and starts the pumps of a new session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	s := newSession(h, conn)

	select {
	case h.register <- s:
	case <-h.done:
		s.close()
		return
	}

	go s.writePump()
	go s.readPump()
}

func (s *Session) ID() string {
	return s.id
}

// Chart returns the surface and the controller once the chart is ready.
func (s *Session) Chart() (*chart.Surface, *zen.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface, s.controller
}

// Stats returns the controller stats, false before the chart is ready.
func (s *Session) Stats() (zen.Stats, bool) {
	_, ctrl := s.Chart()
	if ctrl == nil {
		return zen.Stats{}, false
	}
	return ctrl.Stats(), true
}

func (s *Session) readPump() {
	defer func() {
		s.hub.leave(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warnf("session %s read error", s.id)
			}
			return
		}

		if err := s.handle(data); err != nil {
			log.WithError(err).Warnf("session %s: unable to handle message", s.id)
			s.enqueue(ErrorMessage{Type: MessageError, Error: err.Error()})
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(msg); err != nil {
				log.WithError(err).Warnf("session %s write error", s.id)
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies one shim message to the session's surface.
func (s *Session) handle(data []byte) error {
	msg, err := ParseInboundMessage(data)
	if err != nil {
		return err
	}

	if msg.Type == MessageChartReady {
		return s.attach(msg)
	}

	surface, _ := s.Chart()
	if surface == nil {
		return errors.Errorf("%s received before %s", msg.Type, MessageChartReady)
	}

	switch msg.Type {
	case MessageDataLoaded:
		surface.LoadData("", "")

	case MessageSymbolChanged:
		surface.LoadData(msg.Symbol, msg.Resolution)

	case MessageVisibleRangeChanged:
		surface.SetVisibleRange(*msg.Range)

	case MessageTick:
		surface.PushTick(*msg.Bar)

	case MessageDrawingEvent:
		// the drawing is already gone on the widget
		if msg.Event == chart.DrawingEventRemove {
			surface.DropShape(msg.ID)
		}
		surface.EmitDrawingEvent(msg.ID, msg.Event)
	}

	return nil
}

func (s *Session) attach(msg *InboundMessage) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zen.ErrDisposed
	}

	if s.surface != nil {
		s.mu.Unlock()
		return ErrAlreadyAttached
	}

	surface := chart.NewSurface(msg.Symbol, msg.Resolution)
	surface.SetLogger(log.WithField("session", s.id))
	if msg.Range != nil {
		surface.SetVisibleRange(*msg.Range)
	}
	surface.OnMutation(func(m chart.Mutation) {
		s.enqueue(m)
	})

	ctrl := s.hub.newController(s.id, surface)
	s.surface = surface
	s.controller = ctrl
	s.mu.Unlock()

	s.enqueue(SessionMessage{Type: MessageSession, ID: s.id})

	if err := ctrl.Attach(s.ctx, surface); err != nil {
		return errors.Wrap(err, "attach controller")
	}

	log.Infof("session %s attached to %s %s", s.id, msg.Symbol, msg.Resolution)
	return nil
}

// enqueue hands msg to the write pump. A session that can not keep up is evicted.
func (s *Session) enqueue(msg interface{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	select {
	case s.send <- msg:
		s.mu.Unlock()

	default:
		s.mu.Unlock()
		log.Warnf("session %s is too slow, evicting", s.id)
		s.evict()
	}
}

// evict drops the connection, the read pump then unregisters the session.
func (s *Session) evict() {
	if s.conn != nil {
		_ = s.conn.Close()
		return
	}
	s.close()
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	ctrl := s.controller
	s.mu.Unlock()

	s.cancel()
	if ctrl != nil {
		ctrl.Dispose()
	}
}
