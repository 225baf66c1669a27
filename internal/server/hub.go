package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/pkg/core/logging"
)

const sendBuffer = 256

// Connection is one live feed subscriber
type Connection struct {
	ID   string
	Send chan []byte

	closed bool
}

// Hub fans engine notifications out to live feed subscribers. It implements
// engine.Renderer and engine.Reporter. A subscriber whose buffer is full is
// dropped instead of blocking the engine.
type Hub struct {
	mu    sync.Mutex
	conns map[string]*Connection
	seq   uint64
	last  *engine.Outcome

	// outcomes counts reported outcomes
	outcomes uint64
	logger   *logging.Logger
}

var (
	_ engine.Renderer = (*Hub)(nil)
	_ engine.Reporter = (*Hub)(nil)
)

// NewHub creates an empty hub
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.New("hub")
	}
	return &Hub{
		conns:  make(map[string]*Connection),
		logger: logger,
	}
}

// Register adds a subscriber. initial, when non-nil, is produced under the
// hub lock and queued before any later broadcast. It must not call back into
// the hub.
func (h *Hub) Register(initial func(seq uint64, last *engine.Outcome) []byte) *Connection {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn := &Connection{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer)}
	if initial != nil {
		conn.Send <- initial(h.seq, h.lastCopyLocked())
	}
	h.conns[conn.ID] = conn
	h.logger.Debug("subscriber registered", "id", conn.ID, "subscribers", len(h.conns))
	return conn
}

// Unregister removes a subscriber and closes its channel. It is idempotent.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(conn)
}

func (h *Hub) dropLocked(conn *Connection) {
	if conn.closed {
		return
	}
	conn.closed = true
	delete(h.conns, conn.ID)
	close(conn.Send)
	h.logger.Debug("subscriber removed", "id", conn.ID, "subscribers", len(h.conns))
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// LastOutcome returns the most recent outcome, if any
func (h *Hub) LastOutcome() *engine.Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastCopyLocked()
}

// Outcomes returns how many outcomes the hub has seen
func (h *Hub) Outcomes() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcomes
}

func (h *Hub) lastCopyLocked() *engine.Outcome {
	if h.last == nil {
		return nil
	}
	o := *h.last
	return &o
}

// sendTo queues a message for one subscriber only
func (h *Hub) sendTo(conn *Connection, typ string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn.closed {
		return
	}
	select {
	case conn.Send <- encodeEvent(typ, h.seq, payload):
	default:
		h.logger.Warn("subscriber buffer full, dropping", "id", conn.ID)
		h.dropLocked(conn)
	}
}

func (h *Hub) broadcast(typ string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	data := encodeEvent(typ, h.seq, payload)
	for _, conn := range h.conns {
		select {
		case conn.Send <- data:
		default:
			h.logger.Warn("subscriber buffer full, dropping", "id", conn.ID)
			h.dropLocked(conn)
		}
	}
}

// SetRobot implements engine.Renderer
func (h *Hub) SetRobot(pos grid.Position, paint engine.PaintKind) {
	h.broadcast(EventRobot, RobotPayload{Position: pos, Paint: paint})
}

// HighlightLine implements engine.Renderer
func (h *Hub) HighlightLine(index int) {
	h.broadcast(EventHighlight, HighlightPayload{Index: index})
}

// ClearHighlights implements engine.Renderer
func (h *Hub) ClearHighlights() {
	h.broadcast(EventClear, nil)
}

// ClearProgram implements engine.Renderer
func (h *Hub) ClearProgram() {
	h.broadcast(EventProgramCleared, nil)
}

// OnOutcome implements engine.Reporter
func (h *Hub) OnOutcome(o engine.Outcome) {
	h.mu.Lock()
	h.last = &o
	h.outcomes++
	h.mu.Unlock()
	h.broadcast(EventOutcome, o)
}

// Close drops every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		h.dropLocked(conn)
	}
}
