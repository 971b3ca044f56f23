package network

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"astarviz/internal/grid"
	"astarviz/internal/search"
)

// Hub turns engine notifications into envelopes and fans them out to
// subscribers. Publishing never blocks: a subscriber whose buffer is full
// misses the message and its drop counter grows.
type Hub struct {
	logger *log.Logger
	now    func() time.Time

	seq atomic.Uint64

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "astar-hub ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Hub{
		logger: logger,
		now:    time.Now,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscription is one consumer of the hub's envelope stream.
type Subscription struct {
	hub     *Hub
	ch      chan Envelope
	dropped atomic.Uint64
	once    sync.Once
}

// Subscribe registers a consumer with room for buffer pending envelopes.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 1
	}
	sub := &Subscription{hub: h, ch: make(chan Envelope, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// C delivers envelopes in publish order. It is closed by Close.
func (s *Subscription) C() <-chan Envelope {
	return s.ch
}

// Dropped reports how many envelopes were discarded for this subscriber.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) publish(kind MessageType, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("encode %s payload: %v", kind, err)
		return
	}
	env := Envelope{
		Type:      kind,
		Timestamp: h.now(),
		Seq:       h.seq.Add(1),
		Payload:   raw,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- env:
		default:
			sub.dropped.Add(1)
		}
	}
}

func (h *Hub) CellExplored(pos grid.Position) {
	h.publish(MessageExplored, CellEvent{X: pos.X, Y: pos.Y})
}

func (h *Hub) CellFrontier(pos grid.Position) {
	h.publish(MessageFrontier, CellEvent{X: pos.X, Y: pos.Y})
}

func (h *Hub) CellPath(pos grid.Position) {
	h.publish(MessagePath, CellEvent{X: pos.X, Y: pos.Y})
}

// StateChanged publishes lifecycle changes. The return to idle is sent as a
// reset so viewers know to clear their canvas.
func (h *Hub) StateChanged(state search.State) {
	kind := MessageState
	if state == search.StateIdle {
		kind = MessageReset
	}
	h.publish(kind, StateEvent{State: state.String()})
}
