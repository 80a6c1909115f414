package session

import (
	"sync"

	"github.com/emarket/emarket/internal/domain/entity"
)

// Event carries an identity change. Identity is nil after sign-out.
type Event struct {
	Identity *entity.Identity
}

// eventHub fans identity-change events out to any number of subscribers.
// Each subscriber drains its own unbounded queue on a dedicated goroutine,
// so a slow consumer can never block a state transition or another
// subscriber.
type eventHub struct {
	mu   sync.Mutex
	next int
	subs map[int]*eventSub
}

func (h *eventHub) subscribe() (<-chan Event, func()) {
	s := newEventSub()

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]*eventSub)
	}
	id := h.next
	h.next++
	h.subs[id] = s
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			s.cancel()
		})
	}
	return s.out, cancel
}

func (h *eventHub) publish(ev Event) {
	h.mu.Lock()
	subs := make([]*eventSub, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.publish(ev)
	}
}

type eventSub struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
	done   chan struct{}
	out    chan Event
}

func newEventSub() *eventSub {
	s := &eventSub{
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

func (s *eventSub) publish(ev Event) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, ev)
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *eventSub) cancel() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *eventSub) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
