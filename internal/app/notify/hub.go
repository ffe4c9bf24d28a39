package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/platform/natsutil"
)

// DefaultDebounce coalesces bursts (bulk deletes, double clicks) into one
// browser refresh.
const DefaultDebounce = 75 * time.Millisecond

// Change is what a stream subscriber receives: the last event of a burst
// and how many events the burst contained.
type Change struct {
	Event contracts.TodoChanged
	Count int
}

// Hub shares one NATS subscription per subject between all SSE
// connections watching it.
type Hub struct {
	subscriber natsutil.Subscriber
	logger     *log.Logger
	debounce   time.Duration

	mu        sync.Mutex
	bySubject map[string]*subjectStream
}

type subjectStream struct {
	subject  string
	debounce time.Duration
	logger   *log.Logger

	mu          sync.Mutex
	unsubscribe func() error
	subscribers map[uint64]chan Change
	nextID      uint64
	pending     *Change
	timer       *time.Timer
}

func NewHub(subscriber natsutil.Subscriber, logger *log.Logger) *Hub {
	return &Hub{
		subscriber: subscriber,
		logger:     logger,
		debounce:   DefaultDebounce,
		bySubject:  map[string]*subjectStream{},
	}
}

// SetDebounce overrides the burst window; zero delivers every event.
func (h *Hub) SetDebounce(d time.Duration) { h.debounce = d }

// Subscribe registers a listener for subject. The returned func must be
// called once the listener goes away.
func (h *Hub) Subscribe(subject string) (<-chan Change, func(), error) {
	if h == nil || h.subscriber == nil {
		return nil, nil, fmt.Errorf("notifications are disabled")
	}

	h.mu.Lock()
	stream, ok := h.bySubject[subject]
	if !ok {
		stream = &subjectStream{
			subject:     subject,
			debounce:    h.debounce,
			logger:      h.logger,
			subscribers: map[uint64]chan Change{},
		}
		h.bySubject[subject] = stream
	}
	h.mu.Unlock()

	id, ch, err := stream.addSubscriber(h.subscriber)
	if err != nil {
		h.dropIfEmpty(subject, stream)
		return nil, nil, err
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if stream.removeSubscriber(id) {
				h.dropIfEmpty(subject, stream)
			}
		})
	}
	return ch, unsubscribe, nil
}

func (h *Hub) dropIfEmpty(subject string, stream *subjectStream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.bySubject[subject]; ok && current == stream && stream.empty() {
		delete(h.bySubject, subject)
	}
}

// Subjects reports how many subjects currently hold a NATS subscription.
func (h *Hub) Subjects() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.bySubject)
}

func (s *subjectStream) empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

func (s *subjectStream) addSubscriber(sub natsutil.Subscriber) (uint64, chan Change, error) {
	ch := make(chan Change, 16)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers[id] = ch
	s.mu.Unlock()

	if err := s.ensureSubscription(sub); err != nil {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
		return 0, nil, err
	}
	return id, ch, nil
}

func (s *subjectStream) removeSubscriber(id uint64) bool {
	var (
		shouldStop  bool
		unsubscribe func() error
		timer       *time.Timer
	)

	s.mu.Lock()
	delete(s.subscribers, id)
	if len(s.subscribers) == 0 {
		shouldStop = true
		unsubscribe = s.unsubscribe
		timer = s.timer
		s.unsubscribe = nil
		s.timer = nil
		s.pending = nil
	}
	s.mu.Unlock()

	if shouldStop {
		if timer != nil {
			timer.Stop()
		}
		if unsubscribe != nil {
			if err := unsubscribe(); err != nil && s.logger != nil {
				s.logger.Warn("unsubscribe failed", "subject", s.subject, "err", err)
			}
		}
	}
	return shouldStop
}

func (s *subjectStream) ensureSubscription(sub natsutil.Subscriber) error {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	unsubscribe, err := sub.Subscribe(s.subject, s.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		_ = unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

func (s *subjectStream) handle(payload []byte) {
	var event contracts.TodoChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		if s.logger != nil {
			s.logger.Debug("dropping malformed todo change", "subject", s.subject, "err", err)
		}
		return
	}

	if s.debounce <= 0 {
		s.broadcast(Change{Event: event, Count: 1})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = &Change{}
	}
	s.pending.Event = event
	s.pending.Count++
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flush)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *subjectStream) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if pending != nil {
		s.broadcast(*pending)
	}
}

func (s *subjectStream) broadcast(change Change) {
	s.mu.Lock()
	subs := make([]chan Change, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- change:
		default:
		}
	}
}
