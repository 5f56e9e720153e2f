package notify

import (
	"sync"
	"time"

	"github.com/aims/storefront/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultDuration = 3 * time.Second
	DefaultStagger  = 500 * time.Millisecond
)

type entry struct {
	n     domain.Notification
	timer *time.Timer
}

// Sink keeps the queue of visible notifications and removes each one when it expires.
// It never blocks its callers.
type Sink struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []string
	duration time.Duration
	stagger  time.Duration
	closed   bool

	now   func() time.Time
	newID func() string
}

func NewSink(duration, stagger time.Duration) *Sink {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if stagger < 0 {
		stagger = 0
	}
	return &Sink{
		entries:  make(map[string]*entry),
		duration: duration,
		stagger:  stagger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Notify enqueues a message with the default duration and returns its id.
func (s *Sink) Notify(severity domain.Severity, message string) string {
	return s.NotifyFor(severity, message, s.duration)
}

// NotifyFor enqueues a message that expires after duration plus one stagger per notification already queued.
func (s *Sink) NotifyFor(severity domain.Severity, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = s.duration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	ttl := duration + time.Duration(len(s.order))*s.stagger
	now := s.now()
	n := domain.Notification{
		ID:        id,
		Severity:  severity,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	logNotification(n)

	if s.closed {
		return id
	}

	e := &entry{n: n}
	e.timer = time.AfterFunc(ttl, func() { s.expire(id) })
	s.entries[id] = e
	s.order = append(s.order, id)
	return id
}

// Dismiss removes a notification immediately. It reports whether the id was still queued.
func (s *Sink) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	s.removeLocked(id)
	return true
}

// Active lists the queued notifications, oldest first.
func (s *Sink) Active() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].n)
	}
	return out
}

// Close stops every pending removal timer and drops the queue.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		e.timer.Stop()
	}
	s.entries = make(map[string]*entry)
	s.order = nil
	s.closed = true
}

func (s *Sink) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Sink) removeLocked(id string) {
	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func logNotification(n domain.Notification) {
	entry := log.WithFields(log.Fields{
		"notification_id": n.ID,
		"severity":        n.Severity,
	})
	switch n.Severity {
	case domain.SeverityError:
		entry.Error(n.Message)
	case domain.SeverityWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}
