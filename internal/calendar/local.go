package calendar

import (
	"context"
	"sync"

	"salonbook/pkg/logger"

	"github.com/google/uuid"
)

// LocalProvider records events in memory and hands out synthetic ids. Used
// with CALENDAR_MODE=local for development.
type LocalProvider struct {
	mu     sync.Mutex
	events map[string]Event
	log    *logger.Logger
}

func NewLocalProvider(log *logger.Logger) *LocalProvider {
	return &LocalProvider{events: make(map[string]Event), log: log}
}

func (p *LocalProvider) CreateEvent(_ context.Context, e Event) (Ref, error) {
	id := "local-" + uuid.NewString()

	p.mu.Lock()
	p.events[id] = e
	p.mu.Unlock()

	p.log.Info("Local calendar event created", "event_id", id, "summary", e.Summary, "start", e.Start)
	return Ref{ID: id}, nil
}

func (p *LocalProvider) Event(id string) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.events[id]
	return e, ok
}
