// Package notify delivers text messages to customers and staff.
package notify

import (
	"context"
	"errors"
	"fmt"

	"salonbook/pkg/logger"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

type Message struct {
	To   string
	Text string
	// DedupKey is stable across retries of the same delivery. Channels that
	// support provider-side deduplication derive their retry key from it.
	DedupKey string
}

type Channel interface {
	Push(ctx context.Context, m Message) error
}

// NoopChannel logs and succeeds. It stands in for channels whose credentials
// are absent.
type NoopChannel struct {
	Name string
	Log  *logger.Logger
}

func (c NoopChannel) Push(_ context.Context, m Message) error {
	c.Log.Warn("Notification channel not configured, message dropped", "channel", c.Name, "to", m.To)
	return nil
}

type Registry struct {
	channels map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

func (r *Registry) Register(name string, ch Channel) {
	r.channels[name] = ch
}

func (r *Registry) Get(name string) (Channel, error) {
	ch, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, name)
	}
	return ch, nil
}
