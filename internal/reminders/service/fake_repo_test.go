package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	remindererrors "salonbook/internal/reminders/errors"
	"salonbook/pkg/model"
)

// memRepo mirrors the conditional writes of the Mongo repository under a
// single mutex.
type memRepo struct {
	mu        sync.Mutex
	seq       int
	reminders map[string]*model.Reminder
	claimErr  error
	claims    map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{reminders: make(map[string]*model.Reminder), claims: make(map[string]int)}
}

func (m *memRepo) Insert(_ context.Context, r *model.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = fmt.Sprintf("%024x", m.seq)
	if r.Status == "" {
		r.Status = model.ReminderScheduled
	}
	r.UpdatedAt = time.Now()
	cp := *r
	m.reminders[r.ID] = &cp
	return nil
}

func (m *memRepo) ClaimDue(_ context.Context, now time.Time) (*model.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return nil, m.claimErr
	}

	var due []*model.Reminder
	for _, r := range m.reminders {
		if r.Status == model.ReminderScheduled && !r.DueAt.After(now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return nil, remindererrors.ErrNoneDue
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })

	r := due[0]
	r.Status = model.ReminderSending
	r.UpdatedAt = time.Now()
	m.claims[r.ID]++
	cp := *r
	return &cp, nil
}

func (m *memRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok || r.Status != model.ReminderSending {
		return remindererrors.ErrNotClaimed
	}
	r.Status = model.ReminderSent
	r.SentAt = &sentAt
	return nil
}

func (m *memRepo) MarkAttemptFailed(ctx context.Context, id string, next model.ReminderStatus, attempts int, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok || r.Status != model.ReminderSending {
		return remindererrors.ErrNotClaimed
	}
	r.Status = next
	r.Attempts = attempts
	r.LastError = errMsg
	return nil
}

func (m *memRepo) SupersedeForBooking(_ context.Context, bookingID, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reminders {
		if r.BookingID == bookingID && r.Status == model.ReminderScheduled {
			r.Status = model.ReminderFailed
			r.LastError = reason
			n++
		}
	}
	return n, nil
}

func (m *memRepo) RequeueStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reminders {
		if r.Status == model.ReminderSending && r.UpdatedAt.Before(claimedBefore) {
			r.Status = model.ReminderScheduled
			n++
		}
	}
	return n, nil
}

func (m *memRepo) get(id string) model.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.reminders[id]
}
