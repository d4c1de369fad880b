package service

import "salonbook/pkg/model"

const DefaultMaxAttempts = 5

// RetryPolicy decides what happens after a failed delivery. Retries are
// immediate: a reminder put back to scheduled is picked up by the next drain.
type RetryPolicy struct {
	MaxAttempts int
}

// Next returns the status and attempt count to record after a failed
// delivery, given the attempts made before it.
func (p RetryPolicy) Next(attempts int) (model.ReminderStatus, int) {
	limit := p.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	attempts++
	if attempts >= limit {
		return model.ReminderFailed, attempts
	}
	return model.ReminderScheduled, attempts
}
