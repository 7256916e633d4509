package pipeline

import "time"

// Budget is a cooperative wall-clock limit, checked between batches. A
// slow batch can overrun it before the next check.
type Budget struct {
	deadline  time.Time
	unlimited bool
	now       func() time.Time
}

// NewBudget starts a budget of d measured on now. d <= 0 never expires.
func NewBudget(d time.Duration, now func() time.Time) *Budget {
	if now == nil {
		now = time.Now
	}
	if d <= 0 {
		return &Budget{unlimited: true, now: now}
	}
	return &Budget{deadline: now().Add(d), now: now}
}

// Unlimited returns a budget that never expires.
func Unlimited() *Budget { return &Budget{unlimited: true, now: time.Now} }

func (b *Budget) Exceeded() bool {
	if b.unlimited {
		return false
	}
	return !b.now().Before(b.deadline)
}
