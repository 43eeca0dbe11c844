package domain

import "time"

// ScheduleWindow is how far into the future a withdrawal may be scheduled.
const ScheduleWindow = 7 * 24 * time.Hour

// Clock supplies domain time. All scheduling decisions go through it so the
// logic stays deterministic under test; nothing in the domain reads the wall
// clock directly.
type Clock interface {
	Now() time.Time
	Timezone() *time.Location
}

// Schedule is the optional execution time of a withdrawal. A zero Schedule
// means "execute immediately". Once constructed it is immutable; there is no
// reschedule.
type Schedule struct {
	at *time.Time
}

// NewSchedule validates a requested execution time against the clock.
// A nil time yields an immediate schedule. A set time must be strictly after
// the clock's current time and at most ScheduleWindow beyond it.
func NewSchedule(at *time.Time, clock Clock) (Schedule, error) {
	if at == nil {
		return Schedule{}, nil
	}

	now := clock.Now()
	if !at.After(now) {
		return Schedule{}, ErrSchedulePast
	}
	if at.After(now.Add(ScheduleWindow)) {
		return Schedule{}, ErrScheduleTooFar
	}

	t := *at
	return Schedule{at: &t}, nil
}

// Immediate returns the schedule for a withdrawal executed right away.
func Immediate() Schedule {
	return Schedule{}
}

// IsScheduled reports whether the withdrawal is future-dated.
func (s Schedule) IsScheduled() bool {
	return s.at != nil
}

// At returns the execution time, or nil for an immediate schedule.
func (s Schedule) At() *time.Time {
	return s.at
}
