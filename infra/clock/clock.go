// Package clock provides the system implementation of the domain clock.
package clock

import "time"

// System is a Clock backed by the wall clock, pinned to one timezone.
type System struct {
	loc *time.Location
}

// NewSystem builds a system clock for the given IANA timezone name.
func NewSystem(tz string) (*System, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &System{loc: loc}, nil
}

// Now returns the current time in the configured timezone.
func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Timezone returns the configured location.
func (s *System) Timezone() *time.Location {
	return s.loc
}
