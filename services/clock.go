package services

import (
	"sync"
	"time"

	"github.com/cppla/maeum/models"
)

// Clock supplies the current instant and calendar day in the configured zone.
type Clock interface {
	Now() time.Time
	Today() models.Day
	Location() *time.Location
}

// SystemClock reads the wall clock.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock whose days follow loc (time.Local when nil).
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c *SystemClock) Today() models.Day        { return models.DayOf(time.Now(), c.loc) }
func (c *SystemClock) Location() *time.Location { return c.loc }

// FixedClock is a settable clock for tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock starts at t; the zone of t defines calendar days.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// FixedClockAt starts at noon UTC of day.
func FixedClockAt(day models.Day) *FixedClock {
	return NewFixedClock(day.Time().Add(12 * time.Hour))
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Today() models.Day {
	now := c.Now()
	return models.DayOf(now, now.Location())
}

func (c *FixedClock) Location() *time.Location { return c.Now().Location() }

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// SetDay moves the clock to noon of day, keeping its zone.
func (c *FixedClock) SetDay(day models.Day) {
	loc := c.Location()
	t := day.Time()
	c.Set(time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc))
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// startOfDay returns midnight of the clock's current day in its zone.
func startOfDay(c Clock) time.Time {
	now := c.Now().In(c.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location())
}
