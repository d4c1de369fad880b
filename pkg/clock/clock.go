// Package clock converts between the salon's local civil time and absolute
// instants. Everything persisted is UTC; everything shown to people is local.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	_ "time/tzdata"
)

const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04"
	LocalDateTimeLayout = "2006-01-02T15:04"

	DefaultTimezone = "Asia/Taipei"
)

var (
	ErrInvalidDate          = errors.New("date must be a real calendar date in YYYY-MM-DD format")
	ErrInvalidTime          = errors.New("time must be HH:MM in 24-hour format")
	ErrNonexistentLocalTime = errors.New("local time does not exist in the salon timezone")
	ErrInvalidDateTime      = errors.New("local date-time must be in YYYY-MM-DDTHH:MM format")
	ErrInvalidInstant       = errors.New("instant must be an RFC3339 timestamp")
)

var (
	reDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reTime = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// LoadLocation resolves a timezone name. Asia/Taipei has no DST, so when the
// zone database is unavailable it falls back to a fixed +08:00 offset.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone("CST", 8*60*60), nil
	}
	return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
}

type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

func New(timezone string) (*Normalizer, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Normalizer{loc: loc, now: time.Now}, nil
}

// NewWithNow pins the clock's notion of "now".
func NewWithNow(loc *time.Location, now func() time.Time) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current absolute instant in UTC.
func (n *Normalizer) Now() time.Time {
	return n.now().UTC()
}

// ToAbsolute interprets date and clock time as civil time in the salon zone.
func (n *Normalizer) ToAbsolute(date, clockTime string) (time.Time, error) {
	y, m, d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hh, mm, err := ParseClock(clockTime)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(y, m, d, hh, mm, 0, 0, n.loc)
	// time.Date silently shifts wall times that fall into a DST gap.
	if t.Hour() != hh || t.Minute() != mm || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrNonexistentLocalTime, date, clockTime)
	}
	return t.UTC(), nil
}

// ToLocal renders an instant as salon-local date and clock time.
func (n *Normalizer) ToLocal(t time.Time) (string, string) {
	local := t.In(n.loc)
	return local.Format(DateLayout), local.Format(TimeLayout)
}

// ParseLocalDateTime accepts "YYYY-MM-DDTHH:MM" in salon-local time.
func (n *Normalizer) ParseLocalDateTime(s string) (time.Time, error) {
	if len(s) != len(LocalDateTimeLayout) || s[10] != 'T' {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
	}
	return n.ToAbsolute(s[:10], s[11:])
}

// ParseInstant accepts an RFC3339 timestamp with an explicit offset.
func (n *Normalizer) ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInstant, s)
	}
	return t.UTC(), nil
}

// Rendered is the dual representation of an instant: the absolute value and
// the salon-local civil rendering, so clients never convert themselves.
type Rendered struct {
	Instant string `json:"instant"`
	Local   string `json:"local"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (n *Normalizer) Render(t time.Time) Rendered {
	local := t.In(n.loc)
	return Rendered{
		Instant: t.UTC().Format(time.RFC3339),
		Local:   local.Format(time.RFC3339),
		Date:    local.Format(DateLayout),
		Time:    local.Format(TimeLayout),
	}
}

// RenderPtr is Render for optional instants.
func (n *Normalizer) RenderPtr(t *time.Time) *Rendered {
	if t == nil || t.IsZero() {
		return nil
	}
	r := n.Render(*t)
	return &r
}

// ParseDate validates a YYYY-MM-DD string and reports its components.
func ParseDate(date string) (int, time.Month, int, error) {
	if !reDate.MatchString(date) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// ParseClock validates an HH:MM string with hour 0-23 and minute 0-59.
func ParseClock(clockTime string) (int, int, error) {
	if !reTime.MatchString(clockTime) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, clockTime)
	}
	hh, _ := strconv.Atoi(clockTime[:2])
	mm, _ := strconv.Atoi(clockTime[3:])
	if hh > 23 || mm > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, clockTime)
	}
	return hh, mm, nil
}
