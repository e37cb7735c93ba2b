package period

import (
	"fmt"
	"strings"
	"time"

	"kpitracker/models"
)

const (
	DateLayout = "2006-01-02"

	// Period A covers day 1 through splitDay; period B the rest of the month.
	splitDay = 14
	idSep    = "_to_"
)

// Calendar answers period questions relative to an injected clock. Dates
// are civil dates: the clock's instant is read in loc, then carried as UTC
// midnight so day arithmetic never crosses a DST edge.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendar(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// Now is the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current civil date.
func (c *Calendar) Today() time.Time {
	n := c.Now()
	return civil(n.Year(), n.Month(), n.Day())
}

func (c *Calendar) TodayString() string {
	return c.Today().Format(DateLayout)
}

func (c *Calendar) Current() models.Period {
	return Resolve(c.Today())
}

// Previous is the period immediately before the current one, crossing
// month and year boundaries as needed.
func (c *Calendar) Previous() models.Period {
	return previousOf(c.Today())
}

// IsBoundaryDay reports whether today opens a new period.
func (c *Calendar) IsBoundaryDay() bool {
	day := c.Today().Day()
	return day == 1 || day == splitDay+1
}

// IsClosed reports whether the period ended before today.
func (c *Calendar) IsClosed(p models.Period) bool {
	return c.TodayString() > p.EndDate
}

// DaysRemaining counts today through the period's last day, inclusive.
func (c *Calendar) DaysRemaining(p models.Period) int {
	end, err := ParseDate(p.EndDate)
	if err != nil {
		return 0
	}
	days := int(end.Sub(c.Today()).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// Resolve returns the period containing d.
func Resolve(d time.Time) models.Period {
	year, month, day := d.Date()
	if day <= splitDay {
		return newPeriod(civil(year, month, 1), civil(year, month, splitDay))
	}
	return newPeriod(civil(year, month, splitDay+1), civil(year, month, lastDayOfMonth(year, month)))
}

// ResolveDate resolves a YYYY-MM-DD string.
func ResolveDate(date string) (models.Period, error) {
	d, err := ParseDate(date)
	if err != nil {
		return models.Period{}, err
	}
	return Resolve(d), nil
}

// PeriodID formats the stable identifier, e.g. 2026-02-01_to_2026-02-14.
func PeriodID(start, end time.Time) string {
	return start.Format(DateLayout) + idSep + end.Format(DateLayout)
}

// ParseID accepts only identifiers Resolve could have produced.
func ParseID(id string) (models.Period, error) {
	startStr, endStr, ok := strings.Cut(id, idSep)
	if !ok {
		return models.Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	start, err := ParseDate(startStr)
	if err != nil {
		return models.Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	if _, err := ParseDate(endStr); err != nil {
		return models.Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	p := Resolve(start)
	if p.ID != id {
		return models.Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
	}
	return p, nil
}

// ParseDate parses a strict YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

func previousOf(d time.Time) models.Period {
	year, month, day := d.Date()
	if day <= splitDay {
		// Period B of the prior month; time.Date normalizes month 0 to December.
		prev := civil(year, month-1, 1)
		return Resolve(civil(prev.Year(), prev.Month(), splitDay+1))
	}
	return Resolve(civil(year, month, 1))
}

func newPeriod(start, end time.Time) models.Period {
	return models.Period{
		ID:        PeriodID(start, end),
		StartDate: start.Format(DateLayout),
		EndDate:   end.Format(DateLayout),
	}
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func civil(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
