package ledger

import "time"

// Clock entrega la hora actual y la fecha de negocio en la zona horaria de la planta.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock reloj del sistema en loc (UTC si loc es nil).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Current hora actual.
func (c Clock) Current() time.Time { return c.now() }

// BusinessDate fecha de negocio (YYYY-MM-DD).
func (c Clock) BusinessDate(t time.Time) string { return t.In(c.loc()).Format("2006-01-02") }

// BusinessTime hora de negocio (HH:MM:SS).
func (c Clock) BusinessTime(t time.Time) string { return t.In(c.loc()).Format("15:04:05") }
