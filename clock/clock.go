package clock

import (
	"fmt"
	"time"
)

const (
	clockLayout    = "15:04"
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var guiLocation *time.Location = time.UTC

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

func GuiLocation() *time.Location {
	return guiLocation
}

// FormatClock renders hours and minutes, e.g. "17:30".
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(clockLayout)
}

func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func FromIso(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format(dateTimeLayout)
}
