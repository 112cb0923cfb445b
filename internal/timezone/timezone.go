package timezone

import "time"

// The warehouse operates in a single timezone; slot windows are defined
// in local time and converted to UTC at the edges.
const DefaultTimezone = "Europe/Madrid"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

// Midnight returns 00:00 local time of t's calendar day.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DateStr formats a time as the local calendar date.
func DateStr(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// At places an HH:MM clock time on t's calendar day in loc.
func At(t time.Time, hm string, loc *time.Location) time.Time {
	parsed, err := time.Parse("15:04", hm)
	if err != nil {
		return Midnight(t, loc)
	}
	local := t.In(loc)
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0,
		loc,
	)
}
