// Package week resolves the Monday-through-Sunday window used to bucket
// weekly task completions. Weeks start on Monday 00:00:00.000 and end on
// Sunday 23:59:59.999 in the instant's own location; a Sunday instant
// belongs to the week that started six days earlier.
package week

import "time"

// Start returns the most recent Monday at midnight relative to t.
func Start(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())

	offset := int(midnight.Weekday())
	if offset == 0 {
		offset = 7 // Sunday is day 7 of the week, not day 0
	}

	return midnight.AddDate(0, 0, 1-offset)
}

// End returns the Sunday 23:59:59.999 that closes the week containing t.
func End(t time.Time) time.Time {
	sunday := Start(t).AddDate(0, 0, 6)
	return time.Date(
		sunday.Year(), sunday.Month(), sunday.Day(),
		23, 59, 59, int(999*time.Millisecond),
		sunday.Location(),
	)
}

// Window returns both bounds of the week containing t.
func Window(t time.Time) (start, end time.Time) {
	return Start(t), End(t)
}
