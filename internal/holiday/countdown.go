// Package holiday computes the time remaining until Christmas.
package holiday

import "time"

// TimeLeft is a countdown broken into display units
type TimeLeft struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// NextChristmas returns midnight of the next December 25th in now's location.
// On Christmas Day itself the following year's date is returned.
func NextChristmas(now time.Time) time.Time {
	christmas := time.Date(now.Year(), time.December, 25, 0, 0, 0, 0, now.Location())
	if !now.Before(christmas) {
		christmas = christmas.AddDate(1, 0, 0)
	}
	return christmas
}

// Countdown returns the time left until the next Christmas
func Countdown(now time.Time) TimeLeft {
	d := NextChristmas(now).Sub(now)
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)
	return TimeLeft{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
