package mealplan

import "time"

// Week keys are calendar-anchored: the canonical key for a week is the ISO
// date of its Monday. Symbolic labels ("This Week", "Next Week") are derived
// for display only and never stored.
const weekKeyLayout = "2006-01-02"

// Days lists the day-of-week slot keys in plan order.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekStart returns the canonical week key for t: the ISO date of the most
// recent Monday on or before t, in t's location.
func WeekStart(t time.Time) string {
	return mondayOf(t).Format(weekKeyLayout)
}

// NextWeekStart returns the canonical key for the week after t's week.
func NextWeekStart(t time.Time) string {
	return mondayOf(t).AddDate(0, 0, 7).Format(weekKeyLayout)
}

// WeekLabel renders the display label for a week key relative to now.
func WeekLabel(key string, now time.Time) string {
	switch key {
	case WeekStart(now):
		return "This Week"
	case NextWeekStart(now):
		return "Next Week"
	}
	return key
}

// IsDay reports whether name is a valid day slot key.
func IsDay(name string) bool {
	for _, d := range Days {
		if d == name {
			return true
		}
	}
	return false
}

func mondayOf(t time.Time) time.Time {
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
