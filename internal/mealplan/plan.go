package mealplan

// Assignments maps week key -> day -> recipe ID. A missing day means no meal
// is planned for that slot.
type Assignments map[string]map[string]string

// Preferences holds per-owner planner display settings persisted alongside
// the assignments.
type Preferences struct {
	ShowWeekends bool `json:"show_weekends"`
}

// Snapshot is the persisted shape of an owner's meal-plan settings.
type Snapshot struct {
	Assignments Assignments `json:"assignments"`
	Preferences Preferences `json:"preferences"`
}

// NewSnapshot returns an empty snapshot with defaults applied.
func NewSnapshot() Snapshot {
	return Snapshot{
		Assignments: Assignments{},
		Preferences: Preferences{ShowWeekends: true},
	}
}

// Week returns the day->recipe assignments for one week. The result is a
// copy; mutating it does not affect the snapshot.
func (s Snapshot) Week(weekKey string) map[string]string {
	out := make(map[string]string, len(s.Assignments[weekKey]))
	for day, ref := range s.Assignments[weekKey] {
		out[day] = ref
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Assignments: make(Assignments, len(s.Assignments)),
		Preferences: s.Preferences,
	}
	for week := range s.Assignments {
		out.Assignments[week] = s.Week(week)
	}
	return out
}
