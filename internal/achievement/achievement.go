package achievement

import "slices"

// Facts is the read-only view of state that unlock rules are evaluated against.
type Facts struct {
	Tasks         int
	Completed     int
	Streak        int
	XP            int
	Level         int
	FinishedFocus int
	Schedule      int
}

type Rule func(Facts) bool

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rule        Rule   `json:"-"`
}

const (
	FirstTask  = "first_task"
	ThreeDone  = "three_done"
	TenDone    = "ten_done"
	Streak3    = "streak_3"
	Level1     = "level_1"
	FocusFirst = "focus_first"
	Planner    = "planner"
)

// Catalog is evaluated and displayed in this order.
var Catalog = []Achievement{
	{
		ID:          FirstTask,
		Title:       "First Step",
		Description: "Create your first task.",
		Rule:        func(f Facts) bool { return f.Tasks >= 1 },
	},
	{
		ID:          ThreeDone,
		Title:       "Triumph 3",
		Description: "Complete 3 tasks.",
		Rule:        func(f Facts) bool { return f.Completed >= 3 },
	},
	{
		ID:          TenDone,
		Title:       "Neon Rush",
		Description: "Complete 10 tasks.",
		Rule:        func(f Facts) bool { return f.Completed >= 10 },
	},
	{
		ID:          Streak3,
		Title:       "Streak 3",
		Description: "Keep a 3-day streak.",
		Rule:        func(f Facts) bool { return f.Streak >= 3 },
	},
	{
		ID:          Level1,
		Title:       "Level Up",
		Description: "Reach level 1.",
		Rule:        func(f Facts) bool { return f.Level >= 1 },
	},
	{
		ID:          FocusFirst,
		Title:       "Deep Focus",
		Description: "Finish a full focus session.",
		Rule:        func(f Facts) bool { return f.FinishedFocus >= 1 },
	},
	{
		ID:          Planner,
		Title:       "Planner",
		Description: "Fill 5 slots in the schedule.",
		Rule:        func(f Facts) bool { return f.Schedule >= 5 },
	},
}

// Evaluate appends every newly satisfied id in catalog order. Ids are never
// removed, even when their rule no longer holds.
func Evaluate(unlocked []string, f Facts) []string {
	out := append([]string{}, unlocked...)
	for _, a := range Catalog {
		if slices.Contains(out, a.ID) {
			continue
		}
		if a.Rule(f) {
			out = append(out, a.ID)
		}
	}
	return out
}

// Newly returns the ids present in next but not in prev.
func Newly(prev, next []string) []string {
	var out []string
	for _, id := range next {
		if !slices.Contains(prev, id) {
			out = append(out, id)
		}
	}
	return out
}

type Status struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

// Board lists the catalog in catalog order with unlock flags, independent of
// the order ids were unlocked in.
func Board(unlocked []string) []Status {
	out := make([]Status, 0, len(Catalog))
	for _, a := range Catalog {
		out = append(out, Status{Achievement: a, Unlocked: slices.Contains(unlocked, a.ID)})
	}
	return out
}

func Lookup(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
