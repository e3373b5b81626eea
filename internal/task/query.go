package task

import (
	"sort"
	"strings"
)

type Filter struct {
	// Query matches title and tags, case-insensitive.
	Query string

	// Type:
	//   "" | "all" | "daily" | "weekly" | "monthly" | "yearly"
	Type string

	// Status:
	//   "" | "all" | "pending" | "done"
	Status string

	// Priority:
	//   "" | "all" | "high" | "medium" | "low"
	Priority string

	// Tag is an exact tag match; "" means any.
	Tag string
}

func (f Filter) matches(t Task) bool {
	switch typ := strings.ToLower(strings.TrimSpace(f.Type)); typ {
	case "", "all":
	default:
		if string(t.Type) != typ {
			return false
		}
	}

	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "pending":
		if t.Completed {
			return false
		}
	case "done":
		if !t.Completed {
			return false
		}
	default:
		// unknown => treat as "all"
	}

	switch p := strings.ToLower(strings.TrimSpace(f.Priority)); p {
	case "", "all":
	default:
		if string(t.Priority) != p {
			return false
		}
	}

	if tag := cleanTag(f.Tag); tag != "" && !t.HasTag(tag) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// List returns copies of the tasks matching f.
// Sort: due soonest first, then priority (high first), then newest.
func List(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t) {
			out = append(out, t.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case !a.DueDate.Equal(b.DueDate):
			return a.DueDate.Before(b.DueDate)
		case a.Priority.rank() != b.Priority.rank():
			return a.Priority.rank() < b.Priority.rank()
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return out
}

func Find(tasks []Task, id string) (int, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func Completed(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
