package task

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"safetasks/internal/clock"
)

type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeYearly  Type = "yearly"
)

var Types = []Type{TypeDaily, TypeWeekly, TypeMonthly, TypeYearly}

func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// rank orders priorities high first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

const MaxTags = 6

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        Type       `json:"type"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     time.Time  `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
}

func NewID() string {
	return uuid.NewString()
}

// New builds a pending task from a validated draft.
func New(d Draft, now time.Time) (Task, error) {
	d, err := d.Validate()
	if err != nil {
		return Task{}, err
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return Task{
		ID:        NewID(),
		Title:     d.Title,
		Type:      d.Type,
		CreatedAt: now,
		DueDate:   DueDateFor(d.Type, now),
		Priority:  d.Priority,
		Tags:      CleanTags(d.Tags),
	}, nil
}

// DueDateFor returns the end of the day, week (Sunday), month or year that
// contains from.
func DueDateFor(t Type, from time.Time) time.Time {
	switch t {
	case TypeDaily:
		return clock.EndOfDay(from)
	case TypeWeekly:
		day := int(from.Weekday())
		if day == 0 {
			day = 7
		}
		return clock.EndOfDay(from.AddDate(0, 0, 7-day))
	case TypeMonthly:
		y, m, _ := from.Date()
		return time.Date(y, m+1, 0, 23, 59, 59, 0, from.Location())
	default:
		return time.Date(from.Year(), time.December, 31, 23, 59, 59, 0, from.Location())
	}
}

func (t *Task) Toggle(now time.Time) {
	t.Completed = !t.Completed
	if t.Completed {
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

// SetType changes the cadence and re-derives the due date from the creation
// time, read as a calendar date in loc.
func (t *Task) SetType(typ Type, loc *time.Location) {
	if t.Type == typ {
		return
	}
	t.Type = typ
	t.DueDate = DueDateFor(typ, t.CreatedAt.In(loc))
}

func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

func (t *Task) AddTag(tag string) {
	tag = cleanTag(tag)
	if tag == "" || t.HasTag(tag) || len(t.Tags) >= MaxTags {
		return
	}
	t.Tags = append(t.Tags, tag)
}

func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && now.After(t.DueDate)
}

func (t Task) Clone() Task {
	out := t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	out.Tags = append([]string{}, t.Tags...)
	return out
}

func cleanTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "#")
}

// CleanTags trims, de-duplicates and caps tags. The result is never nil.
func CleanTags(tags []string) []string {
	out := make([]string, 0, min(len(tags), MaxTags))
	for _, tag := range tags {
		tag = cleanTag(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// Normalize repairs a loaded task in place so it satisfies every task invariant.
func Normalize(t *Task, now time.Time) {
	t.Title = strings.TrimSpace(t.Title)
	if t.ID == "" {
		t.ID = NewID()
	}
	if !t.Type.Valid() {
		t.Type = TypeDaily
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	t.Tags = CleanTags(t.Tags)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.DueDate.IsZero() {
		t.DueDate = DueDateFor(t.Type, t.CreatedAt.In(now.Location()))
	}
	switch {
	case t.Completed && t.CompletedAt == nil:
		at := t.CreatedAt
		t.CompletedAt = &at
	case !t.Completed && t.CompletedAt != nil:
		t.CompletedAt = nil
	}
}
