package schedule

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidDraft = errors.New("invalid schedule entry")

var validate = validator.New(validator.WithRequiredStructEnabled())

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays is the grid order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	return slices.Contains(Weekdays, d)
}

func (d Weekday) index() int {
	return slices.Index(Weekdays, d)
}

// WeekdayOf maps a time.Weekday onto the grid's names.
func WeekdayOf(t time.Time) Weekday {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return Weekdays[int(t.Weekday())-1]
}

type Entry struct {
	ID    string  `json:"id"`
	Day   Weekday `json:"day"`
	Time  string  `json:"time"`
	Place string  `json:"place"`
	Task  string  `json:"task"`
}

type Draft struct {
	Day   Weekday `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Time  string  `json:"time" validate:"required,datetime=15:04"`
	Place string  `json:"place" validate:"max=120"`
	Task  string  `json:"task" validate:"required,max=200"`
}

func New(d Draft) (Entry, error) {
	d.Day = Weekday(strings.ToLower(strings.TrimSpace(string(d.Day))))
	d.Time = strings.TrimSpace(d.Time)
	d.Place = strings.TrimSpace(d.Place)
	d.Task = strings.TrimSpace(d.Task)
	if err := validate.Struct(d); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return Entry{
		ID:    uuid.NewString(),
		Day:   d.Day,
		Time:  d.Time,
		Place: d.Place,
		Task:  d.Task,
	}, nil
}

func validTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Normalize repairs a loaded entry. It reports false when the entry cannot be
// placed on the grid and should be dropped.
func Normalize(e *Entry) bool {
	e.Day = Weekday(strings.ToLower(strings.TrimSpace(string(e.Day))))
	e.Time = strings.TrimSpace(e.Time)
	if !e.Day.Valid() || !validTime(e.Time) {
		return false
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Place = strings.TrimSpace(e.Place)
	e.Task = strings.TrimSpace(e.Task)
	return true
}

// Sort orders entries by weekday, then time of day.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day != b.Day {
			return a.Day.index() < b.Day.index()
		}
		return a.Time < b.Time
	})
}

// Grid groups entries per weekday; every weekday is present.
func Grid(entries []Entry) map[Weekday][]Entry {
	sorted := append([]Entry{}, entries...)
	Sort(sorted)
	out := make(map[Weekday][]Entry, len(Weekdays))
	for _, d := range Weekdays {
		out[d] = []Entry{}
	}
	for _, e := range sorted {
		out[e.Day] = append(out[e.Day], e)
	}
	return out
}

func Find(entries []Entry, id string) (int, bool) {
	for i := range entries {
		if entries[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
