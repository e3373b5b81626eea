package state

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"safetasks/internal/schedule"
	"safetasks/internal/task"
	"safetasks/internal/xp"
)

// Normalize turns any payload into a valid State. It never fails: whatever
// cannot be read falls back to defaults, section by section.
func Normalize(raw []byte, now time.Time) State {
	s, _ := decode(raw, now)
	return s
}

// decode is Normalize that also reports why the document as a whole was
// unreadable, for the caller to log.
func decode(raw []byte, now time.Time) (State, error) {
	s := Default()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		NormalizeState(&s, now)
		return s, err
	}

	s.Tasks = decodeElements[task.Task](doc["tasks"])
	s.Schedule = decodeElements[schedule.Entry](doc["schedule"])
	decodeSection(doc["achievements"], &s.Achievements)
	decodeSection(doc["pomodoro"], &s.Pomodoro)
	decodeSection(doc["modules"], &s.Modules)
	decodeSection(doc["ui"], &s.UI)
	decodeSection(doc["filters"], &s.Filters)

	total, ok := decodeXP(doc["xp"])
	NormalizeState(&s, now)
	if ok {
		s.XP.Total = total
	} else {
		s.XP.Total = xp.FromTasks(s.Tasks)
	}
	return s, nil
}

// decodeSection merges raw onto the defaults already in dst. Fields of the
// wrong type keep their defaults; the rest of the section still applies.
func decodeSection[T any](raw json.RawMessage, dst *T) {
	if kindOf(raw) != kindObject {
		return
	}
	next := *dst
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(raw, &next); err != nil && !errors.As(err, &typeErr) {
		return
	}
	*dst = next
}

// decodeElements decodes each object in a JSON array. A field of the wrong
// type keeps its zero value for Normalize to back-fill; non-objects and
// values that cannot be parsed at all, like a malformed timestamp, are skipped.
func decodeElements[T any](raw json.RawMessage) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []T{}
	}
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		if kindOf(e) != kindObject {
			continue
		}
		var v T
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(e, &v); err != nil && !errors.As(err, &typeErr) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeXP reports whether the payload carried a usable xp.total.
func decodeXP(raw json.RawMessage) (int, bool) {
	if kindOf(raw) != kindObject {
		return 0, false
	}
	var section struct {
		Total json.RawMessage `json:"total"`
	}
	if err := json.Unmarshal(raw, &section); err != nil || kindOf(section.Total) != kindNumber {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(section.Total, &f); err != nil {
		return 0, false
	}
	return clampXP(f), true
}

func clampXP(f float64) int {
	f = math.Trunc(f)
	switch {
	case f <= 0:
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	default:
		return int(f)
	}
}

// NormalizeState repairs an already typed State in place. The Store runs it
// after every updater.
func NormalizeState(s *State, now time.Time) {
	tasks := make([]task.Task, 0, len(s.Tasks))
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		task.Normalize(&t, now)
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	s.Tasks = tasks

	entries := make([]schedule.Entry, 0, len(s.Schedule))
	seen = make(map[string]bool, len(s.Schedule))
	for _, e := range s.Schedule {
		if !schedule.Normalize(&e) || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	s.Schedule = entries

	unlocked := make([]string, 0, len(s.Achievements.Unlocked))
	seen = make(map[string]bool, len(s.Achievements.Unlocked))
	for _, id := range s.Achievements.Unlocked {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unlocked = append(unlocked, id)
	}
	s.Achievements.Unlocked = unlocked

	s.Pomodoro = s.Pomodoro.Normalize()

	if s.XP.Total < 0 {
		s.XP.Total = 0
	}

	if !s.UI.Theme.Valid() {
		s.UI.Theme = ThemeDark
	}

	s.Filters.Search = strings.TrimSpace(s.Filters.Search)
	s.Filters.Type = normalizeChoice(s.Filters.Type, "daily", "weekly", "monthly", "yearly")
	s.Filters.Status = normalizeChoice(s.Filters.Status, "pending", "done")
}

func normalizeChoice(v string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return "all"
}

type jsonKind int

const (
	kindMissing jsonKind = iota
	kindNull
	kindObject
	kindArray
	kindString
	kindNumber
	kindBool
)

func kindOf(raw json.RawMessage) jsonKind {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return kindMissing
	}
	switch s[0] {
	case '{':
		return kindObject
	case '[':
		return kindArray
	case '"':
		return kindString
	case 't', 'f':
		return kindBool
	case 'n':
		return kindNull
	default:
		return kindNumber
	}
}

func (k jsonKind) String() string {
	switch k {
	case kindMissing:
		return "missing"
	case kindNull:
		return "null"
	case kindObject:
		return "an object"
	case kindArray:
		return "an array"
	case kindString:
		return "a string"
	case kindNumber:
		return "a number"
	default:
		return "a boolean"
	}
}
