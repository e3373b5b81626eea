package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday.
var now = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

func TestNew_FillsDefaults(t *testing.T) {
	tk, err := New(Draft{Title: "  water plants ", Type: TypeDaily}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "water plants", tk.Title)
	assert.Equal(t, PriorityMedium, tk.Priority)
	assert.NotNil(t, tk.Tags)
	assert.Empty(t, tk.Tags)
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)
	assert.Equal(t, now, tk.CreatedAt)
	assert.Equal(t, time.Date(2026, 10, 15, 23, 59, 59, 0, time.UTC), tk.DueDate)
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		tk, err := New(Draft{Title: "x", Type: TypeDaily}, now)
		require.NoError(t, err)
		assert.False(t, seen[tk.ID])
		seen[tk.ID] = true
	}
}

func TestNew_RejectsInvalidDrafts(t *testing.T) {
	cases := map[string]Draft{
		"blank title":   {Title: "   ", Type: TypeDaily},
		"unknown type":  {Title: "a", Type: "hourly"},
		"bad priority":  {Title: "a", Type: TypeDaily, Priority: "urgent"},
		"too many tags": {Title: "a", Type: TypeDaily, Tags: []string{"1", "2", "3", "4", "5", "6", "7"}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(d, now)
			assert.True(t, errors.Is(err, ErrInvalidDraft), "got %v", err)
		})
	}
}

func TestDueDateFor(t *testing.T) {
	assert.Equal(t, time.Date(2026, 10, 15, 23, 59, 59, 0, time.UTC), DueDateFor(TypeDaily, now))
	assert.Equal(t, time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC), DueDateFor(TypeWeekly, now))
	assert.Equal(t, time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC), DueDateFor(TypeMonthly, now))
	assert.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), DueDateFor(TypeYearly, now))

	sunday := time.Date(2026, 10, 11, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 11, 23, 59, 59, 0, time.UTC), DueDateFor(TypeWeekly, sunday))

	feb := time.Date(2028, 2, 3, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2028, 2, 29, 23, 59, 59, 0, time.UTC), DueDateFor(TypeMonthly, feb))
}

func TestToggle_KeepsCompletedAtInvariant(t *testing.T) {
	tk, err := New(Draft{Title: "a", Type: TypeDaily}, now)
	require.NoError(t, err)

	tk.Toggle(now.Add(time.Hour))
	assert.True(t, tk.Completed)
	require.NotNil(t, tk.CompletedAt)
	assert.Equal(t, now.Add(time.Hour), *tk.CompletedAt)

	tk.Toggle(now.Add(2 * time.Hour))
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)
}

func TestSetType_RecomputesDueDateFromCreation(t *testing.T) {
	tk, err := New(Draft{Title: "a", Type: TypeDaily}, now)
	require.NoError(t, err)

	tk.SetType(TypeMonthly, time.UTC)
	assert.Equal(t, TypeMonthly, tk.Type)
	assert.Equal(t, time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC), tk.DueDate)
}

func TestSetType_UsesCalendarDayOfLocation(t *testing.T) {
	ny := time.FixedZone("EDT", -4*60*60)
	// 02:00 UTC on the 15th is still the evening of the 14th in New York.
	tk := Task{ID: "a", Type: TypeWeekly, CreatedAt: time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)}

	tk.SetType(TypeDaily, ny)
	assert.True(t, time.Date(2026, 10, 14, 23, 59, 59, 0, ny).Equal(tk.DueDate), "got %v", tk.DueDate)

	tk.SetType(TypeMonthly, time.UTC)
	assert.True(t, time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC).Equal(tk.DueDate), "got %v", tk.DueDate)
}

func TestNormalize_DueDateInLocationOfNow(t *testing.T) {
	ny := time.FixedZone("EDT", -4*60*60)
	tk := Task{ID: "a", Type: TypeDaily, CreatedAt: time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)}

	Normalize(&tk, now.In(ny))
	assert.True(t, time.Date(2026, 10, 14, 23, 59, 59, 0, ny).Equal(tk.DueDate), "got %v", tk.DueDate)
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{" #home", "home", "", "work", "a", "b", "c", "d", "e"})
	assert.Equal(t, []string{"home", "work", "a", "b", "c", "d"}, got)
	assert.NotNil(t, CleanTags(nil))
}

func TestNormalize_RepairsLoadedTask(t *testing.T) {
	tk := Task{Title: " legacy ", Type: "weird", Completed: true}
	Normalize(&tk, now)

	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "legacy", tk.Title)
	assert.Equal(t, TypeDaily, tk.Type)
	assert.Equal(t, PriorityMedium, tk.Priority)
	assert.NotNil(t, tk.Tags)
	assert.Equal(t, now, tk.CreatedAt)
	require.NotNil(t, tk.CompletedAt)
	assert.Equal(t, tk.CreatedAt, *tk.CompletedAt)

	at := now
	pending := Task{ID: "p", Type: TypeWeekly, CreatedAt: now, CompletedAt: &at}
	Normalize(&pending, now)
	assert.Nil(t, pending.CompletedAt)
	assert.Equal(t, DueDateFor(TypeWeekly, now), pending.DueDate)
}

func TestPatch_ApplyAndValidate(t *testing.T) {
	tk, err := New(Draft{Title: "a", Type: TypeDaily, Tags: []string{"x"}}, now)
	require.NoError(t, err)

	title := "renamed"
	typ := TypeYearly
	prio := PriorityHigh
	tags := []string{"y", "y", "z"}
	p := Patch{Title: &title, Type: &typ, Priority: &prio, Tags: &tags}
	require.NoError(t, p.Validate())

	tk.Apply(p, time.UTC)
	assert.Equal(t, "renamed", tk.Title)
	assert.Equal(t, TypeYearly, tk.Type)
	assert.Equal(t, time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), tk.DueDate)
	assert.Equal(t, PriorityHigh, tk.Priority)
	assert.Equal(t, []string{"y", "z"}, tk.Tags)

	blank := " "
	assert.ErrorIs(t, Patch{Title: &blank}.Validate(), ErrInvalidDraft)
	bad := Type("hourly")
	assert.ErrorIs(t, Patch{Type: &bad}.Validate(), ErrInvalidDraft)
	assert.True(t, Patch{}.Empty())
}

func TestList_FiltersAndSorts(t *testing.T) {
	mk := func(title string, typ Type, prio Priority, tags ...string) Task {
		tk, err := New(Draft{Title: title, Type: typ, Priority: prio, Tags: tags}, now)
		require.NoError(t, err)
		return tk
	}
	yearly := mk("Read a book", TypeYearly, PriorityLow, "reading")
	daily := mk("Stretch", TypeDaily, PriorityLow)
	dailyHigh := mk("Pay rent", TypeDaily, PriorityHigh, "money")
	weekly := mk("Laundry", TypeWeekly, PriorityMedium, "home")
	weekly.Toggle(now)

	all := []Task{yearly, daily, dailyHigh, weekly}

	got := List(all, Filter{})
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Pay rent", "Stretch", "Laundry", "Read a book"}, titles(got))

	assert.Equal(t, []string{"Laundry"}, titles(List(all, Filter{Status: "done"})))
	assert.Equal(t, []string{"Pay rent", "Stretch"}, titles(List(all, Filter{Type: "daily"})))
	assert.Equal(t, []string{"Read a book"}, titles(List(all, Filter{Query: "READ"})))
	assert.Equal(t, []string{"Pay rent"}, titles(List(all, Filter{Query: "mon"})))
	assert.Equal(t, []string{"Laundry"}, titles(List(all, Filter{Tag: "#home"})))
	assert.Equal(t, []string{"Pay rent"}, titles(List(all, Filter{Priority: "high"})))
}

func titles(ts []Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return out
}
