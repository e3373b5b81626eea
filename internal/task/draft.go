package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidDraft = errors.New("invalid task")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Draft is user input for a new task.
type Draft struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Type     Type     `json:"type" validate:"required,oneof=daily weekly monthly yearly"`
	Priority Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
	Tags     []string `json:"tags" validate:"max=6,dive,max=32"`
}

// Validate returns the trimmed draft or an error wrapping ErrInvalidDraft.
func (d Draft) Validate() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if err := validate.Struct(d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return d, nil
}

// Patch represents a partial edit.
// nil pointer => "no change"
type Patch struct {
	Title    *string   `json:"title,omitempty"`
	Type     *Type     `json:"type,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Type == nil && p.Priority == nil && p.Tags == nil
}

func (p Patch) Validate() error {
	if p.Title != nil {
		if err := validate.Var(strings.TrimSpace(*p.Title), "required,max=200"); err != nil {
			return fmt.Errorf("%w: title: %v", ErrInvalidDraft, err)
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDraft, *p.Type)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidDraft, *p.Priority)
	}
	if p.Tags != nil {
		if err := validate.Var(*p.Tags, "max=6,dive,max=32"); err != nil {
			return fmt.Errorf("%w: tags: %v", ErrInvalidDraft, err)
		}
	}
	return nil
}

// Apply writes the non-nil fields of p onto t. Callers validate first. A new
// type re-derives the due date in loc.
func (t *Task) Apply(p Patch, loc *time.Location) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Type != nil {
		t.SetType(*p.Type, loc)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		// treat nil slice as empty slice
		t.Tags = CleanTags(*p.Tags)
	}
}
