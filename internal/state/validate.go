package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidImport = errors.New("invalid import")

// ValidateImport checks the top-level shape of an import document. It does
// not repair anything; an accepted document is normalized on replacement.
func ValidateImport(raw []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", ErrInvalidImport, err)
	}

	checks := []struct {
		key  string
		want jsonKind
	}{
		{"tasks", kindArray},
		{"schedule", kindArray},
		{"pomodoro", kindObject},
		{"achievements", kindObject},
		{"modules", kindObject},
		{"xp", kindObject},
	}
	for _, c := range checks {
		if got := kindOf(doc[c.key]); got != c.want {
			return fmt.Errorf("%w: %s must be %s, got %s", ErrInvalidImport, c.key, c.want, got)
		}
	}

	var achievements struct {
		Unlocked json.RawMessage `json:"unlocked"`
	}
	_ = json.Unmarshal(doc["achievements"], &achievements)
	if got := kindOf(achievements.Unlocked); got != kindArray {
		return fmt.Errorf("%w: achievements.unlocked must be an array, got %s", ErrInvalidImport, got)
	}

	var xpSection struct {
		Total json.RawMessage `json:"total"`
	}
	_ = json.Unmarshal(doc["xp"], &xpSection)
	if got := kindOf(xpSection.Total); got != kindNumber {
		return fmt.Errorf("%w: xp.total must be a number, got %s", ErrInvalidImport, got)
	}
	return nil
}
