package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// applyEnv overrides fields whose env variable is set. Unset variables keep
// the file value.
func applyEnv(c *Config) error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}
