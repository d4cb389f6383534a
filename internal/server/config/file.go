package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// loadFile overlays values from a JSON or YAML file (picked by extension).
// Keys missing from the file keep their current values; an empty path is a
// no-op.
func loadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
