package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// envKey is the reserved top-level key holding environment variables to
// export; it never maps to an argument field.
const envKey = "env"

// FileConfig is the raw key-value mapping loaded from a YAML config file.
type FileConfig struct {
	values map[string]any
}

// Load reads and parses the YAML file at path. An empty path yields an empty
// config, so callers can merge unconditionally.
func Load(path string) (*FileConfig, error) {
	cfg := &FileConfig{values: map[string]any{}}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg.values); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if cfg.values == nil {
		cfg.values = map[string]any{}
	}
	return cfg, nil
}

// Len reports the number of top-level keys in the file.
func (c *FileConfig) Len() int {
	return len(c.values)
}

// Has reports whether the file declares the given top-level key.
func (c *FileConfig) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// ApplyEnv exports the file's `env` mapping into the process environment.
// Values are stringified. A non-mapping `env` value aborts with
// ErrEnvNotMapping.
func (c *FileConfig) ApplyEnv() error {
	raw, ok := c.values[envKey]
	if !ok {
		return nil
	}

	env, ok := raw.(map[string]any)
	if !ok {
		return ErrEnvNotMapping
	}
	for name, value := range env {
		if err := os.Setenv(name, fmt.Sprintf("%v", value)); err != nil {
			return fmt.Errorf("set env %s: %w", name, err)
		}
	}
	return nil
}

// ArgString renders the file's keys as a single `--key value` command-line
// string. Mappings and lists are JSON-encoded and single-quoted, empty
// collections are skipped, and keys are emitted in sorted order. The `env`
// mapping is excluded.
func (c *FileConfig) ArgString() string {
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		if key == envKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value, ok := renderValue(c.values[key])
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "--%s %s", key, value)
	}
	return b.String()
}

// renderValue formats a single config value for the command line. The second
// return value is false when the value should be skipped entirely.
func renderValue(value any) (string, bool) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			return "", false
		}
		return quoteJSON(v)
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return quoteJSON(v)
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func quoteJSON(value any) (string, bool) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return "'" + string(encoded) + "'", true
}
