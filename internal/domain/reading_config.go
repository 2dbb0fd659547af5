package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ReadingConfig describes one reading method. All fields are prompt text;
// the leading token of Method doubles as the card count.
type ReadingConfig struct {
	Method       string `json:"method" yaml:"method"`
	Rule         string `json:"rule" yaml:"rule"`
	OutputFormat string `json:"output_format" yaml:"output_format"`
}

// CardCount parses the leading whitespace-delimited token of Method.
func (c ReadingConfig) CardCount() (int, error) {
	fields := strings.Fields(c.Method)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty method", ErrInvalidMethod)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, c.Method)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, c.Method)
	}
	return n, nil
}

// Registry maps config keys to reading configs. It is never mutated after construction.
type Registry struct {
	configs map[string]ReadingConfig
}

func NewRegistry(configs map[string]ReadingConfig) Registry {
	m := make(map[string]ReadingConfig, len(configs))
	for k, v := range configs {
		m[k] = v
	}
	return Registry{configs: m}
}

func (r Registry) Lookup(key string) (ReadingConfig, error) {
	cfg, ok := r.configs[key]
	if !ok {
		return ReadingConfig{}, fmt.Errorf("%w: %s", ErrUnknownConfig, key)
	}
	return cfg, nil
}

// Keys returns the configured keys in sorted order.
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r.configs))
	for k := range r.configs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
