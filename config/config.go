// Package config loads client settings and named response mappers from a
// YAML, TOML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/denysbsb/reqflow"
	"github.com/denysbsb/reqflow/mapping"
)

// Config holds client parameters and mapper definitions.
// Zero values mean "unspecified" and leave the client defaults alone.
type Config struct {
	Timeout       Duration                   `json:"timeout" yaml:"timeout" toml:"timeout"`
	Headers       map[string]string          `json:"headers" yaml:"headers" toml:"headers"`
	SuccessStatus []int                      `json:"success_status" yaml:"success_status" toml:"success_status"`
	Debug         bool                       `json:"debug" yaml:"debug" toml:"debug"`
	Mappers       map[string]map[string]Rule `json:"mappers" yaml:"mappers" toml:"mappers"`
}

// Rule is the file form of mapping.Rule. Type names a constructor in the
// Types table passed to Mapper; empty means the plain value.
type Rule struct {
	Path  string        `json:"path" yaml:"path" toml:"path"`
	Shape mapping.Shape `json:"shape" yaml:"shape" toml:"shape"`
	Type  string        `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}

// Types maps the type names used in Rule.Type to constructors.
type Types map[string]mapping.Constructor

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b, filepath.Ext(path))
}

// Parse decodes b in the given format: a file extension with or without
// the dot ("yaml", ".toml", "json").
func Parse(b []byte, format string) (Config, error) {
	var cfg Config
	switch ext := strings.ToLower(strings.TrimPrefix(format, ".")); ext {
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case "toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", format)
	}
	return cfg, nil
}

// ClientOptions converts the settings into client options. logger is used
// when Debug is set; nil falls back to the simple console logger.
func (c Config) ClientOptions(logger reqflow.Logger) []reqflow.Option {
	var opts []reqflow.Option
	if c.Timeout > 0 {
		opts = append(opts, reqflow.WithTimeout(time.Duration(c.Timeout)))
	}
	if len(c.Headers) > 0 {
		headers := http.Header{}
		for k, v := range c.Headers {
			headers.Set(k, v)
		}
		opts = append(opts, reqflow.WithDefaultHeaders(headers))
	}
	if len(c.SuccessStatus) > 0 {
		allowed := make(map[int]bool, len(c.SuccessStatus))
		for _, s := range c.SuccessStatus {
			allowed[s] = true
		}
		opts = append(opts, reqflow.WithSuccessCondition(func(status int) bool {
			return allowed[status]
		}))
	}
	if c.Debug {
		if logger == nil {
			logger = reqflow.NewSimpleLogger()
		}
		opts = append(opts, reqflow.WithDebug(), reqflow.WithLogger(logger))
	}
	return opts
}

// MapperNames returns the configured mapper names, sorted.
func (c Config) MapperNames() []string {
	names := make([]string, 0, len(c.Mappers))
	for name := range c.Mappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mapper compiles the mapper called name.
func (c Config) Mapper(name string, types Types) (*mapping.Mapper, error) {
	rules, ok := c.Mappers[name]
	if !ok {
		return nil, fmt.Errorf("unknown mapper %q", name)
	}

	spec := make(mapping.Spec, len(rules))
	for key, r := range rules {
		rule := mapping.Rule{Path: r.Path, Shape: r.Shape}
		if r.Type != "" {
			ctor, ok := types[r.Type]
			if !ok {
				return nil, &mapping.ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown type %q", r.Type)}
			}
			rule.New = ctor
		}
		spec[key] = rule
	}

	m, err := mapping.New(spec)
	if err != nil {
		return nil, fmt.Errorf("mapper %q: %w", name, err)
	}
	return m, nil
}
