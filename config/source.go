package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigSource is one layer of configuration.
// Load returns a flat map keyed by dot-separated paths ("event.pool_size").
type ConfigSource interface {
	Name() string
	// Priority: higher overrides lower (defaults 1, file 10, env file 20, env vars 50)
	Priority() int
	Load() (map[string]any, error)
}

// FileSource reads any format viper understands (yaml, json, toml)
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file source; a missing file loads as empty
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Priority() int { return s.priority }

func (s *FileSource) Load() (map[string]any, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	return flattenMap("", v.AllSettings()), nil
}

// EnvSource maps PREFIX_SECTION__KEY=value to section.key.
// A double underscore separates levels so keys may keep single underscores:
// APP_EVENT__POOL_SIZE=8 sets event.pool_size.
type EnvSource struct {
	prefix   string
	priority int
}

// NewEnvSource creates an environment source; an empty prefix loads nothing
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority}
}

func (s *EnvSource) Name() string { return "env:" + s.prefix }

func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		path := strings.ToLower(strings.TrimPrefix(key, prefix))
		path = strings.ReplaceAll(path, "__", ".")
		if path != "" {
			result[path] = value
		}
	}
	return result, nil
}

// MapSource serves fixed values; used for defaults and tests
type MapSource struct {
	name     string
	priority int
	values   map[string]any
}

// NewMapSource flattens values so nested maps and dotted keys both work
func NewMapSource(name string, priority int, values map[string]any) *MapSource {
	return &MapSource{name: name, priority: priority, values: flattenMap("", values)}
}

func (s *MapSource) Name() string { return "map:" + s.name }

func (s *MapSource) Priority() int { return s.priority }

func (s *MapSource) Load() (map[string]any, error) {
	return flattenMap("", s.values), nil
}

func flattenMap(prefix string, data map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range data {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(full, nested) {
				result[k] = v
			}
			continue
		}
		result[full] = value
	}
	return result
}
