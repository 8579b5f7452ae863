package settings

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. ATCMACRO_POCKETS=4.
const EnvPrefix = "ATCMACRO"

// LoadFile reads a YAML, JSON or TOML settings file, applies environment
// overrides and normalizes the result. An empty path normalizes the
// environment alone.
func LoadFile(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, errors.Wrapf(err, "bind env for %s", key)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext == "yml" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.WithHint(
				errors.Wrapf(err, "read settings %s", path),
				"settings files may be .yaml, .json or .toml")
		}
	}

	raw := v.AllSettings()
	for _, key := range Keys {
		if val := v.Get(key); val != nil {
			raw[strings.ToLower(key)] = val
		}
	}
	return Normalize(raw), nil
}

// LoadRawFile decodes a settings file without normalizing it, preserving key
// case. JSON files decode through the YAML decoder.
func LoadRawFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open settings")
	}
	defer f.Close()
	return LoadRaw(f)
}

// LoadRaw decodes a settings object from a reader.
func LoadRaw(r io.Reader) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, errors.Wrap(err, "structural decode")
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// ValidateFile decodes a settings file and validates it against the schema.
func ValidateFile(path string) (map[string]any, []*ValidationError) {
	raw, err := LoadRawFile(path)
	if err != nil {
		return nil, []*ValidationError{errorf("structural", "", "failed to load: %s", err)}
	}
	return raw, Validate(raw)
}
