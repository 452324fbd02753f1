package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/felixgeelhaar/lintgate/internal/errors"
)

// EnvPrefix is the prefix for environment overrides. Nested keys use a
// double underscore (LINTGATE_CACHE__ENABLED=true); fail_on and
// mandatory_tools take comma-separated lists.
const EnvPrefix = "LINTGATE_"

// Load assembles the configuration: built-in defaults, then the config
// file, then LINTGATE_* environment overrides. An empty path means the
// default location; a missing default file is fine, a missing explicit
// file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to load built-in defaults", err)
	}

	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse %s", path), err).
				WithSuggestion("Check the YAML syntax")
		}
	} else if explicit {
		return nil, errors.NewConfigNotFoundError(path)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			key = strings.ReplaceAll(key, "__", ".")
			switch key {
			case "fail_on", "mandatory_tools":
				parts := strings.Split(value, ",")
				for i := range parts {
					parts[i] = strings.TrimSpace(parts[i])
				}
				return key, parts
			}
			return key, value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read environment overrides", err)
	}

	var cfg Config
	if err := unmarshal(k, "", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigUnmarshal, "configuration does not match the schema", err).
			WithSuggestion("Check field names and value types in .lintgate.yaml").
			WithDocs("https://github.com/felixgeelhaar/lintgate#configuration")
	}

	return &cfg, nil
}

// LoadSuppressionsFile reads an external suppression list: a YAML file
// with a top-level suppressions key.
func LoadSuppressionsFile(path string) ([]SuppressionRule, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewSuppressionFileError(path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, errors.NewSuppressionFileError(path, err)
	}

	var rules []SuppressionRule
	if err := unmarshal(k, "suppressions", &rules); err != nil {
		return nil, errors.NewSuppressionFileError(path, err)
	}
	return rules, nil
}

// ResolveSuppressions merges the inline rules with the external file (when
// configured) and validates the combined list.
func (c *Config) ResolveSuppressions() ([]SuppressionRule, error) {
	lists := [][]SuppressionRule{c.Suppressions}
	if c.SuppressionsFile != "" {
		fromFile, err := LoadSuppressionsFile(c.SuppressionsFile)
		if err != nil {
			return nil, err
		}
		lists = append(lists, fromFile)
	}
	merged := MergeSuppressions(lists...)
	for i := range merged {
		if err := merged[i].Validate(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// unmarshal decodes with the stock hooks plus date handling. The YAML
// parser hands unquoted dates over as time.Time, which the text
// unmarshaller hook cannot see.
func unmarshal(k *koanf.Koanf, path string, out interface{}) error {
	return k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				dateHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           out,
			WeaklyTypedInput: true,
		},
	})
}

func dateHookFunc() mapstructure.DecodeHookFuncType {
	dateType := reflect.TypeOf(Date{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != dateType {
			return data, nil
		}
		switch v := data.(type) {
		case time.Time:
			return Date{Time: v}, nil
		case string:
			var d Date
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return nil, err
			}
			return d, nil
		}
		return data, nil
	}
}

// defaults is the confmap layer under every configuration.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"timeout_per_tool": "2m",
		"global_timeout":   "10m",
		"max_parallel":     4,
		"fail_on":          []string{"error", "security"},
		"cache.enabled":    false,
		"cache.path":       ".lintgate/cache.db",
		"report.format":    "terminal",
		"report.output":    "",
	}
}
