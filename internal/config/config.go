package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"bump/internal/directive"
	"bump/internal/increment"
)

// Project config file names, checked in order at the repository root.
const (
	ProjectFileYAML = "bump.yaml"
	ProjectFileTOML = "bump.toml"
)

// Config represents the complete bump configuration (v1 schema).
// Values are layered: built-in defaults, then the user config file,
// then the project file at the repository root.
type Config struct {
	Version          int            `json:"version" yaml:"version" mapstructure:"version"`
	Mode             string         `json:"mode" yaml:"mode" mapstructure:"mode"`
	DefaultIncrement string         `json:"defaultIncrement" yaml:"defaultIncrement" mapstructure:"defaultIncrement"`
	Patterns         PatternsConfig `json:"patterns" yaml:"patterns" mapstructure:"patterns"`
	Branches         []BranchRule   `json:"branches,omitempty" yaml:"branches,omitempty" mapstructure:"branches"`
	Logging          LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// PatternsConfig carries override pattern texts for the directive
// matcher. Empty fields keep the built-in defaults.
type PatternsConfig struct {
	Major string `json:"major,omitempty" yaml:"major,omitempty" mapstructure:"major"`
	Minor string `json:"minor,omitempty" yaml:"minor,omitempty" mapstructure:"minor"`
	Patch string `json:"patch,omitempty" yaml:"patch,omitempty" mapstructure:"patch"`
	None  string `json:"none,omitempty" yaml:"none,omitempty" mapstructure:"none"`
}

// BranchRule overrides settings for branches whose name matches a
// pattern. Rules are evaluated in order; the first match wins. Empty
// fields inherit the top-level values.
type BranchRule struct {
	Match            string         `json:"match" yaml:"match" mapstructure:"match"`
	Mode             string         `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	DefaultIncrement string         `json:"defaultIncrement,omitempty" yaml:"defaultIncrement,omitempty" mapstructure:"defaultIncrement"`
	Patterns         PatternsConfig `json:"patterns,omitempty" yaml:"patterns,omitempty" mapstructure:"patterns"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:          1,
		Mode:             string(increment.ModeEnabled),
		DefaultIncrement: increment.Patch.String(),
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// userConfigFile locates the per-user config file. Replaceable for
// tests.
var userConfigFile = func() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, "bump", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// ProjectConfigPath returns the project config file at the repository
// root, if one exists. bump.yaml takes precedence over bump.toml.
func ProjectConfigPath(repoRoot string) (string, bool) {
	for _, name := range []string{ProjectFileYAML, ProjectFileTOML} {
		path := filepath.Join(repoRoot, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadConfig loads the layered configuration for a repository.
// Missing files are fine; a file that exists but fails to parse is an
// error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path, ok := userConfigFile(); ok {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading user config %s: %w", path, err)
		}
	}

	if path, ok := ProjectConfigPath(repoRoot); ok {
		if filepath.Ext(path) == ".toml" {
			if err := mergeTOML(v, path); err != nil {
				return nil, err
			}
		} else {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("reading project config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("defaultIncrement", defaults.DefaultIncrement)
	v.SetDefault("patterns.major", "")
	v.SetDefault("patterns.minor", "")
	v.SetDefault("patterns.patch", "")
	v.SetDefault("patterns.none", "")
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)
}

// mergeTOML layers a TOML project file into the viper instance.
func mergeTOML(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading project config %s: %w", path, err)
	}
	var values map[string]interface{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("reading project config %s: %w", path, err)
	}
	return v.MergeConfigMap(values)
}

// Save writes the configuration to bump.yaml at the repository root.
func (c *Config) Save(repoRoot string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	header := "# bump configuration.\n" +
		"# Patterns and branch matches are case-insensitive regular expressions.\n"
	return os.WriteFile(filepath.Join(repoRoot, ProjectFileYAML), append([]byte(header), data...), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if _, err := increment.ParseMode(c.Mode); err != nil {
		return &ConfigError{Field: "mode", Message: err.Error()}
	}
	if c.DefaultIncrement != "" {
		if _, err := increment.Parse(c.DefaultIncrement); err != nil {
			return &ConfigError{Field: "defaultIncrement", Message: err.Error()}
		}
	}
	for i, rule := range c.Branches {
		field := fmt.Sprintf("branches[%d]", i)
		if rule.Match == "" {
			return &ConfigError{Field: field + ".match", Message: "match pattern is required"}
		}
		if rule.Mode != "" {
			if _, err := increment.ParseMode(rule.Mode); err != nil {
				return &ConfigError{Field: field + ".mode", Message: err.Error()}
			}
		}
		if rule.DefaultIncrement != "" {
			if _, err := increment.Parse(rule.DefaultIncrement); err != nil {
				return &ConfigError{Field: field + ".defaultIncrement", Message: err.Error()}
			}
		}
	}
	return nil
}

// Effective is the configuration that applies to one branch after
// branch rules are resolved.
type Effective struct {
	Mode             string         `json:"mode" yaml:"mode"`
	DefaultIncrement string         `json:"defaultIncrement" yaml:"defaultIncrement"`
	Patterns         PatternsConfig `json:"patterns" yaml:"patterns"`
}

// ForBranch resolves the effective configuration for a branch name.
// Branch match patterns are compiled through the shared pattern cache
// and tested case-insensitively; the first matching rule overlays the
// top-level settings. An empty branch name (detached head) keeps the
// top-level settings.
func (c *Config) ForBranch(branch string, cache *directive.Cache) (Effective, error) {
	eff := Effective{
		Mode:             c.Mode,
		DefaultIncrement: c.DefaultIncrement,
		Patterns:         c.Patterns,
	}
	if branch == "" {
		return eff, nil
	}

	for i := range c.Branches {
		rule := &c.Branches[i]
		re, err := cache.Get(rule.Match)
		if err != nil {
			return Effective{}, err
		}
		if !re.MatchString(branch) {
			continue
		}

		if rule.Mode != "" {
			eff.Mode = rule.Mode
		}
		if rule.DefaultIncrement != "" {
			eff.DefaultIncrement = rule.DefaultIncrement
		}
		if rule.Patterns.Major != "" {
			eff.Patterns.Major = rule.Patterns.Major
		}
		if rule.Patterns.Minor != "" {
			eff.Patterns.Minor = rule.Patterns.Minor
		}
		if rule.Patterns.Patch != "" {
			eff.Patterns.Patch = rule.Patterns.Patch
		}
		if rule.Patterns.None != "" {
			eff.Patterns.None = rule.Patterns.None
		}
		return eff, nil
	}
	return eff, nil
}

// Settings is the effective configuration translated to engine values.
type Settings struct {
	Mode     increment.Mode
	Patterns directive.PatternSet
	Default  *increment.Increment
}

// Settings translates the effective configuration into engine values,
// compiling pattern overrides through the shared cache. An empty
// default increment translates to no configured default.
func (e Effective) Settings(cache *directive.Cache) (Settings, error) {
	mode, err := increment.ParseMode(e.Mode)
	if err != nil {
		return Settings{}, err
	}

	set, err := cache.PatternSet(directive.Overrides{
		Major: e.Patterns.Major,
		Minor: e.Patterns.Minor,
		Patch: e.Patterns.Patch,
		None:  e.Patterns.None,
	})
	if err != nil {
		return Settings{}, err
	}

	var def *increment.Increment
	if e.DefaultIncrement != "" {
		inc, err := increment.Parse(e.DefaultIncrement)
		if err != nil {
			return Settings{}, err
		}
		def = &inc
	}

	return Settings{Mode: mode, Patterns: set, Default: def}, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
