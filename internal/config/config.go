// Package config resolves clinctx settings from defaults, an optional YAML
// config file, CLINCTX_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/clinctx/internal/match"
)

// EnvPrefix is the prefix of environment variables read as settings,
// e.g. CLINCTX_ATTR.
const EnvPrefix = "CLINCTX"

// Setting keys.
const (
	KeyRules   = "rules"
	KeyAttr    = "attr"
	KeyTerms   = "terms"
	KeyLabel   = "label"
	KeyFormat  = "format"
	KeyVerbose = "verbose"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "json"}

var ErrInvalidFormat = errors.New("invalid output format")

// Config is the resolved configuration.
type Config struct {
	// Rules is the path of a rule document; empty means the embedded rules.
	Rules string `mapstructure:"rules" yaml:"rules" json:"rules"`
	// Attr is the token attribute phrase patterns and terms compare on.
	Attr string `mapstructure:"attr" yaml:"attr" json:"attr"`
	// Terms are the phrases annotated as entities.
	Terms []string `mapstructure:"terms" yaml:"terms" json:"terms"`
	// Label is the label given to entities.
	Label   string `mapstructure:"label" yaml:"label" json:"label"`
	Format  string `mapstructure:"format" yaml:"format" json:"format"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Attr:   string(match.AttrNorm),
		Terms:  []string{},
		Label:  "entity",
		Format: "text",
	}
}

// New returns a viper instance carrying the defaults and the environment
// binding. Every key has a default, so environment variables are seen by
// Decode.
func New() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault(KeyRules, def.Rules)
	v.SetDefault(KeyAttr, def.Attr)
	v.SetDefault(KeyTerms, def.Terms)
	v.SetDefault(KeyLabel, def.Label)
	v.SetDefault(KeyFormat, def.Format)
	v.SetDefault(KeyVerbose, def.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads the config file at path into v. With an empty path it
// looks for $HOME/.clinctx/config.yaml and is silent when none exists.
// It returns the file used, or "" when no file was read.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil
		}
		v.AddConfigPath(filepath.Join(home, ".clinctx"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Decode returns the effective configuration held by v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := match.ParseAttr(c.Attr); err != nil {
		return fmt.Errorf("config %s: %w", KeyAttr, err)
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w %q: must be one of %v", ErrInvalidFormat, c.Format, Formats)
	}
	return nil
}

// PhraseAttr returns the parsed Attr setting.
func (c Config) PhraseAttr() match.Attr {
	attr, err := match.ParseAttr(c.Attr)
	if err != nil {
		return match.AttrNorm
	}
	return attr
}
