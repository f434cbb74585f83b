// Package config loads ontomap settings from files and the environment and
// applies them to the ontology defaults.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/ontology"
	"github.com/geoknoesis/ontomap/rdf"
)

// EnvPrefix prefixes environment overrides, e.g. ONTOMAP_SERIALIZE_INDENT.
const EnvPrefix = "ONTOMAP"

// Config is the full ontomap configuration.
type Config struct {
	IDs        IDsConfig         `mapstructure:"ids" yaml:"ids"`
	Serialize  SerializeConfig   `mapstructure:"serialize" yaml:"serialize"`
	Context    ContextConfig     `mapstructure:"context" yaml:"context"`
	Construct  ConstructConfig   `mapstructure:"construct" yaml:"construct"`
	Log        LogConfig         `mapstructure:"log" yaml:"log"`
	Namespaces map[string]string `mapstructure:"namespaces" yaml:"namespaces"`
}

// IDsConfig controls generated identifiers.
type IDsConfig struct {
	BlankNodePrefix string `mapstructure:"blank_node_prefix" yaml:"blank_node_prefix"`
}

// SerializeConfig controls output documents.
type SerializeConfig struct {
	Format         string `mapstructure:"format" yaml:"format"`
	Indent         string `mapstructure:"indent" yaml:"indent"`
	LocalPrefix    string `mapstructure:"local_prefix" yaml:"local_prefix"`
	LocalNamespace string `mapstructure:"local_namespace" yaml:"local_namespace"`
}

// ContextConfig controls context resolution.
type ContextConfig struct {
	IgnoreConflicts bool `mapstructure:"ignore_conflicts" yaml:"ignore_conflicts"`
}

// ConstructConfig controls instance construction.
type ConstructConfig struct {
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	JSON  bool   `mapstructure:"json" yaml:"json"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Load reads configuration from path, or from ontomap.yaml (or .toml,
// .json) in the working directory and ~/.ontomap when path is empty.
// Environment variables override files.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	} else {
		v.SetConfigName("ontomap")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ontomap"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Logger.Debugw("Loaded configuration", "path", used)
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates the settings held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no files or environment applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Validate checks values the ontology package would reject later.
func (c *Config) Validate() error {
	policy := ontology.IDPolicy{BlankNodePrefix: c.IDs.BlankNodePrefix}
	if err := policy.Validate(); err != nil {
		return errors.Wrap(err, "ids.blank_node_prefix")
	}
	if c.Serialize.Format != "" {
		if _, err := rdf.LookupFormat(c.Serialize.Format); err != nil {
			return errors.Wrap(err, "serialize.format")
		}
	}
	if ns := c.Serialize.LocalNamespace; ns != "" && !namespace.IsAbsolute(ns) {
		return errors.Newf("serialize.local_namespace must be an absolute IRI, got %q", ns)
	}
	for prefix, iri := range c.Namespaces {
		if !namespace.IsAbsolute(iri) {
			return errors.Newf("namespaces.%s must be an absolute IRI, got %q", prefix, iri)
		}
	}
	return nil
}

// OutputFormat returns the configured default output format.
func (c *Config) OutputFormat() rdf.Format {
	if f, ok := rdf.ParseFormat(c.Serialize.Format); ok {
		return f
	}
	return rdf.FormatJSONLD
}

// Apply pushes the configuration into the process defaults and registers
// its namespaces in the catalog. The returned function restores the
// previous ontology defaults; catalog registrations stay.
func (c *Config) Apply() (restore func(), err error) {
	restorePolicy, err := ontology.SetDefaultIDPolicy(ontology.IDPolicy{BlankNodePrefix: c.IDs.BlankNodePrefix})
	if err != nil {
		return nil, err
	}
	restoreDefaults := ontology.SetDefaults(ontology.Defaults{
		LocalPrefix:     c.Serialize.LocalPrefix,
		LocalNamespace:  c.Serialize.LocalNamespace,
		Indent:          c.Serialize.Indent,
		IgnoreConflicts: c.Context.IgnoreConflicts,
		Strict:          c.Construct.Strict,
	})
	restore = func() {
		restoreDefaults()
		restorePolicy()
	}

	prefixes := make([]string, 0, len(c.Namespaces))
	for prefix := range c.Namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		if err := namespace.Register(prefix, c.Namespaces[prefix]); err != nil {
			restore()
			return nil, errors.Wrapf(err, "namespaces.%s", prefix)
		}
	}
	logger.Logger.Debugw("Applied configuration",
		"blank_node_prefix", c.IDs.BlankNodePrefix,
		logger.FieldPrefix, c.Serialize.LocalPrefix,
		logger.FieldCount, len(prefixes))
	return restore, nil
}
