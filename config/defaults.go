package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ids.blank_node_prefix", "_:")

	v.SetDefault("serialize.format", "jsonld")
	v.SetDefault("serialize.indent", "  ")
	v.SetDefault("serialize.local_prefix", "local")
	v.SetDefault("serialize.local_namespace", "urn:ontomap:local#")

	v.SetDefault("context.ignore_conflicts", false)
	v.SetDefault("construct.strict", false)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("namespaces", map[string]string{})
}
