// Package config loads the indexer configuration with koanf, layering
// built-in defaults, an optional YAML config file and environment
// variables (highest priority). The loaded Config is validated before
// use; components receive it through their constructors rather than
// reading the environment themselves.
package config
