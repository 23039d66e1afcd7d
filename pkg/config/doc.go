// Package config defines the YAML configuration for the rulegate
// process and its loading pipeline.
//
// Loading applies defaults, then optional RULEGATE_* environment
// overrides, then validates the final configuration. Every field has a
// working default so an empty file (or no file at all) yields a usable
// configuration.
package config
