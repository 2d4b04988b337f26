// Package config provides configuration management for dispatchd.
//
// Configuration is loaded in three layers: built-in defaults, an
// optional YAML file, and environment variable overrides with the
// DISPATCHD prefix. The seed section declares extensions registered at
// startup; operation identifiers omitted from the seed are derived
// caller-side from their signatures before registration.
package config
