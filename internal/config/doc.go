// Package config loads and validates the realtime client configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Zero values fall
// back to production defaults, so a minimal file only needs the gateway URL.
package config
