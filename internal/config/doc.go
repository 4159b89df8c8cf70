// Package config loads, validates, and normalizes coopscout configuration.
//
// Configuration lives in a TOML file (default ~/.config/coopscout/config.toml)
// and is organized into sections per subsystem. Load applies defaults first,
// then the file, then environment fallbacks for secrets, so a minimal config
// with just a feed list is enough to run.
package config
