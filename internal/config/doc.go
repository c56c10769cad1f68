// Package config loads, normalizes, and validates autovideo configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CEREBRAS_API_KEY and CLOUDFLARE_API_TOKEN. The Config type centralizes every
// knob the pipeline and CLI need, from Google Sheets column mapping to caption
// burn styling.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical caption strategies, and clear validation errors.
package config
