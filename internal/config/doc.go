// Package config loads, normalizes, and validates reelsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file for secrets, and honours
// environment fallbacks such as PEXELS_API_KEY and GEMINI_API_KEY. The Config
// type centralizes every knob the batch runner and CLI need, so work/output
// directories, external service credentials, and the background music library
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
