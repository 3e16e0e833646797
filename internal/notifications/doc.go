// Package notifications delivers batch events via ntfy.
//
// NewService publishes to the ntfy topic configured in config.toml and
// degrades to a no-op when none is set. Workflow code depends only on the
// Service interface.
package notifications
