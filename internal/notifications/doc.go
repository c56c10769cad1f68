// Package notifications pushes run progress to an ntfy topic. Every event
// can be toggled off in configuration, and with no topic configured the
// service degrades to a noop so the pipeline never depends on it.
package notifications
