// Package main hosts the autovideo CLI entrypoint and command graph.
//
// The Cobra-based command tree wires terminal invocations into pipeline runs,
// queue maintenance operations, dependency checks, and configuration
// scaffolding. It centralizes configuration resolution and logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
