// Package services defines shared utilities consumed by the pipeline stage
// functions and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp script item IDs, phase names, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (transient vs permanent) consistent across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
