// Package workflow drives a batch of script items through the ordered
// pipeline phases: audio, subtitles, prompts, images, assembly. Each phase
// runs over the live subset of items with bounded parallelism; an item that
// exhausts a phase's retries either receives that phase's fallback or moves
// to its terminal failed status and drops out of later phases. The
// orchestrator is the only writer of item status; stage functions write
// artifacts only. External store writes happen exactly twice per item: once
// when it enters processing and once with its terminal status.
package workflow
