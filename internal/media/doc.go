// Package media wraps the ffprobe binary for inspecting generated audio and
// video artifacts. Callers inject a command runner in tests so no real
// binaries are needed.
package media
