// Package subtitles turns word level transcription timestamps into SRT cue
// files. Words are grouped into cues by one of four strategies, phrase
// endings get a short display extension, and cue timings are adjusted so no
// cue ever overlaps the next.
package subtitles
