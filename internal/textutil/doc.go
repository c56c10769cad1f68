// Package textutil provides text processing utilities for script
// normalization, identifier sanitization, and segment splitting.
//
// Script text arrives from an external spreadsheet and may carry arbitrary
// Unicode; NormalizeScript canonicalizes it once so synthesis, transcription,
// and prompt chunking all see the same bytes. Segments backs the
// one-prompt-per-clip split used by the prompt generation stage.
package textutil
