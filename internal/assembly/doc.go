// Package assembly builds the final video for an item by driving ffmpeg
// through four steps: animate each still image into a clip, stitch the
// clips, mux the narration audio, and burn the subtitle captions. A failure
// at any step fails the whole assembly.
package assembly
