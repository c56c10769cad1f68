package subtitles_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saadbenchakroun/auto-video-generator/internal/subtitles"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.042, "00:01:01,042"},
		{3723.999, "01:02:03,999"},
		{-2, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := subtitles.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestRenderFormat(t *testing.T) {
	entries := []subtitles.Entry{
		{Index: 1, Start: 0, End: 1.2, Text: "the harbor wakes"},
		{Index: 2, Start: 1.3, End: 2.5, Text: "slowly this morning"},
	}
	got := subtitles.Render(entries)
	want := "1\n00:00:00,000 --> 00:00:01,200\nthe harbor wakes\n" +
		"\n2\n00:00:01,300 --> 00:00:02,500\nslowly this morning\n"
	if got != want {
		t.Fatalf("Render mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestWriteAndParseRoundTrip(t *testing.T) {
	entries := []subtitles.Entry{
		{Index: 1, Start: 0, End: 1.2, Text: "first cue"},
		{Index: 2, Start: 1.3, End: 2.5, Text: "second cue"},
	}
	path := filepath.Join(t.TempDir(), "item.srt")
	if err := subtitles.WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	parsed, err := subtitles.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("len(parsed) = %d, want 2", len(parsed))
	}
	if parsed[0].Text != "first cue" || parsed[0].Start != 0 || parsed[0].End != 1.2 {
		t.Fatalf("first cue = %+v", parsed[0])
	}
	if err := subtitles.Validate(parsed); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestWriteFileRejectsEmpty(t *testing.T) {
	if err := subtitles.WriteFile(filepath.Join(t.TempDir(), "empty.srt"), nil); err == nil {
		t.Fatal("expected error for empty cue list")
	}
}

func TestParseFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.srt")
	if err := os.WriteFile(path, []byte("1\nnot a timing line\ntext\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := subtitles.ParseFile(path); err == nil || !strings.Contains(err.Error(), "timing") {
		t.Fatalf("expected timing error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	good := []subtitles.Entry{
		{Index: 1, Start: 0, End: 1, Text: "a"},
		{Index: 2, Start: 1.1, End: 2, Text: "b"},
	}
	if err := subtitles.Validate(good); err != nil {
		t.Fatalf("Validate(good): %v", err)
	}

	cases := map[string][]subtitles.Entry{
		"bad index":    {{Index: 2, Start: 0, End: 1, Text: "a"}},
		"end <= start": {{Index: 1, Start: 1, End: 1, Text: "a"}},
		"empty text":   {{Index: 1, Start: 0, End: 1, Text: "  "}},
		"overlap": {
			{Index: 1, Start: 0, End: 1.5, Text: "a"},
			{Index: 2, Start: 1.0, End: 2, Text: "b"},
		},
	}
	for name, entries := range cases {
		if err := subtitles.Validate(entries); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
