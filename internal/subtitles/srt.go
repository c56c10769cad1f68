package subtitles

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/saadbenchakroun/auto-video-generator/internal/fileutil"
)

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	h := whole / 3600
	m := (whole % 3600) / 60
	s := whole % 60
	ms := int(math.Round((seconds - float64(whole)) * 1000))
	if ms > 999 {
		ms = 999
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Render produces the SRT document for the given cues.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n",
			entry.Index, FormatTimestamp(entry.Start), FormatTimestamp(entry.End), entry.Text)
	}
	return b.String()
}

// WriteFile renders the cues and writes them to path.
func WriteFile(path string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("subtitles: no cues to write")
	}
	return fileutil.WriteFileAtomic(path, []byte(Render(entries)))
}

// ParseFile reads an SRT document back into cues. Used to sanity check
// generated files before captions are burned.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		index, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("subtitles: parse %s: expected cue index, got %q", path, line)
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("subtitles: parse %s: cue %d missing timing line", path, index)
		}
		start, end, err := parseTimingLine(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, fmt.Errorf("subtitles: parse %s: cue %d: %w", path, index, err)
		}
		var texts []string
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				break
			}
			texts = append(texts, text)
		}
		if len(texts) == 0 {
			return nil, fmt.Errorf("subtitles: parse %s: cue %d has no text", path, index)
		}
		entries = append(entries, Entry{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(texts, "\n"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks cue ordering and timing sanity.
func Validate(entries []Entry) error {
	for i, entry := range entries {
		if entry.Index != i+1 {
			return fmt.Errorf("subtitles: cue %d has index %d", i+1, entry.Index)
		}
		if entry.End <= entry.Start {
			return fmt.Errorf("subtitles: cue %d ends at or before its start", entry.Index)
		}
		if strings.TrimSpace(entry.Text) == "" {
			return fmt.Errorf("subtitles: cue %d is empty", entry.Index)
		}
		if i > 0 && entry.Start < entries[i-1].End {
			return fmt.Errorf("subtitles: cue %d overlaps cue %d", entry.Index, entries[i-1].Index)
		}
	}
	return nil
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed timing line %q", line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	var h, m, s, ms int
	if _, err := fmt.Sscanf(value, "%02d:%02d:%02d,%03d", &h, &m, &s, &ms); err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", value)
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}
