package subtitles

import (
	"fmt"
	"strings"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/services/whisper"
)

// Grouping strategy names accepted in configuration.
const (
	StrategyFixedWords  = "fixed_words"
	StrategyTimeBased   = "time_based"
	StrategyCharCount   = "char_count"
	StrategySmartPhrase = "smart_phrase"
)

const (
	// endPhraseExtension keeps a cue on screen a little longer when it
	// closes a sentence.
	endPhraseExtension = 0.3
	// minCueGap is the smallest silence kept between consecutive cues.
	minCueGap = 0.1
)

var (
	majorPunctuation = []string{".", "!", "?"}
	allPunctuation   = []string{".", "!", "?", ",", ";", ":"}
)

// Entry is a single subtitle cue. Start and End are seconds from the start
// of the audio.
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Group converts a transcript word list into cues using the configured
// strategy. An unknown strategy is an error; empty input yields no cues.
func Group(words []whisper.Word, cfg config.Captions) ([]Entry, error) {
	if len(words) == 0 {
		return nil, nil
	}
	var entries []Entry
	switch cfg.Strategy {
	case StrategyFixedWords, "":
		entries = groupFixedWords(words, cfg.WordsPerGroup)
	case StrategyTimeBased:
		entries = groupTimeBased(words, cfg.MaxGroupSeconds)
	case StrategyCharCount:
		entries = groupCharCount(words, cfg.MaxGroupChars)
	case StrategySmartPhrase:
		entries = groupSmartPhrase(words, cfg.SmartMinWords, cfg.SmartMaxWords)
	default:
		return nil, fmt.Errorf("subtitles: unknown grouping strategy %q", cfg.Strategy)
	}
	preventOverlaps(entries)
	return entries, nil
}

func groupFixedWords(words []whisper.Word, perGroup int) []Entry {
	if perGroup < 1 {
		perGroup = 3
	}
	var entries []Entry
	for i := 0; i < len(words); {
		take := 0
		for take < perGroup && i+take < len(words) {
			take++
			// A punctuation mark closes the group early even before the
			// word budget is spent.
			if endsWithAny(words[i+take-1].Text, allPunctuation) {
				break
			}
		}
		entries = appendEntry(entries, words[i:i+take])
		i += take
	}
	return entries
}

func groupTimeBased(words []whisper.Word, maxSeconds float64) []Entry {
	if maxSeconds <= 0 {
		maxSeconds = 2.0
	}
	var entries []Entry
	for i := 0; i < len(words); {
		start := words[i].Start
		take := 0
		for i+take < len(words) {
			word := words[i+take]
			if word.End-start > maxSeconds && take > 0 {
				break
			}
			take++
			if endsWithAny(word.Text, allPunctuation) {
				break
			}
		}
		entries = appendEntry(entries, words[i:i+take])
		i += take
	}
	return entries
}

func groupCharCount(words []whisper.Word, maxChars int) []Entry {
	if maxChars < 1 {
		maxChars = 42
	}
	var entries []Entry
	for i := 0; i < len(words); {
		length := 0
		take := 0
		for i+take < len(words) {
			word := words[i+take]
			nextLength := length + len(word.Text)
			if take > 0 {
				nextLength++ // joining space
			}
			if nextLength > maxChars && take > 0 {
				break
			}
			length = nextLength
			take++
			if endsWithAny(word.Text, allPunctuation) {
				break
			}
		}
		entries = appendEntry(entries, words[i:i+take])
		i += take
	}
	return entries
}

func groupSmartPhrase(words []whisper.Word, minWords, maxWords int) []Entry {
	if minWords < 1 {
		minWords = 3
	}
	if maxWords < minWords {
		maxWords = minWords + 2
	}
	minorPunctuation := []string{",", ";", ":"}
	var entries []Entry
	for i := 0; i < len(words); {
		take := 0
		for i+take < len(words) {
			word := words[i+take]
			take++
			if endsWithAny(word.Text, majorPunctuation) {
				break
			}
			if endsWithAny(word.Text, minorPunctuation) && take >= minWords {
				break
			}
			if take >= maxWords {
				break
			}
		}
		entries = appendEntry(entries, words[i:i+take])
		i += take
	}
	return entries
}

func appendEntry(entries []Entry, group []whisper.Word) []Entry {
	if len(group) == 0 {
		return entries
	}
	texts := make([]string, len(group))
	for i, word := range group {
		texts[i] = word.Text
	}
	end := group[len(group)-1].End
	if endsWithAny(group[len(group)-1].Text, majorPunctuation) {
		end += endPhraseExtension
	}
	return append(entries, Entry{
		Index: len(entries) + 1,
		Start: group[0].Start,
		End:   end,
		Text:  strings.Join(texts, " "),
	})
}

// preventOverlaps trims each cue so it ends at least minCueGap before the
// next cue starts.
func preventOverlaps(entries []Entry) {
	for i := 0; i < len(entries)-1; i++ {
		nextStart := entries[i+1].Start
		if entries[i].End+minCueGap > nextStart {
			entries[i].End = nextStart - minCueGap
		}
	}
}

func endsWithAny(text string, marks []string) bool {
	for _, mark := range marks {
		if strings.HasSuffix(text, mark) {
			return true
		}
	}
	return false
}
