package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a script item.
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusDone           Status = "done"
	StatusFailedAudio    Status = "failed_audio"
	StatusFailedSRT      Status = "failed_srt"
	StatusFailedImages   Status = "failed_images"
	StatusFailedAssembly Status = "failed_assembly"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusDone,
	StatusFailedAudio,
	StatusFailedSRT,
	StatusFailedImages,
	StatusFailedAssembly,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusDone:           {},
	StatusFailedAudio:    {},
	StatusFailedSRT:      {},
	StatusFailedImages:   {},
	StatusFailedAssembly: {},
}

var displayValues = map[Status]string{
	StatusPending:        "Pending",
	StatusProcessing:     "Processing",
	StatusDone:           "Done",
	StatusFailedAudio:    "Failed Audio",
	StatusFailedSRT:      "Failed SRT",
	StatusFailedImages:   "Failed Images",
	StatusFailedAssembly: "Failed Assembly",
}

// Phase identifies a pipeline phase for failure mapping.
type Phase string

const (
	PhaseAudio     Phase = "audio"
	PhaseSubtitles Phase = "subtitles"
	PhasePrompts   Phase = "prompts"
	PhaseImages    Phase = "images"
	PhaseAssembly  Phase = "assembly"
)

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status. It accepts both the
// internal form ("failed_audio") and the sheet display form ("Failed Audio").
func ParseStatus(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	normalized := Status(strings.ReplaceAll(strings.ToLower(trimmed), " ", "_"))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// DisplayValue returns the sheet-facing rendering of a status.
func (s Status) DisplayValue() string {
	if value, ok := displayValues[s]; ok {
		return value
	}
	return string(s)
}

// IsTerminal reports whether a status ends an item's run.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// IsFailure reports whether a status is a terminal failure.
func (s Status) IsFailure() bool {
	return s.IsTerminal() && s != StatusDone
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Terminal states admit no transitions; processing is
// entered once from pending and never re-entered.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		_, terminal := terminalStatuses[to]
		return terminal
	default:
		return false
	}
}

// FailureStatus maps a pipeline phase to the terminal failure status an item
// reaches when that phase exhausts retries. Prompt failures surface through
// the image status since prompts exist only to drive image generation.
func FailureStatus(phase Phase) Status {
	switch phase {
	case PhaseAudio:
		return StatusFailedAudio
	case PhaseSubtitles:
		return StatusFailedSRT
	case PhasePrompts, PhaseImages:
		return StatusFailedImages
	case PhaseAssembly:
		return StatusFailedAssembly
	default:
		return StatusFailedAssembly
	}
}

// Artifacts records the per-item outputs accumulated across phases. Stage
// workers write artifacts; only the orchestrator writes status.
type Artifacts struct {
	AudioPath     string   `json:"audio_path,omitempty"`
	AudioDuration float64  `json:"audio_duration,omitempty"`
	SRTPath       string   `json:"srt_path,omitempty"`
	NumImages     int      `json:"num_images,omitempty"`
	Prompts       []string `json:"prompts,omitempty"`
	ImagePaths    []string `json:"image_paths,omitempty"`
	VideoPath     string   `json:"video_path,omitempty"`
	ScriptFile    string   `json:"script_file,omitempty"`
}

// Item represents a script work item persisted in SQLite.
type Item struct {
	ID            int64
	ScriptID      string
	RowHandle     int64
	ScriptText    string
	Status        Status
	FailureReason string
	Artifacts     Artifacts
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transition applies a validated status change. The failure reason is recorded
// once, on the transition into a failure state, and never overwritten.
func (i *Item) Transition(to Status, reason string) bool {
	if !CanTransition(i.Status, to) {
		return false
	}
	i.Status = to
	if to.IsFailure() && i.FailureReason == "" {
		i.FailureReason = strings.TrimSpace(reason)
	}
	return true
}
