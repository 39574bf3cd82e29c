// Package recordings implements the recording domain: visitor submissions,
// moderation, and random playback of approved clips.
// Audio bytes live in blob storage; rows hold the storage key.
package recordings

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recording is a submitted audio clip and its moderation state.
// Prompt holds the prompt text at submission time rather than a prompt id.
type Recording struct {
	ID          uuid.UUID `json:"id"`
	Prompt      string    `json:"prompt"`
	RecordedAt  time.Time `json:"recorded_at"`
	Tags        []string  `json:"tags"`
	Approved    bool      `json:"approved"`
	Duration    float64   `json:"duration"`
	StorageKey  *string   `json:"storage_key,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Playback is the public view of a recording served to listeners.
type Playback struct {
	ID         uuid.UUID `json:"id"`
	Prompt     string    `json:"prompt"`
	RecordedAt time.Time `json:"recorded_at"`
	Tags       []string  `json:"tags"`
	Duration   float64   `json:"duration"`
}

// Playback strips moderation and storage details from r.
func (r Recording) Playback() Playback {
	return Playback{
		ID:         r.ID,
		Prompt:     r.Prompt,
		RecordedAt: r.RecordedAt,
		Tags:       r.Tags,
		Duration:   r.Duration,
	}
}

// SubmitCommand carries a visitor submission.
// AudioData is base64, optionally wrapped in a data URL that names the audio type.
type SubmitCommand struct {
	AudioData string     `json:"audio_data"`
	Prompt    string     `json:"prompt"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Duration  *float64   `json:"duration,omitempty"`
}

// Validate trims Prompt and rejects submissions missing audio or prompt text.
func (c *SubmitCommand) Validate() error {
	c.Prompt = strings.TrimSpace(c.Prompt)
	if c.Prompt == "" {
		return ErrMissingPrompt
	}
	if strings.TrimSpace(c.AudioData) == "" {
		return ErrInvalidAudio
	}
	if c.Duration != nil && *c.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// UpdateCommand carries a moderation update. Nil fields are left unchanged.
type UpdateCommand struct {
	Tags     *[]string `json:"tags,omitempty"`
	Approved *bool     `json:"approved,omitempty"`
}

// NormalizeTags returns tags as a set: trimmed, lower-cased, without blanks or
// duplicates, and sorted.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
