// Package prompts implements the recording prompt domain.
// It provides types, data access, and HTTP handlers for the admin-managed
// prompts that visitors respond to.
package prompts

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is a cue shown to recorders. Only active prompts take part in rotation,
// ordered by Order; equal orders keep insertion order.
type Prompt struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary pairs a prompt with counts of the recordings made in response to it.
type Summary struct {
	Prompt
	RecordingCount int `json:"recording_count"`
	ApprovedCount  int `json:"approved_count"`
}

// CreateCommand carries the data needed to create a prompt.
// Active defaults to true and Order to one past the current maximum.
type CreateCommand struct {
	Text   string `json:"text"`
	Active *bool  `json:"active,omitempty"`
	Order  *int   `json:"order,omitempty"`
}

// Validate trims Text and rejects empty prompts.
func (c *CreateCommand) Validate() error {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// UpdateCommand carries a partial prompt update. Nil fields are left unchanged.
type UpdateCommand struct {
	Text   *string `json:"text,omitempty"`
	Active *bool   `json:"active,omitempty"`
	Order  *int    `json:"order,omitempty"`
}

// Validate trims Text when present and rejects an empty replacement.
func (c *UpdateCommand) Validate() error {
	if c.Text == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*c.Text)
	if trimmed == "" {
		return ErrEmptyText
	}
	c.Text = &trimmed
	return nil
}
