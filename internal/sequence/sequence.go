// Package sequence rotates through the active prompts and persists the
// rotation cursor.
//
// The active list is rebuilt from the prompt source on every call: prompts
// with Active set, stably sorted by Order so that equal orders keep the
// source's insertion order. The cursor is a position into that list rather
// than a prompt identity, and is clamped to zero whenever it falls outside the
// list as read.
//
// Cursor mutations are serialized with optimistic concurrency. Each attempt
// re-reads the prompts and the cursor, then writes only if the cursor version
// is unchanged. A lost race is retried up to a configured number of attempts;
// no lock is held across store I/O.
package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/soundslike/internal/prompts"
)

// Cursor is the persisted rotation position.
// Version increases by one on every successful write.
type Cursor struct {
	Index       int       `json:"index"`
	LastUpdated time.Time `json:"last_updated"`
	Version     int64     `json:"version"`
}

// Rotation is the result of an advance: the prompt handed out and the one that follows it.
type Rotation struct {
	Current prompts.Prompt `json:"current"`
	Next    prompts.Prompt `json:"next"`
}

// PromptSource supplies every prompt in insertion order.
type PromptSource interface {
	All(ctx context.Context) ([]prompts.Prompt, error)
}

// CursorStore persists the singleton cursor.
type CursorStore interface {
	// Read returns the stored cursor, or the zero cursor if none has been written.
	Read(ctx context.Context) (Cursor, error)

	// WriteIfUnchanged stores c with version expected+1 when the stored version
	// still equals expected. It reports false, with a nil error, when another
	// writer got there first.
	WriteIfUnchanged(ctx context.Context, expected int64, c Cursor) (bool, error)
}

// System defines the public contract for prompt rotation.
type System interface {
	Handler() *Handler

	// Advance hands out the current prompt and moves the cursor one step.
	Advance(ctx context.Context) (*Rotation, error)

	// Peek returns the current prompt without moving the cursor.
	// It returns nil and no error when no prompt is active.
	Peek(ctx context.Context) (*prompts.Prompt, error)

	// SetCursorToPrompt points the cursor at an active prompt so the next
	// Advance hands it out.
	SetCursorToPrompt(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
}
