package sequence_test

import (
	"testing"

	"github.com/JaimeStill/soundslike/internal/sequence"
)

func TestConfigFinalize(t *testing.T) {
	env := &sequence.Env{
		MaxAttempts:    "TEST_SEQ_MAX_ATTEMPTS",
		FallbackPrompt: "TEST_SEQ_FALLBACK",
		Store:          "TEST_SEQ_STORE",
	}

	t.Run("defaults", func(t *testing.T) {
		var c sequence.Config
		if err := c.Finalize(env); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if c.MaxAttempts != 8 {
			t.Errorf("max attempts = %d, want 8", c.MaxAttempts)
		}
		if c.Store != sequence.StorePostgres {
			t.Errorf("store = %q, want postgres", c.Store)
		}
		if c.FallbackPrompt == "" {
			t.Error("fallback prompt is empty")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_SEQ_MAX_ATTEMPTS", "3")
		t.Setenv("TEST_SEQ_FALLBACK", "Hum a tune.")
		t.Setenv("TEST_SEQ_STORE", "memory")

		var c sequence.Config
		if err := c.Finalize(env); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if c.MaxAttempts != 3 || c.FallbackPrompt != "Hum a tune." || c.Store != sequence.StoreMemory {
			t.Errorf("config = %+v", c)
		}
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		t.Setenv("TEST_SEQ_STORE", "redis")

		var c sequence.Config
		if err := c.Finalize(env); err == nil {
			t.Error("expected error for unknown store")
		}
	})

	t.Run("rejects non-positive attempts from env", func(t *testing.T) {
		t.Setenv("TEST_SEQ_MAX_ATTEMPTS", "0")

		var c sequence.Config
		if err := c.Finalize(env); err == nil {
			t.Error("expected error for zero attempts")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := sequence.Config{MaxAttempts: 8, FallbackPrompt: "a", Store: "postgres"}
	base.Merge(&sequence.Config{MaxAttempts: 2})

	if base.MaxAttempts != 2 || base.FallbackPrompt != "a" || base.Store != "postgres" {
		t.Errorf("merged = %+v", base)
	}
}
