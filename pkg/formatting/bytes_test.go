package formatting_test

import (
	"testing"

	"github.com/JaimeStill/soundslike/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"2048", 2048, false},
		{"512B", 512, false},
		{"256KB", 256 * 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1.5MB", 1536 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{"25 MB", 25 * 1024 * 1024, false},
		{"  10MB  ", 10 * 1024 * 1024, false},
		{"0", 0, false},
		{"", 0, true},
		{"10XB", 0, true},
		{"MB", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{900, 0, "900 B"},
		{48 * 1024, 0, "48 KB"},
		{1536 * 1024, 1, "1.5 MB"},
		{10 * 1024 * 1024, 1, "10.0 MB"},
		{1024, -3, "1 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatting.FormatBytes(tt.n, tt.precision)
			if got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}
