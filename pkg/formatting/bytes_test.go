package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/saldo/pkg/formatting"
)

const mib = 1 << 20

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"default upload limit", "50MB", 50 * mib},
		{"scanned page limit", "8 MiB", 8 * mib},
		{"short unit", "512k", 512 << 10},
		{"fractional", "1.5GB", 1536 * mib},
		{"plain bytes", "4096", 4096},
		{"byte suffix", "300 B", 300},
		{"padded", "  20mb ", 20 * mib},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBytesRejects(t *testing.T) {
	for _, input := range []string{"", "MB", "-5MB", "50 Pakete", "1,5MB", "50 PB"} {
		t.Run(input, func(t *testing.T) {
			if _, err := formatting.ParseBytes(input); !errors.Is(err, formatting.ErrInvalidSize) {
				t.Errorf("ParseBytes(%q) error = %v, want ErrInvalidSize", input, err)
			}
		})
	}
}
