package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already e164", input: "+16502530001", want: "+16502530001"},
		{name: "spaces and dashes", input: "+1 650-253-0001", want: "+16502530001"},
		{name: "parentheses", input: "+1 (650) 253-0001", want: "+16502530001"},
		{name: "uk number", input: "+44 20 7946 0958", want: "+442079460958"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no plus", input: "6502530001"},
		{name: "two pluses", input: "++16502530001"},
		{name: "letters", input: "+1650CALLNOW"},
		{name: "too short", input: "+1 23"},
		{name: "invalid exchange", input: "+15550001111"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.input); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
