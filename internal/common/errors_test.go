package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestValidationError_Wrapping(t *testing.T) {
	err := fmt.Errorf("report: %w", NewValidationError("start", "2024-13-40", ErrInvalidDate))

	if !IsValidation(err) {
		t.Fatal("IsValidation = false, want true")
	}
	if !errors.Is(err, ErrInvalidDate) {
		t.Error("errors.Is(err, ErrInvalidDate) = false")
	}
	if !strings.Contains(err.Error(), `"2024-13-40"`) {
		t.Errorf("message %q does not name the value", err.Error())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, "json").Info("loaded", "entries", 3)
	if !strings.Contains(buf.String(), `"entries":3`) {
		t.Errorf("json output = %q", buf.String())
	}
}
