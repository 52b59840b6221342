package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read() = %v, want no lines", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "named logger with fields",
			input: "2026-10-18T09:00:00Z\tINFO\treconcile\tremote changed\t{\"signal\": \"lights\"}",
			want: Entry{
				Time:    "2026-10-18T09:00:00Z",
				Level:   "INFO",
				Logger:  "reconcile",
				Message: "remote changed",
				Fields:  "{\"signal\": \"lights\"}",
			},
		},
		{
			name:  "no logger name",
			input: "2026-10-18T09:00:00Z\tWARN\tdevice unreachable",
			want: Entry{
				Time:    "2026-10-18T09:00:00Z",
				Level:   "WARN",
				Message: "device unreachable",
			},
		},
		{
			name:  "plain text",
			input: "panic: something",
			want:  Entry{Message: "panic: something"},
		},
		{
			name:  "unknown level",
			input: "a\tLOUD\tb",
			want:  Entry{Message: "a\tLOUD\tb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Raw = tt.input
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"t\tDEBUG\tcontrol\tcommand sent",
		"t\tINFO\treconcile\tremote changed",
		"",
		"t\tWARN\tcontrol\tcommand dispatch failed",
		"goroutine 1 [running]:",
		"t\tERROR\tapp\tboom",
	}

	got := Filter(lines, "warn")
	var msgs []string
	for _, e := range got {
		msgs = append(msgs, e.Message)
	}
	want := []string{"command dispatch failed", "goroutine 1 [running]:", "boom"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("Filter() = %v, want %v", msgs, want)
	}

	if n := len(Filter(lines, "debug")); n != 5 {
		t.Fatalf("Filter(debug) kept %d entries, want 5", n)
	}
}
