package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time    string
	Level   string // upper case: DEBUG, INFO, WARN, ERROR
	Logger  string
	Message string
	Fields  string
	Raw     string
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3, "DPANIC": 4, "PANIC": 5, "FATAL": 6}

// Parse splits a console-encoded line into its tab-separated columns:
// time, level, optional logger name, message and optional JSON fields.
// Lines that do not look like log entries come back with only Raw and
// Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	cols := strings.Split(line, "\t")
	if len(cols) < 3 {
		return entry
	}
	level := strings.ToUpper(strings.TrimSpace(cols[1]))
	if _, ok := levelRank[level]; !ok {
		return entry
	}

	entry.Time = cols[0]
	entry.Level = level
	rest := cols[2:]
	if len(rest) > 0 && strings.HasPrefix(rest[len(rest)-1], "{") {
		entry.Fields = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}
	switch len(rest) {
	case 0:
		entry.Message = ""
	case 1:
		entry.Message = rest[0]
	default:
		entry.Logger = rest[0]
		entry.Message = strings.Join(rest[1:], "\t")
	}
	return entry
}

// AtLeast reports whether the entry's level is at or above min. Unparsed
// lines always pass.
func (e Entry) AtLeast(min string) bool {
	if e.Level == "" {
		return true
	}
	want, ok := levelRank[strings.ToUpper(min)]
	if !ok {
		return true
	}
	return levelRank[e.Level] >= want
}

// Filter parses lines and keeps those at or above min.
func Filter(lines []string, min string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := Parse(line)
		if entry.AtLeast(min) {
			out = append(out, entry)
		}
	}
	return out
}
