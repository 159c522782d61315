package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// timeKey is the time field written by the run log handler.
const timeKey = "ts"

// Entry is one decoded JSON log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// ParseEntry decodes a JSON log line. Lines that are not JSON objects are
// reported with ok false.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{Attrs: map[string]any{}}
	for key, value := range raw {
		switch key {
		case timeKey, slog.TimeKey:
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case slog.LevelKey:
			if s, ok := value.(string); ok {
				_ = entry.Level.UnmarshalText([]byte(s))
			}
		case slog.MessageKey:
			entry.Message, _ = value.(string)
		case slog.SourceKey:
		default:
			entry.Attrs[key] = value
		}
	}
	return entry, true
}

// Format renders the entry on one line: time, level, message, then the
// remaining attributes sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level.String(), e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for key := range e.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Attrs[key])
	}
	return b.String()
}

// Filter selects log lines by minimum level and message substring.
type Filter struct {
	MinLevel slog.Level
	Contains string
}

// Match reports whether line passes the filter. Non-JSON lines only pass an
// empty filter.
func (f Filter) Match(line string) (Entry, bool) {
	entry, ok := ParseEntry(line)
	if !ok {
		return Entry{}, f.MinLevel <= slog.LevelDebug && f.Contains == ""
	}
	if entry.Level < f.MinLevel {
		return entry, false
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(entry.Message), strings.ToLower(f.Contains)) {
		return entry, false
	}
	return entry, true
}
