package recon

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ParseEventsFile reads a JSON-family artifact and returns the events it
// contains. Three shapes are tolerated: a JSON array of event objects, a
// single object (unwrapped when it carries an "events" key), and
// newline-delimited JSON. Records that are not objects are discarded; NDJSON
// lines that fail to parse are skipped silently.
func ParseEventsFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEvents(data), nil
}

// ParseEvents parses raw JSON-family bytes into events.
func ParseEvents(data []byte) []Event {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err == nil {
			events := make([]Event, 0, len(raw))
			for _, r := range raw {
				if ev, ok := decodeEvent(r); ok {
					events = append(events, ev)
				}
			}
			return events
		}
		// Malformed array: fall through to line-based parsing.
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		if wrapped, ok := obj["events"]; ok {
			var raw []json.RawMessage
			if err := json.Unmarshal(wrapped, &raw); err == nil {
				events := make([]Event, 0, len(raw))
				for _, r := range raw {
					if ev, ok := decodeEvent(r); ok {
						events = append(events, ev)
					}
				}
				return events
			}
		}
		if ev, ok := decodeEvent(trimmed); ok {
			return []Event{ev}
		}
		return nil
	}

	return parseNDJSON(trimmed)
}

func parseNDJSON(data []byte) []Event {
	var events []Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if ev, ok := decodeEvent(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// decodeEvent maps an arbitrary JSON object onto an Event. The "type" and
// "data" fields are lifted out; everything else lands in Attributes.
func decodeEvent(raw []byte) (Event, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Event{}, false
	}
	ev := Event{Type: "unknown"}
	if t, ok := m["type"].(string); ok && t != "" {
		ev.Type = t
	}
	switch d := m["data"].(type) {
	case string:
		ev.Data = d
	case nil:
	default:
		if b, err := json.Marshal(d); err == nil {
			ev.Data = string(b)
		} else {
			ev.Data = fmt.Sprint(d)
		}
	}
	delete(m, "type")
	delete(m, "data")
	if len(m) > 0 {
		ev.Attributes = m
	}
	return ev, true
}

// ParseTextFindings treats a plain-text artifact as newline-delimited
// findings: one text_finding event per non-empty, non-comment line. This is
// the degraded fallback when no JSON-family artifact exists.
func ParseTextFindings(data []byte) []Event {
	var events []Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		events = append(events, Event{Type: "text_finding", Data: line})
	}
	return events
}
