// Package recon runs the external scanner and normalizes its output into
// typed events.
package recon

import (
	"fmt"
	"sort"
	"strings"
)

// Event is a single normalized finding from a scan. Type decides how the
// event is rendered in summaries and prompts.
type Event struct {
	Type       string         `json:"type"`
	Data       string         `json:"data"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ScanOutcome is the complete result of one scanner invocation. It is never
// mutated after the runner returns it.
type ScanOutcome struct {
	Target          string         `json:"target"`
	ToolName        string         `json:"tool"`
	Succeeded       bool           `json:"succeeded"`
	ErrorMessage    string         `json:"error,omitempty"`
	Events          []Event        `json:"events"`
	EventTypeCounts map[string]int `json:"event_type_counts"`
	RawCommand      string         `json:"command"`
}

// Summarize counts events by type and builds the one-line human summary.
// It is pure and order-preserving over the input.
func Summarize(events []Event) (map[string]int, string) {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	summary := fmt.Sprintf("Found %d total events across %d different types", len(events), len(counts))
	return counts, summary
}

// TypeCount pairs an event type with its frequency for display.
type TypeCount struct {
	Type  string
	Count int
}

// CountsByFrequency orders types by descending count. Ties keep the order
// in which the type was first encountered in events.
func CountsByFrequency(counts map[string]int, events []Event) []TypeCount {
	firstSeen := make(map[string]int, len(counts))
	for i, ev := range events {
		if _, ok := firstSeen[ev.Type]; !ok {
			firstSeen[ev.Type] = i
		}
	}
	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Type] < firstSeen[out[j].Type]
	})
	return out
}

// FormatEventLine renders one event as a human-readable line. Unknown types
// fall back to a truncated raw display.
func FormatEventLine(ev Event) string {
	switch ev.Type {
	case "DNS_NAME":
		return "DNS Name: " + ev.Data
	case "URL":
		return "URL: " + ev.Data
	case "IP_ADDRESS":
		return "IP Address: " + ev.Data
	case "OPEN_TCP_PORT":
		return "Open Port: " + ev.Data
	case "TECHNOLOGY":
		return "Technology: " + ev.Data
	case "EMAIL_ADDRESS":
		return "Email: " + ev.Data
	case "SOCIAL":
		return "Social: " + ev.Data
	default:
		return fmt.Sprintf("%s: %s", ev.Type, truncate(ev.Data, 50))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// FindingsSummary renders the histogram block used by console reports.
func FindingsSummary(outcome *ScanOutcome) string {
	if !outcome.Succeeded {
		msg := outcome.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		return fmt.Sprintf("Scan failed: %s", msg)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scan Results for %s:\n", outcome.Target)
	fmt.Fprintf(&sb, "Total Events: %d\n", len(outcome.Events))
	if len(outcome.EventTypeCounts) > 0 {
		sb.WriteString("\nEvent Types:\n")
		for _, tc := range CountsByFrequency(outcome.EventTypeCounts, outcome.Events) {
			fmt.Fprintf(&sb, "  - %s: %d\n", tc.Type, tc.Count)
		}
	}
	return sb.String()
}
