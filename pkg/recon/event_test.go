package recon

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	events := []Event{
		{Type: "DNS_NAME", Data: "a.example.com"},
		{Type: "DNS_NAME", Data: "b.example.com"},
		{Type: "IP_ADDRESS", Data: "10.0.0.1"},
	}
	counts, summary := Summarize(events)
	if counts["DNS_NAME"] != 2 || counts["IP_ADDRESS"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	want := "Found 3 total events across 2 different types"
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	counts, summary := Summarize(nil)
	if len(counts) != 0 {
		t.Errorf("expected empty counts, got %v", counts)
	}
	if !strings.Contains(summary, "0 total events") {
		t.Errorf("summary = %q", summary)
	}
}

func TestCountsByFrequency(t *testing.T) {
	events := []Event{
		{Type: "URL", Data: "u1"},
		{Type: "DNS_NAME", Data: "d1"},
		{Type: "DNS_NAME", Data: "d2"},
		{Type: "IP_ADDRESS", Data: "i1"},
	}
	counts, _ := Summarize(events)
	ordered := CountsByFrequency(counts, events)
	if len(ordered) != 3 {
		t.Fatalf("got %d entries, want 3", len(ordered))
	}
	if ordered[0].Type != "DNS_NAME" || ordered[0].Count != 2 {
		t.Errorf("first entry = %+v, want DNS_NAME x2", ordered[0])
	}
	// Tied counts keep first-seen order.
	if ordered[1].Type != "URL" || ordered[2].Type != "IP_ADDRESS" {
		t.Errorf("tie order wrong: %+v", ordered[1:])
	}
}

func TestFormatEventLine(t *testing.T) {
	cases := []struct {
		ev   Event
		want string
	}{
		{Event{Type: "DNS_NAME", Data: "x.example.com"}, "DNS Name: x.example.com"},
		{Event{Type: "OPEN_TCP_PORT", Data: "example.com:443"}, "Open Port: example.com:443"},
		{Event{Type: "EMAIL_ADDRESS", Data: "a@example.com"}, "Email: a@example.com"},
		{Event{Type: "VULNERABILITY", Data: "short"}, "VULNERABILITY: short"},
	}
	for _, c := range cases {
		if got := FormatEventLine(c.ev); got != c.want {
			t.Errorf("FormatEventLine(%+v) = %q, want %q", c.ev, got, c.want)
		}
	}
}

func TestFormatEventLineTruncatesUnknown(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := FormatEventLine(Event{Type: "BLOB", Data: long})
	want := "BLOB: " + strings.Repeat("x", 50) + "..."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Known types are never truncated.
	url := FormatEventLine(Event{Type: "URL", Data: long})
	if url != "URL: "+long {
		t.Errorf("URL line truncated: %q", url)
	}
}

func TestFindingsSummary(t *testing.T) {
	failed := &ScanOutcome{Succeeded: false, ErrorMessage: "tool not found"}
	if got := FindingsSummary(failed); got != "Scan failed: tool not found" {
		t.Errorf("failed summary = %q", got)
	}

	events := []Event{{Type: "DNS_NAME", Data: "a"}, {Type: "DNS_NAME", Data: "b"}}
	counts, _ := Summarize(events)
	ok := &ScanOutcome{
		Target:          "example.com",
		Succeeded:       true,
		Events:          events,
		EventTypeCounts: counts,
	}
	got := FindingsSummary(ok)
	if !strings.Contains(got, "Total Events: 2") || !strings.Contains(got, "DNS_NAME: 2") {
		t.Errorf("summary missing fields:\n%s", got)
	}
}
