package recon

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/user/reconai/pkg/logging"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(t.TempDir(), logging.NewWithOutput("runner", false, io.Discard))
}

// fakeScanner drops a shell script on disk that stands in for the real tool.
func fakeScanner(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "fake-scanner")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckInstallationMissingBinary(t *testing.T) {
	r := testRunner(t)
	r.Binary = "definitely-not-a-real-scanner-binary"
	err := r.CheckInstallation(context.Background())
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("error %v does not wrap ErrToolUnavailable", err)
	}
}

func TestCheckInstallationSucceeds(t *testing.T) {
	r := testRunner(t)
	r.Binary = fakeScanner(t, "echo fake 1.0\n")
	if err := r.CheckInstallation(context.Background()); err != nil {
		t.Fatalf("CheckInstallation: %v", err)
	}
}

func TestRunScanCollectsArtifact(t *testing.T) {
	r := testRunner(t)
	r.Binary = fakeScanner(t, "exit 0\n")

	artifact := filepath.Join(r.OutputDir, "scan1", "output.ndjson")
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		t.Fatal(err)
	}
	ndjson := `{"type": "DNS_NAME", "data": "a.example.com"}` + "\n" +
		`{"type": "DNS_NAME", "data": "b.example.com"}` + "\n"
	if err := os.WriteFile(artifact, []byte(ndjson), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome := r.RunScan(context.Background(), "example.com", "scan1", []string{"subdomain-enum"}, 30*time.Second)
	if !outcome.Succeeded {
		t.Fatalf("scan failed: %s", outcome.ErrorMessage)
	}
	if len(outcome.Events) != 2 {
		t.Errorf("got %d events, want 2", len(outcome.Events))
	}
	if outcome.EventTypeCounts["DNS_NAME"] != 2 {
		t.Errorf("counts = %v", outcome.EventTypeCounts)
	}
	if !strings.Contains(outcome.RawCommand, "-f subdomain-enum") {
		t.Errorf("command missing flags: %q", outcome.RawCommand)
	}
	if !strings.Contains(outcome.RawCommand, "--output-modules json,human") {
		t.Errorf("command missing output modules: %q", outcome.RawCommand)
	}
}

func TestRunScanNoArtifactStillSucceeds(t *testing.T) {
	r := testRunner(t)
	r.Binary = fakeScanner(t, "exit 0\n")

	outcome := r.RunScan(context.Background(), "example.com", "scan1", nil, 30*time.Second)
	if !outcome.Succeeded {
		t.Fatalf("scan failed: %s", outcome.ErrorMessage)
	}
	if len(outcome.Events) != 0 {
		t.Errorf("expected zero events, got %d", len(outcome.Events))
	}
}

func TestRunScanToolFailure(t *testing.T) {
	r := testRunner(t)
	r.Binary = fakeScanner(t, "echo 'boom: bad module' >&2\nexit 2\n")

	outcome := r.RunScan(context.Background(), "example.com", "scan1", nil, 30*time.Second)
	if outcome.Succeeded {
		t.Fatal("expected failure")
	}
	if !strings.Contains(outcome.ErrorMessage, "boom: bad module") {
		t.Errorf("error message = %q, want stderr content", outcome.ErrorMessage)
	}
}

func TestRunScanTimeout(t *testing.T) {
	r := testRunner(t)
	r.Binary = fakeScanner(t, "sleep 5\n")

	outcome := r.RunScan(context.Background(), "example.com", "scan1", nil, 100*time.Millisecond)
	if outcome.Succeeded {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(outcome.ErrorMessage, "timed out") {
		t.Errorf("error message = %q, want timeout", outcome.ErrorMessage)
	}
}

func TestDeriveScanName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"example.com", "bbot_scan_example.com"},
		{"10.0.0.0/8", "bbot_scan_10.0.0.0_8"},
		{"Acme Corp", "bbot_scan_Acme_Corp"},
	}
	for _, c := range cases {
		if got := deriveScanName(c.in); got != c.want {
			t.Errorf("deriveScanName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
