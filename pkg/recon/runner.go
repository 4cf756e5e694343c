package recon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrToolUnavailable means the scanner binary could not be found or probed.
var ErrToolUnavailable = errors.New("scanner tool unavailable")

const defaultBinary = "bbot"

// Runner invokes the external scanner as a child process and turns whatever
// artifact it wrote into a ScanOutcome.
type Runner struct {
	Binary    string
	OutputDir string
	log       *logrus.Entry
}

// NewRunner builds a runner writing artifacts under outputDir.
func NewRunner(outputDir string, log *logrus.Entry) *Runner {
	return &Runner{Binary: defaultBinary, OutputDir: outputDir, log: log}
}

// CheckInstallation probes for the scanner binary. It must pass before any
// scan attempt.
func (r *Runner) CheckInstallation(ctx context.Context) error {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return fmt.Errorf("%w: %q not found in PATH", ErrToolUnavailable, r.Binary)
	}
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, r.Binary, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: version probe failed: %v", ErrToolUnavailable, err)
	}
	r.log.Infof("%s found: %s", r.Binary, strings.TrimSpace(string(out)))
	return nil
}

// RunScan executes one scan with a hard wall-clock timeout. All failure
// modes are returned as fields on the outcome; RunScan itself never panics
// past the caller. The outcome is marked successful even when no artifact
// is discoverable, with zero events.
func (r *Runner) RunScan(ctx context.Context, targetName, scanName string, flags []string, timeout time.Duration) *ScanOutcome {
	if scanName == "" {
		scanName = deriveScanName(targetName)
	}

	args := []string{
		"-t", targetName,
		"-o", r.OutputDir,
		"-n", scanName,
		"--output-modules", "json,human",
	}
	if len(flags) > 0 {
		args = append(args, "-f")
		args = append(args, flags...)
	}

	outcome := &ScanOutcome{
		Target:     targetName,
		ToolName:   r.Binary,
		RawCommand: r.Binary + " " + strings.Join(args, " "),
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		outcome.ErrorMessage = fmt.Sprintf("cannot create output directory: %v", err)
		return outcome
	}

	r.log.Infof("Starting %s scan for target: %s", r.Binary, targetName)
	r.log.Debugf("Running command: %s", outcome.RawCommand)

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(scanCtx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if scanCtx.Err() == context.DeadlineExceeded {
		outcome.ErrorMessage = fmt.Sprintf("Scan timed out after %s", timeout)
		r.log.Error(outcome.ErrorMessage)
		return outcome
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		outcome.ErrorMessage = msg
		r.log.Errorf("Scan failed: %s", msg)
		return outcome
	}

	outcome.Succeeded = true
	outcome.Events = r.collectEvents(scanName)
	counts, summary := Summarize(outcome.Events)
	outcome.EventTypeCounts = counts
	r.log.Info(summary)
	return outcome
}

// collectEvents walks the artifact search order: JSON-family first, then the
// plain-text fallback, then nothing at all.
func (r *Runner) collectEvents(scanName string) []Event {
	if path, ok := LocateJSONArtifact(r.OutputDir, scanName); ok {
		events, err := ParseEventsFile(path)
		if err != nil {
			r.log.Warnf("Failed to read artifact %s: %v", path, err)
			return nil
		}
		r.log.Debugf("Parsed %d events from %s", len(events), path)
		return events
	}
	if path, ok := LocateTextArtifact(r.OutputDir, scanName); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			r.log.Warnf("Failed to read artifact %s: %v", path, err)
			return nil
		}
		r.log.Debugf("Falling back to text findings from %s", path)
		return ParseTextFindings(data)
	}
	r.log.Warn("No scan artifact found; returning empty outcome")
	return nil
}

var scanNameReplacer = strings.NewReplacer("/", "_", ":", "_", " ", "_")

func deriveScanName(targetName string) string {
	return "bbot_scan_" + scanNameReplacer.Replace(targetName)
}
