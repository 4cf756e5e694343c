package orchestrator

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/user/reconai/pkg/ai"
	"github.com/user/reconai/pkg/config"
	"github.com/user/reconai/pkg/logging"
	"github.com/user/reconai/pkg/recon"
	"github.com/user/reconai/pkg/styles"
)

type fakeScanner struct {
	installErr  error
	scanErr     string
	events      []recon.Event
	ran         bool
	gotFlags    []string
	gotTimeout  time.Duration
	gotScanName string
}

func (f *fakeScanner) CheckInstallation(ctx context.Context) error {
	return f.installErr
}

func (f *fakeScanner) RunScan(ctx context.Context, targetName, scanName string, flags []string, timeout time.Duration) *recon.ScanOutcome {
	f.ran = true
	f.gotFlags = flags
	f.gotTimeout = timeout
	f.gotScanName = scanName
	outcome := &recon.ScanOutcome{Target: targetName, ToolName: "bbot"}
	if f.scanErr != "" {
		outcome.ErrorMessage = f.scanErr
		return outcome
	}
	outcome.Succeeded = true
	outcome.Events = f.events
	outcome.EventTypeCounts, _ = recon.Summarize(f.events)
	return outcome
}

type fakeAnalyzer struct {
	called bool
	result *ai.Result
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, outcome *recon.ScanOutcome, targetName string, style styles.Profile) *ai.Result {
	f.called = true
	return f.result
}

type fakeProvider struct {
	closed bool
}

func (f *fakeProvider) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return "", nil
}

func (f *fakeProvider) ListModels(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

type fakeDorker struct {
	generated map[string][]string
	saved     bool
}

func (f *fakeDorker) Generate(ctx context.Context, targetName, styleName string) map[string][]string {
	return f.generated
}

func (f *fakeDorker) Save(targetName string, dorks map[string][]string) (string, error) {
	f.saved = true
	return "dorks.json", nil
}

func testOrchestrator(t *testing.T, scanner Scanner) *Orchestrator {
	t.Helper()
	return &Orchestrator{
		Config:    config.Default(),
		OutputDir: t.TempDir(),
		Scanner:   scanner,
		Log:       logging.NewWithOutput("orchestrator", false, io.Discard),
		state:     StateIdle,
	}
}

func savedRunFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "recon_*.json"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRunInvalidTargetHalts(t *testing.T) {
	scanner := &fakeScanner{}
	o := testOrchestrator(t, scanner)

	record := o.Run(context.Background(), Request{Target: "<>", Tool: "bbot", StyleName: "quick"})
	if record.Succeeded {
		t.Fatal("expected failure")
	}
	if record.State != StateFailed || o.LastState() != StateFailed {
		t.Errorf("state = %s / %s, want failed", record.State, o.LastState())
	}
	if scanner.ran {
		t.Error("scanner must not run for an invalid target")
	}
	if files := savedRunFiles(t, o.OutputDir); len(files) != 0 {
		t.Errorf("invalid target should not persist a record: %v", files)
	}
}

func TestRunUnknownStyle(t *testing.T) {
	scanner := &fakeScanner{}
	o := testOrchestrator(t, scanner)

	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "ninja"})
	if record.State != StateFailed {
		t.Errorf("state = %s, want failed", record.State)
	}
	if scanner.ran {
		t.Error("scanner must not run for an unknown style")
	}
}

func TestRunFailedScanSkipsAnalysis(t *testing.T) {
	scanner := &fakeScanner{installErr: errors.New("bbot not found")}
	analyzer := &fakeAnalyzer{result: &ai.Result{Succeeded: true}}
	o := testOrchestrator(t, scanner)
	o.Analyzer = analyzer

	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick", Analyze: true})
	if record.Succeeded {
		t.Fatal("expected failure")
	}
	if record.Analysis != nil {
		t.Error("analysis must be nil after a failed scan")
	}
	if analyzer.called {
		t.Error("analyzer must not be called after a failed scan")
	}
	if record.State != StateFailed {
		t.Errorf("state = %s, want failed", record.State)
	}
	// Failed scans are still a reportable result.
	if files := savedRunFiles(t, o.OutputDir); len(files) != 1 {
		t.Errorf("expected one persisted record, got %v", files)
	}
}

func TestRunAnalysisFailureDoesNotFailRun(t *testing.T) {
	scanner := &fakeScanner{events: []recon.Event{{Type: "DNS_NAME", Data: "a"}}}
	analyzer := &fakeAnalyzer{result: &ai.Result{ErrorMessage: "connection refused"}}
	o := testOrchestrator(t, scanner)
	o.Analyzer = analyzer

	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick", Analyze: true})
	if !record.Succeeded {
		t.Fatalf("run failed: %s", record.ErrorMessage)
	}
	if record.State != StateDone || o.LastState() != StateDone {
		t.Errorf("state = %s / %s, want done", record.State, o.LastState())
	}
	if record.Analysis == nil || record.Analysis.Succeeded {
		t.Errorf("analysis = %+v, want failed result carried on record", record.Analysis)
	}
}

func TestRunAnalyzeSkippedWithoutAnalyzer(t *testing.T) {
	scanner := &fakeScanner{}
	o := testOrchestrator(t, scanner)

	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick", Analyze: true})
	if !record.Succeeded {
		t.Fatalf("run failed: %s", record.ErrorMessage)
	}
	if record.Analysis != nil {
		t.Error("analysis should be nil when no analyzer is wired")
	}
}

func TestRunStyleTriggersDorks(t *testing.T) {
	scanner := &fakeScanner{}
	dorker := &fakeDorker{generated: map[string][]string{"admin_portals": {"site:example.com inurl:admin"}}}
	o := testOrchestrator(t, scanner)
	o.Dorker = dorker

	// aggressive style includes dorks even when the request does not ask.
	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "aggressive"})
	if !reflect.DeepEqual(record.Dorks, dorker.generated) {
		t.Errorf("dorks = %v", record.Dorks)
	}
	if !dorker.saved {
		t.Error("dorks were not saved")
	}
}

func TestRunScanTimeoutSource(t *testing.T) {
	scanner := &fakeScanner{}
	o := testOrchestrator(t, scanner)

	o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick"})
	if scanner.gotTimeout != 180*time.Second {
		t.Errorf("timeout = %s, want style default 180s", scanner.gotTimeout)
	}

	tool := o.Config.Tools["bbot"]
	tool.TimeoutSeconds = 60
	o.Config.Tools["bbot"] = tool
	o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick"})
	if scanner.gotTimeout != 60*time.Second {
		t.Errorf("timeout = %s, want config override 60s", scanner.gotTimeout)
	}
}

func TestMergeFlags(t *testing.T) {
	stealth, err := styles.Resolve("stealth")
	if err != nil {
		t.Fatal(err)
	}
	// Extras extend the style's flags; aggressive modules and duplicates
	// are dropped.
	got := mergeFlags(stealth, []string{"port-scan", "subdomain-enum", "email-enum"})
	want := []string{"subdomain-enum", "dns-enum", "email-enum"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeFlags = %v, want %v", got, want)
	}

	aggressive, err := styles.Resolve("aggressive")
	if err != nil {
		t.Fatal(err)
	}
	got = mergeFlags(aggressive, []string{"vuln-scan"})
	if !reflect.DeepEqual(got, append(append([]string{}, aggressive.ToolFlags...), "vuln-scan")) {
		t.Errorf("aggressive style should accept vuln-scan, got %v", got)
	}
}

func TestRunConfiguredDefaultFlagsExtendScan(t *testing.T) {
	scanner := &fakeScanner{}
	o := testOrchestrator(t, scanner)
	tool := o.Config.Tools["bbot"]
	tool.DefaultFlags = []string{"email-enum", "port-scan"}
	o.Config.Tools["bbot"] = tool

	// quick style: port-scan is aggressive and stays out, email-enum merges in.
	o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick"})
	want := []string{"subdomain-enum", "email-enum"}
	if !reflect.DeepEqual(scanner.gotFlags, want) {
		t.Errorf("scan flags = %v, want %v", scanner.gotFlags, want)
	}
}

func TestCloseReleasesProvider(t *testing.T) {
	o := testOrchestrator(t, &fakeScanner{})
	o.Close() // no provider attached: must not panic

	p := &fakeProvider{}
	o.provider = p
	o.Close()
	if !p.closed {
		t.Error("Close did not release the provider")
	}
}

func TestSummaryContents(t *testing.T) {
	scanner := &fakeScanner{events: []recon.Event{
		{Type: "DNS_NAME", Data: "a"},
		{Type: "DNS_NAME", Data: "b"},
		{Type: "URL", Data: "u"},
	}}
	o := testOrchestrator(t, scanner)
	record := o.Run(context.Background(), Request{Target: "example.com", Tool: "bbot", StyleName: "quick"})

	summary := o.Summary(record)
	for _, want := range []string{"Target: example.com", "Status: SUCCESS", "Total Events: 3", "DNS_NAME: 2"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
