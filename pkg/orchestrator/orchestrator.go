// Package orchestrator sequences one reconnaissance run:
// validate -> scan -> (analyze)? -> (dorks)? -> save -> summarize.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/user/reconai/pkg/ai"
	"github.com/user/reconai/pkg/config"
	"github.com/user/reconai/pkg/recon"
	"github.com/user/reconai/pkg/styles"
	"github.com/user/reconai/pkg/target"
)

// State names the orchestrator's position in its per-run state machine.
type State string

const (
	StateIdle            State = "idle"
	StateValidating      State = "validating"
	StateScanning        State = "scanning"
	StateAnalyzing       State = "analyzing"
	StateGeneratingDorks State = "generating_dorks"
	StateSaving          State = "saving"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// RunRecord is the complete persisted outcome of one invocation. Created
// once per run and never mutated after persistence.
type RunRecord struct {
	ID                   string              `json:"id"`
	Target               target.Descriptor   `json:"target"`
	Tool                 string              `json:"tool"`
	Style                styles.Profile      `json:"style"`
	ScanOutcome          *recon.ScanOutcome  `json:"scan_results"`
	Analysis             *ai.Result          `json:"ai_analysis"`
	Dorks                map[string][]string `json:"dorks"`
	ExecutionTimeSeconds float64             `json:"execution_time"`
	Timestamp            string              `json:"timestamp"`
	Succeeded            bool                `json:"success"`
	ErrorMessage         string              `json:"error,omitempty"`
	State                State               `json:"state"`
}

// Scanner runs the external reconnaissance tool.
type Scanner interface {
	CheckInstallation(ctx context.Context) error
	RunScan(ctx context.Context, targetName, scanName string, flags []string, timeout time.Duration) *recon.ScanOutcome
}

// AnalysisRequestor asks the completion API about a scan outcome. Failures
// are carried inside the result, never returned.
type AnalysisRequestor interface {
	Analyze(ctx context.Context, outcome *recon.ScanOutcome, targetName string, style styles.Profile) *ai.Result
}

// DorkSource generates and persists search dorks.
type DorkSource interface {
	Generate(ctx context.Context, targetName, styleName string) map[string][]string
	Save(targetName string, dorks map[string][]string) (string, error)
}

// Request describes one reconnaissance invocation.
type Request struct {
	Target    string
	Tool      string
	StyleName string
	Analyze   bool
	Dorks     bool
}

// Orchestrator wires the pipeline together. Analyzer and Dorker may be nil;
// the corresponding steps are then skipped with a warning.
type Orchestrator struct {
	Config    *config.Config
	OutputDir string
	Scanner   Scanner
	Analyzer  AnalysisRequestor
	Dorker    DorkSource
	Log       *logrus.Entry

	provider ai.Provider
	state    State
}

// New assembles an orchestrator with the real scanner. The analyzer and
// dork generator are attached only when an API key is available.
func New(cfg *config.Config, outputDir string, log *logrus.Entry) *Orchestrator {
	if outputDir == "" {
		outputDir = cfg.General.OutputDir
	}
	o := &Orchestrator{
		Config:    cfg,
		OutputDir: outputDir,
		Scanner:   recon.NewRunner(outputDir, log),
		Log:       log,
		state:     StateIdle,
	}

	providerName := cfg.AI.Provider
	apiKey := cfg.APIKey(providerName)
	if apiKey == "" {
		log.Warn("AI analysis not available: no API key configured")
		return o
	}
	provider, err := ai.NewProvider(context.Background(), providerName, apiKey, cfg.AI.Model)
	if err != nil {
		log.Warnf("AI analysis not available: %v", err)
		return o
	}
	o.provider = provider
	o.Analyzer = ai.NewAnalyzer(provider, cfg.AI.Model, float32(cfg.AI.Temperature), cfg.AI.MaxTokens, log)
	o.Dorker = ai.NewDorkGenerator(provider, cfg.AI.Model, outputDir, log)
	return o
}

// Close releases the AI provider's connection, if one was attached.
func (o *Orchestrator) Close() {
	if o.provider == nil {
		return
	}
	if err := o.provider.Close(); err != nil {
		o.Log.Warnf("Failed to close AI provider: %v", err)
	}
}

// LastState reports where the state machine ended up after Run.
func (o *Orchestrator) LastState() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	o.Log.Debugf("state: %s", s)
}

// Run executes one reconnaissance invocation. All step-local failures are
// recorded on the returned RunRecord; panics are recovered at this boundary
// and never crash the process.
func (o *Orchestrator) Run(ctx context.Context, req Request) (record *RunRecord) {
	start := time.Now()
	record = &RunRecord{
		ID:        uuid.NewString(),
		Tool:      req.Tool,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	defer func() {
		record.ExecutionTimeSeconds = time.Since(start).Seconds()
		if r := recover(); r != nil {
			record.Succeeded = false
			record.ErrorMessage = fmt.Sprintf("unexpected error: %v", r)
			o.setState(StateFailed)
			record.State = StateFailed
			o.Log.Errorf("Run aborted: %v", r)
		}
	}()

	// Validating: a bad target halts the run before any scan.
	o.setState(StateValidating)
	desc := target.Validate(req.Target)
	record.Target = desc
	for _, w := range desc.Warnings {
		o.Log.Warn(w)
	}
	if !desc.Valid() {
		record.ErrorMessage = fmt.Sprintf("invalid target: %s", req.Target)
		o.setState(StateFailed)
		record.State = StateFailed
		return record
	}
	o.Log.Infof("Target validated: %s (%s)", desc.Normalized, desc.Kind)

	style, err := styles.Resolve(req.StyleName)
	if err != nil {
		record.ErrorMessage = err.Error()
		o.setState(StateFailed)
		record.State = StateFailed
		return record
	}
	record.Style = style

	if req.Tool != "" && !o.Config.IsToolEnabled(req.Tool) {
		o.Log.Warnf("Tool %s is disabled in configuration", req.Tool)
	}

	// Scanning. A failed scan is still a reportable result: the run
	// proceeds to saving but skips analysis.
	o.setState(StateScanning)
	record.ScanOutcome = o.runScan(ctx, desc, style, req.Tool)

	if req.Analyze && record.ScanOutcome.Succeeded {
		if o.Analyzer == nil {
			o.Log.Warn("AI analysis requested but not available")
		} else {
			o.setState(StateAnalyzing)
			record.Analysis = o.Analyzer.Analyze(ctx, record.ScanOutcome, desc.Normalized, style)
			if !record.Analysis.Succeeded {
				o.Log.Warnf("Analysis omitted: %s", record.Analysis.ErrorMessage)
			}
		}
	}

	if (req.Dorks || style.IncludeDorks) && record.ScanOutcome.Succeeded {
		if o.Dorker == nil {
			o.Log.Warn("Dork generation requested but not available")
		} else {
			o.setState(StateGeneratingDorks)
			record.Dorks = o.Dorker.Generate(ctx, desc.Normalized, style.Name)
			if _, err := o.Dorker.Save(desc.Normalized, record.Dorks); err != nil {
				o.Log.Errorf("Failed to save dorks: %v", err)
			}
		}
	}

	record.Succeeded = record.ScanOutcome.Succeeded
	if !record.Succeeded {
		record.ErrorMessage = record.ScanOutcome.ErrorMessage
	}

	// Saving: write failures are logged, never fatal.
	o.setState(StateSaving)
	if path, err := o.saveRecord(record); err != nil {
		o.Log.Errorf("Failed to save results: %v", err)
	} else {
		o.Log.Infof("Results saved to: %s", path)
	}

	if record.Succeeded {
		o.setState(StateDone)
		record.State = StateDone
	} else {
		o.setState(StateFailed)
		record.State = StateFailed
	}
	o.Log.Infof("Reconnaissance completed in %.2f seconds", time.Since(start).Seconds())
	return record
}

func (o *Orchestrator) runScan(ctx context.Context, desc target.Descriptor, style styles.Profile, tool string) *recon.ScanOutcome {
	if err := o.Scanner.CheckInstallation(ctx); err != nil {
		return &recon.ScanOutcome{
			Target:       desc.Normalized,
			ToolName:     tool,
			ErrorMessage: err.Error(),
		}
	}

	toolCfg := o.Config.Tool(tool)
	timeout := time.Duration(style.TimeoutSeconds) * time.Second
	if toolCfg.TimeoutSeconds > 0 {
		timeout = time.Duration(toolCfg.TimeoutSeconds) * time.Second
	}
	flags := style.ToolFlags
	if len(toolCfg.DefaultFlags) > 0 {
		flags = mergeFlags(style, toolCfg.DefaultFlags)
	}

	scanName := fmt.Sprintf("%s_scan_%s_%s", tool, target.SanitizeFilename(desc.Normalized), shortID())
	return o.Scanner.RunScan(ctx, desc.Normalized, scanName, flags, timeout)
}

// mergeFlags unions the style's flags with configured defaults, dropping
// any module the style forbids.
func mergeFlags(style styles.Profile, extra []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range style.ToolFlags {
		if !seen[f] {
			out = append(out, f)
			seen[f] = true
		}
	}
	for _, f := range extra {
		if !seen[f] && style.ModulePermitted(f) {
			out = append(out, f)
			seen[f] = true
		}
	}
	return out
}

func (o *Orchestrator) saveRecord(record *RunRecord) (string, error) {
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return "", err
	}
	stamp := strings.ReplaceAll(strings.ReplaceAll(record.Timestamp, ":", "-"), " ", "_")
	name := fmt.Sprintf("recon_%s_%s.json", target.SanitizeFilename(record.Target.Normalized), stamp)
	path := filepath.Join(o.OutputDir, name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Summary renders the short console report shown after a run.
func (o *Orchestrator) Summary(record *RunRecord) string {
	var sb strings.Builder
	sb.WriteString("\n=== ReconAI Summary Report ===\n")
	fmt.Fprintf(&sb, "Target: %s\n", record.Target.Normalized)
	fmt.Fprintf(&sb, "Tool: %s\n", record.Tool)
	fmt.Fprintf(&sb, "Status: %s\n", statusWord(record.Succeeded))
	fmt.Fprintf(&sb, "Execution Time: %.2f seconds\n", record.ExecutionTimeSeconds)
	fmt.Fprintf(&sb, "Timestamp: %s\n\n", record.Timestamp)

	if record.ScanOutcome != nil {
		sb.WriteString(recon.FindingsSummary(record.ScanOutcome))
	}

	if record.Analysis != nil {
		if record.Analysis.Succeeded {
			sb.WriteString("\n=== AI Analysis ===\n")
			sb.WriteString(record.Analysis.RawText)
			sb.WriteString("\n")
		} else {
			fmt.Fprintf(&sb, "\nAI Analysis failed: %s\n", record.Analysis.ErrorMessage)
		}
	}

	if len(record.Dorks) > 0 {
		total := 0
		for _, list := range record.Dorks {
			total += len(list)
		}
		fmt.Fprintf(&sb, "\nGenerated %d dorks across %d categories\n", total, len(record.Dorks))
	}

	sb.WriteString("\n=== End of Report ===\n")
	return sb.String()
}

func statusWord(ok bool) string {
	if ok {
		return "SUCCESS"
	}
	return "FAILED"
}

func shortID() string {
	return uuid.NewString()[:8]
}
