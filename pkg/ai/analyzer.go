package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/user/reconai/pkg/recon"
	"github.com/user/reconai/pkg/styles"
)

// Severity buckets for the priority heuristic, in display order.
var severityLevels = []string{"critical", "high", "medium", "low"}

// Result is the outcome of one analysis request. Sections and Priorities
// are heuristic extractions from RawText and advisory only; RawText is the
// authoritative record of what the model said.
type Result struct {
	Succeeded    bool                `json:"succeeded"`
	RawText      string              `json:"raw_text"`
	Sections     map[string]string   `json:"sections"`
	Priorities   map[string][]string `json:"priorities"`
	ErrorMessage string              `json:"error,omitempty"`
	ModelUsed    string              `json:"model_used"`
}

// Analyzer sends scan outcomes to a completion API and parses the reply.
type Analyzer struct {
	provider    Provider
	model       string
	temperature float32
	maxTokens   int
	log         *logrus.Entry
}

// NewAnalyzer builds an analyzer. Temperature stays low to bias the model
// toward factual output.
func NewAnalyzer(provider Provider, model string, temperature float32, maxTokens int, log *logrus.Entry) *Analyzer {
	if temperature <= 0 {
		temperature = 0.3
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Analyzer{
		provider:    provider,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		log:         log,
	}
}

const analysisSystemPrompt = `You are a cybersecurity expert analyzing reconnaissance scan results. Your job is to:

1. SUMMARIZE the key findings in a clear, concise manner
2. PRIORITIZE findings by risk level (Critical, High, Medium, Low)
3. IDENTIFY potential attack vectors and security concerns
4. PROVIDE actionable recommendations for both attackers (red team) and defenders (blue team)
5. HIGHLIGHT any particularly interesting or unusual findings

Structure your response as follows:
- Executive Summary (2-3 sentences)
- Key Findings (categorized by importance)
- Risk Assessment
- Attack Vectors
- Recommendations
- Notable Discoveries

Be practical, specific, and focus on actionable intelligence. Assume the user is conducting authorized security testing.`

// Analyze sends the outcome to the completion API. Every failure mode is
// converted into Result fields; Analyze never returns an error to the
// orchestrator.
func (a *Analyzer) Analyze(ctx context.Context, outcome *recon.ScanOutcome, targetName string, style styles.Profile) *Result {
	a.log.Infof("Starting AI analysis for target: %s", targetName)

	prompt := BuildAnalysisPrompt(outcome, targetName, style)
	raw, err := a.provider.Complete(ctx, CompletionRequest{
		System:      analysisSystemPrompt,
		Prompt:      prompt,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		a.log.Errorf("AI analysis failed: %v", err)
		return &Result{ErrorMessage: err.Error(), ModelUsed: a.model}
	}

	sections, priorities := ParseAnalysisText(raw)
	a.log.Info("AI analysis completed successfully")
	return &Result{
		Succeeded:  true,
		RawText:    raw,
		Sections:   sections,
		Priorities: priorities,
		ModelUsed:  a.model,
	}
}

// BuildAnalysisPrompt assembles the user prompt: style addendum, scan
// header, histogram, and a bounded sample of event lines. Failed scans get
// a troubleshooting request with no event data.
func BuildAnalysisPrompt(outcome *recon.ScanOutcome, targetName string, style styles.Profile) string {
	var sb strings.Builder

	sb.WriteString(style.PromptAddendum())
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Please analyze the following reconnaissance scan results for target: %s\n\n", targetName)
	fmt.Fprintf(&sb, "SCAN TOOL: %s\n", outcome.ToolName)
	fmt.Fprintf(&sb, "SCAN STATUS: %s\n\n", statusWord(outcome.Succeeded))

	if !outcome.Succeeded {
		fmt.Fprintf(&sb, "SCAN ERROR: %s\n", orUnknown(outcome.ErrorMessage))
		sb.WriteString("Please provide guidance on troubleshooting and alternative reconnaissance approaches.")
		return sb.String()
	}

	_, summary := recon.Summarize(outcome.Events)
	fmt.Fprintf(&sb, "SUMMARY: %s\n\n", summary)

	if len(outcome.EventTypeCounts) > 0 {
		sb.WriteString("EVENT TYPES DISCOVERED:\n")
		for _, tc := range recon.CountsByFrequency(outcome.EventTypeCounts, outcome.Events) {
			fmt.Fprintf(&sb, "- %s: %d\n", tc.Type, tc.Count)
		}
		sb.WriteString("\n")
	}

	if len(outcome.Events) > 0 {
		n := style.SampleSize()
		if n > len(outcome.Events) {
			n = len(outcome.Events)
		}
		fmt.Fprintf(&sb, "SAMPLE FINDINGS (first %d events):\n", n)
		for i, ev := range outcome.Events[:n] {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, recon.FormatEventLine(ev))
		}
		if len(outcome.Events) > n {
			fmt.Fprintf(&sb, "... and %d more events\n", len(outcome.Events)-n)
		}
	}

	sb.WriteString("\nPlease provide your analysis focusing on security implications and actionable recommendations.")
	return sb.String()
}

var sectionKeywords = []string{"summary", "findings", "risk", "attack", "recommendations", "notable", "assessment"}

// ParseAnalysisText splits free-form model output into named sections and
// severity buckets. The split is keyword-triggered and lossy; callers must
// treat it as advisory and keep the raw text authoritative.
func ParseAnalysisText(raw string) (map[string]string, map[string][]string) {
	sections := make(map[string]string)
	priorities := make(map[string][]string)
	for _, lvl := range severityLevels {
		priorities[lvl] = []string{}
	}

	var currentSection string
	var body []string
	flush := func() {
		if currentSection != "" {
			sections[currentSection] = strings.Join(body, "\n")
		}
		body = nil
	}

	currentSeverity := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if containsAny(lower, sectionKeywords) {
			flush()
			currentSection = line
		} else if currentSection != "" {
			body = append(body, line)
		}

		if sev := severityMarker(lower); sev != "" {
			currentSeverity = sev
		} else if currentSeverity != "" && isBullet(line) {
			priorities[currentSeverity] = append(priorities[currentSeverity], trimBullet(line))
		}
	}
	flush()

	return sections, priorities
}

func severityMarker(lower string) string {
	if !strings.Contains(lower, "priority") && !strings.Contains(lower, "risk") {
		return ""
	}
	for _, lvl := range severityLevels {
		if strings.Contains(lower, lvl) {
			return lvl
		}
	}
	return ""
}

func isBullet(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '-', '*':
		return true
	}
	if strings.HasPrefix(line, "•") {
		return true
	}
	// Numbered list: "1. ..." style.
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i < len(line) && line[i] == '.'
}

func trimBullet(line string) string {
	line = strings.TrimLeft(line, "-*• ")
	if i := strings.Index(line, ". "); i >= 0 && i < 4 && allDigits(line[:i]) {
		line = line[i+2:]
	}
	return strings.TrimSpace(line)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func statusWord(ok bool) string {
	if ok {
		return "SUCCESS"
	}
	return "FAILED"
}

func orUnknown(msg string) string {
	if msg == "" {
		return "Unknown error"
	}
	return msg
}
