package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/reconai/pkg/target"
)

// DorkGenerator produces search-engine queries tailored to a target. With a
// provider it merges AI-generated dorks into the template set; without one
// it serves templates only.
type DorkGenerator struct {
	provider  Provider
	model     string
	outputDir string
	log       *logrus.Entry
}

// NewDorkGenerator builds a generator. provider may be nil.
func NewDorkGenerator(provider Provider, model, outputDir string, log *logrus.Entry) *DorkGenerator {
	return &DorkGenerator{provider: provider, model: model, outputDir: outputDir, log: log}
}

const dorkSystemPrompt = `You are an expert in search-engine dorking for authorized OSINT reconnaissance.
Generate targeted Google search queries (dorks) for the given domain, categorized
by purpose: admin_portals, sensitive_files, directory_listings, technology_stack,
employee_info, api_endpoints, development, credentials.
Format your response as JSON with categories as keys and arrays of dorks as values.`

// Generate returns categorized dorks for the target. AI failures degrade to
// the template set.
func (g *DorkGenerator) Generate(ctx context.Context, targetName, styleName string) map[string][]string {
	g.log.Infof("Generating dorks for: %s", targetName)
	templates := TemplateDorks(targetName)
	if g.provider == nil {
		return templates
	}

	prompt := buildDorkPrompt(targetName, styleName)
	raw, err := g.provider.Complete(ctx, CompletionRequest{
		System:      dorkSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		g.log.Warnf("AI dork generation failed, using templates: %v", err)
		return templates
	}

	generated := ParseDorkResponse(raw)
	return mergeDorks(generated, templates)
}

func buildDorkPrompt(targetName, styleName string) string {
	guidelines := map[string]string{
		"stealth":    "Focus on passive information gathering that won't trigger alerts.",
		"aggressive": "Generate comprehensive dorks for deep reconnaissance. Include advanced operators.",
		"phishing":   "Focus on finding employee information, email addresses, and social profiles.",
		"quick":      "Generate the most effective dorks for rapid assessment.",
	}
	guide, ok := guidelines[styleName]
	if !ok {
		guide = "Generate comprehensive dorks."
	}
	return fmt.Sprintf("Generate targeted dorks for reconnaissance of: %s\nReconnaissance style: %s\nStyle guidelines: %s\nReturn results as a JSON object mapping category names to arrays of dork strings.",
		targetName, styleName, guide)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseDorkResponse extracts categorized dorks from a model reply: a JSON
// object when one is present, otherwise a line scan for dork-shaped text.
func ParseDorkResponse(raw string) map[string][]string {
	if m := jsonObjectPattern.FindString(raw); m != "" {
		var parsed map[string][]string
		if err := json.Unmarshal([]byte(m), &parsed); err == nil {
			return parsed
		}
	}
	return fallbackParseDorks(raw)
}

var dorkCategoryKeywords = []string{"admin", "sensitive", "directory", "technology", "employee", "api", "development", "credentials"}

func fallbackParseDorks(raw string) map[string][]string {
	dorks := make(map[string][]string)
	current := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if containsAny(lower, dorkCategoryKeywords) && !looksLikeDork(line) {
			current = strings.Trim(lower, ": ")
			current = strings.ReplaceAll(current, " ", "_")
			current = strings.ReplaceAll(current, "-", "_")
			continue
		}
		if looksLikeDork(line) {
			key := current
			if key == "" {
				key = "general"
			}
			dorks[key] = append(dorks[key], line)
		}
	}
	return dorks
}

func looksLikeDork(line string) bool {
	return strings.HasPrefix(line, "site:") ||
		strings.Contains(line, "inurl:") ||
		strings.Contains(line, "filetype:") ||
		strings.Contains(line, "intitle:")
}

// TemplateDorks is the fixed fallback table from the predefined catalog.
func TemplateDorks(targetName string) map[string][]string {
	root := strings.TrimPrefix(targetName, "www.")
	return map[string][]string{
		"admin_portals": {
			fmt.Sprintf("site:%s inurl:admin", targetName),
			fmt.Sprintf("site:%s inurl:login", targetName),
			fmt.Sprintf("site:%s inurl:wp-admin", targetName),
			fmt.Sprintf(`site:%s "admin panel"`, targetName),
		},
		"sensitive_files": {
			fmt.Sprintf("site:%s filetype:log", targetName),
			fmt.Sprintf("site:%s filetype:sql", targetName),
			fmt.Sprintf("site:%s filetype:env", targetName),
			fmt.Sprintf(`site:%s "config.php"`, targetName),
		},
		"directory_listings": {
			fmt.Sprintf(`site:%s intitle:"index of"`, targetName),
			fmt.Sprintf(`site:%s "parent directory"`, targetName),
		},
		"technology_stack": {
			fmt.Sprintf(`site:%s "powered by"`, targetName),
			fmt.Sprintf("site:%s inurl:phpmyadmin", targetName),
		},
		"employee_info": {
			fmt.Sprintf(`site:%s "staff" OR "employees" OR "team"`, targetName),
			fmt.Sprintf(`"@%s" email contact`, root),
		},
		"api_endpoints": {
			fmt.Sprintf("site:%s inurl:api", targetName),
			fmt.Sprintf("site:%s inurl:swagger", targetName),
		},
		"development": {
			fmt.Sprintf("site:%s inurl:dev", targetName),
			fmt.Sprintf("site:%s inurl:staging", targetName),
		},
		"credentials": {
			fmt.Sprintf(`site:%s "password" filetype:txt`, targetName),
			fmt.Sprintf(`site:%s ".htpasswd"`, targetName),
		},
	}
}

func mergeDorks(a, b map[string][]string) map[string][]string {
	merged := make(map[string][]string)
	for _, src := range []map[string][]string{a, b} {
		for cat, list := range src {
			seen := make(map[string]bool, len(merged[cat]))
			for _, d := range merged[cat] {
				seen[d] = true
			}
			for _, d := range list {
				if !seen[d] {
					merged[cat] = append(merged[cat], d)
					seen[d] = true
				}
			}
		}
	}
	return merged
}

// Save writes the dork set as a JSON artifact under <outputDir>/dorks.
func (g *DorkGenerator) Save(targetName string, dorks map[string][]string) (string, error) {
	dir := filepath.Join(g.outputDir, "dorks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	total := 0
	categories := make([]string, 0, len(dorks))
	for cat, list := range dorks {
		total += len(list)
		categories = append(categories, cat)
	}

	payload := map[string]any{
		"target":      targetName,
		"timestamp":   time.Now().Format("2006-01-02 15:04:05"),
		"total_dorks": total,
		"categories":  categories,
		"dorks":       dorks,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("dorks_%s_%s.json", target.SanitizeFilename(targetName), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	g.log.Infof("Dorks saved to: %s", path)
	return path, nil
}
