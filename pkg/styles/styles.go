// Package styles holds the fixed catalog of reconnaissance styles. A style
// bundles scanner flags, a timeout, an analysis prompt variant, and priority
// factors under one name.
package styles

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStyle is returned when a style name is not in the catalog.
var ErrUnknownStyle = errors.New("unknown reconnaissance style")

// Variant selects the tone of the AI analysis prompt.
type Variant string

const (
	StealthAnalysis       Variant = "stealth_analysis"
	ComprehensiveAnalysis Variant = "comprehensive_analysis"
	SocialEngineering     Variant = "social_engineering"
	QuickAssessment       Variant = "quick_assessment"
)

// Profile is one named reconnaissance configuration. Profiles are static;
// Resolve hands out copies.
type Profile struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	ToolFlags         []string `json:"tool_flags"`
	AggressiveModules bool     `json:"aggressive_modules"`
	IncludeDorks      bool     `json:"include_dorks"`
	TimeoutSeconds    int      `json:"timeout"`
	PromptVariant     Variant  `json:"prompt_variant"`
	PriorityFactors   []string `json:"priority_factors"`
	Intensity         string   `json:"intensity"`
}

// SampleSize is how many individual events the analysis prompt includes.
func (p Profile) SampleSize() int {
	if p.PromptVariant == ComprehensiveAnalysis {
		return 15
	}
	return 10
}

var catalog = map[string]Profile{
	"stealth": {
		Name:              "stealth",
		Description:       "Passive-only reconnaissance with minimal footprint",
		ToolFlags:         []string{"subdomain-enum", "dns-enum"},
		AggressiveModules: false,
		IncludeDorks:      false,
		TimeoutSeconds:    300,
		PromptVariant:     StealthAnalysis,
		PriorityFactors:   []string{"exposure_risk", "stealth_friendly"},
		Intensity:         "low",
	},
	"aggressive": {
		Name:              "aggressive",
		Description:       "Comprehensive deep scanning with all available modules",
		ToolFlags:         []string{"subdomain-enum", "dns-enum", "port-scan", "web-enum", "email-enum"},
		AggressiveModules: true,
		IncludeDorks:      true,
		TimeoutSeconds:    900,
		PromptVariant:     ComprehensiveAnalysis,
		PriorityFactors:   []string{"vulnerability_potential", "attack_surface", "asset_value"},
		Intensity:         "high",
	},
	"phishing": {
		Name:              "phishing",
		Description:       "Focused on email addresses, social media, and employee information",
		ToolFlags:         []string{"email-enum", "social-enum", "employee-enum"},
		AggressiveModules: false,
		IncludeDorks:      true,
		TimeoutSeconds:    600,
		PromptVariant:     SocialEngineering,
		PriorityFactors:   []string{"employee_exposure", "social_presence", "email_security"},
		Intensity:         "medium",
	},
	"quick": {
		Name:              "quick",
		Description:       "Fast overview scan for initial assessment",
		ToolFlags:         []string{"subdomain-enum"},
		AggressiveModules: false,
		IncludeDorks:      false,
		TimeoutSeconds:    180,
		PromptVariant:     QuickAssessment,
		PriorityFactors:   []string{"immediate_threats", "obvious_vulnerabilities"},
		Intensity:         "low",
	},
}

// Modules gated behind AggressiveModules.
var aggressiveModuleSet = map[string]bool{
	"port-scan":   true,
	"web-enum":    true,
	"vuln-scan":   true,
	"brute-force": true,
}

// Resolve returns the profile for name or ErrUnknownStyle.
func Resolve(name string) (Profile, error) {
	p, ok := catalog[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownStyle, name)
	}
	return p, nil
}

// ModulePermitted reports whether a module may be added to the style's scan
// beyond its own flag set, as configured tool defaults are. Only aggressive
// modules are refused.
func (p Profile) ModulePermitted(module string) bool {
	return p.AggressiveModules || !aggressiveModuleSet[module]
}

// ModuleAllowed reports whether a scanner module may run under the named
// style. Aggressive modules are refused outright when the style disables
// them; everything else must be listed in the style's flag set.
func ModuleAllowed(name, module string) bool {
	p, err := Resolve(name)
	if err != nil {
		return false
	}
	if !p.ModulePermitted(module) {
		return false
	}
	for _, f := range p.ToolFlags {
		if f == module {
			return true
		}
	}
	return false
}

// List returns all profiles sorted by name, for the styles command.
func List() []Profile {
	out := make([]Profile, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PromptAddendum is the style-specific instruction block appended to the
// analysis system preamble.
func (p Profile) PromptAddendum() string {
	switch p.PromptVariant {
	case StealthAnalysis:
		return `Analyze this reconnaissance data with a focus on STEALTH and LOW-PROFILE operations.
Prioritize targets with minimal monitoring, passive exploitation opportunities,
and information that can be gathered without direct interaction.
Avoid recommending active scanning, high-noise attack vectors, or anything
likely to trigger security alerts.`
	case SocialEngineering:
		return `Analyze this data with a focus on SOCIAL ENGINEERING and HUMAN-TARGETED attacks.
Prioritize employee information and contact details, social media presence,
email security and phishing opportunities, and organizational structure.
Focus on human-centric attack vectors.`
	case QuickAssessment:
		return `Provide a RAPID SECURITY ASSESSMENT of this reconnaissance data.
Focus on the most critical and immediate risks, quick wins, and high-impact
low-effort attack vectors. Keep the analysis concise but actionable.`
	default:
		return `Perform a COMPREHENSIVE SECURITY ANALYSIS of this reconnaissance data.
Evaluate the complete attack surface, all potential vulnerability vectors,
asset value and criticality, and risk prioritization across all findings.
Provide detailed technical analysis and a full range of recommendations.`
	}
}
