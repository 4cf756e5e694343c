// Package target classifies and normalizes free-text scan targets.
package target

import (
	"math/big"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

// Kind is the classification of a target string.
type Kind string

const (
	KindIP           Kind = "ip"
	KindCIDR         Kind = "cidr"
	KindDomain       Kind = "domain"
	KindURL          Kind = "url"
	KindOrganization Kind = "organization"
	KindInvalid      Kind = "invalid"
)

// Descriptor is the validated form of a target. Created once per invocation
// and never mutated afterwards.
type Descriptor struct {
	Raw        string   `json:"raw"`
	Kind       Kind     `json:"kind"`
	Normalized string   `json:"normalized"`
	Warnings   []string `json:"warnings"`
}

// Valid reports whether the target was classified as something scannable.
func (d Descriptor) Valid() bool {
	return d.Kind != KindInvalid
}

// Labels of 1-63 alphanumeric/hyphen characters, no leading/trailing hyphen.
var domainPattern = regexp.MustCompile(
	`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`,
)

// Validate classifies raw input as an IP literal, CIDR block, domain, URL,
// or organization name, first match winning in that order. It has no side
// effects.
func Validate(raw string) Descriptor {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Descriptor{
			Raw:      raw,
			Kind:     KindInvalid,
			Warnings: []string{"Target cannot be empty"},
		}
	}

	d := Descriptor{Raw: trimmed, Normalized: trimmed}

	if addr, err := netip.ParseAddr(trimmed); err == nil {
		d.Kind = KindIP
		d.Normalized = addr.String()
		return d
	}

	if prefix, err := netip.ParsePrefix(trimmed); err == nil {
		masked := prefix.Masked()
		d.Kind = KindCIDR
		d.Normalized = masked.String()
		if n := addressCount(masked); n.Cmp(big.NewInt(1000)) > 0 {
			d.Warnings = append(d.Warnings, "Large network ("+n.String()+" addresses)")
		}
		return d
	}

	if domainPattern.MatchString(trimmed) {
		d.Kind = KindDomain
		d.Normalized = strings.ToLower(trimmed)
		if strings.HasPrefix(d.Normalized, "www.") {
			d.Warnings = append(d.Warnings, "Consider scanning root domain without 'www.'")
		}
		return d
	}

	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && u.Host != "" {
		d.Kind = KindURL
		d.Normalized = strings.ToLower(u.Host)
		d.Warnings = append(d.Warnings, "Using hostname from URL for scanning")
		return d
	}

	if len(trimmed) > 2 && !strings.ContainsAny(trimmed, `/\<>|`) {
		d.Kind = KindOrganization
		d.Warnings = append(d.Warnings, "Organization names may have limited tool support")
		return d
	}

	d.Kind = KindInvalid
	d.Warnings = append(d.Warnings, "Target format not recognized")
	return d
}

func addressCount(p netip.Prefix) *big.Int {
	hostBits := p.Addr().BitLen() - p.Bits()
	return new(big.Int).Lsh(big.NewInt(1), uint(hostBits))
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]+`)
var repeatedUnderscores = regexp.MustCompile(`_+`)

// SanitizeFilename makes a target string safe to embed in generated file
// names. Never returns an empty string.
func SanitizeFilename(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		s = "unnamed"
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
