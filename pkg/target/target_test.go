package target

import (
	"strings"
	"testing"
)

func TestValidateClassification(t *testing.T) {
	cases := []struct {
		in         string
		kind       Kind
		normalized string
	}{
		{"192.168.1.1", KindIP, "192.168.1.1"},
		{"2001:0db8::0001", KindIP, "2001:db8::1"},
		{"192.168.1.5/24", KindCIDR, "192.168.1.0/24"},
		{"example.com", KindDomain, "example.com"},
		{"Sub.Example.COM", KindDomain, "sub.example.com"},
		{"https://Example.com/path", KindURL, "example.com"},
		{"Acme Corp", KindOrganization, "Acme Corp"},
		{"", KindInvalid, ""},
		{"<>", KindInvalid, ""},
	}

	for _, c := range cases {
		got := Validate(c.in)
		if got.Kind != c.kind {
			t.Errorf("Validate(%q) kind = %s, want %s", c.in, got.Kind, c.kind)
			continue
		}
		if c.kind != KindInvalid && got.Normalized != c.normalized {
			t.Errorf("Validate(%q) normalized = %q, want %q", c.in, got.Normalized, c.normalized)
		}
	}
}

func TestValidateWarnings(t *testing.T) {
	www := Validate("www.example.com")
	if www.Kind != KindDomain {
		t.Fatalf("expected domain, got %s", www.Kind)
	}
	if len(www.Warnings) != 1 || !strings.Contains(www.Warnings[0], "root domain") {
		t.Errorf("expected root-domain warning, got %v", www.Warnings)
	}

	big := Validate("10.0.0.0/8")
	if big.Kind != KindCIDR {
		t.Fatalf("expected cidr, got %s", big.Kind)
	}
	if len(big.Warnings) != 1 || !strings.Contains(big.Warnings[0], "Large network") {
		t.Errorf("expected large-network warning, got %v", big.Warnings)
	}

	small := Validate("192.168.1.0/24")
	if len(small.Warnings) != 0 {
		t.Errorf("/24 should not warn, got %v", small.Warnings)
	}

	u := Validate("http://example.com")
	if u.Kind != KindURL || len(u.Warnings) != 1 {
		t.Errorf("expected url with one warning, got %s %v", u.Kind, u.Warnings)
	}

	org := Validate("Acme Corp")
	if len(org.Warnings) != 1 || !strings.Contains(org.Warnings[0], "limited tool support") {
		t.Errorf("expected limited-support warning, got %v", org.Warnings)
	}

	invalid := Validate("bad/target here")
	if invalid.Kind != KindInvalid {
		t.Fatalf("expected invalid, got %s", invalid.Kind)
	}
	if invalid.Valid() {
		t.Error("invalid descriptor reported Valid()")
	}
}

func TestValidateEmptyAlwaysInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if got := Validate(in); got.Kind != KindInvalid {
			t.Errorf("Validate(%q) = %s, want invalid", in, got.Kind)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"example.com", "example.com"},
		{"10.0.0.0/8", "10.0.0.0_8"},
		{"a b:c/d", "a_b_c_d"},
		{"///", "unnamed"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("a", 300))
	if len(long) != 200 {
		t.Errorf("expected truncation to 200, got %d", len(long))
	}
}
