package models

import "testing"

func TestIsPrimaryDomain_NoSuffixMatch(t *testing.T) {
	cases := []struct {
		domain  string
		primary bool
	}{
		{"example.com", true},
		{"example.net", true},
		{"www.example.com", false},
		{"a.b.c.example.com", false},
	}

	for _, tc := range cases {
		if got := IsPrimaryDomain(tc.domain); got != tc.primary {
			t.Errorf("IsPrimaryDomain(%q) = %v, want %v", tc.domain, got, tc.primary)
		}
	}
}

func TestIsPrimaryDomain_MultiLabelSuffixes(t *testing.T) {
	cases := []struct {
		domain  string
		primary bool
	}{
		// Suffix plus exactly one label is primary
		{"example.co.uk", true},
		{"example.com.cn", true},
		{"myproject.github.io", true},
		{"shop.vercel.app", true},
		// More than one label in front is a subdomain
		{"www.example.co.uk", false},
		{"api.myproject.github.io", false},
		// The bare suffix itself is not primary
		{"co.uk", false},
	}

	for _, tc := range cases {
		if got := IsPrimaryDomain(tc.domain); got != tc.primary {
			t.Errorf("IsPrimaryDomain(%q) = %v, want %v", tc.domain, got, tc.primary)
		}
	}
}

func TestIsPrimaryDomain_CaseInsensitive(t *testing.T) {
	domains := []string{"Example.COM", "example.co.uk", "WWW.Example.Co.UK", "sub.EXAMPLE.net"}
	for _, d := range domains {
		upper := IsPrimaryDomain(d)
		lower := IsPrimaryDomain(normalizeForTest(d))
		if upper != lower {
			t.Errorf("IsPrimaryDomain(%q) differs between cases: %v vs %v", d, upper, lower)
		}
	}
}

func normalizeForTest(d string) string {
	return NormalizeDomainName(d)
}

func TestIsPrimaryDomain_Rejects(t *testing.T) {
	for _, d := range []string{"", "localhost", "com"} {
		if IsPrimaryDomain(d) {
			t.Errorf("IsPrimaryDomain(%q) = true, want false", d)
		}
	}
}

func TestIsPrimaryDomain_FirstMatchWins(t *testing.T) {
	// blogspot.co.uk appears after co.uk in the table, so co.uk wins the
	// scan and foo.blogspot.co.uk counts three labels against a two-label
	// suffix. Deliberate first-match behavior, kept from the original table.
	if IsPrimaryDomain("foo.blogspot.co.uk") {
		t.Error("expected foo.blogspot.co.uk to classify as subdomain under first-match scan")
	}
	if !IsPrimaryDomain("blogspot.co.uk") {
		t.Error("expected blogspot.co.uk to classify as primary under first-match scan")
	}
}

func TestValidDomainName(t *testing.T) {
	valid := []string{"example.com", "sub.example.co.uk", "a1-b2.example.io", "Example.COM"}
	for _, d := range valid {
		if !ValidDomainName(d) {
			t.Errorf("ValidDomainName(%q) = false, want true", d)
		}
	}

	invalid := []string{"", "localhost", "-example.com", "ex--ample.com", "example.c0m", "example."}
	for _, d := range invalid {
		if ValidDomainName(d) {
			t.Errorf("ValidDomainName(%q) = true, want false", d)
		}
	}
}
