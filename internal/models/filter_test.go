package models

import (
	"testing"
	"time"
)

var filterToday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tagged(domain, expiration, groups string) DomainRecord {
	r := rec(domain, expiration)
	if groups != "" {
		r.Groups = str(groups)
	}
	return r
}

func TestFilterDomains_Empty(t *testing.T) {
	records := []DomainRecord{rec("a.com", "2024-06-01"), rec("b.com", "2024-06-01")}

	filtered := FilterDomains(records, ViewFilter{}, 30, filterToday)
	if len(filtered) != 2 {
		t.Errorf("empty filter kept %d of 2 records", len(filtered))
	}
}

func TestFilterDomains_PrimaryGroup(t *testing.T) {
	records := []DomainRecord{rec("a.com", "2024-06-01"), rec("b.a.com", "2024-06-01")}

	filtered := FilterDomains(records, ViewFilter{Group: GroupPrimary}, 30, filterToday)
	if len(filtered) != 1 || filtered[0].Domain != "a.com" {
		t.Errorf("primary group filter = %v, want [a.com]", domainsOf(filtered))
	}

	filtered = FilterDomains(records, ViewFilter{Group: GroupSubdomain}, 30, filterToday)
	if len(filtered) != 1 || filtered[0].Domain != "b.a.com" {
		t.Errorf("subdomain group filter = %v, want [b.a.com]", domainsOf(filtered))
	}
}

func TestFilterDomains_UngroupedAndCustomGroup(t *testing.T) {
	records := []DomainRecord{
		tagged("a.com", "2024-06-01", "work, personal"),
		tagged("b.com", "2024-06-01", "  "),
		rec("c.com", "2024-06-01"),
	}

	ungrouped := FilterDomains(records, ViewFilter{Group: GroupUngrouped}, 30, filterToday)
	if len(ungrouped) != 2 {
		t.Errorf("ungrouped filter = %v, want b.com and c.com", domainsOf(ungrouped))
	}

	work := FilterDomains(records, ViewFilter{Group: "work"}, 30, filterToday)
	if len(work) != 1 || work[0].Domain != "a.com" {
		t.Errorf("custom group filter = %v, want [a.com]", domainsOf(work))
	}
}

func TestFilterDomains_Status(t *testing.T) {
	records := []DomainRecord{
		rec("expired.com", "2023-12-01"),
		rec("normal.com", "2024-06-01"),
	}

	filtered := FilterDomains(records, ViewFilter{Status: "expired"}, 30, filterToday)
	if len(filtered) != 1 || filtered[0].Domain != "expired.com" {
		t.Errorf("status filter = %v, want [expired.com]", domainsOf(filtered))
	}
}

func TestFilterDomains_Search(t *testing.T) {
	a := tagged("example.com", "2024-06-01", "infra")
	a.System = str("Cloudflare")
	records := []DomainRecord{a, rec("other.net", "2024-06-01")}

	for _, term := range []string{"EXAMPLE", "cloudflare", "infra"} {
		filtered := FilterDomains(records, ViewFilter{Search: term}, 30, filterToday)
		if len(filtered) != 1 || filtered[0].Domain != "example.com" {
			t.Errorf("search %q = %v, want [example.com]", term, domainsOf(filtered))
		}
	}
}

func TestFilterDomains_Compose(t *testing.T) {
	records := []DomainRecord{
		tagged("a.com", "2023-12-01", "work"),
		tagged("b.com", "2024-06-01", "work"),
		tagged("c.com", "2023-12-01", "home"),
	}

	filtered := FilterDomains(records, ViewFilter{Group: "work", Status: "expired"}, 30, filterToday)
	if len(filtered) != 1 || filtered[0].Domain != "a.com" {
		t.Errorf("composed filter = %v, want [a.com]", domainsOf(filtered))
	}
}

func TestPaginate(t *testing.T) {
	records := make([]DomainRecord, 30)
	for i := range records {
		records[i] = rec("d.com", "")
	}

	page, current, total := Paginate(records, 2)
	if len(page) != PageSize || current != 2 || total != 3 {
		t.Errorf("page 2: len=%d current=%d total=%d", len(page), current, total)
	}

	page, current, _ = Paginate(records, 3)
	if len(page) != 30-2*PageSize || current != 3 {
		t.Errorf("last page: len=%d current=%d", len(page), current)
	}

	// Out-of-range page resets to 1
	page, current, _ = Paginate(records, 99)
	if current != 1 || len(page) != PageSize {
		t.Errorf("out-of-range page: len=%d current=%d, want full page 1", len(page), current)
	}

	page, current, total = Paginate(nil, 1)
	if len(page) != 0 || current != 1 || total != 0 {
		t.Errorf("empty set: len=%d current=%d total=%d", len(page), current, total)
	}
}

func TestGroupTags(t *testing.T) {
	r := tagged("a.com", "", " work ,, personal,work ")
	tags := r.GroupTags()
	if len(tags) != 3 || tags[0] != "work" || tags[1] != "personal" || tags[2] != "work" {
		t.Errorf("GroupTags = %v", tags)
	}
	if !r.HasGroupTag("personal") || r.HasGroupTag("missing") {
		t.Error("HasGroupTag mismatch")
	}
}
