package models

import (
	"strings"
	"time"
)

// Group pseudo-filters. Any other non-empty group value selects records
// whose parsed tag set contains it.
const (
	GroupAll       = "all"
	GroupUngrouped = "ungrouped"
	GroupPrimary   = "primary"
	GroupSubdomain = "subdomain"
)

// PageSize is the fixed number of records per display page.
const PageSize = 12

// ViewFilter narrows a record set for display. Zero values pass everything.
// Criteria compose with AND, applied group, then status, then search.
type ViewFilter struct {
	Group  string
	Status string
	Search string
}

// FilterDomains returns the records matching the filter. The input slice is
// not modified.
func FilterDomains(records []DomainRecord, filter ViewFilter, thresholdDays int, today time.Time) []DomainRecord {
	filtered := records

	switch filter.Group {
	case "", GroupAll:
	case GroupUngrouped:
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return strings.TrimSpace(d.GroupsRaw()) == ""
		})
	case GroupPrimary:
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return IsPrimaryDomain(d.Domain)
		})
	case GroupSubdomain:
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return !IsPrimaryDomain(d.Domain)
		})
	default:
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return d.HasGroupTag(filter.Group)
		})
	}

	if filter.Status != "" {
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return string(DomainStatus(d.Expiration(), thresholdDays, today).Status) == filter.Status
		})
	}

	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		filtered = keep(filtered, func(d *DomainRecord) bool {
			return strings.Contains(strings.ToLower(d.Domain), term) ||
				strings.Contains(strings.ToLower(d.Registrar()), term) ||
				strings.Contains(strings.ToLower(d.GroupsRaw()), term)
		})
	}

	return filtered
}

func keep(records []DomainRecord, match func(*DomainRecord) bool) []DomainRecord {
	kept := make([]DomainRecord, 0, len(records))
	for i := range records {
		if match(&records[i]) {
			kept = append(kept, records[i])
		}
	}
	return kept
}

// Paginate slices one display page out of records. An out-of-range page
// resets to page 1. Returns the page contents, the resolved page number and
// the total page count.
func Paginate(records []DomainRecord, page int) ([]DomainRecord, int, int) {
	totalPages := (len(records) + PageSize - 1) / PageSize
	if page < 1 || page > totalPages {
		page = 1
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if start >= len(records) {
		return nil, page, totalPages
	}
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], page, totalPages
}
