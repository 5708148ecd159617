package models

import (
	"sort"
	"strings"
	"time"
)

// statusPriority orders statuses for display: expired first, then expiring,
// then normal, then everything else (missing/invalid dates).
func statusPriority(s Status) int {
	switch s {
	case StatusExpired:
		return 1
	case StatusExpiring:
		return 2
	case StatusNormal:
		return 3
	default:
		return 4
	}
}

// SortDomains orders records in place for display. The order is recomputed
// on every fetch; nothing about it is persisted. Keys, in priority:
//
//  1. A pinned domain (the caller's most recently touched record) first.
//  2. Status priority, expired < expiring < normal < other.
//  3. Within normal, primary domains before subdomains.
//  4. Case-insensitive registrar name, empty last.
func SortDomains(records []DomainRecord, pinned string, thresholdDays int, today time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]

		if pinned != "" {
			if a.Domain == pinned {
				return b.Domain != pinned
			}
			if b.Domain == pinned {
				return false
			}
		}

		pa := statusPriority(DomainStatus(a.Expiration(), thresholdDays, today).Status)
		pb := statusPriority(DomainStatus(b.Expiration(), thresholdDays, today).Status)
		if pa != pb {
			return pa < pb
		}

		if pa == statusPriority(StatusNormal) {
			primaryA := IsPrimaryDomain(a.Domain)
			primaryB := IsPrimaryDomain(b.Domain)
			if primaryA != primaryB {
				return primaryA
			}
		}

		return lessRegistrar(a.Registrar(), b.Registrar())
	})
}

// lessRegistrar compares registrar names case-insensitively, empty last.
func lessRegistrar(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return strings.ToLower(a) < strings.ToLower(b)
}
