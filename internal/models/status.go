package models

import (
	"math"
	"time"
)

// Status classifies a record by how close its expiration date is.
type Status string

const (
	StatusMissing  Status = "missing"
	StatusInvalid  Status = "invalid"
	StatusNormal   Status = "normal"
	StatusExpiring Status = "expiring"
	StatusExpired  Status = "expired"
)

// Color returns the fixed display color associated with a status. Consumers
// (frontend cards, notification templates) depend on these exact values.
func (s Status) Color() string {
	switch s {
	case StatusNormal:
		return "#2ecc71"
	case StatusExpiring:
		return "#f39c12"
	case StatusExpired:
		return "#e74c3c"
	default:
		return "#95a5a6"
	}
}

// StatusInfo is the computed expiry state of a record. DaysRemaining is only
// meaningful when DaysKnown is true (missing/invalid dates have no count).
type StatusInfo struct {
	Status        Status
	DaysRemaining int
	DaysKnown     bool
}

// expirationDateFormats are tried in order when parsing stored dates.
var expirationDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// ParseRecordDate parses a stored date string in any of the accepted formats.
func ParseRecordDate(dateStr string) (time.Time, bool) {
	for _, format := range expirationDateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DomainStatus computes the expiry status of an expiration date string
// against a warning threshold in days. Both the expiration date and today
// are normalized to UTC midnight so the remaining-day count is a calendar
// difference, independent of time of day.
func DomainStatus(expirationDate string, thresholdDays int, today time.Time) StatusInfo {
	if expirationDate == "" {
		return StatusInfo{Status: StatusMissing}
	}

	expiry, ok := ParseRecordDate(expirationDate)
	if !ok {
		return StatusInfo{Status: StatusInvalid}
	}

	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Ceil(expiry.Sub(todayMidnight).Hours() / 24))

	info := StatusInfo{DaysRemaining: days, DaysKnown: true}
	switch {
	case days <= 0:
		info.Status = StatusExpired
	case days <= thresholdDays:
		info.Status = StatusExpiring
	default:
		info.Status = StatusNormal
	}
	return info
}
