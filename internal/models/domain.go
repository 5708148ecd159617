package models

import (
	"regexp"
	"strings"
	"time"
)

// DomainRecord is the portable JSON shape of a tracked domain. Every field
// except Domain is nullable; dates are ISO YYYY-MM-DD strings. This is the
// exact shape persisted in the store file and returned by the export API.
type DomainRecord struct {
	Domain           string  `json:"domain"`
	RegistrationDate *string `json:"registrationDate"`
	ExpirationDate   *string `json:"expirationDate"`
	System           *string `json:"system"`
	SystemURL        *string `json:"systemURL"`
	RegisterAccount  *string `json:"registerAccount"`
	Groups           *string `json:"groups"`
	RenewalPeriod    *int    `json:"renewalPeriod"`
	RenewalUnit      *string `json:"renewalUnit"`
}

// Expiration returns the expiration date string, or "" when absent.
func (d *DomainRecord) Expiration() string {
	if d.ExpirationDate == nil {
		return ""
	}
	return *d.ExpirationDate
}

// Registrar returns the registrar display name, or "" when absent.
func (d *DomainRecord) Registrar() string {
	if d.System == nil {
		return ""
	}
	return *d.System
}

// GroupsRaw returns the raw comma-separated groups string, or "" when absent.
func (d *DomainRecord) GroupsRaw() string {
	if d.Groups == nil {
		return ""
	}
	return *d.Groups
}

// GroupTags parses the comma-separated groups string into trimmed tags.
// Empty tags are dropped; the stored string is never rewritten.
func (d *DomainRecord) GroupTags() []string {
	var tags []string
	for _, tag := range strings.Split(d.GroupsRaw(), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// HasGroupTag reports whether the parsed tag set contains name.
func (d *DomainRecord) HasGroupTag(name string) bool {
	for _, tag := range d.GroupTags() {
		if tag == name {
			return true
		}
	}
	return false
}

var domainLabelRe = regexp.MustCompile(`^([a-z0-9-]{1,63}\.)+[a-z]{2,}$`)

// ValidDomainName reports whether name looks like a domain: dot-separated
// alphanumeric labels with a letters-only TLD, no leading hyphen and no
// consecutive hyphens.
func ValidDomainName(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "-") || strings.Contains(name, "--") {
		return false
	}
	return domainLabelRe.MatchString(name)
}

// NormalizeDomainName lowercases a domain name. Normalization happens once,
// at validation; storage comparisons are exact-string afterwards.
func NormalizeDomainName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Notification is a sent-alert history row, persisted in the database.
type Notification struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	Domain  string    `json:"domain"`
	Type    string    `json:"type"`    // Channel (telegram/webhook/email)
	Content string    `json:"content"` // Message summary
	Status  string    `json:"status"`  // success/failed
	SentAt  time.Time `json:"sent_at"`
}

// Setting is a persisted configuration override.
type Setting struct {
	Key   string `gorm:"primarykey" json:"key"`
	Value string `json:"value"`
}
