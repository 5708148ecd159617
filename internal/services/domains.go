package services

import (
	"fmt"
	"log"

	"domain-check/internal/models"
	"domain-check/internal/storage"
)

// AddFailure reports why one record of a batch add was rejected.
type AddFailure struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// AddResult summarizes a batch add. Partial success is normal: accepted
// records are persisted, rejected ones show up in Failures.
type AddResult struct {
	Added    int          `json:"added"`
	Failures []AddFailure `json:"failures,omitempty"`
}

// DomainService owns the canonical domain record set. All mutations go
// through the store's update lock, so concurrent requests queue instead of
// losing writes to read-modify-write races.
type DomainService struct {
	store *storage.Store
	whois WhoisLookup
}

// NewDomainService creates a new domain repository service. whois may be nil
// to disable add-time enrichment.
func NewDomainService(store *storage.Store, whois WhoisLookup) *DomainService {
	return &DomainService{store: store, whois: whois}
}

// List returns the full record snapshot, unfiltered and unsorted.
func (s *DomainService) List() ([]models.DomainRecord, error) {
	return s.store.Load()
}

// Add appends a batch of new records. Each candidate is normalized and
// validated independently; primary domains without an expiration date get a
// best-effort WHOIS enrichment first. The updated set is persisted once.
func (s *DomainService) Add(candidates []models.DomainRecord) (*AddResult, error) {
	result := &AddResult{}

	err := s.store.Update(func(records []models.DomainRecord) ([]models.DomainRecord, error) {
		existing := make(map[string]bool, len(records))
		for _, r := range records {
			existing[r.Domain] = true
		}

		for _, candidate := range candidates {
			if candidate.Domain == "" {
				continue
			}
			candidate.Domain = models.NormalizeDomainName(candidate.Domain)

			if !models.ValidDomainName(candidate.Domain) {
				result.Failures = append(result.Failures, AddFailure{candidate.Domain, ReasonInvalidDomain})
				continue
			}
			if existing[candidate.Domain] {
				result.Failures = append(result.Failures, AddFailure{candidate.Domain, ReasonDuplicate})
				continue
			}

			if models.IsPrimaryDomain(candidate.Domain) && candidate.ExpirationDate == nil {
				s.enrich(&candidate)
			}

			if candidate.ExpirationDate == nil || *candidate.ExpirationDate == "" {
				result.Failures = append(result.Failures, AddFailure{candidate.Domain, ReasonMissingExpiration})
				continue
			}

			records = append(records, candidate)
			existing[candidate.Domain] = true
			result.Added++
		}

		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// enrich fills registration metadata from WHOIS. Failures only log; the add
// continues and falls through to the missing-expiration check.
func (s *DomainService) enrich(record *models.DomainRecord) {
	if s.whois == nil {
		return
	}

	info, err := s.whois.Lookup(record.Domain)
	if err != nil {
		log.Printf("WHOIS enrichment failed for %s: %v", record.Domain, err)
		return
	}
	if info == nil {
		return
	}

	if info.CreationDate != "" && record.RegistrationDate == nil {
		record.RegistrationDate = &info.CreationDate
	}
	if info.ExpiryDate != "" {
		record.ExpirationDate = &info.ExpiryDate
	}
	if info.Registrar != "" && record.System == nil {
		record.System = &info.Registrar
	}
	if info.RegistrarURL != "" && record.SystemURL == nil {
		record.SystemURL = &info.RegistrarURL
	}
}

// Edit replaces the record keyed by originalDomain. Renaming to a name held
// by a different record is a conflict; a subdomain result must keep an
// expiration date.
func (s *DomainService) Edit(originalDomain string, updated models.DomainRecord) error {
	originalDomain = models.NormalizeDomainName(originalDomain)
	updated.Domain = models.NormalizeDomainName(updated.Domain)

	if !models.ValidDomainName(updated.Domain) {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, updated.Domain)
	}
	if !models.IsPrimaryDomain(updated.Domain) && (updated.ExpirationDate == nil || *updated.ExpirationDate == "") {
		return ErrMissingExpiration
	}

	return s.store.Update(func(records []models.DomainRecord) ([]models.DomainRecord, error) {
		target := -1
		for i, r := range records {
			if r.Domain == updated.Domain && r.Domain != originalDomain {
				return nil, fmt.Errorf("%w: %s", ErrConflict, updated.Domain)
			}
			if r.Domain == originalDomain {
				target = i
			}
		}
		if target < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, originalDomain)
		}

		records[target] = updated
		return records, nil
	})
}

// Delete removes every record whose domain appears in domains. A batch
// mixing matched and unmatched names still deletes the matched ones; only a
// batch matching nothing fails.
func (s *DomainService) Delete(domains []string) (int, error) {
	toDelete := make(map[string]bool, len(domains))
	for _, d := range domains {
		if d != "" {
			toDelete[models.NormalizeDomainName(d)] = true
		}
	}

	deleted := 0
	err := s.store.Update(func(records []models.DomainRecord) ([]models.DomainRecord, error) {
		kept := records[:0]
		for _, r := range records {
			if toDelete[r.Domain] {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		if deleted == 0 {
			return nil, ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ReplaceAll overwrites the whole record set. Import and restore are trusted
// explicit actions, so no per-record validation happens here.
func (s *DomainService) ReplaceAll(records []models.DomainRecord) (int, error) {
	if records == nil {
		records = []models.DomainRecord{}
	}
	if err := s.store.Save(records); err != nil {
		return 0, err
	}
	return len(records), nil
}
