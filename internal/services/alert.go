package services

import (
	"fmt"
	"log"
	"time"

	"domain-check/internal/models"
)

// ExpiringDomain is one entry of a sweep report.
type ExpiringDomain struct {
	Domain         string `json:"domain"`
	ExpirationDate string `json:"expirationDate"`
	DaysRemaining  int    `json:"daysRemaining"`
	System         string `json:"system,omitempty"`
	Groups         string `json:"groups,omitempty"`
}

// AlertService runs the periodic expiry sweep. It reads the record set,
// classifies every record against the current threshold and alerts on the
// ones inside the expiring window. The sweep never mutates the store.
type AlertService struct {
	domains   *DomainService
	notify    *NotifyService
	threshold func() int
}

// NewAlertService creates the expiry sweep service. threshold is read on
// every sweep so settings changes apply without a restart.
func NewAlertService(domains *DomainService, notify *NotifyService, threshold func() int) *AlertService {
	return &AlertService{domains: domains, notify: notify, threshold: threshold}
}

// CheckExpiring sweeps all records and returns the ones in the expiring
// window. Records with missing or unparseable dates are skipped with a log
// line; they cannot expire on a schedule.
func (s *AlertService) CheckExpiring() ([]ExpiringDomain, error) {
	records, err := s.domains.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load domains: %w", err)
	}
	if len(records) == 0 {
		log.Println("No domains to check, skipping sweep")
		return nil, nil
	}

	thresholdDays := s.threshold()
	today := time.Now().UTC()
	var expiring []ExpiringDomain

	for i := range records {
		record := &records[i]
		info := models.DomainStatus(record.Expiration(), thresholdDays, today)

		switch info.Status {
		case models.StatusMissing, models.StatusInvalid:
			log.Printf("Skipping %s: unusable expiration date %q", record.Domain, record.Expiration())
			continue
		case models.StatusExpiring:
		default:
			continue
		}

		if s.notify != nil {
			if err := s.notify.SendNotification(record, info.DaysRemaining); err != nil {
				log.Printf("Failed to notify for %s: %v", record.Domain, err)
			}
		}

		expiring = append(expiring, ExpiringDomain{
			Domain:         record.Domain,
			ExpirationDate: record.Expiration(),
			DaysRemaining:  info.DaysRemaining,
			System:         record.Registrar(),
			Groups:         record.GroupsRaw(),
		})
	}

	return expiring, nil
}
