package services

import (
	"path/filepath"
	"testing"
	"time"

	"domain-check/internal/models"
	"domain-check/internal/storage"
)

func dateFromNow(days int) *string {
	s := time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
	return &s
}

func TestCheckExpiring_WindowOnly(t *testing.T) {
	store := storage.NewStore(filepath.Join(t.TempDir(), "domains.json"))
	domains := NewDomainService(store, nil)
	seed(t, domains,
		models.DomainRecord{Domain: "soon.com", ExpirationDate: dateFromNow(10)},
		models.DomainRecord{Domain: "later.com", ExpirationDate: dateFromNow(200)},
		models.DomainRecord{Domain: "gone.com", ExpirationDate: dateFromNow(-5)},
		models.DomainRecord{Domain: "nodate.com"},
		models.DomainRecord{Domain: "baddate.com", ExpirationDate: str("soon")},
	)

	alerts := NewAlertService(domains, nil, func() int { return 30 })

	expiring, err := alerts.CheckExpiring()
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}

	if len(expiring) != 1 || expiring[0].Domain != "soon.com" {
		t.Fatalf("expiring = %+v, want only soon.com", expiring)
	}
	if expiring[0].DaysRemaining != 10 {
		t.Errorf("days remaining = %d, want 10", expiring[0].DaysRemaining)
	}
}

func TestCheckExpiring_ThresholdReadPerSweep(t *testing.T) {
	store := storage.NewStore(filepath.Join(t.TempDir(), "domains.json"))
	domains := NewDomainService(store, nil)
	seed(t, domains, models.DomainRecord{Domain: "soon.com", ExpirationDate: dateFromNow(10)})

	threshold := 5
	alerts := NewAlertService(domains, nil, func() int { return threshold })

	expiring, err := alerts.CheckExpiring()
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(expiring) != 0 {
		t.Fatalf("threshold 5 should not flag a 10-day domain, got %+v", expiring)
	}

	threshold = 30
	expiring, err = alerts.CheckExpiring()
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(expiring) != 1 {
		t.Fatalf("threshold 30 should flag the domain, got %+v", expiring)
	}
}

func TestCheckExpiring_EmptyStore(t *testing.T) {
	store := storage.NewStore(filepath.Join(t.TempDir(), "domains.json"))
	alerts := NewAlertService(NewDomainService(store, nil), nil, func() int { return 30 })

	expiring, err := alerts.CheckExpiring()
	if err != nil {
		t.Fatalf("CheckExpiring: %v", err)
	}
	if len(expiring) != 0 {
		t.Errorf("empty store should yield no alerts, got %+v", expiring)
	}
}

func TestExtractBackupNames(t *testing.T) {
	listing := `<D:multistatus>
	  <D:href>/dav/domain-check-backups/domain-check-backup-2024-01-05.json</D:href>
	  <D:displayname>domain-check-backup-2024-01-05.json</D:displayname>
	  <D:href>/dav/domain-check-backups/domain-check-backup-2024-01-03.json</D:href>
	  <D:href>/dav/domain-check-backups/notes.txt</D:href>
	</D:multistatus>`

	names := ExtractBackupNames(listing)
	if len(names) != 2 {
		t.Fatalf("names = %v, want 2 unique backups", names)
	}
	if names[0] != "domain-check-backup-2024-01-05.json" || names[1] != "domain-check-backup-2024-01-03.json" {
		t.Errorf("names = %v", names)
	}
}
