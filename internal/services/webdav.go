package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"domain-check/internal/config"
	"domain-check/internal/models"
)

// backupFolder is the collection all backups live under on the WebDAV host.
const backupFolder = "domain-check-backups"

var backupFileRe = regexp.MustCompile(`domain-check-backup-[\d-]+\.json`)

// backupPayload is the on-WebDAV backup file format.
type backupPayload struct {
	Version    string                `json:"version"`
	BackupTime string                `json:"backupTime"`
	Domains    []models.DomainRecord `json:"domains"`
	Site       config.SiteConfig     `json:"site"`
}

// WebDAVService backs up and restores the domain record set against a
// WebDAV collection using basic auth. All calls are bounded by the client
// timeout; the service never retries.
type WebDAVService struct {
	cfg    *config.WebDAVConfig
	site   *config.SiteConfig
	client *http.Client
}

// NewWebDAVService creates a new WebDAV backup service.
func NewWebDAVService(cfg *config.WebDAVConfig, site *config.SiteConfig, timeout time.Duration) *WebDAVService {
	return &WebDAVService{
		cfg:    cfg,
		site:   site,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the backup target is fully set up.
func (s *WebDAVService) Configured() bool {
	return s.cfg.URL != "" && s.cfg.User != "" && s.cfg.Password != ""
}

func (s *WebDAVService) folderURL() string {
	base := s.cfg.URL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + backupFolder + "/"
}

func (s *WebDAVService) request(method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.cfg.User, s.cfg.Password)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.client.Do(req)
}

// ensureFolder creates the backup collection if it does not exist yet.
func (s *WebDAVService) ensureFolder() error {
	folder := s.folderURL()

	resp, err := s.request("PROPFIND", folder, nil, map[string]string{"Depth": "0"})
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusMultiStatus {
		return nil
	}

	resp, err = s.request("MKCOL", folder, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("MKCOL returned status %d", resp.StatusCode)
	}
	log.Printf("Created WebDAV backup folder %s", backupFolder)
	return nil
}

// Backup uploads the record set as a dated backup file and returns its name.
// Old backups past the retention window are swept afterwards, best-effort.
func (s *WebDAVService) Backup(records []models.DomainRecord) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("WebDAV is not configured")
	}
	if err := s.ensureFolder(); err != nil {
		return "", fmt.Errorf("failed to prepare backup folder: %w", err)
	}

	payload := backupPayload{
		Version:    "1.0",
		BackupTime: time.Now().UTC().Format(time.RFC3339),
		Domains:    records,
		Site:       *s.site,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("domain-check-backup-%s.json", time.Now().Format("2006-01-02"))
	resp, err := s.request(http.MethodPut, s.folderURL()+fileName, bytes.NewReader(data),
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return "", fmt.Errorf("WebDAV upload failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("WebDAV upload returned status %d", resp.StatusCode)
	}

	log.Printf("WebDAV backup written: %s/%s", backupFolder, fileName)
	s.cleanupOldBackups()

	return backupFolder + "/" + fileName, nil
}

// Restore downloads a backup file and returns the record set it holds.
func (s *WebDAVService) Restore(fileName string) ([]models.DomainRecord, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("WebDAV is not configured")
	}
	if !backupFileRe.MatchString(fileName) {
		return nil, fmt.Errorf("invalid backup file name: %s", fileName)
	}

	resp, err := s.request(http.MethodGet, s.folderURL()+fileName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download backup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backup download returned status %d", resp.StatusCode)
	}

	var payload backupPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid backup file: %w", err)
	}
	if payload.Domains == nil {
		return nil, fmt.Errorf("backup file has no domain list")
	}

	return payload.Domains, nil
}

// ListBackups returns the backup file names on the server, newest first.
func (s *WebDAVService) ListBackups() ([]string, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("WebDAV is not configured")
	}

	propfind := `<?xml version="1.0" encoding="utf-8"?>
<D:propfind xmlns:D="DAV:">
  <D:prop>
    <D:displayname/>
    <D:getcontentlength/>
    <D:getlastmodified/>
  </D:prop>
</D:propfind>`

	resp, err := s.request("PROPFIND", s.folderURL(), strings.NewReader(propfind),
		map[string]string{"Depth": "1", "Content-Type": "application/xml"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("PROPFIND returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	names := ExtractBackupNames(string(body))
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// ExtractBackupNames pulls the unique backup file names out of a PROPFIND
// response body. The dated naming scheme makes a full XML parse unnecessary.
func ExtractBackupNames(listing string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range backupFileRe.FindAllString(listing, -1) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// cleanupOldBackups deletes backups older than the retention window. The
// date embedded in the file name is the authority, not server mtimes.
func (s *WebDAVService) cleanupOldBackups() {
	retention := s.cfg.RetentionDays
	if retention <= 0 {
		retention = 7
	}
	cutoff := time.Now().AddDate(0, 0, -retention).Format("2006-01-02")

	backups, err := s.ListBackups()
	if err != nil {
		log.Printf("WebDAV cleanup skipped: %v", err)
		return
	}

	for _, fileName := range backups {
		date := strings.TrimSuffix(strings.TrimPrefix(fileName, "domain-check-backup-"), ".json")
		if date >= cutoff {
			continue
		}
		resp, err := s.request(http.MethodDelete, s.folderURL()+fileName, nil, nil)
		if err != nil {
			log.Printf("Failed to delete old backup %s: %v", fileName, err)
			continue
		}
		resp.Body.Close()
		log.Printf("Deleted expired backup %s", fileName)
	}
}

// TestConnection probes a WebDAV URL with the given credentials.
func (s *WebDAVService) TestConnection(url, user, password string) bool {
	req, err := http.NewRequest("PROPFIND", url, nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(user, password)
	req.Header.Set("Depth", "0")

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusMultiStatus
}
