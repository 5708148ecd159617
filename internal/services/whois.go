package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"domain-check/internal/models"
)

// WhoisInfo is the narrow WHOIS result the repository consumes. Dates are
// normalized to ISO YYYY-MM-DD; empty fields were not present upstream.
type WhoisInfo struct {
	Domain       string `json:"domain"`
	CreationDate string `json:"creationDate,omitempty"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	Registrar    string `json:"registrar,omitempty"`
	RegistrarURL string `json:"registrarUrl,omitempty"`
}

// WhoisLookup is the collaborator interface the repository enriches through.
// Lookups are best-effort: an error or nil result degrades to "no data".
type WhoisLookup interface {
	Lookup(domain string) (*WhoisInfo, error)
}

// WhoisService queries a WHOIS HTTP API. Calls are bounded by the configured
// timeout and never retried; callers treat failures as missing data.
type WhoisService struct {
	APIURL string
	client *http.Client
}

// NewWhoisService creates a new WHOIS service
func NewWhoisService(apiURL string, timeout time.Duration) *WhoisService {
	return &WhoisService{
		APIURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Lookup queries WHOIS information for a domain.
func (s *WhoisService) Lookup(domain string) (*WhoisInfo, error) {
	if s.APIURL == "" {
		return nil, fmt.Errorf("WHOIS API URL not configured")
	}

	apiURL, err := url.Parse(s.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Add("domain", domain)
	apiURL.RawQuery = params.Encode()

	resp, err := s.client.Get(apiURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query WHOIS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("WHOIS API returned status %d", resp.StatusCode)
	}

	// The API wraps results as {code, msg, data}
	var apiResponse struct {
		Code int                    `json:"code"`
		Msg  string                 `json:"msg"`
		Data map[string]interface{} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse WHOIS response: %w", err)
	}

	if apiResponse.Code != 0 {
		return nil, fmt.Errorf("WHOIS API error: %s", apiResponse.Msg)
	}

	result := apiResponse.Data
	if result == nil {
		return nil, fmt.Errorf("no data in WHOIS response")
	}

	info := &WhoisInfo{Domain: domain}

	if registrar, ok := result["registrar"].(string); ok {
		info.Registrar = registrar
	}
	if registrarURL, ok := result["registrarUrl"].(string); ok {
		info.RegistrarURL = registrarURL
	}
	if expiryStr, ok := result["expirationDate"].(string); ok {
		info.ExpiryDate = normalizeWhoisDate(expiryStr)
	}
	if createdStr, ok := result["creationDate"].(string); ok {
		info.CreationDate = normalizeWhoisDate(createdStr)
	}

	return info, nil
}

// normalizeWhoisDate reduces an upstream date to ISO YYYY-MM-DD, or ""
// when it cannot be parsed.
func normalizeWhoisDate(dateStr string) string {
	t, ok := models.ParseRecordDate(dateStr)
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
