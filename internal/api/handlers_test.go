package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"domain-check/internal/config"
	"domain-check/internal/services"
	"domain-check/internal/storage"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "domains.json")

	store := storage.NewStore(cfg.Store.Path)
	domains := services.NewDomainService(store, nil)
	alerts := services.NewAlertService(domains, nil, func() int {
		return cfg.Monitor.DaysThreshold
	})
	webdav := services.NewWebDAVService(&cfg.WebDAV, &cfg.Site, time.Second)

	auth, err := services.NewAuthService(cfg.Auth.Password, cfg.Auth.JWTSecret)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	r := gin.New()
	r.Use(CORS())
	SetupRoutes(r, NewHandler(cfg, domains, nil, webdav, alerts, auth, nil))

	token := loginToken(t, r, cfg.Auth.Password)
	return r, token
}

func loginToken(t *testing.T, r *gin.Engine, password string) string {
	t.Helper()
	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"password":%q}`, password)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login body %q: %v", w.Body.String(), err)
	}
	return resp.Token
}

func do(r *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, "", http.MethodPost, "/api/auth/login", `{"password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password returned %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r, token := newTestRouter(t)

	if w := do(r, "", http.MethodGet, "/api/domains", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token returned %d", w.Code)
	}
	if w := do(r, "garbage", http.MethodGet, "/api/domains", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token returned %d", w.Code)
	}
	if w := do(r, token, http.MethodGet, "/api/domains", ""); w.Code != http.StatusOK {
		t.Fatalf("valid token returned %d", w.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, "", http.MethodGet, "/api/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("config returned %d", w.Code)
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("config body: %v", err)
	}
	if cfg["siteName"] != "Domain Check" {
		t.Errorf("siteName = %v", cfg["siteName"])
	}

	w = do(r, "", http.MethodGet, "/cron", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cron returned %d: %s", w.Code, w.Body.String())
	}
	var sweep struct {
		Success       bool `json:"success"`
		ExpiringCount int  `json:"expiringCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sweep); err != nil || !sweep.Success {
		t.Fatalf("cron body %q: %v", w.Body.String(), err)
	}
	if sweep.ExpiringCount != 0 {
		t.Errorf("empty store should have 0 expiring, got %d", sweep.ExpiringCount)
	}
}

func TestDomainLifecycle(t *testing.T) {
	r, token := newTestRouter(t)

	future := time.Now().UTC().AddDate(0, 0, 200).Format("2006-01-02")
	soon := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	add := fmt.Sprintf(`[
		{"domain":"example.com","expirationDate":%q},
		{"domain":"soon.org","expirationDate":%q},
		{"domain":"example.com","expirationDate":%q}
	]`, future, soon, future)
	w := do(r, token, http.MethodPost, "/api/domains", add)
	if w.Code != http.StatusOK {
		t.Fatalf("add returned %d: %s", w.Code, w.Body.String())
	}
	var addResp struct {
		Success bool `json:"success"`
		Errors  []struct {
			Domain string `json:"domain"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &addResp); err != nil || !addResp.Success {
		t.Fatalf("add body %q: %v", w.Body.String(), err)
	}
	if len(addResp.Errors) != 1 || addResp.Errors[0].Reason != "duplicate" {
		t.Fatalf("errors = %+v, want one duplicate", addResp.Errors)
	}

	// edit rename onto an existing name conflicts
	edit := fmt.Sprintf(`{"originalDomain":"soon.org","domain":"example.com","expirationDate":%q}`, soon)
	if w := do(r, token, http.MethodPost, "/api/domains", edit); w.Code != http.StatusConflict {
		t.Fatalf("conflicting edit returned %d", w.Code)
	}

	// view puts the closer expiration first and counts by status
	w = do(r, token, http.MethodGet, "/api/domains/view?page=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("view returned %d", w.Code)
	}
	var view struct {
		Domains []struct {
			Domain string `json:"domain"`
			Status string `json:"status"`
		} `json:"domains"`
		Total  int `json:"total"`
		Counts struct {
			Expiring int `json:"expiring"`
			Normal   int `json:"normal"`
		} `json:"counts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("view body: %v", err)
	}
	if view.Total != 2 || len(view.Domains) != 2 {
		t.Fatalf("view total = %d, domains = %+v", view.Total, view.Domains)
	}
	if view.Domains[0].Domain != "soon.org" || view.Domains[0].Status != "expiring" {
		t.Errorf("first view row = %+v, want expiring soon.org", view.Domains[0])
	}
	if view.Counts.Expiring != 1 || view.Counts.Normal != 1 {
		t.Errorf("counts = %+v", view.Counts)
	}

	// delete one, then the export shows the survivor only
	w = do(r, token, http.MethodDelete, "/api/domains", `{"domain":"soon.org"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", w.Code, w.Body.String())
	}
	var del struct {
		DeletedCount int `json:"deletedCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &del); err != nil || del.DeletedCount != 1 {
		t.Fatalf("delete body %q: %v", w.Body.String(), err)
	}

	if w := do(r, token, http.MethodDelete, "/api/domains", `{"domain":"soon.org"}`); w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete returned %d", w.Code)
	}

	w = do(r, token, http.MethodGet, "/api/domains", "")
	var records []struct {
		Domain string `json:"domain"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("export body: %v", err)
	}
	if len(records) != 1 || records[0].Domain != "example.com" {
		t.Fatalf("export = %+v", records)
	}
}

func TestImportReplacesEverything(t *testing.T) {
	r, token := newTestRouter(t)

	seed := `[{"domain":"old.com","expirationDate":"2030-01-01"}]`
	if w := do(r, token, http.MethodPost, "/api/domains", seed); w.Code != http.StatusOK {
		t.Fatalf("seed returned %d", w.Code)
	}

	if w := do(r, token, http.MethodPut, "/api/domains", `{"domain":"x.com"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("non-array import returned %d", w.Code)
	}

	w := do(r, token, http.MethodPut, "/api/domains", `[{"domain":"a.com"},{"domain":"b.com"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("import returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Count != 2 {
		t.Fatalf("import body %q: %v", w.Body.String(), err)
	}

	w = do(r, token, http.MethodGet, "/api/domains", "")
	var records []struct {
		Domain string `json:"domain"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("export body: %v", err)
	}
	if len(records) != 2 || records[0].Domain != "a.com" {
		t.Fatalf("export after import = %+v", records)
	}
}
