package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"domain-check/internal/config"
	"domain-check/internal/database"
	"domain-check/internal/models"
	"domain-check/internal/scheduler"
	"domain-check/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler holds service dependencies
type Handler struct {
	cfg     *config.Config
	domains *services.DomainService
	whois   services.WhoisLookup
	webdav  *services.WebDAVService
	alerts  *services.AlertService
	auth    *services.AuthService
	sched   *scheduler.Scheduler
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, domains *services.DomainService, whois services.WhoisLookup,
	webdav *services.WebDAVService, alerts *services.AlertService, auth *services.AuthService,
	sched *scheduler.Scheduler) *Handler {
	return &Handler{
		cfg:     cfg,
		domains: domains,
		whois:   whois,
		webdav:  webdav,
		alerts:  alerts,
		auth:    auth,
		sched:   sched,
	}
}

// SetupRoutes configures all API routes. Login, client config, WHOIS and the
// manual cron trigger are public; everything else needs a session token.
func SetupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api")
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/validate", handler.ValidateToken)
		api.GET("/config", handler.GetClientConfig)
		api.GET("/whois/:domain", handler.QueryWhois)

		authed := api.Group("", AuthRequired(handler.auth))
		{
			authed.GET("/domains", handler.ListDomains)
			authed.POST("/domains", handler.SaveDomains)
			authed.PUT("/domains", handler.ReplaceDomains)
			authed.DELETE("/domains", handler.DeleteDomains)
			authed.GET("/domains/view", handler.DomainView)

			authed.GET("/settings", handler.GetSettings)
			authed.POST("/settings", handler.UpdateSettings)
			authed.GET("/notifications", handler.ListNotifications)

			authed.POST("/webdav/backup", handler.BackupToWebDAV)
			authed.GET("/webdav/backups", handler.ListWebDAVBackups)
			authed.POST("/webdav/restore", handler.RestoreFromWebDAV)
			authed.POST("/webdav/test", handler.TestWebDAV)
		}
	}

	r.Any("/cron", handler.RunCheck)
}

// Login exchanges the operator password for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if !h.auth.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token, err := h.auth.GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// ValidateToken reports whether the presented session token is still good.
func (h *Handler) ValidateToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if _, err := h.auth.ValidateToken(req.Token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ListDomains returns the full record set as the portable JSON array. This
// doubles as the export endpoint.
func (h *Handler) ListDomains(c *gin.Context) {
	records, err := h.domains.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// editRequest is the single-record edit form of POST /api/domains.
type editRequest struct {
	models.DomainRecord
	OriginalDomain string `json:"originalDomain"`
}

// SaveDomains handles POST /api/domains. An array body is a batch add; an
// object body carrying originalDomain is a single-record edit.
func (h *Handler) SaveDomains(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var batch []models.DomainRecord
	if err := json.Unmarshal(body, &batch); err == nil {
		h.addDomains(c, batch)
		return
	}

	var edit editRequest
	if err := json.Unmarshal(body, &edit); err != nil || edit.OriginalDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.editDomain(c, edit)
}

func (h *Handler) addDomains(c *gin.Context, batch []models.DomainRecord) {
	if len(batch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no domains submitted"})
		return
	}

	result, err := h.domains.Add(batch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"success": true,
		"message": fmt.Sprintf("added %d, failed %d", result.Added, len(result.Failures)),
	}
	if len(result.Failures) > 0 {
		response["errors"] = result.Failures
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) editDomain(c *gin.Context, edit editRequest) {
	err := h.domains.Edit(edit.OriginalDomain, edit.DomainRecord)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "domain": models.NormalizeDomainName(edit.Domain)})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "domain already exists"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
	case errors.Is(err, services.ErrMissingExpiration):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "subdomains require an expiration date"})
	case errors.Is(err, services.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain name"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ReplaceDomains handles PUT /api/domains: full import. The only validation
// is that the top level is an array.
func (h *Handler) ReplaceDomains(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records []models.DomainRecord
	if err := json.Unmarshal(body, &records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input must be an array"})
		return
	}

	count, err := h.domains.ReplaceAll(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// deleteRequest accepts the delete body shapes the frontend sends.
type deleteRequest struct {
	Domain  string   `json:"domain"`
	Domains []string `json:"domains"`
}

// DeleteDomains handles DELETE /api/domains with either a single domain, a
// domain list, or (legacy) a bare array body.
func (h *Handler) DeleteDomains(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var targets []string
	var bare []string
	if err := json.Unmarshal(body, &bare); err == nil {
		targets = bare
	} else {
		var req deleteRequest
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delete request"})
			return
		}
		targets = req.Domains
		if req.Domain != "" {
			targets = append(targets, req.Domain)
		}
	}

	cleaned := targets[:0]
	for _, d := range targets {
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no domains to delete"})
		return
	}

	deleted, err := h.domains.Delete(cleaned)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no matching domains found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("deleted %d domains", deleted),
		"deletedCount": deleted,
	})
}

// viewRecord decorates a record with its computed status for display.
type viewRecord struct {
	models.DomainRecord
	Status        models.Status `json:"status"`
	StatusColor   string        `json:"statusColor"`
	DaysRemaining *int          `json:"daysRemaining"`
	IsPrimary     bool          `json:"isPrimary"`
}

// DomainView returns one sorted, filtered, paginated display page plus the
// status summary of the filtered set. The pinned query parameter floats the
// caller's most recently touched domain to the top; it is caller state, the
// server keeps nothing between requests.
func (h *Handler) DomainView(c *gin.Context) {
	records, err := h.domains.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	threshold := h.cfg.Monitor.DaysThreshold
	today := time.Now().UTC()

	models.SortDomains(records, c.Query("pinned"), threshold, today)
	filtered := models.FilterDomains(records, models.ViewFilter{
		Group:  c.Query("group"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}, threshold, today)

	counts := map[string]int{}
	for i := range filtered {
		info := models.DomainStatus(filtered[i].Expiration(), threshold, today)
		counts[string(info.Status)]++
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageRecords, currentPage, totalPages := models.Paginate(filtered, page)

	view := make([]viewRecord, len(pageRecords))
	for i := range pageRecords {
		info := models.DomainStatus(pageRecords[i].Expiration(), threshold, today)
		view[i] = viewRecord{
			DomainRecord: pageRecords[i],
			Status:       info.Status,
			StatusColor:  info.Status.Color(),
			IsPrimary:    models.IsPrimaryDomain(pageRecords[i].Domain),
		}
		if info.DaysKnown {
			days := info.DaysRemaining
			view[i].DaysRemaining = &days
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"domains":    view,
		"page":       currentPage,
		"totalPages": totalPages,
		"total":      len(filtered),
		"counts": gin.H{
			"all":      len(filtered),
			"normal":   counts[string(models.StatusNormal)],
			"expiring": counts[string(models.StatusExpiring)],
			"expired":  counts[string(models.StatusExpired)],
		},
	})
}

// QueryWhois looks up WHOIS data for a primary domain. Results are
// cacheable for a day; a lookup with neither creation nor expiry date
// counts as not found.
func (h *Handler) QueryWhois(c *gin.Context) {
	domain := models.NormalizeDomainName(c.Param("domain"))
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path must be /api/whois/<domain>"})
		return
	}
	if !models.IsPrimaryDomain(domain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only primary domains can be queried"})
		return
	}

	info, err := h.whois.Lookup(domain)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "WHOIS lookup failed", "details": err.Error()})
		return
	}
	if info == nil || (info.CreationDate == "" && info.ExpiryDate == "") {
		c.JSON(http.StatusNotFound, gin.H{"error": "no WHOIS data for this domain"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": info})
}

// GetClientConfig returns the public branding and threshold the frontend
// needs before login.
func (h *Handler) GetClientConfig(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, gin.H{
		"siteName":      h.cfg.Site.Name,
		"siteIcon":      h.cfg.Site.Icon,
		"bgimgURL":      h.cfg.Site.BgImgURL,
		"githubURL":     h.cfg.Site.GithubURL,
		"blogURL":       h.cfg.Site.BlogURL,
		"blogName":      h.cfg.Site.BlogName,
		"daysThreshold": h.cfg.Monitor.DaysThreshold,
	})
}

// GetSettings returns the editable settings with their current values.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"monitor.days_threshold": h.cfg.Monitor.DaysThreshold,
		"monitor.check_interval": h.cfg.Monitor.CheckInterval,
		"site.name":              h.cfg.Site.Name,
		"site.icon":              h.cfg.Site.Icon,
		"site.bgimg_url":         h.cfg.Site.BgImgURL,
		"site.github_url":        h.cfg.Site.GithubURL,
		"site.blog_url":          h.cfg.Site.BlogURL,
		"site.blog_name":         h.cfg.Site.BlogName,
		"telegram.chat_id":       h.cfg.Notifications.Telegram.ChatID,
		"telegram.proxy":         h.cfg.Notifications.Telegram.Proxy,
		"webhook.url":            h.cfg.Notifications.Webhook.URL,
		"webdav.url":             h.cfg.WebDAV.URL,
		"webdav.user":            h.cfg.WebDAV.User,
		"webdav.auto_backup":     h.cfg.WebDAV.AutoBackup,
		"webdav.retention_days":  h.cfg.WebDAV.RetentionDays,
	})
}

// UpdateSettings persists setting overrides and applies them to the running
// configuration. A changed cron expression restarts the scheduler; a
// changed password re-hashes immediately.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var incoming map[string]interface{}
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previousInterval := h.cfg.Monitor.CheckInterval
	settings := make(map[string]string)
	for key, raw := range incoming {
		if !config.AllowedSettingKey(key) {
			continue
		}
		settings[key] = settingValue(raw)
	}

	db := database.GetDB()
	if db != nil {
		for key, value := range settings {
			db.Save(&models.Setting{Key: key, Value: value})
		}
	}

	config.ApplySettings(h.cfg, settings)

	if password, ok := settings["auth.password"]; ok && password != "" {
		if err := h.auth.SetPassword(password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update password"})
			return
		}
	}

	if h.sched != nil && h.cfg.Monitor.CheckInterval != previousInterval {
		if err := h.sched.Restart(h.cfg.Monitor.CheckInterval); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid cron expression: %v", err)})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "settings saved"})
}

func settingValue(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ListNotifications returns recent alert history, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusOK, []models.Notification{})
		return
	}

	var notifications []models.Notification
	if err := db.Order("sent_at desc").Limit(100).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// BackupToWebDAV uploads the current record set to the backup target.
func (h *Handler) BackupToWebDAV(c *gin.Context) {
	records, err := h.domains.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fileName, err := h.webdav.Backup(records)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "fileName": fileName})
}

// ListWebDAVBackups lists backup files on the target, newest first.
func (h *Handler) ListWebDAVBackups(c *gin.Context) {
	backups, err := h.webdav.ListBackups()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if backups == nil {
		backups = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

// RestoreFromWebDAV replaces the record set with a named backup's contents.
func (h *Handler) RestoreFromWebDAV(c *gin.Context) {
	var req struct {
		FileName string `json:"fileName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}

	records, err := h.webdav.Restore(req.FileName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	count, err := h.domains.ReplaceAll(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "fileName": req.FileName, "domainsCount": count})
}

// TestWebDAV probes a WebDAV target with submitted credentials.
func (h *Handler) TestWebDAV(c *gin.Context) {
	var req struct {
		URL      string `json:"url" binding:"required"`
		User     string `json:"user" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url, user and password are required"})
		return
	}

	ok := h.webdav.TestConnection(req.URL, req.User, req.Password)
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// RunCheck triggers the expiry sweep on demand, then the auto backup when
// one is configured. Mirrors what the scheduled job does.
func (h *Handler) RunCheck(c *gin.Context) {
	expiring, err := h.alerts.CheckExpiring()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	message := "no domains expiring soon"
	if len(expiring) > 0 {
		message = fmt.Sprintf("%d domains expiring soon", len(expiring))
	}
	if expiring == nil {
		expiring = []services.ExpiringDomain{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       message,
		"expiringCount": len(expiring),
		"domains":       expiring,
	})
}
