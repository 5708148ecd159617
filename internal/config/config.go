package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Values come from three
// layers: built-in defaults, the YAML config file, then environment
// variables. Persisted settings from the database overlay on top of that at
// startup and on every settings save (see ApplySettings).
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Store         StoreConfig         `yaml:"store"`
	Auth          AuthConfig          `yaml:"auth"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Whois         WhoisConfig         `yaml:"whois"`
	WebDAV        WebDAVConfig        `yaml:"webdav"`
	Site          SiteConfig          `yaml:"site"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug/release
}

// DatabaseConfig represents the settings/notification database
type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite
	Path string `yaml:"path"`
}

// StoreConfig locates the JSON domain record store
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig represents the operator password and token signing secret
type AuthConfig struct {
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"jwt_secret"`
}

// MonitorConfig represents the expiry sweep configuration
type MonitorConfig struct {
	CheckInterval string `yaml:"check_interval"` // Cron expression
	DaysThreshold int    `yaml:"days_threshold"`
}

// WhoisConfig represents the WHOIS API collaborator
type WhoisConfig struct {
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
}

// WebDAVConfig represents the backup target
type WebDAVConfig struct {
	URL           string `yaml:"url"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	AutoBackup    bool   `yaml:"auto_backup"`
	RetentionDays int    `yaml:"retention_days"`
}

// SiteConfig represents client-visible branding
type SiteConfig struct {
	Name      string `yaml:"name"`
	Icon      string `yaml:"icon"`
	BgImgURL  string `yaml:"bgimg_url"`
	GithubURL string `yaml:"github_url"`
	BlogURL   string `yaml:"blog_url"`
	BlogName  string `yaml:"blog_name"`
}

// NotificationsConfig represents notification configuration
type NotificationsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Email    EmailConfig    `yaml:"email"`
}

// TelegramConfig represents Telegram notification configuration
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	Proxy    string `yaml:"proxy"` // optional SOCKS5 address
}

// WebhookConfig represents webhook notification configuration
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// EmailConfig represents email notification configuration
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	From     string   `yaml:"from"`
	Password string   `yaml:"password"`
	To       []string `yaml:"to"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: "3000", Mode: "release"},
		Database: DatabaseConfig{Type: "sqlite", Path: "data/domain-check.db"},
		Store:    StoreConfig{Path: "data/domains.json"},
		Auth:     AuthConfig{Password: "123123", JWTSecret: "change-this-in-production"},
		Monitor:  MonitorConfig{CheckInterval: "0 9,21 * * *", DaysThreshold: 30},
		Whois:    WhoisConfig{Timeout: "10s"},
		WebDAV:   WebDAVConfig{RetentionDays: 7},
		Site: SiteConfig{
			Name: "Domain Check",
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, then
// applies environment overrides. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides config values from the environment. The variable names
// match the original deployment surface.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Auth.Password, "PASSWORD")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setInt(&cfg.Monitor.DaysThreshold, "DAYS")
	setString(&cfg.Monitor.CheckInterval, "CRON_SCHEDULE")
	setString(&cfg.Site.Name, "SITENAME")
	setString(&cfg.Site.Icon, "ICON")
	setString(&cfg.Site.BgImgURL, "BGIMG")
	setString(&cfg.Site.GithubURL, "GITHUB_URL")
	setString(&cfg.Site.BlogURL, "BLOG_URL")
	setString(&cfg.Site.BlogName, "BLOG_NAME")
	setString(&cfg.Notifications.Telegram.ChatID, "TGID")
	setString(&cfg.Notifications.Telegram.BotToken, "TGTOKEN")
	setString(&cfg.Whois.APIURL, "WHOIS_API_URL")
	setString(&cfg.WebDAV.URL, "WEBDAV_URL")
	setString(&cfg.WebDAV.User, "WEBDAV_USER")
	setString(&cfg.WebDAV.Password, "WEBDAV_PASS")

	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		cfg.Notifications.Telegram.Enabled = true
	}
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// SettingKeys lists the persisted setting keys a settings save may write.
// Anything else in the request body is dropped.
var SettingKeys = []string{
	"auth.password",
	"monitor.days_threshold",
	"monitor.check_interval",
	"site.name",
	"site.icon",
	"site.bgimg_url",
	"site.github_url",
	"site.blog_url",
	"site.blog_name",
	"telegram.bot_token",
	"telegram.chat_id",
	"telegram.proxy",
	"webhook.url",
	"webdav.url",
	"webdav.user",
	"webdav.password",
	"webdav.auto_backup",
	"webdav.retention_days",
}

// AllowedSettingKey reports whether key may be persisted as a setting.
func AllowedSettingKey(key string) bool {
	for _, k := range SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ApplySettings overlays persisted settings onto the configuration. Empty
// values are ignored so a blank row never clears an env-provided secret.
func ApplySettings(cfg *Config, settings map[string]string) {
	for key, val := range settings {
		if strings.TrimSpace(val) == "" {
			continue
		}
		switch key {
		case "auth.password":
			cfg.Auth.Password = val
		case "monitor.days_threshold":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.Monitor.DaysThreshold = n
			}
		case "monitor.check_interval":
			cfg.Monitor.CheckInterval = val
		case "site.name":
			cfg.Site.Name = val
		case "site.icon":
			cfg.Site.Icon = val
		case "site.bgimg_url":
			cfg.Site.BgImgURL = val
		case "site.github_url":
			cfg.Site.GithubURL = val
		case "site.blog_url":
			cfg.Site.BlogURL = val
		case "site.blog_name":
			cfg.Site.BlogName = val
		case "telegram.bot_token":
			cfg.Notifications.Telegram.BotToken = val
			cfg.Notifications.Telegram.Enabled = cfg.Notifications.Telegram.ChatID != ""
		case "telegram.chat_id":
			cfg.Notifications.Telegram.ChatID = val
			cfg.Notifications.Telegram.Enabled = cfg.Notifications.Telegram.BotToken != ""
		case "telegram.proxy":
			cfg.Notifications.Telegram.Proxy = val
		case "webhook.url":
			cfg.Notifications.Webhook.URL = val
			cfg.Notifications.Webhook.Enabled = true
		case "webdav.url":
			cfg.WebDAV.URL = val
		case "webdav.user":
			cfg.WebDAV.User = val
		case "webdav.password":
			cfg.WebDAV.Password = val
		case "webdav.auto_backup":
			cfg.WebDAV.AutoBackup = val == "true"
		case "webdav.retention_days":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.WebDAV.RetentionDays = n
			}
		}
	}
}
