package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"domain-check/internal/config"
	"domain-check/internal/database"
	"domain-check/internal/models"

	"golang.org/x/net/proxy"
)

// Notifier is one delivery channel for expiry alerts.
type Notifier interface {
	Name() string
	Send(record *models.DomainRecord, daysRemaining int) error
}

// NotifyService fans an alert out to every enabled channel and records the
// outcome in the notification history.
type NotifyService struct {
	notifiers []Notifier
}

// NewNotifyService creates a notification service from the enabled channels.
func NewNotifyService(cfg *config.NotificationsConfig) *NotifyService {
	service := &NotifyService{}

	if cfg.Telegram.Enabled {
		service.notifiers = append(service.notifiers, NewTelegramNotifier(&cfg.Telegram))
	}
	if cfg.Webhook.Enabled {
		service.notifiers = append(service.notifiers, NewWebhookNotifier(&cfg.Webhook))
	}
	if cfg.Email.Enabled {
		service.notifiers = append(service.notifiers, NewEmailNotifier(&cfg.Email))
	}

	return service
}

// SendNotification delivers an expiry alert through all enabled channels.
// One successful channel is enough for the alert to count as sent.
func (s *NotifyService) SendNotification(record *models.DomainRecord, daysRemaining int) error {
	var lastErr error
	successCount := 0

	for _, notifier := range s.notifiers {
		if err := notifier.Send(record, daysRemaining); err != nil {
			log.Printf("%s notification failed for %s: %v", notifier.Name(), record.Domain, err)
			lastErr = err
			s.recordNotification(record, notifier, daysRemaining, "failed")
			continue
		}
		s.recordNotification(record, notifier, daysRemaining, "success")
		successCount++
	}

	if successCount > 0 {
		return nil
	}
	return lastErr
}

// recordNotification appends a history row; skipped when no DB is attached.
func (s *NotifyService) recordNotification(record *models.DomainRecord, notifier Notifier, daysRemaining int, status string) {
	db := database.GetDB()
	if db == nil {
		return
	}

	db.Create(&models.Notification{
		Domain:  record.Domain,
		Type:    notifier.Name(),
		Content: fmt.Sprintf("Domain %s expires in %d days", record.Domain, daysRemaining),
		Status:  status,
		SentAt:  time.Now(),
	})
}

// TelegramNotifier sends Telegram notifications, optionally through a SOCKS5
// proxy for hosts that cannot reach the Telegram API directly.
type TelegramNotifier struct {
	config *config.TelegramConfig
	client *http.Client
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	client := &http.Client{Timeout: 30 * time.Second}

	if cfg.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", cfg.Proxy, nil, proxy.Direct)
		if err != nil {
			log.Printf("Invalid Telegram SOCKS5 proxy %s: %v", cfg.Proxy, err)
		} else {
			client.Transport = &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					return dialer.Dial(network, addr)
				},
			}
		}
	}

	return &TelegramNotifier{config: cfg, client: client}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send sends a Telegram expiry alert.
func (t *TelegramNotifier) Send(record *models.DomainRecord, daysRemaining int) error {
	registrar := record.Registrar()
	if registrar == "" {
		registrar = "N/A"
	}
	account := "N/A"
	if record.RegisterAccount != nil && *record.RegisterAccount != "" {
		account = *record.RegisterAccount
	}

	message := fmt.Sprintf(`<b>🚨 Domain Expiry Alert 🚨</b>
====================
🌐 Domain: <code>%s</code>
♻️ Expires in <b>%d days</b>
📅 Expiration date: %s
🔗 Registrar: %s
👤 Account: <code>%s</code>`,
		record.Domain, daysRemaining, record.Expiration(), registrar, account)

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.config.BotToken)

	payload := map[string]interface{}{
		"chat_id":    t.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := t.client.Post(apiURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// WebhookNotifier posts a JSON payload to a configured URL.
type WebhookNotifier struct {
	config *config.WebhookConfig
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{config: cfg}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

// Send sends webhook notification
func (w *WebhookNotifier) Send(record *models.DomainRecord, daysRemaining int) error {
	payload := map[string]interface{}{
		"domain":          record.Domain,
		"days_remaining":  daysRemaining,
		"expiration_date": record.Expiration(),
		"registrar":       record.Registrar(),
		"groups":          record.GroupsRaw(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(w.config.URL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// EmailNotifier sends plain-text email alerts over SMTP.
type EmailNotifier struct {
	config *config.EmailConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

func (e *EmailNotifier) Name() string { return "email" }

// Send sends email notification
func (e *EmailNotifier) Send(record *models.DomainRecord, daysRemaining int) error {
	subject := fmt.Sprintf("Domain expiry alert: %s expires in %d days", record.Domain, daysRemaining)

	body := fmt.Sprintf(`Domain expiry alert

Domain: %s
Days remaining: %d
Expiration date: %s
Registrar: %s

Renew in time to avoid losing the domain.
`,
		record.Domain, daysRemaining, record.Expiration(), record.Registrar())

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", strings.Join(e.config.To, ","))
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", e.config.From, e.config.Password, e.config.SMTPHost)
	addr := fmt.Sprintf("%s:%d", e.config.SMTPHost, e.config.SMTPPort)

	if err := smtp.SendMail(addr, auth, e.config.From, e.config.To, []byte(message)); err != nil {
		// Some providers close the connection early after accepting the
		// message; the mail still goes out.
		if !strings.Contains(err.Error(), "short response") {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	return nil
}
