package main

import (
	"domain-check/internal/api"
	"domain-check/internal/config"
	"domain-check/internal/database"
	"domain-check/internal/models"
	"domain-check/internal/scheduler"
	"domain-check/internal/services"
	"domain-check/internal/storage"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// loadSettingsFromDB overlays persisted setting rows onto the configuration.
func loadSettingsFromDB(cfg *config.Config) {
	db := database.GetDB()
	if db == nil {
		return
	}

	var settings []models.Setting
	if err := db.Find(&settings).Error; err != nil {
		log.Printf("Warning: Failed to load settings from database: %v", err)
		return
	}
	if len(settings) == 0 {
		return
	}

	settingsMap := make(map[string]string)
	for _, s := range settings {
		settingsMap[s.Key] = s.Value
	}
	config.ApplySettings(cfg, settingsMap)

	log.Println("Settings loaded from database and applied to configuration")
}

func main() {
	// .env is optional, used for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully")

	// Load settings from database and override config
	loadSettingsFromDB(cfg)

	// Parse WHOIS timeout
	timeout, err := time.ParseDuration(cfg.Whois.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	// Initialize services
	store := storage.NewStore(cfg.Store.Path)
	whoisService := services.NewWhoisService(cfg.Whois.APIURL, timeout)
	notifyService := services.NewNotifyService(&cfg.Notifications)
	domainService := services.NewDomainService(store, whoisService)
	alertService := services.NewAlertService(domainService, notifyService, func() int {
		return cfg.Monitor.DaysThreshold
	})
	webdavService := services.NewWebDAVService(&cfg.WebDAV, &cfg.Site, timeout)

	authService, err := services.NewAuthService(cfg.Auth.Password, cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	// Initialize scheduler; the sweep notifies and then, when configured,
	// writes the automatic WebDAV backup
	sched := scheduler.NewScheduler(func() {
		expiring, err := alertService.CheckExpiring()
		if err != nil {
			log.Printf("Domain check failed: %v", err)
			return
		}
		log.Printf("Domain check done, %d expiring", len(expiring))

		if cfg.WebDAV.AutoBackup && webdavService.Configured() {
			records, err := domainService.List()
			if err != nil {
				log.Printf("Auto backup skipped: %v", err)
				return
			}
			if _, err := webdavService.Backup(records); err != nil {
				log.Printf("Auto backup failed: %v", err)
			}
		}
	})
	if err := sched.Start(cfg.Monitor.CheckInterval); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(api.CORS())

	// Setup API routes
	handler := api.NewHandler(cfg, domainService, whoisService, webdavService, alertService, authService, sched)
	api.SetupRoutes(r, handler)

	// Serve static files
	r.Static("/static", "./web/dist")

	// Serve frontend
	r.GET("/", func(c *gin.Context) {
		c.File("./web/dist/index.html")
	})

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
