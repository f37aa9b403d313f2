package main

import (
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Shweta-Mathanker/womanSafetyDTI/broker"
	"github.com/Shweta-Mathanker/womanSafetyDTI/coordinator"
	"github.com/Shweta-Mathanker/womanSafetyDTI/handlers"
	"github.com/Shweta-Mathanker/womanSafetyDTI/initializers"
	"github.com/Shweta-Mathanker/womanSafetyDTI/middleware"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/notify"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/sms"
	"github.com/Shweta-Mathanker/womanSafetyDTI/repository"
	"github.com/Shweta-Mathanker/womanSafetyDTI/websocket"
)

func main() {
	// Optional local .env; production config comes from real env vars.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dbURL)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		log.Printf("DB connection failed: %v, retrying in 2s...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("Migration driver error:", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		log.Fatal("Migration init error:", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Migration failed:", err)
	}

	// Alert channel: boot proceeds without it, SOS reports 503 until it is
	// configured.
	alertsCfg := initializers.LoadAlertsConfig()
	var sender notify.Sender
	if alertsCfg.Ready() {
		sender = sms.NewTwilioSender(alertsCfg.AccountSID, alertsCfg.AuthToken, alertsCfg.From, alertsCfg.SendTimeout)
		slog.Info("alert channel ready", "roster", len(alertsCfg.Roster))
	} else {
		slog.Warn("alert channel not configured; SOS requests will be rejected")
	}
	dispatcher := notify.NewDispatcher(sender, alertsCfg.Roster, alertsCfg.SendTimeout, slog.Default())

	hub := broker.NewHub()
	coord := coordinator.New(hub, dispatcher, slog.Default())
	markersRepo := repository.NewMarkersRepository(db)

	markersHandler := handlers.NewMarkersHandler(markersRepo, coord)
	sosHandler := handlers.NewSosHandler(coord)

	if os.Getenv("GIN_MODE") == "release" || strings.ToLower(os.Getenv("APP_ENV")) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(gin.Recovery())

	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		parts := strings.Split(trustedProxies, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit())

	r.GET("/health", handlers.HealthCheck(hub))
	r.GET("/ws", websocket.ServeWS(hub))

	r.POST("/markers", markersHandler.CreateMarker)
	r.GET("/markers", markersHandler.GetMarkers)
	r.DELETE("/markers", markersHandler.DeleteMarker)

	r.POST("/sos", middleware.SosRateLimit(), sosHandler.TriggerSos)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server error:", err)
	}
}
