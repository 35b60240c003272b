package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jtmorrow/wedding-server/config"
	"github.com/jtmorrow/wedding-server/notify"
	"github.com/jtmorrow/wedding-server/routes"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database setup failed")
	}
	log.Info().Msg("connected to PostgreSQL and migrated")

	var notifier notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.NotifyWebhookURL, cfg.NotifyAPIKey)
	} else {
		notifier = notify.LogOnly{Log: log}
		log.Warn().Msg("NOTIFY_WEBHOOK_URL not set, notifications are log-only")
	}

	r := gin.Default()

	allowed := cfg.AllowedOrigins
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, o := range allowed {
				if origin == o {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("trusted proxies setup failed")
	}

	routes.SetupRoutes(r, db, cfg, notifier, log)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
