package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jtmorrow/wedding-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config is loaded once at startup and never mutated afterwards. Consumers
// receive it by reference from main.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// AdminPasswordHash is the bcrypt hash of the shared admin password.
	AdminPasswordHash string

	// NotifyWebhookURL is the e-mail relay endpoint; empty disables outbound
	// notifications (they are logged instead).
	NotifyWebhookURL string
	NotifyAPIKey     string

	AllowedOrigins []string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "wedding"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "wedding"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyAPIKey:      getEnv("NOTIFY_API_KEY", ""),
		AllowedOrigins:    splitEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConnectDB opens the PostgreSQL connection and migrates the guest table.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.Guest{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}
