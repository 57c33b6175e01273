package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"restora-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback. Resolved per
// call so a value loaded from .env after process start is honored.
func JWTSecret() []byte {
	return []byte(getEnv("JWT_SECRET", "restora_super_secret_2024"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DBPath is the sqlite file, ":memory:" works for local experiments
func DBPath() string {
	return getEnv("DB_PATH", "restora.db")
}

// Port the HTTP server listens on
func Port() string {
	return getEnv("PORT", "8080")
}

// ReconcileInterval is the cadence of the bonus reconciliation job.
func ReconcileInterval() time.Duration {
	hours, err := strconv.Atoi(getEnv("RECONCILE_INTERVAL_HOURS", "6"))
	if err != nil || hours <= 0 {
		hours = 6
	}
	return time.Duration(hours) * time.Hour
}

// SMTP settings for outbound mail. Empty host means mail is only logged.
type SMTPConfig struct {
	Host string
	Port string
	From string
	User string
	Pass string
}

func SMTP() SMTPConfig {
	return SMTPConfig{
		Host: os.Getenv("SMTP_HOST"),
		Port: getEnv("SMTP_PORT", "587"),
		From: getEnv("SMTP_FROM", "noreply@restora.local"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
	}
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(DBPath()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
}

// Migrate applies the schema. Split out so tests can run it against their
// own in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Staff{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.DiscountCode{},
		&models.AdminCode{},
		&models.BonusPoints{},
		&models.BonusTransaction{},
		&models.Notification{},
	)
}
