package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/farellandr/ticketbook/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPort            = "8080"
	defaultTokenExpiry     = 30 * time.Minute
	defaultMaxOpenConns    = 100
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultDBSSLMode       = "disable"
	tokenExpiryEnv         = "ACCESS_TOKEN_EXPIRE_MINUTES"
)

type Config struct {
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	Port          string
	JWTSecret     string
	TokenExpiry   time.Duration
	CORSOrigins   []string
	LogFile       string
	AdminEmail    string
	AdminPassword string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBSSLMode:     getEnv("DB_SSLMODE", defaultDBSSLMode),
		Port:          getEnv("PORT", defaultPort),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenExpiry:   defaultTokenExpiry,
		CORSOrigins:   parseCSV(os.Getenv("CORS_ORIGINS")),
		LogFile:       os.Getenv("LOG_FILE"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	if raw := os.Getenv(tokenExpiryEnv); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", tokenExpiryEnv, raw)
		}
		cfg.TokenExpiry = time.Duration(minutes) * time.Minute
	}

	if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "") {
		return nil, errors.New("either DATABASE_URL or DB_HOST and DB_NAME must be set")
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a libpq keyword string
// built from the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
	sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the users, events and bookings tables.
// Bookings reference users and events with ON DELETE CASCADE.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Event{}, &models.Booking{})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
