package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store drivers
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Auth providers
const (
	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port     string
	LogLevel string

	StoreDriver   string
	MongoURI      string
	MongoDB       string
	TxMaxAttempts int

	FirestoreProjectID      string
	FirebaseCredentialsPath string

	AuthProvider string
	JWTSecret    string
	TokenExpiry  time.Duration
	CORSOrigins  []string

	GeminiAPIKey string
	GeminiModel  string

	NotificationLocale string
	ReconcileSchedule  string
	ReconcileFix       bool

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDB:       getEnv("MONGO_DB", "campus_overflow"),
		TxMaxAttempts: getEnvInt("TX_MAX_ATTEMPTS", 8),

		FirestoreProjectID:      getEnv("FIRESTORE_PROJECT_ID", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		AuthProvider: strings.ToLower(getEnv("AUTH_PROVIDER", AuthLocal)),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenExpiry:  getEnvDuration("TOKEN_EXPIRY", 72*time.Hour),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		NotificationLocale: getEnv("NOTIFICATION_LOCALE", "ko"),
		ReconcileSchedule:  getEnv("RECONCILE_SCHEDULE", "@hourly"),
		ReconcileFix:       getEnvBool("RECONCILE_FIX", false),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   getEnv("SMTP_SENDER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
	}
}

// ErrMissingJWTSecret is returned by Validate when local auth has no signing key.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when AUTH_PROVIDER=local")

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.AuthProvider == AuthLocal && c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// SMTPEnabled reports whether mention e-mails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
