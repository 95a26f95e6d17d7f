package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret            string
	JWTExpireMinutes     string
	JWTRefreshExpireDays string

	// Server
	ServerPort string

	// Super Admin
	SuperAdminEmail    string
	SuperAdminPassword string

	// Email Configuration
	EmailFrom     string
	EmailFromName string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPUseTLS    bool

	// Frontend URL
	FrontendURL string
}

// defaultJWTSecret is the development fallback. Running with it in
// production is a misconfiguration; see JWTSecretConfigured.
const defaultJWTSecret = "your-secret-key-change-this"

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "talenthub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:            getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpireMinutes:     getEnv("JWT_EXPIRE_MINUTES", "60"),
		JWTRefreshExpireDays: getEnv("JWT_REFRESH_EXPIRE_DAYS", "7"),

		// Server
		ServerPort: getEnv("SERVER_PORT", "8080"),

		// Super Admin
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@talenthub.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "Admin123!"),

		// Email Configuration
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@talenthub.com"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "TalentHub"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:    getEnvAsBool("SMTP_USE_TLS", false),

		// Frontend URL
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// JWTSecretConfigured reports whether a real signing key was supplied.
// An empty value or the shipped default both count as unconfigured.
func (c *Config) JWTSecretConfigured() bool {
	return c.JWTSecret != "" && c.JWTSecret != defaultJWTSecret
}

// GetJWTExpireMinutes returns the access token lifetime in minutes
func (c *Config) GetJWTExpireMinutes() int {
	if value, err := strconv.Atoi(c.JWTExpireMinutes); err == nil {
		return value
	}
	return 60
}

// GetJWTRefreshExpireDays returns the refresh token lifetime in days
func (c *Config) GetJWTRefreshExpireDays() int {
	if value, err := strconv.Atoi(c.JWTRefreshExpireDays); err == nil {
		return value
	}
	return 7
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
