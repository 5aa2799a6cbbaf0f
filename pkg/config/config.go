package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret signs session tokens when JWT_SECRET is unset. Development only.
const DefaultJWTSecret = "supersecretjwtkey"

// Store backends
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
)

// Identity providers
const (
	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	StoreBackend            string
	IdentityProvider        string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseAPIKey          string
	PostgresUrl             string
	SQLitePath              string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	JWTTTLHours             int
	DummyEmailDomain        string
	MetricsPort             string
}

// Load reads .env (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreFirestore)),
		IdentityProvider:        strings.ToLower(getEnv("IDENTITY_PROVIDER", "")),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:              getEnv("SQLITE_PATH", "unemployed_avengers.db"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "unemployed_avengers"),
		JWTSecret:               getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTLHours:             getEnvAsInt("JWT_TTL_HOURS", 72),
		DummyEmailDomain:        getEnv("DUMMY_EMAIL_DOMAIN", "example.com"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
	}

	if cfg.JWTSecret == DefaultJWTSecret && cfg.Env != "development" {
		logger.Log.WithField("env", cfg.Env).Warn("JWT_SECRET is not set, session tokens are signed with the built-in development key")
	}

	// firestore pairs with firebase auth, the SQL stores with local credentials
	if cfg.IdentityProvider == "" {
		if cfg.StoreBackend == StoreFirestore {
			cfg.IdentityProvider = IdentityFirebase
		} else {
			cfg.IdentityProvider = IdentityLocal
		}
	}
	return cfg
}

// NeedsFirebase reports whether a Firebase app has to be initialised
func (c *Config) NeedsFirebase() bool {
	return c.StoreBackend == StoreFirestore || c.IdentityProvider == IdentityFirebase
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
