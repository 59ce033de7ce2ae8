package config

import (
	"encoding/base64"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Drive     DriveConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// FirebaseConfig identifies the Firebase project whose ID tokens are accepted.
// Tokens are verified against the securetoken.google.com issuer for the project.
type FirebaseConfig struct {
	ProjectID string
}

// DriveConfig configures the Google Drive archival target.
// ServiceAccountJSON is supplied base64-encoded in the environment and
// decoded here, matching how deployments inject the credential.
type DriveConfig struct {
	RootFolder         string
	ServiceAccountJSON []byte
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type CORSConfig struct {
	AllowOrigin string
}

// Issuer returns the OIDC issuer URL for the configured Firebase project.
func (f FirebaseConfig) Issuer() string {
	return "https://securetoken.google.com/" + f.ProjectID
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("DRIVE_ROOT_FOLDER", "Draft-Keeper")
	viper.SetDefault("CORS_ALLOW_ORIGIN", "http://localhost:8080")
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnvOrPanic("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Firebase: FirebaseConfig{
			ProjectID: viper.GetString("FIREBASE_PROJECT_ID"),
		},
		Drive: DriveConfig{
			RootFolder: viper.GetString("DRIVE_ROOT_FOLDER"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowOrigin: viper.GetString("CORS_ALLOW_ORIGIN"),
		},
	}

	// The Drive service account arrives base64-encoded so it survives
	// .env files and container env blocks without quoting issues.
	if raw := os.Getenv("DRIVE_SERVICE_ACCOUNT"); raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			log.Printf("WARNING: DRIVE_SERVICE_ACCOUNT is not valid base64, Drive sync will be unavailable: %v", err)
		} else {
			cfg.Drive.ServiceAccountJSON = decoded
		}
	}

	if cfg.Firebase.ProjectID == "" {
		log.Println("WARNING: FIREBASE_PROJECT_ID is not set; token verification requires ALLOW_INSECURE_TOKEN")
	}

	return cfg, nil
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}
