package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// The service runs as a container and receives its settings as environment
// variables. A .env file in the working directory is honoured for local runs.

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBMaxConns int    `mapstructure:"DB_MAX_CONNS"`

	ServerPort     string        `mapstructure:"SERVER_PORT"`
	IsLocalDev     bool          `mapstructure:"IS_LOCAL_DEV"`
	AutoMigrate    bool          `mapstructure:"AUTO_MIGRATE"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSOrigins    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`

	// Timezone and LateThreshold drive day partitioning and late classification.
	Timezone      string `mapstructure:"ATTENDANCE_TIMEZONE"`
	LateThreshold string `mapstructure:"LATE_THRESHOLD"`

	AWSRegion        string `mapstructure:"AWS_REGION"`
	AWSEndpoint      string `mapstructure:"AWS_ENDPOINT"`
	SyncSQSQueueURL  string `mapstructure:"SYNC_SQS_QUEUE_URL"`
	EmailSQSQueueURL string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	EmailSender      string `mapstructure:"EMAIL_SENDER"`
	HRAPIURL         string `mapstructure:"HR_API_URL"`

	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig reads configuration from an optional .env file and environment variables.
func LoadConfig() (config Config, err error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: unmarshal: %w", err)
	}
	err = config.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "attendance_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("JWT_ISSUER", "attendance-service")
	v.SetDefault("ATTENDANCE_TIMEZONE", "UTC")
	v.SetDefault("LATE_THRESHOLD", "09:30")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("SYNC_SQS_QUEUE_URL", "")
	v.SetDefault("EMAIL_SQS_QUEUE_URL", "")
	v.SetDefault("EMAIL_SENDER", "attendance@attendance-service.com")
	v.SetDefault("HR_API_URL", "http://localhost:8081/")
	v.SetDefault("OTLP_ENDPOINT", "")
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsLocalDev {
			return errors.New("config: JWT_SECRET must be set")
		}
		c.JWTSecret = "local-dev-secret"
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: ATTENDANCE_TIMEZONE: %w", err)
	}
	if _, err := time.Parse("15:04", c.LateThreshold); err != nil {
		return fmt.Errorf("config: LATE_THRESHOLD must be HH:MM: %w", err)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MessagingEnabled reports whether checkout events are published to SQS.
func (c Config) MessagingEnabled() bool {
	return c.SyncSQSQueueURL != "" || c.EmailSQSQueueURL != ""
}
