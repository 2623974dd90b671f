package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Host          string
	WebhookSecret string
	PipelineName  string
	Broker        BrokerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Marketo       MarketoConfig
	Pipedrive     PipedriveConfig
}

type MarketoConfig struct {
	IdentityEndpoint string
	APIEndpoint      string
	ClientID         string
	ClientSecret     string
}

type PipedriveConfig struct {
	BaseURL  string
	APIToken string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *DatabaseConfig) ConnectionString() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Addr     string
	Password string
	QueueKey string
}

type BrokerConfig struct {
	URL      string
	ClientID string
	Username string
	Password string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3001"),
		Host:          getEnv("HOST", "0.0.0.0"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		PipelineName:  getEnv("DEAL_PIPELINE_NAME", "Subscription (New and Upsell)"),
		Broker: BrokerConfig{
			URL:      getEnv("BROKER_URL", "tcp://localhost:1883"),
			ClientID: getEnv("BROKER_CLIENT_ID", "sync-app-001"),
			Username: getEnv("BROKER_USERNAME", ""),
			Password: getEnv("BROKER_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "sync"),
			Password: getEnv("DATABASE_PASSWORD", "sync"),
			Name:     getEnv("DATABASE_NAME", "sync"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			QueueKey: getEnv("REDIS_QUEUE_KEY", "sync:tasks"),
		},
		Marketo: MarketoConfig{
			IdentityEndpoint: getEnv("MARKETO_IDENTITY_ENDPOINT", ""),
			APIEndpoint:      getEnv("MARKETO_API_ENDPOINT", ""),
			ClientID:         getEnv("MARKETO_CLIENT_ID", ""),
			ClientSecret:     getEnv("MARKETO_CLIENT_SECRET", ""),
		},
		Pipedrive: PipedriveConfig{
			BaseURL:  getEnv("PIPEDRIVE_URL", "https://api.pipedrive.com/v1"),
			APIToken: getEnv("PIPEDRIVE_API_TOKEN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
