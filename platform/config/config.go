// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// FeedConfig provides settings for the BOAMP feed client.
type FeedConfig interface {
	GetFeedBaseURL() string
	GetFeedTimeout() time.Duration
	GetFeedPageLimit() int
	GetDescripteurs() []string
}

// NotifierConfig provides settings for the Teams webhook notifier.
type NotifierConfig interface {
	GetWebhookMarche() string
	GetWebhookAttribution() string
	GetWebhookRatePerSecond() float64
}

// ClassifierConfig provides thresholds and labels for amount classification.
type ClassifierConfig interface {
	GetAmountTier1() float64
	GetAmountTier2() float64
	GetAmountTier3() float64
	GetSeuilMarches() string
	GetIconTablePath() string
}

// ArchiveConfig provides settings for raw batch archival.
type ArchiveConfig interface {
	GetArchiveDir() string
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketRawBatches() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDailyScanHour() int
}

// HTTPConfig provides settings for the admin HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
}

// DigestConfig provides settings for the end-of-run digest email.
type DigestConfig interface {
	GetDigestEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetDigestFromName() string
	GetDigestFromAddress() string
	GetDigestToAddress() string
}

// StatsConfig provides settings for the stats file.
type StatsConfig interface {
	GetStatsFilePath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CORSOrigins          []string
	FeedBaseURL          string
	FeedTimeout          time.Duration
	FeedPageLimit        int
	Descripteurs         []string
	WebhookMarche        string
	WebhookAttribution   string
	WebhookRatePerSecond float64
	AmountTier1          float64
	AmountTier2          float64
	AmountTier3          float64
	SeuilMarches         string
	IconTablePath        string
	ArchiveDir           string
	StatsFilePath        string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinioBucketRawBatches string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	DailyScanHour        int
	DigestEnabled        bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	DigestFromName       string
	DigestFromAddress    string
	DigestToAddress      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// FeedConfig implementation
func (c *Config) GetFeedBaseURL() string        { return c.FeedBaseURL }
func (c *Config) GetFeedTimeout() time.Duration { return c.FeedTimeout }
func (c *Config) GetFeedPageLimit() int         { return c.FeedPageLimit }
func (c *Config) GetDescripteurs() []string     { return c.Descripteurs }

// NotifierConfig implementation
func (c *Config) GetWebhookMarche() string          { return c.WebhookMarche }
func (c *Config) GetWebhookAttribution() string     { return c.WebhookAttribution }
func (c *Config) GetWebhookRatePerSecond() float64  { return c.WebhookRatePerSecond }

// ClassifierConfig implementation
func (c *Config) GetAmountTier1() float64  { return c.AmountTier1 }
func (c *Config) GetAmountTier2() float64  { return c.AmountTier2 }
func (c *Config) GetAmountTier3() float64  { return c.AmountTier3 }
func (c *Config) GetSeuilMarches() string  { return c.SeuilMarches }
func (c *Config) GetIconTablePath() string { return c.IconTablePath }

// ArchiveConfig implementation
func (c *Config) GetArchiveDir() string            { return c.ArchiveDir }
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketRawBatches() string { return c.MinioBucketRawBatches }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetDailyScanHour() int     { return c.DailyScanHour }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// DigestConfig implementation
func (c *Config) GetDigestEnabled() bool      { return c.DigestEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetDigestFromName() string   { return c.DigestFromName }
func (c *Config) GetDigestFromAddress() string { return c.DigestFromAddress }
func (c *Config) GetDigestToAddress() string   { return c.DigestToAddress }

// StatsConfig implementation
func (c *Config) GetStatsFilePath() string { return c.StatsFilePath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	digestEnabled := strings.EqualFold(getEnv("DIGEST_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:           splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),
		FeedBaseURL:           getEnv("BOAMP_BASE_URL", "https://www.boamp.fr/api/explore/v2.1/catalog/datasets/boamp/records"),
		FeedTimeout:           mustDuration(getEnv("BOAMP_TIMEOUT", "30s")),
		FeedPageLimit:         mustInt(getEnv("BOAMP_PAGE_LIMIT", "99")),
		Descripteurs:          splitCSV(getEnv("DESCRIPTEURS", "")),
		WebhookMarche:         getEnv("WEBHOOK_MARCHE", ""),
		WebhookAttribution:    getEnv("WEBHOOK_ATTRIBUTION", ""),
		WebhookRatePerSecond:  mustFloat(getEnv("WEBHOOK_RATE_PER_SECOND", "2")),
		AmountTier1:           mustFloat(getEnv("AMOUNT_TIER1", "1000000")),
		AmountTier2:           mustFloat(getEnv("AMOUNT_TIER2", "2000000")),
		AmountTier3:           mustFloat(getEnv("AMOUNT_TIER3", "4000000")),
		SeuilMarches:          getEnv("SEUILMARCHES", ""),
		IconTablePath:         getEnv("ICON_TABLE_PATH", ""),
		ArchiveDir:            getEnv("ARCHIVE_DIR", "data"),
		StatsFilePath:         getEnv("STATS_FILE", "data/stats.json"),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketRawBatches: getEnv("MINIO_BUCKET_RAW_BATCHES", "boamp-raw"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "boampwatch"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "1")),
		DailyScanHour:         mustInt(getEnv("DAILY_SCAN_HOUR", "7")),
		DigestEnabled:         digestEnabled,
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		DigestFromName:        getEnv("DIGEST_FROM_NAME", "BOAMP Watch"),
		DigestFromAddress:     getEnv("DIGEST_FROM_ADDRESS", ""),
		DigestToAddress:       getEnv("DIGEST_TO_ADDRESS", ""),
	}

	if cfg.WebhookMarche == "" || cfg.WebhookAttribution == "" {
		return nil, fmt.Errorf("WEBHOOK_MARCHE and WEBHOOK_ATTRIBUTION are required")
	}
	if !(cfg.AmountTier1 < cfg.AmountTier2 && cfg.AmountTier2 < cfg.AmountTier3) {
		return nil, fmt.Errorf("AMOUNT_TIER1/2/3 must be strictly ascending")
	}
	if cfg.FeedPageLimit < 1 || cfg.FeedPageLimit > 99 {
		return nil, fmt.Errorf("BOAMP_PAGE_LIMIT must be between 1 and 99")
	}
	if cfg.DigestEnabled && (cfg.SMTPHost == "" || cfg.DigestFromAddress == "" || cfg.DigestToAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST, DIGEST_FROM_ADDRESS and DIGEST_TO_ADDRESS are required when DIGEST_ENABLED is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
