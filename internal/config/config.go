package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // LEADS_DATABASE_URL (required)
	HTTPAddr    string // LEADS_HTTP_ADDR (default ":8080")
	NATSURL     string // LEADS_NATS_URL (optional, empty = no events)

	// Auth settings. Exactly one mode is active: JWT when JWTSecret is set,
	// otherwise static tokens. Both empty = auth disabled (dev only).
	AuthTokens string // LEADS_AUTH_TOKENS ("user_id:token,..." pairs)
	JWTSecret  string // LEADS_JWT_SECRET (HS256 shared secret)

	// Backup settings
	SyncInterval   time.Duration // LEADS_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // LEADS_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // LEADS_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // LEADS_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // LEADS_SYNC_S3_KEY (default "leads/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("LEADS_DATABASE_URL"),
		HTTPAddr:       envOrDefault("LEADS_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("LEADS_NATS_URL"),
		AuthTokens:     os.Getenv("LEADS_AUTH_TOKENS"),
		JWTSecret:      os.Getenv("LEADS_JWT_SECRET"),
		SyncS3Bucket:   os.Getenv("LEADS_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("LEADS_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("LEADS_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("LEADS_SYNC_S3_KEY", "leads/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("LEADS_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("LEADS_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("LEADS_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
