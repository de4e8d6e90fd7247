package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultNetworkName    = "Twitter"
	defaultServerPort     = "8080"
	defaultAccessMaxAge   = 900
	defaultActivityStream = "stream:activity"
)

type Config struct {
	NetworkName string

	ServerPort string

	JWTSecret         string
	AccessTokenMaxAge int

	// RedisURL is optional. When empty the activity stream is disabled.
	RedisURL       string
	ActivityStream string

	// WSAllowedOrigins are the cross-site origins allowed to open /ws.
	// Empty means same origin only.
	WSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

// LoadConfig reads envFile (".env" when empty) and then the process
// environment. A missing env file is not an error.
func LoadConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("[Config] No %s file found or error loading it, relying on environment variables", envFile)
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = defaultAccessMaxAge
	}

	return &Config{
		NetworkName: getEnv("NETWORK_NAME", defaultNetworkName),

		ServerPort: getEnv("SERVER_PORT", defaultServerPort),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,

		RedisURL:       os.Getenv("REDIS_URL"),
		ActivityStream: getEnv("ACTIVITY_STREAM", defaultActivityStream),

		WSAllowedOrigins: splitList(os.Getenv("WS_ALLOWED_ORIGINS")),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}, nil
}

// StorageEnabled reports whether every R2 setting needed for uploads is present.
func (c *Config) StorageEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

// splitList parses a comma-separated value, dropping blank items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
