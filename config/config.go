package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pricehound/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Domains to discover offers on (comma separated hostname suffixes)
	Domains []string

	// Search API configuration
	SearchAPIURL   string
	SearchAPIKey   string
	SearchTimeout  time.Duration
	SearchCacheTTL time.Duration

	// Page fetching
	UserAgent    string
	FetchTimeout time.Duration

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Postgres configuration
	PostgresDSN string

	// HTTP API
	ListenAddr string

	// Cron spec for the refresh-all flow; empty disables scheduling
	RefreshSchedule string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	searchTimeout, _ := strconv.Atoi(getEnv("SEARCH_TIMEOUT_SECONDS", "20"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "25"))
	cacheTTL, _ := strconv.Atoi(getEnv("SEARCH_CACHE_TTL_SECONDS", "300"))

	return Config{
		Domains: splitDomains(getEnv("ECOM_DOMAINS",
			"amazon.in,flipkart.com,reliancedigital.in,croma.com,vijaysales.com")),
		SearchAPIURL:   getEnv("SEARCH_API_URL", "https://api.tavily.com/search"),
		SearchAPIKey:   getEnv("SEARCH_API_KEY", ""),
		SearchTimeout:  time.Duration(searchTimeout) * time.Second,
		SearchCacheTTL: time.Duration(cacheTTL) * time.Second,
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"),
		FetchTimeout:         time.Duration(fetchTimeout) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "pricedrops"),
		RedisStreamMaxLength: streamMaxLen,
		PostgresDSN:          getEnv("POSTGRES_DSN", ""),
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", "0 6 * * *"),
		Environment:          getEnv("PRICEHOUND_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return errors.NewConfiguration("no domains configured", nil)
	}
	if c.SearchAPIURL == "" {
		return errors.NewConfiguration("search API URL is empty", nil)
	}
	if c.SearchAPIKey == "" {
		return errors.NewConfiguration("search API key is empty", nil)
	}
	return nil
}

// splitDomains parses a comma separated domain list, lowercased and trimmed
func splitDomains(raw string) []string {
	var domains []string
	for _, d := range strings.Split(raw, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
