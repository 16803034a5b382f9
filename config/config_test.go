package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	cfg := LoadConfig()
	assert.Equal(t, []string{"amazon.in", "flipkart.com", "reliancedigital.in", "croma.com", "vijaysales.com"}, cfg.Domains)
	assert.Equal(t, "https://api.tavily.com/search", cfg.SearchAPIURL)
	assert.Equal(t, "localhost:11211", cfg.MemcacheAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "pricedrops", cfg.RedisStream)
	assert.Equal(t, 25*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8080", cfg.ListenAddr)

	// Test with environment variables
	os.Setenv("ECOM_DOMAINS", "amazon.in, Croma.com ,")
	os.Setenv("SEARCH_API_KEY", "tvly-test")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("FETCH_TIMEOUT_SECONDS", "5")
	os.Setenv("LISTEN_ADDR", ":9090")

	cfg = LoadConfig()
	assert.Equal(t, []string{"amazon.in", "croma.com"}, cfg.Domains)
	assert.Equal(t, "tvly-test", cfg.SearchAPIKey)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":9090", cfg.ListenAddr)

	// Clean up
	os.Unsetenv("ECOM_DOMAINS")
	os.Unsetenv("SEARCH_API_KEY")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("FETCH_TIMEOUT_SECONDS")
	os.Unsetenv("LISTEN_ADDR")
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.SearchAPIKey = "tvly-test"
	assert.NoError(t, cfg.Validate())

	cfg.SearchAPIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.SearchAPIKey = "tvly-test"
	cfg.Domains = nil
	assert.Error(t, cfg.Validate())
}
