package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort    string
	DatabaseURL   string
	AdminToken    string
	CacheTTLHours string
	LogLevel      string
	GeminiAPIKey  string
	GeminiModel   string
}

// DiscoveryConfig holds tuning parameters for a deal discovery run
type DiscoveryConfig struct {
	MaxQueriesPerProvider int           `json:"max_queries_per_provider"`
	FetchTimeout          time.Duration `json:"fetch_timeout"`
	SearchRateLimit       time.Duration `json:"search_rate_limit"`
	MaxResultsPerQuery    int           `json:"max_results_per_query"`
	MaxRetryAttempts      int           `json:"max_retry_attempts"`
}

// DefaultDiscoveryConfig returns production-ready discovery defaults.
// The search rate limit is a hard floor between consecutive calls to the
// same backend, not a target rate.
func DefaultDiscoveryConfig() *DiscoveryConfig {
	return &DiscoveryConfig{
		MaxQueriesPerProvider: 10,
		FetchTimeout:          15 * time.Second,
		SearchRateLimit:       500 * time.Millisecond,
		MaxResultsPerQuery:    10,
		MaxRetryAttempts:      2,
	}
}

// ScoringWeights holds the confidence scorer's additive weights.
// The values are hand-tuned, not derived, so they are kept configurable
// instead of being buried as constants in the scorer.
type ScoringWeights struct {
	TitleAndSnippet float64 `json:"title_and_snippet"`
	OfficialDomain  float64 `json:"official_domain"`
	PerKeyword      float64 `json:"per_keyword"`
	CurrentYear     float64 `json:"current_year"`
}

// DefaultScoringWeights returns the default confidence scoring weights
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		TitleAndSnippet: 0.3,
		OfficialDomain:  0.3,
		PerKeyword:      0.1,
		CurrentYear:     0.2,
	}
}

// MatcherWeights holds the profile matcher's scoring parameters.
// MatchThreshold is strict: a score exactly at the threshold is not a match.
type MatcherWeights struct {
	BaseScore          float64 `json:"base_score"`
	ProviderBonus      float64 `json:"provider_bonus"`
	CertificationBonus float64 `json:"certification_bonus"`
	MatchThreshold     float64 `json:"match_threshold"`
}

// DefaultMatcherWeights returns the default matcher scoring parameters
func DefaultMatcherWeights() MatcherWeights {
	return MatcherWeights{
		BaseScore:          0.5,
		ProviderBonus:      0.3,
		CertificationBonus: 0.4,
		MatchThreshold:     0.6,
	}
}

// CacheConfig holds recommendation cache configuration
type CacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
	MaxSize    int           `json:"max_size"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		DefaultTTL: 5 * time.Minute,
		MaxSize:    1000,
	}
}

// GetCacheTTL returns the cache TTL from environment or default
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTLHours == "" {
		return 24 * time.Hour
	}

	hours, err := strconv.Atoi(c.CacheTTLHours)
	if err != nil {
		logrus.Warnf("Invalid CACHE_TTL_HOURS value: %s, using default 24 hours", c.CacheTTLHours)
		return 24 * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		CacheTTLHours: getEnv("CACHE_TTL_HOURS", "24"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
