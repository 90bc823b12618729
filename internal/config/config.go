package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TickStack/marketplace-engine/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env        string
	Network    string
	Index      string
	Debug      bool
	Reindex    bool
	LogPath    string
	SentryDsn  string
	HealthPort string
	ApiPort    string

	Market        MarketConfig
	Registry      RegistryConfig
	Payments      PaymentsConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type MarketConfig struct {
	Owner              string
	Operator           string
	FeeBasisPoints     uint64
	MaxAuctionDuration time.Duration
	RequireVerified    bool
	SweepInterval      time.Duration
}

type RegistryConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type PaymentsConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	MappingDir       string
	BulkPersistCount int
	Refresh          string
	Aws              bool
}

func Init(service string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	initLogger(service)
}

func initLogger(service string) {
	cfg := Get()
	log.NewLogger(fmt.Sprintf("%s/%s.log", cfg.LogPath, service), cfg.Debug, cfg.SentryDsn)
}

func Get() *Config {
	return &Config{
		Env:        getString("ENV", ""),
		Network:    getString("NETWORK", "mainnet"),
		Index:      getString("INDEX_NAME", "marketplace"),
		Debug:      getBool("DEBUG", false),
		Reindex:    getBool("REINDEX", false),
		LogPath:    getString("LOG_PATH", "./var/logs"),
		SentryDsn:  getString("SENTRY_DSN", ""),
		HealthPort: getString("HEALTH_PORT", "8081"),
		ApiPort:    getString("API_PORT", "8080"),
		Market: MarketConfig{
			Owner:              getString("MARKET_OWNER", ""),
			Operator:           getString("MARKET_OPERATOR", ""),
			FeeBasisPoints:     getUint64("MARKET_FEE_BPS", 250),
			MaxAuctionDuration: time.Duration(getInt("MARKET_MAX_AUCTION_DURATION", 2592000)) * time.Second,
			RequireVerified:    getBool("MARKET_REQUIRE_VERIFIED", false),
			SweepInterval:      time.Duration(getInt("MARKET_SWEEP_INTERVAL", 30)) * time.Second,
		},
		Registry: RegistryConfig{
			Url:     getString("REGISTRY_URL", ""),
			Timeout: getInt("REGISTRY_TIMEOUT", 30),
			Debug:   getBool("REGISTRY_DEBUG", false),
		},
		Payments: PaymentsConfig{
			Url:     getString("PAYMENTS_URL", ""),
			Timeout: getInt("PAYMENTS_TIMEOUT", 30),
			Debug:   getBool("PAYMENTS_DEBUG", false),
		},
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			MappingDir:       getString("ELASTIC_SEARCH_MAPPING_DIR", "/data/mappings"),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
			Aws:              getBool("ELASTIC_SEARCH_AWS", false),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getUint64(key string, defaultValue uint64) uint64 {
	return uint64(getInt(key, int(defaultValue)))
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
