// backend-go/internal/config/config.go
package config

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Notify    NotifyConfig
	AWS       AWSConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SecretARN, when set, replaces the fields above with the Secrets Manager payload.
	SecretARN      string
	MaxOpenConns   int
	MaxConcurrency int64
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

// AnalyticsConfig carries the tunables of the calculation engine.
type AnalyticsConfig struct {
	CriticalDays      float64
	LowDays           float64
	AlertHorizonDays  float64
	OverstockFactor   float64
	LowRotation90d    float64
	LowRotationRate   float64
	SafetyFactor      float64
	SafetyDays        float64
	DefaultCoverage   int
	DefaultLeadTime   int
	SurplusPolicy     string
	SurplusBufferDays float64
	SurplusUnits      float64
	DonorMinDays      float64
	OrderMarginDays   int
	PurchaseAll       bool
	ABCCutoffs        []float64
	BrandOverrides    map[string]BrandOverride
	Workers           int
	LockTTLSeconds    int
	ExportEnabled     bool
}

// BrandOverride replaces the global reorder-point factors for one brand.
type BrandOverride struct {
	SafetyFactor *float64 `json:"safety_factor,omitempty"`
	SafetyDays   *float64 `json:"safety_days,omitempty"`
}

type NotifyConfig struct {
	SNSTopicARN    string
	WebhookURL     string
	TimeoutSeconds int
}

type AWSConfig struct {
	Region string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory_db")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_SECRET_ARN", "")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_CONCURRENCY", 10)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)

		viper.SetDefault("ANALYTICS_CRITICAL_DAYS", 3)
		viper.SetDefault("ANALYTICS_LOW_DAYS", 7)
		viper.SetDefault("ANALYTICS_ALERT_HORIZON_DAYS", 15)
		viper.SetDefault("ANALYTICS_OVERSTOCK_FACTOR", 1.5)
		viper.SetDefault("ANALYTICS_LOW_ROTATION_90D", 3)
		viper.SetDefault("ANALYTICS_LOW_ROTATION_RATE", 0.5)
		viper.SetDefault("ANALYTICS_SAFETY_FACTOR", 1.0)
		viper.SetDefault("ANALYTICS_SAFETY_DAYS", 7)
		viper.SetDefault("ANALYTICS_DEFAULT_COVERAGE", 30)
		viper.SetDefault("ANALYTICS_DEFAULT_LEAD_TIME", 15)
		viper.SetDefault("ANALYTICS_SURPLUS_POLICY", "stock_maximo")
		viper.SetDefault("ANALYTICS_SURPLUS_BUFFER_DAYS", 0)
		viper.SetDefault("ANALYTICS_SURPLUS_UNITS", 0)
		viper.SetDefault("ANALYTICS_DONOR_MIN_DAYS", 0)
		viper.SetDefault("ANALYTICS_ORDER_MARGIN_DAYS", 7)
		viper.SetDefault("ANALYTICS_PURCHASE_ALL_CATEGORIES", false)
		viper.SetDefault("ANALYTICS_ABC_CUTOFFS", "0.80,0.95")
		viper.SetDefault("ANALYTICS_BRAND_OVERRIDES", "")
		viper.SetDefault("ANALYTICS_WORKERS", 4)
		viper.SetDefault("ANALYTICS_LOCK_TTL_SECONDS", 900)
		viper.SetDefault("ANALYTICS_EXPORT_ENABLED", false)

		viper.SetDefault("SNS_TOPIC_ARN", "")
		viper.SetDefault("NOTIFY_WEBHOOK_URL", "")
		viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 5)
		viper.SetDefault("AWS_REGION", "us-east-1")

		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_PRETTY", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:           viper.GetString("DB_HOST"),
				Port:           viper.GetString("DB_PORT"),
				User:           viper.GetString("DB_USER"),
				Password:       viper.GetString("DB_PASSWORD"),
				DBName:         viper.GetString("DB_NAME"),
				SSLMode:        viper.GetString("DB_SSLMODE"),
				SecretARN:      viper.GetString("DB_SECRET_ARN"),
				MaxOpenConns:   viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxConcurrency: viper.GetInt64("DB_MAX_CONCURRENCY"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Analytics: AnalyticsConfig{
				CriticalDays:      viper.GetFloat64("ANALYTICS_CRITICAL_DAYS"),
				LowDays:           viper.GetFloat64("ANALYTICS_LOW_DAYS"),
				AlertHorizonDays:  viper.GetFloat64("ANALYTICS_ALERT_HORIZON_DAYS"),
				OverstockFactor:   viper.GetFloat64("ANALYTICS_OVERSTOCK_FACTOR"),
				LowRotation90d:    viper.GetFloat64("ANALYTICS_LOW_ROTATION_90D"),
				LowRotationRate:   viper.GetFloat64("ANALYTICS_LOW_ROTATION_RATE"),
				SafetyFactor:      viper.GetFloat64("ANALYTICS_SAFETY_FACTOR"),
				SafetyDays:        viper.GetFloat64("ANALYTICS_SAFETY_DAYS"),
				DefaultCoverage:   viper.GetInt("ANALYTICS_DEFAULT_COVERAGE"),
				DefaultLeadTime:   viper.GetInt("ANALYTICS_DEFAULT_LEAD_TIME"),
				SurplusPolicy:     viper.GetString("ANALYTICS_SURPLUS_POLICY"),
				SurplusBufferDays: viper.GetFloat64("ANALYTICS_SURPLUS_BUFFER_DAYS"),
				SurplusUnits:      viper.GetFloat64("ANALYTICS_SURPLUS_UNITS"),
				DonorMinDays:      viper.GetFloat64("ANALYTICS_DONOR_MIN_DAYS"),
				OrderMarginDays:   viper.GetInt("ANALYTICS_ORDER_MARGIN_DAYS"),
				PurchaseAll:       viper.GetBool("ANALYTICS_PURCHASE_ALL_CATEGORIES"),
				ABCCutoffs:        parseCutoffs(viper.GetString("ANALYTICS_ABC_CUTOFFS")),
				BrandOverrides:    parseBrandOverrides(viper.GetString("ANALYTICS_BRAND_OVERRIDES")),
				Workers:           viper.GetInt("ANALYTICS_WORKERS"),
				LockTTLSeconds:    viper.GetInt("ANALYTICS_LOCK_TTL_SECONDS"),
				ExportEnabled:     viper.GetBool("ANALYTICS_EXPORT_ENABLED"),
			},
			Notify: NotifyConfig{
				SNSTopicARN:    viper.GetString("SNS_TOPIC_ARN"),
				WebhookURL:     viper.GetString("NOTIFY_WEBHOOK_URL"),
				TimeoutSeconds: viper.GetInt("NOTIFY_TIMEOUT_SECONDS"),
			},
			AWS: AWSConfig{
				Region: viper.GetString("AWS_REGION"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("DRIVE_CREDENTIALS_JSON"),
				FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			},
			Log: LogConfig{
				Level:  viper.GetString("LOG_LEVEL"),
				Pretty: viper.GetBool("LOG_PRETTY"),
			},
		}
	})

	return instance
}

func parseCutoffs(raw string) []float64 {
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			log.Printf("ignoring invalid ABC cutoff %q: %v", part, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func parseBrandOverrides(raw string) map[string]BrandOverride {
	overrides := map[string]BrandOverride{}
	if strings.TrimSpace(raw) == "" {
		return overrides
	}
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		log.Printf("ignoring invalid ANALYTICS_BRAND_OVERRIDES: %v", err)
		return map[string]BrandOverride{}
	}
	return overrides
}
