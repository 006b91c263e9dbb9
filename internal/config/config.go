package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type SourceConfig struct {
	// Backend selects the data source adapter: csv, sqlite, postgres or s3.
	Backend        string
	LogisticsCSV   string
	InventoryCSV   string
	SQLitePath     string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3LogisticsKey string
	S3InventoryKey string
}

type AuthConfig struct {
	AccessSecret string
}

type AnalyticsConfig struct {
	DefaultRangeDays  int
	MaxRangeDays      int
	CacheTTLSeconds   int
	LowStockThreshold float64
	DelayFromTimes    bool
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type Config struct {
	Environment string
	LogDir      string
	HTTP        HTTPConfig
	DB          DBConfig
	Source      SourceConfig
	Auth        AuthConfig
	Analytics   AnalyticsConfig
	RateLimit   RateLimitConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogDir:      v.GetString("LOG_DIR"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Source: SourceConfig{
			Backend:        v.GetString("SOURCE_BACKEND"),
			LogisticsCSV:   v.GetString("LOGISTICS_CSV_PATH"),
			InventoryCSV:   v.GetString("INVENTORY_CSV_PATH"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
			S3Bucket:       v.GetString("S3_BUCKET"),
			S3Region:       v.GetString("S3_REGION"),
			S3Endpoint:     v.GetString("S3_ENDPOINT"),
			S3AccessKey:    v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:    v.GetString("S3_SECRET_KEY"),
			S3LogisticsKey: v.GetString("S3_LOGISTICS_KEY"),
			S3InventoryKey: v.GetString("S3_INVENTORY_KEY"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Analytics: AnalyticsConfig{
			DefaultRangeDays:  v.GetInt("ANALYTICS_DEFAULT_RANGE_DAYS"),
			MaxRangeDays:      v.GetInt("ANALYTICS_MAX_RANGE_DAYS"),
			CacheTTLSeconds:   v.GetInt("CACHE_TTL_SECONDS"),
			LowStockThreshold: v.GetFloat64("LOW_STOCK_THRESHOLD"),
			DelayFromTimes:    v.GetBool("DELAY_FROM_TIMES"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Source.Backend == "" {
		cfg.Source.Backend = "csv"
	}
	if cfg.Source.LogisticsCSV == "" {
		cfg.Source.LogisticsCSV = "assets/logistics.csv"
	}
	if cfg.Source.InventoryCSV == "" {
		cfg.Source.InventoryCSV = "assets/inventory.csv"
	}
	if cfg.Analytics.DefaultRangeDays <= 0 {
		cfg.Analytics.DefaultRangeDays = 30
	}
	if cfg.Analytics.MaxRangeDays <= 0 {
		cfg.Analytics.MaxRangeDays = 365
	}
	if cfg.Analytics.CacheTTLSeconds <= 0 {
		cfg.Analytics.CacheTTLSeconds = 60
	}
	if cfg.Analytics.LowStockThreshold <= 0 {
		cfg.Analytics.LowStockThreshold = 0.2
	}
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		cfg.RateLimit.RequestsPerMinute = 120
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Analytics.LowStockThreshold > 1 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be a fraction in (0, 1]")
	}
	switch cfg.Source.Backend {
	case "csv":
		// defaults above already guarantee paths
	case "sqlite":
		if cfg.Source.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case "postgres":
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres backend")
		}
	case "s3":
		if cfg.Source.S3Bucket == "" || cfg.Source.S3LogisticsKey == "" || cfg.Source.S3InventoryKey == "" {
			return fmt.Errorf("S3_BUCKET, S3_LOGISTICS_KEY and S3_INVENTORY_KEY are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown SOURCE_BACKEND %q", cfg.Source.Backend)
	}
	return nil
}
