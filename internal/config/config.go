package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log            LogConfig
	Extract        ExtractConfig
	Vocabulary     VocabularyConfig
	Compare        CompareConfig
	Summarizer     SummarizerConfig
	Cache          CacheConfig
	S3             S3Config
	GCS            GCSConfig
	Report         ReportConfig
	RunTimeoutSecs int `validate:"gte=1"`
}

// RunTimeout returns the caller-level timeout wrapping one comparison run.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSecs) * time.Second
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs" validate:"gte=1"`
	MaxPages    int `mapstructure:"max_pages" validate:"gte=0"`
}

// Timeout returns the per-document extraction timeout.
func (e *ExtractConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// VocabularyConfig points at an external role vocabulary. Empty Path means the built-in default.
type VocabularyConfig struct {
	Path string `mapstructure:"path"`
}

// CompareConfig holds equivalence tolerances for the comparator rules.
type CompareConfig struct {
	TariffTolerance   string `mapstructure:"tariff_tolerance" validate:"required,numeric"`
	POPrefixDelimiter string `mapstructure:"po_prefix_delimiter"`
	AlignmentWindow   int    `mapstructure:"alignment_window" validate:"gte=0"`
}

// Tolerance returns TariffTolerance as a decimal.
func (c *CompareConfig) Tolerance() decimal.Decimal {
	d, err := decimal.NewFromString(c.TariffTolerance)
	if err != nil {
		return decimal.New(5, -3)
	}
	return d
}

// SummarizerProviderConfig holds settings for a single LLM summarizer provider.
type SummarizerProviderConfig struct {
	Provider     string `mapstructure:"provider" validate:"omitempty,oneof=claude openai gemini"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSecs  int    `mapstructure:"timeout_secs" validate:"gte=0"`
}

// SummarizerConfig holds optional LLM summarizer settings with multi-provider support.
type SummarizerConfig struct {
	Enabled   bool                     `mapstructure:"enabled"`
	Primary   SummarizerProviderConfig `mapstructure:"primary"`
	Secondary SummarizerProviderConfig `mapstructure:"secondary"`
	Tertiary  SummarizerProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (s *SummarizerConfig) Providers() []*SummarizerProviderConfig {
	var out []*SummarizerProviderConfig
	for _, p := range []*SummarizerProviderConfig{&s.Primary, &s.Secondary, &s.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// CacheConfig holds the optional Redis extraction cache settings. Empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db" validate:"gte=0"`
	TTLHours        int    `mapstructure:"ttl_hours" validate:"gte=0"`
	LockTimeoutSecs int    `mapstructure:"lock_timeout_secs" validate:"gte=1"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// GCSConfig holds Google Cloud Storage settings. Empty CredentialsJSON uses application default credentials.
type GCSConfig struct {
	CredentialsJSON string `mapstructure:"credentials_json"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Format string `mapstructure:"format" validate:"oneof=markdown json csv xlsx pdf"`
}

// Load reads configuration from environment variables with the ORDERCHECK_ prefix,
// and from the YAML file named by ORDERCHECK_CONFIG when set.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORDERCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Extraction defaults
	v.SetDefault("extract.timeout_secs", 30)
	v.SetDefault("extract.max_pages", 0)

	v.SetDefault("vocabulary.path", "")

	// Comparator defaults
	v.SetDefault("compare.tariff_tolerance", "0.005")
	v.SetDefault("compare.po_prefix_delimiter", "/")
	v.SetDefault("compare.alignment_window", 0)

	v.SetDefault("run_timeout_secs", 120)

	// Summarizer defaults
	v.SetDefault("summarizer.enabled", false)
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("summarizer."+tier+".provider", "")
		v.SetDefault("summarizer."+tier+".api_key", "")
		v.SetDefault("summarizer."+tier+".default_model", "")
		v.SetDefault("summarizer."+tier+".max_retries", 2)
		v.SetDefault("summarizer."+tier+".timeout_secs", 60)
	}

	// Cache defaults
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("cache.lock_timeout_secs", 30)

	// Storage defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("gcs.credentials_json", "")

	v.SetDefault("report.format", "markdown")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"log.level":                          "ORDERCHECK_LOG_LEVEL",
		"log.format":                         "ORDERCHECK_LOG_FORMAT",
		"extract.timeout_secs":               "ORDERCHECK_EXTRACT_TIMEOUT_SECS",
		"extract.max_pages":                  "ORDERCHECK_EXTRACT_MAX_PAGES",
		"vocabulary.path":                    "ORDERCHECK_VOCABULARY_PATH",
		"compare.tariff_tolerance":           "ORDERCHECK_COMPARE_TARIFF_TOLERANCE",
		"compare.po_prefix_delimiter":        "ORDERCHECK_COMPARE_PO_PREFIX_DELIMITER",
		"compare.alignment_window":           "ORDERCHECK_COMPARE_ALIGNMENT_WINDOW",
		"run_timeout_secs":                   "ORDERCHECK_RUN_TIMEOUT_SECS",
		"summarizer.enabled":                 "ORDERCHECK_SUMMARIZER_ENABLED",
		"summarizer.primary.provider":        "ORDERCHECK_SUMMARIZER_PRIMARY_PROVIDER",
		"summarizer.primary.api_key":         "ORDERCHECK_SUMMARIZER_PRIMARY_API_KEY",
		"summarizer.primary.default_model":   "ORDERCHECK_SUMMARIZER_PRIMARY_DEFAULT_MODEL",
		"summarizer.primary.max_retries":     "ORDERCHECK_SUMMARIZER_PRIMARY_MAX_RETRIES",
		"summarizer.primary.timeout_secs":    "ORDERCHECK_SUMMARIZER_PRIMARY_TIMEOUT_SECS",
		"summarizer.secondary.provider":      "ORDERCHECK_SUMMARIZER_SECONDARY_PROVIDER",
		"summarizer.secondary.api_key":       "ORDERCHECK_SUMMARIZER_SECONDARY_API_KEY",
		"summarizer.secondary.default_model": "ORDERCHECK_SUMMARIZER_SECONDARY_DEFAULT_MODEL",
		"summarizer.secondary.max_retries":   "ORDERCHECK_SUMMARIZER_SECONDARY_MAX_RETRIES",
		"summarizer.secondary.timeout_secs":  "ORDERCHECK_SUMMARIZER_SECONDARY_TIMEOUT_SECS",
		"summarizer.tertiary.provider":       "ORDERCHECK_SUMMARIZER_TERTIARY_PROVIDER",
		"summarizer.tertiary.api_key":        "ORDERCHECK_SUMMARIZER_TERTIARY_API_KEY",
		"summarizer.tertiary.default_model":  "ORDERCHECK_SUMMARIZER_TERTIARY_DEFAULT_MODEL",
		"summarizer.tertiary.max_retries":    "ORDERCHECK_SUMMARIZER_TERTIARY_MAX_RETRIES",
		"summarizer.tertiary.timeout_secs":   "ORDERCHECK_SUMMARIZER_TERTIARY_TIMEOUT_SECS",
		"cache.redis_addr":                   "ORDERCHECK_CACHE_REDIS_ADDR",
		"cache.redis_password":               "ORDERCHECK_CACHE_REDIS_PASSWORD",
		"cache.redis_db":                     "ORDERCHECK_CACHE_REDIS_DB",
		"cache.ttl_hours":                    "ORDERCHECK_CACHE_TTL_HOURS",
		"cache.lock_timeout_secs":            "ORDERCHECK_CACHE_LOCK_TIMEOUT_SECS",
		"s3.region":                          "ORDERCHECK_S3_REGION",
		"s3.endpoint":                        "ORDERCHECK_S3_ENDPOINT",
		"s3.access_key":                      "ORDERCHECK_S3_ACCESS_KEY",
		"s3.secret_key":                      "ORDERCHECK_S3_SECRET_KEY",
		"gcs.credentials_json":               "ORDERCHECK_GCS_CREDENTIALS_JSON",
		"report.format":                      "ORDERCHECK_REPORT_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path := os.Getenv("ORDERCHECK_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Extract = ExtractConfig{
		TimeoutSecs: v.GetInt("extract.timeout_secs"),
		MaxPages:    v.GetInt("extract.max_pages"),
	}
	cfg.Vocabulary = VocabularyConfig{
		Path: v.GetString("vocabulary.path"),
	}
	cfg.Compare = CompareConfig{
		TariffTolerance:   v.GetString("compare.tariff_tolerance"),
		POPrefixDelimiter: v.GetString("compare.po_prefix_delimiter"),
		AlignmentWindow:   v.GetInt("compare.alignment_window"),
	}
	cfg.RunTimeoutSecs = v.GetInt("run_timeout_secs")

	cfg.Summarizer = SummarizerConfig{
		Enabled:   v.GetBool("summarizer.enabled"),
		Primary:   providerConfig(v, "primary"),
		Secondary: providerConfig(v, "secondary"),
		Tertiary:  providerConfig(v, "tertiary"),
	}

	cfg.Cache = CacheConfig{
		RedisAddr:       v.GetString("cache.redis_addr"),
		RedisPassword:   v.GetString("cache.redis_password"),
		RedisDB:         v.GetInt("cache.redis_db"),
		TTLHours:        v.GetInt("cache.ttl_hours"),
		LockTimeoutSecs: v.GetInt("cache.lock_timeout_secs"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.GCS = GCSConfig{
		CredentialsJSON: v.GetString("gcs.credentials_json"),
	}
	cfg.Report = ReportConfig{
		Format: v.GetString("report.format"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) SummarizerProviderConfig {
	prefix := "summarizer." + tier + "."
	return SummarizerProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// Validate checks field constraints and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Summarizer.Enabled && len(cfg.Summarizer.Providers()) == 0 {
		return fmt.Errorf("invalid configuration: summarizer enabled but no provider configured")
	}
	for _, p := range cfg.Summarizer.Providers() {
		if cfg.Summarizer.Enabled && p.APIKey == "" {
			return fmt.Errorf("invalid configuration: summarizer provider %s has no api key", p.Provider)
		}
	}
	return nil
}
