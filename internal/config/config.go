package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	DB         DBConfig
	Auth       AuthConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Resilience ResilienceConfig
	RateLimit  RateLimitConfig
	S3         S3Config
	Email      EmailConfig
	Export     ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig controls bearer-token validation. Tokens are issued elsewhere;
// this service only verifies them.
type AuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// OCRConfig selects the image OCR backend.
type OCRConfig struct {
	Backend           string `mapstructure:"backend"`
	PDFMaxTextBytes   int64  `mapstructure:"pdf_max_text_bytes"`
	TesseractBinary   string `mapstructure:"tesseract_binary"`
	TesseractLanguage string `mapstructure:"tesseract_language"`
	TesseractPSM      int    `mapstructure:"tesseract_psm"`
	OCRSpaceAPIKey    string `mapstructure:"ocrspace_api_key"`
	OCRSpaceEndpoint  string `mapstructure:"ocrspace_endpoint"`
	OCRSpaceLanguage  string `mapstructure:"ocrspace_language"`
	TimeoutSecs       int    `mapstructure:"timeout_secs"`
}

// LLMProviderConfig holds settings for a single LLM provider.
type LLMProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds enrichment settings. Provider "none" disables enrichment.
type LLMConfig struct {
	Primary  LLMProviderConfig `mapstructure:"primary"`
	Fallback LLMProviderConfig `mapstructure:"fallback"`
}

// Enabled reports whether an enrichment provider is configured.
func (l *LLMConfig) Enabled() bool {
	return l.Primary.Provider != "" && l.Primary.Provider != "none"
}

// FallbackConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) FallbackConfig() *LLMProviderConfig {
	if l.Fallback.Provider != "" && l.Fallback.Provider != "none" {
		return &l.Fallback
	}
	return nil
}

// ResilienceConfig controls retries and circuit breaking for outbound calls.
type ResilienceConfig struct {
	RetryMaxAttempts        int           `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff     time.Duration `mapstructure:"retry_initial_backoff"`
	RetryMaxBackoff         time.Duration `mapstructure:"retry_max_backoff"`
	RetryMultiplier         float64       `mapstructure:"retry_multiplier"`
	BreakerEnabled          bool          `mapstructure:"breaker_enabled"`
	BreakerMinRequests      uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio     float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout      time.Duration `mapstructure:"breaker_open_timeout"`
	BreakerHalfOpenMaxCalls uint32        `mapstructure:"breaker_half_open_max_calls"`
}

// RateLimitConfig holds per-client request limits. RequestsPerSecond <= 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// S3Config holds AWS S3 settings. Uploads are archived only when Enabled.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// ExportConfig bounds report exports.
type ExportConfig struct {
	MaxRows int `mapstructure:"max_rows"`
}

// envKeys are bound explicitly so nested keys resolve from MEDSCAN_* variables.
var envKeys = []string{
	"server.port", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"server.environment", "server.max_upload_bytes",
	"cors.allowed_origins",
	"db.host", "db.port", "db.user", "db.password", "db.name", "db.sslmode", "db.max_open", "db.max_idle",
	"auth.enabled", "auth.secret", "auth.issuer", "auth.audience",
	"ocr.backend", "ocr.pdf_max_text_bytes", "ocr.tesseract_binary", "ocr.tesseract_language",
	"ocr.tesseract_psm", "ocr.ocrspace_api_key", "ocr.ocrspace_endpoint", "ocr.ocrspace_language",
	"ocr.timeout_secs",
	"llm.primary.provider", "llm.primary.api_key", "llm.primary.model", "llm.primary.endpoint",
	"llm.primary.timeout_secs",
	"llm.fallback.provider", "llm.fallback.api_key", "llm.fallback.model", "llm.fallback.endpoint",
	"llm.fallback.timeout_secs",
	"resilience.retry_max_attempts", "resilience.retry_initial_backoff", "resilience.retry_max_backoff",
	"resilience.retry_multiplier", "resilience.breaker_enabled", "resilience.breaker_min_requests",
	"resilience.breaker_failure_ratio", "resilience.breaker_open_timeout",
	"resilience.breaker_half_open_max_calls",
	"ratelimit.requests_per_second", "ratelimit.burst",
	"s3.enabled", "s3.region", "s3.bucket", "s3.endpoint", "s3.access_key", "s3.secret_key",
	"s3.presign_expiry",
	"email.provider", "email.region", "email.from_address", "email.from_name", "email.frontend_url",
	"export.max_rows",
}

// Load reads configuration from environment variables with the MEDSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "medscan")
	v.SetDefault("db.password", "medscan_secret")
	v.SetDefault("db.name", "medscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", defaultJWTSecret)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	// OCR defaults
	v.SetDefault("ocr.backend", "pdf_only")
	v.SetDefault("ocr.pdf_max_text_bytes", 2<<20)
	v.SetDefault("ocr.tesseract_binary", "tesseract")
	v.SetDefault("ocr.tesseract_language", "eng")
	v.SetDefault("ocr.tesseract_psm", 0)
	v.SetDefault("ocr.ocrspace_api_key", "")
	v.SetDefault("ocr.ocrspace_endpoint", "")
	v.SetDefault("ocr.ocrspace_language", "eng")
	v.SetDefault("ocr.timeout_secs", 60)

	// LLM defaults
	v.SetDefault("llm.primary.provider", "none")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.model", "")
	v.SetDefault("llm.primary.endpoint", "")
	v.SetDefault("llm.primary.timeout_secs", 60)
	v.SetDefault("llm.fallback.provider", "")
	v.SetDefault("llm.fallback.api_key", "")
	v.SetDefault("llm.fallback.model", "")
	v.SetDefault("llm.fallback.endpoint", "")
	v.SetDefault("llm.fallback.timeout_secs", 60)

	// Resilience defaults
	v.SetDefault("resilience.retry_max_attempts", 3)
	v.SetDefault("resilience.retry_initial_backoff", "200ms")
	v.SetDefault("resilience.retry_max_backoff", "2s")
	v.SetDefault("resilience.retry_multiplier", 2.0)
	v.SetDefault("resilience.breaker_enabled", true)
	v.SetDefault("resilience.breaker_min_requests", 5)
	v.SetDefault("resilience.breaker_failure_ratio", 0.5)
	v.SetDefault("resilience.breaker_open_timeout", "30s")
	v.SetDefault("resilience.breaker_half_open_max_calls", 1)

	// Rate limit defaults
	v.SetDefault("ratelimit.requests_per_second", 5)
	v.SetDefault("ratelimit.burst", 10)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "medscan-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@medscan.local")
	v.SetDefault("email.from_name", "MedScan")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Export defaults
	v.SetDefault("export.max_rows", 10000)

	for _, key := range envKeys {
		_ = v.BindEnv(key, "MEDSCAN_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
		MaxUploadBytes:  v.GetInt64("server.max_upload_bytes"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		Enabled:  v.GetBool("auth.enabled"),
		Secret:   v.GetString("auth.secret"),
		Issuer:   v.GetString("auth.issuer"),
		Audience: v.GetString("auth.audience"),
	}
	cfg.OCR = OCRConfig{
		Backend:           strings.ToLower(v.GetString("ocr.backend")),
		PDFMaxTextBytes:   v.GetInt64("ocr.pdf_max_text_bytes"),
		TesseractBinary:   v.GetString("ocr.tesseract_binary"),
		TesseractLanguage: v.GetString("ocr.tesseract_language"),
		TesseractPSM:      v.GetInt("ocr.tesseract_psm"),
		OCRSpaceAPIKey:    v.GetString("ocr.ocrspace_api_key"),
		OCRSpaceEndpoint:  v.GetString("ocr.ocrspace_endpoint"),
		OCRSpaceLanguage:  v.GetString("ocr.ocrspace_language"),
		TimeoutSecs:       v.GetInt("ocr.timeout_secs"),
	}
	cfg.LLM = LLMConfig{
		Primary: LLMProviderConfig{
			Provider:    strings.ToLower(v.GetString("llm.primary.provider")),
			APIKey:      v.GetString("llm.primary.api_key"),
			Model:       v.GetString("llm.primary.model"),
			Endpoint:    v.GetString("llm.primary.endpoint"),
			TimeoutSecs: v.GetInt("llm.primary.timeout_secs"),
		},
		Fallback: LLMProviderConfig{
			Provider:    strings.ToLower(v.GetString("llm.fallback.provider")),
			APIKey:      v.GetString("llm.fallback.api_key"),
			Model:       v.GetString("llm.fallback.model"),
			Endpoint:    v.GetString("llm.fallback.endpoint"),
			TimeoutSecs: v.GetInt("llm.fallback.timeout_secs"),
		},
	}
	cfg.Resilience = ResilienceConfig{
		RetryMaxAttempts:        v.GetInt("resilience.retry_max_attempts"),
		RetryInitialBackoff:     v.GetDuration("resilience.retry_initial_backoff"),
		RetryMaxBackoff:         v.GetDuration("resilience.retry_max_backoff"),
		RetryMultiplier:         v.GetFloat64("resilience.retry_multiplier"),
		BreakerEnabled:          v.GetBool("resilience.breaker_enabled"),
		BreakerMinRequests:      v.GetUint32("resilience.breaker_min_requests"),
		BreakerFailureRatio:     v.GetFloat64("resilience.breaker_failure_ratio"),
		BreakerOpenTimeout:      v.GetDuration("resilience.breaker_open_timeout"),
		BreakerHalfOpenMaxCalls: v.GetUint32("resilience.breaker_half_open_max_calls"),
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("ratelimit.requests_per_second"),
		Burst:             v.GetInt("ratelimit.burst"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Email = EmailConfig{
		Provider:    strings.ToLower(v.GetString("email.provider")),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Export = ExportConfig{MaxRows: v.GetInt("export.max_rows")}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every misconfiguration found, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}

	switch c.OCR.Backend {
	case "pdf_only", "tesseract":
	case "ocrspace":
		if c.OCR.OCRSpaceAPIKey == "" {
			errs = append(errs, errors.New("ocr.ocrspace_api_key is required for the ocrspace backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("ocr.backend %q must be one of pdf_only, tesseract, ocrspace", c.OCR.Backend))
	}

	errs = append(errs, validateLLMProvider("llm.primary", c.LLM.Primary)...)
	errs = append(errs, validateLLMProvider("llm.fallback", c.LLM.Fallback)...)
	if !c.LLM.Enabled() && c.LLM.FallbackConfig() != nil {
		errs = append(errs, errors.New("llm.fallback requires llm.primary to be configured"))
	}

	if c.Auth.Enabled {
		if c.Auth.Secret == "" {
			errs = append(errs, errors.New("auth.secret is required when auth is enabled"))
		} else if c.Auth.Secret == defaultJWTSecret && c.Server.Environment == "production" {
			errs = append(errs, errors.New("auth.secret must be changed in production"))
		}
	}

	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("ratelimit.burst must be positive when rate limiting is enabled"))
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, errors.New("s3.bucket is required when s3 is enabled"))
	}

	switch c.Email.Provider {
	case "noop", "ses":
	default:
		errs = append(errs, fmt.Errorf("email.provider %q must be noop or ses", c.Email.Provider))
	}

	if c.Export.MaxRows <= 0 {
		errs = append(errs, errors.New("export.max_rows must be positive"))
	}

	return errors.Join(errs...)
}

func validateLLMProvider(prefix string, p LLMProviderConfig) []error {
	switch p.Provider {
	case "", "none":
		return nil
	case "gemini", "openai":
		if p.APIKey == "" {
			return []error{fmt.Errorf("%s.api_key is required for provider %s", prefix, p.Provider)}
		}
		return nil
	default:
		return []error{fmt.Errorf("%s.provider %q must be one of none, gemini, openai", prefix, p.Provider)}
	}
}
