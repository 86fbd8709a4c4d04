package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	S3         S3Config
	Textract   TextractConfig
	Generative GenerativeConfig
	Engine     EngineConfig
	TypeConfig TypeConfigConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// S3Config holds settings for the object store documents are fetched from.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// TextractConfig holds settings for the structured query layer.
type TextractConfig struct {
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// GenerativeConfig holds settings for the generative extraction layer.
type GenerativeConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	TimeoutSecs       int     `mapstructure:"timeout_secs"`
	DefaultConfidence float64 `mapstructure:"default_confidence"`
}

// EngineConfig holds the pipeline thresholds.
type EngineConfig struct {
	MinClassification   float64 `mapstructure:"min_classification"`
	PrimaryConfidence   float64 `mapstructure:"primary_confidence"`
	SecondaryConfidence float64 `mapstructure:"secondary_confidence"`
	TieMargin           float64 `mapstructure:"tie_margin"`
	AgreementBonus      float64 `mapstructure:"agreement_bonus"`
	ConfidenceFloor     float64 `mapstructure:"confidence_floor"`
	ReviewAverage       float64 `mapstructure:"review_average"`
	MoneyTolerance      float64 `mapstructure:"money_tolerance"`
}

// TypeConfigConfig holds settings for document type definition overlays.
type TypeConfigConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from environment variables with the FIELDLENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIELDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "fieldlens-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	// Textract defaults
	v.SetDefault("textract.region", "us-east-1")
	v.SetDefault("textract.access_key", "")
	v.SetDefault("textract.secret_key", "")
	v.SetDefault("textract.endpoint", "")
	v.SetDefault("textract.timeout_secs", 10)

	// Generative layer defaults
	v.SetDefault("generative.api_key", "")
	v.SetDefault("generative.model", "claude-sonnet-4-20250514")
	v.SetDefault("generative.timeout_secs", 10)
	v.SetDefault("generative.default_confidence", 0.7)

	// Pipeline threshold defaults
	v.SetDefault("engine.min_classification", 0.3)
	v.SetDefault("engine.primary_confidence", 0.6)
	v.SetDefault("engine.secondary_confidence", 0.5)
	v.SetDefault("engine.tie_margin", 0.05)
	v.SetDefault("engine.agreement_bonus", 0.05)
	v.SetDefault("engine.confidence_floor", 0.6)
	v.SetDefault("engine.review_average", 0.8)
	v.SetDefault("engine.money_tolerance", 0.01)

	// Type definition overlay defaults
	v.SetDefault("typeconfig.dir", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "FIELDLENS_SERVER_PORT",
		"server.read_timeout":           "FIELDLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "FIELDLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":            "FIELDLENS_SERVER_ENVIRONMENT",
		"log.level":                     "FIELDLENS_LOG_LEVEL",
		"log.format":                    "FIELDLENS_LOG_FORMAT",
		"cors.allowed_origins":          "FIELDLENS_CORS_ALLOWED_ORIGINS",
		"s3.region":                     "FIELDLENS_S3_REGION",
		"s3.bucket":                     "FIELDLENS_S3_BUCKET",
		"s3.endpoint":                   "FIELDLENS_S3_ENDPOINT",
		"s3.access_key":                 "FIELDLENS_S3_ACCESS_KEY",
		"s3.secret_key":                 "FIELDLENS_S3_SECRET_KEY",
		"textract.region":               "FIELDLENS_TEXTRACT_REGION",
		"textract.access_key":           "FIELDLENS_TEXTRACT_ACCESS_KEY",
		"textract.secret_key":           "FIELDLENS_TEXTRACT_SECRET_KEY",
		"textract.endpoint":             "FIELDLENS_TEXTRACT_ENDPOINT",
		"textract.timeout_secs":         "FIELDLENS_TEXTRACT_TIMEOUT_SECS",
		"generative.api_key":            "FIELDLENS_GENERATIVE_API_KEY",
		"generative.model":              "FIELDLENS_GENERATIVE_MODEL",
		"generative.timeout_secs":       "FIELDLENS_GENERATIVE_TIMEOUT_SECS",
		"generative.default_confidence": "FIELDLENS_GENERATIVE_DEFAULT_CONFIDENCE",
		"engine.min_classification":     "FIELDLENS_ENGINE_MIN_CLASSIFICATION",
		"engine.primary_confidence":     "FIELDLENS_ENGINE_PRIMARY_CONFIDENCE",
		"engine.secondary_confidence":   "FIELDLENS_ENGINE_SECONDARY_CONFIDENCE",
		"engine.tie_margin":             "FIELDLENS_ENGINE_TIE_MARGIN",
		"engine.agreement_bonus":        "FIELDLENS_ENGINE_AGREEMENT_BONUS",
		"engine.confidence_floor":       "FIELDLENS_ENGINE_CONFIDENCE_FLOOR",
		"engine.review_average":         "FIELDLENS_ENGINE_REVIEW_AVERAGE",
		"engine.money_tolerance":        "FIELDLENS_ENGINE_MONEY_TOLERANCE",
		"typeconfig.dir":                "FIELDLENS_TYPECONFIG_DIR",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FIELDLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIELDLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitOrigins(v.GetString("cors.allowed_origins")),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Textract = TextractConfig{
		Region:      v.GetString("textract.region"),
		AccessKey:   v.GetString("textract.access_key"),
		SecretKey:   v.GetString("textract.secret_key"),
		Endpoint:    v.GetString("textract.endpoint"),
		TimeoutSecs: v.GetInt("textract.timeout_secs"),
	}
	cfg.Generative = GenerativeConfig{
		APIKey:            v.GetString("generative.api_key"),
		Model:             v.GetString("generative.model"),
		TimeoutSecs:       v.GetInt("generative.timeout_secs"),
		DefaultConfidence: v.GetFloat64("generative.default_confidence"),
	}
	cfg.Engine = EngineConfig{
		MinClassification:   v.GetFloat64("engine.min_classification"),
		PrimaryConfidence:   v.GetFloat64("engine.primary_confidence"),
		SecondaryConfidence: v.GetFloat64("engine.secondary_confidence"),
		TieMargin:           v.GetFloat64("engine.tie_margin"),
		AgreementBonus:      v.GetFloat64("engine.agreement_bonus"),
		ConfidenceFloor:     v.GetFloat64("engine.confidence_floor"),
		ReviewAverage:       v.GetFloat64("engine.review_average"),
		MoneyTolerance:      v.GetFloat64("engine.money_tolerance"),
	}
	cfg.TypeConfig = TypeConfigConfig{
		Dir: v.GetString("typeconfig.dir"),
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
