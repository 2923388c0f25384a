package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Mistral  MistralConfig
	Assembly AssemblyAIConfig
	Pipeline PipelineConfig
	Worker   WorkerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// MistralConfig holds the Voxtral inference backend configuration
type MistralConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AssemblyAIConfig holds the diarization backend configuration
type AssemblyAIConfig struct {
	APIKey  string
	Enabled bool
}

// PipelineConfig holds chunked-analysis tuning knobs
type PipelineConfig struct {
	WindowLengthSeconds float64
	OverlapSeconds      float64
	MinIntervalSeconds  float64
	ChunkMaxTokens      int
	SynthesisMaxTokens  int
	SectionCatalogPath  string // optional YAML override for the section catalog
	TempDir             string
}

// WorkerConfig holds the analysis worker pool configuration
type WorkerConfig struct {
	Count        int
	PollInterval time.Duration
	JobTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meeting_notes"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-notes"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Mistral: MistralConfig{
			APIKey:  getEnv("MISTRAL_API_KEY", ""),
			BaseURL: getEnv("MISTRAL_API_URL", "https://api.mistral.ai"),
			Model:   getEnv("MISTRAL_MODEL", "voxtral-small-latest"),
		},
		Assembly: AssemblyAIConfig{
			APIKey:  getEnv("ASSEMBLYAI_API_KEY", ""),
			Enabled: getEnvAsBool("DIARIZATION_ENABLED", false),
		},
		Pipeline: PipelineConfig{
			WindowLengthSeconds: getEnvAsFloat("PIPELINE_WINDOW_SECONDS", 900),
			OverlapSeconds:      getEnvAsFloat("PIPELINE_OVERLAP_SECONDS", 10),
			MinIntervalSeconds:  getEnvAsFloat("PIPELINE_MIN_INTERVAL_SECONDS", 0.1),
			ChunkMaxTokens:      getEnvAsInt("PIPELINE_CHUNK_MAX_TOKENS", 4000),
			SynthesisMaxTokens:  getEnvAsInt("PIPELINE_SYNTHESIS_MAX_TOKENS", 8000),
			SectionCatalogPath:  getEnv("PIPELINE_SECTION_CATALOG", ""),
			TempDir:             getEnv("PIPELINE_TEMP_DIR", ""),
		},
		Worker: WorkerConfig{
			Count:        getEnvAsInt("WORKER_COUNT", 2),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "5s"),
			JobTimeout:   getEnvAsDuration("WORKER_JOB_TIMEOUT", "30m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mistral.APIKey == "" {
		return fmt.Errorf("MISTRAL_API_KEY is required")
	}
	if c.Assembly.Enabled && c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required when diarization is enabled")
	}
	if c.Pipeline.WindowLengthSeconds <= 0 {
		return fmt.Errorf("PIPELINE_WINDOW_SECONDS must be positive")
	}
	if c.Pipeline.OverlapSeconds < 0 || c.Pipeline.OverlapSeconds >= c.Pipeline.WindowLengthSeconds {
		return fmt.Errorf("PIPELINE_OVERLAP_SECONDS must be in [0, window length)")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// SectionOverride is one catalog entry loaded from a YAML override file
type SectionOverride struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// LoadSectionOverrides reads custom section definitions from the configured
// YAML file. Returns nil when no path is set.
func (c *Config) LoadSectionOverrides() ([]SectionOverride, error) {
	if c.Pipeline.SectionCatalogPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Pipeline.SectionCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("read section catalog: %w", err)
	}
	var doc struct {
		Sections []SectionOverride `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse section catalog: %w", err)
	}
	return doc.Sections, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
