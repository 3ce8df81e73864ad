package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Analyzer   AnalyzerConfig
	Generation GenerationConfig
	Catalog    CatalogConfig
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development staging production test"`
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string `validate:"omitempty,url"`
	APIKey     string
	Collection string `validate:"required"`
}

type GeminiConfig struct {
	APIKey         string
	Model          string `validate:"required"`
	EmbeddingModel string `validate:"required"`
}

type AnalyzerConfig struct {
	MaxFileSize         int64         `validate:"gt=0"`
	SupportedMediaTypes []string      `validate:"min=1,dive,required"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	Concurrency         int           `validate:"gte=1"`
	QueueWait           time.Duration `validate:"gte=0"`
	MaxSuggestions      int           `validate:"gte=1"`
	HighScoreThreshold  int           `validate:"gte=0,lte=100"`
}

type GenerationConfig struct {
	Enabled     bool
	Timeout     time.Duration `validate:"gt=0"`
	MaxRetries  int           `validate:"gte=0,lte=5"`
	Backoff     time.Duration `validate:"gte=0"`
	Temperature float32       `validate:"gte=0,lte=2"`
}

type CatalogConfig struct {
	Source           string  `validate:"oneof=embedded file postgres"`
	Path             string  `validate:"required_if=Source file"`
	SemanticLookup   bool
	SemanticMinScore float32 `validate:"gte=0,lte=1"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_analyzer"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_categories"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Analyzer: AnalyzerConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5242880),
			SupportedMediaTypes: getEnvAsList("SUPPORTED_MEDIA_TYPES", []string{
				"application/pdf",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"text/plain",
			}),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", "30s"),
			Concurrency:        getEnvAsInt("ANALYZER_CONCURRENCY", 4),
			QueueWait:          getEnvAsDuration("QUEUE_WAIT", "0s"),
			MaxSuggestions:     getEnvAsInt("MAX_SUGGESTIONS", 8),
			HighScoreThreshold: getEnvAsInt("HIGH_SCORE_THRESHOLD", 85),
		},
		Generation: GenerationConfig{
			Enabled:     getEnvAsBool("GENERATION_ENABLED", false),
			Timeout:     getEnvAsDuration("GENERATION_TIMEOUT", "10s"),
			MaxRetries:  getEnvAsInt("GENERATION_MAX_RETRIES", 1),
			Backoff:     getEnvAsDuration("GENERATION_BACKOFF", "1s"),
			Temperature: getEnvAsFloat32("GENERATION_TEMPERATURE", 0.3),
		},
		Catalog: CatalogConfig{
			Source:           getEnv("CATALOG_SOURCE", CatalogEmbedded),
			Path:             getEnv("CATALOG_PATH", ""),
			SemanticLookup:   getEnvAsBool("SEMANTIC_CATEGORIES", false),
			SemanticMinScore: getEnvAsFloat32("SEMANTIC_MIN_SCORE", 0.75),
		},
	}
}

// Validate checks field constraints and the combinations between groups.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Generation.Enabled && c.Gemini.APIKey == "" {
		return errors.New("invalid configuration: GENERATION_ENABLED requires GEMINI_API_KEY")
	}
	if c.Catalog.SemanticLookup {
		if c.Gemini.APIKey == "" {
			return errors.New("invalid configuration: SEMANTIC_CATEGORIES requires GEMINI_API_KEY")
		}
		if c.Qdrant.URL == "" {
			return errors.New("invalid configuration: SEMANTIC_CATEGORIES requires QDRANT_URL")
		}
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
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
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsList reads a comma separated list.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
