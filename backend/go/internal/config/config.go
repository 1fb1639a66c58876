package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FieldConfig describes one field of the Milvus collection.
type FieldConfig struct {
	Name         string `yaml:"name"`                // field name
	DataType     string `yaml:"dataType"`            // "VarChar", "FloatVector", ...
	IsPrimaryKey bool   `yaml:"isPrimaryKey"`        // primary key flag
	Dim          int    `yaml:"dim,omitempty"`       // vector dimension, vector fields only
	MaxLength    int    `yaml:"maxLength,omitempty"` // VarChar fields only
}

// IndexConfig describes the vector index built on the Milvus collection.
type IndexConfig struct {
	FieldName  string                 `yaml:"fieldName"`
	IndexType  string                 `yaml:"indexType"`  // "IVF_FLAT", "HNSW", "AUTOINDEX"
	MetricType string                 `yaml:"metricType"` // "L2", "COSINE", "IP"
	Params     map[string]interface{} `yaml:"params"`
}

// SchemaConfig is the Milvus collection schema.
type SchemaConfig struct {
	Description string        `yaml:"description"`
	VectorField string        `yaml:"vectorField"`
	Fields      []FieldConfig `yaml:"fields"`
	Index       IndexConfig   `yaml:"index"`
}

// MilvusConfig holds the Milvus connection and schema.
type MilvusConfig struct {
	Address string       `yaml:"address"`
	Schema  SchemaConfig `yaml:"schema"`
}

// QdrantConfig holds the Qdrant gRPC connection.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"apiKey"`
	UseTLS bool   `yaml:"useTLS"`
}

// RedisConfig holds the Redis connection used by the distributed rate limiter.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig holds the MySQL connection and pool settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// SQLiteConfig holds the path of the embedded database used for local runs.
type SQLiteConfig struct {
	Path string `yaml:"path"` // ":memory:" is accepted
}

// MinIOConfig holds the S3-compatible object storage connection.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// KafkaConfig holds the brokers that receive document ingestion events.
// An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DatabaseConfigs groups every backing service.
type DatabaseConfigs struct {
	Driver string       `yaml:"driver"` // "mysql" or "sqlite"
	MySQL  MySQLConfig  `yaml:"mysql"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Milvus MilvusConfig `yaml:"milvus"`
	Qdrant QdrantConfig `yaml:"qdrant"`
	Redis  RedisConfig  `yaml:"redis"`
	MinIO  MinIOConfig  `yaml:"minio"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// AppInfo is the 'app' section.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"` // "development", "production"
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	JwtSecret       string        `yaml:"jwtSecret"`
	TokenTTL        time.Duration `yaml:"tokenTTL"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTTL"`
}

// LoggerConfig configures the global logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// GeminiConfig holds Gemini credentials.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// OllamaConfig holds a local Ollama endpoint.
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// OpenAIConfig holds OpenAI-compatible credentials.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

// LLMConfig selects the generation model.
// PrimaryModel is tried first and FallbackModel only if the primary cannot be initialized.
// With SkipProbe the first model that can be constructed is selected without a test call.
type LLMConfig struct {
	Provider      string       `yaml:"provider"` // "gemini", "ollama", "openai"
	PrimaryModel  string       `yaml:"primaryModel"`
	FallbackModel string       `yaml:"fallbackModel"`
	SkipProbe     bool         `yaml:"skipProbe"`
	Gemini        GeminiConfig `yaml:"gemini"`
	Ollama        OllamaConfig `yaml:"ollama"`
	OpenAI        OpenAIConfig `yaml:"openai"`
}

// EmbeddingConfig selects the embedding model used by the vector index.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"`
	Gemini   GeminiConfig `yaml:"gemini"`
	Ollama   OllamaConfig `yaml:"ollama"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// RAGConfig holds the segmentation and retrieval constants.
type RAGConfig struct {
	ChunkSize     int           `yaml:"chunkSize"`
	MinChunkLen   int           `yaml:"minChunkLen"`
	TopK          int           `yaml:"topK"`
	IngestTimeout time.Duration `yaml:"ingestTimeout"`
	AnswerTimeout time.Duration `yaml:"answerTimeout"`
}

// VectorStoreConfig selects the vector index backend.
type VectorStoreConfig struct {
	Provider   string `yaml:"provider"` // "chromem", "milvus", "qdrant"
	Path       string `yaml:"path"`     // chromem persistence directory
	Collection string `yaml:"collection"`
	Compress   bool   `yaml:"compress"`
}

// StorageConfig selects where uploaded law files are kept.
type StorageConfig struct {
	Provider string `yaml:"provider"` // "local" or "minio"
	LocalDir string `yaml:"localDir"`
}

// MiddlewareConfig groups the HTTP middlewares.
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig configures per-client request limiting.
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // "tokenBucket", "fixedWindow", "redisFixedWindow"
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
}

// FixedWindowConfig configures both fixed window variants.
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // "1m", "30s"
}

// TokenBucketConfig configures the token bucket.
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // tokens per second
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig configures the breakers around the HTTP server and the model calls.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // "30s"
}

// AppConfig is the root of the YAML file.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	RAG         RAGConfig         `yaml:"rag"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Storage     StorageConfig     `yaml:"storage"`
	Logger      LoggerConfig      `yaml:"logger"`
	Databases   DatabaseConfigs   `yaml:"databases"`
	Middleware  MiddlewareConfig  `yaml:"middleware"`
}

// LoadConfig reads the YAML file at path, applies environment overrides
// for secrets and fills every unset value with its default.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file '%s': %w", path, err)
	}
	cfg, err := Parse(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("parse config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes raw YAML into an AppConfig with overrides and defaults applied.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that cannot start.
func (c *AppConfig) Validate() error {
	switch c.VectorStore.Provider {
	case "chromem", "milvus", "qdrant":
	default:
		return fmt.Errorf("unsupported vector store provider: %s", c.VectorStore.Provider)
	}
	switch c.Storage.Provider {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Storage.Provider)
	}
	switch c.Databases.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Databases.Driver)
	}
	if c.RAG.MinChunkLen >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.minChunkLen (%d) must be smaller than rag.chunkSize (%d)", c.RAG.MinChunkLen, c.RAG.ChunkSize)
	}
	return nil
}

// Models returns the generation model identifiers in the order they should be tried.
func (l LLMConfig) Models() []string {
	var out []string
	for _, m := range []string{l.PrimaryModel, l.FallbackModel} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKey = v
		if cfg.Embedding.Gemini.APIKey == "" {
			cfg.Embedding.Gemini.APIKey = v
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
		if cfg.Embedding.OpenAI.APIKey == "" {
			cfg.Embedding.OpenAI.APIKey = v
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JwtSecret = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Databases.Driver = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.App.Name == "" {
		cfg.App.Name = "legal_service"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 50 << 20
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.RefreshTokenTTL == 0 {
		cfg.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	if cfg.LLM.PrimaryModel == "" && cfg.LLM.FallbackModel == "" {
		cfg.LLM.PrimaryModel = "gemini-3-flash-preview"
		cfg.LLM.FallbackModel = "gemini-1.5-flash"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Gemini.Model == "" {
		cfg.Embedding.Gemini.Model = "text-embedding-004"
	}
	if cfg.Embedding.Gemini.APIKey == "" {
		cfg.Embedding.Gemini.APIKey = cfg.LLM.Gemini.APIKey
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	if cfg.RAG.MinChunkLen == 0 {
		cfg.RAG.MinChunkLen = 50
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.RAG.IngestTimeout == 0 {
		cfg.RAG.IngestTimeout = 5 * time.Minute
	}
	if cfg.RAG.AnswerTimeout == 0 {
		cfg.RAG.AnswerTimeout = 60 * time.Second
	}
	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = "chromem"
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "./chroma_db"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "zakoni"
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./media"
	}
	if cfg.Databases.Driver == "" {
		cfg.Databases.Driver = "sqlite"
	}
	if cfg.Databases.SQLite.Path == "" {
		cfg.Databases.SQLite.Path = "legal.db"
	}
	if cfg.Databases.Qdrant.Port == 0 {
		cfg.Databases.Qdrant.Port = 6334
	}
	if cfg.Databases.Kafka.Topic == "" {
		cfg.Databases.Kafka.Topic = "documents.indexed"
	}
	if cfg.Middleware.RateLimiter.Algorithm == "" {
		cfg.Middleware.RateLimiter.Algorithm = "tokenBucket"
	}
	if cfg.Middleware.CircuitBreaker.Timeout == "" {
		cfg.Middleware.CircuitBreaker.Timeout = "30s"
	}
	if cfg.Middleware.CircuitBreaker.FailureThreshold == 0 {
		cfg.Middleware.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.Middleware.CircuitBreaker.SuccessThreshold == 0 {
		cfg.Middleware.CircuitBreaker.SuccessThreshold = 1
	}
}
