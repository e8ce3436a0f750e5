package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds connection details for an OpenAI-compatible API.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// EmbedderConfig configures the query embedder.
type EmbedderConfig struct {
	Type   string       `yaml:"type" validate:"oneof=openai"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type     string          `yaml:"type" validate:"oneof=memory qdrant pgvector"`
	Memory   *MemoryConfig   `yaml:"memory,omitempty" validate:"required_if=Type memory"`
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty" validate:"required_if=Type qdrant"`
	PGVector *PGVectorConfig `yaml:"pgvector,omitempty" validate:"required_if=Type pgvector"`
}

// MemoryConfig points at a JSON snapshot of indexed passages.
type MemoryConfig struct {
	SnapshotPath string `yaml:"snapshot_path" validate:"required"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" validate:"required,url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// PGVectorConfig contains connection details for a Postgres pgvector table.
type PGVectorConfig struct {
	DSNEnv string `yaml:"dsn_env" validate:"required"`
	Table  string `yaml:"table"`
}

// SynthesizerConfig selects how answers are written.
type SynthesizerConfig struct {
	Type         string       `yaml:"type" validate:"oneof=openai frequency"`
	OpenAI       OpenAIConfig `yaml:"openai"`
	Temperature  *float64     `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens    int          `yaml:"max_tokens" validate:"gte=0"`
	MaxSentences int          `yaml:"max_sentences" validate:"gte=0"`
}

// RetrievalConfig bounds the search and the deduplicated result set.
type RetrievalConfig struct {
	TopK  int `yaml:"top_k" validate:"gte=1,gtefield=Limit"`
	Limit int `yaml:"limit" validate:"gte=1"`
}

// CorpusConfig lists the case document directories, in probe order.
type CorpusConfig struct {
	Dirs []string `yaml:"dirs" validate:"min=1,dive,required"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Production bool   `yaml:"production"`
	File       string `yaml:"file"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Log         LogConfig         `yaml:"log"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/lawchat/config.yaml.
// If neither exists, defaults are returned.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func Validate(cfg *AppConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lawchat", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "openai"},
		VectorStore: VectorStoreConfig{
			Type:   "memory",
			Memory: &MemoryConfig{SnapshotPath: "index/law_cases.json"},
		},
		Synthesizer: SynthesizerConfig{Type: "openai"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	openAIDefaults(&cfg.Embedder.OpenAI, "text-embedding-3-small")
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "law_cases"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if p := cfg.VectorStore.PGVector; p != nil && p.Table == "" {
		p.Table = "case_passages"
	}
	if cfg.Synthesizer.Type == "" {
		cfg.Synthesizer.Type = "openai"
	}
	openAIDefaults(&cfg.Synthesizer.OpenAI, "gpt-4o-mini")
	if cfg.Synthesizer.Temperature == nil {
		t := 0.3
		cfg.Synthesizer.Temperature = &t
	}
	if cfg.Synthesizer.MaxTokens == 0 {
		cfg.Synthesizer.MaxTokens = 3500
	}
	if cfg.Synthesizer.MaxSentences == 0 {
		cfg.Synthesizer.MaxSentences = 5
	}
	if cfg.Retrieval.Limit == 0 {
		cfg.Retrieval.Limit = 3
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if len(cfg.Corpus.Dirs) == 0 {
		cfg.Corpus.Dirs = []string{
			filepath.Join("law_data", "civil_law_details"),
			filepath.Join("law_data", "commercial_law_details"),
			"law_data",
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}

func openAIDefaults(c *OpenAIConfig, model string) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 30
	}
}
