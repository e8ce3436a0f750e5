package vectorstore

import (
	"fmt"
	"os"
	"time"

	"lawchat/internal/config"
	"lawchat/internal/domain"
	"lawchat/internal/vectorstore/memory"
	"lawchat/internal/vectorstore/pgvector"
	"lawchat/internal/vectorstore/qdrant"
)

// Open builds the configured read-only store. Secrets are read from the
// environment variables named in cfg.
func Open(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "memory", "":
		if cfg.Memory == nil {
			return nil, fmt.Errorf("memory store config missing")
		}
		return memory.LoadSnapshot(cfg.Memory.SnapshotPath)
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		q := cfg.Qdrant
		var key string
		if q.APIKeyEnv != "" {
			key = os.Getenv(q.APIKeyEnv)
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     key,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	case "pgvector":
		if cfg.PGVector == nil {
			return nil, fmt.Errorf("pgvector config missing")
		}
		dsn := os.Getenv(cfg.PGVector.DSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("missing postgres DSN in env %s", cfg.PGVector.DSNEnv)
		}
		return pgvector.Open(pgvector.Config{DSN: dsn, Table: cfg.PGVector.Table})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
