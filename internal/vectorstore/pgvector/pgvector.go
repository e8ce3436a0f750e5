package pgvector

import (
	"context"
	"errors"
	"time"

	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lawchat/internal/domain"
)

// PassageRow is the table layout written by the indexing pipeline.
type PassageRow struct {
	ID        string            `gorm:"primaryKey"`
	Content   string            `gorm:"type:text"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding pgv.Vector        `gorm:"type:vector"`
}

type hit struct {
	ID       string
	Content  string
	Metadata datatypes.JSONMap
	Distance float64
}

type Config struct {
	DSN   string
	Table string
}

// Storage runs cosine-distance queries against a pgvector table.
type Storage struct {
	db    *gorm.DB
	table string
}

// Open connects to Postgres. The table must already exist.
func Open(cfg Config) (*Storage, error) {
	if cfg.DSN == "" {
		return nil, errors.New("pgvector: empty DSN")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return New(db, cfg.Table), nil
}

// New wraps an existing connection.
func New(db *gorm.DB, table string) *Storage {
	if table == "" {
		table = "case_passages"
	}
	return &Storage{db: db, table: table}
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.ScoredPoint, error) {
	if topK <= 0 {
		topK = 10
	}
	q := pgv.NewVector(toFloat32(vector))
	var hits []hit
	err := s.db.WithContext(ctx).
		Table(s.table).
		Select("id, content, metadata, embedding <=> ? AS distance", q).
		Order("distance").
		Limit(topK).
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}
	points := make([]domain.ScoredPoint, len(hits))
	for i, h := range hits {
		points[i] = toPoint(h)
	}
	return points, nil
}

func toPoint(h hit) domain.ScoredPoint {
	// <=> is cosine distance in [0, 2].
	score := 1 - h.Distance
	payload := map[string]any{"text": h.Content}
	if h.Metadata != nil {
		payload["metadata"] = map[string]any(h.Metadata)
	}
	return domain.ScoredPoint{ID: h.ID, Payload: payload, Score: &score}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
