package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"lawchat/internal/domain"
)

// Point is one indexed passage in a snapshot file.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// It is read-only after NewStorage returns and safe for concurrent use.
type Storage struct {
	dimension int
	points    []Point
	norms     []float64
}

func NewStorage(points []Point) (*Storage, error) {
	s := &Storage{}
	for _, p := range points {
		if len(p.Vector) == 0 {
			return nil, fmt.Errorf("point %q has no vector", p.ID)
		}
		if s.dimension == 0 {
			s.dimension = len(p.Vector)
		}
		if len(p.Vector) != s.dimension {
			return nil, errors.New("vector dimension mismatch")
		}
		s.points = append(s.points, p)
		s.norms = append(s.norms, norm(p.Vector))
	}
	return s, nil
}

// LoadSnapshot reads a JSON array of points built by the indexing pipeline.
func LoadSnapshot(path string) (*Storage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var points []Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return NewStorage(points)
}

// Len reports the number of indexed points.
func (s *Storage) Len() int {
	return len(s.points)
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.ScoredPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}
	if len(s.points) > 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(vector), s.dimension)
	}
	qn := norm(vector)
	scores := make([]float64, len(s.points))
	for i := range s.points {
		if qn == 0 || s.norms[i] == 0 {
			continue
		}
		scores[i] = dot(s.points[i].Vector, vector) / (qn * s.norms[i])
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	// Stable so equal scores keep index order.
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.ScoredPoint, 0, topK)
	for _, j := range idxs[:topK] {
		sc := scores[j]
		results = append(results, domain.ScoredPoint{ID: s.points[j].ID, Payload: s.points[j].Payload, Score: &sc})
	}
	return results, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
