package domain

import (
	"context"
	"errors"
)

var (
	// ErrSearchUnavailable wraps any failure of the similarity search step.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrMalformedMetadata marks a search hit whose metadata is not a well-formed mapping.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// ErrEmptyQuery is returned for blank questions.
	ErrEmptyQuery = errors.New("empty query")
)

// DefaultDistance is reported for passages without a similarity score.
const DefaultDistance = 0.5

// Passage is one scored unit of case text returned by similarity search.
type Passage struct {
	Content  string
	Metadata Metadata
	// Score is nil when the index did not report a similarity.
	Score *float64
}

// Distance converts a similarity score into a distance, lower being more relevant.
// A zero score is a real score and maps to 1.
func Distance(score *float64) float64 {
	if score == nil {
		return DefaultDistance
	}
	return 1 - *score
}

// ScoredPoint is a raw hit as returned by a vector store.
type ScoredPoint struct {
	ID      string
	Payload map[string]any
	Score   *float64
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore supports similarity search over a pre-built index.
type VectorStore interface {
	Search(ctx context.Context, vector []float64, topK int) ([]ScoredPoint, error)
}

// Synthesizer writes an answer to the query grounded in the given passages.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, passages []Passage) (string, error)
}

// ChatOptions tunes a single free-form consultation call. Zero or nil
// fields use the client defaults; a non-nil Temperature of 0 is honored.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Chatter answers a free-form prompt without retrieval.
type Chatter interface {
	Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error)
}

// Response is the wire shape returned to presentation layers. Documents holds
// a single group whose entries are index-aligned with Metadatas and Distances.
type Response struct {
	Analysis  string           `json:"analysis"`
	Documents [][]string       `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
	Distances []float64        `json:"distances"`
}

// Passages returns the single document group, or nil when there is none.
func (r Response) Passages() []string {
	if len(r.Documents) == 0 {
		return nil
	}
	return r.Documents[0]
}

// DegradedResponse carries a failure explanation in the normal response shape.
func DegradedResponse(analysis string) Response {
	return Response{
		Analysis:  analysis,
		Documents: [][]string{},
		Metadatas: []map[string]any{},
		Distances: []float64{},
	}
}
