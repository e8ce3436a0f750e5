package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lawchat/internal/domain"
)

// Payload keys written by the indexing pipeline.
const (
	payloadText     = "text"
	payloadDocument = "document"
	payloadMetadata = "metadata"
)

// Adapter turns a question into ranked candidate passages and an answer.
type Adapter struct {
	embedder    domain.Embedder
	store       domain.VectorStore
	synthesizer domain.Synthesizer
	topK        int
	log         *zap.Logger
}

func NewAdapter(embedder domain.Embedder, store domain.VectorStore, synthesizer domain.Synthesizer, topK int, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		embedder:    embedder,
		store:       store,
		synthesizer: synthesizer,
		topK:        topK,
		log:         log.Named("search"),
	}
}

// Retrieve embeds the query and returns up to topK candidates, best first.
// Hits with no text, or metadata that is not a mapping of scalars, are dropped.
func (a *Adapter) Retrieve(ctx context.Context, query string) ([]domain.Passage, error) {
	vec, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrSearchUnavailable, err)
	}
	points, err := a.store.Search(ctx, vec, a.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrSearchUnavailable, err)
	}
	candidates := make([]domain.Passage, 0, len(points))
	for _, pt := range points {
		p, ok := a.toPassage(pt)
		if !ok {
			continue
		}
		candidates = append(candidates, p)
	}
	a.log.Debug("retrieved candidates",
		zap.Int("hits", len(points)),
		zap.Int("candidates", len(candidates)),
		zap.Int("top_k", a.topK))
	return candidates, nil
}

// Synthesize writes the answer over the given candidates.
func (a *Adapter) Synthesize(ctx context.Context, query string, candidates []domain.Passage) (string, error) {
	analysis, err := a.synthesizer.Synthesize(ctx, query, candidates)
	if err != nil {
		return "", fmt.Errorf("%w: synthesize answer: %w", domain.ErrSearchUnavailable, err)
	}
	return analysis, nil
}

// Search retrieves candidates and synthesizes the answer over them.
func (a *Adapter) Search(ctx context.Context, query string) (string, []domain.Passage, error) {
	candidates, err := a.Retrieve(ctx, query)
	if err != nil {
		return "", nil, err
	}
	analysis, err := a.Synthesize(ctx, query, candidates)
	if err != nil {
		return "", nil, err
	}
	return analysis, candidates, nil
}

func (a *Adapter) toPassage(pt domain.ScoredPoint) (domain.Passage, bool) {
	content, _ := pt.Payload[payloadText].(string)
	if content == "" {
		content, _ = pt.Payload[payloadDocument].(string)
	}
	if content == "" {
		a.log.Debug("skipping hit without text", zap.String("id", pt.ID))
		return domain.Passage{}, false
	}
	md, err := domain.ParseMetadata(pt.Payload[payloadMetadata])
	if err != nil {
		a.log.Debug("skipping hit", zap.String("id", pt.ID), zap.Error(err))
		return domain.Passage{}, false
	}
	return domain.Passage{Content: content, Metadata: md, Score: pt.Score}, true
}
