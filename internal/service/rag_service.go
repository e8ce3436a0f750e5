package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lawchat/internal/domain"
	"lawchat/internal/retrieval"
)

// Searcher is the vector search side of the pipeline.
type Searcher interface {
	Retrieve(ctx context.Context, query string) ([]domain.Passage, error)
	Synthesize(ctx context.Context, query string, candidates []domain.Passage) (string, error)
}

// Config holds per-process retrieval settings.
type Config struct {
	// DefaultLimit is used by callers that do not choose a result bound.
	DefaultLimit int
}

// RAGService answers legal questions from retrieved case passages.
// It holds no per-call state and is safe for concurrent use.
type RAGService struct {
	searcher Searcher
	resolver retrieval.Resolver
	chatter  domain.Chatter
	cfg      Config
	log      *zap.Logger
}

// NewRAGService wires the pipeline. chatter may be nil, in which case
// consultations report that no language model is configured.
func NewRAGService(searcher Searcher, resolver retrieval.Resolver, chatter domain.Chatter, cfg Config, log *zap.Logger) *RAGService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RAGService{searcher: searcher, resolver: resolver, chatter: chatter, cfg: cfg, log: log.Named("service")}
}

// DefaultLimit returns the configured result bound.
func (s *RAGService) DefaultLimit() int { return s.cfg.DefaultLimit }

// RetrieveAndAnswer runs search, deduplication and assembly for one question.
// It never fails: any fault is reported in the analysis of an empty response.
func (s *RAGService) RetrieveAndAnswer(ctx context.Context, query string, limit int) (resp domain.Response) {
	start := time.Now()
	log := s.log.With(zap.Int("limit", limit))
	defer func() {
		if r := recover(); r != nil {
			log.Error("retrieval panicked", zap.Any("panic", r), zap.Stack("stack"))
			resp = domain.DegradedResponse(fmt.Sprintf("search failed: internal error: %v", r))
		}
	}()

	if strings.TrimSpace(query) == "" {
		return domain.DegradedResponse(fmt.Sprintf("search failed: %v: question is empty", domain.ErrEmptyQuery))
	}

	candidates, err := s.searcher.Retrieve(ctx, query)
	if err != nil {
		log.Warn("search failed", zap.Error(err))
		return domain.DegradedResponse(fmt.Sprintf("search failed: %v", err))
	}

	var analysis string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: synthesizer panicked: %v", domain.ErrSearchUnavailable, r)
			}
		}()
		analysis, err = s.searcher.Synthesize(gctx, query, candidates)
		return err
	})
	set := retrieval.Dedupe(candidates, limit, s.resolver)
	if err := g.Wait(); err != nil {
		log.Warn("answer synthesis failed", zap.Error(err))
		return domain.DegradedResponse(fmt.Sprintf("search failed: %v", err))
	}

	resp = retrieval.Assemble(set, analysis, limit)
	log.Info("question answered",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", set.Len()),
		zap.Strings("keys", set.Keys()),
		zap.Duration("took", time.Since(start)))
	return resp
}

// Consult answers a free-form prompt without retrieval. Failures are
// returned as text.
func (s *RAGService) Consult(ctx context.Context, prompt string, opts domain.ChatOptions) string {
	if s.chatter == nil {
		return "consultation failed: no language model configured"
	}
	if strings.TrimSpace(prompt) == "" {
		return fmt.Sprintf("consultation failed: %v", domain.ErrEmptyQuery)
	}
	out, err := s.chatter.Chat(ctx, prompt, opts)
	if err != nil {
		s.log.Warn("consultation failed", zap.Error(err))
		return fmt.Sprintf("consultation failed: %v", err)
	}
	return out
}
