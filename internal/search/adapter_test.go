package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawchat/internal/domain"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) Name() string { return "fake" }

func (f fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{1, 0}, nil
}

type fakeStore struct {
	points []domain.ScoredPoint
	err    error
	gotK   int
}

func (f *fakeStore) Search(_ context.Context, _ []float64, topK int) ([]domain.ScoredPoint, error) {
	f.gotK = topK
	return f.points, f.err
}

type fakeSynth struct {
	answer string
	err    error
	got    []domain.Passage
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, passages []domain.Passage) (string, error) {
	f.got = passages
	return f.answer, f.err
}

func score(f float64) *float64 { return &f }

func TestSearch_ConvertsAndKeepsOrder(t *testing.T) {
	store := &fakeStore{points: []domain.ScoredPoint{
		{ID: "1", Score: score(0.9), Payload: map[string]any{"text": "first", "metadata": map[string]any{"file": "a.json", "case_number": "100"}}},
		{ID: "2", Score: nil, Payload: map[string]any{"document": "second"}},
		{ID: "3", Score: score(0.5), Payload: map[string]any{"text": "third", "metadata": "not a map"}},
		{ID: "4", Score: score(0.4), Payload: map[string]any{"metadata": map[string]any{"file": "b.json"}}},
		{ID: "5", Score: score(0.3), Payload: map[string]any{"text": "fifth", "metadata": map[string]any{"case_number": []any{12}}}},
		{ID: "6", Score: score(0), Payload: map[string]any{"text": "sixth"}},
	}}
	synth := &fakeSynth{answer: "answer"}
	a := NewAdapter(fakeEmbedder{}, store, synth, 10, nil)

	analysis, candidates, err := a.Search(context.Background(), "question")
	require.NoError(t, err)

	assert.Equal(t, "answer", analysis)
	assert.Equal(t, 10, store.gotK)
	require.Len(t, candidates, 3)
	assert.Equal(t, "first", candidates[0].Content)
	assert.Equal(t, "a.json", candidates[0].Metadata.File)
	assert.Equal(t, "100", candidates[0].Metadata.CaseNumber)
	assert.Equal(t, "second", candidates[1].Content)
	assert.Nil(t, candidates[1].Score)
	assert.Equal(t, "sixth", candidates[2].Content)
	require.NotNil(t, candidates[2].Score)
	assert.Zero(t, *candidates[2].Score)
	assert.Equal(t, candidates, synth.got)
}

func TestSearch_Failures(t *testing.T) {
	boom := errors.New("connection refused")
	tests := []struct {
		name     string
		embedder fakeEmbedder
		store    *fakeStore
		synth    *fakeSynth
		want     string
	}{
		{name: "embedder", embedder: fakeEmbedder{err: boom}, store: &fakeStore{}, synth: &fakeSynth{}, want: "embed query"},
		{name: "store", store: &fakeStore{err: boom}, synth: &fakeSynth{}, want: "vector search"},
		{name: "synthesizer", store: &fakeStore{}, synth: &fakeSynth{err: boom}, want: "synthesize answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.embedder, tt.store, tt.synth, 10, nil)
			_, _, err := a.Search(context.Background(), "q")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "connection refused")
		})
	}
}

func TestRetrieve_KeepsScalarMetadata(t *testing.T) {
	store := &fakeStore{points: []domain.ScoredPoint{
		{ID: "1", Score: score(0.9), Payload: map[string]any{"text": "first", "metadata": map[string]any{"file": "a.json", "date": float64(20190101)}}},
		{ID: "2", Score: score(0.8), Payload: map[string]any{"text": "second", "metadata": map[string]any{"file": "b.json", "case_number": float64(2019)}}},
	}}
	a := NewAdapter(fakeEmbedder{}, store, &fakeSynth{}, 10, nil)

	candidates, err := a.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "20190101", candidates[0].Metadata.Date)
	assert.Equal(t, "2019", candidates[1].Metadata.CaseNumber)
	assert.Equal(t, float64(20190101), candidates[0].Metadata.Map()["date"])
}

func TestRetrieve_KeepsCauseChain(t *testing.T) {
	a := NewAdapter(fakeEmbedder{err: context.DeadlineExceeded}, &fakeStore{}, &fakeSynth{}, 10, nil)
	_, err := a.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	a := NewAdapter(fakeEmbedder{}, &fakeStore{}, &fakeSynth{}, 10, nil)
	candidates, err := a.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
