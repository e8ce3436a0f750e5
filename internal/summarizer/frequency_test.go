package summarizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawchat/internal/domain"
)

func TestSynthesize_NoPassages(t *testing.T) {
	s := NewFrequencySummarizer(2)
	out, err := s.Synthesize(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, NoResultsAnswer, out)

	out, err = s.Synthesize(context.Background(), "anything", []domain.Passage{{Content: "   "}})
	require.NoError(t, err)
	assert.Equal(t, NoResultsAnswer, out)
}

func TestSynthesize_PrefersQueryTerms(t *testing.T) {
	s := NewFrequencySummarizer(1)
	out, err := s.Synthesize(context.Background(), "deposit", []domain.Passage{
		{Content: "The court reviewed the facts. The lessor must return the deposit.", Metadata: domain.Metadata{CaseNumber: "2019da1234"}},
		{Content: "The lease agreement was signed in Seoul.", Metadata: domain.Metadata{CaseNumber: "2019da1234"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "The lessor must return the deposit. (see 2019da1234)", out)
}

func TestSynthesize_ListsCasesOnce(t *testing.T) {
	s := NewFrequencySummarizer(5)
	out, err := s.Synthesize(context.Background(), "q", []domain.Passage{
		{Content: "First ruling.", Metadata: domain.Metadata{CaseNumber: "A"}},
		{Content: "Second ruling.", Metadata: domain.Metadata{CaseNumber: "B"}},
		{Content: "Third ruling.", Metadata: domain.Metadata{CaseNumber: "A"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "(see A, B)"), out)
}

func TestSynthesize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFrequencySummarizer(1).Synthesize(ctx, "q", []domain.Passage{{Content: "x."}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer(0)
	out := s.summarize("Alpha beta. Gamma delta. Alpha gamma.", 2, nil)
	assert.Equal(t, "Alpha beta. Alpha gamma.", out)
}

func TestSummarize_NoSentenceBoundary(t *testing.T) {
	out := NewFrequencySummarizer(3).summarize("  no terminal punctuation here ", 3, nil)
	assert.Equal(t, "no terminal punctuation here", out)
}
