package summarizer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"lawchat/internal/domain"
)

// NoResultsAnswer is returned when there is nothing to summarize.
const NoResultsAnswer = "No relevant cases were found for this question."

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
// It serves as an offline answer synthesizer when no language model is configured.
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	maxSentences int
}

var _ domain.Synthesizer = (*FrequencySummarizer)(nil)

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer(maxSentences int) *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
		maxSentences: maxSentences,
	}
}

// Synthesize builds an extractive answer from the passages. Sentences sharing
// words with the query are boosted.
func (s *FrequencySummarizer) Synthesize(ctx context.Context, query string, passages []domain.Passage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var text strings.Builder
	var cases []string
	seen := map[string]struct{}{}
	for _, p := range passages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		text.WriteString(p.Content)
		text.WriteString("\n")
		if cn := p.Metadata.CaseNumber; cn != "" {
			if _, ok := seen[cn]; !ok {
				seen[cn] = struct{}{}
				cases = append(cases, cn)
			}
		}
	}
	if text.Len() == 0 {
		return NoResultsAnswer, nil
	}
	summary := s.summarize(text.String(), s.maxSentences, s.tokens(query))
	if len(cases) > 0 {
		summary = fmt.Sprintf("%s (see %s)", summary, strings.Join(cases, ", "))
	}
	return summary, nil
}

// summarize keeps the maxSentences highest-ranked sentences in original order.
func (s *FrequencySummarizer) summarize(text string, maxSentences int, boost []string) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}
	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	for _, tok := range boost {
		if _, ok := freq[tok]; ok {
			freq[tok] += 1
		}
	}
	// Score sentences
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		sscore := 0.0
		for _, tok := range s.tokens(sent) {
			if v, ok := freq[tok]; ok {
				sscore += v
			}
		}
		// Normalize by sentence length to avoid bias
		l := float64(len(s.tokens(sent)))
		if l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	var out []string
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

func (s *FrequencySummarizer) tokens(text string) []string {
	lower := strings.ToLower(text)
	return s.tokenPattern.FindAllString(lower, -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
