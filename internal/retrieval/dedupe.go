package retrieval

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"lawchat/internal/domain"
	"lawchat/internal/resolver"
)

// fingerprintRunes is how much of a passage identifies near-duplicate content.
const fingerprintRunes = 200

// MsgNoFileInfo marks passages that carry no source file.
const MsgNoFileInfo = "metadata has no file information"

// Resolver is the subset of a document resolver used during deduplication.
type Resolver interface {
	Resolve(filename string) resolver.Resolution
}

// Result is one accepted passage with its enriched metadata.
type Result struct {
	Key      string
	Document string
	// Metadata is the passage metadata plus case_data.
	Metadata map[string]any
	Distance float64
}

// ResultSet is an insertion-ordered mapping from unique key to Result.
type ResultSet struct {
	keys    []string
	entries map[string]Result
}

func newResultSet(capacity int) *ResultSet {
	return &ResultSet{keys: make([]string, 0, capacity), entries: make(map[string]Result, capacity)}
}

// add stores r, replacing in place an entry with the same key.
func (s *ResultSet) add(r Result) {
	if !s.has(r.Key) {
		s.keys = append(s.keys, r.Key)
	}
	s.entries[r.Key] = r
}

func (s *ResultSet) has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of accepted results.
func (s *ResultSet) Len() int { return len(s.keys) }

// Keys returns the keys in acceptance order.
func (s *ResultSet) Keys() []string { return append([]string(nil), s.keys...) }

// Get returns the result stored under key.
func (s *ResultSet) Get(key string) (Result, bool) {
	r, ok := s.entries[key]
	return r, ok
}

// Entries returns the results in acceptance order.
func (s *ResultSet) Entries() []Result {
	out := make([]Result, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.entries[k]
	}
	return out
}

// Dedupe walks candidates in rank order and accepts at most limit of them,
// rejecting any candidate whose file basename, non-empty case number, or
// content fingerprint was already accepted. The resolver is called once per
// accepted candidate that names a file; nothing is processed after the limit
// is reached. A non-positive limit yields an empty set.
func Dedupe(candidates []domain.Passage, limit int, res Resolver) *ResultSet {
	if limit <= 0 {
		return newResultSet(0)
	}
	set := newResultSet(min(limit, len(candidates)))
	seenCases := make(map[string]struct{})
	seenContent := make(map[uint64]struct{})

	for _, c := range candidates {
		hash := fingerprint(c.Content)
		if c.Metadata.File != "" {
			filename := filepath.Base(c.Metadata.File)
			if set.has(filename) {
				continue
			}
			if c.Metadata.CaseNumber != "" {
				if _, dup := seenCases[c.Metadata.CaseNumber]; dup {
					continue
				}
			}
			if _, dup := seenContent[hash]; dup {
				continue
			}
			if c.Metadata.CaseNumber != "" {
				seenCases[c.Metadata.CaseNumber] = struct{}{}
			}
			seenContent[hash] = struct{}{}
			set.add(newResult(filename, c, res.Resolve(filename).CaseData()))
		} else {
			if _, dup := seenContent[hash]; dup {
				continue
			}
			seenContent[hash] = struct{}{}
			key := fmt.Sprintf("no_file_%d", set.Len())
			set.add(newResult(key, c, resolver.ErrorMarker(MsgNoFileInfo)))
		}
		if set.Len() >= limit {
			break
		}
	}
	return set
}

func newResult(key string, c domain.Passage, caseData any) Result {
	md := c.Metadata.Map()
	md[domain.KeyCaseData] = caseData
	return Result{
		Key:      key,
		Document: c.Content,
		Metadata: md,
		Distance: domain.Distance(c.Score),
	}
}

func fingerprint(content string) uint64 {
	n := 0
	for i := range content {
		if n == fingerprintRunes {
			return xxhash.Sum64String(content[:i])
		}
		n++
	}
	return xxhash.Sum64String(content)
}
