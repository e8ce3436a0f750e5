package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  float64
	}{
		{name: "regular score", score: ptr(0.9), want: 0.1},
		{name: "zero score is not defaulted", score: ptr(0), want: 1.0},
		{name: "perfect score", score: ptr(1), want: 0},
		{name: "absent score", score: nil, want: DefaultDistance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.score), 1e-9)
		})
	}
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata(map[string]any{
		"file":        "data/civil/2019da1234.json",
		"case_number": "2019da1234",
		"court":       "Supreme Court",
		"date":        "2020-01-09",
		"page":        float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "data/civil/2019da1234.json", md.File)
	assert.Equal(t, "2019da1234", md.CaseNumber)
	assert.Equal(t, "Supreme Court", md.Court)
	assert.Equal(t, "2020-01-09", md.Date)
	assert.Equal(t, map[string]any{"page": float64(3)}, md.Extra)
}

func TestParseMetadata_Scalars(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Metadata
	}{
		{
			name: "numeric date",
			raw:  map[string]any{"file": "a.json", "date": float64(20190101)},
			want: Metadata{File: "a.json", Date: "20190101"},
		},
		{
			name: "numeric case number",
			raw:  map[string]any{"file": "b.json", "case_number": float64(2019)},
			want: Metadata{File: "b.json", CaseNumber: "2019"},
		},
		{
			name: "fractional value",
			raw:  map[string]any{"court": 1.5},
			want: Metadata{Court: "1.5"},
		},
		{
			name: "integer and bool",
			raw:  map[string]any{"case_number": 42, "court": true},
			want: Metadata{CaseNumber: "42", Court: "true"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := ParseMetadata(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want.File, md.File)
			assert.Equal(t, tt.want.CaseNumber, md.CaseNumber)
			assert.Equal(t, tt.want.Court, md.Court)
			assert.Equal(t, tt.want.Date, md.Date)
			assert.Equal(t, tt.raw, md.Map())
		})
	}
}

func TestParseMetadata_NilIsEmpty(t *testing.T) {
	md, err := ParseMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, md)
}

func TestParseMetadata_NullFieldIsAbsent(t *testing.T) {
	md, err := ParseMetadata(map[string]any{"case_number": nil})
	require.NoError(t, err)
	assert.Empty(t, md.CaseNumber)
}

func TestParseMetadata_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "not a mapping", raw: "file.json"},
		{name: "list", raw: []any{"a"}},
		{name: "object file", raw: map[string]any{"file": map[string]any{}}},
		{name: "list case number", raw: map[string]any{"case_number": []any{"100"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedMetadata)
		})
	}
}

func TestMetadataMap(t *testing.T) {
	md := Metadata{File: "x.json", Court: "Seoul High Court", Extra: map[string]any{"page": 2}}
	assert.Equal(t, map[string]any{
		"file":  "x.json",
		"court": "Seoul High Court",
		"page":  2,
	}, md.Map())

	md.Map()["file"] = "mutated"
	assert.Equal(t, "x.json", md.File)
}

func TestMetadataMap_KeepsPresentKeys(t *testing.T) {
	raw := map[string]any{"file": "a.json", "case_number": "", "court": nil, "page": float64(2)}
	md, err := ParseMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, md.Map())
}

func TestDegradedResponse(t *testing.T) {
	r := DegradedResponse("search failed: boom")
	assert.Equal(t, "search failed: boom", r.Analysis)
	assert.NotNil(t, r.Documents)
	assert.Empty(t, r.Documents)
	assert.Empty(t, r.Metadatas)
	assert.Empty(t, r.Distances)
	assert.Nil(t, r.Passages())
}
