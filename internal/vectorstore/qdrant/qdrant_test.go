package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/law_cases/points/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"result":[
			{"id":"p1","score":0.91,"payload":{"text":"first","metadata":{"file":"a.json"}}},
			{"id":7,"score":0,"payload":{"text":"second"}},
			{"id":"p3","payload":{"text":"third"}}
		]}`))
	}))
	defer srv.Close()

	st := NewStorage(Config{URL: srv.URL, APIKey: "secret", Collection: "law_cases"})
	points, err := st.Search(context.Background(), []float64{0.1, 0.2}, 10)
	require.NoError(t, err)

	assert.Equal(t, float64(10), gotBody["limit"])
	assert.Equal(t, true, gotBody["with_payload"])
	require.Len(t, points, 3)
	assert.Equal(t, "p1", points[0].ID)
	require.NotNil(t, points[0].Score)
	assert.InDelta(t, 0.91, *points[0].Score, 1e-9)
	assert.Equal(t, "first", points[0].Payload["text"])
	assert.Equal(t, "7", points[1].ID)
	require.NotNil(t, points[1].Score)
	assert.Zero(t, *points[1].Score)
	assert.Nil(t, points[2].Score)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	st := NewStorage(Config{URL: srv.URL, Collection: "law_cases"})
	_, err := st.Search(context.Background(), []float64{1}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewStorage(Config{URL: url, Collection: "c"}).Search(context.Background(), []float64{1}, 3)
	assert.Error(t, err)
}
