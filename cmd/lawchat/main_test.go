package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawchat/internal/domain"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	embeddings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,0]}]}`))
	}))
	t.Cleanup(embeddings.Close)
	t.Setenv("LAWCHAT_TEST_KEY", "k")
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cases", "a.json"), `{"title":"deposit case"}`)
	writeFile(t, filepath.Join(dir, "snap.json"), `[
  {"id":"1","vector":[1,0],"payload":{"text":"The landlord must return the deposit.","metadata":{"file":"a.json","case_number":"2019da1"}}},
  {"id":"2","vector":[0.9,0.1],"payload":{"text":"The deposit is returned after the lease ends.","metadata":{"file":"a.json"}}},
  {"id":"3","vector":[0,1],"payload":{"text":"Unrelated tax ruling.","metadata":{"file":"b.json"}}}
]`)
	cfg := fmt.Sprintf(`
embedder:
  type: openai
  openai:
    base_url: %s
    api_key_env: LAWCHAT_TEST_KEY
vector_store:
  type: memory
  memory:
    snapshot_path: %s
synthesizer:
  type: frequency
corpus:
  dirs: [%s]
log:
  level: error
`, embeddings.URL, filepath.Join(dir, "snap.json"), filepath.Join(dir, "cases"))
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, cfg)
	return path
}

func TestAsk(t *testing.T) {
	cfgPath := setupWorkspace(t)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "ask", "--n", "2", "deposit", "refund"})
	require.NoError(t, root.Execute())

	var resp domain.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.NotEmpty(t, resp.Analysis)
	require.Len(t, resp.Metadatas, 2)
	assert.Equal(t, "a.json", resp.Metadatas[0]["file"])
	assert.Equal(t, map[string]any{"title": "deposit case"}, resp.Metadatas[0]["case_data"])
	assert.Equal(t, "b.json", resp.Metadatas[1]["file"])
	assert.Equal(t, map[string]any{"error": "case document not found in corpus"}, resp.Metadatas[1]["case_data"])
	assert.Len(t, resp.Passages(), 2)
	assert.Len(t, resp.Distances, 2)
}

func TestAsk_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "retrieval:\n  top_k: 1\n  limit: 5\n")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "ask", "q"})
	assert.Error(t, root.Execute())
}
