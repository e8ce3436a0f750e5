package retrieval

import "lawchat/internal/domain"

// Assemble builds the response from at most the first limit results, keeping
// documents, metadatas and distances index-aligned. An empty set still
// carries the analysis text.
func Assemble(set *ResultSet, analysis string, limit int) domain.Response {
	resp := domain.DegradedResponse(analysis)
	if set == nil || limit <= 0 || set.Len() == 0 {
		return resp
	}
	entries := set.Entries()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	docs := make([]string, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.Document)
		resp.Metadatas = append(resp.Metadatas, e.Metadata)
		resp.Distances = append(resp.Distances, e.Distance)
	}
	resp.Documents = [][]string{docs}
	return resp
}
