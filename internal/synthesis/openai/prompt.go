package openai

import (
	"fmt"
	"strings"

	"lawchat/internal/domain"
)

// DefaultQATemplate uses the {context_str} and {query_str} placeholders.
const DefaultQATemplate = `You are a legal research assistant. Below are excerpts from court decisions.
---------------------
{context_str}
---------------------
Using only the excerpts above, answer the question. Cite case numbers where
they support the answer, and say so plainly if the excerpts do not decide it.
Question: {query_str}
Answer: `

const DefaultSystemPrompt = "You are a careful legal consultant. Explain the law clearly, note uncertainty, and recommend professional advice for specific disputes."

// RenderQA fills the template with the numbered passages and the query.
func RenderQA(template, query string, passages []domain.Passage) string {
	return strings.NewReplacer(
		"{context_str}", renderContext(passages),
		"{query_str}", query,
	).Replace(template)
}

func renderContext(passages []domain.Passage) string {
	if len(passages) == 0 {
		return "(no relevant excerpts were retrieved)"
	}
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d]", i+1)
		md := p.Metadata
		for _, kv := range [][2]string{{"case", md.CaseNumber}, {"court", md.Court}, {"date", md.Date}} {
			if kv[1] != "" {
				fmt.Fprintf(&b, " %s: %s", kv[0], kv[1])
			}
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(p.Content))
	}
	return b.String()
}
