package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lawchat/internal/domain"
)

// RAGPort is the TUI-facing subset of the retrieval service.
type RAGPort interface {
	RetrieveAndAnswer(ctx context.Context, query string, limit int) domain.Response
}

type answerMsg struct {
	query string
	resp  domain.Response
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	service   RAGPort
	limit     int
	input     textinput.Model
	viewport  viewport.Model
	resp      domain.Response
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance. Queries run under ctx and are
// cancelled when the user quits.
func New(ctx context.Context, service RAGPort, limit int) Model {
	ctx, cancel := context.WithCancel(ctx)
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a legal question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, cancel: cancel, service: service, limit: limit, input: ti, viewport: vp, status: "Ready. Type a question."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return answerMsg{query: q, resp: m.service.RetrieveAndAnswer(ctx, q, m.limit)}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + analysis, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case answerMsg:
		m.busy = false
		m.resp = msg.resp
		m.cursor = 0
		m.lastQuery = msg.query
		m.status = fmt.Sprintf("%d case(s) for %q", len(msg.resp.Distances), msg.query)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.cancel()
			return m, tea.Quit
		}
		n := len(m.resp.Distances)
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Searching..."
				return m, m.ask(q)
			}
		case "down":
			if n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("LawChat case search")
	analysis := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.resp.Analysis)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + analysis + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	docs := m.resp.Passages()
	if len(docs) == 0 {
		return "No cases yet."
	}
	md := m.resp.Metadatas[m.cursor]
	title := fmt.Sprintf("Case %d/%d  distance=%.3f", m.cursor+1, len(docs), m.resp.Distances[m.cursor])
	var facts []string
	for _, k := range []string{domain.KeyCaseNumber, domain.KeyCourt, domain.KeyDate, domain.KeyFile} {
		if v, ok := md[k]; ok && v != nil && v != "" {
			facts = append(facts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	if cd, ok := md[domain.KeyCaseData].(map[string]any); ok {
		if e, ok := cd["error"].(string); ok {
			facts = append(facts, "original: "+e)
		}
	}
	body := highlightBestSentence(docs[m.cursor], m.lastQuery)
	return title + "\n" + strings.Join(facts, " | ") + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
