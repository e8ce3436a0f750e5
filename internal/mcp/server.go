package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"lawchat/internal/domain"
)

// Service is the retrieval core as seen by the MCP tools.
type Service interface {
	RetrieveAndAnswer(ctx context.Context, query string, limit int) domain.Response
	Consult(ctx context.Context, prompt string, opts domain.ChatOptions) string
	DefaultLimit() int
}

// Server wraps the MCP SDK server and exposes the case search tools.
type Server struct {
	MCPServer *sdkmcp.Server

	svc Service
	log *zap.Logger
}

// NewServer creates an MCP server named lawchat with case_search and legal_chat tools.
func NewServer(svc Service, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, log: log.Named("mcp")}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "lawchat", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "case_search",
		Description: "Search legal case precedents for a question. Returns an analysis plus deduplicated case passages with metadata, attached case documents and distances.",
	}, s.handleCaseSearch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "legal_chat",
		Description: "Ask the language model a free-form legal question without case retrieval.",
	}, s.handleLegalChat)
}

// --- Tool input/output types ---

type caseSearchInput struct {
	UserQuestion string `json:"user_question" jsonschema:"the legal question in natural language"`
	NResults     *int   `json:"n_results,omitempty" jsonschema:"maximum number of distinct cases to return (default 3)"`
}

type legalChatInput struct {
	Prompt      string  `json:"prompt" jsonschema:"the question or instruction"`
	Model       string  `json:"model,omitempty" jsonschema:"model name override"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty" jsonschema:"completion token budget (default 1000)"`
}

type legalChatOutput struct {
	Answer string `json:"answer"`
}

// --- Tool handlers ---

func (s *Server) handleCaseSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, input caseSearchInput) (*sdkmcp.CallToolResult, domain.Response, error) {
	limit := s.svc.DefaultLimit()
	if input.NResults != nil {
		limit = *input.NResults
	}
	s.log.Debug("case_search", zap.Int("n_results", limit))
	return nil, s.svc.RetrieveAndAnswer(ctx, input.UserQuestion, limit), nil
}

func (s *Server) handleLegalChat(ctx context.Context, _ *sdkmcp.CallToolRequest, input legalChatInput) (*sdkmcp.CallToolResult, legalChatOutput, error) {
	answer := s.svc.Consult(ctx, input.Prompt, domain.ChatOptions{
		Model:       input.Model,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	})
	return nil, legalChatOutput{Answer: answer}, nil
}
