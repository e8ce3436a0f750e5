package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lawchat/internal/domain"
)

// Client is an OpenAI-compatible chat completions client. It writes grounded
// answers over retrieved passages and handles free-form consultations.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	temperature  float64
	maxTokens    int
	systemPrompt string
	qaTemplate   string
	client       *http.Client
}

// Config configures the chat client. Empty prompts fall back to the
// LEGAL_QA_PROMPT_TEMPLATE and OPENAI_SYSTEM_PROMPT environment variables,
// then to built-in defaults.
type Config struct {
	BaseURL      string
	APIKeyEnv    string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
	QATemplate   string
}

var (
	_ domain.Synthesizer = (*Client)(nil)
	_ domain.Chatter     = (*Client)(nil)
)

func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = envOr("OPENAI_SYSTEM_PROMPT", DefaultSystemPrompt)
	}
	if cfg.QATemplate == "" {
		cfg.QATemplate = envOr("LEGAL_QA_PROMPT_TEMPLATE", DefaultQATemplate)
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       key,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		systemPrompt: cfg.SystemPrompt,
		qaTemplate:   cfg.QATemplate,
		client:       &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Synthesize answers query from the given passages using the QA template.
func (c *Client) Synthesize(ctx context.Context, query string, passages []domain.Passage) (string, error) {
	prompt := RenderQA(c.qaTemplate, query, passages)
	return c.complete(ctx, []message{{Role: "user", Content: prompt}}, c.model, c.temperature, c.maxTokens)
}

// Chat sends a free-form prompt with the system prompt. Unset option fields
// use the client defaults.
func (c *Client) Chat(ctx context.Context, prompt string, opts domain.ChatOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	temp := c.temperature
	if opts.Temperature != nil {
		temp = *opts.Temperature
	}
	maxTokens := 1000
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	msgs := []message{
		{Role: "system", Content: c.systemPrompt},
		{Role: "user", Content: prompt},
	}
	return c.complete(ctx, msgs, model, temp, maxTokens)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) complete(ctx context.Context, msgs []message, model string, temp float64, maxTokens int) (string, error) {
	data, err := json.Marshal(chatRequest{Model: model, Messages: msgs, Temperature: temp, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out chatResponse
	decodeErr := json.Unmarshal(payload, &out)
	if resp.StatusCode >= 300 {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("openai chat failed: %s: %s", resp.Status, out.Error.Message)
		}
		return "", fmt.Errorf("openai chat failed: %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
