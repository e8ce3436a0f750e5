package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lawchat/internal/domain"
)

// Service is the retrieval core as seen by HTTP handlers.
type Service interface {
	RetrieveAndAnswer(ctx context.Context, query string, limit int) domain.Response
	Consult(ctx context.Context, prompt string, opts domain.ChatOptions) string
	DefaultLimit() int
}

type SearchRequest struct {
	Question string `json:"question" validate:"required"`
	NResults *int   `json:"n_results,omitempty"`
}

type ChatRequest struct {
	Prompt      string  `json:"prompt" validate:"required"`
	Model       string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens,omitempty" validate:"gte=0"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	app      *fiber.App
	svc      Service
	validate *validator.Validate
	log      *zap.Logger
}

func New(svc Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, validate: validator.New(), log: log.Named("http")}
	s.app = fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api := s.app.Group("/api")
	api.Post("/search", s.search)
	api.Post("/chat", s.chat)
}

func (s *Server) search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	limit := s.svc.DefaultLimit()
	if req.NResults != nil {
		limit = *req.NResults
	}
	return c.JSON(s.svc.RetrieveAndAnswer(c.UserContext(), req.Question, limit))
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	answer := s.svc.Consult(c.UserContext(), req.Prompt, domain.ChatOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	return c.JSON(ChatResponse{Answer: answer})
}

func (s *Server) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
