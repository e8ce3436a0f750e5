package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"lawchat/internal/config"
	"lawchat/internal/domain"
	embopenai "lawchat/internal/embedding/openai"
	"lawchat/internal/logging"
	"lawchat/internal/resolver"
	"lawchat/internal/search"
	"lawchat/internal/service"
	"lawchat/internal/summarizer"
	synthopenai "lawchat/internal/synthesis/openai"
	"lawchat/internal/vectorstore"
)

type app struct {
	cfg *config.AppConfig
	log *zap.Logger
	svc *service.RAGService
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func buildApp(cfgPath string) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Production: cfg.Log.Production,
		File:       cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	emb, err := embopenai.NewClient(embopenai.Config{
		BaseURL:   cfg.Embedder.OpenAI.BaseURL,
		APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
		Model:     cfg.Embedder.OpenAI.Model,
		Timeout:   seconds(cfg.Embedder.OpenAI.TimeoutSecs),
	})
	if err != nil {
		return nil, fmt.Errorf("embedder init failed: %w", err)
	}

	store, err := vectorstore.Open(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("vector store init failed: %w", err)
	}

	sc := cfg.Synthesizer
	chat, chatErr := synthopenai.NewClient(synthopenai.Config{
		BaseURL:     sc.OpenAI.BaseURL,
		APIKeyEnv:   sc.OpenAI.APIKeyEnv,
		Model:       sc.OpenAI.Model,
		Temperature: *sc.Temperature,
		MaxTokens:   sc.MaxTokens,
		Timeout:     seconds(sc.OpenAI.TimeoutSecs),
	})
	var chatter domain.Chatter
	if chatErr == nil {
		chatter = chat
	}

	var synth domain.Synthesizer
	switch sc.Type {
	case "frequency":
		synth = summarizer.NewFrequencySummarizer(sc.MaxSentences)
	case "openai", "":
		if chatErr != nil {
			return nil, fmt.Errorf("synthesizer init failed: %w", chatErr)
		}
		synth = chat
	default:
		return nil, fmt.Errorf("unknown synthesizer: %s", sc.Type)
	}
	if chatter == nil {
		log.Warn("no chat model configured; legal_chat is disabled", zap.Error(chatErr))
	}

	adapter := search.NewAdapter(emb, store, synth, cfg.Retrieval.TopK, log)
	res := resolver.New(cfg.Corpus.Dirs, log)
	svc := service.NewRAGService(adapter, res, chatter, service.Config{DefaultLimit: cfg.Retrieval.Limit}, log)

	log.Info("lawchat ready",
		zap.String("embedder", emb.Name()),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("synthesizer", sc.Type),
		zap.Int("top_k", cfg.Retrieval.TopK),
		zap.Strings("corpus_dirs", res.Dirs()))
	return &app{cfg: cfg, log: log, svc: svc}, nil
}

func (a *app) close() { _ = a.log.Sync() }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
