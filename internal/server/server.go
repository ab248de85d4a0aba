package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agenthands/finsage/internal/config"
	"github.com/agenthands/finsage/internal/core"
	"github.com/agenthands/finsage/internal/core/evaluation"
	"github.com/agenthands/finsage/internal/core/memory"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/core/news"
	"github.com/agenthands/finsage/internal/core/topic"
	"github.com/agenthands/finsage/internal/llm"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Answerer interface {
	Answer(ctx context.Context, q model.Query) (*model.PipelineResult, error)
}

type NewsService interface {
	Fetch(ctx context.Context, entity string, opts news.FetchOptions) []model.NewsArticle
	FetchMany(ctx context.Context, entities []string, opts news.FetchOptions) model.NewsReport
}

type Server struct {
	Pipeline   Answerer
	News       NewsService
	Memory     memory.Store
	Classifier *topic.Classifier

	fetchDefaults news.FetchOptions
	bulkLimit     int
	allowOrigins  []string
	logger        *slog.Logger
}

// NewServer wires every component from cfg. Callers release the memory
// store with Close.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	services, err := llm.NewServices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model services: %w", err)
	}

	store, err := memory.Open(ctx, cfg.Memory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory store: %w", err)
	}

	fallback, err := topic.ParseCategory(cfg.Pipeline.DefaultCategory)
	if err != nil {
		fallback = topic.DefaultCategory
		logger.Warn("unknown default category, using corporate_business", "category", cfg.Pipeline.DefaultCategory)
	}
	classifier := topic.NewClassifier(fallback)

	aggregator := news.NewFromConfig(cfg.News, logger)

	scorer := evaluation.NewScorer(services.Embedder, cfg.Evaluation.Thresholds, logger)
	if cfg.Evaluation.LLMReview {
		scorer.WithReviewer(evaluation.NewReviewer(services.Generator, cfg.Prompts.Review, logger))
	}

	orch := core.NewOrchestrator(classifier, aggregator, store, services.Generator, scorer,
		core.OptionsFromConfig(cfg), logger).
		WithSentiment(services.Sentiment).
		WithReranker(services.Reranker)

	s := New(orch, aggregator, store, classifier, logger)
	s.fetchDefaults = core.OptionsFromConfig(cfg).Fetch
	s.bulkLimit = cfg.Concurrency.BulkAsk
	s.allowOrigins = cfg.Server.AllowOrigins
	return s, nil
}

// New builds a server around already constructed components.
func New(pipeline Answerer, newsSvc NewsService, store memory.Store, classifier *topic.Classifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Pipeline:      pipeline,
		News:          newsSvc,
		Memory:        store,
		Classifier:    classifier,
		fetchDefaults: news.FetchOptions{LimitPerSource: 50, DaysBack: 30},
		bulkLimit:     4,
		allowOrigins:  []string{"*"},
		logger:        logger,
	}
}

func (s *Server) Close(ctx context.Context) error {
	return s.Memory.Close(ctx)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.Health)
	r.POST("/ask", s.Ask)
	r.POST("/ask/batch", s.AskBatch)
	r.GET("/news", s.GetNewsReport)
	r.GET("/news/:entity", s.GetNews)
	r.GET("/memory/:key", s.GetMemory)
	r.GET("/classify", s.Classify)

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	for _, o := range s.allowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = s.allowOrigins
	return cfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
