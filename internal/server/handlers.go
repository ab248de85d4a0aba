package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agenthands/finsage/internal/core"
	"github.com/agenthands/finsage/internal/core/memory"
	"github.com/agenthands/finsage/internal/core/model"
	"github.com/agenthands/finsage/internal/core/news"
	"github.com/agenthands/finsage/internal/llm"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const maxBatchQueries = 50

type AskResponse struct {
	*model.PipelineResult
	Answer           string `json:"answer"`
	PersistenceError string `json:"persistence_error,omitempty"`
}

type BatchRequest struct {
	Queries []model.Query `json:"queries"`
}

type BatchItem struct {
	Status int          `json:"status"`
	Result *AskResponse `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Ask(c *gin.Context) {
	var q model.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item := s.answer(c.Request.Context(), q)
	if item.Result == nil {
		c.JSON(item.Status, gin.H{"error": item.Error})
		return
	}
	c.JSON(item.Status, item.Result)
}

func (s *Server) AskBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Queries) == 0 || len(req.Queries) > maxBatchQueries {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queries must hold between 1 and 50 items"})
		return
	}

	ctx := c.Request.Context()
	items := make([]BatchItem, len(req.Queries))
	var g errgroup.Group
	if s.bulkLimit > 0 {
		g.SetLimit(s.bulkLimit)
	}
	for i, q := range req.Queries {
		i, q := i, q
		g.Go(func() error {
			items[i] = s.answer(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{"results": items})
}

// answer runs one pipeline and maps its outcome onto an HTTP status.
func (s *Server) answer(ctx context.Context, q model.Query) BatchItem {
	res, err := s.Pipeline.Answer(ctx, q)

	var pErr *memory.PersistenceError
	var sErr *llm.ServiceError
	switch {
	case err == nil:
		return BatchItem{Status: http.StatusOK, Result: &AskResponse{PipelineResult: res, Answer: res.Answer()}}

	case res != nil && errors.As(err, &pErr):
		s.logger.Error("answer not persisted", "entity", q.Entity, "error", err)
		return BatchItem{Status: http.StatusOK, Result: &AskResponse{
			PipelineResult:   res,
			Answer:           res.Answer(),
			PersistenceError: err.Error(),
		}}

	case errors.Is(err, core.ErrInvalidQuery):
		return BatchItem{Status: http.StatusBadRequest, Error: err.Error()}

	case errors.As(err, &sErr):
		s.logger.Error("model service failed", "service", sErr.Service, "entity", q.Entity, "error", err)
		return BatchItem{Status: http.StatusBadGateway, Error: err.Error()}
	}

	s.logger.Error("pipeline failed", "entity", q.Entity, "error", err)
	return BatchItem{Status: http.StatusInternalServerError, Error: "Failed to answer query"}
}

func (s *Server) GetNews(c *gin.Context) {
	opts, ok := s.fetchOptions(c)
	if !ok {
		return
	}
	entity := c.Param("entity")
	articles := s.News.Fetch(c.Request.Context(), entity, opts)
	c.JSON(http.StatusOK, gin.H{
		"entity":   entity,
		"count":    len(articles),
		"articles": articles,
	})
}

// GetNewsReport groups news for a comma separated list of entities.
func (s *Server) GetNewsReport(c *gin.Context) {
	opts, ok := s.fetchOptions(c)
	if !ok {
		return
	}
	var entities []string
	for _, e := range strings.Split(c.Query("entities"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			entities = append(entities, e)
		}
	}
	if len(entities) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entities is required"})
		return
	}
	c.JSON(http.StatusOK, s.News.FetchMany(c.Request.Context(), entities, opts))
}

func (s *Server) fetchOptions(c *gin.Context) (news.FetchOptions, bool) {
	opts := s.fetchDefaults
	if v := c.Query("source"); v != "" {
		opts.Source = v
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &opts.LimitPerSource},
		{"days", &opts.DaysBack},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": p.name + " must be a positive integer"})
			return opts, false
		}
		*p.dst = n
	}
	return opts, true
}

func (s *Server) GetMemory(c *gin.Context) {
	key := model.MemoryKey(c.Param("key"))
	entries, err := s.Memory.ReadAll(c.Request.Context(), key)
	if err != nil {
		s.logger.Error("failed to read memory", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read memory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "entries": entries})
}

func (s *Server) Classify(c *gin.Context) {
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": s.Classifier.Classify(text),
		"scores":   s.Classifier.Scores(text),
	})
}
