package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"skandan/tamilnewsworker/internal/analytics"
	"skandan/tamilnewsworker/internal/ingest"
	"skandan/tamilnewsworker/internal/scraper"
	"skandan/tamilnewsworker/internal/storage"
	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

// BatchRunner executes a batch of adapters
type BatchRunner interface {
	RunAll(ctx context.Context, adapters []scraper.Adapter) []*ingest.RunStats
}

// RollupService answers sentiment aggregation queries
type RollupService interface {
	KeywordRollup(ctx context.Context, query analytics.Query) (*storage.Rollup, error)
}

// KeywordRegistry manages the tracked keywords
type KeywordRegistry interface {
	GetOrCreate(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]storage.Keyword, error)
}

// AdapterSet builds the adapters for the two kinds of crawl batch
type AdapterSet struct {
	Category func() []scraper.Adapter
	Keyword  func(keywords []string) []scraper.Adapter
}

// Server is the HTTP control surface: it triggers crawl batches and serves
// sentiment rollups.
type Server struct {
	router   *mux.Router
	runner   BatchRunner
	rollups  RollupService
	keywords KeywordRegistry
	adapters AdapterSet
	log      *logger.Logger
}

// NewServer creates the API server and mounts its routes
func NewServer(runner BatchRunner, rollups RollupService, keywords KeywordRegistry, adapters AdapterSet) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		runner:   runner,
		rollups:  rollups,
		keywords: keywords,
		adapters: adapters,
		log:      logger.ForAPI(),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/crawl", s.handleCrawlKeywords).Methods(http.MethodPost)
	s.router.HandleFunc("/api/crawl/all", s.handleCrawlAll).Methods(http.MethodPost)
	s.router.HandleFunc("/api/keywords", s.handleListKeywords).Methods(http.MethodGet)
	s.router.HandleFunc("/api/keywords", s.handleRegisterKeyword).Methods(http.MethodPost)
	s.router.HandleFunc("/api/sentiment/aggregate", s.handleAggregate).Methods(http.MethodGet)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type crawlRequest struct {
	Keywords []string `json:"keywords"`
}

// handleCrawlKeywords starts a keyword crawl batch in the background
func (s *Server) handleCrawlKeywords(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, keyword := range req.Keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	if len(keywords) == 0 {
		writeError(w, http.StatusBadRequest, "keywords must not be empty")
		return
	}

	// Register up front so the sentiment pipeline sees them immediately
	for _, keyword := range keywords {
		if _, err := s.keywords.GetOrCreate(r.Context(), keyword); err != nil {
			s.log.Error().Err(err).Str("keyword", keyword).Msg("Error registering keyword")
			writeError(w, http.StatusInternalServerError, "failed to register keyword")
			return
		}
	}

	adapters := s.adapters.Keyword(keywords)
	s.startBatch(adapters)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"keywords": keywords,
		"adapters": len(adapters),
	})
}

// handleCrawlAll starts the category crawl batch in the background
func (s *Server) handleCrawlAll(w http.ResponseWriter, r *http.Request) {
	adapters := s.adapters.Category()
	s.startBatch(adapters)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"adapters": len(adapters),
	})
}

// startBatch runs the adapters detached from the request lifecycle
func (s *Server) startBatch(adapters []scraper.Adapter) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		s.runner.RunAll(ctx, adapters)
	}()
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.keywords.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Error listing keywords")
		writeError(w, http.StatusInternalServerError, "failed to list keywords")
		return
	}
	writeJSON(w, http.StatusOK, keywords)
}

type registerKeywordRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRegisterKeyword(w http.ResponseWriter, r *http.Request) {
	var req registerKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	id, err := s.keywords.GetOrCreate(r.Context(), name)
	if err != nil {
		s.log.Error().Err(err).Str("keyword", name).Msg("Error registering keyword")
		writeError(w, http.StatusInternalServerError, "failed to register keyword")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "name": name})
}

// handleAggregate serves GET /api/sentiment/aggregate
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := analytics.Query{
		Keyword:  params.Get("keyword"),
		Range:    params.Get("range"),
		Website:  params.Get("website"),
		Category: params.Get("category"),
	}

	if raw := params.Get("start"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		query.Start = start
	}
	if raw := params.Get("end"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		// End date is inclusive
		query.End = end.AddDate(0, 0, 1)
	}

	rollup, err := s.rollups.KeywordRollup(r.Context(), query)
	if err != nil {
		var crawlErr *apperrors.CrawlError
		if errors.As(err, &crawlErr) && crawlErr.Type == apperrors.ErrorTypeValidation {
			writeError(w, http.StatusBadRequest, crawlErr.Message)
			return
		}
		s.log.Error().Err(err).Msg("Error aggregating sentiment")
		writeError(w, http.StatusInternalServerError, "failed to aggregate sentiment")
		return
	}
	writeJSON(w, http.StatusOK, rollup)
}

// writeJSON marshals payload into the response with the given status
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
