// Package api exposes the ledger pipeline over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/extractor"
	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration
type Config struct {
	Port       string
	MaxMemory  int64
	Pipeline   *extractor.Pipeline
	Classifier *categorizer.Classifier
	Logger     zerolog.Logger
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:       ":8080",
		MaxMemory:  32 << 20,
		Pipeline:   extractor.New(),
		Classifier: categorizer.New(),
		Logger:     zerolog.Nop(),
	}
}

// Server represents the HTTP API server
type Server struct {
	config   Config
	mux      *http.ServeMux
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	if cfg.Pipeline == nil {
		cfg.Pipeline = extractor.New()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = categorizer.New()
	}
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = 32 << 20
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		log:      cfg.Logger.With().Str("component", "api").Logger(),
		registry: reg,
		metrics:  newMetrics(reg),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/categorize", s.handleCategorize)
	s.mux.HandleFunc("/categories", s.handleCategories)
	s.mux.HandleFunc("/suggest", s.handleSuggest)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.config.Port).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	TransactionOnly bool
	SummaryOnly     bool
	TextOnly        bool
}

// parseExtractOptions extracts options from the HTTP request
func (s *Server) parseExtractOptions(r *http.Request) ExtractOptions {
	flag := func(name string) bool {
		return coalesce(r.FormValue(name), r.URL.Query().Get(name)) == "true"
	}
	return ExtractOptions{
		TransactionOnly: flag("transaction_only"),
		SummaryOnly:     flag("summary_only"),
		TextOnly:        flag("text_only"),
	}
}

// handleExtract runs every uploaded "file" part through the pipeline and
// returns one combined ledger.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("received extract request")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxMemory); err != nil {
		log.Warn().Err(err).Msg("error parsing multipart form")
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		http.Error(w, "Could not get uploaded file: no file part", http.StatusBadRequest)
		return
	}

	docs := make([]common.Document, 0, len(headers))
	for _, h := range headers {
		doc, err := readUpload(h.Filename, h.Open)
		if err != nil {
			log.Warn().Err(err).Str("document", h.Filename).Msg("error reading upload")
			http.Error(w, "Could not read file: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.metrics.documents.WithLabelValues(string(doc.Kind)).Inc()
		docs = append(docs, doc)
	}

	opts := s.parseExtractOptions(r)
	if opts.TextOnly {
		s.handleTextOnlyExtract(r.Context(), w, docs)
		return
	}

	timer := prometheus.NewTimer(s.metrics.duration)
	res, err := extractor.Process(r.Context(), s.config.Pipeline, s.config.Classifier, docs)
	timer.ObserveDuration()
	if err != nil {
		log.Warn().Err(err).Msg("rejected tabular upload")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.metrics.failures.Add(float64(len(res.Failures)))
	s.metrics.transactions.Add(float64(len(res.Transactions)))
	s.metrics.removed.Add(float64(res.Issues.RemovedRows))

	writeJSON(w, http.StatusOK, extractor.Shape(res, opts.TransactionOnly, opts.SummaryOnly))
}

func readUpload(name string, open func() (multipart.File, error)) (common.Document, error) {
	f, err := open()
	if err != nil {
		return common.Document{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return common.Document{}, err
	}
	return common.NewDocument(name, common.KindFromName(name), data), nil
}

type textOutput struct {
	Filename string `json:"filename"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleTextOnlyExtract returns the raw text of each upload without parsing
// transactions.
func (s *Server) handleTextOnlyExtract(ctx context.Context, w http.ResponseWriter, docs []common.Document) {
	out := make([]textOutput, len(docs))
	for i, doc := range docs {
		out[i].Filename = doc.Name
		switch doc.Kind {
		case common.KindPDF:
			rows, err := common.ExtractRowsFromPDFReader(ctx, bytes.NewReader(doc.Data))
			if err != nil {
				out[i].Error = err.Error()
				continue
			}
			out[i].Text = strings.Join(rows, "\n")
		case common.KindText:
			out[i].Text = string(doc.Data)
		default:
			out[i].Error = fmt.Sprintf("%s files have no statement text", doc.Kind)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type assignment struct {
	Indices  []int  `json:"indices"`
	Category string `json:"category"`
}

type categorizeRequest struct {
	Transactions []ledger.Transaction   `json:"transactions"`
	Categories   []categorizer.Category `json:"categories"`
	Assign       []assignment           `json:"assign"`
}

type categorizeResponse struct {
	Transactions []ledger.Transaction        `json:"transactions"`
	Stats        []categorizer.CategoryStats `json:"stats"`
	Progress     categorizer.ProgressStats   `json:"progress"`
}

// handleCategorize fills in missing categories of a posted ledger, then
// applies any bulk assignments. Categories sent with the request apply to
// that request only.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	c := s.config.Classifier
	if len(req.Categories) > 0 {
		c = c.Clone()
		for _, cat := range req.Categories {
			if err := c.Register(cat); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	txs := req.Transactions
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	c.ClassifyAll(txs)
	for _, a := range req.Assign {
		if err := c.BulkAssign(txs, a.Indices, a.Category); err != nil {
			status := http.StatusBadRequest
			if !errors.Is(err, categorizer.ErrUnknownCategory) && !errors.Is(err, categorizer.ErrIndexOutOfRange) {
				status = http.StatusInternalServerError
			}
			http.Error(w, err.Error(), status)
			return
		}
	}

	writeJSON(w, http.StatusOK, categorizeResponse{
		Transactions: txs,
		Stats:        c.Stats(txs),
		Progress:     categorizer.Progress(txs),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Classifier.Categories())
}

type suggestResponse struct {
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Suggestions []categorizer.Suggestion `json:"suggestions"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	desc := strings.TrimSpace(r.URL.Query().Get("description"))
	if desc == "" {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}

	suggestions := s.config.Classifier.Suggest(desc)
	if suggestions == nil {
		suggestions = []categorizer.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{
		Description: desc,
		Category:    s.config.Classifier.Classify(desc),
		Suggestions: suggestions,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
