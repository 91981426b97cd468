package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

const defaultQueryLimit = 5

// ConvertRequest is the body of POST /api/convert.
type ConvertRequest struct {
	Source       string   `json:"source"`
	Content      string   `json:"content"`
	Title        string   `json:"title"`
	Style        string   `json:"style"`
	CustomPrompt string   `json:"custom_prompt"`
	Options      []string `json:"options"`
}

// ConvertResponse extends the result with artifact URLs.
type ConvertResponse struct {
	*domain.ConvertResult
	MarkdownURL string `json:"markdown_url,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
	PDFURL      string `json:"pdf_url,omitempty"`
}

// KnowledgeResponse is the body of GET /api/knowledge.
type KnowledgeResponse struct {
	Query   string                `json:"query"`
	Results []domain.KnowledgeHit `json:"results"`
	Count   int                   `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidArgument, err))
		return
	}
	if strings.TrimSpace(req.Source) == "" && strings.TrimSpace(req.Content) == "" {
		writeError(w, fmt.Errorf("%w: source or content is required", domain.ErrInvalidArgument))
		return
	}

	result, err := s.ports.Convert.Convert(r.Context(), domain.ConvertRequest{
		Source:        req.Source,
		Content:       req.Content,
		Title:         req.Title,
		Style:         domain.ParseStyle(req.Style),
		CustomPrompt:  req.CustomPrompt,
		OutputOptions: domain.ParseOutputOptions(req.Options),
	}, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ConvertResponse{ConvertResult: result}
	if s.ports.ArtifactDir != "" {
		resp.MarkdownURL = artifactURL(result.MarkdownPath)
		resp.HTMLURL = artifactURL(result.HTMLPath)
		resp.PDFURL = artifactURL(result.PDFPath)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKnowledgeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("q")
	if strings.TrimSpace(text) == "" {
		writeError(w, fmt.Errorf("%w: q is required", domain.ErrInvalidArgument))
		return
	}

	k := defaultQueryLimit
	if raw := q.Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: k must be a positive integer", domain.ErrInvalidArgument))
			return
		}
		k = n
	}

	hits, err := s.ports.Knowledge.Query(r.Context(), text, k, q.Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	if hits == nil {
		hits = []domain.KnowledgeHit{}
	}
	writeJSON(w, http.StatusOK, KnowledgeResponse{Query: text, Results: hits, Count: len(hits)})
}

func (s *Server) handleKnowledgeIndex(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force")) //nolint:errcheck // absent means false
	stats, err := s.ports.Knowledge.IndexFolder(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	type styleInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	styles := domain.AllStyles()
	out := make([]styleInfo, len(styles))
	for i, st := range styles {
		out[i] = styleInfo{Name: st.String(), Description: st.Description()}
	}
	writeJSON(w, http.StatusOK, out)
}

func artifactURL(path string) string {
	if path == "" {
		return ""
	}
	return "/artifacts/" + filepath.Base(path)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("http: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encode response: %v", err)
	}
}

func splitPath(name string) []string {
	return strings.Split(strings.Trim(filepath.ToSlash(name), "/"), "/")
}
