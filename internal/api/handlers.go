// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/validation"
	"deal-hunter/internal/models"
	generateproductvibe "deal-hunter/internal/workers/ai-copy/generate-product-vibe"
	searchproduct "deal-hunter/internal/workers/product/search-product"
)

const (
	msgInvalidRequest = "Invalid request body"
	msgInvalidImage   = "We couldn't read that image or link. Please try another one."
	msgNoProductImage = "no product image found"
	msgUnavailable    = "This feature is currently unavailable."
	maxDealsLimit     = 50
	jsonOverheadBytes = 64 << 10
)

var (
	searchSchema  = validation.MustCompile(searchRequestSchema)
	extractSchema = validation.MustCompile(extractRequestSchema)
	vibeSchema    = validation.MustCompile(vibeRequestSchema)
)

type Searcher interface {
	Execute(ctx context.Context, input *searchproduct.Input) (*searchproduct.Output, error)
}

type ImageExtractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

type DealLister interface {
	Latest(ctx context.Context, limit int) ([]models.Deal, error)
}

type VibeWriter interface {
	Execute(ctx context.Context, input *generateproductvibe.Input) *generateproductvibe.Output
}

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// Dependencies are optional; a nil dependency disables its routes.
type Dependencies struct {
	Searcher        Searcher
	Extractor       ImageExtractor
	Deals           DealLister
	Vibe            VibeWriter
	ReadinessChecks map[string]ReadinessCheck
	MaxUploadBytes  int64
}

type Handler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

func NewHandler(deps Dependencies, log logger.Logger) *Handler {
	// base64 inflates the payload by 4/3.
	maxBody := deps.MaxUploadBytes/3*4 + jsonOverheadBytes
	if deps.MaxUploadBytes <= 0 {
		maxBody = 8 << 20
	}
	return &Handler{
		deps:         deps,
		maxBodyBytes: maxBody,
		logger:       log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]string, len(h.deps.ReadinessChecks))
	ready := true
	for name, check := range h.deps.ReadinessChecks {
		if err := check(r.Context()); err != nil {
			ready = false
			status[name] = "unavailable"
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err,
			})
			continue
		}
		status[name] = "ok"
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{"ready": ready, "checks": status})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.deps.Searcher == nil {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}

	var req SearchRequest
	if !h.decode(w, r, searchSchema, &req) {
		return
	}

	input := &searchproduct.Input{
		ImageInput:   req.ImageInput,
		IsURLMode:    req.IsURLMode,
		SortBy:       req.SortBy,
		VerifiedOnly: req.VerifiedOnly,
	}

	if req.PageURL != "" {
		if h.deps.Extractor == nil {
			writeError(w, http.StatusServiceUnavailable, msgUnavailable)
			return
		}
		image, err := h.deps.Extractor.Extract(r.Context(), req.PageURL)
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		if image == "" {
			writeError(w, http.StatusUnprocessableEntity, msgNoProductImage)
			return
		}
		input.ImageInput = image
		input.IsURLMode = true
	}

	out, err := h.deps.Searcher.Execute(r.Context(), input)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ExtractImage(w http.ResponseWriter, r *http.Request) {
	if h.deps.Extractor == nil {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}

	var req ExtractRequest
	if !h.decode(w, r, extractSchema, &req) {
		return
	}

	image, err := h.deps.Extractor.Extract(r.Context(), req.PageURL)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	resp := ExtractResponse{}
	if image != "" {
		resp.ImageURL = &image
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Deals(w http.ResponseWriter, r *http.Request) {
	if h.deps.Deals == nil {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDealsLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	deals, err := h.deps.Deals.Latest(r.Context(), limit)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deals": deals})
}

func (h *Handler) Vibe(w http.ResponseWriter, r *http.Request) {
	var req VibeRequest
	if !h.decode(w, r, vibeSchema, &req) {
		return
	}

	if h.deps.Vibe == nil {
		writeJSON(w, http.StatusOK, VibeResponse{Vibe: generateproductvibe.UnavailableMessage})
		return
	}

	out := h.deps.Vibe.Execute(r.Context(), &generateproductvibe.Input{ProductTitle: req.ProductTitle})
	writeJSON(w, http.StatusOK, VibeResponse{Vibe: out.Vibe})
}

// decode reads a bounded JSON body, validates it against schema and
// unmarshals it into dst. It writes the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema *validation.Schema, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	if err := schema.ValidateBytes(body); err != nil {
		h.logger.Debug("request rejected", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err,
		})
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return true
}

// writeFailure maps pipeline errors to a status and a fixed message. Causes
// are logged, never returned.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", map[string]interface{}{
		"error":     err,
		"errorCode": string(errors.AsStandard(err).Code),
	})

	switch {
	case errors.HasCode(err, errors.ErrCodeInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidImage)
	default:
		writeError(w, http.StatusBadGateway, errors.UserMessage)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
