package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/user/feed-service/internal/delivery/http/request"
	"github.com/user/feed-service/internal/delivery/http/response"
	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/internal/feed"
	"github.com/user/feed-service/internal/usecase"
)

// maxUploadBytes caps an uploaded feed file.
const maxUploadBytes = 50 << 20

// Pinger reports reachability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	importer    usecase.Importer
	exporter    usecase.Exporter
	olxManager  usecase.OlxManager
	pgPinger    Pinger
	redisPinger Pinger
}

func NewHandler(
	importer usecase.Importer,
	exporter usecase.Exporter,
	olxManager usecase.OlxManager,
	pgPinger, redisPinger Pinger,
) *Handler {
	return &Handler{
		importer:    importer,
		exporter:    exporter,
		olxManager:  olxManager,
		pgPinger:    pgPinger,
		redisPinger: redisPinger,
	}
}

// HandleImportFile ingests an uploaded XML document. Dialect is detected
// from the document itself.
func (h *Handler) HandleImportFile(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		h.writeJSONError(w, "owner_id query parameter is required", http.StatusBadRequest)
		return
	}
	publish := r.URL.Query().Get("publish") == "true"
	dryRun := r.URL.Query().Get("dry_run") == "true"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		h.writeJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.importer.ImportFile(r.Context(), ownerID, body, publish, dryRun)
	if err != nil {
		if errors.Is(err, feed.ErrMalformedXML) {
			h.writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.Error("File import failed", "owner_id", ownerID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromImportResult(result))
}

// HandleImportCNM imports a remote generic-dialect feed.
func (h *Handler) HandleImportCNM(w http.ResponseWriter, r *http.Request) {
	h.handleImportURL(w, r, "cnm")
}

// HandleImportVRSync imports a remote VivaReal/VRSync feed.
func (h *Handler) HandleImportVRSync(w http.ResponseWriter, r *http.Request) {
	h.handleImportURL(w, r, "vrsync")
}

func (h *Handler) handleImportURL(w http.ResponseWriter, r *http.Request, format string) {
	var req request.ImportURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		h.writeJSONError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	result, err := h.importer.ImportURL(r.Context(), req.UserID, req.URL, format, req.Publish, req.Force, req.DryRun)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrFeedRecentlyImported):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, feed.ErrMalformedXML):
			h.writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.Error("URL import failed", "url", req.URL, "format", format, "error", err)
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromImportResult(result))
}

// HandleExportGeneric serves the owner's public listings as a downloadable
// XML document.
func (h *Handler) HandleExportGeneric(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		h.writeJSONError(w, "owner_id query parameter is required", http.StatusBadRequest)
		return
	}

	xmlDoc, filename, err := h.exporter.ExportGeneric(r.Context(), ownerID)
	if err != nil {
		slog.Error("Generic export failed", "owner_id", ownerID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeXMLAttachment(w, xmlDoc, filename)
}

// HandleOlxFeed serves the OLX marketplace feed. With preview=true the
// document is returned inline and nothing is stamped as published.
func (h *Handler) HandleOlxFeed(w http.ResponseWriter, r *http.Request) {
	brokerID := r.URL.Query().Get("broker_id")
	if brokerID == "" {
		h.writeJSONError(w, "broker_id query parameter is required", http.StatusBadRequest)
		return
	}
	preview := r.URL.Query().Get("preview") == "true"

	xmlDoc, filename, err := h.exporter.ExportOlx(r.Context(), brokerID, preview)
	if err != nil {
		slog.Error("OLX export failed", "broker_id", brokerID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if preview {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, xmlDoc)
		return
	}
	h.writeXMLAttachment(w, xmlDoc, filename)
}

// HandleGetOlxMetadata returns the stored metadata form for a listing.
func (h *Handler) HandleGetOlxMetadata(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := h.propertyIDParam(w, r)
	if !ok {
		return
	}

	meta, err := h.olxManager.GetMetadata(r.Context(), propertyID)
	if err != nil {
		h.writeOlxError(w, propertyID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromOlxMetadata(meta))
}

// HandleSaveOlxMetadata persists the metadata form and returns the fresh
// validation verdict alongside it.
func (h *Handler) HandleSaveOlxMetadata(w http.ResponseWriter, r *http.Request) {
	var req request.SaveOlxMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PropertyID == 0 {
		h.writeJSONError(w, "property_id is required", http.StatusBadRequest)
		return
	}

	meta := &entity.OlxListingMetadata{
		PropertyID:   req.PropertyID,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		PostalCode:   req.PostalCode,
		StateAbbr:    req.StateAbbr,
		StreetNumber: req.StreetNumber,
		LivingAreaM2: req.LivingAreaM2,
	}

	verdict, err := h.olxManager.SaveMetadata(r.Context(), meta)
	if err != nil {
		h.writeOlxError(w, req.PropertyID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, verdict)
}

// HandleOlxReadiness runs the validation gate for one listing.
func (h *Handler) HandleOlxReadiness(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := h.propertyIDParam(w, r)
	if !ok {
		return
	}

	verdict, err := h.olxManager.Readiness(r.Context(), propertyID)
	if err != nil {
		h.writeOlxError(w, propertyID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, verdict)
}

// HandleMarkOlx toggles OLX publication for a listing.
func (h *Handler) HandleMarkOlx(w http.ResponseWriter, r *http.Request) {
	var req request.MarkOlxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OwnerID == "" || req.PropertyID == 0 {
		h.writeJSONError(w, "owner_id and property_id are required", http.StatusBadRequest)
		return
	}

	err := h.olxManager.SetMarked(r.Context(), req.OwnerID, req.PropertyID, req.Marked)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrOlxQuotaExceeded):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, usecase.ErrNotOwner):
			h.writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			h.writeOlxError(w, req.PropertyID, err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"marked": req.Marked})
}

// HandleHealthCheck pings the backing stores.
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := h.pgPinger.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		slog.Error("Health check failed for postgres", "error", err)
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := h.redisPinger.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		slog.Error("Health check failed for redis", "error", err)
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) propertyIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("property_id")
	if raw == "" {
		h.writeJSONError(w, "property_id query parameter is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeJSONError(w, "Invalid property_id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeOlxError(w http.ResponseWriter, propertyID int64, err error) {
	if errors.Is(err, usecase.ErrPropertyNotFound) {
		h.writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	slog.Error("OLX operation failed", "property_id", propertyID, "error", err)
	h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) writeXMLAttachment(w http.ResponseWriter, xmlDoc, filename string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, xmlDoc)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
