package logentries

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/json"
	"github.com/stardeck/logbook/internal/service"
)

type Handler struct {
	logEntries *service.LogEntryService
}

func NewHandler(logEntries *service.LogEntryService) *Handler {
	return &Handler{logEntries: logEntries}
}

// UpsertLogEntryHandler godoc
// @Summary      Create or update a log entry
// @Description  Upserts the log entry with the client-generated ID. An entry persisted in UPLOADED status triggers transcription and enrichment.
// @Tags         logentries
// @Accept       json
// @Produce      json
// @Param        entryId path string true "Log entry ID"
// @Param        request body upsertLogEntryRequest true "Log entry"
// @Success      200 {object} domain.LogEntry "Log entry persisted"
// @Failure      400 {object} map[string]interface{} "Bad request"
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Failure      404 {object} map[string]interface{} "Audio file not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Security     BearerAuth
// @Router       /logentries/{entryId} [put]
func (h *Handler) UpsertLogEntryHandler(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	if entryID == "" {
		json.WriteValidationError(w, errors.New("log entry ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	var req upsertLogEntryRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	entry, err := h.logEntries.Upsert(r.Context(), userID, req.toDomain(entryID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			json.WriteUnauthorizedError(w, "You do not own this log entry or audio file")
		case errors.Is(err, domain.ErrFileNotFound):
			json.WriteNotFoundError(w, err, "Audio file not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, entry)
}

// GetLogEntryHandler godoc
// @Summary      Get a log entry
// @Description  Returns one of the caller's log entries by ID
// @Tags         logentries
// @Produce      json
// @Param        entryId path string true "Log entry ID"
// @Success      200 {object} domain.LogEntry
// @Failure      404 {object} map[string]interface{} "Log entry not found"
// @Security     BearerAuth
// @Router       /logentries/{entryId} [get]
func (h *Handler) GetLogEntryHandler(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	if entryID == "" {
		json.WriteValidationError(w, errors.New("log entry ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	entry, err := h.logEntries.GetByID(r.Context(), userID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLogEntryNotFound):
			json.WriteNotFoundError(w, err, "Log entry not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, entry)
}

// ListLogEntriesHandler godoc
// @Summary      List log entries
// @Description  Returns a page of the caller's log entries with optional text search and ordering
// @Tags         logentries
// @Produce      json
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Offset" default(0)
// @Param        search query string false "Text search on title and transcript"
// @Param        orderBy query string false "CREATED_AT, UPDATED_AT or TITLE" default(CREATED_AT)
// @Param        order query string false "asc or desc" default(desc)
// @Success      200 {object} domain.Page[domain.LogEntry]
// @Security     BearerAuth
// @Router       /logentries [get]
func (h *Handler) ListLogEntriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	q := domain.LogEntryQuery{
		AuthorID:       userID,
		Limit:          queryInt(r, "limit", 20),
		Offset:         queryInt(r, "offset", 0),
		Search:         r.URL.Query().Get("search"),
		OrderBy:        parseOrderBy(r.URL.Query().Get("orderBy")),
		OrderAscending: strings.EqualFold(r.URL.Query().Get("order"), "asc"),
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	page, err := h.logEntries.List(r.Context(), q)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, page)
}

func parseOrderBy(s string) domain.OrderBy {
	switch domain.OrderBy(strings.ToUpper(s)) {
	case domain.OrderByUpdatedAt:
		return domain.OrderByUpdatedAt
	case domain.OrderByTitle:
		return domain.OrderByTitle
	default:
		return domain.OrderByCreatedAt
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
