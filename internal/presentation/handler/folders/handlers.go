package folders

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
	folders *service.FolderService
}

func NewHandler(folders *service.FolderService) *Handler {
	return &Handler{folders: folders}
}

// UpsertFolderHandler godoc
// @Summary      Create or update a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Param        folderId path string true "Folder ID"
// @Param        request body upsertFolderRequest true "Folder"
// @Success      200 {object} domain.Folder
// @Failure      400 {object} map[string]interface{} "Validation error"
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Security     BearerAuth
// @Router       /folders/{folderId} [put]
func (h *Handler) UpsertFolderHandler(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderId")
	if folderID == "" {
		json.WriteValidationError(w, errors.New("folder ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	var req upsertFolderRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	folder, err := h.folders.Upsert(r.Context(), userID, req.toDomain(folderID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			json.WriteUnauthorizedError(w, "You do not own this folder")
		default:
			json.WriteValidationError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, folder)
}

// GetFolderHandler godoc
// @Summary      Get a folder
// @Tags         folders
// @Produce      json
// @Param        folderId path string true "Folder ID"
// @Success      200 {object} domain.Folder
// @Failure      404 {object} map[string]interface{} "Folder not found"
// @Security     BearerAuth
// @Router       /folders/{folderId} [get]
func (h *Handler) GetFolderHandler(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderId")
	if folderID == "" {
		json.WriteValidationError(w, errors.New("folder ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	folder, err := h.folders.GetByID(r.Context(), userID, folderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFolderNotFound):
			json.WriteNotFoundError(w, err, "Folder not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, folder)
}

// ListFoldersHandler godoc
// @Summary      List folders
// @Tags         folders
// @Produce      json
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Offset" default(0)
// @Param        search query string false "Name search"
// @Param        parentId query string false "Restrict to one parent folder"
// @Param        includeArchived query bool false "Include archived folders"
// @Param        includeDeleted query bool false "Include deleted folders"
// @Success      200 {object} domain.Page[domain.Folder]
// @Security     BearerAuth
// @Router       /folders [get]
func (h *Handler) ListFoldersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	q := domain.FolderQuery{
		UserID:          userID,
		ParentID:        r.URL.Query().Get("parentId"),
		Limit:           queryInt(r, "limit", 50),
		Offset:          queryInt(r, "offset", 0),
		Search:          r.URL.Query().Get("search"),
		IncludeArchived: queryBool(r, "includeArchived"),
		IncludeDeleted:  queryBool(r, "includeDeleted"),
		OrderBy:         domain.OrderByCreatedAt,
		OrderAscending:  strings.EqualFold(r.URL.Query().Get("order"), "asc"),
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	page, err := h.folders.List(r.Context(), q)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, page)
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

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
