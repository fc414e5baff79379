package files

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/json"
	"github.com/stardeck/logbook/internal/service"
)

const maxUploadBytes = 64 << 20 // 64 MiB

type Handler struct {
	files *service.FileService
}

func NewHandler(files *service.FileService) *Handler {
	return &Handler{files: files}
}

// UploadFileHandler godoc
// @Summary      Upload a file
// @Description  Stores the multipart "file" part in object storage and returns the metadata record
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "File content"
// @Success      201 {object} domain.File
// @Failure      400 {object} map[string]interface{} "Missing or oversized file part"
// @Security     BearerAuth
// @Router       /files [post]
func (h *Handler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		json.WriteBadRequestError(w, "Invalid or oversized multipart body")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		json.WriteBadRequestError(w, "Missing file part")
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}
	if len(data) == 0 {
		json.WriteBadRequestError(w, "File is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := h.files.Upload(r.Context(), userID, header.Filename, contentType, data)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, file)
}

// GetFileHandler godoc
// @Summary      Get file metadata
// @Tags         files
// @Produce      json
// @Param        fileId path string true "File ID"
// @Success      200 {object} domain.File
// @Failure      404 {object} map[string]interface{} "File not found"
// @Security     BearerAuth
// @Router       /files/{fileId} [get]
func (h *Handler) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		json.WriteValidationError(w, errors.New("file ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	file, err := h.files.GetByID(r.Context(), userID, fileID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			json.WriteNotFoundError(w, err, "File not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, file)
}

// GetFileContentHandler godoc
// @Summary      Download file content
// @Tags         files
// @Produce      octet-stream
// @Param        fileId path string true "File ID"
// @Success      200 {file} binary
// @Failure      404 {object} map[string]interface{} "File not found"
// @Security     BearerAuth
// @Router       /files/{fileId}/content [get]
func (h *Handler) GetFileContentHandler(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		json.WriteValidationError(w, errors.New("file ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	file, err := h.files.GetByID(r.Context(), userID, fileID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			json.WriteNotFoundError(w, err, "File not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	data, err := h.files.Content(r.Context(), userID, fileID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteFileHandler godoc
// @Summary      Delete a file
// @Tags         files
// @Param        fileId path string true "File ID"
// @Success      204 "File deleted"
// @Failure      404 {object} map[string]interface{} "File not found"
// @Security     BearerAuth
// @Router       /files/{fileId} [delete]
func (h *Handler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")
	if fileID == "" {
		json.WriteValidationError(w, errors.New("file ID is missing"))
		return
	}

	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	if err := h.files.Delete(r.Context(), userID, fileID); err != nil {
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			json.WriteNotFoundError(w, err, "File not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
