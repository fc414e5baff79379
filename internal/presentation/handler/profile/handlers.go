package profile

import (
	"net/http"

	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/json"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetProfileHandler godoc
// @Summary      Get the caller's profile
// @Description  Returns the identity claims of the authenticated user
// @Tags         profile
// @Produce      json
// @Success      200 {object} auth.Identity
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Security     BearerAuth
// @Router       /profile [get]
func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFrom(r.Context())
	if err != nil {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	json.Write(w, http.StatusOK, identity)
}
