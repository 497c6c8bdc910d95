package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/pkg/common"
)

// AdminHandler handles the internal maintenance endpoints invoked by the
// scheduler, not by end users.
type AdminHandler struct {
	targets    *services.TargetService
	cronSecret string
	logger     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(targets *services.TargetService, cronSecret string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{targets: targets, cronSecret: cronSecret, logger: logger}
}

// Cleanup handles POST /internal/cleanup. Callers authenticate with the
// shared cron secret as a bearer token.
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		common.RespondError(w, http.StatusUnauthorized,
			common.StandardErrorCodes.Unauthorized, "invalid cleanup credentials")
		return
	}

	deleted, err := h.targets.DeleteExpired(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.cronSecret == "" {
		// No secret configured (local development): allow.
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}
