package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/pkg/common"
)

// NotificationHandler handles notification log requests
type NotificationHandler struct {
	targets       *services.TargetService
	notifications *services.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(targets *services.TargetService, notifications *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{targets: targets, notifications: notifications, logger: logger}
}

// ListNotifications handles GET /api/v1/targets/{nickname}/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	target, err := h.targets.GetByNickname(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	list, err := h.notifications.ListRecent(r.Context(), target.ID, limit, unreadOnly)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": list,
	})
}

type markReadRequest struct {
	IDs []string `json:"notification_ids"`
}

// MarkRead handles POST /api/v1/targets/{nickname}/notifications/read.
// An empty id list marks the whole log read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "invalid request body")
		return
	}

	target, err := h.targets.GetByNickname(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), target.ID, req.IDs); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"marked": true,
	})
}
