// Package handlers contains the HTTP handlers behind the REST router. Every
// handler resolves the {nickname} path parameter through the target service
// and answers with the shared JSON envelope.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/pkg/common"
	apperrors "github.com/jeonghun43/Prism/pkg/errors"
	"github.com/jeonghun43/Prism/pkg/utils"
)

// maxBodyBytes caps request bodies; payloads here are tiny.
const maxBodyBytes = 16 * 1024

// TargetHandler handles target lifecycle requests
type TargetHandler struct {
	targets *services.TargetService
	logger  *zap.Logger
}

// NewTargetHandler creates a new TargetHandler
func NewTargetHandler(targets *services.TargetService, logger *zap.Logger) *TargetHandler {
	return &TargetHandler{targets: targets, logger: logger}
}

type createTargetRequest struct {
	Nickname string `json:"nickname" validate:"required,max=40"`
}

// CreateTarget handles POST /api/v1/targets
func (h *TargetHandler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var req createTargetRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.targets.CreateTarget(r.Context(), req.Nickname)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	common.RespondJSON(w, status, map[string]interface{}{
		"target":  result.Target,
		"created": result.Created,
	})
}

// GetVotingPage handles GET /api/v1/targets/{nickname}
func (h *TargetHandler) GetVotingPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.targets.GetVotingPage(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}
