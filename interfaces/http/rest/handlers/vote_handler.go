package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/domain/feedback"
	"github.com/jeonghun43/Prism/pkg/common"
	apperrors "github.com/jeonghun43/Prism/pkg/errors"
	"github.com/jeonghun43/Prism/pkg/utils"
)

func nicknameParam(r *http.Request) string {
	return chi.URLParam(r, "nickname")
}

// VoteHandler handles vote submission requests
type VoteHandler struct {
	targets *services.TargetService
	votes   *services.VoteService
	logger  *zap.Logger
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(targets *services.TargetService, votes *services.VoteService, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{targets: targets, votes: votes, logger: logger}
}

type submitVotesRequest struct {
	SessionToken string         `json:"session_token" validate:"required,uuid4"`
	Answers      map[string]int `json:"answers" validate:"required,min=1"`
}

// SubmitVotes handles POST /api/v1/targets/{nickname}/votes
func (h *VoteHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	var req submitVotesRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	token, err := feedback.ParseSessionToken(req.SessionToken)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	target, err := h.targets.GetByNickname(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.votes.Submit(r.Context(), target.ID, token, req.Answers); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"recorded": len(req.Answers),
	})
}
