package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/pkg/common"
)

// ReportHandler handles report view requests
type ReportHandler struct {
	targets *services.TargetService
	reports *services.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(targets *services.TargetService, reports *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{targets: targets, reports: reports, logger: logger}
}

// GetReport handles GET /api/v1/targets/{nickname}/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	target, err := h.targets.GetByNickname(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	report, err := h.reports.GetReport(r.Context(), target.ID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}
