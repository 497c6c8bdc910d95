package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/infrastructure/realtime"
	"github.com/jeonghun43/Prism/pkg/common"
)

// keepAliveInterval is how often an SSE comment is written to hold idle
// connections open through proxies.
const keepAliveInterval = 25 * time.Second

// StreamHandler serves the Server-Sent Events feed backed by the in-process
// hub. One subscription per request; the subscription is torn down when the
// client disconnects.
type StreamHandler struct {
	targets *services.TargetService
	hub     *realtime.Hub
	logger  *zap.Logger
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(targets *services.TargetService, hub *realtime.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{targets: targets, hub: hub, logger: logger}
}

// Stream handles GET /api/v1/targets/{nickname}/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError,
			common.StandardErrorCodes.InternalError, "streaming unsupported")
		return
	}

	target, err := h.targets.GetByNickname(r.Context(), nicknameParam(r))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	messages, cancel := h.hub.Subscribe(target.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	h.logger.Debug("feed subscriber connected",
		zap.String("targetID", target.ID),
	)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("feed subscriber disconnected",
				zap.String("targetID", target.ID),
			)
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, open := <-messages:
			if !open {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Warn("failed to marshal feed message", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			flusher.Flush()
		}
	}
}
