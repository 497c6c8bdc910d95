package di

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/infrastructure/config"
	"github.com/jeonghun43/Prism/infrastructure/realtime"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	TargetRepo       ports.TargetRepository
	QuestionRepo     ports.QuestionRepository
	ResponseRepo     ports.ResponseRepository
	ReportLockRepo   ports.ReportLockRepository
	NotificationRepo ports.NotificationRepository
	ConnectionRepo   ports.ConnectionRepository

	Publisher   ports.EventPublisher
	Hub         *realtime.Hub
	Broadcaster ports.Broadcaster
	RateLimiter *ratelimit.Limiter

	TargetService       *services.TargetService
	VoteService         *services.VoteService
	ReportService       *services.ReportService
	NotificationService *services.NotificationService

	Handler http.Handler
}
