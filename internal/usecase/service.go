package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/pkg/metrics"
	"cinema-reservation/pkg/realtime"
	"cinema-reservation/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Infra is the long-lived infrastructure shared by all services.
type Infra struct {
	Subscriber realtime.Subscriber
	Beacon     reservation.Beacon
	Clock      clockwork.Clock
	Metrics    *metrics.Metrics
}

type Service struct {
	Session SessionService
	Payment PaymentService
}

func NewService(repo *repository.Repository, infra Infra, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Session: NewSessionService(repo, infra, config, log),
		Payment: NewPaymentService(repo, infra, config, log),
	}
}
