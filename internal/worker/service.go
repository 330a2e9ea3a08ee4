// Package worker runs the asynq consumer and periodic sweeps.
package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/provider"
	"github.com/swadeshika/storefront/internal/queue"
)

const expireSweepInterval = 5 * time.Minute

// Service runs the background task server.
type Service struct {
	container *provider.Container
	server    *asynq.Server
	mux       *asynq.ServeMux
	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewService builds the worker from config. Returns nil when the queue
// is disabled; the caller skips registration in that case.
func NewService(c *provider.Container) *Service {
	if !c.QueueClient.Enabled() {
		return nil
	}
	redisOpt, serverCfg := queue.BuildServerConfig(&c.Config.Queue)
	server := asynq.NewServer(redisOpt, serverCfg)
	mux := asynq.NewServeMux()
	NewConsumer(c).Register(mux)

	return &Service{
		container: c,
		server:    server,
		mux:       mux,
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
}

// Name identifies the service in lifecycle logs.
func (s *Service) Name() string { return "worker" }

// Start launches the task server and the expiry sweep loop.
func (s *Service) Start(ctx context.Context) error {
	go s.runExpireSweep()
	return s.server.Start(s.mux)
}

// Stop shuts the task server down and waits for the sweep loop.
func (s *Service) Stop(ctx context.Context) error {
	close(s.sweepStop)
	s.server.Shutdown()
	<-s.sweepDone
	return nil
}

// runExpireSweep periodically cancels expired unpaid orders whose
// delayed tasks were lost, e.g. across a redis flush.
func (s *Service) runExpireSweep() {
	defer close(s.sweepDone)
	ticker := time.NewTicker(expireSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			cancelled, err := s.container.OrderService.CancelExpiredOrders(0)
			if err != nil {
				logger.Warnw("order_expire_sweep_failed", "error", err)
				continue
			}
			if cancelled > 0 {
				logger.Infow("order_expire_sweep_done", "cancelled", cancelled)
			}
		}
	}
}
