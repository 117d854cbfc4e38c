package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/metrics"
	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

// MaintenanceService runs the background housekeeping jobs
type MaintenanceService struct {
	repo    repository.Repository
	metrics *metrics.Metrics
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(repo repository.Repository, metricsCollector *metrics.Metrics) *MaintenanceService {
	return &MaintenanceService{
		repo:    repo,
		metrics: metricsCollector,
	}
}

// PruneDeliveredEvents hard-deletes delivered events older than the
// retention window. Failed events are kept for operator inspection.
func (s *MaintenanceService) PruneDeliveredEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	pruned, err := s.repo.DeleteDeliveredEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune delivered events")
	}

	s.metrics.AddCounter("worker.events_pruned", pruned)
	log.Info().
		Int64("pruned", pruned).
		Time("cutoff", cutoff).
		Msg("Pruned delivered events")

	return pruned, nil
}

// ReportFailedDeliveries counts recent failed deliveries and records them
// as a gauge for the metrics endpoint.
func (s *MaintenanceService) ReportFailedDeliveries(ctx context.Context, window time.Duration) (int64, error) {
	since := time.Now().Add(-window)

	failed, err := s.repo.CountEventsByStatusSince(ctx, models.DeliveryFailed, since)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count failed deliveries")
	}

	s.metrics.SetGauge("deliveries.recent_failures", failed)
	if failed > 0 {
		log.Warn().
			Int64("failed", failed).
			Dur("window", window).
			Msg("Failed deliveries in window")
	}

	return failed, nil
}
