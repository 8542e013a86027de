package services

import (
	"context"
	"errors"
	"time"

	"github.com/nordmart/storefront/internal/repositories"
)

const (
	// HealthStatusOK marks a healthy dependency.
	HealthStatusOK = "ok"
	// HealthStatusError marks a failing dependency.
	HealthStatusError = "error"
)

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
}

type systemService struct {
	healthRepo repositories.HealthRepository
	clock      func() time.Time
}

var _ SystemService = (*systemService)(nil)

// NewSystemService assembles the system utility service providing health reports.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &systemService{
		healthRepo: deps.HealthRepository,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *systemService) HealthReport(ctx context.Context) (HealthReport, error) {
	report := HealthReport{
		Status: HealthStatusOK,
		Checks: map[string]string{"database": HealthStatusOK},
	}
	if err := s.healthRepo.Ping(ctx); err != nil {
		report.Status = HealthStatusError
		report.Checks["database"] = HealthStatusError
	}
	return report, nil
}
