package jobs

import (
	"context"
	"fmt"
	"time"

	"bikerental-backend/internal/config"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/metrics"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings repository.BookingRepository
	notes    repository.NotificationRepository
	services *Services
	config   *config.Config
	policy   pricing.RentalPolicyConfig
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email  service.EmailService
	Report service.ReportService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookings repository.BookingRepository, notes repository.NotificationRepository, services *Services, cfg *config.Config) (*JobRunner, error) {
	policy, err := cfg.PricingPolicy()
	if err != nil {
		return nil, err
	}
	return &JobRunner{
		bookings: bookings,
		notes:    notes,
		services: services,
		config:   cfg,
		policy:   policy,
		now:      time.Now,
	}, nil
}

// Config returns the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	log := logger.WithJob(jobName)
	ok := false
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
		metrics.IncJobRun(jobName, ok)
	}()

	log.Info("Starting job")
	start := jr.now()
	if err := jobFunc(context.Background()); err != nil {
		log.Error("Job failed", "error", err)
		return
	}
	ok = true
	log.Info("Job completed", "elapsed", jr.now().Sub(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CancelStalePending()
	jr.FlagOverdueBookings()
}

// RunJob runs a single job by name.
func (jr *JobRunner) RunJob(name string) error {
	switch name {
	case "flag-overdue":
		jr.FlagOverdueBookings()
	case "cancel-stale":
		jr.CancelStalePending()
	case "export-report":
		jr.ExportSettlementReport()
	case "all":
		jr.RunAll()
	default:
		return fmt.Errorf("unknown job %q", name)
	}
	return nil
}
