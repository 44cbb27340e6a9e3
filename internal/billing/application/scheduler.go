package application

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers the billing run once per day at a fixed local time.
type Scheduler struct {
	service  *BillingRunService
	dailyAt  string
	location *time.Location
	timeout  time.Duration
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler. dailyAt is "HH:MM" in the given
// location.
func NewScheduler(service *BillingRunService, dailyAt string, location *time.Location, timeout time.Duration, logger *log.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		service:  service,
		dailyAt:  dailyAt,
		location: location,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.In(s.location)) {
				continue
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	summary, err := s.service.RunOnce(runCtx)
	if err != nil && s.logger != nil {
		s.logger.Printf("billing schedule error: %v", err)
		return
	}
	if summary.Failed() && s.logger != nil {
		for _, failure := range summary.Failures {
			s.logger.Printf("billing schedule: partner=%s failed: %s", failure.PartnerID, failure.Error)
		}
	}
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
