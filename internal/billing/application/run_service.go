package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	billing "marketplace-cloud/internal/billing/domain"
	"marketplace-cloud/internal/observability/metrics"
	partner "marketplace-cloud/internal/partner/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// PartnerFailure records one partner whose billing cycle failed.
type PartnerFailure struct {
	PartnerID string `json:"partner_id"`
	Error     string `json:"error"`
}

// RunSummary is the structured outcome of one billing run. Zero invoices is
// a valid, non-error outcome.
type RunSummary struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Examined   int              `json:"examined"`
	Invoiced   int              `json:"invoiced"`
	Skipped    int              `json:"skipped"`
	Failures   []PartnerFailure `json:"failures,omitempty"`
}

// Failed reports whether any partner cycle failed.
func (s RunSummary) Failed() bool { return len(s.Failures) > 0 }

// BillingRunService closes elapsed 30-day accrual windows across the
// partner roster. Each eligible partner gets its own atomic settlement
// batch, so one partner's failure never discards work already committed
// for others; failures are collected into the run summary instead.
type BillingRunService struct {
	partners partner.Repository
	fees     billing.FeeRepository
	invoices billing.InvoiceRepository
	clock    Clock
	logger   *log.Logger
}

// NewBillingRunService constructs the service.
func NewBillingRunService(
	partners partner.Repository,
	fees billing.FeeRepository,
	invoices billing.InvoiceRepository,
	clock Clock,
	logger *log.Logger,
) (*BillingRunService, error) {
	if partners == nil {
		return nil, errors.New("billing run service: nil partner repository")
	}
	if fees == nil {
		return nil, errors.New("billing run service: nil fee repository")
	}
	if invoices == nil {
		return nil, errors.New("billing run service: nil invoice repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &BillingRunService{
		partners: partners,
		fees:     fees,
		invoices: invoices,
		clock:    clock,
		logger:   logger,
	}, nil
}

// RunOnce scans every partner and invoices the ones whose accrual window
// has elapsed. It returns an error only when the partner roster itself
// cannot be read; per-partner errors land in the summary.
func (s *BillingRunService) RunOnce(ctx context.Context) (RunSummary, error) {
	started := time.Now()
	now := s.clock.Now()
	summary := RunSummary{StartedAt: now}

	partners, err := s.partners.List(ctx)
	if err != nil {
		metrics.ObserveBillingRun(metrics.ResultError, 0, 0, time.Since(started))
		return summary, err
	}

	for _, p := range partners {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The run hit its deadline; abort the scan instead of burning a
			// doomed round-trip per remaining partner.
			summary.FinishedAt = s.clock.Now()
			metrics.ObserveBillingRun(metrics.ResultError, summary.Invoiced, summary.Skipped, time.Since(started))
			if s.logger != nil {
				s.logger.Printf("billing run: aborted after %d of %d partners: %v", summary.Examined, len(partners), ctxErr)
			}
			return summary, ctxErr
		}
		summary.Examined++
		invoiced, err := s.runPartner(ctx, p, now)
		if err != nil {
			summary.Failures = append(summary.Failures, PartnerFailure{PartnerID: p.ID, Error: err.Error()})
			if s.logger != nil {
				s.logger.Printf("billing run: partner=%s err=%v", p.ID, err)
			}
			continue
		}
		if invoiced {
			summary.Invoiced++
		} else {
			summary.Skipped++
		}
	}

	summary.FinishedAt = s.clock.Now()
	result := metrics.ResultSuccess
	if summary.Failed() {
		result = metrics.ResultPartial
	}
	metrics.ObserveBillingRun(result, summary.Invoiced, summary.Skipped, time.Since(started))
	if s.logger != nil {
		s.logger.Printf("billing run: examined=%d invoiced=%d skipped=%d failed=%d",
			summary.Examined, summary.Invoiced, summary.Skipped, len(summary.Failures))
	}
	return summary, nil
}

func (s *BillingRunService) runPartner(ctx context.Context, p partner.Partner, now time.Time) (bool, error) {
	last, err := s.invoices.FindLatestByPartner(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if last != nil && last.Status == billing.InvoiceStatusPending {
		// A partner carries at most one open invoice. The window boundary
		// stays at the unpaid invoice's end date, so the partner is billed
		// for the elapsed time once that invoice settles.
		if s.logger != nil {
			s.logger.Printf("billing run: partner=%s invoice %s still pending, skipping", p.ID, last.ID)
		}
		return false, nil
	}

	window, due := billing.ResolveWindow(last, p.CreatedAt, now)
	if !due {
		return false, nil
	}

	fees, err := s.fees.ListUnsettled(ctx, p.ID, window)
	if err != nil {
		return false, err
	}
	if len(fees) == 0 {
		// An elapsed window with no fee activity produces no invoice; the
		// boundary stays put and the next run re-evaluates it.
		if s.logger != nil {
			s.logger.Printf("billing run: partner=%s window elapsed with no fees, skipping", p.ID)
		}
		return false, nil
	}

	inv, err := billing.NewInvoice(uuid.NewString(), p.ID, window, fees, now)
	if err != nil {
		return false, err
	}
	feeIDs := make([]string, 0, len(fees))
	for _, fee := range fees {
		feeIDs = append(feeIDs, fee.ID)
	}
	if err := s.invoices.CreateSettlingFees(ctx, inv, feeIDs); err != nil {
		return false, err
	}
	return true, nil
}
