package billing

import "time"

// AccrualPeriod is the length of one billing cycle.
const AccrualPeriod = 30 * 24 * time.Hour

// AccrualWindow is the time interval whose unsettled fees are aggregated
// into one invoice.
type AccrualWindow struct {
	Start time.Time
	End   time.Time
}

// Validate checks the window bounds.
func (w AccrualWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// ResolveWindow decides whether a partner is due for invoicing at now and,
// if so, returns the accrual window to bill.
//
// With invoice history the new window starts exactly at the previous
// invoice's end date, so a partner's windows are contiguous and never
// overlap. Without history the partner becomes billable once it is a full
// period old, and the first window covers the trailing period.
func ResolveWindow(last *Invoice, partnerCreatedAt, now time.Time) (AccrualWindow, bool) {
	if last != nil {
		if now.Sub(last.EndDate) >= AccrualPeriod {
			return AccrualWindow{Start: last.EndDate, End: now}, true
		}
		return AccrualWindow{}, false
	}
	if !partnerCreatedAt.IsZero() && now.Sub(partnerCreatedAt) >= AccrualPeriod {
		return AccrualWindow{Start: now.Add(-AccrualPeriod), End: now}, true
	}
	return AccrualWindow{}, false
}
