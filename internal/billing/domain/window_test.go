package billing

import (
	"testing"
	"time"
)

func TestResolveWindowWithoutHistory(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		partnerCreatedAt time.Time
		wantDue          bool
		wantStart        time.Time
	}{
		{
			name:             "partner older than a full period is due",
			partnerCreatedAt: now.Add(-40 * 24 * time.Hour),
			wantDue:          true,
			wantStart:        now.Add(-AccrualPeriod),
		},
		{
			name:             "partner exactly one period old is due",
			partnerCreatedAt: now.Add(-AccrualPeriod),
			wantDue:          true,
			wantStart:        now.Add(-AccrualPeriod),
		},
		{
			name:             "young partner is not due",
			partnerCreatedAt: now.Add(-10 * 24 * time.Hour),
			wantDue:          false,
		},
		{
			name:    "zero creation time is never due",
			wantDue: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			window, due := ResolveWindow(nil, tc.partnerCreatedAt, now)
			if due != tc.wantDue {
				t.Fatalf("due = %v, want %v", due, tc.wantDue)
			}
			if !due {
				return
			}
			if !window.Start.Equal(tc.wantStart) {
				t.Fatalf("start = %v, want %v", window.Start, tc.wantStart)
			}
			if !window.End.Equal(now) {
				t.Fatalf("end = %v, want %v", window.End, now)
			}
		})
	}
}

func TestResolveWindowWithHistory(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	lastEnd := now.Add(-35 * 24 * time.Hour)
	last := &Invoice{ID: "inv-1", PartnerID: "p1", EndDate: lastEnd}

	window, due := ResolveWindow(last, now.Add(-200*24*time.Hour), now)
	if !due {
		t.Fatal("expected partner to be due")
	}
	// Windows are contiguous: the new start is exactly the old end.
	if !window.Start.Equal(lastEnd) {
		t.Fatalf("start = %v, want %v", window.Start, lastEnd)
	}
	if !window.End.Equal(now) {
		t.Fatalf("end = %v, want %v", window.End, now)
	}
}

func TestResolveWindowRecentInvoiceNotDue(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	last := &Invoice{ID: "inv-1", PartnerID: "p1", EndDate: now.Add(-29 * 24 * time.Hour)}

	// Partner age is irrelevant once invoice history exists.
	if _, due := ResolveWindow(last, now.Add(-400*24*time.Hour), now); due {
		t.Fatal("expected partner not to be due 29 days after last window")
	}
}

func TestNewInvoiceTotals(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	window := AccrualWindow{Start: now.Add(-AccrualPeriod), End: now}
	fees := []Fee{
		{ID: "f1", PartnerID: "p1", Value: 10},
		{ID: "f2", PartnerID: "p1", Value: 20},
		{ID: "f3", PartnerID: "p1", Value: 30},
	}

	inv, err := NewInvoice("inv-1", "p1", window, fees, now)
	if err != nil {
		t.Fatalf("new invoice: %v", err)
	}
	if inv.TotalAmount != 60 {
		t.Fatalf("total amount = %v, want 60", inv.TotalAmount)
	}
	if inv.TotalOrders != 3 {
		t.Fatalf("total orders = %d, want 3", inv.TotalOrders)
	}
	if inv.Status != InvoiceStatusPending {
		t.Fatalf("status = %s, want pending", inv.Status)
	}
}

func TestNewInvoiceRejectsEmptyInput(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	window := AccrualWindow{Start: now.Add(-AccrualPeriod), End: now}

	if _, err := NewInvoice("inv-1", "p1", window, nil, now); err != ErrNoFees {
		t.Fatalf("err = %v, want ErrNoFees", err)
	}
	if _, err := NewInvoice("inv-1", "", window, []Fee{{ID: "f1"}}, now); err != ErrEmptyPartnerID {
		t.Fatalf("err = %v, want ErrEmptyPartnerID", err)
	}
	if _, err := NewInvoice("inv-1", "p1", AccrualWindow{Start: now, End: now}, []Fee{{ID: "f1"}}, now); err != ErrInvalidWindow {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}
