package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputePaymentStatus(t *testing.T) {
	tests := []struct {
		name           string
		totalPaid      string
		total          string
		expectedStatus PaymentStatus
		expectedIsPaid bool
	}{
		{name: "no payments", totalPaid: "0", total: "100000", expectedStatus: PaymentPending, expectedIsPaid: false},
		{name: "partial payment", totalPaid: "40000", total: "100000", expectedStatus: PaymentPartial, expectedIsPaid: false},
		{name: "exact payment", totalPaid: "100000", total: "100000", expectedStatus: PaymentPaid, expectedIsPaid: true},
		{name: "overpayment", totalPaid: "120000", total: "100000", expectedStatus: PaymentPaid, expectedIsPaid: true},
		{name: "one peso short", totalPaid: "99999", total: "100000", expectedStatus: PaymentPartial, expectedIsPaid: false},
		{name: "zero total zero paid", totalPaid: "0", total: "0", expectedStatus: PaymentPending, expectedIsPaid: false},
		{name: "zero total with payment", totalPaid: "1", total: "0", expectedStatus: PaymentPaid, expectedIsPaid: true},
		{name: "fractional partial", totalPaid: "0.01", total: "0.02", expectedStatus: PaymentPartial, expectedIsPaid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid := decimal.RequireFromString(tt.totalPaid)
			total := decimal.RequireFromString(tt.total)

			status, isPaid := ComputePaymentStatus(paid, total)

			if status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, status)
			}
			if isPaid != tt.expectedIsPaid {
				t.Errorf("expected isPaid %v, got %v", tt.expectedIsPaid, isPaid)
			}
		})
	}
}

func TestSumPayments(t *testing.T) {
	payments := []Payment{
		{Amount: decimal.RequireFromString("40000")},
		{Amount: decimal.RequireFromString("60000")},
		{Amount: decimal.RequireFromString("0.50")},
	}

	got := SumPayments(payments)
	want := decimal.RequireFromString("100000.50")

	if !got.Equal(want) {
		t.Errorf("expected sum %s, got %s", want, got)
	}

	if !SumPayments(nil).IsZero() {
		t.Error("expected empty ledger to sum to zero")
	}
}
