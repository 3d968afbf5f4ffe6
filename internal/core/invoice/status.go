package invoice

import "github.com/shopspring/decimal"

// ComputePaymentStatus derives the payment status of an invoice from the sum
// of its payments and its total amount:
//
//	PAID    when totalPaid >= total
//	PARTIAL when 0 < totalPaid < total
//	PENDING when totalPaid == 0
//
// The second return value is the derived isPaid flag. Both the postgres
// repository and the in-memory test fake recompute through this function so
// the rule exists in exactly one place.
func ComputePaymentStatus(totalPaid, total decimal.Decimal) (PaymentStatus, bool) {
	if totalPaid.GreaterThanOrEqual(total) && totalPaid.IsPositive() {
		return PaymentPaid, true
	}
	if totalPaid.IsPositive() {
		return PaymentPartial, false
	}
	return PaymentPending, false
}

// SumPayments adds up a payment ledger.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
