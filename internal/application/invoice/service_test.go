package invoice

import (
	"context"
	"errors"
	"testing"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/invoice"
	"obrasoft/ms_gestion_core/internal/testutil"

	"github.com/shopspring/decimal"
)

const companyID int64 = 1

func newTestService(repo *testutil.FakeInvoiceRepository) *Service {
	return NewService(repo, nil, testutil.NewNullLogger())
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateInvoiceRequest
	}{
		{
			name: "missing folio",
			req:  CreateInvoiceRequest{Type: "VENTA", Total: decPtr("100")},
		},
		{
			name: "unknown type",
			req:  CreateInvoiceRequest{Number: "F-1", Type: "RECIBO", Total: decPtr("100")},
		},
		{
			name: "missing total",
			req:  CreateInvoiceRequest{Number: "F-1", Type: "VENTA"},
		},
		{
			name: "negative total",
			req:  CreateInvoiceRequest{Number: "F-1", Type: "VENTA", Total: decPtr("-5")},
		},
		{
			name: "contradictory aliases",
			req:  CreateInvoiceRequest{Number: "F-1", Type: "VENTA", Total: decPtr("100"), TotalAmount: decPtr("200")},
		},
		{
			name: "compra without supplier",
			req:  CreateInvoiceRequest{Number: "C-1", Type: "COMPRA", Total: decPtr("100")},
		},
		{
			name: "bad issue date",
			req:  CreateInvoiceRequest{Number: "F-1", Type: "VENTA", Total: decPtr("100"), IssueDate: "31/12/2025"},
		},
	}

	svc := newTestService(testutil.NewFakeInvoiceRepository())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), companyID, tt.req)
			if !errs.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_AmountAliases(t *testing.T) {
	svc := newTestService(testutil.NewFakeInvoiceRepository())

	// Short names and long names are interchangeable; total is derived
	// from net + iva when absent.
	created, err := svc.Create(context.Background(), companyID, CreateInvoiceRequest{
		Number: "F-1",
		Type:   "VENTA",
		Net:    decPtr("84034"),
		Iva:    decPtr("15966"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.TotalAmount.Equal(dec("100000")) {
		t.Errorf("expected derived total 100000, got %s", created.TotalAmount)
	}
	if !created.NetAmount.Equal(dec("84034")) {
		t.Errorf("expected netAmount 84034, got %s", created.NetAmount)
	}
}

func TestCreate_DuplicateFolio(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first := CreateInvoiceRequest{Number: "F-100", Type: "VENTA", Total: decPtr("1000")}
	if _, err := svc.Create(ctx, companyID, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same folio, same type: rejected.
	if _, err := svc.Create(ctx, companyID, first); !errs.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Same folio, different type: allowed.
	if _, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-100", Type: "NOTA_CREDITO", Total: decPtr("1000"),
	}); err != nil {
		t.Fatalf("expected credit note with same folio to succeed, got %v", err)
	}

	// Another tenant can reuse the folio freely.
	if _, err := svc.Create(ctx, companyID+1, first); err != nil {
		t.Fatalf("expected folio reuse across tenants to succeed, got %v", err)
	}
}

func TestCreate_CompraFolioScopedBySupplier(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	base := CreateInvoiceRequest{Number: "C-55", Type: "COMPRA", Total: decPtr("500"), ClientID: int64Ptr(10)}
	if _, err := svc.Create(ctx, companyID, base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same supplier, same folio: rejected.
	if _, err := svc.Create(ctx, companyID, base); !errs.IsConflict(err) {
		t.Fatalf("expected conflict for same supplier, got %v", err)
	}

	// Different supplier may issue the same folio.
	other := base
	other.ClientID = int64Ptr(20)
	if _, err := svc.Create(ctx, companyID, other); err != nil {
		t.Fatalf("expected same folio from another supplier to succeed, got %v", err)
	}
}

func TestCreate_CreditNoteAnnulsRelated(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sale, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-200", Type: "VENTA", Total: decPtr("250000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number:           "NC-1",
		Type:             "NOTA_CREDITO",
		Total:            decPtr("250000"),
		RelatedInvoiceID: &sale.ID,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	annulled, err := svc.Get(ctx, companyID, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if annulled.Status != invoice.StatusCancelled {
		t.Errorf("expected related invoice CANCELLED, got %s", annulled.Status)
	}
}

func TestCreate_CreditNoteWithoutAnnul(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sale, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-201", Type: "VENTA", Total: decPtr("100"), Status: "ISSUED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number:           "NC-2",
		Type:             "NOTA_CREDITO",
		Total:            decPtr("100"),
		RelatedInvoiceID: &sale.ID,
		AnnulInvoice:     boolPtr(false),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	untouched, err := svc.Get(ctx, companyID, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if untouched.Status != invoice.StatusIssued {
		t.Errorf("expected related invoice untouched ISSUED, got %s", untouched.Status)
	}
}

func TestCreate_CreditNoteRelatedMissing(t *testing.T) {
	svc := newTestService(testutil.NewFakeInvoiceRepository())

	_, err := svc.Create(context.Background(), companyID, CreateInvoiceRequest{
		Number:           "NC-3",
		Type:             "NOTA_CREDITO",
		Total:            decPtr("100"),
		RelatedInvoiceID: int64Ptr(999),
	})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_CreditNoteRestoresRelated(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sale, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-300", Type: "VENTA", Total: decPtr("100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "NC-10", Type: "NOTA_CREDITO", Total: decPtr("100"), RelatedInvoiceID: &sale.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(ctx, companyID, note.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored, err := svc.Get(ctx, companyID, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.Status != invoice.StatusPending {
		t.Errorf("expected related invoice restored to PENDING, got %s", restored.Status)
	}
}

func TestDelete_CreditNoteDoesNotOverwriteModifiedRelated(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	sale, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-301", Type: "VENTA", Total: decPtr("100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "NC-11", Type: "NOTA_CREDITO", Total: decPtr("100"), RelatedInvoiceID: &sale.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Someone moved the annulled invoice to ISSUED by hand. Deleting the
	// credit note must not clobber that.
	status := "ISSUED"
	if _, err := svc.Update(ctx, companyID, sale.ID, UpdateInvoiceRequest{Status: &status}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, companyID, note.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current, err := svc.Get(ctx, companyID, sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Status != invoice.StatusIssued {
		t.Errorf("expected independently modified invoice to stay ISSUED, got %s", current.Status)
	}
}

func TestRecordPayment_DerivesStatus(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-400", Type: "VENTA", Total: decPtr("100000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.PaymentStatus != invoice.PaymentPending {
		t.Fatalf("expected new invoice PENDING, got %s", inv.PaymentStatus)
	}

	_, after, err := svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec("40000")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != invoice.PaymentPartial || after.IsPaid {
		t.Errorf("after 40000/100000 expected PARTIAL/unpaid, got %s/%v", after.PaymentStatus, after.IsPaid)
	}

	_, after, err = svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec("60000")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != invoice.PaymentPaid || !after.IsPaid {
		t.Errorf("after 100000/100000 expected PAID, got %s/%v", after.PaymentStatus, after.IsPaid)
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-401", Type: "VENTA", Total: decPtr("100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, after, err := svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec("150")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != invoice.PaymentPaid || !after.IsPaid {
		t.Errorf("overpayment expected PAID, got %s/%v", after.PaymentStatus, after.IsPaid)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv := repo.Seed(invoice.Invoice{CompanyID: companyID, Number: "F-402", Type: invoice.TypeVenta, TotalAmount: dec("100")})

	for _, amount := range []string{"0", "-10"} {
		if _, _, err := svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec(amount)}); !errs.IsValidation(err) {
			t.Errorf("amount %s: expected validation error, got %v", amount, err)
		}
	}

	if _, _, err := svc.RecordPayment(ctx, companyID, 999, PaymentRequest{Amount: dec("10")}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("missing invoice: expected not found, got %v", err)
	}
}

func TestDeletePayment_RoundTrip(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-403", Type: "VENTA", Total: decPtr("100000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment, _, err := svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec("100000")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Recording then deleting the same payment leaves the invoice exactly
	// where it started.
	after, err := svc.DeletePayment(ctx, companyID, payment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != invoice.PaymentPending || after.IsPaid {
		t.Errorf("after round trip expected PENDING/unpaid, got %s/%v", after.PaymentStatus, after.IsPaid)
	}
}

func TestUpdate_TotalChangeRecomputesStatus(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, err := svc.Create(ctx, companyID, CreateInvoiceRequest{
		Number: "F-404", Type: "VENTA", Total: decPtr("100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.RecordPayment(ctx, companyID, inv.ID, PaymentRequest{Amount: dec("100")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Raising the total makes the fully paid invoice partial again.
	after, err := svc.Update(ctx, companyID, inv.ID, UpdateInvoiceRequest{Total: decPtr("200")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaymentStatus != invoice.PaymentPartial || after.IsPaid {
		t.Errorf("expected PARTIAL after raising total, got %s/%v", after.PaymentStatus, after.IsPaid)
	}
}

func TestUpdate_FolioConflict(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, companyID, CreateInvoiceRequest{Number: "F-500", Type: "VENTA", Total: decPtr("100")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(ctx, companyID, CreateInvoiceRequest{Number: "F-501", Type: "VENTA", Total: decPtr("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	number := "F-500"
	if _, err := svc.Update(ctx, companyID, second.ID, UpdateInvoiceRequest{Number: &number}); !errs.IsConflict(err) {
		t.Fatalf("expected conflict renaming to taken folio, got %v", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, err := svc.Create(ctx, companyID, CreateInvoiceRequest{Number: "F-600", Type: "VENTA", Total: decPtr("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	otherTenant := companyID + 1
	if _, err := svc.Get(ctx, otherTenant, inv.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("get: expected not found for other tenant, got %v", err)
	}
	if err := svc.Delete(ctx, otherTenant, inv.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("delete: expected not found for other tenant, got %v", err)
	}
	if _, _, err := svc.RecordPayment(ctx, otherTenant, inv.ID, PaymentRequest{Amount: dec("10")}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("payment: expected not found for other tenant, got %v", err)
	}
}
