package invoice

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appinvoice "obrasoft/ms_gestion_core/internal/application/invoice"
	coreinvoice "obrasoft/ms_gestion_core/internal/core/invoice"
	ctxutil "obrasoft/ms_gestion_core/internal/infrastructure/context"
	"obrasoft/ms_gestion_core/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const testCompanyID int64 = 7

func newTestRouter(repo *testutil.FakeInvoiceRepository) *chi.Mux {
	log := testutil.NewNullLogger()
	handler := NewHandler(appinvoice.NewService(repo, nil, log), log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/invoices", handler.Create)
		r.Get("/invoices", handler.List)
		r.Get("/invoices/{id}", handler.Get)
		r.Put("/invoices/{id}", handler.Update)
		r.Delete("/invoices/{id}", handler.Delete)
		r.Post("/invoices/{id}/payments", handler.AddPayment)
		r.Get("/invoices/{id}/payments", handler.ListPayments)
		r.Delete("/payments/{id}", handler.DeletePayment)
		r.Patch("/invoices/{id}/payment", handler.RecomputePayment)
	})
	return r
}

func doRequest(router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	req := testutil.CreateRequest(method, path, body, nil)
	req = req.WithContext(ctxutil.WithCompanyID(req.Context(), testCompanyID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateInvoice_Created(t *testing.T) {
	router := newTestRouter(testutil.NewFakeInvoiceRepository())

	body := map[string]interface{}{
		"number": "F-1",
		"type":   "VENTA",
		"net":    84034,
		"iva":    15966,
	}
	w := doRequest(router, http.MethodPost, "/api/v1/invoices", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created coreinvoice.Invoice
	testutil.ReadJSONResponse(t, w, &created)
	if created.Number != "F-1" {
		t.Errorf("expected number F-1, got %s", created.Number)
	}
	if !created.TotalAmount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected total 100000, got %s", created.TotalAmount)
	}
	if created.PaymentStatus != coreinvoice.PaymentPending {
		t.Errorf("expected PENDING, got %s", created.PaymentStatus)
	}
}

func TestCreateInvoice_ValidationEnvelope(t *testing.T) {
	router := newTestRouter(testutil.NewFakeInvoiceRepository())

	w := doRequest(router, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"type":  "VENTA",
		"total": 100,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	response := testutil.ReadErrorResponse(t, w)
	if response["message"] != "Error de Validación" {
		t.Errorf("expected validation envelope, got %v", response["message"])
	}
}

func TestCreateInvoice_DuplicateFolioConflict(t *testing.T) {
	router := newTestRouter(testutil.NewFakeInvoiceRepository())

	body := map[string]interface{}{"number": "F-100", "type": "VENTA", "total": 1000}
	if w := doRequest(router, http.MethodPost, "/api/v1/invoices", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}

	w := doRequest(router, http.MethodPost, "/api/v1/invoices", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	response := testutil.ReadErrorResponse(t, w)
	if response["message"] != "Conflicto" {
		t.Errorf("expected conflict envelope, got %v", response["message"])
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	router := newTestRouter(testutil.NewFakeInvoiceRepository())

	w := doRequest(router, http.MethodGet, "/api/v1/invoices/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAddPayment_ReturnsUpdatedInvoice(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	router := newTestRouter(repo)

	inv := repo.Seed(coreinvoice.Invoice{
		CompanyID:   testCompanyID,
		Number:      "F-2",
		Type:        coreinvoice.TypeVenta,
		Status:      coreinvoice.StatusPending,
		TotalAmount: decimal.NewFromInt(100000),
	})

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/1/payments", map[string]interface{}{
		"amount": 40000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Invoice coreinvoice.Invoice `json:"invoice"`
		Payment coreinvoice.Payment `json:"payment"`
	}
	testutil.ReadJSONResponse(t, w, &response)
	if response.Invoice.ID != inv.ID {
		t.Errorf("expected invoice %d, got %d", inv.ID, response.Invoice.ID)
	}
	if response.Invoice.PaymentStatus != coreinvoice.PaymentPartial {
		t.Errorf("expected PARTIAL after partial payment, got %s", response.Invoice.PaymentStatus)
	}
	if !response.Payment.Amount.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected payment 40000, got %s", response.Payment.Amount)
	}
}

func TestAddPayment_NonPositiveRejected(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	router := newTestRouter(repo)
	repo.Seed(coreinvoice.Invoice{
		CompanyID:   testCompanyID,
		Number:      "F-3",
		Type:        coreinvoice.TypeVenta,
		TotalAmount: decimal.NewFromInt(100),
	})

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/1/payments", map[string]interface{}{
		"amount": 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecomputePayment_ReturnsDerivedStatus(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	router := newTestRouter(repo)
	repo.Seed(coreinvoice.Invoice{
		CompanyID:     testCompanyID,
		Number:        "F-7",
		Type:          coreinvoice.TypeVenta,
		TotalAmount:   decimal.NewFromInt(100),
		PaymentStatus: coreinvoice.PaymentPaid,
		IsPaid:        true,
	})

	w := doRequest(router, http.MethodPatch, "/api/v1/invoices/1/payment", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var inv coreinvoice.Invoice
	testutil.ReadJSONResponse(t, w, &inv)
	if inv.PaymentStatus != coreinvoice.PaymentPending {
		t.Errorf("expected PENDING after recompute with no payments, got %s", inv.PaymentStatus)
	}
	if inv.IsPaid {
		t.Error("expected isPaid false after recompute")
	}
}

func TestListInvoices_Envelope(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	router := newTestRouter(repo)
	repo.Seed(coreinvoice.Invoice{CompanyID: testCompanyID, Number: "F-4", Type: coreinvoice.TypeVenta})
	repo.Seed(coreinvoice.Invoice{CompanyID: testCompanyID + 1, Number: "F-5", Type: coreinvoice.TypeVenta})

	w := doRequest(router, http.MethodGet, "/api/v1/invoices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response struct {
		Data  []coreinvoice.Invoice `json:"data"`
		Total int                   `json:"total"`
	}
	testutil.ReadJSONResponse(t, w, &response)
	if response.Total != 1 || len(response.Data) != 1 {
		t.Errorf("expected exactly the tenant's invoice, got total=%d len=%d", response.Total, len(response.Data))
	}
}

func TestDeleteInvoice_NoContent(t *testing.T) {
	repo := testutil.NewFakeInvoiceRepository()
	router := newTestRouter(repo)
	repo.Seed(coreinvoice.Invoice{CompanyID: testCompanyID, Number: "F-6", Type: coreinvoice.TypeVenta})

	w := doRequest(router, http.MethodDelete, "/api/v1/invoices/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
