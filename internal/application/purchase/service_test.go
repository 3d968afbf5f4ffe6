package purchase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/core/purchase"
	"obrasoft/ms_gestion_core/internal/testutil"

	"github.com/shopspring/decimal"
)

const companyID int64 = 1

// fakeOrderRepo is an in-memory purchase.Repository. Reception marks the
// order RECIBIDA and counts the material linked lines it would feed into
// the stock ledger.
type fakeOrderRepo struct {
	nextID   int64
	orders   map[int64]purchase.Order
	received int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[int64]purchase.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, o purchase.Order) (*purchase.Order, error) {
	o.ID = f.nextID
	f.nextID++
	f.orders[o.ID] = o
	out := o
	return &out, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o purchase.Order) (*purchase.Order, error) {
	current, ok := f.orders[o.ID]
	if !ok || current.CompanyID != o.CompanyID {
		return nil, errs.ErrNotFound
	}
	o.Status = current.Status
	f.orders[o.ID] = o
	out := o
	return &out, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, companyID, id int64) error {
	current, ok := f.orders[id]
	if !ok || current.CompanyID != companyID {
		return errs.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, companyID, id int64) (*purchase.Order, error) {
	current, ok := f.orders[id]
	if !ok || current.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	out := current
	return &out, nil
}

func (f *fakeOrderRepo) List(_ context.Context, companyID int64, status purchase.Status, search string, limit, offset int) ([]purchase.Order, int, error) {
	var out []purchase.Order
	for _, o := range f.orders {
		if o.CompanyID != companyID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		if search != "" && !strings.Contains(o.Number, search) && !strings.Contains(o.Supplier, search) {
			continue
		}
		out = append(out, o)
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeOrderRepo) NumberExists(_ context.Context, companyID int64, number string) (bool, error) {
	for _, o := range f.orders {
		if o.CompanyID == companyID && o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderRepo) SetStatus(_ context.Context, companyID, id int64, status purchase.Status) (*purchase.Order, error) {
	current, ok := f.orders[id]
	if !ok || current.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	if status == purchase.StatusRecibida {
		if current.Status == purchase.StatusRecibida {
			return nil, errs.Conflict("la orden %s ya fue recibida", current.Number)
		}
		if current.Status == purchase.StatusCancelada {
			return nil, errs.Validation("no se puede recibir una orden cancelada")
		}
		for _, item := range current.Items {
			if item.MaterialID != nil {
				f.received++
			}
		}
	}
	current.Status = status
	f.orders[id] = current
	out := current
	return &out, nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func int64Ptr(v int64) *int64 { return &v }

func newTestService(repo *fakeOrderRepo) *Service {
	return NewService(repo, testutil.NewNullLogger())
}

func orderRequest(number string) OrderRequest {
	return OrderRequest{
		Number:   number,
		Supplier: "Ferretería El Puente",
		Items: []ItemRequest{
			{MaterialID: int64Ptr(10), Description: "Cemento gris 50kg", Quantity: dec("20"), UnitPrice: dec("7500")},
			{Description: "Flete", Quantity: dec("1"), UnitPrice: dec("30000")},
		},
	}
}

func TestCreate_StartsAsDraft(t *testing.T) {
	service := newTestService(newFakeOrderRepo())

	created, err := service.Create(context.Background(), companyID, orderRequest("OC-001"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != purchase.StatusBorrador {
		t.Errorf("status = %s, want %s", created.Status, purchase.StatusBorrador)
	}
	if want := dec("180000"); !created.TotalAmount.Equal(want) {
		t.Errorf("total = %s, want %s", created.TotalAmount, want)
	}
}

func TestCreate_DuplicateNumber(t *testing.T) {
	service := newTestService(newFakeOrderRepo())

	if _, err := service.Create(context.Background(), companyID, orderRequest("OC-001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := service.Create(context.Background(), companyID, orderRequest("OC-001"))
	if !errs.IsConflict(err) {
		t.Errorf("Create() error = %v, want conflict", err)
	}
}

func TestSetStatus_ReceptionFeedsInventory(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), companyID, orderRequest("OC-002"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := service.SetStatus(context.Background(), companyID, created.ID, "RECIBIDA")
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Status != purchase.StatusRecibida {
		t.Errorf("status = %s, want RECIBIDA", updated.Status)
	}
	if repo.received != 1 {
		t.Errorf("material entries = %d, want 1 (the unlinked line must not move stock)", repo.received)
	}
}

func TestSetStatus_DoubleReceptionRejected(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), companyID, orderRequest("OC-003"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := service.SetStatus(context.Background(), companyID, created.ID, "RECIBIDA"); err != nil {
		t.Fatalf("first reception error = %v", err)
	}

	_, err = service.SetStatus(context.Background(), companyID, created.ID, "RECIBIDA")
	if !errs.IsConflict(err) {
		t.Errorf("second reception error = %v, want conflict", err)
	}
	if repo.received != 1 {
		t.Errorf("material entries = %d, want 1 after rejected double reception", repo.received)
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	service := newTestService(newFakeOrderRepo())

	_, err := service.SetStatus(context.Background(), companyID, 1, "DESPACHADA")
	if !errs.IsValidation(err) {
		t.Errorf("SetStatus() error = %v, want validation", err)
	}
}

func TestUpdate_ReceivedOrderIsImmutable(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), companyID, orderRequest("OC-004"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := service.SetStatus(context.Background(), companyID, created.ID, "RECIBIDA"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	_, err = service.Update(context.Background(), companyID, created.ID, orderRequest("OC-004"))
	if !errs.IsValidation(err) {
		t.Errorf("Update() error = %v, want validation", err)
	}
	if err := service.Delete(context.Background(), companyID, created.ID); !errs.IsValidation(err) {
		t.Errorf("Delete() error = %v, want validation", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), companyID, orderRequest("OC-005"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = service.Get(context.Background(), companyID+1, created.ID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Get() from another tenant error = %v, want ErrNotFound", err)
	}
}
