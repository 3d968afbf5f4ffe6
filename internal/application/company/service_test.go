package company

import (
	"context"
	"strings"
	"testing"

	"obrasoft/ms_gestion_core/internal/core/company"
	"obrasoft/ms_gestion_core/internal/core/errs"
	"obrasoft/ms_gestion_core/internal/testutil"
)

const companyID int64 = 1

type fakeCompanyRepo struct {
	nextCompanyID int64
	nextUserID    int64
	companies     map[int64]company.Company
	users         map[int64]company.User
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		nextCompanyID: 1,
		nextUserID:    1,
		companies:     make(map[int64]company.Company),
		users:         make(map[int64]company.User),
	}
}

func (f *fakeCompanyRepo) CreateCompany(_ context.Context, c company.Company) (*company.Company, error) {
	c.ID = f.nextCompanyID
	f.nextCompanyID++
	f.companies[c.ID] = c
	out := c
	return &out, nil
}

func (f *fakeCompanyRepo) UpdateCompany(_ context.Context, c company.Company) (*company.Company, error) {
	if _, ok := f.companies[c.ID]; !ok {
		return nil, errs.ErrNotFound
	}
	f.companies[c.ID] = c
	out := c
	return &out, nil
}

func (f *fakeCompanyRepo) FindCompanyByID(_ context.Context, id int64) (*company.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := c
	return &out, nil
}

func (f *fakeCompanyRepo) CompanyRUTExists(_ context.Context, rut string) (bool, error) {
	for _, c := range f.companies {
		if c.RUT == rut {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCompanyRepo) CreateUser(_ context.Context, u company.User) (*company.User, error) {
	u.ID = f.nextUserID
	f.nextUserID++
	f.users[u.ID] = u
	out := u
	return &out, nil
}

func (f *fakeCompanyRepo) UpdateUser(_ context.Context, u company.User) (*company.User, error) {
	current, ok := f.users[u.ID]
	if !ok || current.CompanyID != u.CompanyID {
		return nil, errs.ErrNotFound
	}
	f.users[u.ID] = u
	out := u
	return &out, nil
}

func (f *fakeCompanyRepo) DeleteUser(_ context.Context, companyID, id int64) error {
	current, ok := f.users[id]
	if !ok || current.CompanyID != companyID {
		return errs.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeCompanyRepo) FindUserByID(_ context.Context, companyID, id int64) (*company.User, error) {
	current, ok := f.users[id]
	if !ok || current.CompanyID != companyID {
		return nil, errs.ErrNotFound
	}
	out := current
	return &out, nil
}

func (f *fakeCompanyRepo) FindUserByEmail(_ context.Context, companyID int64, email string) (*company.User, error) {
	for _, u := range f.users {
		if u.CompanyID == companyID && strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCompanyRepo) ListUsers(_ context.Context, companyID int64) ([]company.User, error) {
	var out []company.User
	for _, u := range f.users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService(repo *fakeCompanyRepo) *Service {
	return NewService(repo, testutil.NewNullLogger())
}

func boolPtr(v bool) *bool { return &v }

func TestCreateUser_HashesPassword(t *testing.T) {
	repo := newFakeCompanyRepo()
	service := newTestService(repo)

	created, err := service.CreateUser(context.Background(), companyID, UserRequest{
		Email:    "maestro@obrasoft.cl",
		FullName: "Pedro Soto",
		Password: "hormigon-h30",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if created.PasswordHash == "hormigon-h30" {
		t.Error("password stored in clear")
	}
	if !strings.HasPrefix(created.PasswordHash, "$2") {
		t.Errorf("hash = %q, want bcrypt digest", created.PasswordHash)
	}
	if created.Role != company.RoleOperador {
		t.Errorf("role = %s, want default %s", created.Role, company.RoleOperador)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	service := newTestService(newFakeCompanyRepo())

	tests := []struct {
		name string
		req  UserRequest
	}{
		{"bad email", UserRequest{Email: "no-es-correo", FullName: "Ana", Password: "12345678"}},
		{"missing name", UserRequest{Email: "ana@obrasoft.cl", Password: "12345678"}},
		{"short password", UserRequest{Email: "ana@obrasoft.cl", FullName: "Ana", Password: "corta"}},
		{"unknown role", UserRequest{Email: "ana@obrasoft.cl", FullName: "Ana", Password: "12345678", Role: "GERENTE_GALAXIA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.CreateUser(context.Background(), companyID, tt.req); !errs.IsValidation(err) {
				t.Errorf("CreateUser() error = %v, want validation", err)
			}
		})
	}
}

func TestVerifyCredentials(t *testing.T) {
	repo := newFakeCompanyRepo()
	service := newTestService(repo)

	created, err := service.CreateUser(context.Background(), companyID, UserRequest{
		Email:    "jefa@obrasoft.cl",
		FullName: "Carla Núñez",
		Password: "terreno-2024",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	user, err := service.VerifyCredentials(context.Background(), companyID, "jefa@obrasoft.cl", "terreno-2024")
	if err != nil {
		t.Fatalf("VerifyCredentials() error = %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("user ID = %d, want %d", user.ID, created.ID)
	}

	if _, err := service.VerifyCredentials(context.Background(), companyID, "jefa@obrasoft.cl", "otra-clave"); !errs.IsValidation(err) {
		t.Errorf("wrong password error = %v, want validation", err)
	}
	if _, err := service.VerifyCredentials(context.Background(), companyID+1, "jefa@obrasoft.cl", "terreno-2024"); !errs.IsValidation(err) {
		t.Errorf("wrong tenant error = %v, want validation", err)
	}
}

func TestVerifyCredentials_InactiveAccount(t *testing.T) {
	repo := newFakeCompanyRepo()
	service := newTestService(repo)

	created, err := service.CreateUser(context.Background(), companyID, UserRequest{
		Email:    "ex@obrasoft.cl",
		FullName: "Luis Rojas",
		Password: "adios-obra-1",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := service.UpdateUser(context.Background(), companyID, created.ID, UserRequest{
		Email:    created.Email,
		FullName: created.FullName,
		Active:   boolPtr(false),
	}); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if _, err := service.VerifyCredentials(context.Background(), companyID, "ex@obrasoft.cl", "adios-obra-1"); !errs.IsValidation(err) {
		t.Errorf("inactive account error = %v, want validation", err)
	}
}

func TestCreateCompany_DuplicateRUT(t *testing.T) {
	service := newTestService(newFakeCompanyRepo())

	req := CompanyRequest{Name: "Constructora Andes", RUT: "76.123.456-7"}
	if _, err := service.CreateCompany(context.Background(), req); err != nil {
		t.Fatalf("CreateCompany() error = %v", err)
	}
	if _, err := service.CreateCompany(context.Background(), req); !errs.IsConflict(err) {
		t.Errorf("duplicate RUT error = %v, want conflict", err)
	}
}
