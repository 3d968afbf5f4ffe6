package dashboard

import (
	"context"
	"testing"

	"obrasoft/ms_gestion_core/internal/core/dashboard"
)

type recordingRepo struct {
	months int
	limit  int
}

func (r *recordingRepo) Summary(ctx context.Context, companyID int64) (*dashboard.Summary, error) {
	return &dashboard.Summary{}, nil
}

func (r *recordingRepo) MonthlySales(ctx context.Context, companyID int64, months int) ([]dashboard.MonthlyTotal, error) {
	r.months = months
	return nil, nil
}

func (r *recordingRepo) InvoicesByPaymentStatus(ctx context.Context, companyID int64) ([]dashboard.StatusCount, error) {
	return nil, nil
}

func (r *recordingRepo) TopProjects(ctx context.Context, companyID int64, limit int) ([]dashboard.ProjectTotal, error) {
	r.limit = limit
	return nil, nil
}

func (r *recordingRepo) CostCenterSpend(ctx context.Context, companyID int64) ([]dashboard.CostCenterSpend, error) {
	return nil, nil
}

func TestMonthlySales_ClampsMonths(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"default", 0, 12},
		{"negative", -4, 12},
		{"in range", 6, 6},
		{"above max", 120, 36},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &recordingRepo{}
			svc := NewService(repo, nil)
			if _, err := svc.MonthlySales(context.Background(), 1, tc.in); err != nil {
				t.Fatalf("MonthlySales: %v", err)
			}
			if repo.months != tc.want {
				t.Errorf("months = %d, want %d", repo.months, tc.want)
			}
		})
	}
}

func TestTopProjects_ClampsLimit(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"default", 0, 5},
		{"in range", 10, 10},
		{"above max", 500, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &recordingRepo{}
			svc := NewService(repo, nil)
			if _, err := svc.TopProjects(context.Background(), 1, tc.in); err != nil {
				t.Fatalf("TopProjects: %v", err)
			}
			if repo.limit != tc.want {
				t.Errorf("limit = %d, want %d", repo.limit, tc.want)
			}
		})
	}
}
