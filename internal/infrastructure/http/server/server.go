// Package server assembles the chi router, the middleware chain and the
// HTTP listener lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	adminhttp "obrasoft/ms_gestion_core/internal/adapters/http/admin"
	clienthttp "obrasoft/ms_gestion_core/internal/adapters/http/client"
	companyhttp "obrasoft/ms_gestion_core/internal/adapters/http/company"
	costcenterhttp "obrasoft/ms_gestion_core/internal/adapters/http/costcenter"
	dashboardhttp "obrasoft/ms_gestion_core/internal/adapters/http/dashboard"
	documenthttp "obrasoft/ms_gestion_core/internal/adapters/http/document"
	healthhttp "obrasoft/ms_gestion_core/internal/adapters/http/health"
	inventoryhttp "obrasoft/ms_gestion_core/internal/adapters/http/inventory"
	invoicehttp "obrasoft/ms_gestion_core/internal/adapters/http/invoice"
	projecthttp "obrasoft/ms_gestion_core/internal/adapters/http/project"
	purchasehttp "obrasoft/ms_gestion_core/internal/adapters/http/purchase"
	workforcehttp "obrasoft/ms_gestion_core/internal/adapters/http/workforce"
	"obrasoft/ms_gestion_core/internal/infrastructure/config"
	"obrasoft/ms_gestion_core/internal/infrastructure/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every HTTP adapter the router mounts. Admin is optional;
// the backup endpoint responds 503 when not configured.
type Handlers struct {
	Health     *healthhttp.Handler
	Invoice    *invoicehttp.Handler
	Client     *clienthttp.Handler
	Project    *projecthttp.Handler
	CostCenter *costcenterhttp.Handler
	Workforce  *workforcehttp.Handler
	Inventory  *inventoryhttp.Handler
	Purchase   *purchasehttp.Handler
	Document   *documenthttp.Handler
	Company    *companyhttp.Handler
	Dashboard  *dashboardhttp.Handler
	Admin      *adminhttp.Handler
}

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	log        *slog.Logger
	httpServer *http.Server
	shutdown   config.HTTPSettings
	auth       *middleware.JWTAuthenticator
}

// Options are the construction inputs.
type Options struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Handlers Handlers
}

// tenantBypassPaths are exempt from the X-Company-ID requirement: the
// health probe and the tenant bootstrap endpoint.
var tenantBypassPaths = []string{
	"/health",
	"/api/v1/companies",
}

// New builds the router and the listener. When auth is enabled the JWKS
// authenticator guards every route except its configured bypass paths.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	h := opts.Handlers
	if h.Health == nil || h.Invoice == nil {
		return nil, errors.New("handlers are incomplete")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))

	var auth *middleware.JWTAuthenticator
	if opts.Config.Auth.Enabled {
		var err error
		auth, err = middleware.NewJWTAuthenticator(opts.Config.Auth, opts.Logger)
		if err != nil {
			return nil, err
		}
		r.Use(auth.Middleware)
	}

	tenant := middleware.NewTenantResolver(opts.Logger, tenantBypassPaths)
	r.Use(tenant.Middleware)

	r.Get("/health", h.Health.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", h.Invoice.Create)
			r.Get("/", h.Invoice.List)
			r.Get("/{id}", h.Invoice.Get)
			r.Put("/{id}", h.Invoice.Update)
			r.Delete("/{id}", h.Invoice.Delete)
			r.Post("/{id}/payments", h.Invoice.AddPayment)
			r.Get("/{id}/payments", h.Invoice.ListPayments)
			r.Patch("/{id}/payment", h.Invoice.RecomputePayment)
		})
		r.Delete("/payments/{id}", h.Invoice.DeletePayment)

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.Client.Create)
			r.Get("/", h.Client.List)
			r.Get("/{id}", h.Client.Get)
			r.Put("/{id}", h.Client.Update)
			r.Delete("/{id}", h.Client.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.Project.Create)
			r.Get("/", h.Project.List)
			r.Get("/{id}", h.Project.Get)
			r.Put("/{id}", h.Project.Update)
			r.Delete("/{id}", h.Project.Delete)
		})

		r.Route("/cost-centers", func(r chi.Router) {
			r.Post("/", h.CostCenter.Create)
			r.Get("/", h.CostCenter.List)
			r.Get("/{id}", h.CostCenter.Get)
			r.Put("/{id}", h.CostCenter.Update)
			r.Delete("/{id}", h.CostCenter.Delete)
			r.Post("/{id}/expenses", h.CostCenter.AddExpense)
			r.Get("/{id}/expenses", h.CostCenter.ListExpenses)
		})
		r.Delete("/expenses/{id}", h.CostCenter.DeleteExpense)

		r.Route("/workers", func(r chi.Router) {
			r.Post("/", h.Workforce.CreateWorker)
			r.Get("/", h.Workforce.ListWorkers)
			r.Get("/{id}", h.Workforce.GetWorker)
			r.Put("/{id}", h.Workforce.UpdateWorker)
			r.Delete("/{id}", h.Workforce.DeleteWorker)
		})

		r.Route("/crews", func(r chi.Router) {
			r.Post("/", h.Workforce.CreateCrew)
			r.Get("/", h.Workforce.ListCrews)
			r.Get("/{id}", h.Workforce.GetCrew)
			r.Put("/{id}", h.Workforce.UpdateCrew)
			r.Delete("/{id}", h.Workforce.DeleteCrew)
		})

		r.Route("/materials", func(r chi.Router) {
			r.Post("/", h.Inventory.CreateMaterial)
			r.Get("/", h.Inventory.ListMaterials)
			r.Get("/{id}", h.Inventory.GetMaterial)
			r.Put("/{id}", h.Inventory.UpdateMaterial)
			r.Delete("/{id}", h.Inventory.DeleteMaterial)
		})

		r.Route("/inventory/movements", func(r chi.Router) {
			r.Post("/", h.Inventory.RecordMovement)
			r.Get("/", h.Inventory.ListMovements)
			r.Delete("/{id}", h.Inventory.DeleteMovement)
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", h.Purchase.Create)
			r.Get("/", h.Purchase.List)
			r.Get("/{id}", h.Purchase.Get)
			r.Put("/{id}", h.Purchase.Update)
			r.Delete("/{id}", h.Purchase.Delete)
			r.Put("/{id}/status", h.Purchase.SetStatus)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", h.Document.Upload)
			r.Get("/", h.Document.List)
			r.Get("/{id}", h.Document.Get)
			r.Delete("/{id}", h.Document.Delete)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", h.Company.CreateCompany)
			r.Get("/{id}", h.Company.GetCompany)
			r.Put("/{id}", h.Company.UpdateCompany)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Company.CreateUser)
			r.Get("/", h.Company.ListUsers)
			r.Get("/{id}", h.Company.GetUser)
			r.Put("/{id}", h.Company.UpdateUser)
			r.Delete("/{id}", h.Company.DeleteUser)
		})
		r.Post("/login", h.Company.Login)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", h.Dashboard.Summary)
			r.Get("/sales", h.Dashboard.MonthlySales)
			r.Get("/payment-status", h.Dashboard.PaymentStatus)
			r.Get("/projects", h.Dashboard.TopProjects)
			r.Get("/cost-centers", h.Dashboard.CostCenterSpend)
		})

		if h.Admin != nil {
			r.Post("/admin/backup", h.Admin.TriggerBackup)
		}
	})

	srv := &http.Server{
		Addr:         opts.Config.HTTP.Address(),
		Handler:      r,
		ReadTimeout:  opts.Config.HTTP.ReadTimeout,
		WriteTimeout: opts.Config.HTTP.WriteTimeout,
		IdleTimeout:  opts.Config.HTTP.IdleTimeout,
	}

	return &Server{
		log:        opts.Logger,
		httpServer: srv,
		shutdown:   opts.Config.HTTP,
		auth:       auth,
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown.ShutdownTimeout)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.log.Info("HTTP server stopped")
		return err
	case err := <-errCh:
		return err
	}
}

// Close releases resources held by the middleware chain.
func (s *Server) Close() {
	if s.auth != nil {
		s.auth.Close()
	}
}
