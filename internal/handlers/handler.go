package handlers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

// Handler exposes the studio service over HTTP.
type Handler struct {
	svc         *service.Service
	log         *slog.Logger
	timeout     time.Duration
	production  bool
	problemBase string
}

type Option func(*Handler)

func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithTimeout bounds the store work of each request.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithProduction hides error details from 500 responses.
func WithProduction(on bool) Option {
	return func(h *Handler) { h.production = on }
}

// WithProblemBaseURL sets the base of the problem "type" URIs, e.g.
// https://yogitrack.example/problem.
func WithProblemBaseURL(base string) Option {
	return func(h *Handler) { h.problemBase = strings.TrimRight(strings.TrimSpace(base), "/") }
}

func New(svc *service.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, log: slog.Default(), timeout: defaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the dashboard and the /api routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Dashboard)

	api := app.Group("/api")
	api.Get("/health", h.Health)

	in := api.Group("/instructors")
	in.Get("/", h.ListInstructors)
	in.Post("/", h.CreateInstructor)
	in.Get("/:id", h.GetInstructor)
	in.Put("/:id", h.UpdateInstructor)
	in.Delete("/:id", h.DeleteInstructor)
	in.Patch("/:id/status", h.SetInstructorStatus)
	in.Get("/:id/classes", h.InstructorClasses)

	cl := api.Group("/classes")
	cl.Get("/", h.ListClasses)
	cl.Post("/", h.CreateClass)
	cl.Get("/schedule", h.Schedule)
	cl.Get("/:id", h.GetClass)
	cl.Put("/:id", h.UpdateClass)
	cl.Delete("/:id", h.DeleteClass)
	cl.Patch("/:id/status", h.SetClassStatus)
	cl.Patch("/:id/enrollment", h.UpdateEnrollment)

	cu := api.Group("/customers")
	cu.Get("/", h.ListCustomers)
	cu.Post("/", h.CreateCustomer)
	cu.Get("/:id", h.GetCustomer)
	cu.Put("/:id", h.UpdateCustomer)
	cu.Delete("/:id", h.DeleteCustomer)
	cu.Patch("/:id/status", h.SetCustomerStatus)

	pk := api.Group("/packages")
	pk.Get("/", h.ListPackages)
	pk.Post("/", h.CreatePackage)
	pk.Get("/:id", h.GetPackage)
	pk.Put("/:id", h.UpdatePackage)
	pk.Delete("/:id", h.DeletePackage)
	pk.Patch("/:id/status", h.SetPackageStatus)
	pk.Patch("/:id/sales", h.RecordPackageSales)

	sa := api.Group("/sales")
	sa.Get("/", h.ListSales)
	sa.Post("/", h.CreateSale)
	sa.Get("/customer/:id", h.CustomerSales)
	sa.Get("/package/:id", h.PackageSales)
	sa.Get("/:id", h.GetSale)
	sa.Put("/:id", h.UpdateSale)
	sa.Delete("/:id", h.DeleteSale)
	sa.Patch("/:id/status", h.SetSaleStatus)
	sa.Patch("/:id/classes", h.UseClasses)

	at := api.Group("/attendance")
	at.Get("/", h.ListAttendance)
	at.Post("/", h.CreateAttendance)
	at.Get("/instructor/:id", h.InstructorAttendance)
	at.Get("/instructor/:id/classes", h.InstructorClasses)
	at.Get("/class/:id", h.ClassAttendance)
	at.Get("/:id", h.GetAttendance)
	at.Put("/:id", h.UpdateAttendance)
	at.Delete("/:id", h.DeleteAttendance)
	at.Patch("/:id/status", h.SetAttendanceStatus)

	rp := api.Group("/reports")
	rp.Get("/package-sales", h.PackageSalesReport)
	rp.Get("/instructor-classes", h.InstructorClassesReport)
	rp.Get("/customer-packages", h.CustomerPackagesReport)
	rp.Get("/teacher-payments", h.TeacherPaymentsReport)
	rp.Get("/summary", h.SummaryReport)

	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
}

type statusInput struct {
	Status string `json:"status"`
}
