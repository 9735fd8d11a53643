package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
	"github.com/JarviousX/yogitrack-studio-management/internal/store/memory"
)

func newTestApp(t *testing.T, opts ...Option) *fiber.App {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(memory.New(),
		service.WithLogger(log),
		service.WithClock(func() time.Time { return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC) }),
	)
	h := New(svc, append([]Option{WithLogger(log)}, opts...)...)
	app := fiber.New(fiber.Config{ErrorHandler: h.ErrorHandler})
	h.Register(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func mustCreate[T any](t *testing.T, app *fiber.App, path string, body any) T {
	t.Helper()
	resp, data := do(t, app, http.MethodPost, path, body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("POST %s status = %d: %s", path, resp.StatusCode, data)
	}
	if !strings.HasPrefix(resp.Header.Get("Location"), path+"/") {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}
	return decode[T](t, data)
}

func TestNotFoundMessages(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		path string
		msg  string
	}{
		{"/api/instructors/nope", "Instructor not found"},
		{"/api/classes/nope", "Class not found"},
		{"/api/customers/nope", "Customer not found"},
		{"/api/packages/nope", "Package not found"},
		{"/api/sales/nope", "Sale not found"},
		{"/api/attendance/nope", "Attendance record not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, data := do(t, app, http.MethodGet, tt.path, nil)
			if resp.StatusCode != fiber.StatusNotFound {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := decode[map[string]any](t, data)
			if body["msg"] != tt.msg || body["type"] != "urn:yogitrack:problem:not-found" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestSaleStatusToggleRejectsUnlistedValue(t *testing.T) {
	app := newTestApp(t)
	cust := mustCreate[models.Customer](t, app, "/api/customers", map[string]any{
		"firstName": "Sam", "lastName": "Reed", "email": "sam@example.com",
	})
	pkg := mustCreate[models.Package](t, app, "/api/packages", map[string]any{
		"name": "Ten pack", "numberOfClasses": 10, "price": 100,
	})
	sale := mustCreate[models.Sale](t, app, "/api/sales", map[string]any{
		"customerId": cust.ID, "packageId": pkg.ID,
	})

	resp, data := do(t, app, http.MethodPatch, "/api/sales/"+sale.ID+"/status", map[string]any{"status": "pending"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var body struct {
		Field   string   `json:"field"`
		Allowed []string `json:"allowed"`
		Type    string   `json:"type"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if body.Field != "status" || !reflect.DeepEqual(body.Allowed, models.SaleStatuses) {
		t.Errorf("body = %+v", body)
	}
	if body.Type != "urn:yogitrack:problem:invalid-status" {
		t.Errorf("type = %q", body.Type)
	}

	resp, data = do(t, app, http.MethodPatch, "/api/sales/"+sale.ID+"/status", map[string]any{"status": "refunded"})
	if resp.StatusCode != fiber.StatusOK || decode[models.Sale](t, data).Status != models.SaleRefunded {
		t.Errorf("refund status = %d: %s", resp.StatusCode, data)
	}
}

func TestAttendanceLedgerOverHTTP(t *testing.T) {
	app := newTestApp(t)
	inst := mustCreate[models.Instructor](t, app, "/api/instructors", map[string]any{
		"firstName": "Maya", "lastName": "Lin", "email": "maya@example.com", "phone": "555-0100",
	})
	class := mustCreate[models.Class](t, app, "/api/classes", map[string]any{
		"className": "Morning Flow", "instructor": inst.ID, "dayOfWeek": "Monday",
		"startTime": "09:00", "endTime": "10:00",
	})
	cust := mustCreate[models.Customer](t, app, "/api/customers", map[string]any{
		"firstName": "Sam", "lastName": "Reed", "email": "sam@example.com", "balance": 5,
	})

	// no active sale: balance drops to 4 and no package is recorded
	rec := mustCreate[models.Attendance](t, app, "/api/attendance", map[string]any{
		"classId": class.ID, "instructorId": inst.ID, "actualDate": "2025-03-03", "actualTime": "09:00",
		"attendees": []map[string]any{{"customerId": cust.ID}},
	})
	if len(rec.Attendees) != 1 || rec.Attendees[0].ClassBalanceAfter != 4 || rec.Attendees[0].PackageDetails != nil {
		t.Fatalf("attendees = %+v", rec.Attendees)
	}

	resp, data := do(t, app, http.MethodDelete, "/api/attendance/"+rec.ID, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete status = %d: %s", resp.StatusCode, data)
	}
	if body := decode[map[string]any](t, data); body["success"] != true {
		t.Errorf("delete body = %v", body)
	}
	_, data = do(t, app, http.MethodGet, "/api/customers/"+cust.ID, nil)
	if got := decode[models.Customer](t, data).Balance; got != 5 {
		t.Errorf("balance after delete = %d, want 5", got)
	}

	_, data = do(t, app, http.MethodGet, "/api/attendance/instructor/"+inst.ID+"/classes", nil)
	if classes := decode[[]models.Class](t, data); len(classes) != 1 || classes[0].ID != class.ID {
		t.Errorf("instructor classes = %+v", classes)
	}
}

func TestValidationAndBodyErrors(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"missing required", http.MethodPost, "/api/customers", `{"lastName":"Reed","email":"a@example.com"}`, 400, "firstName"},
		{"malformed json", http.MethodPost, "/api/customers", `{"firstName":`, 400, ""},
		{"bad date range", http.MethodGet, "/api/reports/summary?startDate=2025-03-10&endDate=2025-03-01", "", 400, "endDate"},
		{"bad month", http.MethodGet, "/api/reports/teacher-payments?month=abc", "", 400, "month"},
		{"unknown route", http.MethodGet, "/api/rooms", "", 404, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r io.Reader
			if tt.body != "" {
				r = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, r)
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			data, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			body := decode[map[string]any](t, data)
			if body["success"] != false {
				t.Errorf("success = %v", body["success"])
			}
			if tt.field != "" && body["field"] != tt.field {
				t.Errorf("field = %v, want %q", body["field"], tt.field)
			}
		})
	}
}

func TestReportsAndHealth(t *testing.T) {
	app := newTestApp(t)
	paths := []string{
		"/api/health",
		"/api/reports/package-sales?startDate=2025-03-01&endDate=2025-03-31",
		"/api/reports/instructor-classes",
		"/api/reports/customer-packages?status=active",
		"/api/reports/teacher-payments?year=2025&month=3",
		"/api/reports/summary",
		"/api/classes/schedule",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			resp, data := do(t, app, http.MethodGet, p, nil)
			if resp.StatusCode != fiber.StatusOK {
				t.Errorf("status = %d: %s", resp.StatusCode, data)
			}
		})
	}
}

func TestProblemBaseURL(t *testing.T) {
	app := newTestApp(t, WithProblemBaseURL("https://yogitrack.example/problem/"))
	_, data := do(t, app, http.MethodGet, "/api/sales/nope", nil)
	if body := decode[map[string]any](t, data); body["type"] != "https://yogitrack.example/problem/not-found" {
		t.Errorf("type = %v", body["type"])
	}
}
