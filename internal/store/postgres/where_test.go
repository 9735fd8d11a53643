package postgres

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

func TestWhereBuilders(t *testing.T) {
	active := true
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		w        *where
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty filter",
			w:       customerWhere(models.CustomerFilter{}),
			wantSQL: "",
		},
		{
			name:     "customer status",
			w:        customerWhere(models.CustomerFilter{Status: "active"}),
			wantSQL:  " WHERE doc->>'status' = $1",
			wantArgs: []any{"active"},
		},
		{
			name:     "class filters keep placeholder order",
			w:        classWhere(models.ClassFilter{DayOfWeek: "Monday", Instructor: "i1", Active: &active}),
			wantSQL:  " WHERE doc->>'dayOfWeek' = $1 AND doc->>'instructor' = $2 AND (doc->>'isActive')::boolean = $3",
			wantArgs: []any{"Monday", "i1", true},
		},
		{
			name:     "sale payment range",
			w:        saleWhere(models.SaleFilter{Customer: "c1", PaidFrom: &from, PaidTo: &to}),
			wantSQL:  " WHERE doc->>'customer' = $1 AND (doc->'paymentInfo'->>'paymentDate')::timestamptz >= $2 AND (doc->'paymentInfo'->>'paymentDate')::timestamptz <= $3",
			wantArgs: []any{"c1", from, to},
		},
		{
			name:     "attendance open-ended range",
			w:        attendanceWhere(models.AttendanceFilter{Instructor: "i9", From: &from}),
			wantSQL:  " WHERE doc->>'instructor' = $1 AND (doc->>'actualDate')::timestamptz >= $2",
			wantArgs: []any{"i9", from},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.sql(); got != tt.wantSQL {
				t.Errorf("sql() = %q, want %q", got, tt.wantSQL)
			}
			if len(tt.wantArgs) == 0 && len(tt.w.args) == 0 {
				return
			}
			if !reflect.DeepEqual(tt.w.args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", tt.w.args, tt.wantArgs)
			}
		})
	}
}

func TestActiveSaleQueryLocksOnlyInTx(t *testing.T) {
	if strings.Contains(activeSaleQuery(false), "FOR UPDATE") {
		t.Error("query outside a transaction should not lock")
	}
	if !strings.HasSuffix(activeSaleQuery(true), "FOR UPDATE") {
		t.Error("query inside a transaction should lock the sale row")
	}
}

func TestMigrationsCoverEveryTable(t *testing.T) {
	all := strings.Join(migrations(), "\n")
	for _, tbl := range []string{tblInstructors, tblClasses, tblCustomers, tblPackages, tblSales, tblAttendance, tblCounters} {
		if !strings.Contains(all, "CREATE TABLE IF NOT EXISTS "+tbl+" ") {
			t.Errorf("no CREATE TABLE for %s", tbl)
		}
	}
}
