package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

// where accumulates AND-ed conditions with positional placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) nextPH(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) eq(expr, v string) {
	if v != "" {
		w.conds = append(w.conds, expr+" = "+w.nextPH(v))
	}
}

func (w *where) between(expr string, from, to *time.Time) {
	if from != nil {
		w.conds = append(w.conds, "("+expr+")::timestamptz >= "+w.nextPH(*from))
	}
	if to != nil {
		w.conds = append(w.conds, "("+expr+")::timestamptz <= "+w.nextPH(*to))
	}
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func instructorWhere(f models.InstructorFilter) *where {
	w := &where{}
	w.eq("doc->>'status'", f.Status)
	w.eq("doc->>'email'", f.Email)
	return w
}

func classWhere(f models.ClassFilter) *where {
	w := &where{}
	w.eq("doc->>'dayOfWeek'", f.DayOfWeek)
	w.eq("doc->>'level'", f.Level)
	w.eq("doc->>'instructor'", f.Instructor)
	if f.Active != nil {
		w.conds = append(w.conds, "(doc->>'isActive')::boolean = "+w.nextPH(*f.Active))
	}
	return w
}

func customerWhere(f models.CustomerFilter) *where {
	w := &where{}
	w.eq("doc->>'status'", f.Status)
	w.eq("doc->>'email'", f.Email)
	return w
}

func packageWhere(f models.PackageFilter) *where {
	w := &where{}
	w.eq("doc->>'status'", f.Status)
	w.eq("doc->>'type'", f.Type)
	return w
}

func saleWhere(f models.SaleFilter) *where {
	w := &where{}
	w.eq("doc->>'customer'", f.Customer)
	w.eq("doc->>'package'", f.Package)
	w.eq("doc->>'status'", f.Status)
	w.between("doc->'paymentInfo'->>'paymentDate'", f.PaidFrom, f.PaidTo)
	return w
}

func attendanceWhere(f models.AttendanceFilter) *where {
	w := &where{}
	w.eq("doc->>'class'", f.Class)
	w.eq("doc->>'instructor'", f.Instructor)
	w.between("doc->>'actualDate'", f.From, f.To)
	return w
}

// activeSaleQuery takes $1 customer, $2 status and $3 the check-in time.
func activeSaleQuery(lock bool) string {
	q := `
		SELECT doc FROM ` + tblSales + `
		WHERE doc->>'customer' = $1
		  AND doc->>'status' = $2
		  AND (doc->'validityPeriod'->>'endDate')::timestamptz >= $3
		  AND (doc->'classBalance'->>'remainingClasses')::int > 0
		ORDER BY (doc->'validityPeriod'->>'endDate')::timestamptz, created_at
		LIMIT 1`
	if lock {
		q += ` FOR UPDATE`
	}
	return q
}

func migrations() []string {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + tblCounters + ` (
			kind TEXT PRIMARY KEY,
			seq  BIGINT NOT NULL
		)`,
	}
	for _, t := range []string{tblInstructors, tblClasses, tblCustomers, tblPackages, tblSales, tblAttendance} {
		stmts = append(stmts,
			`CREATE TABLE IF NOT EXISTS `+t+` (
				id         TEXT PRIMARY KEY,
				human_id   TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL,
				doc        JSONB NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS `+t+`_created_idx ON `+t+` (created_at)`,
		)
	}
	return append(stmts,
		`CREATE UNIQUE INDEX IF NOT EXISTS `+tblInstructors+`_email_idx ON `+tblInstructors+` ((doc->>'email'))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS `+tblCustomers+`_email_idx ON `+tblCustomers+` ((doc->>'email'))`,
		`CREATE INDEX IF NOT EXISTS `+tblSales+`_customer_idx ON `+tblSales+` ((doc->>'customer'), (doc->>'status'))`,
		`CREATE INDEX IF NOT EXISTS `+tblAttendance+`_class_idx ON `+tblAttendance+` ((doc->>'class'))`,
		`CREATE INDEX IF NOT EXISTS `+tblAttendance+`_instructor_idx ON `+tblAttendance+` ((doc->>'instructor'))`,
	)
}
