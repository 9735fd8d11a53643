package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

// Service implements the studio operations on top of a store.Store. Every
// operation that touches more than one document runs in a single transaction.
type Service struct {
	store    store.Store
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Service.
func New(s store.Store, opts ...Option) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	svc := &Service{
		store:    s,
		logger:   slog.Default(),
		validate: v,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// check runs struct validation and reports the first failure as a
// *models.ValidationError named after the JSON field.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	fe := ves[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "email":
		msg = field + " must be a valid email address"
	case "min", "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		msg = field + " is invalid"
	}
	return &models.ValidationError{Field: field, Message: msg}
}

func (s *Service) nextID(ctx context.Context, tx store.Store, kind string) (string, error) {
	n, err := tx.NextSequence(ctx, kind)
	if err != nil {
		return "", err
	}
	return models.FormatID(kind, n), nil
}

// floor returns max(min, v). A clamp that changes the value is ledger drift:
// it is logged and counted, never returned as an error.
func (s *Service) floor(ctx context.Context, op, field string, v, min int, attrs ...any) int {
	if v >= min {
		return v
	}
	s.drift(ctx, op, field, append([]any{slog.Int("value", v), slog.Int("clamped_to", min)}, attrs...)...)
	return min
}

// ceil returns min(max, v) with the same drift reporting as floor.
func (s *Service) ceil(ctx context.Context, op, field string, v, max int, attrs ...any) int {
	if v <= max {
		return v
	}
	s.drift(ctx, op, field, append([]any{slog.Int("value", v), slog.Int("clamped_to", max)}, attrs...)...)
	return max
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, models.Invalid(field, "%s must be a date (YYYY-MM-DD or RFC 3339)", field)
}

// optionalDate parses v when set and returns def otherwise.
func optionalDate(field string, v *string, def time.Time) (time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def, nil
	}
	return parseDate(field, *v)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
