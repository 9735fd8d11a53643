package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

// Problem type codes. With a problem base URL they are appended to it,
// otherwise they become urn:yogitrack:problem:<code>.
const (
	problemNotFound      = "not-found"
	problemValidation    = "validation-error"
	problemInvalidStatus = "invalid-status"
	problemInvalidBody   = "invalid-body"
	problemTooMany       = "too-many-requests"
	problemInternal      = "internal-error"
)

// problem writes an RFC 7807 application/problem+json response. The msg,
// success and error members keep older clients working.
func (h *Handler) problem(c *fiber.Ctx, status int, code, msg string, extra fiber.Map) error {
	body := fiber.Map{
		"type":     h.problemType(code),
		"title":    msg,
		"status":   status,
		"instance": c.OriginalURL(),
		"msg":      msg,
		"success":  false,
		"error":    msg,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.Status(status)
	if err := c.JSON(body); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return nil
}

// writeError maps service errors onto HTTP responses.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var (
		nf *models.NotFoundError
		ve *models.ValidationError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &nf):
		return h.problem(c, fiber.StatusNotFound, problemNotFound, nf.Error(), nil)
	case errors.As(err, &ve):
		code := problemValidation
		extra := fiber.Map{}
		if ve.Field != "" {
			extra["field"] = ve.Field
		}
		if len(ve.Allowed) > 0 {
			extra["allowed"] = ve.Allowed
			if ve.Field == "status" {
				code = problemInvalidStatus
			}
		}
		return h.problem(c, fiber.StatusBadRequest, code, ve.Message, extra)
	case errors.As(err, &fe):
		code := problemInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = problemNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			code = problemInvalidBody
		case fiber.StatusTooManyRequests:
			code = problemTooMany
		}
		return h.problem(c, fe.Code, code, fe.Message, nil)
	}

	h.log.ErrorContext(c.UserContext(), "request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
	var extra fiber.Map
	if !h.production {
		extra = fiber.Map{"detail": err.Error()}
	}
	return h.problem(c, fiber.StatusInternalServerError, problemInternal, "Server Error", extra)
}

// ErrorHandler is installed as the Fiber error handler so errors returned by
// middleware and unmatched routes share the problem format.
func (h *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	return h.writeError(c, err)
}

// bind decodes the JSON body into v.
func (h *Handler) bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return nil
}

func jsonOK(c *fiber.Ctx, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return c.JSON(payload)
}

func created(c *fiber.Ctx, location string, v any) error {
	c.Location(location)
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *Handler) problemType(code string) string {
	base := h.problemBase
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return base + "/" + code
	}
	return "urn:yogitrack:problem:" + code
}
