package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/censo/censo/internal/platform/auth"
)

// AuditRecorder receives one entry per successful mutating request.
type AuditRecorder interface {
	Record(ctx context.Context, category, action, target, description, actor string) error
}

var auditActions = map[string]string{
	"POST":   "create",
	"PUT":    "update",
	"PATCH":  "update",
	"DELETE": "delete",
}

// Audit records successful mutating requests (POST/PUT/PATCH/DELETE) into the
// audit log, with the resource collection as category and the authenticated
// operator as actor. The census endpoints are skipped: the reconciliation
// engine writes its own richer entries.
func Audit(recorder AuditRecorder, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				return err
			}

			action, mutating := auditActions[c.Request().Method]
			if !mutating || c.Response().Status >= 400 {
				return nil
			}

			category, target := splitResourcePath(c.Path(), c.Param("id"))
			if category == "" || category == "census" {
				return nil
			}

			ctx := c.Request().Context()
			if recErr := recorder.Record(ctx, category, action, target, "", auth.UserNameFromContext(ctx)); recErr != nil {
				// The operation itself succeeded; log and move on.
				logger.Error().Err(recErr).
					Str("category", category).
					Str("action", action).
					Msg("failed to write audit entry")
			}
			return nil
		}
	}
}

// splitResourcePath extracts the resource collection from a route path like
// /api/v1/beds/:id.
func splitResourcePath(routePath, id string) (category, target string) {
	parts := strings.Split(strings.TrimPrefix(routePath, "/"), "/")
	for i, p := range parts {
		if p == "v1" && i+1 < len(parts) {
			return parts[i+1], id
		}
	}
	return "", id
}
