package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crtormo/resicentral/internal/platform/auth"
)

// AccessEntry captures who accessed what, when, from where, and the action
// type. Clinical content access (algorithm views, calculator runs) is logged
// per request.
type AccessEntry struct {
	UserID     string
	UserRoles  []string
	Resource   string // algorithms, calculators
	ResourceID string
	Action     string // read, create, delete, search, calculate
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	StatusCode int
	Timestamp  time.Time
	RequestID  string
}

// AccessRecorder receives access entries. Implementations must be safe for
// concurrent use.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error {
	return f(entry)
}

// AccessLog returns middleware that logs every /api/v1 access with the
// authenticated user, the resource touched and the action performed. When a
// recorder is provided the entry is also handed to it; recorder failures are
// logged and never fail the request.
func AccessLog(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			entry := AccessEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRoles = auth.RolesFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.Resource, entry.ResourceID = splitResource(path)
			entry.Action = accessAction(req.Method, entry.Resource, path)

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record access entry")
				}
			}

			logger.Info().
				Str("type", "access_log").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Int("status", entry.StatusCode).
				Str("ip", entry.IPAddress).
				Msg("resource access")

			return err
		}
	}
}

// splitResource extracts the resource name and, when present, the resource id
// from an /api/v1 path.
func splitResource(path string) (resource, id string) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}
	resource = parts[0]
	if len(parts) > 1 && parts[1] != "" {
		id = parts[1]
	}
	return resource, id
}

func accessAction(method, resource, path string) string {
	switch method {
	case "GET":
		if strings.HasSuffix(path, "/search") {
			return "search"
		}
		return "read"
	case "POST":
		if resource == "calculators" {
			return "calculate"
		}
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	}
	return strings.ToLower(method)
}
