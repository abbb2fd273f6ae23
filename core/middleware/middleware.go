package middleware

import (
	"net/http"
	"strings"
	"time"

	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/core/utils"

	"github.com/labstack/echo/v4"
)

const ContextUserIDKey = "user_id"

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token and stores the user id on the
// echo context under ContextUserIDKey.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized,
					errors.NewAppError(errors.ErrMissingAuthorizationHeader, "missing authorization header", nil))
			}

			token := header
			if strings.HasPrefix(header, "Bearer ") {
				token = header[len("Bearer "):]
			}

			tokenData, appErr := utils.ValidateAndParseToken(token)
			if appErr != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, appErr)
			}

			c.Set(ContextUserIDKey, tokenData.UserID)
			return next(c)
		}
	}
}

// RequestLogger tags each request with a short id and logs method, path,
// status and latency.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)

			req := c.Request()
			logger.Info("HTTP:Request",
				"request_id", requestID,
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
