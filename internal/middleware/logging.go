package middleware

import (
	"time"

	"go-product-bridge/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestIDHeader is shared by both services so a request can be followed across the hop.
const RequestIDHeader = fiber.HeaderXRequestID

// RequestID tags every request with an id, reusing an inbound X-Request-ID when present.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    RequestIDHeader,
		Generator: uuid.NewString,
	})
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

// RequestLogger puts a request-scoped logger on the user context and logs
// one line per completed request.
func RequestLogger(logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx := logg.WithFields(c.UserContext(), map[string]any{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": GetRequestID(c),
		})
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// Render the error now so the logged status is the one the client sees.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		status := c.Response().StatusCode()
		ctx = logg.WithFields(ctx, map[string]any{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if status >= fiber.StatusInternalServerError {
			logg.Warn(ctx, "request.complete")
		} else {
			logg.Info(ctx, "request.complete")
		}
		return err
	}
}
