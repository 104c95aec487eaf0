package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// errorStatus resolves the status for an error that escaped a handler.
func errorStatus(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

// storeErrorHandler renders unhandled errors in the store's {ok, msg} envelope.
func storeErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := errorStatus(err)
	return c.Status(code).JSON(fiber.Map{"ok": false, "msg": msg})
}

// proxyErrorHandler renders unhandled errors in the proxy's {success, message} envelope.
func proxyErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := errorStatus(err)
	return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
}
