package errorhandler

import (
	"net/http"

	"github.com/channelmesh/pathfinder/common/errs"
	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(statusFromError(err)).JSON(map[string]any{
				"error": e.Message(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(map[string]any{
			"error": "Internal Server Error",
		}))
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, errs.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.Conflict):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
