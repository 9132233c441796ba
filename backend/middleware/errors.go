package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"lmsconsole/backend/access"
	"lmsconsole/backend/curriculum"
	"lmsconsole/backend/progress"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

// ErrorHandler maps domain errors to the API's error envelope.
func ErrorHandler(logger *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fields, ok := utils.FieldErrors(err); ok {
			return utils.ValidationErrorResponse(c, fields)
		}

		var fe *fiber.Error
		var locked *access.LockedError
		switch {
		case errors.As(err, &locked):
			return utils.Error(c, fiber.StatusForbidden, err, locked.Decision)
		case errors.Is(err, access.ErrLessonLocked):
			return utils.Error(c, fiber.StatusForbidden, err)
		case errors.Is(err, store.ErrNotFound):
			return utils.Error(c, fiber.StatusNotFound, err)
		case errors.Is(err, curriculum.ErrPartialReorder):
			return utils.Error(c, fiber.StatusConflict, errors.New("reorder was only partly applied, reload the list"))
		case errors.Is(err, progress.ErrAttemptsExhausted):
			return utils.Error(c, fiber.StatusConflict, err)
		case errors.As(err, &fe):
			return utils.Error(c, fe.Code, fe)
		}

		logger.Error("request failed", err)
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("internal server error"))
	}
}
