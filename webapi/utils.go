package webapi

import (
	"errors"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/gofiber/fiber/v2"
)

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs. It is used
// for transport-level failures; business rejections use the envelope the
// withdraw endpoint caches for replay.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// ErrorResponseJSON writes an RFC 9457 problem response.
func ErrorResponseJSON(
	c *fiber.Ctx,
	status int,
	title string,
	detail any,
) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// ErrorToCode maps validation and business errors raised while building a
// withdrawal request to a stable error code and HTTP status. Clients branch
// on the code, never on the message.
func ErrorToCode(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrSchedulePast):
		return "SCHEDULE_PAST", fiber.StatusBadRequest
	case errors.Is(err, domain.ErrScheduleTooFar):
		return "SCHEDULE_TOO_FAR", fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedPixType),
		errors.Is(err, domain.ErrInvalidPixEmail),
		errors.Is(err, domain.ErrInvalidPixPhone),
		errors.Is(err, domain.ErrInvalidPixRandomKey),
		errors.Is(err, money.ErrAmountNotPositive),
		errors.Is(err, money.ErrTooManyDecimals):
		return "INVALID_ARGUMENT", fiber.StatusBadRequest
	default:
		return "INVALID_ARGUMENT", fiber.StatusBadRequest
	}
}
