package apiv1

import "github.com/gofiber/fiber/v2"

// Envelope is the uniform response wrapper for every API endpoint.
type Envelope struct {
	StatusCode string      `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// Status codes carried in the envelope. Clients treat anything other than
// StatusSuccess as a failure and surface Message.
const (
	StatusSuccess      = "10000"
	StatusBadRequest   = "40000"
	StatusUnauthorized = "40100"
	StatusForbidden    = "40300"
	StatusNotFound     = "40400"
	StatusInternal     = "50000"
)

// Success writes a 200 envelope with the success sentinel.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		StatusCode: StatusSuccess,
		Message:    message,
		Data:       data,
	})
}

// Error writes a failure envelope. The HTTP status mirrors the code class.
func Error(c *fiber.Ctx, code string, message string) error {
	return c.Status(httpStatusFor(code)).JSON(Envelope{
		StatusCode: code,
		Message:    message,
	})
}

func httpStatusFor(code string) int {
	switch code {
	case StatusBadRequest:
		return fiber.StatusBadRequest
	case StatusUnauthorized:
		return fiber.StatusUnauthorized
	case StatusForbidden:
		return fiber.StatusForbidden
	case StatusNotFound:
		return fiber.StatusNotFound
	case StatusInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusOK
	}
}
