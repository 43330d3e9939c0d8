package api

import (
	"github.com/gofiber/fiber/v2"
)

// ApiError represents a structured API error
type ApiError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ApiResponse is the standard API response structure
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ApiError   `json:"error,omitempty"`
}

// SuccessResp returns a successful response with the given status code
func SuccessResp(c *fiber.Ctx, code int, data interface{}) error {
	return c.Status(code).JSON(&ApiResponse{
		Success: true,
		Data:    data,
	})
}

// ErrorResp returns an error response
func ErrorResp(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(&ApiResponse{
		Success: false,
		Error: &ApiError{
			Code:    code,
			Message: message,
		},
	})
}
