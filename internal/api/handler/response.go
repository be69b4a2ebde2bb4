package handler

import "github.com/labstack/echo/v4"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool     `json:"success"`
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Failure builds the envelope for an error response.
func Failure(status int, message string, errs []string) Response {
	return Response{Status: status, Message: message, Errors: errs}
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Status: status, Message: message, Data: data})
}
