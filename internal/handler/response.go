package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogapi/internal/errors"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MessageResponse is a success envelope without data.
type MessageResponse struct {
	Message string `json:"message"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Message: message, Data: data})
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return errors.BadRequest("Invalid request body")
	}
	return c.Validate(req)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.BadRequest("Invalid id")
	}
	return id, nil
}
