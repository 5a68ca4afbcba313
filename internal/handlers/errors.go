package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/ai"
)

const kindInternal = "internal"

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor сопоставляет тип ошибки HTTP-статусу ответа.
func statusFor(kind ai.Kind) int {
	switch kind {
	case ai.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError отдает ошибку в виде {"error", "kind"}. Вложенная причина наружу не попадает.
func writeError(c echo.Context, err error) error {
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) {
		return serverError(c)
	}

	return c.JSON(statusFor(aiErr.Kind), ErrorResponse{Error: aiErr.Message, Kind: string(aiErr.Kind)})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Kind: kindInternal})
}

// validationMessage собирает читаемое описание ошибок валидатора.
func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be empty", field)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
