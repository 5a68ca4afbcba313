package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const statusOK = "ok"

type HealthResponse struct {
	Status string `json:"status"`
}

// Health отвечает на liveness-проверку. Провайдер и БД не опрашиваются.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: statusOK})
}
