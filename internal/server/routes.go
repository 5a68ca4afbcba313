package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	planHandler *handlers.PlanHandler,
	metricsHandler http.Handler,
	apiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	api := e.Group("/api", apiRateLimiter)
	api.POST("/route", planHandler.Route)
	api.POST("/route-stream", planHandler.RouteStream)
}
