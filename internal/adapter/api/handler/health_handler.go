package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"petadopt/internal/usecase"
)

type HealthHandler struct {
	catalog  *usecase.CatalogSynchronizer
	sessions *usecase.SessionUseCase
}

func NewHealthHandler(catalog *usecase.CatalogSynchronizer, sessions *usecase.SessionUseCase) *HealthHandler {
	return &HealthHandler{
		catalog:  catalog,
		sessions: sessions,
	}
}

// CheckHealth reports 503 while the catalog subscription is failing.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.catalog != nil {
		body["catalog_loading"] = h.catalog.Loading()
		if err := h.catalog.Err(); err != nil {
			body["status"] = "degraded"
			body["catalog_error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.sessions != nil {
		body["active_sessions"] = h.sessions.ActiveSessions()
	}

	return c.JSON(status, body)
}
