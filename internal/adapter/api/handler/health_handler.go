package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	backend string
	clients func() int
}

var healthHandler *HealthHandler

// NewHealthHandler reports the document store backend in use; clients, when
// set, counts open WebSocket connections.
func NewHealthHandler(backend string, clients func() int) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		clients: clients,
	}
}

func SetupHealthHandler(backend string, clients func() int) {
	healthHandler = NewHealthHandler(backend, clients)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "ok",
		"store":  h.backend,
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.clients != nil {
		body["websocket_clients"] = h.clients()
	}
	return c.JSON(http.StatusOK, body)
}
