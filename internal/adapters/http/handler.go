package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/randomtoy/tarotbot/internal/app"
	"github.com/randomtoy/tarotbot/internal/domain"
)

type Handler struct {
	svc *app.TarotService
}

func NewHandler(svc *app.TarotService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Status)
	e.GET("/healthz", h.Healthz)
	e.GET("/configs", h.Configs)
	e.POST("/tarot", h.ReadTarot)
}

func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Configs(c echo.Context) error {
	return c.JSON(http.StatusOK, ConfigsResponse{Keys: h.svc.Keys()})
}

func (h *Handler) ReadTarot(c echo.Context) error {
	var body TarotRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	resp, err := h.svc.Read(c.Request().Context(), app.ReadRequest{
		Story:     body.Story,
		ConfigKey: body.ConfigKey,
	})
	if err != nil {
		return mapError(c, err)
	}

	requestID, _ := c.Get("request_id").(string)
	if !resp.Reading.OK() {
		slog.Warn("reading failed", "request_id", requestID, "error", resp.Reading.Error)
	}
	slog.Info("reading served",
		"request_id", requestID,
		"config_key", body.ConfigKey,
		"cards", len(resp.Cards),
		"model", resp.Model,
		"latency_ms", resp.LatencyMS,
	)

	return c.JSON(http.StatusOK, TarotResponse{Reading: resp.Reading, Cards: resp.Cards})
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrUnknownConfig):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get tarot reading: " + err.Error()})
	}
}
