// Package api exposes the replay control endpoints over HTTP.
package api

import (
	"github.com/supneo2025-ops/vwap-prediction/internal/control"
	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	xhttp "github.com/supneo2025-ops/vwap-prediction/pkg/http"
	xlogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ControlEchoHandler implements the Echo-based replay control API.
type ControlEchoHandler struct {
	logger *xlogger.Logger
	sup    *control.Supervisor
}

func NewControlEchoHandler(logger *xlogger.Logger, sup *control.Supervisor) *ControlEchoHandler {
	return &ControlEchoHandler{logger: logger, sup: sup}
}

func (h *ControlEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/days", h.Days)
	g.GET("/status", h.Status)
	g.POST("/start", h.Start)
	g.POST("/stop", h.Stop)
	g.POST("/restart", h.Restart)
}

func (h *ControlEchoHandler) Days(c echo.Context) error {
	days, err := h.sup.Days()
	if err != nil {
		h.logger.Error("list days failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cannot list replay days").WithError(err))
	}
	return xhttp.SuccessResponse(c, models.DaysResponse{Days: days})
}

func (h *ControlEchoHandler) Status(c echo.Context) error {
	running, day, speed, pid := h.sup.Status()
	return xhttp.SuccessResponse(c, models.StatusResponse{
		Running: running,
		Day:     day,
		Speed:   speed,
		PID:     pid,
	})
}

func (h *ControlEchoHandler) Start(c echo.Context) error {
	req := &models.StartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pid, err := h.sup.Start(req.Day, req.Speed)
	if err != nil {
		h.logger.Warn("start replay failed",
			xlogger.String("day", req.Day), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, models.StatusResponse{
		Running: true,
		Day:     req.Day,
		Speed:   req.Speed,
		PID:     pid,
	})
}

func (h *ControlEchoHandler) Stop(c echo.Context) error {
	if err := h.sup.Stop(); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, models.StatusResponse{Running: false})
}

func (h *ControlEchoHandler) Restart(c echo.Context) error {
	req := &models.StartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pid, err := h.sup.Restart(req.Day, req.Speed)
	if err != nil {
		h.logger.Warn("restart replay failed",
			xlogger.String("day", req.Day), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, models.StatusResponse{
		Running: true,
		Day:     req.Day,
		Speed:   req.Speed,
		PID:     pid,
	})
}
