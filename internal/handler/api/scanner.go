package api

import (
	"net/http"

	"PulseWatch/internal/domain/models"
	"PulseWatch/internal/services/recorder"
	"PulseWatch/internal/usecase"
	xhttp "PulseWatch/pkg/http"
	xlogger "PulseWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScannerHandler exposes the scanner's read API over Echo.
type ScannerHandler struct {
	logger   *xlogger.Logger
	scanner  *usecase.Scanner
	recorder *recorder.Recorder
	flow     *usecase.VolumeFlow
	listings *usecase.ListingWatcher
}

func NewScannerHandler(
	logger *xlogger.Logger,
	scanner *usecase.Scanner,
	rec *recorder.Recorder,
	flow *usecase.VolumeFlow,
	listings *usecase.ListingWatcher,
) *ScannerHandler {
	return &ScannerHandler{
		logger:   logger,
		scanner:  scanner,
		recorder: rec,
		flow:     flow,
		listings: listings,
	}
}

func (h *ScannerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/volume", h.Volume)
	g.GET("/listings", h.Listings)
	e.GET("/healthz", h.Health)
}

// Signals returns recently emitted signals, newest first, optionally
// filtered by type.
func (h *ScannerHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signals := h.recorder.Recent(req.Limit, models.SignalType(req.Type))
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

// Volume returns the buy/sell volume split for one pair.
func (h *ScannerHandler) Volume(c echo.Context) error {
	req := &models.VolumeFlowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	flow, err := h.flow.Flow(c.Request().Context(), req.Pair, req.Period)
	if err != nil {
		h.logger.Error("volume flow usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, flow)
}

// Listings returns recently detected new pairs.
func (h *ScannerHandler) Listings(c echo.Context) error {
	req := &models.ListingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.listings.Recent(req.Limit))
}

// Health reports process liveness and whether a scan cycle is running.
func (h *ScannerHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"scanning": h.scanner.Running(),
		"signals":  h.recorder.Len(),
	})
}
