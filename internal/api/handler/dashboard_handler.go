package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/api/metrics"
	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

const dashboardWarning = "Could not load dashboard data. Please try again."

type DashboardHandler struct {
	service ports.DashboardService
	log     zerolog.Logger
}

func NewDashboardHandler(service ports.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, log: log}
}

type dashboardResponse struct {
	*domain.DashboardSnapshot
	Warning string `json:"warning,omitempty"`
}

// Get renders the catalog summary. A failed aggregation still answers 200
// with an empty snapshot and a warning.
//
// @Summary      Dashboard summary
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	start := time.Now()
	snapshot, err := h.service.Aggregate(c.Request().Context())
	if err != nil {
		metrics.DashboardAggregationDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		h.log.Warn().Err(err).Msg("serving empty dashboard")
		return c.JSON(http.StatusOK, dashboardResponse{
			DashboardSnapshot: domain.EmptyDashboard(),
			Warning:           dashboardWarning,
		})
	}
	metrics.DashboardAggregationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, dashboardResponse{DashboardSnapshot: snapshot})
}
