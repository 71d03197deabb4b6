package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetMetrics returns the in-process scheduling counters.
// GET /api/v1/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Tours.Metrics().Snapshot())
}
