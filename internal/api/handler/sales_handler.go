package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type SalesHandler struct {
	salesService ports.SalesService
}

func NewSalesHandler(salesService ports.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// GetSales returns the per-day sales series between two calendar dates,
// with days that had no orders reported as zero.
//
// @Summary      Sales report
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  true  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  true  "Last day (YYYY-MM-DD)"
// @Success      200        {object}  domain.SalesReport
// @Failure      400        {object}  map[string]any
// @Failure      403        {object}  map[string]any
// @Router       /admin/get_sales [get]
func (h *SalesHandler) GetSales(c echo.Context) error {
	start := time.Now()

	report, err := h.salesService.ComputeSales(c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))

	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.SalesReportDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
