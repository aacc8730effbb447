package handler

import (
	"net/http"
	"time"

	"parcelbilling/internal/middleware"
	"parcelbilling/internal/service"
	"parcelbilling/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService service.StatisticsService
}

func NewStatisticsHandler(statsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/statistics/billing", middleware.RequireRole("admin", "manager"), h.GetBillingStatistics)
}

// GetBillingStatistics returns invoiced totals grouped by period
// @Summary      Billing statistics
// @Description  Aggregates invoice totals, taxes, payments and outstanding balance per period
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        group_by    query     string  false  "Grouping period: week, month, quarter, year (default month)"
// @Param        start_date  query     string  false  "Start date (RFC3339, default 12 months ago)"
// @Param        end_date    query     string  false  "End date (RFC3339, default now)"
// @Success      200         {object}  response.Response{data=[]service.BillingDataPoint}
// @Failure      500         {object}  response.Response
// @Router       /api/statistics/billing [get]
func (h *StatisticsHandler) GetBillingStatistics(c *gin.Context) {
	now := time.Now().UTC()
	startDate := c.Query("start_date")
	if startDate == "" {
		startDate = now.AddDate(0, -12, 0).Format(time.RFC3339)
	}
	endDate := c.Query("end_date")
	if endDate == "" {
		endDate = now.Format(time.RFC3339)
	}

	stats, err := h.statsService.GetBillingStatistics(c.Request.Context(), service.BillingStatsFilter{
		GroupBy:   c.DefaultQuery("group_by", "month"),
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
