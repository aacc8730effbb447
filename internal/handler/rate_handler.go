package handler

import (
	"net/http"

	"parcelbilling/internal/middleware"
	"parcelbilling/internal/service"
	"parcelbilling/pkg/response"

	"github.com/gin-gonic/gin"
)

type RateHandler struct {
	rateService service.RateService
}

func NewRateHandler(rateService service.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

func (h *RateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/api/rates")
	{
		rates.POST("/calculate", middleware.RequireRole("admin", "manager", "staff"), h.CalculateRate)
		rates.POST("/cod-fee", middleware.RequireRole("admin", "manager", "staff"), h.CalculateCodFee)
	}
}

// CalculateRate computes the charge for one shipment
// @Summary      Calculate shipment rate
// @Description  Selects the applicable rate tier and computes the charge for the given weight and dimensions
// @Tags         rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculateRateRequest  true  "Rate Calculation Payload"
// @Success      200      {object}  response.Response{data=service.RateResult}
// @Failure      422      {object}  response.Response
// @Router       /api/rates/calculate [post]
func (h *RateHandler) CalculateRate(c *gin.Context) {
	var req service.CalculateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.rateService.CalculateRate(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CalculateCodFee computes the cash-on-delivery handling fee
// @Summary      Calculate COD fee
// @Description  Computes the cash-handling fee for a collected amount (3.3% with a 2.00 floor)
// @Tags         rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CodFeeRequest  true  "COD Fee Payload"
// @Success      200      {object}  response.Response{data=service.CodFeeResult}
// @Failure      400      {object}  response.Response
// @Router       /api/rates/cod-fee [post]
func (h *RateHandler) CalculateCodFee(c *gin.Context) {
	var req service.CodFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.rateService.CalculateCodFee(req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
