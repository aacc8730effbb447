package handler

import (
	"net/http"

	"parcelbilling/internal/middleware"
	"parcelbilling/internal/service"
	"parcelbilling/pkg/pagination"
	"parcelbilling/pkg/response"

	"github.com/gin-gonic/gin"
)

type RateTierHandler struct {
	tierService service.RateTierService
}

func NewRateTierHandler(tierService service.RateTierService) *RateTierHandler {
	return &RateTierHandler{tierService: tierService}
}

func (h *RateTierHandler) RegisterRoutes(router *gin.RouterGroup) {
	tiers := router.Group("/api/rate-tiers")
	{
		tiers.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListRateTiers)
		tiers.GET("/validate", middleware.RequireRole("admin", "manager"), h.ValidateCatalog)
		tiers.POST("", middleware.RequireRole("admin", "manager"), h.CreateRateTier)
		tiers.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateRateTier)
		tiers.DELETE("/:id", middleware.RequireRole("admin"), h.DeactivateRateTier)
	}
}

// ListRateTiers returns the tier catalog
// @Summary      List rate tiers
// @Description  Retrieves a paginated list of rate tiers, optionally filtered by service type
// @Tags         rate-tiers
// @Security     BearerAuth
// @Produce      json
// @Param        service_type  query     string  false  "Filter by service type (DOM, SDD)"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /api/rate-tiers [get]
func (h *RateTierHandler) ListRateTiers(c *gin.Context) {
	params := pagination.Parse(c)

	tiers, total, err := h.tierService.ListRateTiers(c.Request.Context(), c.Query("service_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, tiers, total, params.Page, params.Limit))
}

// CreateRateTier adds a tier to the catalog
// @Summary      Create rate tier
// @Description  Creates a new pricing tier; rejects ranges overlapping an existing active tier
// @Tags         rate-tiers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRateTierRequest  true  "Create Tier Payload"
// @Success      201      {object}  response.Response{data=service.RateTierResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/rate-tiers [post]
func (h *RateTierHandler) CreateRateTier(c *gin.Context) {
	var req service.CreateRateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tier, err := h.tierService.CreateRateTier(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tier))
}

// UpdateRateTier edits a tier
// @Summary      Update rate tier
// @Description  Updates an existing tier; rejects ranges overlapping another active tier
// @Tags         rate-tiers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Tier ID"
// @Param        payload  body      service.UpdateRateTierRequest  true  "Update Tier Payload"
// @Success      200      {object}  response.Response{data=service.RateTierResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/rate-tiers/{id} [put]
func (h *RateTierHandler) UpdateRateTier(c *gin.Context) {
	var req service.UpdateRateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tier, err := h.tierService.UpdateRateTier(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tier))
}

// DeactivateRateTier retires a tier from selection
// @Summary      Deactivate rate tier
// @Description  Marks a tier inactive; it is kept for historical invoice traceability
// @Tags         rate-tiers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Tier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/rate-tiers/{id} [delete]
func (h *RateTierHandler) DeactivateRateTier(c *gin.Context) {
	if err := h.tierService.DeactivateRateTier(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}

// ValidateCatalog reports gaps and overlaps in the active tier set
// @Summary      Validate tier catalog
// @Description  Checks that active tiers partition their dimension without gaps or overlaps
// @Tags         rate-tiers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CatalogIssue}
// @Failure      500  {object}  response.Response
// @Router       /api/rate-tiers/validate [get]
func (h *RateTierHandler) ValidateCatalog(c *gin.Context) {
	issues, err := h.tierService.ValidateCatalog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, issues))
}
