package handler

import (
	"net/http"

	"parcelbilling/internal/middleware"
	"parcelbilling/internal/service"
	"parcelbilling/pkg/pagination"
	"parcelbilling/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", middleware.RequireRole("admin", "manager"), h.CreateInvoice)
		invoices.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetInvoiceDetails)
		invoices.PATCH("/:id", middleware.RequireRole("admin", "manager"), h.UpdateInvoice)
		invoices.POST("/:id/items", middleware.RequireRole("admin", "manager"), h.AddManualItem)
		invoices.DELETE("/:id/items/:itemId", middleware.RequireRole("admin", "manager"), h.DeleteItem)
		invoices.POST("/:id/payments", middleware.RequireRole("admin", "manager"), h.RecordPayment)
	}

	shipments := router.Group("/api/shipments")
	{
		shipments.POST("/:id/bill", middleware.RequireRole("admin", "manager", "staff"), h.BillShipment)
	}
}

// CreateInvoice opens a billing period for a client
// @Summary      Create invoice
// @Description  Creates an empty invoice for a client billing period; periods may not overlap
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated list of invoices
// @Summary      List invoices
// @Description  Retrieves invoices filtered by client, status or invoice number
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        client_id   query     string  false  "Filter by client ID"
// @Param        status      query     string  false  "Filter by status (PENDING, PAID, OVERDUE)"
// @Param        invoice_no  query     string  false  "Partial match on invoice number"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), service.InvoiceListRequest{
		ClientID:  c.Query("client_id"),
		Status:    c.Query("status"),
		InvoiceNo: c.Query("invoice_no"),
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, invoices, total, params.Page, params.Limit))
}

// GetInvoiceDetails returns an invoice with its items
// @Summary      Get invoice details
// @Description  Retrieves one invoice and its line items in insertion order
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceDetailsResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoiceDetails(c *gin.Context) {
	details, err := h.invoiceService.GetInvoiceDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, details))
}

// UpdateInvoice applies operator overrides
// @Summary      Update invoice
// @Description  Sets amount paid, forces status, or records an adjustment note; a forced status sticks until the next item mutation
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id} [patch]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// AddManualItem appends a manual charge line
// @Summary      Add manual invoice item
// @Description  Adds a manual line item (unit price may be negative for discounts) and marks the invoice adjusted
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.AddManualItemRequest  true  "Add Item Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceItemResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/items [post]
func (h *InvoiceHandler) AddManualItem(c *gin.Context) {
	var req service.AddManualItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.invoiceService.AddManualItem(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// DeleteItem removes a manual charge line
// @Summary      Delete invoice item
// @Description  Deletes a manual line item and marks the invoice adjusted; shipment-generated items cannot be deleted
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      string  true  "Invoice ID"
// @Param        itemId  path      string  true  "Item ID"
// @Success      200     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /api/invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) DeleteItem(c *gin.Context) {
	var req service.DeleteItemRequest
	// body is optional for deletes; an adjustment note may ride along
	_ = c.ShouldBindJSON(&req)

	if err := h.invoiceService.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req, c.GetString("userID")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// RecordPayment records the amount paid against an invoice
// @Summary      Record payment
// @Description  Sets the amount paid, recomputes the balance and derives the invoice status
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// BillShipment runs the automatic billing flow for one shipment
// @Summary      Bill shipment
// @Description  Rates the shipment against the tier catalog and appends the charge to the period's invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Shipment ID"
// @Success      201  {object}  response.Response{data=service.InvoiceItemResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/shipments/{id}/bill [post]
func (h *InvoiceHandler) BillShipment(c *gin.Context) {
	item, err := h.invoiceService.BillShipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}
