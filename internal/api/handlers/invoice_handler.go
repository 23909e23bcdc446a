package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fares12358/erb-system-backend/internal/api/middleware"
	"github.com/fares12358/erb-system-backend/internal/models"
	"github.com/fares12358/erb-system-backend/internal/services"
)

// InvoiceHandler handles the owner-scoped invoice CRUD endpoints.
type InvoiceHandler struct {
	invoiceService services.IInvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.IInvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type lineItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type createInvoiceRequest struct {
	ClientPhone   string            `json:"clientPhone" binding:"required"`
	Items         []lineItemRequest `json:"items" binding:"required"`
	PaidAmount    float64           `json:"paidAmount"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Note          string            `json:"note"`
}

// Create handles POST /api/invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "clientPhone, items and paymentMethod are required"})
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), userID, services.CreateInvoiceInput{
		ClientPhone:   req.ClientPhone,
		Items:         toLineItems(req.Items),
		PaidAmount:    req.PaidAmount,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create invoice"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": invoice})
}

// List handles GET /api/invoices with filter and pagination query params.
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	filter := services.ListInvoicesFilter{
		Page:          page,
		Status:        c.Query("status"),
		PaymentMethod: c.Query("paymentMethod"),
		ClientPhone:   c.Query("clientPhone"),
		InvoiceNumber: c.Query("invoiceNumber"),
		DateFilter:    c.Query("dateFilter"),
		Sort:          c.Query("sort"),
	}

	invoices, pagination, err := h.invoiceService.List(c.Request.Context(), userID, filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to list invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": invoices, "pagination": pagination})
}

type updateInvoiceRequest struct {
	ClientPhone   *string           `json:"clientPhone"`
	Items         []lineItemRequest `json:"items"`
	PaidAmount    *float64          `json:"paidAmount"`
	PaymentMethod *string           `json:"paymentMethod"`
	Note          *string           `json:"note"`
}

// Update handles PUT /api/invoices/:id. Absent fields are left unchanged.
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	invoiceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid invoice ID format"})
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	in := services.UpdateInvoiceInput{
		ClientPhone: req.ClientPhone,
		PaidAmount:  req.PaidAmount,
		Note:        req.Note,
	}
	if req.Items != nil {
		in.Items = toLineItems(req.Items)
	}
	if req.PaymentMethod != nil {
		method := models.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &method
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), userID, invoiceID, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": invoice})
}

// Delete handles DELETE /api/invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	invoiceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid invoice ID format"})
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), userID, invoiceID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invoice deleted"})
}

func toLineItems(items []lineItemRequest) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		out[i] = models.LineItem{Name: item.Name, Price: item.Price, Quantity: item.Quantity}
	}
	return out
}
