package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"topup-orders-service/internal/dto"
	"topup-orders-service/internal/model"
	"topup-orders-service/internal/repository"
	"topup-orders-service/internal/service"
)

type orderService interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*model.Order, error)
	AttachPaymentProof(ctx context.Context, orderID, actorID, proofURL string) (*model.Order, error)
	Verify(ctx context.Context, orderID, adminID string, approve bool, notes string) (*model.Order, error)
	SetStatus(ctx context.Context, orderID string, newStatus model.OrderStatus, adminNotes string) (*model.Order, error)
	SetDeliveryStatus(ctx context.Context, orderID string, newStatus model.DeliveryStatus) (*model.Order, error)
	Cancel(ctx context.Context, orderID, actorID string, isAdmin bool) (*model.Order, error)
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	GetByUserID(ctx context.Context, userID string, f repository.OrderFilter) ([]*model.Order, error)
	GetAll(ctx context.Context, f repository.OrderFilter) ([]*model.Order, int64, error)
}

type OrderController struct {
	service orderService
}

func NewOrderController(s orderService) *OrderController {
	return &OrderController{service: s}
}

// POST /orders
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.service.Create(c.Request.Context(), service.CreateOrderInput{
		UserID:        c.GetString("userID"),
		UserEmail:     c.GetString("userEmail"),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		PlayerID:      req.PlayerID,
		PlayerName:    req.PlayerName,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OrderResponse{Order: order})
}

// GET /orders/mine
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	userID := c.GetString("userID")
	orders, err := ctl.service.GetByUserID(c.Request.Context(), userID, orderFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:orderId
func (ctl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctl.service.GetByID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Owners see their own orders; admins see everything.
	if c.GetString("userRole") != "admin" && order.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view another user's order"})
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// POST /orders/:orderId/payment-proof
func (ctl *OrderController) UploadPaymentProof(c *gin.Context) {
	var req dto.PaymentProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.service.AttachPaymentProof(c.Request.Context(), c.Param("orderId"), c.GetString("userID"), req.ProofURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// PUT /orders/:orderId/cancel
func (ctl *OrderController) CancelOrder(c *gin.Context) {
	isAdmin := c.GetString("userRole") == "admin"

	order, err := ctl.service.Cancel(c.Request.Context(), c.Param("orderId"), c.GetString("userID"), isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// POST /admin/orders/:orderId/verify
func (ctl *OrderController) VerifyOrder(c *gin.Context) {
	var req dto.VerifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.service.Verify(c.Request.Context(), c.Param("orderId"), c.GetString("userID"), req.Approve, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// PUT /admin/orders/:orderId/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.service.SetStatus(c.Request.Context(), c.Param("orderId"), status, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// PUT /admin/orders/:orderId/delivery
func (ctl *OrderController) UpdateDelivery(c *gin.Context) {
	var req dto.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := model.ParseDeliveryStatus(req.DeliveryStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.service.SetDeliveryStatus(c.Request.Context(), c.Param("orderId"), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderResponse{Order: order})
}

// GET /admin/orders
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	f := orderFilterFromQuery(c)
	f.VerificationStatus = c.Query("verification_status")

	orders, total, err := ctl.service.GetAll(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: orders, Page: f.Page, Total: total})
}

func orderFilterFromQuery(c *gin.Context) repository.OrderFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	return repository.OrderFilter{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
}
