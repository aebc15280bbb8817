package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"topup-orders-service/internal/dto"
	"topup-orders-service/internal/model"
	"topup-orders-service/internal/repository"
)

type notificationService interface {
	List(ctx context.Context, aud model.Audience, f repository.NotificationFilter) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, aud model.Audience) (int64, error)
	MarkRead(ctx context.Context, aud model.Audience, id string) error
	MarkAllRead(ctx context.Context, aud model.Audience) (int64, error)
	Delete(ctx context.Context, aud model.Audience, id string) error
	ClearAll(ctx context.Context, aud model.Audience) (int64, error)
	NotifyAdmins(ctx context.Context, title, titleBn, message, messageBn string, priority model.Priority, important bool) (*model.Notification, error)
}

type NotificationController struct {
	service notificationService
}

func NewNotificationController(s notificationService) *NotificationController {
	return &NotificationController{service: s}
}

// Admins read the shared administrator ledger, everyone else their own.
func audienceFromContext(c *gin.Context) model.Audience {
	if c.GetString("userRole") == "admin" {
		return model.AdminAudience()
	}
	return model.UserAudience(c.GetString("userID"))
}

// GET /notifications
func (ctl *NotificationController) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	f := repository.NotificationFilter{
		UnreadOnly:    c.Query("unread_only") == "true",
		ImportantOnly: c.Query("important_only") == "true",
		Limit:         limit,
	}

	notifications, err := ctl.service.List(c.Request.Context(), audienceFromContext(c), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: notifications,
		FetchedAt:     time.Now().UTC(),
	})
}

// GET /notifications/unread-count — the badge endpoint, polled frequently.
func (ctl *NotificationController) UnreadCount(c *gin.Context) {
	count, err := ctl.service.UnreadCount(c.Request.Context(), audienceFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// PUT /notifications/:id/read
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	if err := ctl.service.MarkRead(c.Request.Context(), audienceFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// PUT /notifications/read-all
func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	count, err := ctl.service.MarkAllRead(c.Request.Context(), audienceFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// DELETE /notifications/:id
func (ctl *NotificationController) Delete(c *gin.Context) {
	if err := ctl.service.Delete(c.Request.Context(), audienceFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// DELETE /notifications
func (ctl *NotificationController) ClearAll(c *gin.Context) {
	count, err := ctl.service.ClearAll(c.Request.Context(), audienceFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// POST /admin/notifications/broadcast
func (ctl *NotificationController) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority, err := model.ParsePriority(req.Priority)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := ctl.service.NotifyAdmins(c.Request.Context(), req.Title, req.TitleBn, req.Message, req.MessageBn, priority, req.Important)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, n)
}
