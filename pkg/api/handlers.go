// pkg/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"NotifyHub/pkg/database"
	"NotifyHub/pkg/errno"
	"NotifyHub/pkg/monitor"
	"NotifyHub/pkg/notifier"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers API处理程序
type Handlers struct {
	dispatcher    *notifier.Dispatcher
	readState     *notifier.ReadStateTracker
	sender        *notifier.TemplateSender
	notifications *database.NotificationDB
	templates     *database.TemplateDB
	sanitizer     notifier.Sanitizer
	monitor       *monitor.Monitor
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	dispatcher *notifier.Dispatcher,
	readState *notifier.ReadStateTracker,
	sender *notifier.TemplateSender,
	notifications *database.NotificationDB,
	templates *database.TemplateDB,
	sanitizer notifier.Sanitizer,
	mon *monitor.Monitor,
) *Handlers {
	return &Handlers{
		dispatcher:    dispatcher,
		readState:     readState,
		sender:        sender,
		notifications: notifications,
		templates:     templates,
		sanitizer:     sanitizer,
		monitor:       mon,
	}
}

// currentUser 从请求头取当前用户，认证策略在网关层处理
func currentUser(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// respondError 把业务错误映射为HTTP应答
func respondError(c *gin.Context, err error) {
	var e *errno.Errno
	if errors.As(err, &e) {
		c.JSON(e.HTTPStatus(), gin.H{"error": e.Message})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	statuses := h.monitor.GetAllStatus()
	healthy := true
	for _, s := range statuses {
		if s.Status != "healthy" {
			healthy = false
			break
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     map[bool]string{true: "ok", false: "degraded"}[healthy],
		"components": statuses,
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// CreateNotification 创建通知处理程序
func (h *Handlers) CreateNotification(c *gin.Context) {
	var req notifier.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = "api_create"
	}

	notification, err := h.dispatcher.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": notification,
	})
}

// ListNotifications 用户通知列表处理程序
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.notifications.ListByUser(userID, database.ListFilter{
		Type:       c.Query("type"),
		Channel:    c.Query("channel"),
		UnreadOnly: c.Query("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": notifications,
	})
}

// AdminListNotifications 管理端通知列表处理程序
func (h *Handlers) AdminListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, total, err := h.notifications.ListAdmin(database.AdminFilter{
		CustomerID: c.Query("customer_id"),
		UserID:     c.Query("user_id"),
		SenderID:   c.Query("sender_id"),
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  notifications,
		"total": total,
	})
}

// GetNotification 获取单条通知处理程序
func (h *Handlers) GetNotification(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	notification, err := h.notifications.GetForUser(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": notification,
	})
}

// MarkOneRead 标记单条已读处理程序
func (h *Handlers) MarkOneRead(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	if err := h.readState.MarkOne(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
	})
}

// MarkAllRead 全部标记已读处理程序
func (h *Handlers) MarkAllRead(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	affected, err := h.readState.MarkAll(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  affected,
	})
}

// MarkManyRequest 批量标记已读请求
type MarkManyRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// MarkManyRead 批量标记已读处理程序
func (h *Handlers) MarkManyRead(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	var req MarkManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	affected, err := h.readState.MarkMany(userID, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  affected,
	})
}

// UnreadCount 未读数处理程序
func (h *Handlers) UnreadCount(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	count, err := h.readState.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": count,
	})
}
