// pkg/api/template.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"NotifyHub/pkg/model"
	"NotifyHub/pkg/notifier"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListTemplates 模板列表处理程序
func (h *Handlers) ListTemplates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	templates, err := h.templates.List(c.Query("customer_id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": templates,
	})
}

// GetTemplate 获取模板处理程序
func (h *Handlers) GetTemplate(c *gin.Context) {
	template, err := h.templates.GetActive(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": template,
	})
}

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Title      string         `json:"title" binding:"required"`
	Message    string         `json:"message" binding:"required"`
	Comment    *string        `json:"comment"`
	Types      model.TypeList `json:"types"`
	Channel    string         `json:"channel"`
	CustomerID *string        `json:"customer_id"`
}

// CreateTemplate 创建模板处理程序
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	template := &model.Template{
		Title:      req.Title,
		Message:    h.sanitizer.Sanitize(req.Message), // 写入前消毒一次
		Comment:    req.Comment,
		Types:      req.Types,
		Channel:    req.Channel,
		CustomerID: req.CustomerID,
	}

	if err := h.templates.Create(template); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "模板已存在"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": template,
	})
}

// 部分更新允许出现的字段。调用方提供的才写入，
// 显式传null表示清空该字段，缺省表示不改。
var templateUpdatableFields = map[string]bool{
	"title":       true,
	"message":     true,
	"comment":     true,
	"types":       true,
	"channel":     true,
	"customer_id": true,
}

// UpdateTemplate 部分更新模板处理程序
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	updates := make(map[string]interface{}, len(body))
	for field, value := range body {
		if !templateUpdatableFields[field] {
			continue
		}
		if field == "message" {
			if raw, ok := value.(string); ok {
				value = h.sanitizer.Sanitize(raw)
			}
		}
		updates[field] = value
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可更新的字段"})
		return
	}

	template, err := h.templates.Update(c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": template,
	})
}

// DeleteTemplate 软删除模板处理程序
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	if err := h.templates.SoftDelete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
	})
}

// SendTemplate 按模板发送处理程序
func (h *Handlers) SendTemplate(c *gin.Context) {
	var targets notifier.SendTargets
	if err := c.ShouldBindJSON(&targets); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	template, err := h.sender.SendUsingTemplate(c.Param("id"), targets)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": template,
	})
}
