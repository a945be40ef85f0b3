package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/internal/services"
)

type SystemHandler struct {
	Bootstrap *services.BootstrapService
}

func NewSystemHandler(bootstrap *services.BootstrapService) *SystemHandler {
	return &SystemHandler{Bootstrap: bootstrap}
}

// Uptime 站点运行时长，前端页脚轮询展示
func (h *SystemHandler) Uptime(c *gin.Context) {
	startedAt := h.Bootstrap.StartedAt()
	c.JSON(http.StatusOK, gin.H{
		"startedAt":     startedAt,
		"uptimeSeconds": (time.Now().UnixMilli() - startedAt) / 1000,
	})
}

// Health 健康检查
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Status": "OK"})
}

// Landing 首页：页面渲染由前端承担，后端只给一个跳转
func (h *SystemHandler) Landing(c *gin.Context) {
	c.Redirect(http.StatusFound, "/api/uptime")
}
