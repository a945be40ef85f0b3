package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/pkg/errorx"
)

type MessageHandler struct {
	MessageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		MessageService: messageService,
	}
}

// SendRequest 发送消息请求，逐端点显式声明输入结构
type SendRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	username := c.GetString("username")

	req := SendRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}
	if req.To == "" {
		HandleError(c, errorx.Validation("to", "缺少收件人"))
		return
	}

	if _, err := h.MessageService.Send(c.Request.Context(), username, req.To, req.Content); err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMessages 读取与 ?with=<username> 的会话历史，旧的在前
func (h *MessageHandler) GetMessages(c *gin.Context) {
	username := c.GetString("username")

	peer := c.Query("with")
	if peer == "" {
		HandleError(c, errorx.Validation("with", "缺少 with 参数"))
		return
	}

	history, err := h.MessageService.History(c.Request.Context(), username, peer)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
