package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/internal/middlewares"
	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/pkg/errorx"
	"github.com/xiyue520/xiyue-chat/pkg/jwt"
)

type UserHandler struct {
	UserService  *services.UserService
	TokenManager *jwt.TokenManager
}

func NewUserHandler(userService *services.UserService, tokenManager *jwt.TokenManager) *UserHandler {
	return &UserHandler{
		UserService:  userService,
		TokenManager: tokenManager,
	}
}

// LoginResponse 登录响应：脱敏用户记录 + 会话 token
type LoginResponse struct {
	*models.User
	Token string `json:"token"`
}

func (h *UserHandler) Register(c *gin.Context) {
	req := services.RegisterRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	if _, err := h.UserService.Register(c.Request.Context(), &req); err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) Login(c *gin.Context) {
	req := services.LoginRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	user, err := h.UserService.Login(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	token, err := h.TokenManager.Issue(user.Username)
	if err != nil {
		HandleError(c, errorx.WrapStore(err, "登录失败"))
		return
	}

	// token 同时写入 cookie，浏览器后续请求可免去手动携带
	c.SetCookie(middlewares.SessionCookie, token, 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, &LoginResponse{User: user, Token: token})
}

// ListUsers 联系人列表，支持 ?q= 子串过滤（区分大小写）
func (h *UserHandler) ListUsers(c *gin.Context) {
	username := c.GetString("username")

	list, err := h.UserService.ListOthers(c.Request.Context(), username, c.Query("q"))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
