package middlewares

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/pkg/jwt"
)

// SessionCookie 承载会话 token 的 cookie 名
const SessionCookie = "xiyue_session"

// AuthMiddleware 认证中间件
// 支持三种等价的凭证形式，命中任意一种即通过：
//  1. Authorization: Bearer <jwt>      登录后签发的会话 token
//  2. Authorization: Basic <b64>       用户名:密码，直接校验凭证
//  3. Cookie xiyue_session=<jwt>       浏览器会话
//
// 解析失败、过期或凭证错误一律视为未认证：API 路由返回 401 JSON，
// 页面路由重定向回首页
func AuthMiddleware(tm *jwt.TokenManager, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := resolveUsername(c, tm, users)
		if username == "" {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			} else {
				c.Redirect(http.StatusFound, "/")
				c.Abort()
			}
			return
		}

		c.Set("username", username)
		c.Next()
	}
}

// resolveUsername 依次尝试各种凭证形式，全部失败返回空串
func resolveUsername(c *gin.Context, tm *jwt.TokenManager, users *services.UserService) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 {
			switch parts[0] {
			case "Bearer":
				if username, err := tm.Verify(parts[1]); err == nil {
					return username
				}
			case "Basic":
				if username := verifyBasic(c, parts[1], users); username != "" {
					return username
				}
			}
		}
		return ""
	}

	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		if username, err := tm.Verify(token); err == nil {
			return username
		}
	}
	return ""
}

// verifyBasic 解码 base64 的 username:password 并校验凭证
func verifyBasic(c *gin.Context, encoded string, users *services.UserService) string {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return ""
	}
	if _, err := users.VerifyCredentials(c.Request.Context(), username, password); err != nil {
		return ""
	}
	return username
}
