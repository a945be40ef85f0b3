package routers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/config"
	"github.com/xiyue520/xiyue-chat/internal/handlers"
	"github.com/xiyue520/xiyue-chat/internal/models"
	"github.com/xiyue520/xiyue-chat/internal/repositories"
	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/pkg/jwt"
)

// setupRouter 以 miniredis 组装完整服务并返回可直接发请求的引擎
func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		Chat: config.ChatConfig{
			InviteCode:    "xiyue666",
			AdminPassword: "xiyue777",
			HistoryLimit:  100,
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
	}

	ctx := context.Background()
	logger := zap.NewNop()

	userRepo, err := repositories.NewUserRepository(ctx, client)
	require.NoError(t, err)
	convRepo := repositories.NewConversationRepository(client, cfg.Chat.HistoryLimit)
	systemRepo := repositories.NewSystemRepository(client)

	userService := services.NewUserService(userRepo, &cfg.Chat, logger)
	messageService := services.NewMessageService(convRepo, userRepo, logger)
	bootstrap := services.NewBootstrapService(userRepo, systemRepo, &cfg.Chat, logger)
	require.NoError(t, bootstrap.Run(ctx))

	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userHandler := handlers.NewUserHandler(userService, tokenManager)
	messageHandler := handlers.NewMessageHandler(messageService)
	systemHandler := handlers.NewSystemHandler(bootstrap)

	r := gin.New()
	SetupRoutes(r, cfg, userHandler, messageHandler, systemHandler, tokenManager, userService, nil)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *gin.Engine, username string) {
	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username":   username,
		"password":   "secret1",
		"inviteCode": "xiyue666",
		"nickname":   "昵称" + username,
		"gender":     "♂",
	})
	require.Equal(t, http.StatusOK, w.Code, "register failed: %s", w.Body.String())
}

func loginUser(t *testing.T, r *gin.Engine, username, password string) string {
	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// TestEndToEnd 注册 alice -> 登录 -> 给 admin 发 "hi" -> 读回恰好一条
func TestEndToEnd(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "alice")
	token := loginUser(t, r, "alice", "secret1")

	w := doJSON(t, r, http.MethodPost, "/api/send", token, gin.H{
		"to":      "admin",
		"content": "hi",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/messages?with=admin", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].From)
	assert.Equal(t, "hi", history[0].Content)
}

func TestRegister_Errors(t *testing.T) {
	r := setupRouter(t)

	t.Run("邀请码错误", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":   "alice",
			"password":   "secret1",
			"inviteCode": "wrong",
			"gender":     "♂",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "inviteCode", resp["field"])
		assert.NotEmpty(t, resp["error"])
	})

	t.Run("重复注册", func(t *testing.T) {
		registerUser(t, r, "bob")

		w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":   "bob",
			"password":   "another6",
			"inviteCode": "xiyue666",
			"gender":     "♀",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "username", resp["field"])
	})

	t.Run("请求体不是JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader([]byte("not-json")))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin_Errors(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "wrong!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "nobody",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/api/users", "/api/messages?with=admin"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "GET %s without token", path)
	}

	w := doJSON(t, r, http.MethodPost, "/api/send", "", gin.H{"to": "admin", "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造 token 同样是 401
	w = doJSON(t, r, http.MethodGet, "/api/users", "forged.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBasicAuth(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice")

	encoded := base64.StdEncoding.EncodeToString([]byte("alice:secret1"))
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Basic "+encoded)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 密码错误
	encoded = base64.StdEncoding.EncodeToString([]byte("alice:wrong!"))
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Basic "+encoded)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice")
	registerUser(t, r, "bob")
	token := loginUser(t, r, "alice", "secret1")

	w := doJSON(t, r, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1, "admin 与本人都不在列表中")
	assert.Equal(t, "bob", list[0].Username)
	assert.Empty(t, list[0].PasswordHash, "响应不能携带凭证")
}

func TestMessages_Errors(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice")
	token := loginUser(t, r, "alice", "secret1")

	t.Run("缺少with参数", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/messages", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("peer不存在", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/messages?with=nobody", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("收件人不存在", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/send", token, gin.H{"to": "nobody", "content": "hi"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("空白内容", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/send", token, gin.H{"to": "admin", "content": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "content", resp["field"])
	})
}

func TestMethodNotAllowed(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/register", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/login", "", gin.H{})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestUptimeAndHealth(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/uptime", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp["startedAt"])

	w = doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 首页是重定向
	w = doJSON(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == "xiyue_session" {
			session = c
		}
	}
	require.NotNil(t, session, "login must set the session cookie")

	// 仅靠 cookie 访问受保护路由
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(session)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
}
