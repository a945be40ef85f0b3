package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/pkg/errorx"
)

// HandleError 通用错误处理
// 按业务错误类别映射 HTTP 状态码；校验错误附带字段名；
// 未识别的错误一律按存储层失败处理，记录日志并返回笼统的 500
func HandleError(c *gin.Context, err error) {
	code := errorx.GetCode(err)

	switch code {
	case errorx.CodeValidation:
		body := gin.H{"error": errMessage(err)}
		if field := errorx.GetField(err); field != "" {
			body["field"] = field
		}
		c.JSON(http.StatusBadRequest, body)
	case errorx.CodeAuth:
		c.JSON(http.StatusUnauthorized, gin.H{"error": errMessage(err)})
	case errorx.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": errMessage(err)})
	case errorx.CodeMethod:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": errMessage(err)})
	default:
		zap.L().Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}

// errMessage 提取展示给调用方的消息，隐藏被包装的底层错误细节
func errMessage(err error) string {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return err.Error()
}
