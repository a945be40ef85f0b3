package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/internal/utils"
)

// AsyncMiddleware 异步处理中间件
// 将请求的处理逻辑提交到 Worker Pool 中执行，而不是在 Gin 分配的 Goroutine
// 中直接执行，以此严格控制并发处理数量。队列满时请求排队而不是被拒绝。
func AsyncMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 没有初始化 Worker Pool 时降级为同步执行
		if utils.GlobalWorkerPool == nil {
			c.Next()
			return
		}

		// 无缓冲信号通道，主 Goroutine 同步等待 Worker 处理完成
		done := make(chan struct{})

		// gin.Context 非线程安全，但主 Goroutine 阻塞在 <-done，
		// 同一时刻只有 Worker 在操作 c，因此是安全的
		task := func() {
			defer close(done)
			c.Next()
		}

		utils.GlobalWorkerPool.Submit(task)
		<-done
	}
}
