package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// InflightGuard 保证同一时刻只处理一个转写任务
//
// 上游服务商按任务计费，前端在任务进行中会禁用上传；这里在服务端再挡一层，
// 避免并发提交。锁在请求结束时必然释放，无论成功还是失败。
type InflightGuard struct {
	busy atomic.Bool
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{}
}

func (g *InflightGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.busy.CompareAndSwap(false, true) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "A transcription is already in progress"})
			return
		}
		defer g.busy.Store(false)
		c.Next()
	}
}
