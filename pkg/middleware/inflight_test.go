package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestInflightGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	guard := NewInflightGuard()
	release := make(chan struct{})

	r := gin.New()
	r.POST("/job", guard.Middleware(), func(c *gin.Context) {
		<-release
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	first := httptest.NewRecorder()
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/job", nil)
		r.ServeHTTP(first, req)
	}()

	// 等第一个请求进入 handler
	time.Sleep(50 * time.Millisecond)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/job", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)

	// 释放后可以再次提交
	third := httptest.NewRecorder()
	release = make(chan struct{})
	close(release)
	r.ServeHTTP(third, httptest.NewRequest(http.MethodPost, "/job", nil))
	assert.Equal(t, http.StatusOK, third.Code)
}
