package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginRateLimit 登录接口限流中间件
// 每 IP 在 window 内最多 maxAttempts 次尝试，超过则返回 429
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	type attempts struct {
		timestamps []time.Time
	}
	var (
		mu    sync.Mutex
		store = make(map[string]*attempts)
	)

	prune := func(a *attempts, cutoff time.Time) {
		kept := a.timestamps[:0]
		for _, t := range a.timestamps {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		a.timestamps = kept
	}

	// 定期清理过期数据，避免 map 无限增长
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			cutoff := time.Now().Add(-window)
			for ip, a := range store {
				prune(a, cutoff)
				if len(a.timestamps) == 0 {
					delete(store, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		a, ok := store[ip]
		if !ok {
			a = &attempts{}
			store[ip] = a
		}
		prune(a, now.Add(-window))
		if len(a.timestamps) >= maxAttempts {
			mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "登录尝试过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		a.timestamps = append(a.timestamps, now)
		mu.Unlock()

		c.Next()
	}
}
