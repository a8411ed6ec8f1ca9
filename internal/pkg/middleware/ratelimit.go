package middleware

import (
	"net/http"
	"sync"
	"time"

	"mini_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL 客户端多久没有请求后回收其令牌桶
const DefaultLimiterIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按客户端 IP 分配令牌桶，空闲超过 idleTTL 的桶会被回收，
// 内存占用只与最近活跃的客户端数量有关
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	qps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter qps 为每个客户端的稳定速率，burst 为突发上限；idleTTL <= 0 时使用默认值
func NewIPRateLimiter(qps rate.Limit, burst int, idleTTL time.Duration) *IPRateLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &IPRateLimiter{
		clients: make(map[string]*clientBucket),
		qps:     qps,
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow 消耗 ip 对应令牌桶中的一个令牌
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	// 每个 idleTTL 周期最多全表扫描一次
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.evictIdle(now)
		l.lastSweep = now
	}

	bucket, ok := l.clients[ip]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.qps, l.burst)}
		l.clients[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// Tracked 当前持有令牌桶的客户端数量
func (l *IPRateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *IPRateLimiter) evictIdle(now time.Time) {
	for ip, bucket := range l.clients {
		if now.Sub(bucket.lastSeen) > l.idleTTL {
			delete(l.clients, ip)
		}
	}
}

// RateLimitMiddleware 超出速率的请求返回 429
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
