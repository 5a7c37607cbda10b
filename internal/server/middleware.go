package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ZhaoYaoJing/internal/model"
)

// gin上下文键
const (
	ctxKeyUser      = "current_user"
	ctxKeyRequestID = "request_id"
)

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// requestLogMiddleware 请求日志，缺少X-Request-ID时补一个uuid
func (s *Server) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info("%s %s -> %d (%v) request_id=%s client=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), requestID, c.ClientIP())
	}
}

// corsMiddleware 跨域放行，与前端部署解耦
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authMiddleware JWT认证，校验通过后把用户写入上下文
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			failf(c, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := s.jwt.ParseToken(token)
		if err != nil {
			failf(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := s.store.GetUserByID(claims.UserID)
		if err != nil || !user.IsActive {
			failf(c, http.StatusUnauthorized, "Account disabled or not found")
			return
		}

		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

// adminOnlyMiddleware 管理员角色校验，必须在authMiddleware之后
func (s *Server) adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != "admin" {
			failf(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// scanRateLimitMiddleware /scan接口的每IP令牌桶限流
func (s *Server) scanRateLimitMiddleware() gin.HandlerFunc {
	perMin := s.cfg.Server.ScanRatePerMin
	if perMin <= 0 {
		perMin = 10
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if lim, ok := limiters[ip]; ok {
			return lim
		}
		lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
		limiters[ip] = lim
		return lim
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			failf(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("缺少Authorization头")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("Authorization头格式错误")
	}
	return parts[1], nil
}

// currentUser 从上下文取当前用户，未认证时为nil
func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
