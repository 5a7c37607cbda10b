// Package server 对外HTTP接口层: 认证、扫描、历史、管理端
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ZhaoYaoJing/internal/auth"
	"ZhaoYaoJing/internal/config"
	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/report"
	"ZhaoYaoJing/internal/storage"
	"ZhaoYaoJing/internal/utils"
)

// ScanRunner 扫描编排入口，便于测试替换
type ScanRunner interface {
	RunScan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error)
}

// Server HTTP服务
type Server struct {
	cfg    *config.Config
	store  *storage.Store
	jwt    *auth.JWTManager
	runner ScanRunner
	pdf    *report.PDFWriter
	logger *utils.Logger
}

// New 组装HTTP服务
func New(cfg *config.Config, store *storage.Store, jwtMgr *auth.JWTManager, runner ScanRunner) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		jwt:    jwtMgr,
		runner: runner,
		pdf:    report.NewPDFWriter(),
		logger: utils.NewLogger("server"),
	}
}

// Router 构建gin路由
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogMiddleware())
	engine.Use(corsMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := engine.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.GET("/me", s.authMiddleware(), s.handleMe)
	}

	authed := engine.Group("/", s.authMiddleware())
	{
		authed.POST("/scan", s.scanRateLimitMiddleware(), s.handleScan)
		authed.GET("/history", s.handleHistory)
		authed.GET("/history/:id", s.handleHistoryByID)
		authed.GET("/report/:id", s.handleReportPDF)
	}

	admin := engine.Group("/admin", s.authMiddleware(), s.adminOnlyMiddleware())
	{
		admin.GET("/users", s.handleAdminUsers)
		admin.GET("/scans", s.handleAdminScans)
		admin.DELETE("/scans/:id", s.handleAdminDeleteScan)
	}

	return engine
}

// Run 启动HTTP服务
func (s *Server) Run() error {
	s.logger.Info("HTTP服务启动: %s", s.cfg.Server.Addr)
	return s.Router().Run(s.cfg.Server.Addr)
}

// failf 统一错误响应，格式与前端约定一致
func failf(c *gin.Context, status int, format string, args ...interface{}) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"detail":  sprintf(format, args...),
	})
}
