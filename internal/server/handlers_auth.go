package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ZhaoYaoJing/internal/auth"
	"ZhaoYaoJing/internal/storage"
)

type registerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister 用户注册
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failf(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.store.GetUserByEmail(req.Email); err == nil {
		failf(c, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := s.store.CreateUser(req.FullName, req.Email, hash, "user"); err != nil {
		s.logger.Error("创建用户失败: %v", err)
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User registered successfully",
	})
}

// handleLogin 用户登录，签发JWT
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failf(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil || !user.IsActive {
		failf(c, http.StatusUnauthorized, "Invalid credentials or account disabled")
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		failf(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("签发令牌失败: %v", err)
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"role":    user.Role,
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
		},
	})
}

// handleMe 当前用户信息
func (s *Server) handleMe(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"full_name": user.FullName,
		"email":     user.Email,
		"role":      user.Role,
		"is_active": user.IsActive,
	})
}
