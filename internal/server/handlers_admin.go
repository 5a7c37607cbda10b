package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ZhaoYaoJing/internal/storage"
)

// handleAdminUsers 全部用户列表
func (s *Server) handleAdminUsers(c *gin.Context) {
	users, err := s.store.ListUsers()
	if err != nil {
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"id":         u.ID,
			"full_name":  u.FullName,
			"email":      u.Email,
			"role":       u.Role,
			"is_active":  u.IsActive,
			"created_at": u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, items)
}

// handleAdminScans 最近100条扫描记录
func (s *Server) handleAdminScans(c *gin.Context) {
	records, err := s.store.ListAllScans(100)
	if err != nil {
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"id":         rec.ID,
			"user_id":    rec.UserID,
			"target":     rec.Target,
			"port_range": rec.PortRange,
			"created_at": rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, items)
}

// handleAdminDeleteScan 删除扫描记录
func (s *Server) handleAdminDeleteScan(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		failf(c, http.StatusBadRequest, "invalid scan id")
		return
	}

	if err := s.store.DeleteScan(scanID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			failf(c, http.StatusNotFound, "Scan report not found")
			return
		}
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": sprintf("Scan report %d deleted successfully", scanID),
	})
}
