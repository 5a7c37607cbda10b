package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/report"
	"ZhaoYaoJing/internal/scanner"
	"ZhaoYaoJing/internal/storage"
)

// handleScan 执行一次扫描并保存到历史
func (s *Server) handleScan(c *gin.Context) {
	var req model.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failf(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.runner.RunScan(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, scanner.ErrRejectedInput) {
			failf(c, http.StatusBadRequest, rejectionDetail(err))
			return
		}
		s.logger.Error("扫描执行失败: %v", err)
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	result.Advisory = report.BuildAdvisory(result)

	user := currentUser(c)
	data, err := json.Marshal(result)
	if err == nil {
		if _, err := s.store.SaveScan(user.ID, req.Target, req.PortRange, string(data)); err != nil {
			// 持久化失败不影响本次响应
			s.logger.Error("保存扫描历史失败: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// handleHistory 当前用户的扫描历史列表
func (s *Server) handleHistory(c *gin.Context) {
	user := currentUser(c)

	records, err := s.store.ListScansByUser(user.ID)
	if err != nil {
		failf(c, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"id":         rec.ID,
			"target":     rec.Target,
			"port_range": rec.PortRange,
			"created_at": rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, items)
}

// handleHistoryByID 按ID取单条扫描结果（完整JSON）
func (s *Server) handleHistoryByID(c *gin.Context) {
	rec, ok := s.ownedScan(c)
	if !ok {
		return
	}

	var result json.RawMessage = []byte(rec.ResultJSON)
	c.JSON(http.StatusOK, result)
}

// handleReportPDF 下载扫描结果的PDF报告
func (s *Server) handleReportPDF(c *gin.Context) {
	rec, ok := s.ownedScan(c)
	if !ok {
		return
	}

	var result model.ScanResult
	if err := json.Unmarshal([]byte(rec.ResultJSON), &result); err != nil {
		failf(c, http.StatusInternalServerError, "stored scan result is corrupted")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="scan-%d.pdf"`, rec.ID))
	if err := s.pdf.Render(&result, c.Writer); err != nil {
		s.logger.Error("渲染PDF失败: %v", err)
	}
}

// ownedScan 取路径中的scan id并校验归属
func (s *Server) ownedScan(c *gin.Context) (*model.ScanRecord, bool) {
	scanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		failf(c, http.StatusBadRequest, "invalid scan id")
		return nil, false
	}

	user := currentUser(c)
	rec, err := s.store.GetScanByID(scanID, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		failf(c, http.StatusNotFound, "Scan not found")
		return nil, false
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return rec, true
}

// rejectionDetail 剥掉sentinel前缀，只保留给用户看的原因
func rejectionDetail(err error) string {
	msg := err.Error()
	prefix := scanner.ErrRejectedInput.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
