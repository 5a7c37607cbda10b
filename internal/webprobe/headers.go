package webprobe

import (
	"math"
	"net/http"
	"time"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// TrackedHeaders 审计的安全响应头集合，顺序固定
var TrackedHeaders = []string{
	"Content-Security-Policy",
	"X-Frame-Options",
	"Strict-Transport-Security",
	"X-Content-Type-Options",
	"Referrer-Policy",
}

// HeaderAuditor 安全响应头审计器
type HeaderAuditor struct {
	client *http.Client
	logger *utils.Logger
}

// NewHeaderAuditor 创建审计器
func NewHeaderAuditor() *HeaderAuditor {
	return &HeaderAuditor{
		client: newHTTPClient(8 * time.Second),
		logger: utils.NewLogger("header-audit"),
	}
}

// SetClient 替换HTTP客户端（测试用）
func (ha *HeaderAuditor) SetClient(client *http.Client) {
	ha.client = client
}

// Audit 检查目标的安全响应头，先HTTPS后HTTP
// 不可达时所有头都记为缺失，score为0
func (ha *HeaderAuditor) Audit(target string) model.HeaderAudit {
	result := model.HeaderAudit{
		Present: make(map[string]string),
		Missing: []string{},
	}

	resp, usedURL, ok := fetchFirst(ha.client, candidateURLs(target))
	if !ok {
		ha.logger.Debug("目标HTTP/HTTPS均不可达: %s", target)
		result.Missing = append(result.Missing, TrackedHeaders...)
		return result
	}
	defer resp.Body.Close()

	result.Reachable = true
	result.URLChecked = usedURL

	found := 0
	for _, h := range TrackedHeaders {
		if v := resp.Header.Get(h); v != "" {
			result.Present[h] = v
			found++
		} else {
			result.Missing = append(result.Missing, h)
		}
	}

	result.Score = int(math.Round(float64(found) / float64(len(TrackedHeaders)) * 100))
	return result
}
