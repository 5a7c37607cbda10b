// Package cvedb 负责服务与漏洞库的关联: 外部搜索客户端、查询缓存、多级回退关联器
package cvedb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// 单次查询最多保留的结果数
const maxResults = 8

// SearchClient CIRCL CVE Search接口客户端
// 任何传输错误、非200状态或畸形响应都只产生空结果，绝不报错
type SearchClient struct {
	baseURL    string
	logger     *utils.Logger
	httpClient *http.Client
}

// NewSearchClient 创建漏洞搜索客户端
func NewSearchClient(baseURL string, timeout time.Duration) *SearchClient {
	if baseURL == "" {
		baseURL = "https://cve.circl.lu"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &SearchClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  utils.NewLogger("cve-search"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// 搜索接口的响应结构
type searchResponse struct {
	Data []struct {
		ID      string      `json:"id"`
		Summary string      `json:"summary"`
		CVSS    interface{} `json:"cvss"` // 接口可能返回数字或字符串
	} `json:"data"`
}

// Search 查询漏洞库，返回最多8条结果
// 查询串短于3个字符直接跳过
func (sc *SearchClient) Search(ctx context.Context, query string) []model.CVEEntry {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 3 {
		return nil
	}

	reqURL := fmt.Sprintf("%s/api/search/%s", sc.baseURL, url.PathEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "ZhaoYaoJing/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		sc.logger.Debug("漏洞搜索请求失败 %q: %v", query, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sc.logger.Debug("漏洞搜索返回 %s: %q", resp.Status, query)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		sc.logger.Debug("解析漏洞搜索响应失败: %v", err)
		return nil
	}

	var entries []model.CVEEntry
	for _, item := range parsed.Data {
		if len(entries) >= maxResults {
			break
		}
		entries = append(entries, model.CVEEntry{
			ID:      orDefault(item.ID, "N/A"),
			Summary: orDefault(item.Summary, "No description"),
			CVSS:    formatCVSS(item.CVSS),
		})
	}

	return entries
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatCVSS(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "N/A"
	case string:
		if val == "" {
			return "N/A"
		}
		return val
	case float64:
		return fmt.Sprintf("%.1f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
