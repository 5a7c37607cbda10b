// Package webprobe 提供HTTP层的辅助探测: 安全响应头审计、技术栈识别、TLS证书检查
// 三者都遵循降级不中断策略，目标不可达只产生空结果
package webprobe

import (
	"fmt"
	"net/http"
	"time"
)

// newHTTPClient webprobe共用的HTTP客户端
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}
}

// fetchFirst 按顺序尝试候选URL，返回第一个成功的响应及其最终URL
// 先HTTPS后HTTP的降级逻辑由调用方传入的候选顺序决定
func fetchFirst(client *http.Client, urls []string) (*http.Response, string, bool) {
	for _, url := range urls {
		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		return resp, resp.Request.URL.String(), true
	}
	return nil, "", false
}

// candidateURLs 目标的HTTPS/HTTP候选地址
func candidateURLs(target string) []string {
	return []string{
		fmt.Sprintf("https://%s", target),
		fmt.Sprintf("http://%s", target),
	}
}
