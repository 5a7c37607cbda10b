package webprobe

import (
	"io"
	"net/http"
	"strings"
	"time"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// 正文检查上限，超出部分不参与匹配
const maxBodyBytes = 120000

// TechFingerprinter 基于响应头和HTML特征的技术栈识别器
type TechFingerprinter struct {
	client *http.Client
	logger *utils.Logger
}

// NewTechFingerprinter 创建识别器
func NewTechFingerprinter() *TechFingerprinter {
	return &TechFingerprinter{
		client: newHTTPClient(10 * time.Second),
		logger: utils.NewLogger("tech-detect"),
	}
}

// SetClient 替换HTTP客户端（测试用）
func (tf *TechFingerprinter) SetClient(client *http.Client) {
	tf.client = client
}

// Detect 识别目标的Web技术栈，先HTTPS后HTTP
// 所有标签集合去重并保留首次出现顺序
func (tf *TechFingerprinter) Detect(target string) model.TechProfile {
	profile := model.TechProfile{
		Framework: []string{},
		CMS:       []string{},
		CDNWAF:    []string{},
		Notes:     []string{},
	}

	resp, usedURL, ok := fetchFirst(tf.client, candidateURLs(target))
	if !ok {
		profile.Notes = append(profile.Notes, "Target is not reachable via HTTP/HTTPS.")
		return profile
	}
	defer resp.Body.Close()

	profile.Reachable = true
	profile.URLChecked = usedURL

	// 响应头特征
	server := resp.Header.Get("Server")
	powered := resp.Header.Get("X-Powered-By")
	serverLower := strings.ToLower(server)

	if server != "" {
		profile.Server = server
		if strings.Contains(serverLower, "nginx") {
			profile.Framework = append(profile.Framework, "Nginx Web Server")
		}
		if strings.Contains(serverLower, "apache") {
			profile.Framework = append(profile.Framework, "Apache HTTP Server")
		}
		if strings.Contains(serverLower, "iis") {
			profile.Framework = append(profile.Framework, "Microsoft IIS")
		}
	}

	if powered != "" {
		profile.PoweredBy = powered
		poweredLower := strings.ToLower(powered)
		if strings.Contains(poweredLower, "php") {
			profile.Framework = append(profile.Framework, "PHP Backend")
		}
		if strings.Contains(poweredLower, "express") {
			profile.Framework = append(profile.Framework, "Node.js Express")
		}
	}

	// CDN/WAF特征
	if resp.Header.Get("CF-Ray") != "" || strings.Contains(serverLower, "cloudflare") {
		profile.CDNWAF = append(profile.CDNWAF, "Cloudflare")
	}
	if strings.Contains(serverLower, "akamai") {
		profile.CDNWAF = append(profile.CDNWAF, "Akamai")
	}
	if resp.Header.Get("X-Sucuri-Id") != "" || strings.Contains(serverLower, "sucuri") {
		profile.CDNWAF = append(profile.CDNWAF, "Sucuri WAF")
	}

	// HTML特征，只读前120000字节
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		tf.logger.Debug("读取响应正文失败: %v", err)
	}
	html := string(body)
	htmlLower := strings.ToLower(html)

	if strings.Contains(html, "__NEXT_DATA__") {
		profile.Framework = append(profile.Framework, "Next.js")
	}
	if strings.Contains(htmlLower, "react") {
		profile.Framework = append(profile.Framework, "React (possible)")
	}
	if strings.Contains(html, "wp-content") || strings.Contains(html, "wp-includes") {
		profile.CMS = append(profile.CMS, "WordPress")
	}
	if strings.Contains(htmlLower, "laravel") {
		profile.Framework = append(profile.Framework, "Laravel (possible)")
	}
	if strings.Contains(htmlLower, "joomla") {
		profile.CMS = append(profile.CMS, "Joomla (possible)")
	}
	if hasCSRFCookie(resp) || strings.Contains(htmlLower, "django") {
		profile.Framework = append(profile.Framework, "Django (possible)")
	}

	profile.Framework = dedupe(profile.Framework)
	profile.CMS = dedupe(profile.CMS)
	profile.CDNWAF = dedupe(profile.CDNWAF)

	return profile
}

// hasCSRFCookie Django特征: csrftoken cookie
func hasCSRFCookie(resp *http.Response) bool {
	for _, c := range resp.Cookies() {
		if strings.EqualFold(c.Name, "csrftoken") {
			return true
		}
	}
	return false
}

// dedupe 去重并保留首次出现顺序
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
