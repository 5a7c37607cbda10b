// Package risk 实现确定性的风险评分归约
package risk

import (
	"fmt"
	"strings"

	"ZhaoYaoJing/internal/model"
)

// 风险等级阈值（含下界）
const (
	criticalThreshold = 80
	highThreshold     = 60
	mediumThreshold   = 35
)

// 最多保留的评分理由条数
const maxReasons = 8

// Score 纯函数: 把端口、漏洞、响应头、技术栈归约为0-100的风险分
// 相同输入必然产生相同输出，累加顺序即理由列表的规范顺序
func Score(openPorts []model.PortFinding, cveMatches []model.CVEMatch, headers model.HeaderAudit, tech model.TechProfile) model.RiskAssessment {
	score := 0
	var reasons []string

	// 开放端口的基础暴露面
	score += len(openPorts) * 3
	if len(openPorts) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d open ports increase exposure.", len(openPorts)))
	}

	// 高危远程访问端口，与基础分叠加
	for _, p := range openPorts {
		if name, ok := model.RemoteHighRiskPorts[p.Port]; ok {
			score += 18
			reasons = append(reasons, fmt.Sprintf("High-risk remote service exposed: %s on port %d.", name, p.Port))
		}
	}

	// 暴露的数据库端口
	for _, p := range openPorts {
		if name, ok := model.DatabasePorts[p.Port]; ok {
			score += 20
			reasons = append(reasons, fmt.Sprintf("Database port exposed: %s on port %d.", name, p.Port))
		}
	}

	// 有HTTP无HTTPS
	if hasPort(openPorts, 80) && !hasPort(openPorts, 443) {
		score += 12
		reasons = append(reasons, "HTTP detected without HTTPS. Traffic may be unencrypted.")
	}

	// CVE关联命中
	if len(cveMatches) > 0 {
		score += len(cveMatches) * 15
		reasons = append(reasons, fmt.Sprintf("%d CVE groups mapped from detected services.", len(cveMatches)))
	}

	// 安全响应头薄弱
	if headers.Score < 60 {
		score += 10
		reasons = append(reasons, "Security headers are missing/weak (recommended for website hardening).")
	}

	// CDN/WAF略微降低风险
	if len(tech.CDNWAF) > 0 {
		score -= 6
		reasons = append(reasons, fmt.Sprintf("CDN/WAF detected: %s (may reduce attack surface).", strings.Join(tech.CDNWAF, ", ")))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return model.RiskAssessment{
		RiskScore: score,
		RiskLevel: level(score),
		Reasons:   reasons,
	}
}

func level(score int) string {
	switch {
	case score >= criticalThreshold:
		return "CRITICAL"
	case score >= highThreshold:
		return "HIGH"
	case score >= mediumThreshold:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func hasPort(ports []model.PortFinding, port int) bool {
	for _, p := range ports {
		if p.Port == port {
			return true
		}
	}
	return false
}
