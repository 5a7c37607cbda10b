// Package report 生成规则化安全建议与PDF扫描报告
package report

import (
	"fmt"
	"strings"

	"ZhaoYaoJing/internal/model"
)

// BuildAdvisory 基于扫描结果生成SOC风格的摘要和加固建议
// 纯规则实现，不依赖任何外部服务
func BuildAdvisory(result *model.ScanResult) model.Advisory {
	var recommendations []string
	var riskNotes []string

	for _, p := range result.OpenPorts {
		switch p.Port {
		case 21:
			riskNotes = append(riskNotes, "FTP detected: plaintext authentication possible.")
			recommendations = append(recommendations, "Disable FTP or migrate to SFTP/FTPS.")
		case 22:
			recommendations = append(recommendations, "Restrict SSH access to trusted IPs and disable password login.")
		case 23:
			riskNotes = append(riskNotes, "TELNET detected: insecure remote access.")
			recommendations = append(recommendations, "Disable TELNET and use SSH instead.")
		case 80:
			recommendations = append(recommendations, "Redirect HTTP to HTTPS and enable secure headers.")
		case 443:
			recommendations = append(recommendations, "Ensure strong TLS configuration and enable HSTS.")
		case 3306:
			riskNotes = append(riskNotes, "Database port exposed: risk of brute force and leakage.")
			recommendations = append(recommendations, "Block DB ports from public access and allow only internal network.")
		case 3389:
			riskNotes = append(riskNotes, "RDP exposed: highly targeted for brute-force attacks.")
			recommendations = append(recommendations, "Use VPN + MFA for RDP and restrict by firewall allowlist.")
		}
	}

	if len(result.OpenPorts) == 0 {
		recommendations = append(recommendations, "No open ports detected in the scanned range. Maintain firewall baseline & monitoring.")
	} else {
		recommendations = append(recommendations, "Close all unused ports and enforce least exposure policy.")
		recommendations = append(recommendations, "Enable IDS/IPS monitoring to detect suspicious port scans.")
	}

	if result.OSGuess != "" && result.OSGuess != "Unknown" {
		riskNotes = append(riskNotes, fmt.Sprintf("OS fingerprint guess: %s", result.OSGuess))
	} else {
		riskNotes = append(riskNotes, "OS fingerprint could not be reliably detected (limited external visibility).")
	}

	if len(result.RunningServices) > 0 {
		recommendations = append(recommendations, "Update exposed services to the latest stable patched versions.")
	} else {
		recommendations = append(recommendations, "Enable service version detection for deeper visibility (deep scan mode).")
	}

	recommendations = dedupe(recommendations)
	riskNotes = dedupe(riskNotes)

	summary := fmt.Sprintf(
		"Scan completed successfully. Detected %d open ports. "+
			"ZhaoYaoJing generated a security posture summary based on network exposure and service hints.",
		len(result.OpenPorts),
	)
	if len(riskNotes) > 0 {
		limit := len(riskNotes)
		if limit > 4 {
			limit = 4
		}
		summary += " Key notes: " + strings.Join(riskNotes[:limit], " | ")
	}

	return model.Advisory{
		Summary:         summary,
		Recommendations: recommendations,
	}
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
