package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"ZhaoYaoJing/internal/model"
)

type OutputFormatter struct {
	format string
}

func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{format: format}
}

func (of *OutputFormatter) PrintResult(result *model.ScanResult, outputFile string) error {
	var output string

	switch strings.ToLower(of.format) {
	case "json":
		output = of.formatJSON(result)
	default:
		output = of.formatText(result)
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(output), 0644)
	}

	fmt.Print(output)
	return nil
}

func (of *OutputFormatter) formatJSON(result *model.ScanResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data) + "\n"
}

// formatText 终端文本输出
func (of *OutputFormatter) formatText(result *model.ScanResult) string {
	var builder strings.Builder

	builder.WriteString("\n📡 照妖镜网络侦察 v1.0\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")

	builder.WriteString(fmt.Sprintf("目标: %s (%s)\n", result.Target, result.IP))
	builder.WriteString(fmt.Sprintf("端口范围: %s | 模式: %s\n", result.PortRange, result.ScanMode))
	builder.WriteString(fmt.Sprintf("耗时: %.2f秒\n\n", result.DurationSeconds))

	// 风险概要
	builder.WriteString(fmt.Sprintf("⚠️  风险评分: %d/100 (%s)\n", result.RiskScore, result.RiskLevel))
	for _, reason := range result.RiskReasons {
		builder.WriteString(fmt.Sprintf("   - %s\n", reason))
	}
	builder.WriteString("\n")

	if len(result.OpenPorts) == 0 {
		builder.WriteString("❌ 未发现开放端口\n")
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("🔍 开放端口 (%d个):\n", len(result.OpenPorts)))
	builder.WriteString(strings.Repeat("─", 60) + "\n")

	w := tabwriter.NewWriter(&builder, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "端口\t服务\tBanner")
	for _, p := range result.OpenPorts {
		banner := p.Banner
		if len(banner) > 60 {
			banner = banner[:60] + "..."
		}
		banner = strings.ReplaceAll(banner, "\n", " ")
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.Port, p.Service, banner)
	}
	w.Flush()

	// 深度模式下的服务与漏洞信息
	if len(result.RunningServices) > 0 {
		builder.WriteString(fmt.Sprintf("\n🧬 识别服务 (%d个), OS猜测: %s\n", len(result.RunningServices), result.OSGuess))
		for _, svc := range result.RunningServices {
			builder.WriteString(fmt.Sprintf("   %d/%s %s %s %s\n", svc.Port, svc.State, svc.Name, svc.Product, svc.Version))
		}
	}

	if len(result.CVEFindings) > 0 {
		builder.WriteString(fmt.Sprintf("\n🐞 漏洞关联 (%d组):\n", len(result.CVEFindings)))
		for _, m := range result.CVEFindings {
			builder.WriteString(fmt.Sprintf("   端口 %d [%s]:\n", m.Port, m.Query))
			for _, cve := range m.CVEs {
				builder.WriteString(fmt.Sprintf("     %s (CVSS %s)\n", cve.ID, cve.CVSS))
			}
		}
	}

	for _, note := range result.CVENotes {
		builder.WriteString(fmt.Sprintf("   ℹ️  %s (端口 %d): %s\n", note.Service, note.Port, note.Reason))
	}

	builder.WriteString("\n")
	return builder.String()
}
