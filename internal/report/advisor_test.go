package report

import (
	"strings"
	"testing"

	"ZhaoYaoJing/internal/model"
)

func TestBuildAdvisoryPortRules(t *testing.T) {
	result := &model.ScanResult{
		OpenPorts: []model.PortFinding{
			{Port: 22, Service: "SSH"},
			{Port: 3306, Service: "MySQL"},
		},
		OSGuess: "Unknown",
	}

	advisory := BuildAdvisory(result)

	wantRecs := []string{
		"Restrict SSH access to trusted IPs and disable password login.",
		"Block DB ports from public access and allow only internal network.",
		"Close all unused ports and enforce least exposure policy.",
	}
	for _, want := range wantRecs {
		if !contains(advisory.Recommendations, want) {
			t.Errorf("建议中缺少: %q", want)
		}
	}

	if !strings.Contains(advisory.Summary, "Detected 2 open ports") {
		t.Errorf("摘要应包含开放端口数: %q", advisory.Summary)
	}
	if !strings.Contains(advisory.Summary, "Key notes: ") {
		t.Errorf("有风险提示时摘要应带Key notes: %q", advisory.Summary)
	}
	if !strings.Contains(advisory.Summary, "Database port exposed") {
		t.Errorf("摘要应包含数据库暴露提示: %q", advisory.Summary)
	}
}

func TestBuildAdvisoryNoOpenPorts(t *testing.T) {
	advisory := BuildAdvisory(&model.ScanResult{OSGuess: "Unknown"})

	if !contains(advisory.Recommendations, "No open ports detected in the scanned range. Maintain firewall baseline & monitoring.") {
		t.Errorf("无开放端口应有基线建议: %v", advisory.Recommendations)
	}
	if contains(advisory.Recommendations, "Close all unused ports and enforce least exposure policy.") {
		t.Error("无开放端口不应出现关闭端口建议")
	}
	if !strings.Contains(advisory.Summary, "Detected 0 open ports") {
		t.Errorf("摘要不符: %q", advisory.Summary)
	}
}

func TestBuildAdvisoryOSGuessNote(t *testing.T) {
	advisory := BuildAdvisory(&model.ScanResult{
		OSGuess: "Linux 5.4",
		RunningServices: []model.ServiceRecord{
			{Port: 80, Name: "http", Product: "nginx"},
		},
	})

	if !strings.Contains(advisory.Summary, "OS fingerprint guess: Linux 5.4") {
		t.Errorf("摘要应包含OS指纹: %q", advisory.Summary)
	}
	if !contains(advisory.Recommendations, "Update exposed services to the latest stable patched versions.") {
		t.Errorf("有服务指纹时应有升级建议: %v", advisory.Recommendations)
	}
}

func TestBuildAdvisoryDedupe(t *testing.T) {
	// 两个HTTP端口不应产生重复建议
	result := &model.ScanResult{
		OpenPorts: []model.PortFinding{
			{Port: 80}, {Port: 80},
		},
		OSGuess: "Unknown",
	}

	advisory := BuildAdvisory(result)
	seen := make(map[string]int)
	for _, rec := range advisory.Recommendations {
		seen[rec]++
		if seen[rec] > 1 {
			t.Errorf("建议重复: %q", rec)
		}
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
