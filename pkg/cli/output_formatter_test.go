package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ZhaoYaoJing/internal/model"
)

func sampleResult() *model.ScanResult {
	return &model.ScanResult{
		Target:    "example.com",
		IP:        "93.184.216.34",
		PortRange: "quick",
		ScanMode:  "quick",
		RiskScore: 16,
		RiskLevel: "LOW",
		OpenPorts: []model.PortFinding{
			{Port: 22, Service: "SSH", Banner: "SSH-2.0-OpenSSH_8.9"},
		},
		TotalOpenPorts: 1,
	}
}

func TestPrintResultJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	if err := NewOutputFormatter("json").PrintResult(sampleResult(), path); err != nil {
		t.Fatalf("输出JSON失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取输出文件失败: %v", err)
	}

	var parsed model.ScanResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("输出不是合法JSON: %v", err)
	}
	if parsed.Target != "example.com" || parsed.TotalOpenPorts != 1 {
		t.Errorf("JSON内容不符: %+v", parsed)
	}
}

func TestPrintResultTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")

	if err := NewOutputFormatter("text").PrintResult(sampleResult(), path); err != nil {
		t.Fatalf("输出文本失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取输出文件失败: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "example.com") {
		t.Error("文本输出应包含目标")
	}
	if !strings.Contains(text, "SSH-2.0-OpenSSH_8.9") {
		t.Error("文本输出应包含banner")
	}
	if !strings.Contains(text, "16/100") {
		t.Error("文本输出应包含风险评分")
	}
}
