package risk

import (
	"reflect"
	"strings"
	"testing"

	"ZhaoYaoJing/internal/model"
)

func ports(nums ...int) []model.PortFinding {
	var out []model.PortFinding
	for _, n := range nums {
		out = append(out, model.PortFinding{Port: n, Service: model.ServiceLabel(n)})
	}
	return out
}

func TestScoreSSHAndMySQL(t *testing.T) {
	// 22和3306开放: 3+3+18+20 = 44 -> MEDIUM
	result := Score(ports(22, 3306), nil, model.HeaderAudit{Score: 80}, model.TechProfile{})

	if result.RiskScore != 44 {
		t.Errorf("期望评分44, 实际得到 %d", result.RiskScore)
	}
	if result.RiskLevel != "MEDIUM" {
		t.Errorf("期望等级MEDIUM, 实际得到 %s", result.RiskLevel)
	}

	joined := strings.Join(result.Reasons, "\n")
	if !strings.Contains(joined, "2 open ports increase exposure.") {
		t.Errorf("缺少通用暴露理由: %v", result.Reasons)
	}
	if !strings.Contains(joined, "SSH on port 22") {
		t.Errorf("缺少SSH理由: %v", result.Reasons)
	}
	if !strings.Contains(joined, "MySQL on port 3306") {
		t.Errorf("缺少MySQL理由: %v", result.Reasons)
	}
	if strings.Contains(joined, "Security headers") {
		t.Errorf("响应头评分80不应扣分: %v", result.Reasons)
	}
	if strings.Contains(joined, "CDN/WAF") {
		t.Errorf("无CDN不应出现CDN理由: %v", result.Reasons)
	}
}

func TestScoreWeakHeadersWithCDN(t *testing.T) {
	// 无开放端口, 响应头40分, 有CDN: 0+10-6 = 4 -> LOW
	result := Score(nil, nil, model.HeaderAudit{Score: 40}, model.TechProfile{CDNWAF: []string{"Cloudflare"}})

	if result.RiskScore != 4 {
		t.Errorf("期望评分4, 实际得到 %d", result.RiskScore)
	}
	if result.RiskLevel != "LOW" {
		t.Errorf("期望等级LOW, 实际得到 %s", result.RiskLevel)
	}

	joined := strings.Join(result.Reasons, "\n")
	if !strings.Contains(joined, "CDN/WAF detected: Cloudflare") {
		t.Errorf("缺少CDN理由: %v", result.Reasons)
	}
}

func TestScoreClampUpper(t *testing.T) {
	// 大量高危端口+CVE, 未截断累加远超100, 必须钳制到100
	open := ports(22, 23, 3389, 445, 3306, 5432, 27017, 1433, 80)
	matches := make([]model.CVEMatch, 10)

	result := Score(open, matches, model.HeaderAudit{Score: 0}, model.TechProfile{})

	if result.RiskScore != 100 {
		t.Errorf("期望钳制到100, 实际得到 %d", result.RiskScore)
	}
	if result.RiskLevel != "CRITICAL" {
		t.Errorf("期望等级CRITICAL, 实际得到 %s", result.RiskLevel)
	}
	if len(result.Reasons) > 8 {
		t.Errorf("理由最多8条, 实际得到 %d", len(result.Reasons))
	}
}

func TestScoreClampLower(t *testing.T) {
	// 响应头满分只剩CDN减分: 0-6 钳制到0
	result := Score(nil, nil, model.HeaderAudit{Score: 100}, model.TechProfile{CDNWAF: []string{"Akamai"}})

	if result.RiskScore != 0 {
		t.Errorf("期望钳制到0, 实际得到 %d", result.RiskScore)
	}
	if result.RiskLevel != "LOW" {
		t.Errorf("期望等级LOW, 实际得到 %s", result.RiskLevel)
	}
}

func TestScoreHTTPWithoutHTTPS(t *testing.T) {
	with := Score(ports(80), nil, model.HeaderAudit{Score: 100}, model.TechProfile{})
	without := Score(ports(80, 443), nil, model.HeaderAudit{Score: 100}, model.TechProfile{})

	// 80开放443未开放: 3+12=15; 两者都开放: 3+3=6
	if with.RiskScore != 15 {
		t.Errorf("期望15, 实际得到 %d", with.RiskScore)
	}
	if without.RiskScore != 6 {
		t.Errorf("期望6, 实际得到 %d", without.RiskScore)
	}
}

func TestScoreDeterministic(t *testing.T) {
	open := ports(22, 80, 3306)
	matches := []model.CVEMatch{{Query: "nginx 1.18", Port: 80}}
	headers := model.HeaderAudit{Score: 20}
	tech := model.TechProfile{CDNWAF: []string{"Cloudflare", "Akamai"}}

	first := Score(open, matches, headers, tech)
	for i := 0; i < 5; i++ {
		again := Score(open, matches, headers, tech)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("相同输入得到不同输出:\n%+v\n%+v", first, again)
		}
	}

	if first.RiskScore < 0 || first.RiskScore > 100 {
		t.Errorf("评分越界: %d", first.RiskScore)
	}
}
