package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("默认监听地址不符: %q", cfg.Server.Addr)
	}
	if cfg.Scan.Concurrency != 250 {
		t.Errorf("默认并发上限不符: %d", cfg.Scan.Concurrency)
	}
	if cfg.Scan.ConnectTimeout() != 350*time.Millisecond {
		t.Errorf("默认连接超时不符: %v", cfg.Scan.ConnectTimeout())
	}
	if cfg.CVE.BaseURL != "https://cve.circl.lu" {
		t.Errorf("默认漏洞搜索地址不符: %q", cfg.CVE.BaseURL)
	}
	if cfg.Auth.TokenTTL() != 24*time.Hour {
		t.Errorf("默认令牌有效期不符: %v", cfg.Auth.TokenTTL())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZYJ_SERVER_ADDR", ":9090")
	t.Setenv("ZYJ_SCAN_CONCURRENCY", "64")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("环境变量应覆盖默认值: %q", cfg.Server.Addr)
	}
	if cfg.Scan.Concurrency != 64 {
		t.Errorf("环境变量应覆盖默认值: %d", cfg.Scan.Concurrency)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  addr: \":7070\"\nscan:\n  service_limit: 5\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("写配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置文件失败: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("配置文件值未生效: %q", cfg.Server.Addr)
	}
	if cfg.Scan.ServiceLimit != 5 {
		t.Errorf("配置文件值未生效: %d", cfg.Scan.ServiceLimit)
	}
	// 未出现在文件中的键仍取默认值
	if cfg.Scan.Concurrency != 250 {
		t.Errorf("缺省键应回落默认值: %d", cfg.Scan.Concurrency)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("显式指定的配置文件不存在时应报错")
	}
}
