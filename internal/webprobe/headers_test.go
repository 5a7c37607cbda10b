package webprobe

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// 启动仅HTTP的测试服务器, 返回host:port形式的目标
func startTestServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestAuditPartialHeaders(t *testing.T) {
	target := startTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
	})

	ha := NewHeaderAuditor()
	ha.SetClient(newHTTPClient(2 * time.Second))

	audit := ha.Audit(target)
	if !audit.Reachable {
		t.Fatal("测试服务器应可达")
	}
	if audit.Score != 40 {
		t.Errorf("5项中2项存在应得40分, 实际 %d", audit.Score)
	}
	if len(audit.Present) != 2 || len(audit.Missing) != 3 {
		t.Errorf("存在/缺失计数不符: present=%d missing=%d", len(audit.Present), len(audit.Missing))
	}
	if audit.Present["X-Frame-Options"] != "DENY" {
		t.Errorf("应记录响应头原值, 实际 %q", audit.Present["X-Frame-Options"])
	}
}

func TestAuditAllHeaders(t *testing.T) {
	target := startTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		for _, h := range TrackedHeaders {
			w.Header().Set(h, "x")
		}
	})

	ha := NewHeaderAuditor()
	audit := ha.Audit(target)
	if audit.Score != 100 {
		t.Errorf("全部存在应得100分, 实际 %d", audit.Score)
	}
	if len(audit.Missing) != 0 {
		t.Errorf("缺失列表应为空: %v", audit.Missing)
	}
}

func TestAuditUnreachable(t *testing.T) {
	ha := NewHeaderAuditor()
	ha.SetClient(newHTTPClient(500 * time.Millisecond))

	audit := ha.Audit("127.0.0.1:1")
	if audit.Reachable {
		t.Error("不可达目标Reachable应为false")
	}
	if audit.Score != 0 {
		t.Errorf("不可达目标应得0分, 实际 %d", audit.Score)
	}
	if len(audit.Missing) != len(TrackedHeaders) {
		t.Errorf("不可达时全部头应记为缺失: %v", audit.Missing)
	}
}
