package scanner

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolveIPLiteral(t *testing.T) {
	pp := NewPortProbe(0, 0, 0)
	ip, err := pp.Resolve(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("IP字面量不应走DNS解析: %v", err)
	}
	if ip != "192.168.1.10" {
		t.Errorf("期望原样返回IP, 实际得到 %s", ip)
	}
}

func TestResolveFailure(t *testing.T) {
	pp := NewPortProbe(0, 0, 0)
	if _, err := pp.Resolve(context.Background(), "definitely-not-a-real-host.invalid"); err == nil {
		t.Error("无法解析的主机名应返回错误")
	}
}

func TestScanPortsFindsLocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("启动本地监听失败: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 64)
				c.Read(buf)
				c.Write([]byte("SSH-2.0-OpenSSH_8.9\r\n"))
			}(conn)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	pp := NewPortProbe(time.Second, time.Second, 10)

	findings := pp.ScanPorts(context.Background(), "127.0.0.1", []int{port})
	if len(findings) != 1 {
		t.Fatalf("期望发现1个开放端口, 实际 %d", len(findings))
	}
	if findings[0].Port != port {
		t.Errorf("端口号不符: 期望 %d 实际 %d", port, findings[0].Port)
	}
	if findings[0].Banner != "SSH-2.0-OpenSSH_8.9" {
		t.Errorf("banner不符: %q", findings[0].Banner)
	}
}

func TestScanPortsClosedPortOmitted(t *testing.T) {
	// 找一个肯定关闭的端口: 先监听再立刻关掉
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("启动本地监听失败: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	pp := NewPortProbe(200*time.Millisecond, 200*time.Millisecond, 10)
	findings := pp.ScanPorts(context.Background(), "127.0.0.1", []int{port})
	if len(findings) != 0 {
		t.Errorf("关闭端口不应出现在结果中, 实际 %v", findings)
	}
}

func TestScanPortsConcurrencyBound(t *testing.T) {
	const limit = 5

	var inFlight, peak int64
	pp := NewPortProbe(time.Second, time.Second, limit)
	pp.SetDialFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil, fmt.Errorf("connection refused")
	})

	ports := make([]int, 100)
	for i := range ports {
		ports[i] = 1000 + i
	}

	findings := pp.ScanPorts(context.Background(), "127.0.0.1", ports)
	if len(findings) != 0 {
		t.Errorf("全部拒绝时结果应为空, 实际 %d", len(findings))
	}
	if got := atomic.LoadInt64(&peak); got > limit {
		t.Errorf("在途连接峰值 %d 超出并发上限 %d", got, limit)
	}
}

func TestPortRange(t *testing.T) {
	ports := portRange(10, 13)
	if len(ports) != 4 || ports[0] != 10 || ports[3] != 13 {
		t.Errorf("区间展开不符: %v", ports)
	}
}
