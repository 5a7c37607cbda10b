package scanner

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

const maxBannerBytes = 140

// DialFunc 建立TCP连接，测试时可替换
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// PortProbe 并发TCP端口探测器
// 并发量由信号量闸门限制，单端口失败不影响整体扫描
type PortProbe struct {
	connectTimeout time.Duration
	bannerTimeout  time.Duration
	concurrency    int64
	dial           DialFunc
	logger         *utils.Logger
}

// NewPortProbe 创建端口探测器
// connectTimeout默认350ms, bannerTimeout默认500ms, concurrency默认250
func NewPortProbe(connectTimeout, bannerTimeout time.Duration, concurrency int) *PortProbe {
	if connectTimeout <= 0 {
		connectTimeout = 350 * time.Millisecond
	}
	if bannerTimeout <= 0 {
		bannerTimeout = 500 * time.Millisecond
	}
	if concurrency < 1 {
		concurrency = 250
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	return &PortProbe{
		connectTimeout: connectTimeout,
		bannerTimeout:  bannerTimeout,
		concurrency:    int64(concurrency),
		dial:           dialer.DialContext,
		logger:         utils.NewLogger("scanner"),
	}
}

// SetDialFunc 替换连接函数（测试用）
func (pp *PortProbe) SetDialFunc(dial DialFunc) {
	pp.dial = dial
}

// Resolve 将目标解析为IP地址，解析失败对整次扫描是致命错误
func (pp *PortProbe) Resolve(ctx context.Context, target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		return target, nil
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, target)
	if err != nil || len(addrs) == 0 {
		return "", fmt.Errorf("解析目标地址失败: %s", target)
	}
	return addrs[0], nil
}

// Scan 扫描[start, end]区间内的所有端口，返回解析出的IP和开放端口列表
// 关闭/过滤端口不出现在结果中，结果顺序不保证按端口号排列
func (pp *PortProbe) Scan(ctx context.Context, target string, start, end int) (string, []model.PortFinding, error) {
	ip, err := pp.Resolve(ctx, target)
	if err != nil {
		return "", nil, err
	}

	return ip, pp.ScanPorts(ctx, ip, portRange(start, end)), nil
}

// ScanPorts 扫描指定端口集合，目标必须是已解析的IP
func (pp *PortProbe) ScanPorts(ctx context.Context, ip string, ports []int) []model.PortFinding {
	sem := semaphore.NewWeighted(pp.concurrency)

	var (
		mu       sync.Mutex
		findings []model.PortFinding
		wg       sync.WaitGroup
	)

	for _, port := range ports {
		// 准入闸门: 在途连接数不超过并发上限，超出的按FIFO排队
		if err := sem.Acquire(ctx, 1); err != nil {
			break // 上层取消，带着已有的部分结果返回
		}

		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			defer sem.Release(1)

			if finding, ok := pp.probePort(ctx, ip, p); ok {
				mu.Lock()
				findings = append(findings, finding)
				mu.Unlock()
			}
		}(port)
	}

	wg.Wait()
	pp.logger.Debug("端口探测完成: %s, 开放 %d 个", ip, len(findings))
	return findings
}

// probePort 探测单个端口，连接失败返回ok=false，不区分关闭与过滤
func (pp *PortProbe) probePort(ctx context.Context, ip string, port int) (model.PortFinding, bool) {
	dialCtx, cancel := context.WithTimeout(ctx, pp.connectTimeout)
	defer cancel()

	conn, err := pp.dial(dialCtx, "tcp", net.JoinHostPort(ip, fmt.Sprintf("%d", port)))
	if err != nil {
		return model.PortFinding{}, false
	}
	defer conn.Close()

	return model.PortFinding{
		Port:    port,
		Service: model.ServiceLabel(port),
		Banner:  pp.grabBanner(conn),
	}, true
}

// grabBanner 机会性banner抓取: 发HTTP HEAD探测包后读取最多140字节
// 任何读写失败都只产生空banner，绝不算作探测失败
func (pp *PortProbe) grabBanner(conn net.Conn) string {
	deadline := time.Now().Add(pp.bannerTimeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return ""
	}

	if _, err := conn.Write([]byte("HEAD / HTTP/1.0\r\n\r\n")); err != nil {
		return ""
	}

	buf := make([]byte, maxBannerBytes)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}

	banner := strings.TrimSpace(string(buf[:n]))
	if len(banner) > maxBannerBytes {
		banner = banner[:maxBannerBytes]
	}
	return banner
}

func portRange(start, end int) []int {
	ports := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		ports = append(ports, p)
	}
	return ports
}
