package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ZhaoYaoJing/internal/cvedb"
	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/risk"
	"ZhaoYaoJing/internal/utils"
	"ZhaoYaoJing/internal/webprobe"
)

// ErrRejectedInput 请求参数非法（目标无法解析、端口范围错误、模式不识别）
// 此类错误在任何探测开始前同步返回，其余探测失败一律降级为空数据
var ErrRejectedInput = errors.New("rejected input")

// HeaderProber / TechProber / TLSProber / Fingerprinter / CVEProber
// 编排器依赖的探测接口，便于测试替换
type (
	HeaderProber interface {
		Audit(target string) model.HeaderAudit
	}
	TechProber interface {
		Detect(target string) model.TechProfile
	}
	TLSProber interface {
		Inspect(target string, port int) model.TLSFinding
	}
	Fingerprinter interface {
		Fingerprint(ctx context.Context, target string) (string, []model.ServiceRecord)
	}
	CVEProber interface {
		Correlate(ctx context.Context, services []model.ServiceRecord) ([]model.CVEMatch, []model.CVEGapNote)
	}
)

// Orchestrator 把各探测器编排为一次完整扫描
// 流程: 解析 -> 端口探测 -> (深度指纹)? -> {响应头,技术栈,TLS}并行 -> 漏洞关联 -> 风险评分
type Orchestrator struct {
	probe    *PortProbe
	deep     Fingerprinter
	headers  HeaderProber
	tech     TechProber
	tlsProbe TLSProber
	cve      CVEProber
	logger   *utils.Logger
}

// NewOrchestrator 组装扫描编排器
func NewOrchestrator(probe *PortProbe, deep Fingerprinter, headers HeaderProber, tech TechProber, tlsProbe TLSProber, cve CVEProber) *Orchestrator {
	return &Orchestrator{
		probe:    probe,
		deep:     deep,
		headers:  headers,
		tech:     tech,
		tlsProbe: tlsProbe,
		cve:      cve,
		logger:   utils.NewLogger("orchestrator"),
	}
}

// ParsePortSpec 解析端口范围说明
// "quick"返回固定常见端口集, "full"返回1-65535, 其余按"start-end"解析
func ParsePortSpec(spec string) ([]int, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))

	switch spec {
	case "quick":
		ports := make([]int, len(model.QuickScanPorts))
		copy(ports, model.QuickScanPorts)
		return ports, nil
	case "full":
		return portRange(1, 65535), nil
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: Invalid port range. Use quick OR full OR 1-1000", ErrRejectedInput)
	}

	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: Invalid port range. Use quick OR full OR 1-1000", ErrRejectedInput)
	}

	if start < 1 || end > 65535 || start > end {
		return nil, fmt.Errorf("%w: Port range must be between 1-65535", ErrRejectedInput)
	}

	return portRange(start, end), nil
}

// RunScan 执行一次完整扫描
// 只有目标解析失败或参数非法会返回错误，其余失败全部降级为部分数据
func (o *Orchestrator) RunScan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	mode := strings.ToLower(strings.TrimSpace(req.ScanMode))
	if mode == "" {
		mode = "quick"
	}
	if mode != "quick" && mode != "deep" {
		return nil, fmt.Errorf("%w: scan_mode must be quick or deep", ErrRejectedInput)
	}

	ports, err := ParsePortSpec(req.PortRange)
	if err != nil {
		return nil, err
	}

	ip, err := o.probe.Resolve(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: Target domain/IP could not be resolved", ErrRejectedInput)
	}

	o.logger.Info("开始扫描: target=%s ip=%s ports=%d mode=%s", req.Target, ip, len(ports), mode)
	startTime := time.Now()

	// 端口探测，结果按端口号排序后写入最终结果
	openPorts := o.probe.ScanPorts(ctx, ip, ports)
	sort.Slice(openPorts, func(i, j int) bool {
		return openPorts[i].Port < openPorts[j].Port
	})

	// 辅助探测三项互不依赖，与深度指纹+漏洞关联链并行
	var (
		wg      sync.WaitGroup
		headers model.HeaderAudit
		tech    model.TechProfile
		tlsInfo model.TLSFinding

		osGuess  = "Unknown"
		services []model.ServiceRecord
		matches  []model.CVEMatch
		notes    []model.CVEGapNote
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		headers = o.headers.Audit(req.Target)
	}()
	go func() {
		defer wg.Done()
		tech = o.tech.Detect(req.Target)
	}()
	go func() {
		defer wg.Done()
		tlsInfo = o.tlsProbe.Inspect(req.Target, 443)
	}()
	go func() {
		defer wg.Done()
		if mode != "deep" {
			return
		}
		// 漏洞关联依赖指纹输出，两步串行
		osGuess, services = o.deep.Fingerprint(ctx, req.Target)
		matches, notes = o.cve.Correlate(ctx, services)
	}()
	wg.Wait()

	assessment := risk.Score(openPorts, matches, headers, tech)

	result := &model.ScanResult{
		Target:    req.Target,
		IP:        ip,
		PortRange: req.PortRange,
		ScanMode:  mode,

		OSGuess:         osGuess,
		RunningServices: services,

		SecurityHeaders: headers,
		TechStack:       tech,
		SSLTLS:          tlsInfo,

		RiskScore:   assessment.RiskScore,
		RiskLevel:   assessment.RiskLevel,
		RiskReasons: assessment.Reasons,

		TotalOpenPorts: len(openPorts),
		OpenPorts:      openPorts,

		CVEFindings: matches,
		CVENotes:    notes,

		DurationSeconds: roundSeconds(time.Since(startTime)),
	}

	o.logger.Info("扫描完成: target=%s 开放端口=%d 风险=%s(%d) 耗时=%.2fs",
		req.Target, len(openPorts), result.RiskLevel, result.RiskScore, result.DurationSeconds)

	return result, nil
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}

// 编译期检查默认实现满足编排器接口
var (
	_ HeaderProber  = (*webprobe.HeaderAuditor)(nil)
	_ TechProber    = (*webprobe.TechFingerprinter)(nil)
	_ TLSProber     = (*webprobe.TLSInspector)(nil)
	_ Fingerprinter = (*DeepFingerprinter)(nil)
	_ CVEProber     = (*cvedb.Correlator)(nil)
)
