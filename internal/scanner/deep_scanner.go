package scanner

import (
	"context"
	"encoding/xml"
	"os/exec"
	"sort"
	"strconv"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// RunNmapFunc 执行nmap并返回XML输出，测试时可替换
type RunNmapFunc func(ctx context.Context, target string) ([]byte, error)

// DeepFingerprinter 基于外部nmap的OS与服务版本识别
// 调用失败在此边界内降级为 ("Unknown", nil)，绝不向上抛出
type DeepFingerprinter struct {
	run    RunNmapFunc
	logger *utils.Logger
}

// NewDeepFingerprinter 创建深度指纹识别器
func NewDeepFingerprinter() *DeepFingerprinter {
	return &DeepFingerprinter{
		run:    runNmap,
		logger: utils.NewLogger("deep-scanner"),
	}
}

// SetRunFunc 替换nmap执行函数（测试用）
func (df *DeepFingerprinter) SetRunFunc(run RunNmapFunc) {
	df.run = run
}

// nmap XML输出结构，只取需要的字段
type nmapRun struct {
	Hosts []struct {
		Ports struct {
			Ports []struct {
				PortID   string `xml:"portid,attr"`
				Protocol string `xml:"protocol,attr"`
				State    struct {
					State string `xml:"state,attr"`
				} `xml:"state"`
				Service struct {
					Name      string `xml:"name,attr"`
					Product   string `xml:"product,attr"`
					Version   string `xml:"version,attr"`
					ExtraInfo string `xml:"extrainfo,attr"`
				} `xml:"service"`
			} `xml:"port"`
		} `xml:"ports"`
		OS struct {
			Matches []struct {
				Name string `xml:"name,attr"`
			} `xml:"osmatch"`
		} `xml:"os"`
	} `xml:"host"`
}

// Fingerprint 对目标执行服务版本+OS识别
// 返回OS猜测（尽力而为）和按端口升序的服务列表
func (df *DeepFingerprinter) Fingerprint(ctx context.Context, target string) (string, []model.ServiceRecord) {
	out, err := df.run(ctx, target)
	if err != nil {
		df.logger.Warn("nmap执行失败，降级为空结果: %v", err)
		return "Unknown", nil
	}

	var run nmapRun
	if err := xml.Unmarshal(out, &run); err != nil {
		df.logger.Warn("解析nmap输出失败: %v", err)
		return "Unknown", nil
	}

	if len(run.Hosts) == 0 {
		return "Unknown", nil
	}
	host := run.Hosts[0]

	osGuess := "Unknown"
	if len(host.OS.Matches) > 0 && host.OS.Matches[0].Name != "" {
		osGuess = host.OS.Matches[0].Name
	}

	var services []model.ServiceRecord
	for _, p := range host.Ports.Ports {
		if p.Protocol != "tcp" {
			continue
		}
		port, err := strconv.Atoi(p.PortID)
		if err != nil {
			continue
		}
		services = append(services, model.ServiceRecord{
			Port:      port,
			State:     p.State.State,
			Name:      p.Service.Name,
			Product:   p.Service.Product,
			Version:   p.Service.Version,
			ExtraInfo: p.Service.ExtraInfo,
		})
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i].Port < services[j].Port
	})

	df.logger.Info("深度识别完成: OS=%s, 服务 %d 个", osGuess, len(services))
	return osGuess, services
}

// runNmap 执行 nmap -sV -O --osscan-guess，XML输出到stdout
func runNmap(ctx context.Context, target string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "nmap", "-sV", "-O", "--osscan-guess", "-oX", "-", target)
	return cmd.Output()
}
