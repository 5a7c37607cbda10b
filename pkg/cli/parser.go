package cli

import (
	"flag"
	"fmt"
	"os"
)

// Options 命令行选项
type Options struct {
	Serve      bool
	ConfigPath string

	Target       string
	PortRange    string
	ScanMode     string
	OutputFile   string
	OutputFormat string // text, json
}

type Parser struct {
	Options Options
}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse() error {
	var help bool

	flag.BoolVar(&p.Options.Serve, "serve", false, "启动HTTP API服务")
	flag.StringVar(&p.Options.ConfigPath, "config", "", "配置文件路径")
	flag.StringVar(&p.Options.Target, "target", "", "目标IP地址或域名")
	flag.StringVar(&p.Options.PortRange, "ports", "quick", "端口范围 (quick / full / 如: 1-1000)")
	flag.StringVar(&p.Options.ScanMode, "mode", "quick", "扫描模式 (quick / deep)")
	flag.StringVar(&p.Options.OutputFile, "output", "", "输出文件")
	flag.StringVar(&p.Options.OutputFormat, "format", "text", "输出格式 (text, json)")
	flag.BoolVar(&help, "help", false, "显示帮助")

	flag.Parse()

	if help {
		p.printHelp()
		os.Exit(0)
	}

	if !p.Options.Serve && p.Options.Target == "" {
		return fmt.Errorf("必须指定目标地址或使用 -serve 启动服务")
	}

	return nil
}

func (p *Parser) printHelp() {
	fmt.Println("照妖镜 - 单目标网络侦察与风险评估工具")
	fmt.Println("")
	fmt.Println("使用方法: ZhaoYaoJing [选项]")
	fmt.Println("")
	fmt.Println("选项:")
	fmt.Println("  -serve            启动HTTP API服务")
	fmt.Println("  -config string    配置文件路径")
	fmt.Println("  -target string    目标IP地址或域名")
	fmt.Println("  -ports string     端口范围 (quick / full / 1-1000) (默认: quick)")
	fmt.Println("  -mode string      扫描模式 (quick / deep) (默认: quick)")
	fmt.Println("  -output string    输出文件")
	fmt.Println("  -format string    输出格式 (text, json) (默认: text)")
	fmt.Println("  -help             显示帮助")
	fmt.Println("")
	fmt.Println("示例:")
	fmt.Println("  ZhaoYaoJing -target 192.168.1.1 -ports 1-1000")
	fmt.Println("  ZhaoYaoJing -target example.com -mode deep -format json -output result.json")
	fmt.Println("  ZhaoYaoJing -serve -config configs/config.yaml")
}
