package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ZhaoYaoJing/internal/auth"
	"ZhaoYaoJing/internal/config"
	"ZhaoYaoJing/internal/cvedb"
	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/report"
	"ZhaoYaoJing/internal/scanner"
	"ZhaoYaoJing/internal/server"
	"ZhaoYaoJing/internal/storage"
	"ZhaoYaoJing/internal/utils"
	"ZhaoYaoJing/internal/webprobe"
	"ZhaoYaoJing/pkg/cli"
)

func main() {
	// .env存在时加载，环境变量优先级仍高于配置文件
	_ = godotenv.Load()

	parser := cli.NewParser()
	if err := parser.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "使用 -help 查看完整帮助信息\n")
		os.Exit(1)
	}
	options := parser.Options

	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.Log.Level)

	logger := utils.NewLogger("main")
	logger.Info("启动照妖镜 v1.0")

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Error("初始化数据库失败: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	orch, err := buildOrchestrator(cfg, store)
	if err != nil {
		logger.Error("初始化扫描引擎失败: %v", err)
		os.Exit(1)
	}

	if options.Serve {
		runServer(cfg, store, orch, logger)
		return
	}

	runOneShot(orch, options, logger)
}

// buildOrchestrator 组装扫描编排器及其全部探测器
func buildOrchestrator(cfg *config.Config, store *storage.Store) (*scanner.Orchestrator, error) {
	probe := scanner.NewPortProbe(cfg.Scan.ConnectTimeout(), cfg.Scan.BannerTimeout(), cfg.Scan.Concurrency)
	deep := scanner.NewDeepFingerprinter()

	searchClient := cvedb.NewSearchClient(cfg.CVE.BaseURL, cfg.CVE.Timeout())
	cache, err := cvedb.NewCache(store.DB(), cfg.CVE.CacheTTL())
	if err != nil {
		return nil, err
	}
	correlator := cvedb.NewCorrelator(searchClient, cache, cfg.Scan.ServiceLimit)

	return scanner.NewOrchestrator(
		probe,
		deep,
		webprobe.NewHeaderAuditor(),
		webprobe.NewTechFingerprinter(),
		webprobe.NewTLSInspector(),
		correlator,
	), nil
}

// runServer 启动HTTP API服务
func runServer(cfg *config.Config, store *storage.Store, orch *scanner.Orchestrator, logger *utils.Logger) {
	adminHash, err := auth.HashPassword("Admin@123")
	if err == nil {
		if err := store.EnsureDefaultAdmin("admin@zhaoyaojing.local", adminHash); err != nil {
			logger.Warn("创建默认管理员失败: %v", err)
		}
	}

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	srv := server.New(cfg, store, jwtMgr, orch)

	if err := srv.Run(); err != nil {
		logger.Error("HTTP服务退出: %v", err)
		os.Exit(1)
	}
}

// runOneShot 终端一次性扫描
func runOneShot(orch *scanner.Orchestrator, options cli.Options, logger *utils.Logger) {
	result, err := orch.RunScan(context.Background(), model.ScanRequest{
		Target:    options.Target,
		PortRange: options.PortRange,
		ScanMode:  options.ScanMode,
	})
	if err != nil {
		logger.Error("扫描失败: %v", err)
		os.Exit(1)
	}
	result.Advisory = report.BuildAdvisory(result)

	formatter := cli.NewOutputFormatter(options.OutputFormat)
	if err := formatter.PrintResult(result, options.OutputFile); err != nil {
		logger.Error("输出结果失败: %v", err)
		os.Exit(1)
	}
}
