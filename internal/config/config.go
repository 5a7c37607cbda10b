package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Scan    ScanConfig    `mapstructure:"scan"`
	CVE     CVEConfig     `mapstructure:"cve"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`              // 监听地址，如 :8080
	ScanRatePerMin int    `mapstructure:"scan_rate_per_min"` // /scan 接口每分钟限流值
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// ScanConfig 扫描引擎配置
type ScanConfig struct {
	ConnectTimeoutMs int `mapstructure:"connect_timeout_ms"` // 单端口连接超时
	BannerTimeoutMs  int `mapstructure:"banner_timeout_ms"`  // banner读取超时
	Concurrency      int `mapstructure:"concurrency"`        // 并发连接上限
	ServiceLimit     int `mapstructure:"service_limit"`      // CVE关联的服务数上限
}

// CVEConfig 漏洞搜索配置
type CVEConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours"`
}

// StorageConfig 数据库配置
type StorageConfig struct {
	Path string `mapstructure:"path"` // SQLite文件路径
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load 从配置文件和环境变量加载配置
// 查找顺序: 显式路径 -> ./config.yaml -> ./configs/config.yaml
// 环境变量前缀 ZYJ_，如 ZYJ_AUTH_JWT_SECRET
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("ZYJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时使用默认值+环境变量，显式指定路径时仍然报错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			if path != "" {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.scan_rate_per_min", 10)
	v.SetDefault("auth.jwt_secret", "CHANGE_ME")
	v.SetDefault("auth.token_ttl_minutes", 1440)
	v.SetDefault("scan.connect_timeout_ms", 350)
	v.SetDefault("scan.banner_timeout_ms", 500)
	v.SetDefault("scan.concurrency", 250)
	v.SetDefault("scan.service_limit", 12)
	v.SetDefault("cve.base_url", "https://cve.circl.lu")
	v.SetDefault("cve.timeout_sec", 8)
	v.SetDefault("cve.cache_ttl_hours", 24)
	v.SetDefault("storage.path", "database/zhaoyaojing.db")
	v.SetDefault("log.level", "info")
}

// TokenTTL JWT有效期
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// ConnectTimeout 单端口连接超时
func (c *ScanConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

// BannerTimeout banner读取超时
func (c *ScanConfig) BannerTimeout() time.Duration {
	return time.Duration(c.BannerTimeoutMs) * time.Millisecond
}

// Timeout 漏洞搜索请求超时
func (c *CVEConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheTTL 漏洞查询缓存有效期
func (c *CVEConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}
