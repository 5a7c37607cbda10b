package webprobe

import (
	"crypto/tls"
	"crypto/x509/pkix"
	"fmt"
	"net"
	"strings"
	"time"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// 证书有效期展示格式，与openssl一致
const certTimeLayout = "Jan _2 15:04:05 2006 MST"

// TLSInspector TLS证书检查器
// 只针对指定端口做TLS握手，失败时记录错误而不降级到明文
type TLSInspector struct {
	timeout time.Duration
	tlsConf *tls.Config
	logger  *utils.Logger
}

// NewTLSInspector 创建检查器，使用系统默认信任链
func NewTLSInspector() *TLSInspector {
	return &TLSInspector{
		timeout: 8 * time.Second,
		logger:  utils.NewLogger("tls-inspect"),
	}
}

// SetTLSConfig 替换TLS配置（测试用，比如注入自签发根证书）
func (ti *TLSInspector) SetTLSConfig(conf *tls.Config) {
	ti.tlsConf = conf
}

// Inspect 对target:port做TLS握手并提取证书信息
// days_remaining按UTC计算，已过期为负数
func (ti *TLSInspector) Inspect(target string, port int) model.TLSFinding {
	finding := model.TLSFinding{Port: port}

	conf := ti.tlsConf
	if conf == nil {
		conf = &tls.Config{ServerName: target}
	}

	dialer := &net.Dialer{Timeout: ti.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(target, fmt.Sprintf("%d", port)), conf)
	if err != nil {
		finding.Error = err.Error()
		ti.logger.Debug("TLS握手失败 %s:%d: %v", target, port, err)
		return finding
	}
	defer conn.Close()

	state := conn.ConnectionState()
	finding.Enabled = true
	finding.TLSVersion = tls.VersionName(state.Version)

	if len(state.PeerCertificates) == 0 {
		return finding
	}
	cert := state.PeerCertificates[0]

	finding.CertSubject = formatName(cert.Subject)
	finding.CertIssuer = formatName(cert.Issuer)
	finding.NotBefore = cert.NotBefore.UTC().Format(certTimeLayout)
	finding.NotAfter = cert.NotAfter.UTC().Format(certTimeLayout)

	days := int(cert.NotAfter.Sub(time.Now().UTC()).Hours() / 24)
	finding.DaysRemaining = &days

	return finding
}

// formatName 将证书DN拼成 "key=value, key=value" 形式
func formatName(name pkix.Name) string {
	var parts []string
	for _, c := range name.Country {
		parts = append(parts, "C="+c)
	}
	for _, o := range name.Organization {
		parts = append(parts, "O="+o)
	}
	for _, ou := range name.OrganizationalUnit {
		parts = append(parts, "OU="+ou)
	}
	for _, l := range name.Locality {
		parts = append(parts, "L="+l)
	}
	for _, p := range name.Province {
		parts = append(parts, "ST="+p)
	}
	if name.CommonName != "" {
		parts = append(parts, "CN="+name.CommonName)
	}
	return strings.Join(parts, ", ")
}
