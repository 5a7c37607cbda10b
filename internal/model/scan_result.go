package model

// ScanRequest 扫描请求
type ScanRequest struct {
	Target    string `json:"target" binding:"required"`
	PortRange string `json:"port_range" binding:"required"` // quick / full / "start-end"
	ScanMode  string `json:"scan_mode"`                     // quick / deep
}

// PortFinding 单个开放端口的探测结果
type PortFinding struct {
	Port    int    `json:"port"`
	Service string `json:"service"` // 静态端口表中的服务名，未知时为 Unknown Service
	Banner  string `json:"banner"`  // 尽力而为，最多140字节
}

// ServiceRecord 深度指纹识别出的服务（按端口升序）
type ServiceRecord struct {
	Port      int    `json:"port"`
	State     string `json:"state"`
	Name      string `json:"name"`
	Product   string `json:"product"`
	Version   string `json:"version"`
	ExtraInfo string `json:"extrainfo"`
}

// HeaderAudit 安全响应头审计结果
type HeaderAudit struct {
	URLChecked string            `json:"url_checked,omitempty"`
	Reachable  bool              `json:"reachable"`
	Present    map[string]string `json:"present"`
	Missing    []string          `json:"missing"`
	Score      int               `json:"score"` // 0-100
}

// TLSFinding TLS证书检查结果
type TLSFinding struct {
	Enabled       bool   `json:"enabled"`
	Port          int    `json:"port"`
	Error         string `json:"error,omitempty"`
	CertSubject   string `json:"cert_subject,omitempty"`
	CertIssuer    string `json:"cert_issuer,omitempty"`
	NotBefore     string `json:"not_before,omitempty"`
	NotAfter      string `json:"not_after,omitempty"`
	DaysRemaining *int   `json:"days_remaining,omitempty"` // 已过期为负数
	TLSVersion    string `json:"tls_version,omitempty"`
}

// TechProfile 技术栈识别结果，标签集合去重且保留首次出现顺序
type TechProfile struct {
	URLChecked string   `json:"url_checked,omitempty"`
	Reachable  bool     `json:"reachable"`
	Server     string   `json:"server,omitempty"`
	PoweredBy  string   `json:"powered_by,omitempty"`
	Framework  []string `json:"framework"`
	CMS        []string `json:"cms"`
	CDNWAF     []string `json:"cdn_waf"`
	Notes      []string `json:"notes"`
}

// CVEEntry 单条漏洞记录
type CVEEntry struct {
	ID      string `json:"cve"`
	Summary string `json:"summary"`
	CVSS    string `json:"cvss"`
}

// CVEMatch 服务与漏洞的关联结果，Query为命中的查询串
type CVEMatch struct {
	Query   string     `json:"query"`
	Service string     `json:"service"`
	Product string     `json:"product"`
	Version string     `json:"version"`
	Port    int        `json:"port"`
	CVEs    []CVEEntry `json:"cves"` // 最多8条
}

// CVEGapNote 没有任何查询命中时的说明记录
type CVEGapNote struct {
	Service string `json:"service"`
	Port    int    `json:"port"`
	Reason  string `json:"reason"`
}

// RiskAssessment 风险评估结果
type RiskAssessment struct {
	RiskScore int      `json:"risk_score"` // 0-100
	RiskLevel string   `json:"risk_level"` // LOW / MEDIUM / HIGH / CRITICAL
	Reasons   []string `json:"reasons"`    // 最多8条，按累加顺序
}

// Advisory 规则化安全建议
type Advisory struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// ScanResult 一次扫描的完整结果，构造后不再修改
type ScanResult struct {
	Target    string `json:"target"`
	IP        string `json:"ip"`
	PortRange string `json:"port_range"`
	ScanMode  string `json:"scan_mode"`

	OSGuess         string          `json:"os_guess"`
	RunningServices []ServiceRecord `json:"running_services"`

	SecurityHeaders HeaderAudit `json:"security_headers"`
	TechStack       TechProfile `json:"tech_stack"`
	SSLTLS          TLSFinding  `json:"ssl_tls"`

	RiskScore   int      `json:"risk_score"`
	RiskLevel   string   `json:"risk_level"`
	RiskReasons []string `json:"risk_reasons"`

	TotalOpenPorts int           `json:"total_open_ports"`
	OpenPorts      []PortFinding `json:"open_ports"`

	CVEFindings []CVEMatch   `json:"cve_findings"`
	CVENotes    []CVEGapNote `json:"cve_notes"`

	Advisory Advisory `json:"advisory"`

	DurationSeconds float64 `json:"duration_seconds"`
}
