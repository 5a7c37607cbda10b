package model

// UnknownService 端口表未收录时的服务名
const UnknownService = "Unknown Service"

// CommonServices 常见端口与服务名映射
var CommonServices = map[int]string{
	21:   "FTP",
	22:   "SSH",
	23:   "TELNET",
	25:   "SMTP",
	53:   "DNS",
	80:   "HTTP",
	110:  "POP3",
	139:  "NETBIOS",
	143:  "IMAP",
	443:  "HTTPS",
	445:  "SMB",
	3306: "MySQL",
	3389: "RDP",
	8080: "HTTP-ALT",
}

// QuickScanPorts quick模式扫描的固定端口集合
var QuickScanPorts = []int{
	21, 22, 23, 25, 53, 80, 110, 139, 143, 443, 445, 3306, 3389, 8080,
}

// RemoteHighRiskPorts 高危远程访问端口
var RemoteHighRiskPorts = map[int]string{
	22:   "SSH",
	23:   "TELNET",
	3389: "RDP",
	445:  "SMB",
}

// DatabasePorts 数据库端口
var DatabasePorts = map[int]string{
	3306:  "MySQL",
	5432:  "PostgreSQL",
	27017: "MongoDB",
	1433:  "MSSQL",
}

// ServiceLabel 查端口表取服务名
func ServiceLabel(port int) string {
	if name, ok := CommonServices[port]; ok {
		return name
	}
	return UnknownService
}
