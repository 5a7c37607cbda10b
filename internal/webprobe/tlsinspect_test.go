package webprobe

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// 生成十天后过期的自签发证书并启动TLS监听
func startTLSServer(t *testing.T) (port int, pool *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"ZhaoYaoJing Test"},
			CommonName:   "127.0.0.1",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().UTC().Add(10*24*time.Hour + time.Hour),
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("签发证书失败: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("解析证书失败: %v", err)
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
	})
	if err != nil {
		t.Fatalf("启动TLS监听失败: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if tc, ok := c.(*tls.Conn); ok {
					tc.Handshake()
				}
			}(conn)
		}
	}()

	pool = x509.NewCertPool()
	pool.AddCert(cert)
	return ln.Addr().(*net.TCPAddr).Port, pool
}

func TestInspectCertificate(t *testing.T) {
	port, pool := startTLSServer(t)

	ti := NewTLSInspector()
	ti.SetTLSConfig(&tls.Config{ServerName: "127.0.0.1", RootCAs: pool})

	finding := ti.Inspect("127.0.0.1", port)
	if !finding.Enabled {
		t.Fatalf("TLS握手应成功: %s", finding.Error)
	}
	if finding.Port != port {
		t.Errorf("端口不符: %d", finding.Port)
	}
	if finding.DaysRemaining == nil || *finding.DaysRemaining != 10 {
		t.Errorf("剩余天数应为10, 实际 %v", finding.DaysRemaining)
	}
	want := "O=ZhaoYaoJing Test, CN=127.0.0.1"
	if finding.CertSubject != want {
		t.Errorf("证书主体不符: %q", finding.CertSubject)
	}
	// 自签发证书的签发者与主体一致
	if finding.CertIssuer != want {
		t.Errorf("签发者不符: %q", finding.CertIssuer)
	}
	if finding.TLSVersion == "" {
		t.Error("TLS版本不应为空")
	}
	if finding.NotAfter == "" || finding.NotBefore == "" {
		t.Error("证书有效期不应为空")
	}
}

func TestInspectHandshakeFailure(t *testing.T) {
	ti := NewTLSInspector()
	finding := ti.Inspect("127.0.0.1", 1)

	if finding.Enabled {
		t.Error("连接失败时Enabled应为false")
	}
	if finding.Error == "" {
		t.Error("连接失败应记录错误信息")
	}
	if finding.DaysRemaining != nil {
		t.Error("连接失败不应有剩余天数")
	}
}
