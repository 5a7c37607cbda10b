package report

import (
	"fmt"
	"io"
	"time"

	gofpdf "github.com/go-pdf/fpdf"

	"ZhaoYaoJing/internal/model"
)

// PDFWriter 扫描报告PDF渲染器
type PDFWriter struct{}

// NewPDFWriter 创建PDF渲染器
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{}
}

// Render 把扫描结果渲染为PDF并写入w
func (pw *PDFWriter) Render(result *model.ScanResult, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pw.titleSection(pdf, "ZhaoYaoJing - Network Scan Report")

	pw.keyValue(pdf, "Target", result.Target)
	pw.keyValue(pdf, "Resolved IP", result.IP)
	pw.keyValue(pdf, "Port Range", result.PortRange)
	pw.keyValue(pdf, "Scan Mode", result.ScanMode)
	pw.keyValue(pdf, "Report Time", time.Now().UTC().Format("2006-01-02 15:04:05")+" UTC")
	pw.keyValue(pdf, "Risk", fmt.Sprintf("%s (%d/100)", result.RiskLevel, result.RiskScore))
	pdf.Ln(6)

	pw.titleSection(pdf, fmt.Sprintf("Open Ports Found (%d)", len(result.OpenPorts)))
	if len(result.OpenPorts) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 8, "No open ports detected in the given range.", "", "L", false)
	} else {
		pdf.SetFont("Helvetica", "", 11)
		for _, p := range result.OpenPorts {
			line := fmt.Sprintf("Port %d - %s | Banner: %s", p.Port, p.Service, p.Banner)
			pdf.MultiCell(0, 7, line, "", "L", false)
		}
	}
	pdf.Ln(6)

	if len(result.RiskReasons) > 0 {
		pw.titleSection(pdf, "Risk Factors")
		pdf.SetFont("Helvetica", "", 11)
		for _, reason := range result.RiskReasons {
			pdf.MultiCell(0, 7, "- "+reason, "", "L", false)
		}
		pdf.Ln(6)
	}

	pw.titleSection(pdf, "Security Analyst Summary")
	pdf.SetFont("Helvetica", "", 11)
	summary := result.Advisory.Summary
	if summary == "" {
		summary = "No analysis available."
	}
	pdf.MultiCell(0, 7, summary, "", "L", false)
	pdf.Ln(6)

	pw.titleSection(pdf, "Recommendations")
	pdf.SetFont("Helvetica", "", 11)
	for _, rec := range result.Advisory.Recommendations {
		pdf.MultiCell(0, 7, "- "+rec, "", "L", false)
	}

	return pdf.Output(w)
}

func (pw *PDFWriter) titleSection(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
}

func (pw *PDFWriter) keyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 8, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
}
