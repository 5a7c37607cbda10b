package model

import "testing"

func TestServiceLabel(t *testing.T) {
	if got := ServiceLabel(22); got != "SSH" {
		t.Errorf("端口22应为SSH, 实际 %q", got)
	}
	if got := ServiceLabel(54321); got != UnknownService {
		t.Errorf("未收录端口应为 %q, 实际 %q", UnknownService, got)
	}
}

func TestQuickScanPortsMatchTable(t *testing.T) {
	if len(QuickScanPorts) != len(CommonServices) {
		t.Fatalf("quick端口集与端口表数量不符: %d != %d", len(QuickScanPorts), len(CommonServices))
	}
	for _, p := range QuickScanPorts {
		if _, ok := CommonServices[p]; !ok {
			t.Errorf("quick端口 %d 不在端口表中", p)
		}
	}
}
