package model

import "testing"

func TestAvgValue(t *testing.T) {
	tests := []struct {
		avg    string
		want   float64
		wantOK bool
	}{
		{"55.50", 55.50, true},
		{" 12.3 ", 12.3, true},
		{"0", 0, true},
		{"-1.5", -1.5, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"12,5", 0, false},
	}

	for _, tt := range tests {
		r := MetricRecord{Avg: tt.avg}
		got, ok := r.AvgValue()
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("AvgValue(%q) = %v, %v; want %v, %v", tt.avg, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCategoryString(t *testing.T) {
	if CategoryCPUUtil.String() != "cpu_util" {
		t.Errorf("CategoryCPUUtil = %q", CategoryCPUUtil.String())
	}
	if CategoryMemUtil.String() != "mem_util" {
		t.Errorf("CategoryMemUtil = %q", CategoryMemUtil.String())
	}
	if CategoryOther.String() != "other" {
		t.Errorf("CategoryOther = %q", CategoryOther.String())
	}
}

func TestFlattenPreservesOrder(t *testing.T) {
	hosts := []HostMetrics{
		{Host: "a", Records: []MetricRecord{{Name: "m1"}, {Name: "m2"}}},
		{Host: "b", Records: []MetricRecord{{Name: "m3"}}},
	}
	flat := Flatten(hosts)
	if len(flat) != 3 {
		t.Fatalf("len = %d, want 3", len(flat))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if flat[i].Name != want {
			t.Errorf("flat[%d].Name = %q, want %q", i, flat[i].Name, want)
		}
	}
}

func TestHostName(t *testing.T) {
	if got := HostName("web01.csv", ".csv"); got != "web01" {
		t.Errorf("HostName = %q", got)
	}
	if got := HostName("web01", ".csv"); got != "web01" {
		t.Errorf("HostName without suffix = %q", got)
	}
}
