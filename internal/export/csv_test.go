package export

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sebas80sebas/zabreport/internal/model"
	"github.com/sebas80sebas/zabreport/internal/source"
)

func TestEncodeDecodeCSV(t *testing.T) {
	hm := model.HostMetrics{
		Host: "web01",
		Records: []model.MetricRecord{
			{Host: "web01", Name: "CPU utilization", Min: 1.5, Max: 99.25, Avg: "42.10", Samples: 720, Unit: "%"},
			{Host: "web01", Name: "Memory utilization", Min: 10, Max: 80, Avg: "N/A", Samples: 0, Unit: "%"},
		},
	}

	data, err := EncodeCSV(hm)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeCSV("web01", data)
	if err != nil {
		t.Fatalf("DecodeCSV failed: %v", err)
	}

	if !reflect.DeepEqual(got, hm) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, hm)
	}
}

func TestDecodeCSVWithoutUnitColumn(t *testing.T) {
	data := []byte("Metric,Min,Max,Avg,Samples\nsystem.cpu.util,0.00,100.00,85.50,30\n")

	hm, err := DecodeCSV("web01", data)
	if err != nil {
		t.Fatal(err)
	}
	if len(hm.Records) != 1 {
		t.Fatalf("records = %+v", hm.Records)
	}
	r := hm.Records[0]
	if r.Unit != "" || r.Avg != "85.50" || r.Min != 0 || r.Max != 100 || r.Samples != 30 {
		t.Errorf("record = %+v", r)
	}
}

func TestDecodeCSVKeepsRawAvg(t *testing.T) {
	data := []byte("Metric,Min,Max,Avg,Samples,Unit\nsystem.cpu.util,0,100,N/A,30,%\n")

	hm, err := DecodeCSV("web01", data)
	if err != nil {
		t.Fatal(err)
	}
	if hm.Records[0].Avg != "N/A" {
		t.Errorf("Avg = %q, want raw N/A", hm.Records[0].Avg)
	}
	if _, ok := hm.Records[0].AvgValue(); ok {
		t.Error("N/A should not parse")
	}
}

func TestDecodeCSVStructuralErrors(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantMetric string
	}{
		{"missing columns", "Metric,Min,Max,Avg,Samples\ncpu,1,2\n", "cpu"},
		{"bad min", "Metric,Min,Max,Avg,Samples\ncpu,x,2,3,4\n", "cpu"},
		{"bad max", "Metric,Min,Max,Avg,Samples\ncpu,1,x,3,4\n", "cpu"},
		{"bad samples", "Metric,Min,Max,Avg,Samples\ncpu,1,2,3,x\n", "cpu"},
		{"negative samples", "Metric,Min,Max,Avg,Samples\ncpu,1,2,3,-1\n", "cpu"},
		{"empty metric", "Metric,Min,Max,Avg,Samples\n,1,2,3,4\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV("web01", []byte(tt.data))
			var hostErr *HostError
			if !errors.As(err, &hostErr) {
				t.Fatalf("expected *HostError, got %v", err)
			}
			if hostErr.Host != "web01" {
				t.Errorf("Host = %q", hostErr.Host)
			}
			if hostErr.Metric != tt.wantMetric {
				t.Errorf("Metric = %q, want %q", hostErr.Metric, tt.wantMetric)
			}
		})
	}
}

func TestDecodeCSVEmpty(t *testing.T) {
	hm, err := DecodeCSV("web01", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hm.Records) != 0 {
		t.Errorf("records = %+v", hm.Records)
	}
}

// fakeStore records uploads.
type fakeStore struct {
	ensured bool
	objects map[string][]byte
}

func (f *fakeStore) EnsureBucket(ctx context.Context) error {
	f.ensured = true
	return nil
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return nil
}

func TestExporterRun(t *testing.T) {
	collector := source.NewStaticCollectorFromHosts([]model.HostMetrics{
		{Host: "web01", Records: []model.MetricRecord{
			{Host: "web01", Name: "system.cpu.util", Min: 0, Max: 100, Avg: "85.50", Samples: 30, Unit: "%"},
		}},
	})
	store := &fakeStore{}

	n, err := NewExporter(collector, store, nil).Run(context.Background(), source.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("uploaded = %d, want 1", n)
	}
	if !store.ensured {
		t.Error("bucket not ensured")
	}
	blob, ok := store.objects["web01.csv"]
	if !ok {
		t.Fatal("web01.csv not uploaded")
	}
	if !strings.HasPrefix(string(blob), "Metric,Min,Max,Avg,Samples,Unit\n") {
		t.Errorf("blob = %q", blob)
	}
}
