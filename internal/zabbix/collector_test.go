package zabbix

import (
	"context"
	"testing"
	"time"

	"github.com/sebas80sebas/zabreport/internal/source"
)

func TestCollectTrendSummary(t *testing.T) {
	_, c := newFake(t, map[string]func(params map[string]any) (any, *apiError){
		"user.login":      func(map[string]any) (any, *apiError) { return "tok", nil },
		"apiinfo.version": func(map[string]any) (any, *apiError) { return "7.0.0", nil },
		"host.get": func(map[string]any) (any, *apiError) {
			return []map[string]string{{"hostid": "1", "host": "web01"}}, nil
		},
		"item.get": func(params map[string]any) (any, *apiError) {
			return []map[string]any{
				{"itemid": "10", "name": "CPU utilization", "key_": "system.cpu.util", "value_type": "0", "units": "%"},
			}, nil
		},
		"trend.get": func(map[string]any) (any, *apiError) {
			// Two buckets: weighted avg = (10*30 + 40*10) / 40 = 17.5.
			return []map[string]string{
				{"min": "2", "max": "60", "avg": "10", "num": "30"},
				{"min": "5", "max": "95", "avg": "40", "num": "10"},
			}, nil
		},
	})

	col := NewCollector(c, "admin", "secret", nil)
	hosts, err := col.Collect(context.Background(), source.Options{
		From: time.Now().Add(-30 * 24 * time.Hour),
		Till: time.Now(),
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(hosts) != 1 || len(hosts[0].Records) != 1 {
		t.Fatalf("unexpected result: %+v", hosts)
	}
	rec := hosts[0].Records[0]
	if rec.Host != "web01" || rec.Name != "CPU utilization" || rec.Unit != "%" {
		t.Errorf("record identity = %+v", rec)
	}
	if rec.Min != 2 || rec.Max != 95 {
		t.Errorf("min/max = %v/%v, want 2/95", rec.Min, rec.Max)
	}
	if rec.Avg != "17.50" {
		t.Errorf("avg = %q, want 17.50 (sample-weighted)", rec.Avg)
	}
	if rec.Samples != 2 {
		t.Errorf("samples = %d, want 2 (trend buckets)", rec.Samples)
	}
}

func TestCollectHistoryFallback(t *testing.T) {
	f, c := newFake(t, map[string]func(params map[string]any) (any, *apiError){
		"user.login":      func(map[string]any) (any, *apiError) { return "tok", nil },
		"apiinfo.version": func(map[string]any) (any, *apiError) { return "7.0.0", nil },
		"host.get": func(map[string]any) (any, *apiError) {
			return []map[string]string{{"hostid": "1", "host": "db01"}}, nil
		},
		"item.get": func(map[string]any) (any, *apiError) {
			return []map[string]any{
				{"itemid": "20", "name": "Memory utilization", "key_": "vm.memory.utilization", "value_type": "0", "units": "%"},
			}, nil
		},
		"trend.get": func(map[string]any) (any, *apiError) {
			return []any{}, nil
		},
		"history.get": func(map[string]any) (any, *apiError) {
			return []map[string]string{{"value": "10"}, {"value": "20"}, {"value": "60"}}, nil
		},
	})

	col := NewCollector(c, "admin", "secret", nil)
	hosts, err := col.Collect(context.Background(), source.Options{})
	if err != nil {
		t.Fatal(err)
	}

	rec := hosts[0].Records[0]
	if rec.Min != 10 || rec.Max != 60 || rec.Avg != "30.00" || rec.Samples != 3 {
		t.Errorf("record = %+v", rec)
	}

	var sawHistory bool
	for _, m := range f.calls {
		if m == "history.get" {
			sawHistory = true
		}
	}
	if !sawHistory {
		t.Error("expected fallback to history.get")
	}
}

func TestCollectSkipsHostsWithoutData(t *testing.T) {
	_, c := newFake(t, map[string]func(params map[string]any) (any, *apiError){
		"user.login":      func(map[string]any) (any, *apiError) { return "tok", nil },
		"apiinfo.version": func(map[string]any) (any, *apiError) { return "7.0.0", nil },
		"host.get": func(map[string]any) (any, *apiError) {
			return []map[string]string{{"hostid": "1", "host": "idle01"}}, nil
		},
		"item.get":    func(map[string]any) (any, *apiError) { return []any{}, nil },
		"trend.get":   func(map[string]any) (any, *apiError) { return []any{}, nil },
		"history.get": func(map[string]any) (any, *apiError) { return []any{}, nil },
	})

	col := NewCollector(c, "admin", "secret", nil)
	if _, err := col.Collect(context.Background(), source.Options{}); err != source.ErrNoData {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
