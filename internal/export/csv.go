// Package export moves metric summaries between collectors and the blob
// store as per-host CSV files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/sebas80sebas/zabreport/internal/model"
)

var header = []string{"Metric", "Min", "Max", "Avg", "Samples", "Unit"}

// HostError identifies the host and metric where a CSV was structurally
// invalid. It aborts only that host's contribution to a report.
type HostError struct {
	Host   string
	Metric string
	Err    error
}

func (e *HostError) Error() string {
	if e.Metric == "" {
		return fmt.Sprintf("host %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("host %s, metric %s: %v", e.Host, e.Metric, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }

// EncodeCSV renders one host's records as a CSV blob.
func EncodeCSV(hm model.HostMetrics) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range hm.Records {
		row := []string{
			r.Name,
			strconv.FormatFloat(r.Min, 'f', 2, 64),
			strconv.FormatFloat(r.Max, 'f', 2, 64),
			r.Avg,
			strconv.Itoa(r.Samples),
			r.Unit,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeCSV parses one host's CSV blob. The Avg column is kept raw so
// non-numeric values pass through; a missing column or a non-numeric Min,
// Max or Samples is a structural error reported as a *HostError.
//
// Older exports lack the Unit column; those rows decode with an empty
// unit.
func DecodeCSV(host string, data []byte) (model.HostMetrics, error) {
	hm := model.HostMetrics{Host: host}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return hm, &HostError{Host: host, Err: err}
	}
	if len(rows) == 0 {
		return hm, nil
	}

	for _, row := range rows[1:] {
		if len(row) < 5 {
			return hm, &HostError{Host: host, Metric: first(row), Err: fmt.Errorf("expected at least 5 columns, got %d", len(row))}
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return hm, &HostError{Host: host, Err: fmt.Errorf("empty metric name")}
		}

		minVal, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return hm, &HostError{Host: host, Metric: name, Err: fmt.Errorf("bad Min %q", row[1])}
		}
		maxVal, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return hm, &HostError{Host: host, Metric: name, Err: fmt.Errorf("bad Max %q", row[2])}
		}
		samples, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil || samples < 0 {
			return hm, &HostError{Host: host, Metric: name, Err: fmt.Errorf("bad Samples %q", row[4])}
		}

		unit := ""
		if len(row) > 5 {
			unit = strings.TrimSpace(row[5])
		}

		hm.Records = append(hm.Records, model.MetricRecord{
			Host:    host,
			Name:    name,
			Min:     minVal,
			Max:     maxVal,
			Avg:     strings.TrimSpace(row[3]),
			Samples: samples,
			Unit:    unit,
		})
	}
	return hm, nil
}

func first(row []string) string {
	if len(row) > 0 {
		return row[0]
	}
	return ""
}
