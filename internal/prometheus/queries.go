package prometheus

import "fmt"

// Queries summarize node_exporter CPU and memory utilization per instance
// over the reporting window, expressed as percentages to line up with the
// Zabbix utilization items.

func queryCPU(agg, window, step string) string {
	return fmt.Sprintf(
		`%s_over_time((100 * (1 - avg by (instance) (rate(node_cpu_seconds_total{mode="idle"}[%s]))))[%s:%s])`,
		agg, step, window, step)
}

func queryMemory(agg, window, step string) string {
	return fmt.Sprintf(
		`%s_over_time((100 * (1 - node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes))[%s:%s])`,
		agg, window, step)
}
