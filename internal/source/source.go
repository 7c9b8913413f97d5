// Package source abstracts where per-host metric summaries come from.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/sebas80sebas/zabreport/internal/model"
)

var (
	// ErrUnreachable means the metrics backend did not answer.
	ErrUnreachable = errors.New("metrics backend unreachable")
	// ErrNoData means the backend answered but produced no usable records.
	ErrNoData = errors.New("no metric data found for the reporting window")
)

// Options configure a collection run.
type Options struct {
	From time.Time
	Till time.Time
}

// Collector gathers one ordered metric summary sequence per host for the
// reporting window.
type Collector interface {
	Collect(ctx context.Context, opts Options) ([]model.HostMetrics, error)

	// Ping validates connectivity to the backend.
	Ping(ctx context.Context) error

	// BackendType identifies the backend ("zabbix", "prometheus", "static").
	BackendType() string
}
