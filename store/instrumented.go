package store

import (
	"context"
	"time"

	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
)

type instrumented struct {
	next    Store
	metrics *metrics.Collector
}

// Instrument records latency and failures of every call made through s.
func Instrument(s Store, m *metrics.Collector) Store {
	if m == nil {
		return s
	}
	return &instrumented{next: s, metrics: m}
}

func (i *instrumented) observe(op, table string, start time.Time, err error) {
	i.metrics.StoreQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	if err != nil {
		i.metrics.StoreErrors.WithLabelValues(op, table).Inc()
	}
}

func (i *instrumented) Select(ctx context.Context, table string, q Query, dest any) (err error) {
	defer func(start time.Time) { i.observe("select", table, start, err) }(time.Now())
	return i.next.Select(ctx, table, q, dest)
}

func (i *instrumented) Insert(ctx context.Context, table string, row any) (err error) {
	defer func(start time.Time) { i.observe("insert", table, start, err) }(time.Now())
	return i.next.Insert(ctx, table, row)
}

func (i *instrumented) Upsert(ctx context.Context, table string, row any, onConflict string) (err error) {
	defer func(start time.Time) { i.observe("upsert", table, start, err) }(time.Now())
	return i.next.Upsert(ctx, table, row, onConflict)
}

func (i *instrumented) Update(ctx context.Context, table string, values map[string]any, filters ...Filter) (err error) {
	defer func(start time.Time) { i.observe("update", table, start, err) }(time.Now())
	return i.next.Update(ctx, table, values, filters...)
}

func (i *instrumented) Delete(ctx context.Context, table string, filters ...Filter) (err error) {
	defer func(start time.Time) { i.observe("delete", table, start, err) }(time.Now())
	return i.next.Delete(ctx, table, filters...)
}

func (i *instrumented) Count(ctx context.Context, table string, filters ...Filter) (n int64, err error) {
	defer func(start time.Time) { i.observe("count", table, start, err) }(time.Now())
	return i.next.Count(ctx, table, filters...)
}
