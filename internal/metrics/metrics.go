// Package metrics exposes the engine's Prometheus counters and gauges:
// documents analyzed, call cache hits/misses, resource admission queue
// depth, and task retries. Grounded on kraklabs-cie's pkg/ingestion/
// metrics.go (a package-level singleton struct, lazily registered once via
// sync.Once, exposing small increment/observe helper functions to callers
// that otherwise don't need to know Prometheus exists).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	once sync.Once

	documentsAnalyzed prometheus.Counter

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	resourceParked  prometheus.Gauge
	resourceCPUUsed prometheus.Gauge
	resourceMemUsed prometheus.Gauge

	taskRetries prometheus.Counter
	taskFailed  prometheus.Counter
}

var m engineMetrics

func (m *engineMetrics) init() {
	m.once.Do(func() {
		m.documentsAnalyzed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdlc_documents_analyzed_total",
			Help: "WDL documents that completed semantic analysis.",
		})
		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdlc_cache_hits_total",
			Help: "Call cache lookups that found a usable entry.",
		})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdlc_cache_misses_total",
			Help: "Call cache lookups that found no usable entry.",
		})
		m.resourceParked = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdlc_resource_parked_tasks",
			Help: "Tasks currently parked waiting on resource admission.",
		})
		m.resourceCPUUsed = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdlc_resource_cpu_used",
			Help: "CPU units currently admitted and in use.",
		})
		m.resourceMemUsed = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdlc_resource_memory_used_bytes",
			Help: "Memory bytes currently admitted and in use.",
		})
		m.taskRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdlc_task_retries_total",
			Help: "Task execution attempts beyond the first.",
		})
		m.taskFailed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdlc_task_failed_total",
			Help: "Task executions that failed after exhausting retries.",
		})
		prometheus.MustRegister(
			m.documentsAnalyzed,
			m.cacheHits, m.cacheMisses,
			m.resourceParked, m.resourceCPUUsed, m.resourceMemUsed,
			m.taskRetries, m.taskFailed,
		)
	})
}

func DocumentAnalyzed() { m.init(); m.documentsAnalyzed.Inc() }

func CacheHit()  { m.init(); m.cacheHits.Inc() }
func CacheMiss() { m.init(); m.cacheMisses.Inc() }

func SetParked(n int)        { m.init(); m.resourceParked.Set(float64(n)) }
func SetCPUUsed(cpu float64) { m.init(); m.resourceCPUUsed.Set(cpu) }
func SetMemUsed(bytes int64) { m.init(); m.resourceMemUsed.Set(float64(bytes)) }

func TaskRetried() { m.init(); m.taskRetries.Inc() }
func TaskFailed()  { m.init(); m.taskFailed.Inc() }
