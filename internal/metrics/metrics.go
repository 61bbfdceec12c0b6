// Package metrics exposes Prometheus collectors for task and registry
// activity. Collectors registers itself on a private registry so several
// instances can coexist in one process.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/monox/internal/orchestrator"
)

const namespace = "monox"

// Registry lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// Collectors holds every instrument. It implements orchestrator.Observer.
type Collectors struct {
	reg *prometheus.Registry

	mu      sync.Mutex
	running map[runningKey]struct{}

	TasksTotal      *prometheus.CounterVec
	TaskDuration    *prometheus.HistogramVec
	TasksRunning    prometheus.Gauge
	StageDuration   prometheus.Histogram
	RunsTotal       *prometheus.CounterVec
	RegistryLookups *prometheus.CounterVec
}

type runningKey struct {
	stage int
	pkg   string
}

var _ orchestrator.Observer = (*Collectors)(nil)

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collectors{
		reg:     reg,
		running: make(map[runningKey]struct{}),
		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Finished tasks by result.",
		}, []string{"result"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of finished tasks, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"result"}),
		TasksRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_running",
			Help:      "Tasks currently holding a concurrency permit.",
		}),
		StageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of finished stages.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished script runs by result.",
		}, []string{"result"}),
		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_lookups_total",
			Help:      "Registry latest-version lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (c *Collectors) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *Collectors) TaskStarted(stage int, pkg string) {
	c.mu.Lock()
	c.running[runningKey{stage, pkg}] = struct{}{}
	c.mu.Unlock()
	c.TasksRunning.Inc()
}

// TaskCompleted also receives tasks cancelled before they started; those
// never touched the running gauge.
func (c *Collectors) TaskCompleted(stage int, report orchestrator.TaskReport) {
	key := runningKey{stage, report.Package}
	c.mu.Lock()
	_, started := c.running[key]
	delete(c.running, key)
	c.mu.Unlock()
	if started {
		c.TasksRunning.Dec()
	}

	result := report.Status.String()
	c.TasksTotal.WithLabelValues(result).Inc()
	c.TaskDuration.WithLabelValues(result).Observe(report.Duration.Seconds())
}

func (c *Collectors) StageCompleted(summary orchestrator.StageSummary) {
	c.StageDuration.Observe(summary.Duration.Seconds())
}

func (c *Collectors) RunCompleted(summary *orchestrator.RunSummary) {
	result := "success"
	if !summary.OK() {
		result = "failure"
	}
	c.RunsTotal.WithLabelValues(result).Inc()
}

func (c *Collectors) RegistryLookup(_ string, found bool) {
	outcome := OutcomeNotFound
	if found {
		outcome = OutcomeFound
	}
	c.RegistryLookups.WithLabelValues(outcome).Inc()
}
