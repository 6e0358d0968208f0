package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

var (
	// RunsTotal counts pipeline runs by terminal outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_runs_total",
		Help: "Pipeline runs by terminal outcome.",
	}, []string{"outcome"})

	// AssetsTotal counts generated assets by stage and status.
	AssetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_assets_total",
		Help: "Generated assets by stage and status.",
	}, []string{"stage", "status"})

	// DuplicateTopicsTotal counts submissions rejected as near-duplicates.
	DuplicateTopicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shorts_duplicate_topics_total",
		Help: "Topic submissions rejected by the deduplicator.",
	})

	// StageDuration tracks wall-clock time per pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shorts_stage_duration_seconds",
		Help:    "Wall-clock duration of each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"stage"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records a finished run's outcome and per-asset statuses.
func ObserveRun(run *types.PipelineRun) {
	if run == nil {
		return
	}

	outcome := "success"
	if !run.Success {
		outcome = "failure"
	}
	RunsTotal.WithLabelValues(outcome).Inc()

	for _, a := range run.Voiceovers {
		AssetsTotal.WithLabelValues("voiceover", string(a.Status)).Inc()
	}
	for _, a := range run.Images {
		AssetsTotal.WithLabelValues("image", string(a.Status)).Inc()
	}
}

// StageTimer converts stage-transition callbacks into per-stage duration
// observations. Safe for concurrent use.
type StageTimer struct {
	mu    sync.Mutex
	stage string
	since time.Time
}

// NewStageTimer creates an idle timer; nothing is observed until the first
// Transition.
func NewStageTimer() *StageTimer {
	return &StageTimer{}
}

// Transition closes the previous stage's observation and starts timing the
// next one.
func (t *StageTimer) Transition(stage types.RunState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observe()
	t.stage = string(stage)
	t.since = time.Now()
}

// Finish closes the last open stage observation.
func (t *StageTimer) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe()
	t.stage = ""
}

// observe records the open stage, if any (must hold lock).
func (t *StageTimer) observe() {
	if t.stage == "" {
		return
	}
	StageDuration.WithLabelValues(t.stage).Observe(time.Since(t.since).Seconds())
}
