package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/dedup"
	"github.com/mycguo/autogen-multi-agent-workflow/events"
	"github.com/mycguo/autogen-multi-agent-workflow/metrics"
	"github.com/mycguo/autogen-multi-agent-workflow/pipeline"
	"github.com/mycguo/autogen-multi-agent-workflow/state"
	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// ErrDuplicateTopic rejects a submission whose topic was recently covered.
var ErrDuplicateTopic = errors.New("topic was recently covered")

// Request describes one video to produce.
type Request struct {
	Topic     string
	SourceURL string
	Publish   bool

	// Force submits the topic even when the deduplicator flags it.
	Force bool
}

// TopicChecker guards submissions against recently covered topics.
// *dedup.Deduplicator implements it.
type TopicChecker interface {
	Check(ctx context.Context, cand dedup.Candidate) (*dedup.Result, error)
	Remember(ctx context.Context, cand dedup.Candidate) error
}

// RunArchiver copies finished runs to object storage. *storage.Archiver
// implements it.
type RunArchiver interface {
	Archive(ctx context.Context, runID string, run *types.PipelineRun) (int, error)
}

// VideoPublisher uploads a finished run's video. *publish.Uploader
// implements it.
type VideoPublisher interface {
	PublishRun(run *types.PipelineRun, sourceURL string) (string, error)
}

// Config wires the runner's collaborators. Dedup, Archiver and Uploader are
// optional; Publisher defaults to a no-op.
type Config struct {
	States *state.Manager

	// Pipeline supplies the stage clients. Its WorkDir is treated as a base
	// directory; each topic works in its own subdirectory underneath it.
	Pipeline pipeline.Config

	Dedup     TopicChecker
	Publisher events.Publisher
	Archiver  RunArchiver
	Uploader  VideoPublisher
}

// Runner drives one topic through the full pipeline and fans the result out
// to Kafka, the archive bucket and YouTube.
type Runner struct {
	states    *state.Manager
	pipeline  pipeline.Config
	dedup     TopicChecker
	publisher events.Publisher
	archiver  RunArchiver
	uploader  VideoPublisher
}

// NewRunner creates a workflow runner.
func NewRunner(cfg Config) *Runner {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Runner{
		states:    cfg.States,
		pipeline:  cfg.Pipeline,
		dedup:     cfg.Dedup,
		publisher: publisher,
		archiver:  cfg.Archiver,
		uploader:  cfg.Uploader,
	}
}

// Submit validates a request, reserves the run slot and starts the pipeline
// in the background. The returned status carries the new run ID.
func (r *Runner) Submit(ctx context.Context, req Request) (types.RunStatus, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return types.RunStatus{}, fmt.Errorf("topic is required")
	}

	if r.dedup != nil && !req.Force {
		res, err := r.dedup.Check(ctx, dedup.Candidate{Topic: req.Topic, SourceURL: req.SourceURL})
		switch {
		case err != nil:
			// Duplicate checks are advisory. An unreachable store must not
			// block manual submissions.
			log.Printf("[workflow] duplicate check unavailable: %v", err)
		case res.IsDuplicate:
			metrics.DuplicateTopicsTotal.Inc()
			return types.RunStatus{}, fmt.Errorf("%w: %.0f%% similar to %q",
				ErrDuplicateTopic, res.SimilarityScore*100, res.MatchingTopic)
		}
	}

	status, err := r.states.Begin(req.Topic)
	if err != nil {
		return types.RunStatus{}, err
	}

	// The run outlives the HTTP request that submitted it.
	go r.execute(context.Background(), status.ID, req)

	return status, nil
}

// SubmitFirstNew walks suggestions in order and submits the first one that
// is not a duplicate. Scheduled runs use this to pick the day's topic.
func (r *Runner) SubmitFirstNew(ctx context.Context, suggestions []topics.Suggestion, publish bool) (types.RunStatus, error) {
	for _, s := range suggestions {
		status, err := r.Submit(ctx, Request{Topic: s.Title, SourceURL: s.URL, Publish: publish})
		if errors.Is(err, ErrDuplicateTopic) {
			log.Printf("[workflow] skipping duplicate suggestion: %s", s.Title)
			continue
		}
		if err != nil {
			return types.RunStatus{}, err
		}
		return status, nil
	}
	return types.RunStatus{}, fmt.Errorf("no new topics among %d suggestions", len(suggestions))
}

// execute drives one run to its terminal state and fans the result out.
func (r *Runner) execute(ctx context.Context, runID string, req Request) {
	timer := metrics.NewStageTimer()

	var background string
	if req.SourceURL != "" {
		text, err := topics.Enrich(req.SourceURL)
		if err != nil {
			r.states.AddLog(runID, fmt.Sprintf("source article unavailable: %v", err))
		} else {
			background = text
			r.states.AddLog(runID, "source article extracted for script background")
		}
	}

	cfg := r.pipeline
	cfg.WorkDir = filepath.Join(cfg.WorkDir, topicKey(req.Topic))

	run := pipeline.New(cfg).RunWithOptions(ctx, req.Topic, pipeline.Options{
		Background: background,
		OnStage: func(stage types.RunState) {
			r.states.SetStage(runID, stage)
			timer.Transition(stage)
		},
		OnVoiceoverProgress: func(completed, total int) {
			r.states.SetVoiceoverProgress(runID, completed, total)
		},
		OnImageProgress: func(completed, total int) {
			r.states.SetImageProgress(runID, completed, total)
		},
	})

	timer.Finish()
	metrics.ObserveRun(run)

	videoURL := ""
	if run.Success && req.Publish && r.uploader != nil {
		videoID, err := r.uploader.PublishRun(run, req.SourceURL)
		if err != nil {
			r.states.AddLog(runID, fmt.Sprintf("publish failed: %v", err))
		} else {
			videoURL = "https://youtube.com/shorts/" + videoID
			r.states.AddLog(runID, "published: "+videoURL)
		}
	}

	if run.Success && r.dedup != nil {
		if err := r.dedup.Remember(ctx, dedup.Candidate{Topic: req.Topic, SourceURL: req.SourceURL}); err != nil {
			log.Printf("[workflow] failed to remember topic: %v", err)
		}
	}

	if r.archiver != nil {
		if _, err := r.archiver.Archive(ctx, runID, run); err != nil {
			r.states.AddLog(runID, fmt.Sprintf("archive failed: %v", err))
		}
	}

	r.states.Complete(runID, run)

	err := r.publisher.PublishResult(events.RunResult{
		RunID:      runID,
		Topic:      run.Topic,
		Success:    run.Success,
		VideoPath:  run.VideoPath,
		VideoURL:   videoURL,
		Error:      run.Error,
		FinishedAt: run.Timestamp,
	})
	if err != nil {
		log.Printf("[workflow] failed to publish run result: %v", err)
	}
}

// topicKey derives the per-topic asset directory name. Resubmitting a topic
// lands in the same directory, so partial assets from an interrupted run are
// resumed instead of regenerated.
func topicKey(topic string) string {
	return topics.GenerateID(strings.ToLower(strings.TrimSpace(topic)))
}
