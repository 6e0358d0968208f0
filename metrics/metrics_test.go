package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

func TestObserveRunCountsOutcomeAndAssets(t *testing.T) {
	successBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("failure"))
	readyBefore := testutil.ToFloat64(AssetsTotal.WithLabelValues("voiceover", "ready"))
	failedBefore := testutil.ToFloat64(AssetsTotal.WithLabelValues("image", "failed"))

	ObserveRun(&types.PipelineRun{
		Success: true,
		Voiceovers: []types.GeneratedAsset{
			{Status: types.AssetReady},
			{Status: types.AssetReady},
		},
		Images: []types.GeneratedAsset{
			{Status: types.AssetFailed},
		},
	})
	ObserveRun(&types.PipelineRun{Success: false})

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("success")) - successBefore; got != 1 {
		t.Errorf("expected 1 success run, got %v", got)
	}
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("failure")) - failureBefore; got != 1 {
		t.Errorf("expected 1 failure run, got %v", got)
	}
	if got := testutil.ToFloat64(AssetsTotal.WithLabelValues("voiceover", "ready")) - readyBefore; got != 2 {
		t.Errorf("expected 2 ready voiceovers, got %v", got)
	}
	if got := testutil.ToFloat64(AssetsTotal.WithLabelValues("image", "failed")) - failedBefore; got != 1 {
		t.Errorf("expected 1 failed image, got %v", got)
	}
}

func TestObserveRunNil(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("failure"))
	ObserveRun(nil)
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("failure")); got != before {
		t.Error("expected nil run to record nothing")
	}
}

func TestStageTimerObservesTransitions(t *testing.T) {
	timer := NewStageTimer()

	before := testutil.CollectAndCount(StageDuration)
	timer.Transition(types.StateScripting)
	timer.Transition(types.StateGenerating)
	timer.Finish()

	// Two closed stages: scripting and generating.
	if got := testutil.CollectAndCount(StageDuration) - before; got < 2 {
		t.Errorf("expected at least 2 stage series, got %d new", got)
	}

	// Finish with no open stage is a no-op.
	timer.Finish()
}
