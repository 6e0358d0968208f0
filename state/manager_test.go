package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

func TestBeginRejectsConcurrentRuns(t *testing.T) {
	m := NewManager()

	first, err := m.Begin("volcanoes")
	if err != nil {
		t.Fatalf("first Begin returned error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if first.State != types.StatePending {
		t.Errorf("expected pending state, got %q", first.State)
	}

	if _, err := m.Begin("glaciers"); !errors.Is(err, ErrRunActive) {
		t.Fatalf("expected ErrRunActive while a run is active, got %v", err)
	}

	m.Complete(first.ID, &types.PipelineRun{Success: true, VideoPath: "/videos/v.mp4"})

	if _, err := m.Begin("glaciers"); err != nil {
		t.Fatalf("Begin after completion returned error: %v", err)
	}
}

func TestStageAndProgressUpdates(t *testing.T) {
	m := NewManager()
	run, _ := m.Begin("coral reefs")

	m.SetStage(run.ID, types.StateScripting)
	m.SetStage(run.ID, types.StateGenerating)
	m.SetVoiceoverProgress(run.ID, 2, 5)
	m.SetImageProgress(run.ID, 5, 5)

	got, ok := m.Get(run.ID)
	if !ok {
		t.Fatal("expected run to be retrievable")
	}
	if got.State != types.StateGenerating {
		t.Errorf("expected generating state, got %q", got.State)
	}
	if got.Voiceover.Completed != 2 || got.Voiceover.Total != 5 {
		t.Errorf("unexpected voiceover progress %+v", got.Voiceover)
	}
	if got.Image.Completed != 5 || got.Image.Total != 5 {
		t.Errorf("unexpected image progress %+v", got.Image)
	}
}

func TestCompleteReflectsRunOutcome(t *testing.T) {
	m := NewManager()

	run, _ := m.Begin("northern lights")
	m.Complete(run.ID, &types.PipelineRun{Success: true, VideoPath: "/videos/final.mp4"})

	got, _ := m.Get(run.ID)
	if got.State != types.StateComplete {
		t.Errorf("expected complete state, got %q", got.State)
	}
	if _, active := m.Active(); active {
		t.Error("expected no active run after completion")
	}

	run2, err := m.Begin("sandstorms")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	m.Complete(run2.ID, &types.PipelineRun{Success: false, Error: "assembly failed"})

	got2, _ := m.Get(run2.ID)
	if got2.State != types.StateFailed {
		t.Errorf("expected failed state, got %q", got2.State)
	}
	if got2.Error != "assembly failed" {
		t.Errorf("expected run error to be recorded, got %q", got2.Error)
	}
}

func TestFailReleasesActiveSlot(t *testing.T) {
	m := NewManager()

	run, _ := m.Begin("meteor showers")
	m.Fail(run.ID, errors.New("script model unreachable"))

	got, _ := m.Get(run.ID)
	if got.State != types.StateFailed {
		t.Errorf("expected failed state, got %q", got.State)
	}
	if got.Error != "script model unreachable" {
		t.Errorf("unexpected error %q", got.Error)
	}
	if _, active := m.Active(); active {
		t.Error("expected no active run after failure")
	}
}

func TestLogRingKeepsLastEntries(t *testing.T) {
	m := NewManager()
	run, _ := m.Begin("tide pools")

	for i := 0; i < maxLogsPerRun+10; i++ {
		m.AddLog(run.ID, fmt.Sprintf("entry %d", i))
	}

	got, _ := m.Get(run.ID)
	if len(got.Logs) != maxLogsPerRun {
		t.Fatalf("expected %d logs, got %d", maxLogsPerRun, len(got.Logs))
	}
	last := got.Logs[len(got.Logs)-1].Message
	if last != fmt.Sprintf("entry %d", maxLogsPerRun+9) {
		t.Errorf("expected newest entry last, got %q", last)
	}
}

func TestListNewestFirst(t *testing.T) {
	m := NewManager()

	a, _ := m.Begin("first topic")
	m.Complete(a.ID, &types.PipelineRun{Success: true, VideoPath: "/videos/a.mp4"})
	b, _ := m.Begin("second topic")
	m.Complete(b.ID, &types.PipelineRun{Success: false, Error: "boom"})

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Error("expected newest run first")
	}
	if !list[1].Success || list[1].VideoPath != "/videos/a.mp4" {
		t.Errorf("unexpected summary for finished run: %+v", list[1])
	}
	if list[0].Success {
		t.Error("expected failed run summary to report Success=false")
	}
}

func TestGetReturnsLogCopy(t *testing.T) {
	m := NewManager()
	run, _ := m.Begin("kelp forests")

	got, _ := m.Get(run.ID)
	if len(got.Logs) == 0 {
		t.Fatal("expected at least the acceptance log entry")
	}
	got.Logs[0].Message = "mutated"

	again, _ := m.Get(run.ID)
	if again.Logs[0].Message == "mutated" {
		t.Error("expected Get to return an independent copy of logs")
	}
}

func TestGetUnknownRun(t *testing.T) {
	m := NewManager()
	if _, ok := m.Get("nope"); ok {
		t.Fatal("expected unknown run to be absent")
	}
}
