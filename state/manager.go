package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

const (
	maxLogsPerRun = 50
	maxRunHistory = 100
)

// ErrRunActive is returned by Begin while another run holds the slot.
var ErrRunActive = errors.New("a run is already in progress")

// Manager tracks pipeline runs with thread-safe access. At most one run is
// active at a time; finished runs stay queryable until the history cap
// evicts them.
type Manager struct {
	mu sync.RWMutex

	runs     map[string]*record
	order    []string
	activeID string
}

type record struct {
	ID        string
	Topic     string
	State     types.RunState
	Voiceover types.StageProgress
	Image     types.StageProgress
	Logs      []types.LogEntry
	Result    *types.PipelineRun
	Error     string
	StartedAt time.Time
}

// NewManager creates an empty run manager.
func NewManager() *Manager {
	return &Manager{runs: make(map[string]*record)}
}

// Begin registers a new run and marks it active. It fails when another run
// is still in flight so concurrent submissions cannot race over the shared
// asset directories.
func (m *Manager) Begin(topic string) (types.RunStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID != "" {
		return types.RunStatus{}, fmt.Errorf("%w (run %s)", ErrRunActive, m.activeID)
	}

	rec := &record{
		ID:        uuid.NewString(),
		Topic:     topic,
		State:     types.StatePending,
		Logs:      make([]types.LogEntry, 0),
		StartedAt: time.Now().UTC(),
	}

	m.runs[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	m.activeID = rec.ID
	m.appendLog(rec, fmt.Sprintf("run accepted: %s", topic))

	// Evict the oldest finished runs beyond the history cap.
	for len(m.order) > maxRunHistory {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}

	return m.snapshot(rec), nil
}

// SetStage records a stage transition (thread-safe).
func (m *Manager) SetStage(id string, stage types.RunState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.runs[id]
	if !ok {
		return
	}
	rec.State = stage
	m.appendLog(rec, fmt.Sprintf("stage: %s", stage))
}

// SetVoiceoverProgress updates voiceover completion counts (thread-safe).
func (m *Manager) SetVoiceoverProgress(id string, completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.runs[id]; ok {
		rec.Voiceover = types.StageProgress{Completed: completed, Total: total}
	}
}

// SetImageProgress updates image completion counts (thread-safe).
func (m *Manager) SetImageProgress(id string, completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.runs[id]; ok {
		rec.Image = types.StageProgress{Completed: completed, Total: total}
	}
}

// AddLog appends a log entry to a run (thread-safe).
func (m *Manager) AddLog(id, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.runs[id]; ok {
		m.appendLog(rec, message)
	}
}

// Complete stores the finished result and releases the active slot. The
// terminal state follows the run's own success flag.
func (m *Manager) Complete(id string, run *types.PipelineRun) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.runs[id]
	if !ok {
		return
	}

	rec.Result = run
	if run != nil && run.Success {
		rec.State = types.StateComplete
		m.appendLog(rec, fmt.Sprintf("run complete: %s", run.VideoPath))
	} else {
		rec.State = types.StateFailed
		if run != nil {
			rec.Error = run.Error
		}
		m.appendLog(rec, fmt.Sprintf("run failed: %s", rec.Error))
	}

	if m.activeID == id {
		m.activeID = ""
	}
}

// Fail marks a run failed before it produced a result and releases the
// active slot.
func (m *Manager) Fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.runs[id]
	if !ok {
		return
	}

	rec.State = types.StateFailed
	rec.Error = err.Error()
	m.appendLog(rec, fmt.Sprintf("Error: %v", err))

	if m.activeID == id {
		m.activeID = ""
	}
}

// Active returns the in-flight run ID, if any (thread-safe).
func (m *Manager) Active() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID, m.activeID != ""
}

// Get returns a snapshot of one run (thread-safe).
func (m *Manager) Get(id string) (types.RunStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.runs[id]
	if !ok {
		return types.RunStatus{}, false
	}
	return m.snapshot(rec), true
}

// List returns summaries of all known runs, newest first (thread-safe).
func (m *Manager) List() []types.RunSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]types.RunSummary, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.runs[m.order[i]]
		s := types.RunSummary{
			ID:        rec.ID,
			Topic:     rec.Topic,
			State:     rec.State,
			StartedAt: rec.StartedAt,
		}
		if rec.Result != nil {
			s.Success = rec.Result.Success
			s.VideoPath = rec.Result.VideoPath
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// appendLog adds a ring-buffered log entry (must hold lock).
func (m *Manager) appendLog(rec *record, message string) {
	rec.Logs = append(rec.Logs, types.LogEntry{
		Timestamp: time.Now().UTC(),
		Message:   message,
	})
	if len(rec.Logs) > maxLogsPerRun {
		rec.Logs = rec.Logs[len(rec.Logs)-maxLogsPerRun:]
	}
}

// snapshot copies a record into its API shape (must hold lock).
func (m *Manager) snapshot(rec *record) types.RunStatus {
	return types.RunStatus{
		ID:        rec.ID,
		Topic:     rec.Topic,
		State:     rec.State,
		Voiceover: rec.Voiceover,
		Image:     rec.Image,
		Logs:      append([]types.LogEntry{}, rec.Logs...), // Copy slice
		Result:    rec.Result,
		Error:     rec.Error,
		StartedAt: rec.StartedAt,
	}
}
