package pipeline

import (
	"sync"
	"time"

	"wellpulse/internal/cleaning"
	"wellpulse/internal/dataset"
	"wellpulse/internal/report"
	"wellpulse/pkg/contracts/domain"
)

// StepState tracks one step through a run.
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Err       error      `json:"-"`
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step completed.
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// SetMessage records a human-readable outcome note for the step.
func (s *StepState) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Message = message
}

// Fail marks the step failed.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err
}

// Duration returns how long the step has been running, or ran.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// result snapshots the step outcome.
func (s *StepState) result() StepResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := StepResult{
		ID:      s.ID,
		Name:    s.Name,
		Status:  s.Status,
		Message: s.Message,
	}
	if s.StartTime != nil {
		end := time.Now()
		if s.EndTime != nil {
			end = *s.EndTime
		}
		r.Duration = end.Sub(*s.StartTime)
	}
	if s.Err != nil {
		r.Error = s.Err.Error()
	}
	return r
}

// State is the shared working state of one run. The runner owns it and
// hands it to each step in turn; the data fields below the step map are
// read and written only by the active step, so they carry no locking.
type State struct {
	mu        sync.RWMutex
	ID        string
	Status    Status
	StartTime time.Time
	EndTime   *time.Time
	Err       error

	steps map[string]*StepState
	order []string

	// Run parameters resolved from the request.
	InputFile string
	LoadRaw   bool
	Stamp     time.Time

	// Data handed from step to step.
	SourceFile  string
	Table       dataset.Table
	CleanResult *cleaning.CleanResult
	CleanedFile string
	Summary     *domain.ModelSummary
	Artifacts   *report.Artifacts
}

// NewState creates a pending run state.
func NewState(id string) *State {
	return &State{
		ID:        id,
		Status:    StatusPending,
		StartTime: time.Now(),
		Stamp:     time.Now(),
		steps:     make(map[string]*StepState),
	}
}

// AddStep registers a step state in execution order.
func (s *State) AddStep(step *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[step.ID] = step
	s.order = append(s.order, step.ID)
}

// GetStep returns the state of a registered step, or nil.
func (s *State) GetStep(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps[id]
}

// Start marks the run as running.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed.
func (s *State) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StatusCompleted
}

// Fail marks the run as failed.
func (s *State) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StatusFailed
	s.Err = err
}

// Duration returns the elapsed run time.
func (s *State) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Result snapshots the run outcome with steps in execution order.
func (s *State) Result() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := &Result{
		ID:          s.ID,
		Status:      s.Status,
		SourceFile:  s.SourceFile,
		CleanedFile: s.CleanedFile,
		Rows:        s.Table.NRows(),
		Summary:     s.Summary,
		Artifacts:   s.Artifacts,
	}
	if s.EndTime != nil {
		res.Duration = s.EndTime.Sub(s.StartTime)
	} else {
		res.Duration = time.Since(s.StartTime)
	}
	if s.Err != nil {
		res.Error = s.Err.Error()
	}
	for _, id := range s.order {
		res.Steps = append(res.Steps, s.steps[id].result())
	}
	return res
}
