package pipeline

import (
	"time"

	"wellpulse/internal/report"
	"wellpulse/pkg/contracts/domain"
)

// Step identifiers, in canonical execution order.
const (
	StepIDLoad   = "load"
	StepIDClean  = "clean"
	StepIDEDA    = "eda"
	StepIDModel  = "model"
	StepIDReport = "report"
)

// Human-readable step names.
const (
	StepNameLoad   = "Data Loading"
	StepNameClean  = "Data Cleaning"
	StepNameEDA    = "Exploratory Charts"
	StepNameModel  = "Model Training"
	StepNameReport = "Report Export"
)

// Status represents the overall run status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StepStatus represents the status of a single step within a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Request describes a pipeline run.
type Request struct {
	// ID identifies the run; generated when empty.
	ID string `json:"id,omitempty"`

	// Steps selects the steps to run by ID. Empty means every step. The
	// load step is implicit: it reads the raw input when cleaning is
	// selected and the newest cleaned export otherwise.
	Steps []string `json:"steps,omitempty"`

	// InputFile overrides raw input discovery with an explicit file.
	InputFile string `json:"input_file,omitempty"`
}

// StepResult is the immutable outcome snapshot of one step.
type StepResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Result summarizes a finished run for the CLI and the logs.
type Result struct {
	ID          string               `json:"id"`
	Status      Status               `json:"status"`
	Duration    time.Duration        `json:"duration"`
	Steps       []StepResult         `json:"steps"`
	SourceFile  string               `json:"source_file,omitempty"`
	CleanedFile string               `json:"cleaned_file,omitempty"`
	Rows        int                  `json:"rows"`
	Summary     *domain.ModelSummary `json:"summary,omitempty"`
	Artifacts   *report.Artifacts    `json:"artifacts,omitempty"`
	Error       string               `json:"error,omitempty"`
}
