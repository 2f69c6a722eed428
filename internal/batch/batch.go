// Package batch orchestrates report generation over a customer collection:
// fingerprint skip-checks, scoring, AI content, document assembly, artifact
// persistence, and per-customer progress reporting that tolerates partial
// failure.
package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/minseo/saju-reporter/internal/saju"
)

// Stage is the state of one customer job.
type Stage string

// Job lifecycle stages. Persisted, Skipped and Failed are terminal.
const (
	StagePending           Stage = "pending"
	StageScoring           Stage = "scoring"
	StageContentGenerating Stage = "content_generating"
	StageAssembling        Stage = "assembling"
	StagePersisted         Stage = "persisted"
	StageSkipped           Stage = "skipped"
	StageFailed            Stage = "failed"
	StageCanceled          Stage = "canceled"
)

// Terminal reports whether the stage ends a job.
func (s Stage) Terminal() bool {
	return s == StagePersisted || s == StageSkipped || s == StageFailed || s == StageCanceled
}

// CustomerJob is one row of a batch input. It exists only for the duration
// of a run; nothing beyond the generated artifact and fingerprint survives.
type CustomerJob struct {
	Name  string
	Birth saju.BirthRecord
	Email string
	Note  string
}

// Progress is emitted to observers on every stage transition. Index is the
// job's position in the input; Completed is the monotonically non-decreasing
// count of jobs that have reached a terminal stage.
type Progress struct {
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	CustomerName string `json:"customer_name"`
	Stage        Stage  `json:"stage"`
	Completed    int    `json:"completed"`
}

// Observer receives progress events. Multiple observers may subscribe
// without coupling to the orchestrator's internals.
type Observer interface {
	OnProgress(Progress)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Progress)

// OnProgress calls f.
func (f ObserverFunc) OnProgress(p Progress) { f(p) }

// Failure identifies a customer whose job ended in the Failed stage.
type Failure struct {
	CustomerName string `json:"customer_name"`
	Reason       string `json:"reason"`
}

// Warning records a soft degradation (placeholder chapter, undelivered
// mail) on a job that still completed.
type Warning struct {
	CustomerName string `json:"customer_name"`
	Detail       string `json:"detail"`
}

// Artifact describes one generated PDF.
type Artifact struct {
	CustomerName string    `json:"customer_name"`
	Digest       string    `json:"digest"`
	Path         string    `json:"path"`
	TargetPages  int       `json:"target_pages"`
	ActualPages  int       `json:"actual_pages"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Summary is the terminal report of one batch run. Counts always add up to
// Total; Canceled covers jobs never started because the run was canceled.
type Summary struct {
	RunID     uuid.UUID  `json:"run_id,omitempty"`
	Total     int        `json:"total"`
	Persisted int        `json:"persisted"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Canceled  int        `json:"canceled"`
	Failures  []Failure  `json:"failures,omitempty"`
	Warnings  []Warning  `json:"warnings,omitempty"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}
