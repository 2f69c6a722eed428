package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/minseo/saju-reporter/internal/catalog"
	"github.com/minseo/saju-reporter/internal/charts"
	"github.com/minseo/saju-reporter/internal/content"
	"github.com/minseo/saju-reporter/internal/db"
	"github.com/minseo/saju-reporter/internal/document"
	"github.com/minseo/saju-reporter/internal/fingerprint"
	"github.com/minseo/saju-reporter/internal/saju"
)

// ContentGenerator is the content generation collaborator. It never fails a
// customer; degraded chapters come back as warnings.
type ContentGenerator interface {
	GenerateChapters(ctx context.Context, facts content.Facts, chapters []catalog.Chapter, guide string) ([]content.Chapter, []content.Warning)
}

// Recorder persists batch run and artifact metadata. *db.DB satisfies it;
// it is optional, runs work without a database.
type Recorder interface {
	CreateBatchRun(ctx context.Context, serviceID string, total int) (uuid.UUID, error)
	CompleteBatchRun(ctx context.Context, runID uuid.UUID, persisted, skipped, failed int, status string) error
	SaveArtifact(ctx context.Context, rec *db.ArtifactRecord) error
}

// Mailer dispatches a generated artifact to a recipient. Send failures are
// downgraded to warnings; they never invalidate the artifact.
type Mailer interface {
	SendArtifact(ctx context.Context, recipient, customerName, path string) error
}

// Orchestrator runs one batch of customer jobs through the full pipeline.
type Orchestrator struct {
	Catalog      catalog.Store
	Fingerprints fingerprint.Store
	Generator    ContentGenerator
	Renderer     *charts.Renderer
	Assembler    *document.Assembler

	// Optional collaborators.
	Recorder Recorder
	Mailer   Mailer

	// OutputDir receives one deterministically named PDF per persisted job.
	OutputDir string
	// Workers bounds how many customers are processed concurrently.
	Workers int
	// SteeringGuide is the global AI instruction text from settings.
	SteeringGuide string

	Observers []Observer
}

// runState carries the mutable bookkeeping of one Run call, so a single
// Orchestrator can serve concurrent runs.
type runState struct {
	mu        sync.Mutex
	completed int
	summary   *Summary
	observers []Observer
}

// jobOutcome is the terminal result of one customer job.
type jobOutcome struct {
	stage    Stage
	failure  *Failure
	warnings []Warning
	artifact *Artifact
}

// Run processes jobs against the catalog of serviceID and returns the batch
// summary. Only batch-level setup failures (catalog unreachable, output
// directory unwritable) return an error; per-customer failures are captured
// in the summary and never abort the run. Cancellation is cooperative:
// in-flight customers finish, remaining ones are counted as canceled.
// Extra observers receive this run's progress alongside o.Observers.
func (o *Orchestrator) Run(ctx context.Context, serviceID string, jobs []CustomerJob, extra ...Observer) (*Summary, error) {
	chapters, err := o.Catalog.ChaptersByService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("loading catalog chapters failed: %w", err)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("service %q has no chapters configured", serviceID)
	}
	template, err := o.Catalog.TemplateByService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("loading catalog template failed: %w", err)
	}
	if template == nil {
		template = &catalog.Template{ServiceID: serviceID, ContentVersion: "v0"}
	}

	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory failed: %w", err)
	}

	// A missing cover image is a recoverable asset problem: the document is
	// assembled without a cover.
	var cover []byte
	if template.CoverImagePath != "" {
		if data, err := os.ReadFile(template.CoverImagePath); err == nil {
			cover = data
		} else {
			fmt.Printf("Warning: cover image unavailable, continuing without: %v\n", err)
		}
	}

	state := &runState{
		summary:   &Summary{Total: len(jobs)},
		observers: append(append([]Observer{}, o.Observers...), extra...),
	}

	var runID uuid.UUID
	if o.Recorder != nil {
		runID, err = o.Recorder.CreateBatchRun(ctx, serviceID, len(jobs))
		if err != nil {
			fmt.Printf("Warning: failed to record batch run: %v\n", err)
			runID = uuid.Nil
		}
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	var eg errgroup.Group
	eg.SetLimit(workers)

	for i := range jobs {
		eg.Go(func() error {
			// Cooperative cancellation: never start a new customer after
			// the context is done, but let in-flight customers finish.
			if ctx.Err() != nil {
				state.recordOutcome(jobs[i], i, jobOutcome{stage: StageCanceled})
				return nil
			}
			outcome := o.processJob(ctx, state, runID, serviceID, i, jobs[i], chapters, template, cover)
			state.recordOutcome(jobs[i], i, outcome)
			return nil
		})
	}
	_ = eg.Wait()

	state.mu.Lock()
	summary := state.summary
	summary.RunID = runID
	state.mu.Unlock()

	if o.Recorder != nil && runID != uuid.Nil {
		status := "completed"
		if summary.Canceled > 0 {
			status = "canceled"
		}
		if err := o.Recorder.CompleteBatchRun(ctx, runID, summary.Persisted, summary.Skipped, summary.Failed, status); err != nil {
			fmt.Printf("Warning: failed to record batch completion: %v\n", err)
		}
	}
	return summary, nil
}

// processJob runs one customer end to end and returns the terminal outcome.
// Every error is converted into a Failed outcome here, at the job boundary.
func (o *Orchestrator) processJob(ctx context.Context, state *runState, runID uuid.UUID, serviceID string, index int, job CustomerJob, chapters []catalog.Chapter, template *catalog.Template, cover []byte) jobOutcome {
	state.emit(index, job.Name, StagePending)

	digest := fingerprint.Digest(job.Name+"|"+job.Birth.String(), serviceID, template.ContentVersion)

	generated, err := o.Fingerprints.IsGenerated(ctx, digest)
	if err != nil {
		return failed(job, fmt.Sprintf("fingerprint check failed: %v", err))
	}
	if generated {
		return jobOutcome{stage: StageSkipped}
	}

	state.emit(index, job.Name, StageScoring)
	encoding, scores := saju.Score(job.Birth)

	facts := content.Facts{
		Name:     job.Name,
		Birth:    job.Birth,
		Encoding: encoding,
		Scores:   scores,
	}

	state.emit(index, job.Name, StageContentGenerating)
	generatedChapters, contentWarnings := o.Generator.GenerateChapters(ctx, facts, chapters, o.SteeringGuide)

	warnings := make([]Warning, 0, len(contentWarnings))
	for _, w := range contentWarnings {
		warnings = append(warnings, Warning{
			CustomerName: job.Name,
			Detail:       fmt.Sprintf("chapter %q degraded: %s", w.Title, w.Reason),
		})
	}

	state.emit(index, job.Name, StageAssembling)

	var chartPNG []byte
	if chartPNG, err = o.Renderer.RenderScoreChart(scores); err != nil {
		// The chart is an optional visual; the report is still valid.
		warnings = append(warnings, Warning{
			CustomerName: job.Name,
			Detail:       fmt.Sprintf("score chart skipped: %v", err),
		})
		chartPNG = nil
	}

	coverPNG := cover
	if len(cover) > 0 {
		if composed, coverErr := o.Renderer.RenderCover(cover, job.Name); coverErr == nil {
			coverPNG = composed
		} else {
			warnings = append(warnings, Warning{
				CustomerName: job.Name,
				Detail:       fmt.Sprintf("cover personalization skipped: %v", coverErr),
			})
		}
	}

	docChapters := make([]document.Chapter, len(generatedChapters))
	for i, ch := range generatedChapters {
		docChapters[i] = document.Chapter{Title: ch.Title, Body: ch.Body}
	}
	pdfBytes, pages, err := o.Assembler.Assemble(document.Document{
		CustomerName:  job.Name,
		Encoding:      encoding,
		CoverPNG:      coverPNG,
		ScoreChartPNG: chartPNG,
		Chapters:      docChapters,
		TrailingText:  template.TrailingText,
		TargetPages:   template.TargetPages,
	})
	if err != nil {
		return failed(job, fmt.Sprintf("document assembly failed: %v", err))
	}

	// The deterministic path belongs to whichever worker wins the claim, so
	// the PDF is staged in a temp file and renamed into place only after
	// MarkGenerated succeeds. A losing duplicate discards its own staging
	// file and never touches the winner's artifact.
	path := filepath.Join(o.OutputDir, ArtifactFileName(job.Name, digest))
	staging, err := os.CreateTemp(o.OutputDir, ArtifactFileName(job.Name, digest)+".tmp-*")
	if err != nil {
		return failed(job, fmt.Sprintf("artifact write failed: %v", err))
	}
	stagingPath := staging.Name()
	if _, err := staging.Write(pdfBytes); err != nil {
		staging.Close()
		os.Remove(stagingPath)
		return failed(job, fmt.Sprintf("artifact write failed: %v", err))
	}
	if err := staging.Close(); err != nil {
		os.Remove(stagingPath)
		return failed(job, fmt.Sprintf("artifact write failed: %v", err))
	}
	// CreateTemp files are 0600; artifacts are world-readable like any report.
	_ = os.Chmod(stagingPath, 0o644)

	claimed, err := o.Fingerprints.MarkGenerated(ctx, digest, path)
	if err != nil {
		os.Remove(stagingPath)
		return failed(job, fmt.Sprintf("fingerprint mark failed: %v", err))
	}
	if !claimed {
		os.Remove(stagingPath)
		return jobOutcome{stage: StageSkipped, warnings: warnings}
	}
	if err := os.Rename(stagingPath, path); err != nil {
		os.Remove(stagingPath)
		return failed(job, fmt.Sprintf("artifact write failed: %v", err))
	}

	artifact := &Artifact{
		CustomerName: job.Name,
		Digest:       digest,
		Path:         path,
		TargetPages:  template.TargetPages,
		ActualPages:  pages,
		GeneratedAt:  time.Now(),
	}

	if o.Recorder != nil && runID != uuid.Nil {
		rec := &db.ArtifactRecord{
			RunID:        runID,
			CustomerName: job.Name,
			Digest:       digest,
			Path:         path,
			TargetPages:  template.TargetPages,
			ActualPages:  pages,
		}
		if err := o.Recorder.SaveArtifact(ctx, rec); err != nil {
			return failed(job, fmt.Sprintf("artifact record failed: %v", err))
		}
		artifact.GeneratedAt = rec.GeneratedAt
	}

	if o.Mailer != nil && job.Email != "" {
		if err := o.Mailer.SendArtifact(ctx, job.Email, job.Name, path); err != nil {
			warnings = append(warnings, Warning{
				CustomerName: job.Name,
				Detail:       fmt.Sprintf("mail dispatch failed: %v", err),
			})
		}
	}

	return jobOutcome{stage: StagePersisted, warnings: warnings, artifact: artifact}
}

// recordOutcome folds a terminal outcome into the summary and emits the
// terminal stage transition with a monotonic completed count.
func (s *runState) recordOutcome(job CustomerJob, index int, outcome jobOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome.stage {
	case StagePersisted:
		s.summary.Persisted++
	case StageSkipped:
		s.summary.Skipped++
	case StageFailed:
		s.summary.Failed++
		if outcome.failure != nil {
			s.summary.Failures = append(s.summary.Failures, *outcome.failure)
		}
	case StageCanceled:
		s.summary.Canceled++
	}
	s.summary.Warnings = append(s.summary.Warnings, outcome.warnings...)
	if outcome.artifact != nil {
		s.summary.Artifacts = append(s.summary.Artifacts, *outcome.artifact)
	}

	s.completed++
	s.notifyLocked(Progress{
		Index:        index,
		Total:        s.summary.Total,
		CustomerName: job.Name,
		Stage:        outcome.stage,
		Completed:    s.completed,
	})
}

// emit reports a non-terminal stage transition.
func (s *runState) emit(index int, name string, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(Progress{
		Index:        index,
		Total:        s.summary.Total,
		CustomerName: name,
		Stage:        stage,
		Completed:    s.completed,
	})
}

func (s *runState) notifyLocked(p Progress) {
	for _, obs := range s.observers {
		obs.OnProgress(p)
	}
}

func failed(job CustomerJob, reason string) jobOutcome {
	return jobOutcome{
		stage:   StageFailed,
		failure: &Failure{CustomerName: job.Name, Reason: reason},
	}
}

// ArtifactFileName derives the deterministic output file name for a job.
func ArtifactFileName(customerName, digest string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, customerName)
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return fmt.Sprintf("%s_%s.pdf", name, digest)
}
