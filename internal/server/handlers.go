package server

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/minseo/saju-reporter/internal/batch"
)

// CreateBatchResponse represents the response for POST /api/batches
type CreateBatchResponse struct {
	RunID     string           `json:"run_id"`
	ServiceID string           `json:"service_id"`
	Total     int              `json:"total"`
	Skipped   []RowErrorDetail `json:"skipped_rows,omitempty"`
}

// RowErrorDetail describes one malformed input row
type RowErrorDetail struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// SummaryResponse represents the response for GET /api/batches/{id}/summary
type SummaryResponse struct {
	RunID   string         `json:"run_id"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Summary *batch.Summary `json:"summary,omitempty"`
}

// handleCreateBatch accepts a customer file upload and starts a batch run
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	// 32 MB covers any realistic customer spreadsheet.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	serviceID := r.FormValue("service_id")
	if serviceID == "" {
		serviceID = s.cfg.ServiceID
	}
	if serviceID == "" {
		verr := &ErrValidation{Field: "service_id", Message: "required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		verr := &ErrValidation{Field: "file", Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}
	defer file.Close()

	// Spool the upload to disk; the parser dispatches on the extension.
	spooled, err := s.spoolUpload(file, header.Filename)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to store upload: "+err.Error())
		return
	}

	jobs, rowErrors, err := batch.ParseJobs(spooled)
	if err != nil {
		os.Remove(spooled)
		s.errorResponse(w, http.StatusBadRequest, "Failed to parse customer file: "+err.Error())
		return
	}
	if len(jobs) == 0 {
		os.Remove(spooled)
		s.errorResponse(w, http.StatusBadRequest, "Customer file contains no usable rows")
		return
	}

	run := newBatchRun(serviceID, len(jobs), rowErrors)
	s.registry.add(run)

	log.Printf("Starting batch run %s: service=%s customers=%d", run.ID, serviceID, len(jobs))

	go func() {
		defer os.Remove(spooled)
		summary, err := s.runner.Run(s.baseCtx, serviceID, jobs, batch.ObserverFunc(run.publish))
		if err != nil {
			log.Printf("Batch run %s failed: %v", run.ID, err)
		}
		run.complete(summary, err)
	}()

	resp := CreateBatchResponse{
		RunID:     run.ID.String(),
		ServiceID: serviceID,
		Total:     len(jobs),
	}
	for _, re := range rowErrors {
		resp.Skipped = append(resp.Skipped, RowErrorDetail{Line: re.Line, Reason: re.Reason})
	}
	s.jsonResponse(w, http.StatusAccepted, resp)
}

func (s *Server) spoolUpload(file io.Reader, name string) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".csv"
	}
	tmp, err := os.CreateTemp(s.cfg.UploadDir, "batch-*"+ext)
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// handleBatchEvents streams progress for a run as Server-Sent Events
func (s *Server) handleBatchEvents(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	replay, ch := run.subscribe()
	defer run.unsubscribe(ch)

	for _, p := range replay {
		if err := sse.WriteProgress(p); err != nil {
			return
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case p := <-ch:
			if err := sse.WriteProgress(p); err != nil {
				return
			}
		case <-run.done:
			// Drain events published before completion.
			for {
				select {
				case p := <-ch:
					if err := sse.WriteProgress(p); err != nil {
						return
					}
					continue
				default:
				}
				break
			}
			summary, runErr, _ := run.result()
			if runErr != nil {
				sse.WriteError(runErr.Error())
			}
			sse.WriteComplete(run.ID.String(), run.status(), summary)
			return
		}
	}
}

// handleBatchSummary returns the run's terminal summary, or its live status
func (s *Server) handleBatchSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	resp := SummaryResponse{
		RunID:  run.ID.String(),
		Status: run.status(),
	}
	if summary, runErr, done := run.result(); done {
		resp.Summary = summary
		if runErr != nil {
			resp.Error = runErr.Error()
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleArtifact serves one generated PDF by digest
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	digest := r.PathValue("digest")

	artifact, err := findArtifact(run, digest)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(artifact.Path)))
	http.ServeFile(w, r, artifact.Path)
}

// handleArchive serves every artifact of the run as one zip file
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	summary, _, done := run.result()
	if !done || summary == nil {
		s.errorResponse(w, http.StatusConflict, "Batch run is still in progress")
		return
	}
	if len(summary.Artifacts) == 0 {
		s.errorResponse(w, http.StatusNotFound, "Batch run produced no artifacts")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("reports_%s.zip", run.ID)))

	zw := zip.NewWriter(w)
	defer zw.Close()
	for _, artifact := range summary.Artifacts {
		if err := addZipEntry(zw, artifact.Path); err != nil {
			log.Printf("Failed to archive %s: %v", artifact.Path, err)
			return
		}
	}
}

func addZipEntry(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}

// lookupRun resolves the {id} path segment; it writes the error response
// itself when the run cannot be found.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*batchRun, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID: "+err.Error())
		return nil, false
	}
	run, ok := s.registry.get(id)
	if !ok {
		notFound := &ErrRunNotFound{RunID: id}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return nil, false
	}
	return run, true
}

func findArtifact(run *batchRun, digest string) (*batch.Artifact, error) {
	summary, _, done := run.result()
	if !done || summary == nil {
		return nil, &ErrArtifactNotFound{Digest: digest}
	}
	for i := range summary.Artifacts {
		if summary.Artifacts[i].Digest == digest {
			return &summary.Artifacts[i], nil
		}
	}
	return nil, &ErrArtifactNotFound{Digest: digest}
}
