package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jordan/curriculum-builder/internal/job"
	"github.com/jordan/curriculum-builder/internal/types"
)

// staleAfter is how long a terminal job stays fresh. Past this window
// the status response flags the result as stale so clients re-fetch the
// persisted draft instead of trusting the cached snapshot.
const staleAfter = 30 * time.Second

// GenerateRequest is the request body for starting a generation job.
type GenerateRequest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	PacingMode    types.PacingMode    `json:"pacingMode,omitempty"`
	DurationWeeks int                 `json:"durationWeeks"`
	Force         bool                `json:"force,omitempty"`
	Content       []types.ContentItem `json:"content"`
}

// GenerateResponse acknowledges an accepted generation job.
type GenerateResponse struct {
	JobID     string `json:"jobId"`
	ProgramID string `json:"programId"`
	Status    string `json:"status"`
}

// StatusResponse is the polling snapshot for a program's latest job.
type StatusResponse struct {
	JobID       string              `json:"jobId"`
	ProgramID   string              `json:"programId"`
	Status      types.JobStatus     `json:"status"`
	Stage       types.JobStage      `json:"stage,omitempty"`
	Progress    int                 `json:"progress"`
	Error       string              `json:"error,omitempty"`
	Result      *types.ProgramDraft `json:"result,omitempty"`
	CreatedAt   string              `json:"createdAt"`
	CompletedAt string              `json:"completedAt,omitempty"`
	Stale       bool                `json:"stale,omitempty"`
}

// statusResponseFrom builds a polling response from a job snapshot.
func statusResponseFrom(j *types.GenerationJob, now time.Time) StatusResponse {
	resp := StatusResponse{
		JobID:     j.JobID.String(),
		ProgramID: j.ProgramID,
		Status:    j.Status,
		Stage:     j.Stage,
		Progress:  j.Progress,
		Error:     j.Error,
		Result:    j.Result,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = j.CompletedAt.Format(time.RFC3339)
		if j.Status.Terminal() && now.Sub(*j.CompletedAt) > staleAfter {
			resp.Stale = true
		}
	}
	return resp
}

// handleGenerate starts a new generation job for a program
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	programID := r.PathValue("program_id")
	if programID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Program ID is required")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.DurationWeeks < 1 || req.DurationWeeks > 52 {
		s.errorResponse(w, http.StatusBadRequest, "durationWeeks must be within 1..52")
		return
	}
	if len(req.Content) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "At least one content item is required")
		return
	}
	for _, item := range req.Content {
		if item.ID == "" {
			s.errorResponse(w, http.StatusBadRequest, "Content item id is required")
			return
		}
		if item.Kind != types.ContentVideo && item.Kind != types.ContentDocument {
			s.errorResponse(w, http.StatusBadRequest, "Content kind must be video or document")
			return
		}
	}

	meta := types.ProgramMeta{
		ProgramID:     programID,
		Title:         req.Title,
		Description:   req.Description,
		PacingMode:    req.PacingMode,
		DurationWeeks: req.DurationWeeks,
	}

	created, err := s.controller.Start(r.Context(), meta, req.Content, job.StartOptions{Force: req.Force})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	log.Printf("Started generation job %s for program %s", created.JobID, programID)

	s.jsonResponse(w, http.StatusAccepted, GenerateResponse{
		JobID:     created.JobID.String(),
		ProgramID: created.ProgramID,
		Status:    string(created.Status),
	})
}

// handleGenerationStatus returns the latest job snapshot for a program
func (s *Server) handleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	programID := r.PathValue("program_id")
	if programID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Program ID is required")
		return
	}

	snapshot, err := s.controller.Status(r.Context(), programID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, statusResponseFrom(snapshot, time.Now().UTC()))
}

// handleGetJob returns a job snapshot by id
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	snapshot, err := s.controller.Get(r.Context(), jobID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, statusResponseFrom(snapshot, time.Now().UTC()))
}

// streamPollInterval is how often the SSE stream re-reads the job store.
const streamPollInterval = 500 * time.Millisecond

// handleGenerationStream streams job snapshots as Server-Sent Events
// until the job reaches a terminal status or the client disconnects.
// Disconnecting only stops the stream; the job keeps running.
func (s *Server) handleGenerationStream(w http.ResponseWriter, r *http.Request) {
	programID := r.PathValue("program_id")
	if programID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Program ID is required")
		return
	}

	snapshot, err := s.controller.Status(r.Context(), programID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	lastProgress := -1
	var lastStage types.JobStage
	for {
		if snapshot.Progress != lastProgress || snapshot.Stage != lastStage {
			if err := sse.WriteEvent("progress", statusResponseFrom(snapshot, time.Now().UTC())); err != nil {
				return
			}
			lastProgress = snapshot.Progress
			lastStage = snapshot.Stage
		}
		if snapshot.Status.Terminal() {
			sse.WriteComplete(snapshot.JobID.String(), string(snapshot.Status))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		snapshot, err = s.controller.Status(r.Context(), programID)
		if err != nil {
			if !errors.Is(err, job.ErrNotFound) {
				sse.WriteError(err.Error())
			}
			return
		}
	}
}
