package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yhkim-dev/stockflow/internal/core"
	"github.com/yhkim-dev/stockflow/internal/logging"
)

// uploadRequest is the body of POST /upload for both stages.
type uploadRequest struct {
	Stage     string `json:"stage"`
	Content   string `json:"content"`
	PreviewID string `json:"previewId"`
}

// jobResponse is the wire shape of a job in API responses.
type jobResponse struct {
	ID         string              `json:"id"`
	Status     core.JobStatus      `json:"status"`
	Total      int                 `json:"total"`
	Processed  int                 `json:"processed"`
	Summary    core.PreviewSummary `json:"summary"`
	ErrorCount int                 `json:"errorCount"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func toJobResponse(job core.Job) jobResponse {
	return jobResponse{
		ID:         job.ID,
		Status:     job.Status,
		Total:      job.Total,
		Processed:  job.Processed,
		Summary:    job.Summary,
		ErrorCount: len(job.Errors),
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
}

// handleUpload dispatches the two-phase upload protocol: stage "preview"
// analyzes the CSV body and returns a one-time token, stage "commit"
// consumes the token and enqueues the batch as a background job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	uploadType, err := core.ParseUploadType(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodySize)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Stage {
	case "preview":
		s.handlePreview(w, r, uploadType, req.Content)
	case "commit":
		s.handleCommit(w, r, uploadType, req.PreviewID)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.Stage))
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, t core.UploadType, content string) {
	result, err := s.service.Preview(r.Context(), t, content, r.Header.Get("Accept-Language"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("preview analyzed",
		"type", t,
		"total", result.Summary.Total,
		"errors", result.Summary.ErrorCount,
	)

	samples := result.ErrorSamples
	if samples == nil {
		samples = []core.ErrorSample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"previewId": result.Token,
		"type":      result.Type,
		"columns":   result.Columns,
		"summary":   result.Summary,
		"errors":    samples,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request, t core.UploadType, previewID string) {
	job, err := s.service.Commit(t, previewID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("batch committed",
		"type", t,
		"job_id", job.ID,
		"rows", job.Total,
	)

	writeJSON(w, http.StatusOK, map[string]any{"job": toJobResponse(job)})
}

// handleJob returns the current status snapshot of one job.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": toJobResponse(job)})
}

// handleJobErrors downloads a job's error rows as CSV. A job without errors
// yields 204 No Content.
func (s *Server) handleJobErrors(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	csvText, err := s.service.JobErrorsCSV(jobID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if csvText == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=import-errors-%s.csv", jobID))
	w.Write([]byte(csvText))
}

// handleTemplate downloads the upload template for a type, as CSV by default
// or as an Excel workbook with format=xlsx.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	uploadType, err := core.ParseUploadType(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := core.TemplateXLSX(uploadType)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-template.xlsx", uploadType))
		w.Write(data)
		return
	}

	csvText, err := core.Template(uploadType)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-template.csv", uploadType))
	w.Write([]byte(csvText))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
