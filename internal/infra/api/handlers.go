package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

const retryAfterSeconds = 5

type jobResponse struct {
	ID          string          `json:"id"`
	Status      model.JobStatus `json:"status"`
	Stage       model.Stage     `json:"stage,omitempty"`
	Error       string          `json:"error,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	StatusURL   string          `json:"status_url,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

func downloadURL(id string) string { return "/api/v1/jobs/" + id + "/video" }
func statusURL(id string) string   { return "/api/v1/jobs/" + id }

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req model.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, codeValidation, "malformed JSON body")
		return
	}

	ticket, err := s.jobs.Submit(r.Context(), req)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, codeValidation, ve.Error())
		case errors.Is(err, domain.ErrQueueFull):
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			writeError(w, http.StatusServiceUnavailable, codeQueueFull, "too many jobs in progress, retry later")
		default:
			log.Error().Err(err).Msg("submit failed")
			writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		}
		return
	}

	id := ticket.Job.ID
	entry, err := s.jobs.Wait(r.Context(), ticket, s.submitWait)
	switch {
	case err == nil:
		expires := entry.ExpiresAt
		writeJSON(w, http.StatusOK, jobResponse{
			ID:          id,
			Status:      model.JobStatusSucceeded,
			DownloadURL: downloadURL(id),
			ExpiresAt:   &expires,
		})
	case errors.Is(err, domain.ErrStillRunning):
		status := model.JobStatusRunning
		if rec, serr := s.jobs.Status(r.Context(), id); serr == nil && !rec.Status.Terminal() {
			status = rec.Status
		}
		w.Header().Set("Location", statusURL(id))
		writeJSON(w, http.StatusAccepted, jobResponse{ID: id, Status: status, StatusURL: statusURL(id)})
	case r.Context().Err() != nil:
		// client went away; the job keeps running and stays queryable
		log.Info().Str("job_id", id).Msg("client disconnected before job finished")
	default:
		writeError(w, http.StatusInternalServerError, codeJobFailed, domain.PublicMessage(err))
	}
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.jobs.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "job not found")
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Str("job_id", id).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	resp := jobResponse{ID: rec.ID, Status: rec.Status, Stage: rec.Stage, Error: rec.Error}
	if rec.Status == model.JobStatusSucceeded {
		resp.DownloadURL = downloadURL(rec.ID)
		if !rec.ExpiresAt.IsZero() {
			expires := rec.ExpiresAt
			resp.ExpiresAt = &expires
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// getVideo streams a published artifact. Unknown, expired and vanished
// entries all produce the same 404.
func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.results.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "video not found")
		return
	}
	f, err := os.Open(entry.FilePath)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "video not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "video not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+entry.ID+`.mp4"`)
	http.ServeContent(w, r, entry.ID+".mp4", info.ModTime(), f)
}
