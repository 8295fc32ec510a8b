package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrUnknownTier),
		errors.Is(err, domain.ErrEmptyUpload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// readUploadedFile pulls the multipart "file" part, bounded by the configured
// upload limit.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request) (name, contentType string, data []byte, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxUploadBytes)

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, fmt.Errorf("missing file field: %w", err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, fmt.Errorf("read upload: %w", err)
	}
	return hdr.Filename, hdr.Header.Get("Content-Type"), data, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name, _, data, err := s.readUploadedFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.convertUC.DispatchDocument(r.Context(), UserID(r.Context()), kind, name, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	name, _, data, err := s.readUploadedFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.convertUC.DispatchImage(r.Context(), UserID(r.Context()), name, r.FormValue("format"), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	name, _, data, err := s.readUploadedFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.convertUC.DispatchVideo(r.Context(), UserID(r.Context()), name, r.FormValue("format"), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	name, contentType, data, err := s.readUploadedFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.convertUC.DispatchCompression(r.Context(), UserID(r.Context()), name, contentType, r.FormValue("level"), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// handleTaskStatus reports the job's state for the polling client. An unknown
// handle is a definitive 404 NOT_FOUND, never confused with a queued job: the
// job row is committed before its handle is ever handed out.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.convertUC.Status(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			writeJSON(w, http.StatusNotFound, map[string]string{"state": "NOT_FOUND"})
			return
		}
		writeDomainError(w, err)
		return
	}

	switch job.State {
	case model.StateSuccess:
		writeJSON(w, http.StatusOK, map[string]any{
			"state":    job.State,
			"progress": job.Progress,
			"file_id":  job.ResultUploadID,
		})
	case model.StateFailure:
		writeJSON(w, http.StatusOK, map[string]any{
			"state":      job.State,
			"error":      job.LastError,
			"error_kind": job.FailureKind,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"state":    job.State,
			"progress": job.Progress,
			"message":  job.Message,
		})
	}
}

func uploadIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "upload_id"), 10, 64)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := uploadIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	up, err := s.uploadUC.Get(r.Context(), UserID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", up.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(up.Size(), 10))
	_, _ = w.Write(up.Data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uploadIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	if err := s.uploadUC.Delete(r.Context(), UserID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type fileEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.uploadUC.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entries := make([]fileEntry, 0, len(uploads))
	for _, up := range uploads {
		entries = append(entries, fileEntry{
			ID:        up.ID,
			Name:      up.Name,
			Size:      up.Size(),
			CreatedAt: up.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": entries})
}

// handleLogout deletes the session user; uploads and jobs go with it via the
// schema's cascades. The cookie is cleared either way.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if err := s.userUC.Delete(r.Context(), userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeDomainError(w, err)
		return
	}
	s.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
