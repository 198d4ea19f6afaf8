package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/Kaliakbarb/persona/internal/model"
	"github.com/Kaliakbarb/persona/internal/pipeline"
)

// errorInfo is the structured error object returned to callers: a
// human-readable message plus the originating pipeline stage. Raw provider
// responses never pass through here.
type errorInfo struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type analyzeResponse struct {
	Status   string          `json:"status"`
	Artifact *model.Artifact `json:"artifact,omitempty"`
	Error    *errorInfo      `json:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// POST /api/analyze
// ---------------------------------------------------------------------------

type analyzeRequest struct {
	SubjectKey string `json:"subject_key"`
	Pipeline   string `json:"pipeline"`
	FullName   string `json:"full_name"`
	Fresh      bool   `json:"fresh"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SubjectKey == "" {
		writeError(w, http.StatusBadRequest, "subject_key is required")
		return
	}

	var kind string
	switch req.Pipeline {
	case model.PipelineProfileSearch:
		kind = model.KindSearch
	case model.PipelineProfile:
		kind = model.KindProfile
	case model.PipelineAudioInsight:
		writeError(w, http.StatusBadRequest, "audio-insight runs via POST /api/subjects/{key}/audio")
		return
	default:
		writeError(w, http.StatusBadRequest, "pipeline must be profile-search or profile")
		return
	}

	// Without a freshness requirement, the most recent stored artifact wins.
	if !req.Fresh {
		artifact, err := s.store.GetLatestByKind(r.Context(), req.SubjectKey, kind)
		if err == nil {
			writeJSON(w, http.StatusOK, analyzeResponse{Status: "ok", Artifact: artifact})
			return
		}
		if !errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "failed to read artifacts")
			return
		}
	}

	var artifact *model.Artifact
	var err error
	switch req.Pipeline {
	case model.PipelineProfileSearch:
		artifact, err = s.pipelines.ProfileSearch(r.Context(), req.SubjectKey, req.FullName)
	case model.PipelineProfile:
		artifact, err = s.pipelines.Profile(r.Context(), req.SubjectKey, req.FullName)
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, analyzeResponse{
			Status:   "error",
			Artifact: artifact,
			Error:    stepErrorInfo(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Status: "ok", Artifact: artifact})
}

// ---------------------------------------------------------------------------
// POST /api/subjects/{key}/audio
// ---------------------------------------------------------------------------

func (s *Server) handleAudioUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "subject key is required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'audio' is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	tmp, err := os.CreateTemp(s.cfg.UploadDir, "upload-*"+uploadExt(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		writeError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}

	job := model.NewJob(uuid.New().String(), key, model.PipelineAudioInsight, tmp.Name())
	s.queue.Enqueue(job)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// ---------------------------------------------------------------------------
// GET /api/jobs/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.queue.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ---------------------------------------------------------------------------
// POST /api/subjects/{key}/chat
// ---------------------------------------------------------------------------

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.pipelines.Chat(r.Context(), key, req.Message)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no profile exists for this subject yet")
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, analyzeResponse{Status: "error", Error: stepErrorInfo(err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// ---------------------------------------------------------------------------
// GET /api/subjects/{key}/artifacts
// ---------------------------------------------------------------------------

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.store.List(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list artifacts")
		return
	}
	if artifacts == nil {
		artifacts = []model.Artifact{}
	}
	writeJSON(w, http.StatusOK, artifacts)
}

// ---------------------------------------------------------------------------
// GET /api/subjects/{key}/artifacts/{kind}/latest
// ---------------------------------------------------------------------------

func (s *Server) handleLatestArtifact(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !model.KnownKind(kind) {
		writeError(w, http.StatusBadRequest, "unknown artifact kind "+strconv.Quote(kind))
		return
	}

	artifact, err := s.store.GetLatestByKind(r.Context(), r.PathValue("key"), kind)
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no artifact of this kind for subject")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get artifact")
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

var uploadExtPattern = regexp.MustCompile(`^\.[a-zA-Z0-9]+$`)

// uploadExt returns the upload's file extension when it is safe to embed in
// an os.CreateTemp pattern. The filename is caller-controlled and CreateTemp
// treats '*' as the random-suffix marker, so anything but a plain
// alphanumeric extension is dropped.
func uploadExt(filename string) string {
	if ext := filepath.Ext(filename); uploadExtPattern.MatchString(ext) {
		return ext
	}
	return ""
}

// stepErrorInfo builds the caller-visible error object from a pipeline error.
func stepErrorInfo(err error) *errorInfo {
	stage := "unknown"
	var se *pipeline.StepError
	if errors.As(err, &se) {
		stage = se.StepName()
	}
	return &errorInfo{Stage: stage, Message: err.Error()}
}
