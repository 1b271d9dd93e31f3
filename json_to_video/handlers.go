package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"storyreel/video-editor/models"
	"storyreel/video-editor/store"
	"storyreel/video-editor/utils"
)

const defaultListLimit = 50

func (s *JobServer) routes() *mux.Router {
	r := mux.NewRouter()

	// API routes
	r.HandleFunc("/api/render", s.renderHandler).Methods("POST")
	r.HandleFunc("/api/status/{jobId}", s.getJobStatusHandler).Methods("GET")
	r.HandleFunc("/api/jobs", s.listJobsHandler).Methods("GET")
	r.HandleFunc("/api/cancel/{jobId}", s.cancelJobHandler).Methods("DELETE")
	r.HandleFunc("/api/srt/{jobId}", s.srtHandler).Methods("GET")

	// Serve rendered videos
	r.PathPrefix("/videos/").Handler(http.StripPrefix("/videos/", http.FileServer(http.Dir(s.outputDir))))

	// Health check
	r.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	return r
}

func (s *JobServer) renderHandler(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Validate request
	if err := validateRenderRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	burn := req.Burn
	if burn == "" {
		burn = s.config.Settings.BurnMode
	}

	now := time.Now()
	job := &store.RenderJob{
		ID:        uuid.New().String(),
		Status:    store.StatusPending,
		Passage:   req.Passage,
		VideoPath: req.VideoPath,
		AudioPath: req.AudioPath,
		Burn:      burn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("failed to create job")
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	// Hand the runner its own copy; the store keeps the record.
	running := *job
	s.start(&running, req)

	writeJSON(w, http.StatusAccepted, VideoResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Message: "Render started",
	})
}

func (s *JobServer) getJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, jobResponse(job))
}

func (s *JobServer) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	jobs, err := s.store.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list jobs")
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *JobServer) cancelJobHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if job.Status.Terminal() {
		http.Error(w, "Job already "+string(job.Status), http.StatusConflict)
		return
	}
	if !s.cancel(job.ID) {
		http.Error(w, "Job is not running on this server", http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Job cancelled"})
}

func (s *JobServer) srtHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if job.SRT == "" {
		http.Error(w, "Subtitles not ready", http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(job.SRT)
	if err != nil {
		http.Error(w, "Subtitles not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.ID+`.srt"`)
	w.Write(data)
}

func (s *JobServer) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":           "healthy",
		"timestamp":        time.Now().Format(time.RFC3339),
		"version":          "2.0.0",
		"ffmpeg_available": utils.ValidateFFmpegInstalled() == nil,
		"narration":        s.narrator != nil,
		"active_jobs":      s.activeJobs(),
	}
	writeJSON(w, http.StatusOK, response)
}

// lookup loads the job named in the path, writing 404 when it is missing.
func (s *JobServer) lookup(w http.ResponseWriter, r *http.Request) (*store.RenderJob, bool) {
	jobID := mux.Vars(r)["jobId"]
	job, err := s.store.Get(r.Context(), jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("job", jobID).Msg("failed to load job")
		http.Error(w, "Failed to load job", http.StatusInternalServerError)
		return nil, false
	}
	return job, true
}

func validateRenderRequest(req *RenderRequest) error {
	if strings.TrimSpace(req.Passage) == "" {
		req.Passage = req.Story
	}
	if strings.TrimSpace(req.Passage) == "" {
		return errors.New("passage is required")
	}
	if req.VideoPath == "" {
		return errors.New("video_path is required")
	}
	if !utils.FileExists(req.VideoPath) {
		return errors.New("video_path does not exist")
	}
	if req.AudioPath != "" && !utils.FileExists(req.AudioPath) {
		return errors.New("audio_path does not exist")
	}
	switch req.Burn {
	case "", models.BurnDrawText, models.BurnSubtitles:
	default:
		return errors.New("burn must be drawtext or subtitles")
	}
	if req.Preset != "" {
		if _, err := models.WithPreset(req.Preset); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
