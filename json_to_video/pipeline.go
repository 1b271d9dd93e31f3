package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/video-editor/captions"
	"storyreel/video-editor/engine"
	"storyreel/video-editor/models"
	"storyreel/video-editor/store"
	"storyreel/video-editor/utils"
)

// Renderer burns captions and merges narration; *engine.VideoEditor in production.
type Renderer interface {
	Render(ctx context.Context, req engine.RenderRequest) error
	MergeNarration(ctx context.Context, files []string, outputPath string) (float64, error)
}

// Narrator synthesizes a passage into ordered audio chunks.
type Narrator interface {
	Synthesize(ctx context.Context, text, dir string) ([]string, error)
}

// JobServer owns the render queue and its persisted job records.
type JobServer struct {
	store     store.JobStore
	renderer  Renderer
	narrator  Narrator // nil disables narration
	config    *models.ProjectConfig
	outputDir string
	tempDir   string
	probe     func(path string) (float64, bool)

	slots   chan struct{}
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewJobServer(jobs store.JobStore, renderer Renderer, narrator Narrator, config *models.ProjectConfig, outputDir, tempDir string) *JobServer {
	if config == nil {
		config = models.DefaultConfig()
	}
	workers := config.Settings.MaxConcurrentJobs
	if workers <= 0 {
		workers = 1
	}
	return &JobServer{
		store:     jobs,
		renderer:  renderer,
		narrator:  narrator,
		config:    config,
		outputDir: outputDir,
		tempDir:   tempDir,
		probe:     utils.DurationOrDefault,
		slots:     make(chan struct{}, workers),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// start queues job for rendering in the background.
func (s *JobServer) start(job *store.RenderJob, req RenderRequest) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.forget(job.ID)
		s.run(ctx, job, req)
	}()
}

// cancel stops a queued or running job. It reports false when the job is
// not active on this server.
func (s *JobServer) cancel(id string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *JobServer) forget(id string) {
	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
}

func (s *JobServer) activeJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// Wait blocks until every started job has finished.
func (s *JobServer) Wait() {
	s.wg.Wait()
}

func (s *JobServer) run(ctx context.Context, job *store.RenderJob, req RenderRequest) {
	logger := log.With().Str("job", job.ID).Logger()

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		s.finish(job, ctx.Err())
		return
	}
	if err := ctx.Err(); err != nil {
		s.finish(job, err)
		return
	}

	s.progress(job, store.StatusProcessing, 5)
	workDir := filepath.Join(s.tempDir, job.ID)
	defer os.RemoveAll(workDir)

	err := s.process(ctx, job, req, workDir)
	if err != nil {
		logger.Error().Err(err).Msg("render job failed")
	} else {
		logger.Info().Str("output", job.OutputPath).Int("phrases", job.PhraseCount).Msg("render job completed")
	}
	s.finish(job, err)
}

func (s *JobServer) process(ctx context.Context, job *store.RenderJob, req RenderRequest, workDir string) error {
	if err := utils.EnsureDirectoryExists(workDir); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	audio := job.AudioPath
	if audio == "" && s.narrator != nil {
		files, err := s.narrator.Synthesize(ctx, job.Passage, workDir)
		if err != nil {
			return fmt.Errorf("narration failed: %w", err)
		}
		audio = filepath.Join(workDir, "narration.mp3")
		if _, err := s.renderer.MergeNarration(ctx, files, audio); err != nil {
			return err
		}
		s.progress(job, store.StatusProcessing, 30)
	}

	timed := audio
	if timed == "" {
		timed = job.VideoPath
	}
	job.Duration, job.DurationFallback = s.probe(timed)

	cfg, err := s.config.CaptionConfigWithPreset(req.Preset)
	if err != nil {
		return err
	}
	track, err := captions.BuildTrack(job.Passage, job.Duration, cfg)
	if err != nil {
		return fmt.Errorf("failed to build captions: %w", err)
	}
	job.PhraseCount = len(track.Cues)

	if err := utils.EnsureDirectoryExists(s.outputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	srtPath := filepath.Join(s.outputDir, job.ID+".srt")
	if err := writeSRT(srtPath, track, cfg.SRT); err != nil {
		return err
	}
	job.SRT = srtPath
	s.progress(job, store.StatusProcessing, 50)

	output := filepath.Join(s.outputDir, job.ID+".mp4")
	err = s.renderer.Render(ctx, engine.RenderRequest{
		VideoPath:  job.VideoPath,
		AudioPath:  audio,
		OutputPath: output,
		Track:      track,
		Burn:       job.Burn,
		SRTPath:    srtPath,
		LoopVideo:  req.Loop,
	})
	if err != nil {
		return err
	}
	job.OutputPath = output
	return nil
}

func writeSRT(path string, track *captions.Track, opts captions.SRTOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create SRT file: %w", err)
	}
	if err := track.WriteSRT(f, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write SRT file: %w", err)
	}
	return f.Close()
}

func (s *JobServer) progress(job *store.RenderJob, status store.JobState, progress int) {
	job.Status = status
	job.Progress = progress
	s.save(job)
}

// finish records the terminal state. A cancelled context wins over the
// error it caused.
func (s *JobServer) finish(job *store.RenderJob, err error) {
	switch {
	case err == nil:
		job.Status = store.StatusCompleted
		job.Progress = 100
		job.Error = ""
	case errors.Is(err, context.Canceled):
		job.Status = store.StatusCancelled
		job.Error = "Job cancelled by user"
	default:
		job.Status = store.StatusFailed
		job.Error = err.Error()
	}
	s.save(job)
}

func (s *JobServer) save(job *store.RenderJob) {
	job.UpdatedAt = time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Update(ctx, job); err != nil {
		log.Error().Err(err).Str("job", job.ID).Msg("failed to update job")
	}
}
