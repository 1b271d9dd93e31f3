package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"storyreel/video-editor/engine"
	"storyreel/video-editor/models"
	"storyreel/video-editor/store"
)

type fakeRenderer struct {
	mu       sync.Mutex
	requests []engine.RenderRequest
	merged   []string
	block    bool
	started  chan struct{}
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, req engine.RenderRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		close(f.started)
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.OutputPath, []byte("video"), 0644)
}

func (f *fakeRenderer) MergeNarration(_ context.Context, files []string, out string) (float64, error) {
	f.mu.Lock()
	f.merged = append(f.merged, files...)
	f.mu.Unlock()
	return 12, os.WriteFile(out, []byte("audio"), 0644)
}

type fakeNarrator struct{}

func (fakeNarrator) Synthesize(_ context.Context, _ string, dir string) ([]string, error) {
	files := []string{filepath.Join(dir, "narration_000.mp3"), filepath.Join(dir, "narration_001.mp3")}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("chunk"), 0644); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func newTestServer(t *testing.T, renderer Renderer, narrator Narrator) (*JobServer, http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewJobServer(store.NewMemoryStore(), renderer, narrator, models.DefaultConfig(),
		filepath.Join(dir, "output"), filepath.Join(dir, "temp"))
	s.probe = func(string) (float64, bool) { return 20, false }

	video := filepath.Join(dir, "footage.mp4")
	if err := os.WriteFile(video, []byte("footage"), 0644); err != nil {
		t.Fatal(err)
	}
	return s, s.routes(), video
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func submit(t *testing.T, h http.Handler, req RenderRequest) string {
	t.Helper()
	w := do(h, http.MethodPost, "/api/render", req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body %s", w.Code, w.Body.String())
	}
	var resp VideoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.JobID == "" || resp.Status != store.StatusPending {
		t.Fatalf("unexpected submit response %+v", resp)
	}
	return resp.JobID
}

func status(t *testing.T, h http.Handler, id string) VideoResponse {
	t.Helper()
	w := do(h, http.MethodGet, "/api/status/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", w.Code, w.Body.String())
	}
	var resp VideoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRenderJobCompletes(t *testing.T) {
	renderer := &fakeRenderer{}
	s, h, video := newTestServer(t, renderer, nil)

	id := submit(t, h, RenderRequest{
		Passage:   "Mark's world crumbled. A failing grade stared back.",
		VideoPath: video,
	})
	s.Wait()

	resp := status(t, h, id)
	if resp.Status != store.StatusCompleted || resp.Progress != 100 {
		t.Fatalf("job = %+v, want completed at 100", resp)
	}
	if resp.VideoURL != "/videos/"+id+".mp4" || resp.SRTURL != "/api/srt/"+id {
		t.Errorf("urls = %q %q", resp.VideoURL, resp.SRTURL)
	}
	if resp.PhraseCount != 2 || resp.Duration != 20 {
		t.Errorf("phrases/duration = %d/%v, want 2/20", resp.PhraseCount, resp.Duration)
	}

	if len(renderer.requests) != 1 {
		t.Fatalf("got %d renders, want 1", len(renderer.requests))
	}
	rr := renderer.requests[0]
	if rr.Track == nil || len(rr.Track.Cues) != 2 || rr.Burn != models.BurnDrawText || rr.AudioPath != "" {
		t.Errorf("unexpected render request %+v", rr)
	}

	w := do(h, http.MethodGet, "/api/srt/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("srt status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "1\n00:00:00,000 --> 00:00:10,000\nMark's world crumbled\n") {
		t.Errorf("srt = %q", w.Body.String())
	}

	w = do(h, http.MethodGet, "/videos/"+id+".mp4", nil)
	if w.Code != http.StatusOK || w.Body.String() != "video" {
		t.Errorf("video download = %d %q", w.Code, w.Body.String())
	}
}

func TestRenderJobNarration(t *testing.T) {
	renderer := &fakeRenderer{}
	s, h, video := newTestServer(t, renderer, fakeNarrator{})
	var probed string
	s.probe = func(path string) (float64, bool) {
		probed = path
		return 12, false
	}

	id := submit(t, h, RenderRequest{Story: "A short story. It ends here.", VideoPath: video, Burn: models.BurnSubtitles})
	s.Wait()

	if got := status(t, h, id).Status; got != store.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
	if len(renderer.merged) != 2 {
		t.Errorf("merged %d chunks, want 2", len(renderer.merged))
	}
	rr := renderer.requests[0]
	if filepath.Base(rr.AudioPath) != "narration.mp3" || probed != rr.AudioPath {
		t.Errorf("audio %q probed %q", rr.AudioPath, probed)
	}
	if rr.Burn != models.BurnSubtitles || rr.SRTPath == "" {
		t.Errorf("burn %q srt %q", rr.Burn, rr.SRTPath)
	}
}

func TestRenderJobFails(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("render failed: exit status 1")}
	s, h, video := newTestServer(t, renderer, nil)

	id := submit(t, h, RenderRequest{Passage: "Hello there.", VideoPath: video})
	s.Wait()

	resp := status(t, h, id)
	if resp.Status != store.StatusFailed || resp.Message != "render failed: exit status 1" {
		t.Errorf("job = %+v, want failed with the render error", resp)
	}
	if resp.VideoURL != "" {
		t.Errorf("failed job has video url %q", resp.VideoURL)
	}
}

func TestCancelRunningJob(t *testing.T) {
	renderer := &fakeRenderer{block: true, started: make(chan struct{})}
	s, h, video := newTestServer(t, renderer, nil)

	id := submit(t, h, RenderRequest{Passage: "Hello there.", VideoPath: video})
	<-renderer.started

	if w := do(h, http.MethodDelete, "/api/cancel/"+id, nil); w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", w.Code, w.Body.String())
	}
	s.Wait()

	if got := status(t, h, id).Status; got != store.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}
	if w := do(h, http.MethodDelete, "/api/cancel/"+id, nil); w.Code != http.StatusConflict {
		t.Errorf("second cancel status = %d, want 409", w.Code)
	}
}

func TestRenderValidation(t *testing.T) {
	_, h, video := newTestServer(t, &fakeRenderer{}, nil)

	tests := []struct {
		name string
		req  RenderRequest
		want string
	}{
		{"missing passage", RenderRequest{VideoPath: video}, "passage is required"},
		{"missing video", RenderRequest{Passage: "Hi."}, "video_path is required"},
		{"absent video", RenderRequest{Passage: "Hi.", VideoPath: video + ".nope"}, "video_path does not exist"},
		{"absent audio", RenderRequest{Passage: "Hi.", VideoPath: video, AudioPath: "/nope.mp3"}, "audio_path does not exist"},
		{"bad burn", RenderRequest{Passage: "Hi.", VideoPath: video, Burn: "ass"}, "burn must be"},
		{"bad preset", RenderRequest{Passage: "Hi.", VideoPath: video, Preset: "wild"}, "unknown animation preset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/render", tt.req)
			if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("got %d %q, want 400 containing %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestUnknownJob(t *testing.T) {
	_, h, _ := newTestServer(t, &fakeRenderer{}, nil)
	for _, path := range []string{"/api/status/missing", "/api/srt/missing"} {
		if w := do(h, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
	if w := do(h, http.MethodDelete, "/api/cancel/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("cancel missing = %d, want 404", w.Code)
	}
}

func TestListJobs(t *testing.T) {
	s, h, video := newTestServer(t, &fakeRenderer{}, nil)
	for i := 0; i < 3; i++ {
		submit(t, h, RenderRequest{Passage: "Hello there.", VideoPath: video})
	}
	s.Wait()

	w := do(h, http.MethodGet, "/api/jobs?limit=2", nil)
	var jobs []store.RenderJob
	if err := json.Unmarshal(w.Body.Bytes(), &jobs); err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
	if w := do(h, http.MethodGet, "/api/jobs?limit=zero", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	_, h, _ := newTestServer(t, &fakeRenderer{}, fakeNarrator{})
	w := do(h, http.MethodGet, "/health", nil)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "healthy" || resp["narration"] != true {
		t.Errorf("health = %v", resp)
	}
}
