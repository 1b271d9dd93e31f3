package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"storyreel/video-editor/captions"
	"storyreel/video-editor/models"
	"storyreel/video-editor/utils"
)

// Output formats
const (
	FormatJSON          = "json"
	FormatSRT           = "srt"
	FormatDrawText      = "drawtext"
	FormatFilterComplex = "filter_complex"
)

type CaptionRequest struct {
	Text        string  `json:"text,omitempty"`
	Story       string  `json:"story,omitempty"`
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration"`
	Format      string  `json:"format,omitempty"` // "json", "srt", "drawtext" or "filter_complex"
	Mode        string  `json:"mode,omitempty"`   // "pop", "fade" or "none"
	Preset      string  `json:"preset,omitempty"`
	Policy      string  `json:"policy,omitempty"`
	MaxWords    int     `json:"max_words,omitempty"`
	MaxLength   int     `json:"max_length,omitempty"` // Max characters per subtitle line
	MaxLines    int     `json:"max_lines,omitempty"`  // Max lines per subtitle segment
	Uppercase   bool    `json:"uppercase,omitempty"`
}

// passage picks the first non-empty text field.
func (r CaptionRequest) passage() string {
	for _, s := range []string{r.Text, r.Story, r.Description} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

type CaptionResponse struct {
	Format           string         `json:"format"`
	Duration         float64        `json:"duration"`
	DurationFallback bool           `json:"duration_fallback,omitempty"`
	SentenceCount    int            `json:"sentence_count"`
	PhraseCount      int            `json:"phrase_count"`
	Cues             []captions.Cue `json:"cues,omitempty"`
	SRT              string         `json:"srt,omitempty"`
	Filter           string         `json:"filter,omitempty"`
	Timestamp        string         `json:"timestamp"`
}

type BatchRequest struct {
	Items []CaptionRequest `json:"items"`
}

type BatchItem struct {
	Index    int              `json:"index"`
	Response *CaptionResponse `json:"response,omitempty"`
	Error    *ErrorResponse   `json:"error,omitempty"`
}

// ValidateRequest checks an existing SRT against the narration length.
type ValidateRequest struct {
	SRT       string  `json:"srt"`
	Duration  float64 `json:"duration,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"` // seconds; gaps up to this are ignored
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CaptionServer serves caption tracks built from a base project config.
type CaptionServer struct {
	config    *models.ProjectConfig
	uploadDir string
	probe     func(path string) (float64, bool)
}

func NewCaptionServer(config *models.ProjectConfig, uploadDir string) *CaptionServer {
	if config == nil {
		config = models.DefaultConfig()
	}
	return &CaptionServer{config: config, uploadDir: uploadDir, probe: utils.DurationOrDefault}
}

// requestError is a client mistake reported as 400.
type requestError struct {
	code string
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   "2.0.0",
	})
}

func (s *CaptionServer) listPresets(c *gin.Context) {
	presets := make(map[string]captions.AnimationConfig, len(models.Presets))
	for _, name := range models.Presets {
		cfg, err := models.WithPreset(name)
		if err != nil {
			continue
		}
		presets[name] = cfg.Captions.Animation
	}
	c.JSON(http.StatusOK, gin.H{
		"presets": presets,
		"default": s.config.Settings.AnimationPreset,
		"formats": []string{FormatJSON, FormatSRT, FormatDrawText, FormatFilterComplex},
	})
}

func (s *CaptionServer) createCaptions(c *gin.Context) {
	var req CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON format: " + err.Error(),
		})
		return
	}

	resp, err := s.buildCaptions(req)
	if err != nil {
		status, body := errorBody(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *CaptionServer) createCaptionsBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON format: " + err.Error(),
		})
		return
	}
	if len(req.Items) == 0 || len(req.Items) > MAX_BATCH_SIZE {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_batch",
			Message: fmt.Sprintf("batch must hold between 1 and %d items", MAX_BATCH_SIZE),
		})
		return
	}

	results := s.buildBatch(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// buildBatch builds every item concurrently. Item failures are reported per
// item and never fail the batch.
func (s *CaptionServer) buildBatch(ctx context.Context, items []CaptionRequest) []BatchItem {
	results := make([]BatchItem, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(BATCH_CONCURRENCY)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i].Index = i
			if err := ctx.Err(); err != nil {
				results[i].Error = &ErrorResponse{Error: "cancelled", Message: err.Error()}
				return nil
			}
			resp, err := s.buildCaptions(item)
			if err != nil {
				_, body := errorBody(err)
				results[i].Error = &body
				return nil
			}
			results[i].Response = resp
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *CaptionServer) validateSRT(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid JSON format: " + err.Error(),
		})
		return
	}

	cues, err := captions.ParseSRT(strings.NewReader(req.SRT))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_srt", Message: err.Error()})
		return
	}
	if len(cues) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_srt", Message: "no cues found"})
		return
	}
	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = DEFAULT_GAP_TOLERANCE
	}

	report := captions.Coverage(cues, req.Duration, tolerance)
	if !report.Complete() {
		log.Warn().Int("gaps", len(report.Gaps)).Int("overlaps", report.Overlaps).
			Float64("percent", report.Percent).Msg("SRT does not cover the timeline")
	}
	c.JSON(http.StatusOK, gin.H{"complete": report.Complete(), "report": report})
}

// captionsForUpload probes an uploaded narration file for the duration and
// captions the "text" form field against it.
func (s *CaptionServer) captionsForUpload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(MAX_FILE_SIZE); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse multipart form or file too large",
		})
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_audio_file",
			Message: "No audio file provided in 'audio' field",
		})
		return
	}
	defer file.Close()

	if !isValidAudioFile(header.Filename) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_file_type",
			Message: "Supported formats: mp3, wav, flac, m4a, ogg, webm, mp4",
		})
		return
	}

	tempFilePath := filepath.Join(s.uploadDir, uuid.New().String()+filepath.Ext(header.Filename))
	out, err := os.Create(tempFilePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "file_save_error",
			Message: "Failed to save uploaded file",
		})
		return
	}
	defer os.Remove(tempFilePath)
	_, err = io.Copy(out, file)
	out.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "file_save_error",
			Message: "Failed to save uploaded file",
		})
		return
	}

	duration, fallback := s.probe(tempFilePath)
	req := CaptionRequest{
		Text:     c.PostForm("text"),
		Duration: duration,
		Format:   c.DefaultPostForm("format", FormatSRT),
		Mode:     c.PostForm("mode"),
		Preset:   c.PostForm("preset"),
	}
	if ml, err := strconv.Atoi(c.PostForm("max_length")); err == nil && ml > 0 {
		req.MaxLength = ml
	}
	if ml, err := strconv.Atoi(c.PostForm("max_lines")); err == nil && ml > 0 {
		req.MaxLines = ml
	}

	resp, err := s.buildCaptions(req)
	if err != nil {
		status, body := errorBody(err)
		c.JSON(status, body)
		return
	}
	resp.DurationFallback = fallback
	c.JSON(http.StatusOK, resp)
}

func (s *CaptionServer) buildCaptions(req CaptionRequest) (*CaptionResponse, error) {
	cfg, err := s.configFor(req)
	if err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = FormatJSON
	}
	switch format {
	case FormatJSON, FormatSRT, FormatDrawText, FormatFilterComplex:
	default:
		return nil, &requestError{"invalid_format", fmt.Sprintf("unknown format %q", format)}
	}

	track, err := captions.BuildTrack(req.passage(), req.Duration, cfg)
	if err != nil {
		return nil, err
	}

	resp := &CaptionResponse{
		Format:        format,
		Duration:      track.Duration,
		SentenceCount: len(track.Sentences),
		PhraseCount:   len(track.Cues),
		Timestamp:     time.Now().Format(time.RFC3339),
	}
	switch format {
	case FormatJSON:
		resp.Cues = track.Cues
	case FormatSRT:
		resp.SRT = track.SRT(cfg.SRT)
	case FormatDrawText:
		resp.Filter = captions.FilterChain(track, cfg.Style)
	case FormatFilterComplex:
		resp.Filter = captions.FilterComplex(track, cfg.Style, "0:v", "v")
	}
	log.Debug().Str("format", format).Int("phrases", resp.PhraseCount).Float64("duration", resp.Duration).Msg("captions built")
	return resp, nil
}

// configFor applies request overrides to the server's base configuration.
func (s *CaptionServer) configFor(req CaptionRequest) (captions.Config, error) {
	cfg, err := s.config.CaptionConfigWithPreset(req.Preset)
	if err != nil {
		return captions.Config{}, &requestError{"invalid_preset", err.Error()}
	}

	if req.Mode != "" {
		mode := captions.Mode(req.Mode)
		if !mode.IsValid() {
			return captions.Config{}, &requestError{"invalid_mode", fmt.Sprintf("unknown animation mode %q", req.Mode)}
		}
		cfg.Animation.Mode = mode
	}
	if req.Policy != "" {
		policy := captions.Policy(req.Policy)
		if !policy.IsValid() {
			return captions.Config{}, &requestError{"invalid_policy", fmt.Sprintf("unknown timing policy %q", req.Policy)}
		}
		cfg.Policy = policy
	}
	if req.MaxWords > 0 {
		cfg.Segment.MaxWordsPerPhrase = req.MaxWords
	}
	if req.MaxLength > 0 {
		cfg.SRT.MaxCharsPerLine = req.MaxLength
	}
	if req.MaxLines > 0 {
		cfg.SRT.MaxLines = req.MaxLines
	}
	if req.Uppercase {
		cfg.SRT.Uppercase = true
	}
	return cfg, nil
}

func errorBody(err error) (int, ErrorResponse) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, ErrorResponse{Error: reqErr.code, Message: reqErr.msg}
	case errors.Is(err, captions.ErrEmptyInput):
		return http.StatusBadRequest, ErrorResponse{Error: "empty_input", Message: "text, story or description is required"}
	case errors.Is(err, captions.ErrInvalidDuration):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_duration", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "caption_failed", Message: err.Error()}
	}
}

func isValidAudioFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	validExts := []string{".mp3", ".wav", ".flac", ".m4a", ".ogg", ".webm", ".mp4"}

	for _, validExt := range validExts {
		if ext == validExt {
			return true
		}
	}
	return false
}
