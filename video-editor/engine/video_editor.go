package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"storyreel/video-editor/captions"
	"storyreel/video-editor/models"
	"storyreel/video-editor/utils"
)

// NewVideoEditor creates an editor writing into outputDir. A nil config
// means the defaults.
func NewVideoEditor(outputDir string, config *models.ProjectConfig) *VideoEditor {
	if config == nil {
		config = models.DefaultConfig()
	}

	maxWorkers := runtime.NumCPU()
	if config.Settings.MaxConcurrentJobs > 0 {
		maxWorkers = config.Settings.MaxConcurrentJobs
	}

	gpuDevice := "0"
	if config.Settings.GPUDevice != "" {
		gpuDevice = config.Settings.GPUDevice
	}

	return &VideoEditor{
		OutputDir:  outputDir,
		Config:     config,
		MaxWorkers: maxWorkers,
		UseGPU:     config.Settings.UseGPU,
		GPUDevice:  gpuDevice,
	}
}

// BuildRenderCommand assembles the ffmpeg invocation for req without running it.
func (ve *VideoEditor) BuildRenderCommand(req RenderRequest) (*ffmpeg.Stream, error) {
	if req.VideoPath == "" {
		return nil, errors.New("render: video path is required")
	}
	if req.OutputPath == "" {
		return nil, errors.New("render: output path is required")
	}

	vf, err := ve.captionFilter(req)
	if err != nil {
		return nil, err
	}

	inputArgs := ffmpeg.KwArgs{}
	if req.LoopVideo {
		inputArgs["stream_loop"] = -1
	}
	video := ffmpeg.Input(toFFmpegPath(req.VideoPath), inputArgs)

	enc := ve.encoderSettings()
	outArgs := ffmpeg.KwArgs{
		"vf":      vf,
		"c:v":     enc.Codec,
		"pix_fmt": "yuv420p",
	}
	for k, v := range enc.Args {
		outArgs[k] = v
	}

	streams := []*ffmpeg.Stream{video}
	if req.AudioPath != "" {
		audio := ffmpeg.Input(toFFmpegPath(req.AudioPath))
		streams = []*ffmpeg.Stream{video.Video(), audio.Audio()}
		outArgs["c:a"] = "aac"
		outArgs["b:a"] = ve.Config.Settings.AudioBitrate
		outArgs["shortest"] = ""
	} else {
		outArgs["c:a"] = "copy"
	}
	if req.LoopVideo && req.Track != nil && req.AudioPath == "" {
		outArgs["t"] = strconv.FormatFloat(req.Track.Duration, 'f', 3, 64)
	}

	return ffmpeg.Output(streams, toFFmpegPath(req.OutputPath), outArgs).OverWriteOutput(), nil
}

func (ve *VideoEditor) captionFilter(req RenderRequest) (string, error) {
	burn := req.Burn
	if burn == "" {
		burn = ve.Config.Settings.BurnMode
	}

	switch burn {
	case BurnDrawText, "":
		if req.Track == nil || len(req.Track.Cues) == 0 {
			return "", errors.New("render: drawtext burn needs a caption track")
		}
		return captions.FilterChain(req.Track, ve.Config.Captions.Style), nil
	case BurnSubtitles:
		if req.SRTPath == "" {
			return "", errors.New("render: subtitles burn needs an SRT file")
		}
		return SubtitleFilter(req.SRTPath, ve.Config.Subtitles), nil
	default:
		return "", fmt.Errorf("render: unknown burn mode %q", burn)
	}
}

// Render runs the render command. Cancelling ctx kills ffmpeg.
func (ve *VideoEditor) Render(ctx context.Context, req RenderRequest) error {
	stream, err := ve.BuildRenderCommand(req)
	if err != nil {
		return err
	}
	if err := utils.EnsureDirectoryExists(filepath.Dir(req.OutputPath)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Info().Str("video", req.VideoPath).Str("audio", req.AudioPath).Str("output", req.OutputPath).Msg("rendering captioned video")
	if err := runFFmpeg(ctx, stream); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	log.Info().Str("output", req.OutputPath).Msg("render complete")
	return nil
}

// runFFmpeg executes a compiled stream, killing the process when ctx ends.
func runFFmpeg(ctx context.Context, stream *ffmpeg.Stream) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := stream.Compile()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debug().Str("cmd", strings.Join(cmd.Args, " ")).Msg("ffmpeg")

	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s", err, lastLines(stderr.String(), 5))
		}
		return nil
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// toFFmpegPath converts paths to forward slashes for FFmpeg (Windows compatibility)
func toFFmpegPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// ffmpegAvailable reports whether a binary is on PATH.
func ffmpegAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
