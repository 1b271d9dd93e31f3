package engine

import (
	"sync"

	"storyreel/video-editor/captions"
	"storyreel/video-editor/models"
)

// VideoEditor burns caption tracks onto footage with ffmpeg
type VideoEditor struct {
	OutputDir  string
	Config     *models.ProjectConfig
	MaxWorkers int
	UseGPU     bool   // GPU encoding flag
	GPUDevice  string // GPU device index for NVENC

	encoderOnce sync.Once
	encoder     EncoderSettings
}

// Burn modes
const (
	BurnDrawText  = models.BurnDrawText
	BurnSubtitles = models.BurnSubtitles
)

// RenderRequest describes one captioned render.
type RenderRequest struct {
	VideoPath  string
	AudioPath  string // optional narration; replaces the footage audio
	OutputPath string

	Track *captions.Track // required for BurnDrawText
	Burn  string          // BurnDrawText or BurnSubtitles, defaults to the project setting
	// SRTPath is required for BurnSubtitles
	SRTPath string

	// LoopVideo repeats short footage until the narration or track ends.
	LoopVideo bool
}

// EncoderSettings is the video codec and its output options.
type EncoderSettings struct {
	Codec string
	Args  map[string]any
}
