package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"storyreel/video-editor/captions"
)

// Animation presets. Each fills only the animation fields left unset.
const (
	PresetGentle   = "gentle"
	PresetModerate = "moderate"
	PresetDynamic  = "dynamic"
	PresetCustom   = "custom"
)

// Presets lists the preset names in display order.
var Presets = []string{PresetGentle, PresetModerate, PresetDynamic, PresetCustom}

// Burn modes for putting captions onto footage.
const (
	BurnDrawText  = "drawtext"
	BurnSubtitles = "subtitles"
)

// ProjectConfig represents the complete project configuration
type ProjectConfig struct {
	Settings Settings        `json:"settings" yaml:"settings"`
	Captions captions.Config `json:"captions" yaml:"captions"`
	// Subtitles styles the subtitles burn mode
	Subtitles SubtitleStyle `json:"subtitles" yaml:"subtitles"`
}

// Settings contains global video settings
type Settings struct {
	Width       int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int     `json:"height,omitempty" yaml:"height,omitempty"`
	FPS         int     `json:"fps,omitempty" yaml:"fps,omitempty"`
	VoiceVolume float64 `json:"voice_volume,omitempty" yaml:"voice_volume,omitempty"`

	AnimationPreset   string `json:"animation_preset,omitempty" yaml:"animation_preset,omitempty"` // "gentle", "moderate", "dynamic", "custom"
	BurnMode          string `json:"burn_mode,omitempty" yaml:"burn_mode,omitempty"`               // "drawtext" or "subtitles"
	MaxConcurrentJobs int    `json:"max_concurrent_jobs,omitempty" yaml:"max_concurrent_jobs,omitempty"`

	// Encoder settings
	UseGPU       bool   `json:"use_gpu" yaml:"use_gpu"`
	GPUDevice    string `json:"gpu_device" yaml:"gpu_device"`
	Preset       string `json:"preset,omitempty" yaml:"preset,omitempty"` // x264 preset
	CRF          int    `json:"crf,omitempty" yaml:"crf,omitempty"`
	AudioBitrate string `json:"audio_bitrate,omitempty" yaml:"audio_bitrate,omitempty"`
}

// SubtitleStyle is the ASS style forced onto the subtitles filter.
type SubtitleStyle struct {
	FontName      string `json:"font_name" yaml:"font_name"`
	FontSize      int    `json:"font_size" yaml:"font_size"`
	PrimaryColour string `json:"primary_colour" yaml:"primary_colour"`
	OutlineColour string `json:"outline_colour" yaml:"outline_colour"`
	Bold          bool   `json:"bold" yaml:"bold"`
	Outline       int    `json:"outline" yaml:"outline"`
	Shadow        int    `json:"shadow" yaml:"shadow"`
	Alignment     int    `json:"alignment" yaml:"alignment"` // numpad layout, 2 = bottom centre
	MarginV       int    `json:"margin_v" yaml:"margin_v"`
}

// Example project.yaml configuration:
/*
settings:
  fps: 30
  animation_preset: dynamic
  burn_mode: drawtext
captions:
  segment:
    max_words_per_phrase: 4
  policy: equal
  animation:
    mode: pop
  style:
    font_size: 72
    position: bottom
*/

// DefaultConfig returns the configuration used when no project file is given.
func DefaultConfig() *ProjectConfig {
	config := baseConfig()
	config.applyDefaults()
	return config
}

// baseConfig prefills everything a preset does not own, so a decoded file
// only overrides what it names.
func baseConfig() *ProjectConfig {
	defaults := captions.DefaultConfig()
	return &ProjectConfig{
		Captions: captions.Config{
			Segment: defaults.Segment,
			Policy:  defaults.Policy,
			Animation: captions.AnimationConfig{
				Fallback: captions.DefaultSplit,
			},
			Style: defaults.Style,
			SRT:   defaults.SRT,
		},
		Subtitles: SubtitleStyle{
			FontName:      "Arial",
			FontSize:      24,
			PrimaryColour: "&H00FFFFFF",
			OutlineColour: "&H00000000",
			Outline:       2,
			Alignment:     2,
			MarginV:       40,
		},
	}
}

// LoadConfig loads the project configuration from a JSON or YAML file
func LoadConfig(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(configPath))
	config, err := ParseConfig(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig decodes a project configuration, fills defaults and validates it.
func ParseConfig(data []byte, isYAML bool) (*ProjectConfig, error) {
	config := baseConfig()
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ProjectConfig) applyDefaults() {
	s := &c.Settings
	if s.Width <= 0 {
		s.Width = 1920
	}
	if s.Height <= 0 {
		s.Height = 1080
	}
	if s.FPS <= 0 {
		s.FPS = 30
	}
	if s.VoiceVolume <= 0 {
		s.VoiceVolume = 1.0
	}
	if s.AnimationPreset == "" {
		s.AnimationPreset = PresetModerate
	}
	if s.BurnMode == "" {
		s.BurnMode = BurnDrawText
	}
	if s.MaxConcurrentJobs <= 0 {
		s.MaxConcurrentJobs = 2
	}
	if s.Preset == "" {
		s.Preset = "medium"
	}
	if s.CRF <= 0 {
		s.CRF = 23
	}
	if s.AudioBitrate == "" {
		s.AudioBitrate = "192k"
	}

	if c.Captions.Policy == "" {
		c.Captions.Policy = captions.PolicyEqual
	}
	if c.Captions.Animation.FrameRate <= 0 {
		c.Captions.Animation.FrameRate = float64(s.FPS)
	}
	c.applyAnimationPreset()
}

// applyAnimationPreset applies predefined animation settings
func (c *ProjectConfig) applyAnimationPreset() {
	a := &c.Captions.Animation
	if a.Mode == "" {
		a.Mode = captions.ModePop
	}

	switch c.Settings.AnimationPreset {
	case PresetGentle:
		fill(&a.GrowFrames, 5)
		fill(&a.ShrinkFrames, 5)
		fill(&a.StartScale, 0.9)
		fill(&a.PeakScale, 1.05)
		fill(&a.BaseScale, 1.0)
		fill(&a.FadeIn, 0.3)
		fill(&a.FadeOut, 0.3)
		if a.Easing == "" {
			a.Easing = captions.EaseSmooth
		}
	case PresetDynamic:
		fill(&a.GrowFrames, 2)
		fill(&a.ShrinkFrames, 2)
		fill(&a.StartScale, 0.5)
		fill(&a.PeakScale, 1.35)
		fill(&a.BaseScale, 1.0)
		fill(&a.FadeIn, 0.1)
		fill(&a.FadeOut, 0.1)
	default: // moderate, custom or fallback
		d := captions.DefaultAnimationConfig()
		fill(&a.GrowFrames, d.GrowFrames)
		fill(&a.ShrinkFrames, d.ShrinkFrames)
		fill(&a.StartScale, d.StartScale)
		fill(&a.PeakScale, d.PeakScale)
		fill(&a.BaseScale, d.BaseScale)
		fill(&a.FadeIn, d.FadeIn)
		fill(&a.FadeOut, d.FadeOut)
	}
	if a.Easing == "" {
		a.Easing = captions.EaseLinear
	}
}

func fill(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// Validate reports every out-of-range value in the configuration.
func (c *ProjectConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	s := c.Settings
	check(s.Width > 0 && s.Height > 0, "settings: frame size %dx%d must be positive", s.Width, s.Height)
	check(s.FPS > 0, "settings: fps must be positive, got %d", s.FPS)
	check(validPreset(s.AnimationPreset), "settings: unknown animation preset %q", s.AnimationPreset)
	check(s.BurnMode == BurnDrawText || s.BurnMode == BurnSubtitles, "settings: unknown burn mode %q", s.BurnMode)
	check(s.CRF <= 51, "settings: crf must be at most 51, got %d", s.CRF)

	seg := c.Captions.Segment
	check(seg.MaxWordsPerPhrase > 0, "segment: max_words_per_phrase must be positive, got %d", seg.MaxWordsPerPhrase)
	check(seg.MaxCharsPerPhrase >= 0, "segment: max_chars_per_phrase must not be negative")
	check(seg.MinTrailingWords >= 0, "segment: min_trailing_words must not be negative")

	check(c.Captions.Policy.IsValid(), "captions: unknown policy %q", c.Captions.Policy)

	a := c.Captions.Animation
	check(a.Mode.IsValid(), "animation: unknown mode %q", a.Mode)
	check(a.FrameRate > 0, "animation: frame_rate must be positive, got %v", a.FrameRate)
	check(a.StartScale > 0 && a.PeakScale > 0 && a.BaseScale > 0, "animation: scales must be positive")
	check(a.GrowSeconds >= 0 && a.ShrinkSeconds >= 0, "animation: phase seconds must not be negative")
	check(a.Easing == captions.EaseLinear || a.Easing == captions.EaseSmooth, "animation: unknown easing %q", a.Easing)
	f := a.Fallback
	check(f.Grow >= 0 && f.Hold >= 0 && f.Shrink >= 0 && math.Abs(f.Grow+f.Hold+f.Shrink-1) < 1e-6,
		"animation: fallback split %v/%v/%v must be non-negative and sum to 1", f.Grow, f.Hold, f.Shrink)

	st := c.Captions.Style
	check(st.FontSize > 0, "style: font_size must be positive, got %d", st.FontSize)
	switch st.Position {
	case captions.PositionCenter, captions.PositionTop, captions.PositionBottom, captions.PositionCustom:
	default:
		check(false, "style: unknown position %q", st.Position)
	}

	srt := c.Captions.SRT
	check(srt.MaxCharsPerLine >= 0 && srt.MaxLines >= 0, "srt: line limits must not be negative")

	return errors.Join(errs...)
}

func validPreset(name string) bool {
	for _, p := range Presets {
		if p == name {
			return true
		}
	}
	return false
}

// CaptionConfig returns the caption pipeline configuration.
func (c *ProjectConfig) CaptionConfig() captions.Config {
	return c.Captions
}

// CaptionConfigWithPreset returns the caption configuration with the
// animation of another preset. An empty name keeps the project's own. The
// frame rate stays the project's, so frame-based phases keep their length.
func (c *ProjectConfig) CaptionConfigWithPreset(name string) (captions.Config, error) {
	cfg := c.CaptionConfig()
	if name == "" {
		return cfg, nil
	}
	p, err := WithPreset(name)
	if err != nil {
		return captions.Config{}, err
	}
	frameRate := cfg.Animation.FrameRate
	cfg.Animation = p.Captions.Animation
	cfg.Animation.FrameRate = frameRate
	return cfg, nil
}

// WithPreset returns a copy of the defaults with another animation preset applied.
func WithPreset(name string) (*ProjectConfig, error) {
	if !validPreset(name) {
		return nil, fmt.Errorf("unknown animation preset %q", name)
	}
	config := baseConfig()
	config.Settings.AnimationPreset = name
	config.applyDefaults()
	return config, nil
}
