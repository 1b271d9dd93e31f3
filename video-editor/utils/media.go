package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultDuration is used when a media file cannot be probed.
const DefaultDuration = 30.0

const probeTimeout = 30 * time.Second

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// GetMediaDuration returns the duration of an audio or video file in seconds using ffprobe
func GetMediaDuration(filePath string) (float64, error) {
	out, err := ffmpeg.ProbeWithTimeout(filePath, probeTimeout, ffmpeg.KwArgs{"v": "error"})
	if err != nil {
		return 0, fmt.Errorf("failed to probe %s: %w", filePath, err)
	}
	return ParseProbeDuration([]byte(out))
}

// ParseProbeDuration reads the container duration from ffprobe JSON output,
// falling back to the longest stream when the container has none.
func ParseProbeDuration(data []byte) (float64, error) {
	var result probeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("failed to parse probe output: %w", err)
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && d > 0 {
		return d, nil
	}

	var longest float64
	for _, s := range result.Streams {
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > longest {
			longest = d
		}
	}
	if longest <= 0 {
		return 0, fmt.Errorf("no duration in probe output")
	}
	return longest, nil
}

// DurationOrDefault probes filePath and substitutes DefaultDuration on
// failure. The boolean reports whether the fallback was used.
func DurationOrDefault(filePath string) (float64, bool) {
	d, err := GetMediaDuration(filePath)
	if err != nil {
		log.Warn().Err(err).Str("file", filePath).Float64("fallback", DefaultDuration).Msg("duration probe failed")
		return DefaultDuration, true
	}
	return d, false
}
