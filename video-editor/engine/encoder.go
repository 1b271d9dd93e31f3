package engine

import (
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// encoderSettings picks the encoder once per editor.
func (ve *VideoEditor) encoderSettings() EncoderSettings {
	ve.encoderOnce.Do(func() {
		ve.encoder = ve.selectEncoder()
	})
	return ve.encoder
}

func (ve *VideoEditor) selectEncoder() EncoderSettings {
	if ve.UseGPU {
		if ve.isNVIDIAGPUAvailable() {
			return ve.nvidiaEncoderSettings(ve.nvidiaGPUGeneration())
		}
		if ve.isEncoderAvailable("h264_qsv") {
			log.Info().Msg("using Intel QuickSync encoding")
			return EncoderSettings{Codec: "h264_qsv", Args: map[string]any{
				"preset":         "fast",
				"global_quality": 20,
			}}
		}
		log.Warn().Msg("GPU encoding requested but no usable GPU encoder found, falling back to CPU")
	}
	return ve.cpuEncoderSettings()
}

func (ve *VideoEditor) cpuEncoderSettings() EncoderSettings {
	s := ve.Config.Settings
	return EncoderSettings{Codec: "libx264", Args: map[string]any{
		"preset": s.Preset,
		"crf":    s.CRF,
	}}
}

func (ve *VideoEditor) isNVIDIAGPUAvailable() bool {
	if !ffmpegAvailable("nvidia-smi") {
		return false
	}
	output, err := exec.Command("nvidia-smi", "-L").Output()
	if err != nil || strings.TrimSpace(string(output)) == "" {
		log.Debug().Err(err).Msg("no NVIDIA GPU reported by nvidia-smi")
		return false
	}
	log.Info().Str("gpus", strings.TrimSpace(string(output))).Msg("detected NVIDIA GPUs")
	return ve.isEncoderAvailable("h264_nvenc")
}

// isEncoderAvailable runs a one-second test encode.
func (ve *VideoEditor) isEncoderAvailable(encoder string) bool {
	if !ffmpegAvailable("ffmpeg") {
		return false
	}
	testCmd := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=1",
		"-t", "1", "-c:v", encoder, "-f", "null", "-")
	if err := testCmd.Run(); err != nil {
		log.Debug().Err(err).Str("encoder", encoder).Msg("encoder test failed")
		return false
	}
	return true
}

func (ve *VideoEditor) nvidiaGPUGeneration() string {
	output, err := exec.Command("nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		log.Warn().Err(err).Msg("could not detect GPU model")
		return "unknown"
	}
	return classifyNVIDIAGPU(string(output))
}

// classifyNVIDIAGPU maps an nvidia-smi model name to an encoder tuning family.
func classifyNVIDIAGPU(name string) string {
	gpuName := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(gpuName, "rtx 4") || strings.Contains(gpuName, "rtx 3"):
		return "rtx"
	case strings.Contains(gpuName, "rtx 2"):
		return "rtx20"
	case strings.Contains(gpuName, "gtx 16") || strings.Contains(gpuName, "gtx 10"):
		return "gtx"
	case strings.Contains(gpuName, "t4"):
		return "t4"
	default:
		return "unknown"
	}
}

func (ve *VideoEditor) nvidiaEncoderSettings(generation string) EncoderSettings {
	log.Info().Str("generation", generation).Str("device", ve.GPUDevice).Msg("using NVIDIA GPU encoding")

	args := map[string]any{"gpu": ve.GPUDevice}
	switch generation {
	case "rtx":
		merge(args, map[string]any{
			"preset": "p4", "tune": "hq", "rc": "vbr", "cq": 20,
			"b:v": "6M", "maxrate": "10M", "bufsize": "12M",
			"spatial_aq": 1, "temporal_aq": 1,
		})
	case "rtx20", "t4":
		merge(args, map[string]any{
			"preset": "slow", "tune": "hq", "rc": "vbr", "cq": 21,
			"b:v": "5M", "maxrate": "8M", "bufsize": "10M",
		})
	case "gtx":
		merge(args, map[string]any{
			"preset": "medium", "rc": "vbr", "cq": 22,
			"b:v": "4M", "maxrate": "6M", "bufsize": "8M", "profile:v": "main",
		})
	default:
		// most compatible settings
		merge(args, map[string]any{
			"preset": "default", "rc": "cbr", "b:v": "4M", "profile:v": "baseline",
		})
	}
	return EncoderSettings{Codec: "h264_nvenc", Args: args}
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
