package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"storyreel/video-editor/utils"
)

// MergeNarration concatenates narration files in order into outputPath and
// returns the merged duration.
func (ve *VideoEditor) MergeNarration(ctx context.Context, files []string, outputPath string) (float64, error) {
	if len(files) == 0 {
		return 0, errors.New("no narration files to merge")
	}
	for _, f := range files {
		if !utils.FileExists(f) {
			return 0, fmt.Errorf("narration file does not exist: %s", f)
		}
	}
	if err := utils.EnsureDirectoryExists(ve.OutputDir); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	concatFile := filepath.Join(ve.OutputDir, "narration_"+uuid.NewString()+".txt")
	abs := make([]string, len(files))
	for i, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return 0, err
		}
		abs[i] = toFFmpegPath(p)
	}
	if err := utils.CreateConcatFile(abs, concatFile); err != nil {
		return 0, fmt.Errorf("failed to create concat file: %w", err)
	}
	defer utils.CleanupTempFiles([]string{concatFile})

	log.Info().Int("files", len(files)).Str("output", outputPath).Msg("merging narration")
	if err := runFFmpeg(ctx, buildMergeCommand(concatFile, outputPath)); err != nil {
		return 0, fmt.Errorf("failed to merge narration: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return 0, fmt.Errorf("output file was not created: %s", outputPath)
	}
	return utils.GetMediaDuration(outputPath)
}

func buildMergeCommand(concatFile, outputPath string) *ffmpeg.Stream {
	return ffmpeg.Input(toFFmpegPath(concatFile), ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(toFFmpegPath(outputPath), ffmpeg.KwArgs{"c": "copy", "avoid_negative_ts": "make_zero"}).
		OverWriteOutput()
}
