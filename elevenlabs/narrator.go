package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Speaker turns text into audio.
type Speaker interface {
	TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Narrator synthesizes a whole passage chunk by chunk.
type Narrator struct {
	Speaker     Speaker
	VoiceID     string
	CharLimit   int // per request, defaults to 2500
	Concurrency int // parallel requests, defaults to 2
}

// Synthesize writes narration_001.mp3, narration_002.mp3, ... into dir and
// returns the paths in passage order.
func (n *Narrator) Synthesize(ctx context.Context, text, dir string) ([]string, error) {
	if n.Speaker == nil {
		return nil, errors.New("narrator has no speaker")
	}
	limit := n.CharLimit
	if limit <= 0 {
		limit = 2500
	}
	concurrency := n.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	chunks := SplitTextByCharLimit(text, limit)
	if len(chunks) == 0 {
		return nil, errors.New("nothing to narrate")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	paths := make([]string, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			audio, err := n.Speaker.TextToSpeech(ctx, chunk, n.VoiceID)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i+1, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("narration_%03d.mp3", i+1))
			if err := os.WriteFile(path, audio, 0644); err != nil {
				return fmt.Errorf("chunk %d: %w", i+1, err)
			}
			log.Debug().Int("chunk", i+1).Int("bytes", len(audio)).Str("file", path).Msg("narration chunk saved")
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Int("chunks", len(chunks)).Str("dir", dir).Msg("narration synthesized")
	return paths, nil
}
