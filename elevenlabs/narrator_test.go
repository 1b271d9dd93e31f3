package elevenlabs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestSplitTextByCharLimit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"fits", "Short text.", 100, []string{"Short text."}},
		{"empty", "   ", 10, nil},
		{"sentences grouped", "One two. Three four! Five six?", 20, []string{"One two. Three four!", "Five six?"}},
		{"long sentence by words", "alpha beta gamma delta.", 11, []string{"alpha beta", "gamma", "delta."}},
		{"oversized word", "Hi. Supercalifragilistic. Yo.", 8, []string{"Hi.", "Supercalifragilistic.", "Yo."}},
		{"no limit", "A. B.", 0, []string{"A. B."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTextByCharLimit(tt.text, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTextByCharLimit() = %q, want %q", got, tt.want)
			}
			for _, b := range got {
				if tt.limit > 0 && len(b) > tt.limit && strings.Contains(b, " ") {
					t.Errorf("block %q exceeds limit %d", b, tt.limit)
				}
			}
		})
	}
}

type fakeSpeaker struct {
	mu    sync.Mutex
	texts []string
	fail  string
}

func (f *fakeSpeaker) TextToSpeech(_ context.Context, text, voiceID string) ([]byte, error) {
	if f.fail != "" && strings.Contains(text, f.fail) {
		return nil, errors.New("boom")
	}
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return []byte(voiceID + ":" + text), nil
}

func TestNarratorSynthesize(t *testing.T) {
	dir := t.TempDir()
	speaker := &fakeSpeaker{}
	n := &Narrator{Speaker: speaker, VoiceID: "v", CharLimit: 20, Concurrency: 3}

	paths, err := n.Synthesize(context.Background(), "One two. Three four! Five six?", dir)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	want := []string{filepath.Join(dir, "narration_001.mp3"), filepath.Join(dir, "narration_002.mp3")}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(paths[1])
	if err != nil || string(data) != "v:Five six?" {
		t.Errorf("second chunk = %q, %v", data, err)
	}
}

func TestNarratorSynthesizeError(t *testing.T) {
	n := &Narrator{Speaker: &fakeSpeaker{fail: "Five"}, CharLimit: 20}
	if _, err := n.Synthesize(context.Background(), "One two. Three four! Five six?", t.TempDir()); err == nil {
		t.Error("Synthesize() returned no error for a failing chunk")
	}
	if _, err := (&Narrator{}).Synthesize(context.Background(), "x", t.TempDir()); err == nil {
		t.Error("Synthesize() without a speaker returned no error")
	}
	if _, err := n.Synthesize(context.Background(), "  ", t.TempDir()); err == nil {
		t.Error("Synthesize() of empty text returned no error")
	}
}
