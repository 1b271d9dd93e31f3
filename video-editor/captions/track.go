package captions

import (
	"fmt"
	"io"
)

// Config bundles everything needed to turn a passage into a caption track.
type Config struct {
	Segment   SegmentOptions  `json:"segment" yaml:"segment"`
	Policy    Policy          `json:"policy" yaml:"policy"`
	Animation AnimationConfig `json:"animation" yaml:"animation"`
	Style     Style           `json:"style" yaml:"style"`
	SRT       SRTOptions      `json:"srt" yaml:"srt"`
}

// DefaultConfig returns the defaults of every section.
func DefaultConfig() Config {
	return Config{
		Segment:   DefaultSegmentOptions(),
		Policy:    PolicyEqual,
		Animation: DefaultAnimationConfig(),
		Style:     DefaultStyle(),
		SRT:       DefaultSRTOptions(),
	}
}

// Cue is a timed phrase plus its animation curve, if any.
type Cue struct {
	TimedPhrase
	Curve *AnimationCurve `json:"curve,omitempty"`
}

// Track is the full caption track for one passage.
type Track struct {
	Duration  float64    `json:"duration"`
	Sentences []Sentence `json:"sentences"`
	Cues      []Cue      `json:"cues"`
}

// BuildTrack segments text, allocates its phrases over duration and attaches
// the configured animation curve to every cue. It fails with ErrEmptyInput
// or ErrInvalidDuration and never returns a partial track.
func BuildTrack(text string, duration float64, cfg Config) (*Track, error) {
	sentences, err := Segment(text, cfg.Segment)
	if err != nil {
		return nil, err
	}
	timed, err := Allocate(sentences, duration, cfg.Policy)
	if err != nil {
		return nil, err
	}

	cues := make([]Cue, len(timed))
	for i, p := range timed {
		curve, err := CurveFor(p, cfg.Animation)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", i+1, err)
		}
		cues[i] = Cue{TimedPhrase: p, Curve: curve}
	}
	return &Track{Duration: duration, Sentences: sentences, Cues: cues}, nil
}

// Phrases returns the timed phrases of the track in order.
func (t *Track) Phrases() []TimedPhrase {
	out := make([]TimedPhrase, len(t.Cues))
	for i, c := range t.Cues {
		out[i] = c.TimedPhrase
	}
	return out
}

// WriteSRT writes the track as a subtitle file.
func (t *Track) WriteSRT(w io.Writer, opts SRTOptions) error {
	return WriteSRT(w, t.Phrases(), opts)
}

// SRT returns the track as subtitle text.
func (t *Track) SRT(opts SRTOptions) string {
	return FormatSRT(t.Phrases(), opts)
}
