package captions

import (
	"fmt"
	"math"
)

// Mode selects the per-phrase animation.
type Mode string

const (
	// ModePop grows the text from StartScale to PeakScale, holds, then settles at BaseScale.
	ModePop Mode = "pop"

	// ModeFade ramps opacity 0→1 at the start and 1→0 at the end at constant size.
	ModeFade Mode = "fade"

	// ModeNone draws static text.
	ModeNone Mode = "none"
)

// IsValid reports whether m is a known animation mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModePop, ModeFade, ModeNone:
		return true
	}
	return false
}

// Split is the proportional grow/hold/shrink share used when the configured
// phase durations do not fit inside a phrase.
type Split struct {
	Grow   float64 `json:"grow" yaml:"grow"`
	Hold   float64 `json:"hold" yaml:"hold"`
	Shrink float64 `json:"shrink" yaml:"shrink"`
}

// DefaultSplit is 20% grow, 60% hold, 20% shrink.
var DefaultSplit = Split{Grow: 0.2, Hold: 0.6, Shrink: 0.2}

// AnimationConfig holds the pop and fade parameters.
type AnimationConfig struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// FrameRate converts GrowFrames and ShrinkFrames to seconds.
	FrameRate    float64 `json:"frame_rate" yaml:"frame_rate"`
	GrowFrames   float64 `json:"grow_frames" yaml:"grow_frames"`
	ShrinkFrames float64 `json:"shrink_frames" yaml:"shrink_frames"`

	// GrowSeconds and ShrinkSeconds override the frame counts when positive.
	GrowSeconds   float64 `json:"grow_seconds" yaml:"grow_seconds"`
	ShrinkSeconds float64 `json:"shrink_seconds" yaml:"shrink_seconds"`

	StartScale float64 `json:"start_scale" yaml:"start_scale"`
	PeakScale  float64 `json:"peak_scale" yaml:"peak_scale"`
	BaseScale  float64 `json:"base_scale" yaml:"base_scale"`

	FadeIn  float64 `json:"fade_in" yaml:"fade_in"`
	FadeOut float64 `json:"fade_out" yaml:"fade_out"`

	Fallback Split  `json:"fallback" yaml:"fallback"`
	Easing   Easing `json:"easing" yaml:"easing"`
}

// DefaultAnimationConfig is a 3-frame pop at 30fps scaling 0.7 → 1.2 → 1.0.
func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{
		Mode:         ModePop,
		FrameRate:    30,
		GrowFrames:   3,
		ShrinkFrames: 3,
		StartScale:   0.7,
		PeakScale:    1.2,
		BaseScale:    1.0,
		FadeIn:       0.2,
		FadeOut:      0.2,
		Fallback:     DefaultSplit,
		Easing:       EaseLinear,
	}
}

// GrowDuration is the configured grow phase in seconds.
func (c AnimationConfig) GrowDuration() float64 {
	if c.GrowSeconds > 0 {
		return c.GrowSeconds
	}
	return framesToSeconds(c.GrowFrames, c.FrameRate)
}

// ShrinkDuration is the configured shrink phase in seconds.
func (c AnimationConfig) ShrinkDuration() float64 {
	if c.ShrinkSeconds > 0 {
		return c.ShrinkSeconds
	}
	return framesToSeconds(c.ShrinkFrames, c.FrameRate)
}

func framesToSeconds(frames, fps float64) float64 {
	if fps <= 0 || frames <= 0 {
		return 0
	}
	return frames / fps
}

// AnimationCurve is a three-phase curve over one phrase window. Boundaries
// are [start, end of grow, start of shrink, end]; Values are the parameter
// at each boundary.
type AnimationCurve struct {
	Param      string     `json:"param"`
	Boundaries [4]float64 `json:"boundaries"`
	Values     [4]float64 `json:"values"`
	Fallback   bool       `json:"fallback"`
	Easing     Easing     `json:"easing"`
}

// Grow, Hold and Shrink return the phase windows.
func (c AnimationCurve) Grow() (float64, float64)   { return c.Boundaries[0], c.Boundaries[1] }
func (c AnimationCurve) Hold() (float64, float64)   { return c.Boundaries[1], c.Boundaries[2] }
func (c AnimationCurve) Shrink() (float64, float64) { return c.Boundaries[2], c.Boundaries[3] }

// Expr returns the curve as an expression tree.
func (c AnimationCurve) Expr() Expr {
	b, v := c.Boundaries, c.Values
	return Piecewise{
		Cases: []Case{
			{Until: b[1], Expr: Ramp{From: v[0], To: v[1], Start: b[0], End: b[1], Easing: c.Easing}},
			{Until: b[2], Expr: Ramp{From: v[1], To: v[2], Start: b[1], End: b[2], Easing: c.Easing}},
		},
		Else: Ramp{From: v[2], To: v[3], Start: b[2], End: b[3], Easing: c.Easing},
	}
}

// At evaluates the curve at playback time t.
func (c AnimationCurve) At(t float64) float64 {
	return Eval(c.Expr(), t)
}

// PopCurve builds the grow-hold-shrink scale curve for p. Values are scale
// factors to be multiplied by the base font size.
func PopCurve(p TimedPhrase, cfg AnimationConfig) (AnimationCurve, error) {
	b, fallback, err := phaseBoundaries(p, cfg.GrowDuration(), cfg.ShrinkDuration(), cfg.Fallback)
	if err != nil {
		return AnimationCurve{}, err
	}
	return AnimationCurve{
		Param:      "fontsize",
		Boundaries: b,
		Values:     [4]float64{cfg.StartScale, cfg.PeakScale, cfg.PeakScale, cfg.BaseScale},
		Fallback:   fallback,
		Easing:     cfg.Easing,
	}, nil
}

// FadeCurve builds the opacity curve for p: 0→1 over FadeIn, 1→0 over FadeOut.
func FadeCurve(p TimedPhrase, cfg AnimationConfig) (AnimationCurve, error) {
	b, fallback, err := phaseBoundaries(p, cfg.FadeIn, cfg.FadeOut, cfg.Fallback)
	if err != nil {
		return AnimationCurve{}, err
	}
	return AnimationCurve{
		Param:      "alpha",
		Boundaries: b,
		Values:     [4]float64{0, 1, 1, 0},
		Fallback:   fallback,
		Easing:     cfg.Easing,
	}, nil
}

// CurveFor dispatches on cfg.Mode. ModeNone yields a nil curve.
func CurveFor(p TimedPhrase, cfg AnimationConfig) (*AnimationCurve, error) {
	var (
		c   AnimationCurve
		err error
	)
	switch cfg.Mode {
	case ModeNone:
		return nil, nil
	case ModeFade:
		c, err = FadeCurve(p, cfg)
	case "", ModePop:
		c, err = PopCurve(p, cfg)
	default:
		return nil, fmt.Errorf("captions: unknown animation mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// phaseBoundaries places the in/out phases inside p. When they would overlap
// or overrun the window, the phrase duration is split proportionally instead.
func phaseBoundaries(p TimedPhrase, in, out float64, split Split) ([4]float64, bool, error) {
	d := p.Duration()
	if p.Start < 0 || d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return [4]float64{}, false, fmt.Errorf("%w: phrase window [%v, %v]", ErrInvalidDuration, p.Start, p.End)
	}

	fallback := false
	if in < 0 || out < 0 || in+out >= d-windowEpsilon {
		split = normalizeSplit(split)
		in, out = d*split.Grow, d*split.Shrink
		fallback = true
	}

	b := [4]float64{p.Start, p.Start + in, p.End - out, p.End}
	for i := 1; i < len(b); i++ {
		if b[i] < b[i-1] {
			return [4]float64{}, false, ErrDegenerateWindow
		}
	}
	return b, fallback, nil
}

// windowEpsilon absorbs rounding when the phases nearly fill the window.
const windowEpsilon = 1e-9

func normalizeSplit(s Split) Split {
	if s.Grow < 0 || s.Hold < 0 || s.Shrink < 0 {
		return DefaultSplit
	}
	sum := s.Grow + s.Hold + s.Shrink
	if sum <= 0 {
		return DefaultSplit
	}
	return Split{Grow: s.Grow / sum, Hold: s.Hold / sum, Shrink: s.Shrink / sum}
}
