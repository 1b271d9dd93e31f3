package captions

import (
	"math"
	"strconv"
	"strings"
)

// Expr is a time-varying numeric parameter. It is a closed set of node types:
// Constant, Ramp and Piecewise. Render turns it into the compositor's
// expression grammar, with t as the playback time variable.
type Expr interface {
	expr()
}

// Constant is a fixed value.
type Constant struct {
	Value float64
}

// Easing shapes the progress of a Ramp.
type Easing string

const (
	EaseLinear Easing = "linear"
	EaseSmooth Easing = "smooth"
)

// Ramp moves from From to To between the keyframes Start and End. Progress is
// clamped, so the value holds at From before Start and at To after End.
type Ramp struct {
	From, To   float64
	Start, End float64
	Easing     Easing
}

// Case applies Expr while t < Until.
type Case struct {
	Until float64
	Expr  Expr
}

// Piecewise picks the first case whose threshold lies beyond t, else Else.
type Piecewise struct {
	Cases []Case
	Else  Expr
}

func (Constant) expr()  {}
func (Ramp) expr()      {}
func (Piecewise) expr() {}

// Scale multiplies every value in e by k.
func Scale(e Expr, k float64) Expr {
	switch v := e.(type) {
	case Constant:
		return Constant{Value: v.Value * k}
	case Ramp:
		v.From *= k
		v.To *= k
		return v
	case Piecewise:
		out := Piecewise{Cases: make([]Case, len(v.Cases)), Else: Scale(v.Else, k)}
		for i, c := range v.Cases {
			out.Cases[i] = Case{Until: c.Until, Expr: Scale(c.Expr, k)}
		}
		return out
	}
	return e
}

// Eval computes e at time t.
func Eval(e Expr, t float64) float64 {
	switch v := e.(type) {
	case Constant:
		return v.Value
	case Ramp:
		return v.From + (v.To-v.From)*v.progress(t)
	case Piecewise:
		for _, c := range v.Cases {
			if t < c.Until {
				return Eval(c.Expr, t)
			}
		}
		if v.Else == nil {
			return 0
		}
		return Eval(v.Else, t)
	}
	return 0
}

func (r Ramp) progress(t float64) float64 {
	span := r.End - r.Start
	if span <= 0 {
		return 1
	}
	p := math.Max(0, math.Min(1, (t-r.Start)/span))
	if r.Easing == EaseSmooth {
		p = p * p * (3 - 2*p)
	}
	return p
}

// Render serializes e to an ffmpeg expression using the t variable.
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case Constant:
		b.WriteString(formatNumber(v.Value))
	case Ramp:
		renderRamp(b, v)
	case Piecewise:
		for _, c := range v.Cases {
			b.WriteString("if(lt(t,")
			b.WriteString(formatNumber(c.Until))
			b.WriteString("),")
			render(b, c.Expr)
			b.WriteString(",")
		}
		if v.Else == nil {
			b.WriteString("0")
		} else {
			render(b, v.Else)
		}
		b.WriteString(strings.Repeat(")", len(v.Cases)))
	default:
		b.WriteString("0")
	}
}

func renderRamp(b *strings.Builder, r Ramp) {
	span := r.End - r.Start
	if span <= 0 || r.From == r.To {
		b.WriteString(formatNumber(r.To))
		return
	}
	p := "clip((t-" + formatNumber(r.Start) + ")/" + formatNumber(span) + ",0,1)"
	if r.Easing == EaseSmooth {
		p = "(" + p + ")*(" + p + ")*(3-2*" + p + ")"
	}
	b.WriteString(formatNumber(r.From))
	delta := r.To - r.From
	if delta >= 0 {
		b.WriteString("+")
	} else {
		b.WriteString("-")
		delta = -delta
	}
	b.WriteString(formatNumber(delta))
	b.WriteString("*")
	b.WriteString(p)
}

// formatNumber prints v rounded to 4 decimals without trailing zeros.
func formatNumber(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
