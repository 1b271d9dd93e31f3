package captions

import (
	"fmt"
	"strconv"
	"strings"
)

// Position anchors caption text on the frame.
type Position string

const (
	PositionCenter Position = "center"
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionCustom Position = "custom"
)

// Style describes how drawtext renders every cue of a track.
type Style struct {
	FontFile    string `json:"font_file" yaml:"font_file"`
	Font        string `json:"font" yaml:"font"`
	FontSize    int    `json:"font_size" yaml:"font_size"`
	FontColor   string `json:"font_color" yaml:"font_color"`
	BorderColor string `json:"border_color" yaml:"border_color"`
	BorderWidth int    `json:"border_width" yaml:"border_width"`

	ShadowColor string `json:"shadow_color" yaml:"shadow_color"`
	ShadowX     int    `json:"shadow_x" yaml:"shadow_x"`
	ShadowY     int    `json:"shadow_y" yaml:"shadow_y"`

	Position Position `json:"position" yaml:"position"`
	// X and Y are compositor expressions used with PositionCustom.
	X string `json:"x" yaml:"x"`
	Y string `json:"y" yaml:"y"`
	// Margin is the distance from the frame edge for top and bottom placement.
	Margin int `json:"margin" yaml:"margin"`

	// OffsetCycle shifts cue i vertically by OffsetCycle[i%len(OffsetCycle)] pixels.
	OffsetCycle []int `json:"offset_cycle" yaml:"offset_cycle"`
}

// DefaultOffsetCycle steps consecutive cues -50, -20 and +10 px around the anchor.
var DefaultOffsetCycle = []int{-50, -20, 10}

// DefaultStyle is centred 60px white text with a 3px black border, cycling
// through DefaultOffsetCycle. An empty offset_cycle disables the cycle.
func DefaultStyle() Style {
	return Style{
		FontSize:    60,
		FontColor:   "white",
		BorderColor: "black",
		BorderWidth: 3,
		Position:    PositionCenter,
		Margin:      50,
		OffsetCycle: append([]int(nil), DefaultOffsetCycle...),
	}
}

func (s Style) position(index int) (string, string) {
	x, y := "(w-text_w)/2", "(h-text_h)/2"
	switch s.Position {
	case PositionTop:
		y = strconv.Itoa(s.Margin)
	case PositionBottom:
		y = fmt.Sprintf("h-text_h-%d", s.Margin)
	case PositionCustom:
		if s.X != "" {
			x = s.X
		}
		if s.Y != "" {
			y = s.Y
		}
	}
	if len(s.OffsetCycle) > 0 {
		if off := s.OffsetCycle[index%len(s.OffsetCycle)]; off > 0 {
			y += "+" + strconv.Itoa(off)
		} else if off < 0 {
			y += strconv.Itoa(off)
		}
	}
	return x, y
}

// DrawTextFilter renders one cue as a drawtext filter. index drives the
// vertical offset cycle.
func DrawTextFilter(cue Cue, index int, style Style) string {
	size := style.FontSize
	if size <= 0 {
		size = 60
	}

	opts := make([]string, 0, 14)
	if style.FontFile != "" {
		opts = append(opts, "fontfile="+EscapeOptionValue(style.FontFile))
	} else if style.Font != "" {
		opts = append(opts, "font="+EscapeOptionValue(style.Font))
	}
	opts = append(opts, "text="+EscapeText(cue.Text))

	fontsize := strconv.Itoa(size)
	alpha := ""
	if c := cue.Curve; c != nil {
		switch c.Param {
		case "fontsize":
			fontsize = quote(Render(Scale(c.Expr(), float64(size))))
		case "alpha":
			alpha = quote(Render(c.Expr()))
		}
	}
	opts = append(opts, "fontsize="+fontsize)

	if style.FontColor != "" {
		opts = append(opts, "fontcolor="+EscapeOptionValue(style.FontColor))
	}
	if style.BorderWidth > 0 {
		if style.BorderColor != "" {
			opts = append(opts, "bordercolor="+EscapeOptionValue(style.BorderColor))
		}
		opts = append(opts, "borderw="+strconv.Itoa(style.BorderWidth))
	}
	if style.ShadowColor != "" {
		opts = append(opts,
			"shadowcolor="+EscapeOptionValue(style.ShadowColor),
			"shadowx="+strconv.Itoa(style.ShadowX),
			"shadowy="+strconv.Itoa(style.ShadowY),
		)
	}

	x, y := style.position(index)
	opts = append(opts, "x="+quote(x), "y="+quote(y))
	if alpha != "" {
		opts = append(opts, "alpha="+alpha)
	}
	// Half-open [start, end) so adjacent cues never share a frame.
	opts = append(opts, fmt.Sprintf("enable='gte(t,%s)*lt(t,%s)'", formatNumber(cue.Start), formatNumber(cue.End)))

	return "drawtext=" + strings.Join(opts, ":")
}

// FilterChain joins the drawtext filters of every cue with commas, suitable
// for -vf.
func FilterChain(track *Track, style Style) string {
	filters := make([]string, len(track.Cues))
	for i, cue := range track.Cues {
		filters[i] = DrawTextFilter(cue, i, style)
	}
	return strings.Join(filters, ",")
}

// FilterComplex wraps FilterChain with input and output pad labels, e.g.
// FilterComplex(track, style, "0:v", "v") gives "[0:v]drawtext=...[v]".
func FilterComplex(track *Track, style Style, in, out string) string {
	return "[" + in + "]" + FilterChain(track, style) + "[" + out + "]"
}

// EscapeText escapes phrase text for a drawtext text= value inside a
// filtergraph: drawtext expansion, then option value, then filtergraph level.
func EscapeText(s string) string {
	return EscapeOptionValue(escapeChars(s, `\%`))
}

// EscapeOptionValue escapes a literal filter option value at the option and
// filtergraph levels.
func EscapeOptionValue(s string) string {
	return escapeChars(escapeChars(s, `\':`), `\'[],;`)
}

func escapeChars(s, special string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func quote(expr string) string {
	return "'" + expr + "'"
}
