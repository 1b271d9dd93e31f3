package engine

import (
	"fmt"
	"strings"

	"storyreel/video-editor/captions"
	"storyreel/video-editor/models"
)

// SubtitleForceStyle renders an ASS force_style value.
func SubtitleForceStyle(s models.SubtitleStyle) string {
	parts := []string{}
	if s.FontName != "" {
		parts = append(parts, "FontName="+s.FontName)
	}
	if s.FontSize > 0 {
		parts = append(parts, fmt.Sprintf("FontSize=%d", s.FontSize))
	}
	if s.PrimaryColour != "" {
		parts = append(parts, "PrimaryColour="+s.PrimaryColour)
	}
	if s.OutlineColour != "" {
		parts = append(parts, "OutlineColour="+s.OutlineColour)
	}
	if s.Bold {
		parts = append(parts, "Bold=1")
	}
	parts = append(parts,
		fmt.Sprintf("Outline=%d", s.Outline),
		fmt.Sprintf("Shadow=%d", s.Shadow),
	)
	if s.Alignment > 0 {
		parts = append(parts, fmt.Sprintf("Alignment=%d", s.Alignment))
	}
	if s.MarginV > 0 {
		parts = append(parts, fmt.Sprintf("MarginV=%d", s.MarginV))
	}
	return strings.Join(parts, ",")
}

// SubtitleFilter builds a subtitles filter burning srtPath with the given style.
func SubtitleFilter(srtPath string, style models.SubtitleStyle) string {
	return "subtitles=filename=" + captions.EscapeOptionValue(toFFmpegPath(srtPath)) +
		":force_style=" + captions.EscapeOptionValue(SubtitleForceStyle(style))
}
