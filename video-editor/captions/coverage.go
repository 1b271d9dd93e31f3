package captions

import (
	"math"
	"sort"
)

// Gap is an uncaptioned stretch of the timeline.
type Gap struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the gap length in seconds.
func (g Gap) Duration() float64 { return g.End - g.Start }

// CoverageReport summarizes how well a cue list covers a timeline.
type CoverageReport struct {
	Cues     int     `json:"cues"`
	Covered  float64 `json:"covered"` // seconds under at least one cue
	Total    float64 `json:"total"`
	Percent  float64 `json:"percent"`
	Gaps     []Gap   `json:"gaps,omitempty"`
	Overlaps int     `json:"overlaps"`
}

// Complete reports whether the cues cover the whole timeline without overlap.
func (r CoverageReport) Complete() bool {
	return len(r.Gaps) == 0 && r.Overlaps == 0
}

// Coverage measures cues against a timeline of total seconds. Gaps no longer
// than tolerance are ignored. A non-positive total measures up to the last
// cue end.
func Coverage(cues []SRTCue, total, tolerance float64) CoverageReport {
	sorted := append([]SRTCue(nil), cues...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	report := CoverageReport{Cues: len(sorted), Total: total}
	if report.Total <= 0 {
		for _, c := range sorted {
			report.Total = math.Max(report.Total, c.End)
		}
	}

	cursor := 0.0
	addGap := func(start, end float64) {
		if end-start > tolerance {
			report.Gaps = append(report.Gaps, Gap{Start: start, End: end})
		}
	}
	for _, c := range sorted {
		if c.Start < cursor-windowEpsilon {
			report.Overlaps++
		} else {
			addGap(cursor, c.Start)
		}
		if c.End > cursor {
			report.Covered += c.End - math.Max(c.Start, cursor)
			cursor = c.End
		}
	}
	if cursor < report.Total {
		addGap(cursor, report.Total)
	}

	if report.Total > 0 {
		report.Percent = math.Min(report.Covered/report.Total, 1) * 100
	}
	return report
}
