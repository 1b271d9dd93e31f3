package main

import (
	"storyreel/video-editor/store"
)

// RenderRequest is the JSON body of POST /api/render
type RenderRequest struct {
	Passage   string `json:"passage"`
	Story     string `json:"story,omitempty"` // accepted in place of passage
	VideoPath string `json:"video_path"`
	AudioPath string `json:"audio_path,omitempty"` // narration; synthesized when empty and ElevenLabs is configured
	Burn      string `json:"burn,omitempty"`       // "drawtext" or "subtitles"
	Preset    string `json:"preset,omitempty"`     // animation preset override
	Loop      bool   `json:"loop,omitempty"`       // loop short footage under the narration
}

// VideoResponse represents the API response
type VideoResponse struct {
	JobID       string         `json:"job_id"`
	Status      store.JobState `json:"status"`
	Message     string         `json:"message"`
	VideoURL    string         `json:"video_url,omitempty"`
	SRTURL      string         `json:"srt_url,omitempty"`
	Progress    int            `json:"progress,omitempty"` // 0-100
	Duration    float64        `json:"duration,omitempty"`
	PhraseCount int            `json:"phrase_count,omitempty"`
}

// jobResponse describes a stored job for status polling.
func jobResponse(job *store.RenderJob) VideoResponse {
	resp := VideoResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Message:     job.Status.Message(),
		Progress:    job.Progress,
		Duration:    job.Duration,
		PhraseCount: job.PhraseCount,
	}
	if job.Status == store.StatusCompleted && job.OutputPath != "" {
		resp.VideoURL = "/videos/" + job.ID + ".mp4"
	}
	if job.SRT != "" {
		resp.SRTURL = "/api/srt/" + job.ID
	}
	if job.Status == store.StatusFailed {
		resp.Message = job.Error
	}
	return resp
}
