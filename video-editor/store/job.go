package store

import (
	"context"
	"errors"
	"time"
)

// JobState is the lifecycle state of a render job.
type JobState string

const (
	StatusPending    JobState = "pending"
	StatusProcessing JobState = "processing"
	StatusCompleted  JobState = "completed"
	StatusFailed     JobState = "failed"
	StatusCancelled  JobState = "cancelled"
)

// Terminal reports whether no further transitions are expected.
func (s JobState) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Message is a human readable description of the state.
func (s JobState) Message() string {
	switch s {
	case StatusPending:
		return "Render is queued"
	case StatusProcessing:
		return "Video is being rendered"
	case StatusCompleted:
		return "Render completed successfully"
	case StatusFailed:
		return "Render failed"
	case StatusCancelled:
		return "Render was cancelled"
	default:
		return "Unknown status"
	}
}

// ErrJobNotFound is returned when no job has the requested ID.
var ErrJobNotFound = errors.New("job not found")

// RenderJob tracks one captioned render
type RenderJob struct {
	ID       string   `json:"id" bson:"_id"`
	Status   JobState `json:"status" bson:"status"`
	Progress int      `json:"progress" bson:"progress"` // 0-100

	Passage    string `json:"passage" bson:"passage"`
	VideoPath  string `json:"video_path" bson:"video_path"`
	AudioPath  string `json:"audio_path,omitempty" bson:"audio_path,omitempty"`
	OutputPath string `json:"output_path,omitempty" bson:"output_path,omitempty"`
	Burn       string `json:"burn,omitempty" bson:"burn,omitempty"`
	SRT        string `json:"srt,omitempty" bson:"srt,omitempty"`

	Duration         float64 `json:"duration,omitempty" bson:"duration,omitempty"`
	DurationFallback bool    `json:"duration_fallback,omitempty" bson:"duration_fallback,omitempty"`
	PhraseCount      int     `json:"phrase_count,omitempty" bson:"phrase_count,omitempty"`

	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// JobStore persists render jobs. List returns newest first, at most limit
// jobs when limit is positive.
type JobStore interface {
	Create(ctx context.Context, job *RenderJob) error
	Get(ctx context.Context, id string) (*RenderJob, error)
	Update(ctx context.Context, job *RenderJob) error
	List(ctx context.Context, limit int) ([]*RenderJob, error)
}
