// Package types defines the shared artifact types that flow through the
// curriculum generation pipeline.
package types

import "time"

// ContentKind identifies the source medium of a content item.
type ContentKind string

// Content kinds supported by the pipeline
const (
	ContentVideo    ContentKind = "video"
	ContentDocument ContentKind = "document"
)

// ContentItem is a single piece of learner-facing content attached to a
// program. Items are immutable once embedded; re-embedding requires a new
// Embedding record under a different model.
type ContentItem struct {
	ID         string      `json:"id"`
	Kind       ContentKind `json:"kind"`
	Title      string      `json:"title"`
	SourceText string      `json:"sourceText"`
	Transcript string      `json:"transcript,omitempty"`
}

// Text returns the best available text for embedding and digestion:
// the transcript when present, otherwise the extracted source text.
func (c ContentItem) Text() string {
	if c.Transcript != "" {
		return c.Transcript
	}
	return c.SourceText
}

// Embedding is a stored vector for one (contentId, model) pair. Rows are
// never mutated; a new model version inserts a new row.
type Embedding struct {
	ContentID string    `json:"contentId"`
	Model     string    `json:"model"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClusterAssignment records the topic group a content item landed in for
// one clustering run. A new run supersedes the prior run's assignments.
type ClusterAssignment struct {
	ContentID string    `json:"contentId"`
	ClusterID int       `json:"clusterId"`
	CreatedAt time.Time `json:"createdAt"`
}
