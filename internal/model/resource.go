package model

import "time"

// Resource types.
const (
	ResourceTypeFile = "FILE"
	ResourceTypeURL  = "URL"
)

// Resource is shared study material: an uploaded file reference or a URL.
// The bytes of uploaded files live outside this service; only metadata
// is recorded here.
type Resource struct {
	ID         int       `json:"id"`
	GroupID    int       `json:"group_id"`
	UploadedBy int       `json:"uploaded_by"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	PathOrURL  string    `json:"path_or_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}
