package types

import "time"

// GalleryImage is a photo shown on the public gallery page. The binary
// content lives in object storage under ObjectKey.
type GalleryImage struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
