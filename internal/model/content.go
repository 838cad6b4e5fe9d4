package model

import "time"

// Document is a schema-less page content document. Pages carry different shapes,
// so content is kept as a JSON object.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Metadata keys stamped on every stored draft.
const (
	DocKeyLastUpdated = "lastUpdated"
	DocKeyPage        = "page"
)

// ContentDraft is the working copy of a page.
type ContentDraft struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	PageName    string    `json:"page_name" gorm:"size:100;not null;uniqueIndex"`
	ContentData Document  `json:"content_data" gorm:"type:longtext;serializer:json"`
	LastUpdated time.Time `json:"last_updated" gorm:"not null"`
}

// TableName overrides the default table name.
func (ContentDraft) TableName() string { return "content_drafts" }

// ContentPublished is the live copy of a page.
type ContentPublished struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	PageName    string    `json:"page_name" gorm:"size:100;not null;uniqueIndex"`
	ContentData Document  `json:"content_data" gorm:"type:longtext;serializer:json"`
	LastUpdated time.Time `json:"last_updated" gorm:"not null"`
}

// TableName overrides the default table name.
func (ContentPublished) TableName() string { return "content_published" }
