package models

import "time"

// Document is a file reference filed against a CRM record
type Document struct {
	ID         uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string           `gorm:"type:varchar(255);not null" json:"title"`
	Category   DocumentCategory `gorm:"type:varchar(20);not null;default:'other';index" json:"category"`
	EntityType string           `gorm:"type:varchar(20);not null;default:'general';index:idx_documents_entity" json:"entity_type"`
	EntityID   *uint            `gorm:"index:idx_documents_entity" json:"entity_id,omitempty"`
	FileURL    string           `gorm:"type:varchar(1000);not null" json:"file_url"`
	MimeType   string           `gorm:"type:varchar(100)" json:"mime_type,omitempty"`
	SizeBytes  *int64           `json:"size_bytes,omitempty"`
	UploadedBy *uint            `json:"uploaded_by,omitempty"`
	Notes      string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// DocumentCategory classifies documents
type DocumentCategory string

const (
	DocumentContract DocumentCategory = "contract"
	DocumentInvoice  DocumentCategory = "invoice"
	DocumentIdentity DocumentCategory = "identity"
	DocumentProperty DocumentCategory = "property"
	DocumentOther    DocumentCategory = "other"
)

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}
