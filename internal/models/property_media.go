package models

import "time"

// PropertyMedia is an image, video or plan attached to a property.
// Only the URL is stored; the file itself lives elsewhere.
type PropertyMedia struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	URL        string    `gorm:"type:varchar(1000);not null" json:"url"`
	MediaType  MediaType `gorm:"type:varchar(20);not null;default:'image'" json:"media_type"`
	Caption    string    `gorm:"type:varchar(255)" json:"caption,omitempty"`
	SortOrder  int       `gorm:"not null;default:0;index" json:"sort_order"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MediaType classifies property media
type MediaType string

const (
	MediaTypeImage       MediaType = "image"
	MediaTypeVideo       MediaType = "video"
	MediaTypeFloorPlan   MediaType = "floor_plan"
	MediaTypeVirtualTour MediaType = "virtual_tour"
)

// TableName specifies the table name for PropertyMedia
func (PropertyMedia) TableName() string {
	return "property_media"
}
