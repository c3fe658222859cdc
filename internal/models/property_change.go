package models

import "time"

// PropertyChange is one field change recorded when a property is edited
type PropertyChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID      uint      `gorm:"not null;index" json:"property_id"`
	Field           string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"` // For numerical changes
	ChangedBy       *uint     `json:"changed_by,omitempty"`
	DetectedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (PropertyChange) TableName() string {
	return "property_changes"
}

// Tracked fields
const (
	ChangeFieldPrice           = "price"
	ChangeFieldStatus          = "status"
	ChangeFieldTitle           = "title"
	ChangeFieldType            = "type"
	ChangeFieldTransactionType = "transaction_type"
)
