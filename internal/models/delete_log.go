package models

import "time"

// DeleteLog records every hard delete of a top-level record
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"type:varchar(30);not null;index:idx_delete_logs_entity" json:"entity_type"`
	EntityID   uint      `gorm:"not null;index:idx_delete_logs_entity" json:"entity_id"`
	Label      string    `gorm:"type:varchar(255)" json:"label"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedBy  *uint     `json:"deleted_by,omitempty"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual         = "manual_deletion"
	DeleteReasonAlertRetention = "alert_retention"
)

// Entity names used in delete logs and documents
const (
	EntityClient      = "client"
	EntityProperty    = "property"
	EntityContract    = "contract"
	EntityMaintenance = "maintenance"
	EntityAlert       = "alert"
	EntityUser        = "user"
	EntityGeneral     = "general"
)
