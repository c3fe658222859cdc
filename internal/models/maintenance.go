package models

import "time"

// MaintenanceRequest is a repair or upkeep job on a property
type MaintenanceRequest struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID  uint                `gorm:"not null;index" json:"property_id"`
	ContractID  *uint               `gorm:"index" json:"contract_id,omitempty"`
	ReportedBy  *uint               `json:"reported_by,omitempty"`
	Title       string              `gorm:"type:varchar(255);not null" json:"title"`
	Description string              `gorm:"type:text" json:"description,omitempty"`
	Priority    MaintenancePriority `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`
	Status      MaintenanceStatus   `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	AssignedTo  string              `gorm:"type:varchar(255)" json:"assigned_to,omitempty"`
	Cost        *float64            `gorm:"type:decimal(12,2)" json:"cost,omitempty"`
	ScheduledAt *time.Time          `json:"scheduled_at,omitempty"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`

	Photos []MaintenancePhoto `gorm:"foreignKey:RequestID" json:"photos,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MaintenancePriority is the urgency of a request
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityHigh   MaintenancePriority = "high"
	PriorityUrgent MaintenancePriority = "urgent"
)

// MaintenanceStatus is the lifecycle state of a request
type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceResolved   MaintenanceStatus = "resolved"
	MaintenanceClosed     MaintenanceStatus = "closed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// IsFinished reports whether the status means the work is done
func (s MaintenanceStatus) IsFinished() bool {
	return s == MaintenanceResolved || s == MaintenanceClosed
}

// TableName specifies the table name
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// MaintenancePhoto is a picture attached to a maintenance request
type MaintenancePhoto struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID uint      `gorm:"not null;index" json:"request_id"`
	URL       string    `gorm:"type:varchar(1000);not null" json:"url"`
	Caption   string    `gorm:"type:varchar(255)" json:"caption,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (MaintenancePhoto) TableName() string {
	return "maintenance_photos"
}
