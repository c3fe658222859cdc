package models

import "time"

// PropertyVisit is a scheduled viewing of a property by a client
type PropertyVisit struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint        `gorm:"not null;index:idx_visits_property_time" json:"property_id"`
	ClientID   *uint       `gorm:"index" json:"client_id,omitempty"`
	AgentID    *uint       `gorm:"index:idx_visits_agent_time" json:"agent_id,omitempty"`
	StartTime  time.Time   `gorm:"not null;index:idx_visits_property_time;index:idx_visits_agent_time" json:"start_time"`
	EndTime    time.Time   `gorm:"not null" json:"end_time"`
	Status     VisitStatus `gorm:"type:varchar(20);not null;default:'requested';index" json:"status"`
	Notes      string      `gorm:"type:text" json:"notes,omitempty"`
	Feedback   string      `gorm:"type:text" json:"feedback,omitempty"`
	Rating     *int        `json:"rating,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// VisitStatus is the lifecycle state of a visit
type VisitStatus string

const (
	VisitRequested VisitStatus = "requested"
	VisitConfirmed VisitStatus = "confirmed"
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
	VisitNoShow    VisitStatus = "no_show"
)

// TableName specifies the table name
func (PropertyVisit) TableName() string {
	return "property_visits"
}

// Overlaps reports whether the visit's interval intersects [start, end).
// Intervals that only touch do not overlap.
func (v *PropertyVisit) Overlaps(start, end time.Time) bool {
	return v.StartTime.Before(end) && v.EndTime.After(start)
}
