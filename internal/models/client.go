package models

import "time"

// Client is a person the agency works with: buyer, seller, tenant, landlord or investor
type Client struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName       string       `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string       `gorm:"type:varchar(100);not null" json:"last_name"`
	Email           *string      `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone           string       `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Type            ClientType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status          ClientStatus `gorm:"type:varchar(20);not null;default:'lead';index" json:"status"`
	Source          string       `gorm:"type:varchar(100)" json:"source,omitempty"`
	Notes           string       `gorm:"type:text" json:"notes,omitempty"`
	AssignedAgentID *uint        `gorm:"index" json:"assigned_agent_id,omitempty"`

	Needs        []ClientNeed  `gorm:"foreignKey:ClientID" json:"needs,omitempty"`
	Interactions []Interaction `gorm:"foreignKey:ClientID" json:"interactions,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ClientType is the relationship a client has with the agency
type ClientType string

const (
	ClientTypeBuyer    ClientType = "buyer"
	ClientTypeSeller   ClientType = "seller"
	ClientTypeTenant   ClientType = "tenant"
	ClientTypeLandlord ClientType = "landlord"
	ClientTypeInvestor ClientType = "investor"
)

// ClientStatus is the position of a client in the sales pipeline
type ClientStatus string

const (
	ClientStatusLead     ClientStatus = "lead"
	ClientStatusProspect ClientStatus = "prospect"
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// TableName specifies the table name
func (Client) TableName() string {
	return "clients"
}

// FullName returns "First Last"
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ClientNeed describes what a client is looking for
type ClientNeed struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID        uint            `gorm:"not null;index" json:"client_id"`
	TransactionType TransactionType `gorm:"type:varchar(10);not null" json:"transaction_type"`
	PropertyType    *PropertyType   `gorm:"type:varchar(20)" json:"property_type,omitempty"`
	MinBudget       *float64        `gorm:"type:decimal(14,2)" json:"min_budget,omitempty"`
	MaxBudget       *float64        `gorm:"type:decimal(14,2)" json:"max_budget,omitempty"`
	MinArea         *float64        `gorm:"type:decimal(10,2)" json:"min_area,omitempty"`
	MinBedrooms     *int            `json:"min_bedrooms,omitempty"`
	Locations       string          `gorm:"type:varchar(500)" json:"locations,omitempty"` // Comma separated cities
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (ClientNeed) TableName() string {
	return "client_needs"
}

// Interaction is a logged contact with a client
type Interaction struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID   uint            `gorm:"not null;index" json:"client_id"`
	UserID     *uint           `gorm:"index" json:"user_id,omitempty"`
	Type       InteractionType `gorm:"type:varchar(20);not null" json:"type"`
	Subject    string          `gorm:"type:varchar(255)" json:"subject,omitempty"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	OccurredAt time.Time       `gorm:"not null;index" json:"occurred_at"`
	FollowUpAt *time.Time      `json:"follow_up_at,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// InteractionType is the channel of an interaction
type InteractionType string

const (
	InteractionCall    InteractionType = "call"
	InteractionEmail   InteractionType = "email"
	InteractionMeeting InteractionType = "meeting"
	InteractionVisit   InteractionType = "visit"
	InteractionNote    InteractionType = "note"
)

// TableName specifies the table name
func (Interaction) TableName() string {
	return "interactions"
}
