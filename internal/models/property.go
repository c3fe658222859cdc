package models

import "time"

// Property is a listing managed by the agency, for sale or for rent
type Property struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Type            PropertyType    `gorm:"type:varchar(20);not null;index" json:"type"`
	TransactionType TransactionType `gorm:"type:varchar(10);not null;index" json:"transaction_type"`
	Status          PropertyStatus  `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`

	// Filter attributes
	Price     float64  `gorm:"type:decimal(14,2);not null;index" json:"price"`
	Area      *float64 `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Bedrooms  *int     `gorm:"type:int" json:"bedrooms,omitempty"`
	Bathrooms *int     `gorm:"type:int" json:"bathrooms,omitempty"`

	Address    string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	City       string   `gorm:"type:varchar(100);index" json:"city,omitempty"`
	PostalCode string   `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	Latitude   *float64 `gorm:"type:decimal(10,7)" json:"latitude,omitempty"`
	Longitude  *float64 `gorm:"type:decimal(10,7)" json:"longitude,omitempty"`

	OwnerClientID *uint `gorm:"index" json:"owner_client_id,omitempty"`
	AgentID       *uint `gorm:"index" json:"agent_id,omitempty"`

	Media []PropertyMedia `gorm:"foreignKey:PropertyID" json:"media,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyType is the kind of real estate
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOffice     PropertyType = "office"
)

// TransactionType tells whether a listing (or a client need) is a sale or a rental
type TransactionType string

const (
	TransactionSale TransactionType = "sale"
	TransactionRent TransactionType = "rent"
)

// PropertyStatus is the commercial state of a listing
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusReserved  PropertyStatus = "reserved"
	PropertyStatusRented    PropertyStatus = "rented"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusOffMarket PropertyStatus = "off_market"
)

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// IsAvailable reports whether the property can still be offered to clients
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable
}
