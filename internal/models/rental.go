package models

import "time"

// RentalContract is a lease of a property to a tenant
type RentalContract struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID  uint           `gorm:"not null;index" json:"property_id"`
	TenantID    uint           `gorm:"not null;index" json:"tenant_id"`
	LandlordID  *uint          `gorm:"index" json:"landlord_id,omitempty"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null;index" json:"end_date"`
	MonthlyRent float64        `gorm:"type:decimal(12,2);not null" json:"monthly_rent"`
	Deposit     float64        `gorm:"type:decimal(12,2);not null;default:0" json:"deposit"`
	PaymentDay  int            `gorm:"not null;default:1" json:"payment_day"`
	Status      ContractStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`

	Payments  []RentalPayment  `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
	Documents []RentalDocument `gorm:"foreignKey:ContractID" json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ContractStatus is the lifecycle state of a contract
type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractTerminated ContractStatus = "terminated"
	ContractExpired    ContractStatus = "expired"
)

// TableName specifies the table name
func (RentalContract) TableName() string {
	return "rental_contracts"
}

// RentalDocument is a file attached to a contract
type RentalDocument struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID uint          `gorm:"not null;index" json:"contract_id"`
	Name       string        `gorm:"type:varchar(255);not null" json:"name"`
	DocType    RentalDocType `gorm:"type:varchar(20);not null;default:'other'" json:"doc_type"`
	FileURL    string        `gorm:"type:varchar(1000);not null" json:"file_url"`
	UploadedBy *uint         `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// RentalDocType classifies contract documents
type RentalDocType string

const (
	RentalDocLease     RentalDocType = "lease"
	RentalDocInventory RentalDocType = "inventory"
	RentalDocIdentity  RentalDocType = "identity"
	RentalDocInsurance RentalDocType = "insurance"
	RentalDocOther     RentalDocType = "other"
)

// TableName specifies the table name
func (RentalDocument) TableName() string {
	return "rental_documents"
}

// RentalPayment is one rent installment
type RentalPayment struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID uint          `gorm:"not null;index:idx_payments_contract_due" json:"contract_id"`
	DueDate    time.Time     `gorm:"not null;index:idx_payments_contract_due;index" json:"due_date"`
	Amount     float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAmount float64       `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
	Method     string        `gorm:"type:varchar(30)" json:"method,omitempty"`
	Status     PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reference  string        `gorm:"type:varchar(100)" json:"reference,omitempty"`
	Notes      string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentPartial   PaymentStatus = "partial"
	PaymentLate      PaymentStatus = "late"
	PaymentCancelled PaymentStatus = "cancelled"
)

// TableName specifies the table name
func (RentalPayment) TableName() string {
	return "rental_payments"
}

// Outstanding returns what is still owed on the payment
func (p *RentalPayment) Outstanding() float64 {
	if p.PaidAmount >= p.Amount {
		return 0
	}
	return p.Amount - p.PaidAmount
}

// RentalAlert is a reminder raised by the alert generator
type RentalAlert struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID uint       `gorm:"not null;index" json:"contract_id"`
	PaymentID  *uint      `gorm:"index" json:"payment_id,omitempty"`
	Type       AlertType  `gorm:"type:varchar(30);not null;index" json:"type"`
	Message    string     `gorm:"type:varchar(500);not null" json:"message"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	IsRead     bool       `gorm:"not null;default:false;index" json:"is_read"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// AlertType is the reason an alert was raised
type AlertType string

const (
	AlertPaymentDue       AlertType = "payment_due"
	AlertPaymentOverdue   AlertType = "payment_overdue"
	AlertContractExpiring AlertType = "contract_expiring"
	AlertContractExpired  AlertType = "contract_expired"
)

// TableName specifies the table name
func (RentalAlert) TableName() string {
	return "rental_alerts"
}
