package database

import (
	"fmt"
	"time"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// ContractFilter narrows ListContracts
type ContractFilter struct {
	Status     string
	PropertyID *uint
	TenantID   *uint
}

func (f ContractFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.TenantID != nil {
		q = q.Where("tenant_id = ?", *f.TenantID)
	}
	return q
}

// PaymentFilter narrows ListPayments. From/To bound due_date.
type PaymentFilter struct {
	Status     string
	ContractID *uint
	From       *time.Time
	To         *time.Time
}

func (f PaymentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContractID != nil {
		q = q.Where("contract_id = ?", *f.ContractID)
	}
	if f.From != nil {
		q = q.Where("due_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("due_date <= ?", *f.To)
	}
	return q
}

// AlertFilter narrows ListAlerts
type AlertFilter struct {
	IsRead *bool
	Type   string
}

// PaymentReceipt is money received against a payment
type PaymentReceipt struct {
	Amount    float64
	Method    string
	Reference string
	PaidAt    time.Time
}

// ListContracts returns a filtered page of contracts
func (gdb *GormDB) ListContracts(f ContractFilter, page Page) ([]models.RentalContract, int64, error) {
	return paginate[models.RentalContract](f.apply(gdb.db.Model(&models.RentalContract{})), page, "start_date DESC, id DESC")
}

// GetContract retrieves a contract with its payment schedule and documents
func (gdb *GormDB) GetContract(id uint) (*models.RentalContract, error) {
	var c models.RentalContract
	err := gdb.db.
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC, id ASC") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		First(&c, id).Error
	if err != nil {
		return nil, lookupErr(err, "Contract")
	}
	return &c, nil
}

// CreateContract inserts a contract. An active contract may not overlap
// another active contract of the same property and marks it rented.
func (gdb *GormDB) CreateContract(c *models.RentalContract) error {
	if !c.EndDate.After(c.StartDate) {
		return invalidState("end_date must be after start_date")
	}
	if c.Status == "" {
		c.Status = models.ContractDraft
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := propertyExists(tx, c.PropertyID); err != nil {
			return err
		}
		if err := gdb.clientExists(tx, c.TenantID); err != nil {
			return err
		}
		if c.LandlordID != nil {
			if err := gdb.clientExists(tx, *c.LandlordID); err != nil {
				return err
			}
		}
		if c.Status == models.ContractActive {
			if err := checkContractOverlap(tx, c, 0); err != nil {
				return err
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return SyncPropertyRental(tx, c.PropertyID)
	})
}

// UpdateContract applies column updates and keeps the property's rented
// status in step with its active contracts
func (gdb *GormDB) UpdateContract(id uint, updates map[string]interface{}) (*models.RentalContract, error) {
	var c models.RentalContract
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var old models.RentalContract
		if err := tx.First(&old, id).Error; err != nil {
			return lookupErr(err, "Contract")
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.RentalContract{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}

		if !c.EndDate.After(c.StartDate) {
			return invalidState("end_date must be after start_date")
		}
		if c.PropertyID != old.PropertyID {
			if err := propertyExists(tx, c.PropertyID); err != nil {
				return err
			}
		}
		if c.TenantID != old.TenantID {
			if err := gdb.clientExists(tx, c.TenantID); err != nil {
				return err
			}
		}
		if c.LandlordID != nil && (old.LandlordID == nil || *c.LandlordID != *old.LandlordID) {
			if err := gdb.clientExists(tx, *c.LandlordID); err != nil {
				return err
			}
		}
		if c.Status == models.ContractActive {
			if err := checkContractOverlap(tx, &c, id); err != nil {
				return err
			}
		}

		if err := SyncPropertyRental(tx, c.PropertyID); err != nil {
			return err
		}
		if old.PropertyID != c.PropertyID {
			return SyncPropertyRental(tx, old.PropertyID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteContract removes a contract with its payments, documents and alerts
func (gdb *GormDB) DeleteContract(id uint, actorID *uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var c models.RentalContract
		if err := tx.First(&c, id).Error; err != nil {
			return lookupErr(err, "Contract")
		}

		if err := tx.Where("contract_id = ?", id).Delete(&models.RentalAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contract_id = ?", id).Delete(&models.RentalPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contract_id = ?", id).Delete(&models.RentalDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MaintenanceRequest{}).Where("contract_id = ?", id).Update("contract_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		if err := SyncPropertyRental(tx, c.PropertyID); err != nil {
			return err
		}
		return writeDeleteLog(tx, models.EntityContract, c.ID, fmt.Sprintf("contract #%d (property %d)", c.ID, c.PropertyID), actorID)
	})
}

// GeneratePayments creates one pending payment per month of the contract on
// its payment day. Months that already have a payment are skipped, so the
// call is idempotent.
func (gdb *GormDB) GeneratePayments(contractID uint) ([]models.RentalPayment, error) {
	created := make([]models.RentalPayment, 0)
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var c models.RentalContract
		if err := tx.First(&c, contractID).Error; err != nil {
			return lookupErr(err, "Contract")
		}
		if c.Status == models.ContractTerminated || c.Status == models.ContractExpired {
			return invalidState("cannot generate payments for a %s contract", c.Status)
		}

		var existing []models.RentalPayment
		if err := tx.Where("contract_id = ?", contractID).Find(&existing).Error; err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, p := range existing {
			have[p.DueDate.UTC().Format("2006-01")] = true
		}

		for _, due := range PaymentSchedule(c.StartDate, c.EndDate, c.PaymentDay) {
			if have[due.Format("2006-01")] {
				continue
			}
			created = append(created, models.RentalPayment{
				ContractID: c.ID,
				DueDate:    due,
				Amount:     c.MonthlyRent,
				Status:     models.PaymentPending,
			})
		}
		if len(created) == 0 {
			return nil
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// PaymentSchedule lists the monthly due dates between start and end
// (inclusive, by calendar day). payment_day is clamped to 1..28.
func PaymentSchedule(start, end time.Time, paymentDay int) []time.Time {
	if paymentDay < 1 {
		paymentDay = 1
	}
	if paymentDay > 28 {
		paymentDay = 28
	}
	first := DateOnly(start)
	last := DateOnly(end)

	var dues []time.Time
	due := time.Date(first.Year(), first.Month(), paymentDay, 0, 0, 0, 0, time.UTC)
	if due.Before(first) {
		due = due.AddDate(0, 1, 0)
	}
	for !due.After(last) {
		dues = append(dues, due)
		due = due.AddDate(0, 1, 0)
	}
	return dues
}

// ListPayments returns a filtered page of payments by due date
func (gdb *GormDB) ListPayments(f PaymentFilter, page Page) ([]models.RentalPayment, int64, error) {
	return paginate[models.RentalPayment](f.apply(gdb.db.Model(&models.RentalPayment{})), page, "due_date ASC, id ASC")
}

// ExportPayments returns every payment matching the filter
func (gdb *GormDB) ExportPayments(f PaymentFilter) ([]models.RentalPayment, error) {
	var payments []models.RentalPayment
	err := f.apply(gdb.db.Model(&models.RentalPayment{})).Order("due_date ASC, id ASC").Find(&payments).Error
	return payments, err
}

// GetPayment retrieves a payment by ID
func (gdb *GormDB) GetPayment(id uint) (*models.RentalPayment, error) {
	var p models.RentalPayment
	if err := gdb.db.First(&p, id).Error; err != nil {
		return nil, lookupErr(err, "Payment")
	}
	return &p, nil
}

// CreatePayment adds a payment to an existing contract
func (gdb *GormDB) CreatePayment(p *models.RentalPayment) error {
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := contractExists(tx, p.ContractID); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

// UpdatePayment applies column updates. A new amount re-derives the status
// from what has been paid unless a status is given, paid is refused while
// money is still owed, and a payment that ends up paid or cancelled has its
// open payment alerts resolved.
func (gdb *GormDB) UpdatePayment(id uint, updates map[string]interface{}) (*models.RentalPayment, error) {
	var p models.RentalPayment
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr(err, "Payment")
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.RentalPayment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}

		_, statusSet := updates["status"]
		_, amountSet := updates["amount"]
		status := p.Status
		if amountSet && !statusSet {
			status = deriveStatus(p)
		}
		if statusSet && status == models.PaymentPaid && p.PaidAmount < p.Amount {
			return invalidState("payment has %.2f outstanding and cannot be marked paid", p.Amount-p.PaidAmount)
		}
		if status != p.Status {
			if err := tx.Model(&models.RentalPayment{}).Where("id = ?", id).Update("status", status).Error; err != nil {
				return err
			}
			p.Status = status
		}

		if status == models.PaymentPaid || status == models.PaymentCancelled {
			if err := tx.Model(&models.RentalAlert{}).
				Where("payment_id = ? AND resolved_at IS NULL", id).
				Where("type IN ?", []models.AlertType{models.AlertPaymentDue, models.AlertPaymentOverdue}).
				Update("resolved_at", time.Now().UTC()).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// deriveStatus settles a payment's status against its paid amount. Cancelled
// payments stay cancelled and unpaid ones keep pending or late.
func deriveStatus(p models.RentalPayment) models.PaymentStatus {
	switch {
	case p.Status == models.PaymentCancelled:
		return p.Status
	case p.PaidAmount > 0 && p.PaidAmount >= p.Amount:
		return models.PaymentPaid
	case p.PaidAmount > 0:
		return models.PaymentPartial
	case p.Status == models.PaymentLate:
		return models.PaymentLate
	default:
		return models.PaymentPending
	}
}

// RecordPayment adds money received to a payment. The payment becomes paid
// once the full amount is in, partial otherwise, and its open payment alerts
// are resolved.
func (gdb *GormDB) RecordPayment(id uint, r PaymentReceipt) (*models.RentalPayment, error) {
	var p models.RentalPayment
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr(err, "Payment")
		}
		if p.Status == models.PaymentCancelled {
			return invalidState("cannot record money on a cancelled payment")
		}
		if p.Status == models.PaymentPaid {
			return invalidState("payment is already settled")
		}

		paid := roundCents(p.PaidAmount + r.Amount)
		status := models.PaymentPartial
		if paid >= p.Amount {
			status = models.PaymentPaid
		}
		updates := map[string]interface{}{
			"paid_amount": paid,
			"status":      status,
			"paid_at":     r.PaidAt,
		}
		if r.Method != "" {
			updates["method"] = r.Method
		}
		if r.Reference != "" {
			updates["reference"] = r.Reference
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.RentalAlert{}).
			Where("payment_id = ? AND resolved_at IS NULL", id).
			Where("type IN ?", []models.AlertType{models.AlertPaymentDue, models.AlertPaymentOverdue}).
			Update("resolved_at", r.PaidAt).Error; err != nil {
			return err
		}
		return tx.First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePayment removes a payment and its alerts
func (gdb *GormDB) DeletePayment(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var p models.RentalPayment
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr(err, "Payment")
		}
		if err := tx.Where("payment_id = ?", id).Delete(&models.RentalAlert{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// ListContractDocuments returns the documents attached to a contract
func (gdb *GormDB) ListContractDocuments(contractID uint) ([]models.RentalDocument, error) {
	if err := contractExists(gdb.db, contractID); err != nil {
		return nil, err
	}
	docs := make([]models.RentalDocument, 0)
	err := gdb.db.Where("contract_id = ?", contractID).Order("created_at DESC, id DESC").Find(&docs).Error
	return docs, err
}

// CreateContractDocument attaches a document to an existing contract
func (gdb *GormDB) CreateContractDocument(d *models.RentalDocument) error {
	if err := contractExists(gdb.db, d.ContractID); err != nil {
		return err
	}
	return gdb.db.Create(d).Error
}

// DeleteContractDocument removes a contract document
func (gdb *GormDB) DeleteContractDocument(id uint) error {
	res := gdb.db.Delete(&models.RentalDocument{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Document")
	}
	return nil
}

// ListAlerts returns a filtered page of alerts, newest first
func (gdb *GormDB) ListAlerts(f AlertFilter, page Page) ([]models.RentalAlert, int64, error) {
	q := gdb.db.Model(&models.RentalAlert{})
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	return paginate[models.RentalAlert](q, page, "created_at DESC, id DESC")
}

// MarkAlertRead flags an alert as read
func (gdb *GormDB) MarkAlertRead(id uint) (*models.RentalAlert, error) {
	var a models.RentalAlert
	if err := gdb.db.First(&a, id).Error; err != nil {
		return nil, lookupErr(err, "Alert")
	}
	if !a.IsRead {
		if err := gdb.db.Model(&a).Update("is_read", true).Error; err != nil {
			return nil, err
		}
		a.IsRead = true
	}
	return &a, nil
}

func checkContractOverlap(tx *gorm.DB, c *models.RentalContract, excludeID uint) error {
	q := tx.Model(&models.RentalContract{}).
		Where("property_id = ? AND status = ?", c.PropertyID, models.ContractActive).
		Where("start_date < ? AND end_date > ?", c.EndDate, c.StartDate)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrContractOverlap
	}
	return nil
}

// SyncPropertyRental marks a property rented while it has an active
// contract and returns a rented property to the market when it has none
func SyncPropertyRental(tx *gorm.DB, propertyID uint) error {
	var active int64
	if err := tx.Model(&models.RentalContract{}).
		Where("property_id = ? AND status = ?", propertyID, models.ContractActive).
		Count(&active).Error; err != nil {
		return err
	}

	q := tx.Model(&models.Property{}).Where("id = ?", propertyID)
	if active > 0 {
		return q.Update("status", models.PropertyStatusRented).Error
	}
	return q.Where("status = ?", models.PropertyStatusRented).
		Update("status", models.PropertyStatusAvailable).Error
}

func contractExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.RentalContract{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("Contract")
	}
	return nil
}

// DateOnly truncates t to midnight UTC
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
