package alerts

import (
	"errors"
	"fmt"
	"time"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service raises rental alerts for upcoming and missed payments and for
// contracts reaching their end date
type Service struct {
	db *gorm.DB
}

// NewService creates a new alert service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Config holds the look-ahead windows of the generator
type Config struct {
	PaymentDueDays     int // Days before due date to raise payment_due
	ContractExpiryDays int // Days before end date to raise contract_expiring
}

// Result counts what one generator run did
type Result struct {
	ContractsChecked int       `json:"contracts_checked"`
	PaymentDue       int       `json:"payment_due"`
	PaymentOverdue   int       `json:"payment_overdue"`
	ContractExpiring int       `json:"contract_expiring"`
	ContractExpired  int       `json:"contract_expired"`
	PaymentsMarkLate int       `json:"payments_marked_late"`
	ExecutedAt       time.Time `json:"executed_at"`
	Errors           []string  `json:"errors,omitempty"`
}

// Created returns the number of alerts inserted
func (r *Result) Created() int {
	return r.PaymentDue + r.PaymentOverdue + r.ContractExpiring + r.ContractExpired
}

// Generate walks every active contract as of now. Each contract is handled
// in its own transaction so one failure does not block the rest.
func (s *Service) Generate(cfg Config, now time.Time) (*Result, error) {
	log := logger.Component("alerts")
	result := &Result{ExecutedAt: now}

	var contracts []models.RentalContract
	if err := s.db.Where("status = ?", models.ContractActive).Order("id ASC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}
	result.ContractsChecked = len(contracts)

	today := database.DateOnly(now)
	for i := range contracts {
		c := contracts[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return generateForContract(tx, &c, cfg, today, result)
		})
		if err != nil {
			msg := fmt.Sprintf("contract %d: %v", c.ID, err)
			log.WithError(err).WithField("contract_id", c.ID).Error("Alert generation failed")
			result.Errors = append(result.Errors, msg)
		}
	}

	log.WithFields(logrus.Fields{
		"contracts": result.ContractsChecked,
		"created":   result.Created(),
		"late":      result.PaymentsMarkLate,
		"expired":   result.ContractExpired,
		"errors":    len(result.Errors),
	}).Info("Alert generation completed")

	return result, nil
}

func generateForContract(tx *gorm.DB, c *models.RentalContract, cfg Config, today time.Time, result *Result) error {
	// Payments due soon
	var due []models.RentalPayment
	if err := tx.Where("contract_id = ? AND status = ?", c.ID, models.PaymentPending).
		Where("due_date >= ? AND due_date <= ?", today, today.AddDate(0, 0, cfg.PaymentDueDays)).
		Find(&due).Error; err != nil {
		return err
	}
	for _, p := range due {
		created, err := raise(tx, models.RentalAlert{
			ContractID: c.ID,
			PaymentID:  &p.ID,
			Type:       models.AlertPaymentDue,
			Message:    fmt.Sprintf("Rent of %.2f for contract #%d is due on %s", p.Outstanding(), c.ID, p.DueDate.Format("2006-01-02")),
			DueDate:    &p.DueDate,
		})
		if err != nil {
			return err
		}
		if created {
			result.PaymentDue++
		}
	}

	// Payments past due
	var overdue []models.RentalPayment
	if err := tx.Where("contract_id = ? AND due_date < ?", c.ID, today).
		Where("status IN ?", []models.PaymentStatus{models.PaymentPending, models.PaymentPartial, models.PaymentLate}).
		Find(&overdue).Error; err != nil {
		return err
	}
	for _, p := range overdue {
		if p.Status != models.PaymentLate {
			if err := tx.Model(&models.RentalPayment{}).Where("id = ?", p.ID).Update("status", models.PaymentLate).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.RentalAlert{}).
				Where("payment_id = ? AND type = ? AND resolved_at IS NULL", p.ID, models.AlertPaymentDue).
				Update("resolved_at", today).Error; err != nil {
				return err
			}
			result.PaymentsMarkLate++
		}
		created, err := raise(tx, models.RentalAlert{
			ContractID: c.ID,
			PaymentID:  &p.ID,
			Type:       models.AlertPaymentOverdue,
			Message:    fmt.Sprintf("Rent of %.2f for contract #%d was due on %s", p.Outstanding(), c.ID, p.DueDate.Format("2006-01-02")),
			DueDate:    &p.DueDate,
		})
		if err != nil {
			return err
		}
		if created {
			result.PaymentOverdue++
		}
	}

	end := database.DateOnly(c.EndDate)
	switch {
	case end.Before(today):
		if err := tx.Model(&models.RentalContract{}).Where("id = ?", c.ID).Update("status", models.ContractExpired).Error; err != nil {
			return err
		}
		if err := database.SyncPropertyRental(tx, c.PropertyID); err != nil {
			return err
		}
		if err := tx.Model(&models.RentalAlert{}).
			Where("contract_id = ? AND type = ? AND resolved_at IS NULL", c.ID, models.AlertContractExpiring).
			Update("resolved_at", today).Error; err != nil {
			return err
		}
		created, err := raise(tx, models.RentalAlert{
			ContractID: c.ID,
			Type:       models.AlertContractExpired,
			Message:    fmt.Sprintf("Contract #%d ended on %s", c.ID, end.Format("2006-01-02")),
			DueDate:    &c.EndDate,
		})
		if err != nil {
			return err
		}
		if created {
			result.ContractExpired++
		}
	case !end.After(today.AddDate(0, 0, cfg.ContractExpiryDays)):
		created, err := raise(tx, models.RentalAlert{
			ContractID: c.ID,
			Type:       models.AlertContractExpiring,
			Message:    fmt.Sprintf("Contract #%d ends on %s", c.ID, end.Format("2006-01-02")),
			DueDate:    &c.EndDate,
		})
		if err != nil {
			return err
		}
		if created {
			result.ContractExpiring++
		}
	}

	return nil
}

// raise inserts the alert unless an unresolved alert of the same type
// already exists for the same payment (or contract, for contract alerts)
func raise(tx *gorm.DB, alert models.RentalAlert) (bool, error) {
	q := tx.Where("type = ? AND resolved_at IS NULL", alert.Type)
	if alert.PaymentID != nil {
		q = q.Where("payment_id = ?", *alert.PaymentID)
	} else {
		q = q.Where("contract_id = ? AND payment_id IS NULL", alert.ContractID)
	}

	var existing models.RentalAlert
	err := q.First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := tx.Create(&alert).Error; err != nil {
		return false, err
	}
	return true, nil
}
