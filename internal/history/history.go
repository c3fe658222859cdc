package history

import (
	"fmt"
	"time"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// Service reads the field-level change history of properties
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DetectChanges compares two states of the same property and returns one
// change per tracked field that differs
func DetectChanges(old, updated *models.Property, changedBy *uint, now time.Time) []models.PropertyChange {
	changes := []models.PropertyChange{}
	add := func(field, oldVal, newVal string, magnitude *float64) {
		changes = append(changes, models.PropertyChange{
			PropertyID:      updated.ID,
			Field:           field,
			OldValue:        oldVal,
			NewValue:        newVal,
			ChangeMagnitude: magnitude,
			ChangedBy:       changedBy,
			DetectedAt:      now,
		})
	}

	// Price change
	if old.Price != updated.Price {
		magnitude := updated.Price - old.Price
		add(models.ChangeFieldPrice, formatMoney(old.Price), formatMoney(updated.Price), &magnitude)
	}

	if old.Status != updated.Status {
		add(models.ChangeFieldStatus, string(old.Status), string(updated.Status), nil)
	}

	if old.Title != updated.Title {
		add(models.ChangeFieldTitle, old.Title, updated.Title, nil)
	}

	if old.Type != updated.Type {
		add(models.ChangeFieldType, string(old.Type), string(updated.Type), nil)
	}

	if old.TransactionType != updated.TransactionType {
		add(models.ChangeFieldTransactionType, string(old.TransactionType), string(updated.TransactionType), nil)
	}

	return changes
}

// GetPropertyHistory retrieves a property's changes, newest first
func (s *Service) GetPropertyHistory(propertyID uint, limit int) ([]models.PropertyChange, error) {
	changes := make([]models.PropertyChange, 0)
	query := s.db.Where("property_id = ?", propertyID).Order("detected_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

// GetRecentChanges retrieves recent changes across all properties
func (s *Service) GetRecentChanges(limit int) ([]models.PropertyChange, error) {
	changes := make([]models.PropertyChange, 0)
	query := s.db.Order("detected_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
