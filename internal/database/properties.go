package database

import (
	"time"

	"real-estate-crm/internal/history"
	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// PropertyFilter narrows ListProperties
type PropertyFilter struct {
	Status          string
	Type            string
	TransactionType string
	City            string
	MinPrice        *float64
	MaxPrice        *float64
	MinBedrooms     *int
	AgentID         *uint
	Sort            string
}

func (f PropertyFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.TransactionType != "" {
		q = q.Where("transaction_type = ?", f.TransactionType)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.MinBedrooms)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	return q
}

// propertyOrder maps a sort parameter to ORDER BY.
// CASE keeps NULLs last in both directions on every driver.
func propertyOrder(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price ASC, id DESC"
	case "price_desc":
		return "price DESC, id DESC"
	case "area_desc":
		return "CASE WHEN area IS NULL THEN 1 ELSE 0 END, area DESC, id DESC"
	case "bedrooms_desc":
		return "CASE WHEN bedrooms IS NULL THEN 1 ELSE 0 END, bedrooms DESC, id DESC"
	default:
		// newest
		return "created_at DESC, id DESC"
	}
}

// ListProperties returns a filtered, sorted page of properties
func (gdb *GormDB) ListProperties(f PropertyFilter, page Page) ([]models.Property, int64, error) {
	return paginate[models.Property](f.apply(gdb.db.Model(&models.Property{})), page, propertyOrder(f.Sort))
}

// ExportProperties returns every property matching the filter
func (gdb *GormDB) ExportProperties(f PropertyFilter) ([]models.Property, error) {
	var properties []models.Property
	err := f.apply(gdb.db.Model(&models.Property{})).Order(propertyOrder(f.Sort)).Find(&properties).Error
	return properties, err
}

// SearchProperties is the SQL fallback for full-text search
func (gdb *GormDB) SearchProperties(query string, limit int) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	like := likePattern(query)
	err := gdb.db.
		Where("title LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!' OR address LIKE ? ESCAPE '!' OR city LIKE ? ESCAPE '!'", like, like, like, like).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&properties).Error
	return properties, err
}

// GetProperty retrieves a property with its media in display order
func (gdb *GormDB) GetProperty(id uint) (*models.Property, error) {
	var p models.Property
	err := gdb.db.
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, lookupErr(err, "Property")
	}
	return &p, nil
}

// PropertyExists reports ErrNotFound for a missing property
func (gdb *GormDB) PropertyExists(id uint) error {
	return propertyExists(gdb.db, id)
}

// CreateProperty inserts a property
func (gdb *GormDB) CreateProperty(p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusAvailable
	}
	return gdb.db.Create(p).Error
}

// UpdateProperty applies column updates and records tracked field changes
// in the same transaction
func (gdb *GormDB) UpdateProperty(id uint, updates map[string]interface{}, changedBy *uint) (*models.Property, []models.PropertyChange, error) {
	var updated models.Property
	var changes []models.PropertyChange

	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var old models.Property
		if err := tx.First(&old, id).Error; err != nil {
			return lookupErr(err, "Property")
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Property{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		changes = history.DetectChanges(&old, &updated, changedBy, time.Now().UTC())
		if len(changes) > 0 {
			if err := tx.Create(&changes).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, changes, nil
}

// DeleteProperty removes a property with its media, visits and history.
// A property under an active contract is refused.
func (gdb *GormDB) DeleteProperty(id uint, actorID *uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.First(&p, id).Error; err != nil {
			return lookupErr(err, "Property")
		}

		var active int64
		if err := tx.Model(&models.RentalContract{}).
			Where("property_id = ? AND status = ?", id, models.ContractActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrPropertyInUse
		}

		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyMedia{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyVisit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyChange{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
		return writeDeleteLog(tx, models.EntityProperty, p.ID, p.Title, actorID)
	})
}

// AddMedia attaches media to a property. A new primary item demotes the
// previous one.
func (gdb *GormDB) AddMedia(m *models.PropertyMedia) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := propertyExists(tx, m.PropertyID); err != nil {
			return err
		}
		if m.IsPrimary {
			if err := tx.Model(&models.PropertyMedia{}).
				Where("property_id = ? AND is_primary = ?", m.PropertyID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(m).Error
	})
}

// DeleteMedia removes one media item of a property
func (gdb *GormDB) DeleteMedia(propertyID, mediaID uint) error {
	res := gdb.db.Where("id = ? AND property_id = ?", mediaID, propertyID).Delete(&models.PropertyMedia{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Media")
	}
	return nil
}

func propertyExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Property{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("Property")
	}
	return nil
}
