package database

import (
	"fmt"
	"time"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// MaintenanceFilter narrows ListMaintenance
type MaintenanceFilter struct {
	Status     string
	Priority   string
	PropertyID *uint
}

// ListMaintenance returns a filtered page of requests, newest first
func (gdb *GormDB) ListMaintenance(f MaintenanceFilter, page Page) ([]models.MaintenanceRequest, int64, error) {
	q := gdb.db.Model(&models.MaintenanceRequest{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	return paginate[models.MaintenanceRequest](q, page, "created_at DESC, id DESC")
}

// GetMaintenance retrieves a request with its photos
func (gdb *GormDB) GetMaintenance(id uint) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := gdb.db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&m, id).Error
	if err != nil {
		return nil, lookupErr(err, "Maintenance request")
	}
	return &m, nil
}

// CreateMaintenance opens a request against an existing property
func (gdb *GormDB) CreateMaintenance(m *models.MaintenanceRequest) error {
	if m.Status == "" {
		m.Status = models.MaintenanceOpen
	}
	if m.Priority == "" {
		m.Priority = models.PriorityMedium
	}
	if m.Status.IsFinished() && m.ResolvedAt == nil {
		now := time.Now().UTC()
		m.ResolvedAt = &now
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := propertyExists(tx, m.PropertyID); err != nil {
			return err
		}
		if m.ContractID != nil {
			if err := contractExists(tx, *m.ContractID); err != nil {
				return err
			}
		}
		if m.ReportedBy != nil {
			if err := gdb.clientExists(tx, *m.ReportedBy); err != nil {
				return err
			}
		}
		return tx.Create(m).Error
	})
}

// UpdateMaintenance applies column updates. Finishing a request stamps
// resolved_at; reopening it clears the stamp.
func (gdb *GormDB) UpdateMaintenance(id uint, updates map[string]interface{}) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			return lookupErr(err, "Maintenance request")
		}

		if raw, ok := updates["status"]; ok {
			next := models.MaintenanceStatus(fmt.Sprint(raw))
			switch {
			case next.IsFinished() && !m.Status.IsFinished():
				updates["resolved_at"] = time.Now().UTC()
			case !next.IsFinished():
				updates["resolved_at"] = nil
			}
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.MaintenanceRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMaintenance removes a request and its photos
func (gdb *GormDB) DeleteMaintenance(id uint, actorID *uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var m models.MaintenanceRequest
		if err := tx.First(&m, id).Error; err != nil {
			return lookupErr(err, "Maintenance request")
		}
		if err := tx.Where("request_id = ?", id).Delete(&models.MaintenancePhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		return writeDeleteLog(tx, models.EntityMaintenance, m.ID, m.Title, actorID)
	})
}

// AddMaintenancePhoto attaches a photo to an existing request
func (gdb *GormDB) AddMaintenancePhoto(p *models.MaintenancePhoto) error {
	var n int64
	if err := gdb.db.Model(&models.MaintenanceRequest{}).Where("id = ?", p.RequestID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("Maintenance request")
	}
	return gdb.db.Create(p).Error
}

// DeleteMaintenancePhoto removes one photo of a request
func (gdb *GormDB) DeleteMaintenancePhoto(requestID, photoID uint) error {
	res := gdb.db.Where("id = ? AND request_id = ?", photoID, requestID).Delete(&models.MaintenancePhoto{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Photo")
	}
	return nil
}
