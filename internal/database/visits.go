package database

import (
	"time"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// VisitFilter narrows ListVisits. From/To bound start_time.
type VisitFilter struct {
	PropertyID *uint
	ClientID   *uint
	AgentID    *uint
	Status     string
	From       *time.Time
	To         *time.Time
}

func (f VisitFilter) apply(q *gorm.DB) *gorm.DB {
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	return q
}

// ConflictQuery describes a slot to check against confirmed visits
type ConflictQuery struct {
	PropertyID uint
	AgentID    *uint
	Start      time.Time
	End        time.Time
	ExcludeID  uint
}

// ListVisits returns a filtered page of visits in calendar order
func (gdb *GormDB) ListVisits(f VisitFilter, page Page) ([]models.PropertyVisit, int64, error) {
	return paginate[models.PropertyVisit](f.apply(gdb.db.Model(&models.PropertyVisit{})), page, "start_time ASC, id ASC")
}

// GetVisit retrieves a visit by ID
func (gdb *GormDB) GetVisit(id uint) (*models.PropertyVisit, error) {
	var v models.PropertyVisit
	if err := gdb.db.First(&v, id).Error; err != nil {
		return nil, lookupErr(err, "Visit")
	}
	return &v, nil
}

// FindConflicts lists confirmed visits overlapping the slot for the same
// property or the same agent
func (gdb *GormDB) FindConflicts(cq ConflictQuery) ([]models.PropertyVisit, error) {
	return findConflicts(gdb.db, cq)
}

func findConflicts(tx *gorm.DB, cq ConflictQuery) ([]models.PropertyVisit, error) {
	conflicts := make([]models.PropertyVisit, 0)

	q := tx.Where("status = ?", models.VisitConfirmed).
		Where("start_time < ? AND end_time > ?", cq.End, cq.Start)
	if cq.AgentID != nil {
		q = q.Where("(property_id = ? OR agent_id = ?)", cq.PropertyID, *cq.AgentID)
	} else {
		q = q.Where("property_id = ?", cq.PropertyID)
	}
	if cq.ExcludeID != 0 {
		q = q.Where("id <> ?", cq.ExcludeID)
	}

	err := q.Order("start_time ASC").Find(&conflicts).Error
	return conflicts, err
}

// CreateVisit books a visit unless it collides with a confirmed one
func (gdb *GormDB) CreateVisit(v *models.PropertyVisit) error {
	if !v.EndTime.After(v.StartTime) {
		return invalidState("end_time must be after start_time")
	}
	if v.Status == "" {
		v.Status = models.VisitRequested
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := propertyExists(tx, v.PropertyID); err != nil {
			return err
		}
		if blocksCalendar(v.Status) {
			if err := checkConflicts(tx, v, 0); err != nil {
				return err
			}
		}
		return tx.Create(v).Error
	})
}

// UpdateVisit applies column updates. The conflict check is re-run against
// the merged row when the slot, property or agent moved, or the visit
// became confirmed.
func (gdb *GormDB) UpdateVisit(id uint, updates map[string]interface{}) (*models.PropertyVisit, error) {
	var v models.PropertyVisit
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var old models.PropertyVisit
		if err := tx.First(&old, id).Error; err != nil {
			return lookupErr(err, "Visit")
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.PropertyVisit{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&v, id).Error; err != nil {
			return err
		}

		if !v.EndTime.After(v.StartTime) {
			return invalidState("end_time must be after start_time")
		}
		if v.PropertyID != old.PropertyID {
			if err := propertyExists(tx, v.PropertyID); err != nil {
				return err
			}
		}

		moved := !v.StartTime.Equal(old.StartTime) || !v.EndTime.Equal(old.EndTime) ||
			v.PropertyID != old.PropertyID || !sameID(v.AgentID, old.AgentID)
		confirmedNow := v.Status == models.VisitConfirmed && old.Status != models.VisitConfirmed
		if blocksCalendar(v.Status) && (moved || confirmedNow) {
			return checkConflicts(tx, &v, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVisitStatus moves a visit through its lifecycle and stores
// feedback. Confirming re-checks the slot.
func (gdb *GormDB) UpdateVisitStatus(id uint, status models.VisitStatus, feedback *string, rating *int) (*models.PropertyVisit, error) {
	updates := map[string]interface{}{"status": status}
	if feedback != nil {
		updates["feedback"] = *feedback
	}
	if rating != nil {
		updates["rating"] = *rating
	}
	return gdb.UpdateVisit(id, updates)
}

// DeleteVisit removes a visit
func (gdb *GormDB) DeleteVisit(id uint) error {
	res := gdb.db.Delete(&models.PropertyVisit{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Visit")
	}
	return nil
}

func checkConflicts(tx *gorm.DB, v *models.PropertyVisit, excludeID uint) error {
	conflicts, err := findConflicts(tx, ConflictQuery{
		PropertyID: v.PropertyID,
		AgentID:    v.AgentID,
		Start:      v.StartTime,
		End:        v.EndTime,
		ExcludeID:  excludeID,
	})
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// blocksCalendar reports whether a visit in this status needs its slot
func blocksCalendar(s models.VisitStatus) bool {
	return s == models.VisitRequested || s == models.VisitConfirmed
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
