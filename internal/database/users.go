package database

import (
	"errors"
	"strings"
	"time"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// UserUpdate holds the admin-editable user fields; nil means unchanged
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *models.Role
	IsActive *bool
}

// CountUsers returns the number of accounts
func (gdb *GormDB) CountUsers() (int64, error) {
	var n int64
	err := gdb.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

// CreateUser inserts a user, rejecting a taken email
func (gdb *GormDB) CreateUser(u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserEmailFree(tx, u.Email, 0); err != nil {
			return err
		}
		return tx.Create(u).Error
	})
}

// CreateBootstrapAdmin creates the very first account as an admin.
// It fails with ErrInvalidState once any user exists.
func (gdb *GormDB) CreateBootstrapAdmin(u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	u.Role = models.RoleAdmin
	u.IsActive = true
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return invalidState("registration requires an admin")
		}
		return tx.Create(u).Error
	})
}

// GetUserByID retrieves a user by ID
func (gdb *GormDB) GetUserByID(id uint) (*models.User, error) {
	var u models.User
	if err := gdb.db.First(&u, id).Error; err != nil {
		return nil, lookupErr(err, "User")
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by login email
func (gdb *GormDB) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := gdb.db.Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, lookupErr(err, "User")
	}
	return &u, nil
}

// ListUsers returns a page of users ordered by name
func (gdb *GormDB) ListUsers(page Page) ([]models.User, int64, error) {
	return paginate[models.User](gdb.db.Model(&models.User{}), page, "name ASC, id ASC")
}

// UpdateUser applies an admin edit. Demoting or deactivating the last
// active admin is refused.
func (gdb *GormDB) UpdateUser(id uint, upd UserUpdate) (*models.User, error) {
	var out models.User
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return lookupErr(err, "User")
		}

		updates := map[string]interface{}{}
		if upd.Name != nil {
			updates["name"] = *upd.Name
		}
		if upd.Email != nil {
			email := normalizeEmail(*upd.Email)
			if err := ensureUserEmailFree(tx, email, id); err != nil {
				return err
			}
			updates["email"] = email
		}
		if upd.Role != nil {
			updates["role"] = *upd.Role
		}
		if upd.IsActive != nil {
			updates["is_active"] = *upd.IsActive
		}
		if len(updates) == 0 {
			return nil
		}

		losesAdmin := (upd.Role != nil && *upd.Role != models.RoleAdmin) ||
			(upd.IsActive != nil && !*upd.IsActive)
		if out.Role == models.RoleAdmin && out.IsActive && losesAdmin {
			n, err := countActiveAdmins(tx)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastActiveAdmin
			}
		}

		if err := tx.Model(&out).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePassword stores a new bcrypt hash
func (gdb *GormDB) UpdatePassword(id uint, hash string) error {
	res := gdb.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("User")
	}
	return nil
}

// TouchLastLogin records a successful login
func (gdb *GormDB) TouchLastLogin(id uint, at time.Time) error {
	return gdb.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// DeleteUser removes an account. The last admin cannot be deleted and
// nobody can delete themselves.
func (gdb *GormDB) DeleteUser(id, actorID uint) error {
	if id == actorID {
		return ErrSelfDelete
	}
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			return lookupErr(err, "User")
		}

		if u.Role == models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
			if u.IsActive {
				n, err := countActiveAdmins(tx)
				if err != nil {
					return err
				}
				if n <= 1 {
					return ErrLastActiveAdmin
				}
			}
		}

		// Records keep their history but lose the reference
		if err := tx.Model(&models.Interaction{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Client{}).Where("assigned_agent_id = ?", id).Update("assigned_agent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Property{}).Where("agent_id = ?", id).Update("agent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PropertyVisit{}).Where("agent_id = ?", id).Update("agent_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		return writeDeleteLog(tx, models.EntityUser, u.ID, u.Email, &actorID)
	})
}

func countActiveAdmins(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Count(&n).Error
	return n, err
}

func ensureUserEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	var existing models.User
	err := tx.Select("id").Where("email = ? AND id <> ?", email, exceptID).First(&existing).Error
	if err == nil {
		return ErrDuplicateEmail
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func writeDeleteLog(tx *gorm.DB, entityType string, id uint, label string, actorID *uint) error {
	return tx.Create(&models.DeleteLog{
		EntityType: entityType,
		EntityID:   id,
		Label:      label,
		Reason:     models.DeleteReasonManual,
		DeletedBy:  actorID,
	}).Error
}
