package database

import (
	"errors"
	"strings"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

// ClientFilter narrows ListClients
type ClientFilter struct {
	Status          string
	Type            string
	AssignedAgentID *uint
	Query           string
}

func (f ClientFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.AssignedAgentID != nil {
		q = q.Where("assigned_agent_id = ?", *f.AssignedAgentID)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!' OR phone LIKE ? ESCAPE '!'", like, like, like, like)
	}
	return q
}

// ListClients returns a filtered page of clients, newest first
func (gdb *GormDB) ListClients(f ClientFilter, page Page) ([]models.Client, int64, error) {
	return paginate[models.Client](f.apply(gdb.db.Model(&models.Client{})), page, "created_at DESC, id DESC")
}

// ExportClients returns every client matching the filter
func (gdb *GormDB) ExportClients(f ClientFilter) ([]models.Client, error) {
	var clients []models.Client
	err := f.apply(gdb.db.Model(&models.Client{})).Order("last_name ASC, first_name ASC").Find(&clients).Error
	return clients, err
}

// GetClient returns a client with its needs and latest interactions
func (gdb *GormDB) GetClient(id uint) (*models.Client, error) {
	var c models.Client
	err := gdb.db.
		Preload("Needs", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Interactions", func(db *gorm.DB) *gorm.DB { return db.Order("occurred_at DESC").Limit(20) }).
		First(&c, id).Error
	if err != nil {
		return nil, lookupErr(err, "Client")
	}
	return &c, nil
}

// CreateClient inserts a client, rejecting a taken email
func (gdb *GormDB) CreateClient(c *models.Client) error {
	c.Email = normalizeOptionalEmail(c.Email)
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if c.Email != nil {
			if err := ensureClientEmailFree(tx, *c.Email, 0); err != nil {
				return err
			}
		}
		return tx.Create(c).Error
	})
}

// UpdateClient applies column updates already filtered by the caller
func (gdb *GormDB) UpdateClient(id uint, updates map[string]interface{}) (*models.Client, error) {
	var c models.Client
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return lookupErr(err, "Client")
		}
		if raw, ok := updates["email"]; ok {
			email, _ := raw.(*string)
			email = normalizeOptionalEmail(email)
			if email != nil {
				if err := ensureClientEmailFree(tx, *email, id); err != nil {
					return err
				}
			}
			updates["email"] = email
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&c).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteClient removes a client and everything hanging off it in one
// transaction. Parties to an active contract are refused.
func (gdb *GormDB) DeleteClient(id uint, actorID *uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.First(&c, id).Error; err != nil {
			return lookupErr(err, "Client")
		}

		var active int64
		if err := tx.Model(&models.RentalContract{}).
			Where("status = ? AND (tenant_id = ? OR landlord_id = ?)", models.ContractActive, id, id).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrClientInUse
		}

		if err := tx.Where("client_id = ?", id).Delete(&models.ClientNeed{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.PropertyVisit{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Property{}).Where("owner_client_id = ?", id).Update("owner_client_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MaintenanceRequest{}).Where("reported_by = ?", id).Update("reported_by", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return writeDeleteLog(tx, models.EntityClient, c.ID, c.FullName(), actorID)
	})
}

// ListNeeds returns a client's needs
func (gdb *GormDB) ListNeeds(clientID uint) ([]models.ClientNeed, error) {
	if err := gdb.clientExists(gdb.db, clientID); err != nil {
		return nil, err
	}
	needs := make([]models.ClientNeed, 0)
	err := gdb.db.Where("client_id = ?", clientID).Order("id ASC").Find(&needs).Error
	return needs, err
}

// CreateNeed attaches a need to an existing client
func (gdb *GormDB) CreateNeed(n *models.ClientNeed) error {
	if err := gdb.clientExists(gdb.db, n.ClientID); err != nil {
		return err
	}
	return gdb.db.Create(n).Error
}

// UpdateNeed edits a need that belongs to clientID
func (gdb *GormDB) UpdateNeed(clientID, needID uint, updates map[string]interface{}) (*models.ClientNeed, error) {
	var n models.ClientNeed
	if err := gdb.db.Where("id = ? AND client_id = ?", needID, clientID).First(&n).Error; err != nil {
		return nil, lookupErr(err, "Need")
	}
	if len(updates) > 0 {
		if err := gdb.db.Model(&n).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := gdb.db.First(&n, needID).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}

// DeleteNeed removes a need that belongs to clientID
func (gdb *GormDB) DeleteNeed(clientID, needID uint) error {
	res := gdb.db.Where("id = ? AND client_id = ?", needID, clientID).Delete(&models.ClientNeed{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Need")
	}
	return nil
}

// ListInteractions returns a page of a client's interactions, newest first
func (gdb *GormDB) ListInteractions(clientID uint, page Page) ([]models.Interaction, int64, error) {
	if err := gdb.clientExists(gdb.db, clientID); err != nil {
		return nil, 0, err
	}
	q := gdb.db.Model(&models.Interaction{}).Where("client_id = ?", clientID)
	return paginate[models.Interaction](q, page, "occurred_at DESC, id DESC")
}

// CreateInteraction logs a contact with an existing client
func (gdb *GormDB) CreateInteraction(i *models.Interaction) error {
	if err := gdb.clientExists(gdb.db, i.ClientID); err != nil {
		return err
	}
	return gdb.db.Create(i).Error
}

// DeleteInteraction removes an interaction that belongs to clientID
func (gdb *GormDB) DeleteInteraction(clientID, interactionID uint) error {
	res := gdb.db.Where("id = ? AND client_id = ?", interactionID, clientID).Delete(&models.Interaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Interaction")
	}
	return nil
}

// MatchProperties returns available properties that satisfy at least one
// of the client's needs
func (gdb *GormDB) MatchProperties(clientID uint) ([]models.Property, error) {
	needs, err := gdb.ListNeeds(clientID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	matches := make([]models.Property, 0)
	for _, need := range needs {
		var found []models.Property
		if err := needQuery(gdb.db, need).Order("created_at DESC, id DESC").Find(&found).Error; err != nil {
			return nil, err
		}
		for _, p := range found {
			if !seen[p.ID] {
				seen[p.ID] = true
				matches = append(matches, p)
			}
		}
	}
	return matches, nil
}

func needQuery(db *gorm.DB, need models.ClientNeed) *gorm.DB {
	q := db.Model(&models.Property{}).
		Where("status = ?", models.PropertyStatusAvailable).
		Where("transaction_type = ?", need.TransactionType)
	if need.PropertyType != nil && *need.PropertyType != "" {
		q = q.Where("type = ?", *need.PropertyType)
	}
	if need.MinBudget != nil {
		q = q.Where("price >= ?", *need.MinBudget)
	}
	if need.MaxBudget != nil {
		q = q.Where("price <= ?", *need.MaxBudget)
	}
	if need.MinArea != nil {
		q = q.Where("area >= ?", *need.MinArea)
	}
	if need.MinBedrooms != nil {
		q = q.Where("bedrooms >= ?", *need.MinBedrooms)
	}
	if cities := splitLocations(need.Locations); len(cities) > 0 {
		q = q.Where("LOWER(city) IN ?", cities)
	}
	return q
}

func splitLocations(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if city := strings.ToLower(strings.TrimSpace(part)); city != "" {
			out = append(out, city)
		}
	}
	return out
}

func (gdb *GormDB) clientExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("Client")
	}
	return nil
}

func ensureClientEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	var existing models.Client
	err := tx.Select("id").Where("email = ? AND id <> ?", email, exceptID).First(&existing).Error
	if err == nil {
		return ErrDuplicateEmail
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// normalizeOptionalEmail lower-cases the address and maps blank to NULL so
// the unique index only covers real addresses
func normalizeOptionalEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := normalizeEmail(*email)
	if e == "" {
		return nil
	}
	return &e
}
