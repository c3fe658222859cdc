package database

import (
	"real-estate-crm/internal/models"
)

// DocumentFilter narrows ListDocuments
type DocumentFilter struct {
	Category   string
	EntityType string
	EntityID   *uint
	Query      string
}

// ListDocuments returns a filtered page of documents, newest first
func (gdb *GormDB) ListDocuments(f DocumentFilter, page Page) ([]models.Document, int64, error) {
	q := gdb.db.Model(&models.Document{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	if f.Query != "" {
		q = q.Where("title LIKE ? ESCAPE '!'", likePattern(f.Query))
	}
	return paginate[models.Document](q, page, "created_at DESC, id DESC")
}

// GetDocument retrieves a document by ID
func (gdb *GormDB) GetDocument(id uint) (*models.Document, error) {
	var d models.Document
	if err := gdb.db.First(&d, id).Error; err != nil {
		return nil, lookupErr(err, "Document")
	}
	return &d, nil
}

// CreateDocument inserts a document record
func (gdb *GormDB) CreateDocument(d *models.Document) error {
	if err := checkDocumentEntity(d.EntityType, d.EntityID); err != nil {
		return err
	}
	return gdb.db.Create(d).Error
}

// UpdateDocument applies column updates, keeping the entity reference valid
func (gdb *GormDB) UpdateDocument(id uint, updates map[string]interface{}) (*models.Document, error) {
	var d models.Document
	if err := gdb.db.First(&d, id).Error; err != nil {
		return nil, lookupErr(err, "Document")
	}
	if len(updates) == 0 {
		return &d, nil
	}

	entityType := d.EntityType
	if v, ok := updates["entity_type"].(string); ok {
		entityType = v
	}
	entityID := d.EntityID
	if v, ok := updates["entity_id"]; ok {
		entityID, _ = v.(*uint)
	}
	if err := checkDocumentEntity(entityType, entityID); err != nil {
		return nil, err
	}

	if err := gdb.db.Model(&d).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDocument removes a document record
func (gdb *GormDB) DeleteDocument(id uint) error {
	res := gdb.db.Delete(&models.Document{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Document")
	}
	return nil
}

func checkDocumentEntity(entityType string, entityID *uint) error {
	if entityType != models.EntityGeneral && entityID == nil {
		return invalidState("entity_id is required unless entity_type is general")
	}
	return nil
}
