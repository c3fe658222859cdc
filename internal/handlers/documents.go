package handlers

import (
	"net/http"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// DocumentHandler handles the general document registry
type DocumentHandler struct {
	db *database.GormDB
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(db *database.GormDB) *DocumentHandler {
	return &DocumentHandler{db: db}
}

type documentRequest struct {
	Title      string                  `json:"title" binding:"required,max=255"`
	Category   models.DocumentCategory `json:"category" binding:"omitempty,oneof=contract invoice identity property other"`
	EntityType string                  `json:"entity_type" binding:"omitempty,oneof=client property contract maintenance general"`
	EntityID   *uint                   `json:"entity_id"`
	FileURL    string                  `json:"file_url" binding:"required,url,max=1000"`
	MimeType   string                  `json:"mime_type" binding:"max=100"`
	SizeBytes  *int64                  `json:"size_bytes" binding:"omitempty,gte=0"`
	Notes      string                  `json:"notes"`
}

type documentUpdateRequest struct {
	Title      *string                  `json:"title" binding:"omitempty,min=1,max=255"`
	Category   *models.DocumentCategory `json:"category" binding:"omitempty,oneof=contract invoice identity property other"`
	EntityType *string                  `json:"entity_type" binding:"omitempty,oneof=client property contract maintenance general"`
	EntityID   *uint                    `json:"entity_id"`
	FileURL    *string                  `json:"file_url" binding:"omitempty,url,max=1000"`
	MimeType   *string                  `json:"mime_type" binding:"omitempty,max=100"`
	Notes      *string                  `json:"notes"`
}

// ListDocuments returns a filtered page of documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	q := newQueryParser(c)
	f := database.DocumentFilter{
		Category:   q.OneOf("category", "contract", "invoice", "identity", "property", "other"),
		EntityType: q.OneOf("entity_type", "client", "property", "contract", "maintenance", "general"),
		EntityID:   q.Uint("entity_id"),
		Query:      c.Query("q"),
	}
	if !q.Done() {
		return
	}

	page := parsePage(c)
	docs, total, err := h.db.ListDocuments(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, docs, total, page)
}

// GetDocument returns a single document
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.db.GetDocument(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateDocument registers a document uploaded by the caller
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req documentRequest
	if !bindJSON(c, &req) {
		return
	}

	doc := &models.Document{
		Title:      req.Title,
		Category:   req.Category,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		FileURL:    req.FileURL,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		UploadedBy: middleware.CurrentUserID(c),
		Notes:      req.Notes,
	}
	if doc.Category == "" {
		doc.Category = models.DocumentOther
	}
	if doc.EntityType == "" {
		doc.EntityType = models.EntityGeneral
	}

	if err := h.db.CreateDocument(doc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UpdateDocument edits a document record
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req documentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.EntityType != nil {
		updates["entity_type"] = *req.EntityType
	}
	if req.EntityID != nil {
		updates["entity_id"] = req.EntityID
	}
	if req.FileURL != nil {
		updates["file_url"] = *req.FileURL
	}
	if req.MimeType != nil {
		updates["mime_type"] = *req.MimeType
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	doc, err := h.db.UpdateDocument(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes a document record
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteDocument(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
