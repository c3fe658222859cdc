package handlers

import (
	"net/http"
	"strconv"
	"time"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/export"
	"real-estate-crm/internal/history"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"
	"real-estate-crm/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PropertyHandler handles property requests
type PropertyHandler struct {
	db      *database.GormDB
	history *history.Service
	search  search.Engine
	log     *logrus.Entry
}

// NewPropertyHandler creates a new property handler. A nil engine makes
// search fall back to SQL.
func NewPropertyHandler(db *database.GormDB, historySvc *history.Service, engine search.Engine) *PropertyHandler {
	return &PropertyHandler{
		db:      db,
		history: historySvc,
		search:  engine,
		log:     logger.Component("properties"),
	}
}

type propertyRequest struct {
	Title           string                 `json:"title" binding:"required,max=255"`
	Description     string                 `json:"description"`
	Type            models.PropertyType    `json:"type" binding:"required,oneof=apartment house villa land commercial office"`
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,oneof=sale rent"`
	Status          models.PropertyStatus  `json:"status" binding:"omitempty,oneof=available reserved rented sold off_market"`
	Price           float64                `json:"price" binding:"gte=0"`
	Area            *float64               `json:"area" binding:"omitempty,gt=0"`
	Bedrooms        *int                   `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms       *int                   `json:"bathrooms" binding:"omitempty,gte=0"`
	Address         string                 `json:"address" binding:"max=255"`
	City            string                 `json:"city" binding:"max=100"`
	PostalCode      string                 `json:"postal_code" binding:"max=20"`
	Latitude        *float64               `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude       *float64               `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	OwnerClientID   *uint                  `json:"owner_client_id"`
	AgentID         *uint                  `json:"agent_id"`
}

type propertyUpdateRequest struct {
	Title           *string                 `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string                 `json:"description"`
	Type            *models.PropertyType    `json:"type" binding:"omitempty,oneof=apartment house villa land commercial office"`
	TransactionType *models.TransactionType `json:"transaction_type" binding:"omitempty,oneof=sale rent"`
	Status          *models.PropertyStatus  `json:"status" binding:"omitempty,oneof=available reserved rented sold off_market"`
	Price           *float64                `json:"price" binding:"omitempty,gte=0"`
	Area            *float64                `json:"area" binding:"omitempty,gt=0"`
	Bedrooms        *int                    `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms       *int                    `json:"bathrooms" binding:"omitempty,gte=0"`
	Address         *string                 `json:"address" binding:"omitempty,max=255"`
	City            *string                 `json:"city" binding:"omitempty,max=100"`
	PostalCode      *string                 `json:"postal_code" binding:"omitempty,max=20"`
	Latitude        *float64                `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude       *float64                `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	OwnerClientID   *uint                   `json:"owner_client_id"`
	AgentID         *uint                   `json:"agent_id"`
}

func (r propertyUpdateRequest) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.Title != nil {
		u["title"] = *r.Title
	}
	if r.Description != nil {
		u["description"] = *r.Description
	}
	if r.Type != nil {
		u["type"] = *r.Type
	}
	if r.TransactionType != nil {
		u["transaction_type"] = *r.TransactionType
	}
	if r.Status != nil {
		u["status"] = *r.Status
	}
	if r.Price != nil {
		u["price"] = *r.Price
	}
	if r.Area != nil {
		u["area"] = *r.Area
	}
	if r.Bedrooms != nil {
		u["bedrooms"] = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		u["bathrooms"] = *r.Bathrooms
	}
	if r.Address != nil {
		u["address"] = *r.Address
	}
	if r.City != nil {
		u["city"] = *r.City
	}
	if r.PostalCode != nil {
		u["postal_code"] = *r.PostalCode
	}
	if r.Latitude != nil {
		u["latitude"] = *r.Latitude
	}
	if r.Longitude != nil {
		u["longitude"] = *r.Longitude
	}
	if r.OwnerClientID != nil {
		u["owner_client_id"] = *r.OwnerClientID
	}
	if r.AgentID != nil {
		u["agent_id"] = *r.AgentID
	}
	return u
}

type mediaRequest struct {
	URL       string           `json:"url" binding:"required,url,max=1000"`
	MediaType models.MediaType `json:"media_type" binding:"omitempty,oneof=image video floor_plan virtual_tour"`
	Caption   string           `json:"caption" binding:"max=255"`
	SortOrder int              `json:"sort_order" binding:"gte=0"`
	IsPrimary bool             `json:"is_primary"`
}

func (h *PropertyHandler) filter(c *gin.Context) (database.PropertyFilter, bool) {
	q := newQueryParser(c)
	f := database.PropertyFilter{
		Status:          q.OneOf("status", "available", "reserved", "rented", "sold", "off_market"),
		Type:            q.OneOf("type", "apartment", "house", "villa", "land", "commercial", "office"),
		TransactionType: q.OneOf("transaction_type", "sale", "rent"),
		City:            c.Query("city"),
		MinPrice:        q.Float("min_price"),
		MaxPrice:        q.Float("max_price"),
		MinBedrooms:     q.Int("min_bedrooms"),
		AgentID:         q.Uint("agent_id"),
		Sort:            q.OneOf("sort", "price_asc", "price_desc", "newest", "area_desc", "bedrooms_desc"),
	}
	return f, q.Done()
}

// ListProperties returns a filtered, sorted page of properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	page := parsePage(c)
	properties, total, err := h.db.ListProperties(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, properties, total, page)
}

// SearchProperties runs a full-text search, on Meilisearch when configured
func (h *PropertyHandler) SearchProperties(c *gin.Context) {
	query := c.Query("q")
	limit := database.NewPage(0, 0).Limit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondFieldError(c, "limit", "must be a positive integer")
			return
		}
		limit = database.NewPage(n, 0).Limit
	}

	if h.search != nil {
		results, err := h.search.FilterSearch(search.FilterParams{Query: query, Limit: int64(limit)})
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"items": results, "total": len(results), "source": "meilisearch"})
			return
		}
		h.log.WithError(err).Warn("Search engine query failed, falling back to SQL")
	}

	results, err := h.db.SearchProperties(query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results, "total": len(results), "source": "database"})
}

// GetProperty returns a property with its media
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	property, err := h.db.GetProperty(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// CreateProperty adds a listing
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property := &models.Property{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		TransactionType: req.TransactionType,
		Status:          req.Status,
		Price:           req.Price,
		Area:            req.Area,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		Address:         req.Address,
		City:            req.City,
		PostalCode:      req.PostalCode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		OwnerClientID:   req.OwnerClientID,
		AgentID:         req.AgentID,
	}
	if property.AgentID == nil {
		property.AgentID = middleware.CurrentUserID(c)
	}

	if err := h.db.CreateProperty(property); err != nil {
		respondError(c, err)
		return
	}
	h.index(property)
	c.JSON(http.StatusCreated, property)
}

// UpdateProperty edits a listing and records tracked field changes
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req propertyUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	property, changes, err := h.db.UpdateProperty(id, req.updates(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(changes) > 0 {
		h.log.WithFields(logrus.Fields{"property_id": id, "changes": len(changes)}).Info("Property changes recorded")
	}
	h.index(property)
	c.JSON(http.StatusOK, property)
}

// DeleteProperty removes a listing and its media, visits and history
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteProperty(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	if h.search != nil {
		if err := h.search.DeleteProperty(id); err != nil {
			h.log.WithError(err).WithField("property_id", id).Warn("Failed to remove property from search index")
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// GetHistory returns the change history of a property, newest first
func (h *PropertyHandler) GetHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	q := newQueryParser(c)
	limit := q.Int("limit")
	if !q.Done() {
		return
	}
	if err := h.db.PropertyExists(id); err != nil {
		respondError(c, err)
		return
	}

	n := 50
	if limit != nil && *limit > 0 {
		n = *limit
	}
	changes, err := h.history.GetPropertyHistory(id, n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": id, "items": changes, "total": len(changes)})
}

// AddMedia attaches a media item to a property
func (h *PropertyHandler) AddMedia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req mediaRequest
	if !bindJSON(c, &req) {
		return
	}

	media := &models.PropertyMedia{
		PropertyID: id,
		URL:        req.URL,
		MediaType:  req.MediaType,
		Caption:    req.Caption,
		SortOrder:  req.SortOrder,
		IsPrimary:  req.IsPrimary,
	}
	if media.MediaType == "" {
		media.MediaType = models.MediaTypeImage
	}
	if err := h.db.AddMedia(media); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// DeleteMedia detaches a media item
func (h *PropertyHandler) DeleteMedia(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	mediaID, ok := parseID(c, "mediaId")
	if !ok {
		return
	}
	if err := h.db.DeleteMedia(id, mediaID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
}

// Export streams the filtered property list as an xlsx workbook
func (h *PropertyHandler) Export(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	properties, err := h.db.ExportProperties(f)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := export.Properties(properties)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, export.Filename("properties", time.Now()), data)
}

type bulkIndexer interface {
	IndexProperties(properties []models.Property) error
}

// Reindex pushes every property to the search engine
func (h *PropertyHandler) Reindex(c *gin.Context) {
	bulk, ok := h.search.(bulkIndexer)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search engine not configured"})
		return
	}
	properties, err := h.db.ExportProperties(database.PropertyFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bulk.IndexProperties(properties); err != nil {
		h.log.WithError(err).Error("Reindex failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Search engine rejected the documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reindex queued", "count": len(properties)})
}

// index mirrors a property into the search engine. Failures are logged only.
func (h *PropertyHandler) index(p *models.Property) {
	if h.search == nil {
		return
	}
	if err := h.search.IndexProperty(p); err != nil {
		h.log.WithError(err).WithField("property_id", p.ID).Warn("Failed to index property")
	}
}
