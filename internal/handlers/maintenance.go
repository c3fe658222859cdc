package handlers

import (
	"net/http"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler handles maintenance requests and their photos
type MaintenanceHandler struct {
	db *database.GormDB
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(db *database.GormDB) *MaintenanceHandler {
	return &MaintenanceHandler{db: db}
}

type maintenanceRequest struct {
	PropertyID  uint                       `json:"property_id" binding:"required"`
	ContractID  *uint                      `json:"contract_id"`
	ReportedBy  *uint                      `json:"reported_by"`
	Title       string                     `json:"title" binding:"required,max=255"`
	Description string                     `json:"description"`
	Priority    models.MaintenancePriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      models.MaintenanceStatus   `json:"status" binding:"omitempty,oneof=open in_progress resolved closed cancelled"`
	AssignedTo  string                     `json:"assigned_to" binding:"max=255"`
	Cost        *float64                   `json:"cost" binding:"omitempty,gte=0"`
	ScheduledAt *string                    `json:"scheduled_at"`
}

type maintenanceUpdateRequest struct {
	ContractID  *uint                       `json:"contract_id"`
	Title       *string                     `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string                     `json:"description"`
	Priority    *models.MaintenancePriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      *models.MaintenanceStatus   `json:"status" binding:"omitempty,oneof=open in_progress resolved closed cancelled"`
	AssignedTo  *string                     `json:"assigned_to" binding:"omitempty,max=255"`
	Cost        *float64                    `json:"cost" binding:"omitempty,gte=0"`
	ScheduledAt *string                     `json:"scheduled_at"`
}

type photoRequest struct {
	URL     string `json:"url" binding:"required,url,max=1000"`
	Caption string `json:"caption" binding:"max=255"`
}

// ListMaintenance returns a filtered page of requests
func (h *MaintenanceHandler) ListMaintenance(c *gin.Context) {
	q := newQueryParser(c)
	f := database.MaintenanceFilter{
		Status:     q.OneOf("status", "open", "in_progress", "resolved", "closed", "cancelled"),
		Priority:   q.OneOf("priority", "low", "medium", "high", "urgent"),
		PropertyID: q.Uint("property_id"),
	}
	if !q.Done() {
		return
	}

	page := parsePage(c)
	items, total, err := h.db.ListMaintenance(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page)
}

// GetMaintenance returns a request with its photos
func (h *MaintenanceHandler) GetMaintenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.db.GetMaintenance(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMaintenance opens a request, optionally reported by a client
func (h *MaintenanceHandler) CreateMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	scheduled, ok := optionalBodyTime(c, "scheduled_at", req.ScheduledAt)
	if !ok {
		return
	}

	m := &models.MaintenanceRequest{
		PropertyID:  req.PropertyID,
		ContractID:  req.ContractID,
		ReportedBy:  req.ReportedBy,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Cost:        req.Cost,
		ScheduledAt: scheduled,
	}
	if err := h.db.CreateMaintenance(m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateMaintenance edits a request
func (h *MaintenanceHandler) UpdateMaintenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req maintenanceUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.ScheduledAt != nil {
		t, ok := bodyTime(c, "scheduled_at", *req.ScheduledAt)
		if !ok {
			return
		}
		updates["scheduled_at"] = t
	}
	if req.ContractID != nil {
		updates["contract_id"] = *req.ContractID
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}

	m, err := h.db.UpdateMaintenance(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMaintenance removes a request and its photos
func (h *MaintenanceHandler) DeleteMaintenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteMaintenance(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance request deleted"})
}

// AddPhoto attaches a photo to a request
func (h *MaintenanceHandler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req photoRequest
	if !bindJSON(c, &req) {
		return
	}

	photo := &models.MaintenancePhoto{RequestID: id, URL: req.URL, Caption: req.Caption}
	if err := h.db.AddMaintenancePhoto(photo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// DeletePhoto removes a photo of a request
func (h *MaintenanceHandler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	photoID, ok := parseID(c, "photoId")
	if !ok {
		return
	}
	if err := h.db.DeleteMaintenancePhoto(id, photoID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}
