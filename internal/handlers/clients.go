package handlers

import (
	"errors"
	"net/http"
	"time"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/export"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles clients, their needs and interactions
type ClientHandler struct {
	db *database.GormDB
}

// NewClientHandler creates a new client handler
func NewClientHandler(db *database.GormDB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientRequest struct {
	FirstName       string              `json:"first_name" binding:"required,max=100"`
	LastName        string              `json:"last_name" binding:"required,max=100"`
	Email           *string             `json:"email" binding:"omitempty,email"`
	Phone           string              `json:"phone" binding:"max=30"`
	Type            models.ClientType   `json:"type" binding:"required,oneof=buyer seller tenant landlord investor"`
	Status          models.ClientStatus `json:"status" binding:"omitempty,oneof=lead prospect active inactive"`
	Source          string              `json:"source" binding:"max=100"`
	Notes           string              `json:"notes"`
	AssignedAgentID *uint               `json:"assigned_agent_id"`
}

type clientUpdateRequest struct {
	FirstName       *string              `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName        *string              `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email           *string              `json:"email" binding:"omitempty,email"`
	Phone           *string              `json:"phone" binding:"omitempty,max=30"`
	Type            *models.ClientType   `json:"type" binding:"omitempty,oneof=buyer seller tenant landlord investor"`
	Status          *models.ClientStatus `json:"status" binding:"omitempty,oneof=lead prospect active inactive"`
	Source          *string              `json:"source" binding:"omitempty,max=100"`
	Notes           *string              `json:"notes"`
	AssignedAgentID *uint                `json:"assigned_agent_id"`
}

// updates builds the allow-listed column map
func (r clientUpdateRequest) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.FirstName != nil {
		u["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		u["last_name"] = *r.LastName
	}
	if r.Email != nil {
		u["email"] = r.Email
	}
	if r.Phone != nil {
		u["phone"] = *r.Phone
	}
	if r.Type != nil {
		u["type"] = *r.Type
	}
	if r.Status != nil {
		u["status"] = *r.Status
	}
	if r.Source != nil {
		u["source"] = *r.Source
	}
	if r.Notes != nil {
		u["notes"] = *r.Notes
	}
	if r.AssignedAgentID != nil {
		u["assigned_agent_id"] = *r.AssignedAgentID
	}
	return u
}

type needRequest struct {
	TransactionType models.TransactionType `json:"transaction_type" binding:"required,oneof=sale rent"`
	PropertyType    *models.PropertyType   `json:"property_type" binding:"omitempty,oneof=apartment house villa land commercial office"`
	MinBudget       *float64               `json:"min_budget" binding:"omitempty,gte=0"`
	MaxBudget       *float64               `json:"max_budget" binding:"omitempty,gte=0"`
	MinArea         *float64               `json:"min_area" binding:"omitempty,gte=0"`
	MinBedrooms     *int                   `json:"min_bedrooms" binding:"omitempty,gte=0"`
	Locations       string                 `json:"locations" binding:"max=500"`
	Notes           string                 `json:"notes"`
}

type needUpdateRequest struct {
	TransactionType *models.TransactionType `json:"transaction_type" binding:"omitempty,oneof=sale rent"`
	PropertyType    *models.PropertyType    `json:"property_type" binding:"omitempty,oneof=apartment house villa land commercial office"`
	MinBudget       *float64                `json:"min_budget" binding:"omitempty,gte=0"`
	MaxBudget       *float64                `json:"max_budget" binding:"omitempty,gte=0"`
	MinArea         *float64                `json:"min_area" binding:"omitempty,gte=0"`
	MinBedrooms     *int                    `json:"min_bedrooms" binding:"omitempty,gte=0"`
	Locations       *string                 `json:"locations" binding:"omitempty,max=500"`
	Notes           *string                 `json:"notes"`
}

func (r needUpdateRequest) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if r.TransactionType != nil {
		u["transaction_type"] = *r.TransactionType
	}
	if r.PropertyType != nil {
		u["property_type"] = *r.PropertyType
	}
	if r.MinBudget != nil {
		u["min_budget"] = *r.MinBudget
	}
	if r.MaxBudget != nil {
		u["max_budget"] = *r.MaxBudget
	}
	if r.MinArea != nil {
		u["min_area"] = *r.MinArea
	}
	if r.MinBedrooms != nil {
		u["min_bedrooms"] = *r.MinBedrooms
	}
	if r.Locations != nil {
		u["locations"] = *r.Locations
	}
	if r.Notes != nil {
		u["notes"] = *r.Notes
	}
	return u
}

type interactionRequest struct {
	Type       models.InteractionType `json:"type" binding:"required,oneof=call email meeting visit note"`
	Subject    string                 `json:"subject" binding:"max=255"`
	Notes      string                 `json:"notes"`
	OccurredAt *string                `json:"occurred_at"`
	FollowUpAt *string                `json:"follow_up_at"`
}

func (h *ClientHandler) filter(c *gin.Context) (database.ClientFilter, bool) {
	q := newQueryParser(c)
	f := database.ClientFilter{
		Status:          q.OneOf("status", "lead", "prospect", "active", "inactive"),
		Type:            q.OneOf("type", "buyer", "seller", "tenant", "landlord", "investor"),
		AssignedAgentID: q.Uint("assigned_agent_id"),
		Query:           c.Query("q"),
	}
	return f, q.Done()
}

// ListClients returns a filtered page of clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	page := parsePage(c)
	clients, total, err := h.db.ListClients(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, clients, total, page)
}

// GetClient returns a client with needs and recent interactions
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.db.GetClient(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CreateClient adds a client
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req clientRequest
	if !bindJSON(c, &req) {
		return
	}

	client := &models.Client{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Type:            req.Type,
		Status:          req.Status,
		Source:          req.Source,
		Notes:           req.Notes,
		AssignedAgentID: req.AssignedAgentID,
	}
	if client.Status == "" {
		client.Status = models.ClientStatusLead
	}
	if client.AssignedAgentID == nil {
		client.AssignedAgentID = middleware.CurrentUserID(c)
	}

	if err := h.db.CreateClient(client); err != nil {
		h.respondClientError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient edits the allow-listed client fields
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req clientUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.db.UpdateClient(id, req.updates())
	if err != nil {
		h.respondClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client and its dependent records
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteClient(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}

// ListNeeds returns a client's needs
func (h *ClientHandler) ListNeeds(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	needs, err := h.db.ListNeeds(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, needs)
}

// CreateNeed records what a client is looking for
func (h *ClientHandler) CreateNeed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req needRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.MinBudget != nil && req.MaxBudget != nil && *req.MinBudget > *req.MaxBudget {
		respondFieldError(c, "max_budget", "must be greater than or equal to min_budget")
		return
	}

	need := &models.ClientNeed{
		ClientID:        id,
		TransactionType: req.TransactionType,
		PropertyType:    req.PropertyType,
		MinBudget:       req.MinBudget,
		MaxBudget:       req.MaxBudget,
		MinArea:         req.MinArea,
		MinBedrooms:     req.MinBedrooms,
		Locations:       req.Locations,
		Notes:           req.Notes,
	}
	if err := h.db.CreateNeed(need); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, need)
}

// UpdateNeed edits a need of the client
func (h *ClientHandler) UpdateNeed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	needID, ok := parseID(c, "needId")
	if !ok {
		return
	}
	var req needUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	need, err := h.db.UpdateNeed(id, needID, req.updates())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, need)
}

// DeleteNeed removes a need of the client
func (h *ClientHandler) DeleteNeed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	needID, ok := parseID(c, "needId")
	if !ok {
		return
	}
	if err := h.db.DeleteNeed(id, needID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Need deleted"})
}

// ListInteractions returns a page of the client's interactions
func (h *ClientHandler) ListInteractions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page := parsePage(c)
	items, total, err := h.db.ListInteractions(id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page)
}

// CreateInteraction logs a contact with the client by the caller
func (h *ClientHandler) CreateInteraction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req interactionRequest
	if !bindJSON(c, &req) {
		return
	}

	occurredAt := time.Now().UTC()
	if at, ok := optionalBodyTime(c, "occurred_at", req.OccurredAt); !ok {
		return
	} else if at != nil {
		occurredAt = *at
	}
	followUp, ok := optionalBodyTime(c, "follow_up_at", req.FollowUpAt)
	if !ok {
		return
	}

	interaction := &models.Interaction{
		ClientID:   id,
		UserID:     middleware.CurrentUserID(c),
		Type:       req.Type,
		Subject:    req.Subject,
		Notes:      req.Notes,
		OccurredAt: occurredAt,
		FollowUpAt: followUp,
	}
	if err := h.db.CreateInteraction(interaction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interaction)
}

// DeleteInteraction removes an interaction of the client
func (h *ClientHandler) DeleteInteraction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	interactionID, ok := parseID(c, "interactionId")
	if !ok {
		return
	}
	if err := h.db.DeleteInteraction(id, interactionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interaction deleted"})
}

// Matches lists available properties that fit any of the client's needs
func (h *ClientHandler) Matches(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	properties, err := h.db.MatchProperties(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": properties, "total": len(properties)})
}

// Export streams the filtered client list as an xlsx workbook
func (h *ClientHandler) Export(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	clients, err := h.db.ExportClients(f)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := export.Clients(clients)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, export.Filename("clients", time.Now()), data)
}

func (h *ClientHandler) respondClientError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrDuplicateEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A client with this email already exists"})
		return
	}
	respondError(c, err)
}

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}
