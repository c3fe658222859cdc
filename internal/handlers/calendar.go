package handlers

import (
	"net/http"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// CalendarHandler handles property visits
type CalendarHandler struct {
	db *database.GormDB
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(db *database.GormDB) *CalendarHandler {
	return &CalendarHandler{db: db}
}

type visitRequest struct {
	PropertyID uint               `json:"property_id" binding:"required"`
	ClientID   *uint              `json:"client_id"`
	AgentID    *uint              `json:"agent_id"`
	StartTime  string             `json:"start_time" binding:"required"`
	EndTime    string             `json:"end_time" binding:"required"`
	Status     models.VisitStatus `json:"status" binding:"omitempty,oneof=requested confirmed"`
	Notes      string             `json:"notes"`
}

type visitUpdateRequest struct {
	PropertyID *uint               `json:"property_id" binding:"omitempty,min=1"`
	ClientID   *uint               `json:"client_id"`
	AgentID    *uint               `json:"agent_id"`
	StartTime  *string             `json:"start_time"`
	EndTime    *string             `json:"end_time"`
	Status     *models.VisitStatus `json:"status" binding:"omitempty,oneof=requested confirmed completed cancelled no_show"`
	Notes      *string             `json:"notes"`
	Feedback   *string             `json:"feedback"`
	Rating     *int                `json:"rating" binding:"omitempty,min=1,max=5"`
}

type visitStatusRequest struct {
	Status   models.VisitStatus `json:"status" binding:"required,oneof=requested confirmed completed cancelled no_show"`
	Feedback *string            `json:"feedback"`
	Rating   *int               `json:"rating" binding:"omitempty,min=1,max=5"`
}

// ListVisits returns a filtered page of visits in calendar order
func (h *CalendarHandler) ListVisits(c *gin.Context) {
	q := newQueryParser(c)
	f := database.VisitFilter{
		PropertyID: q.Uint("property_id"),
		ClientID:   q.Uint("client_id"),
		AgentID:    q.Uint("agent_id"),
		Status:     q.OneOf("status", "requested", "confirmed", "completed", "cancelled", "no_show"),
		From:       q.Time("from"),
		To:         q.Time("to"),
	}
	if !q.Done() {
		return
	}

	page := parsePage(c)
	visits, total, err := h.db.ListVisits(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, visits, total, page)
}

// GetVisit returns a single visit
func (h *CalendarHandler) GetVisit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	visit, err := h.db.GetVisit(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// Conflicts lists confirmed visits overlapping a proposed slot
func (h *CalendarHandler) Conflicts(c *gin.Context) {
	q := newQueryParser(c)
	propertyID := q.Uint("property_id")
	agentID := q.Uint("agent_id")
	start := q.Time("start_time")
	end := q.Time("end_time")
	exclude := q.Uint("exclude_id")
	if !q.Done() {
		return
	}

	switch {
	case propertyID == nil:
		respondFieldError(c, "property_id", "is required")
		return
	case start == nil:
		respondFieldError(c, "start_time", "is required")
		return
	case end == nil:
		respondFieldError(c, "end_time", "is required")
		return
	case !end.After(*start):
		respondFieldError(c, "end_time", "must be after start_time")
		return
	}

	cq := database.ConflictQuery{
		PropertyID: *propertyID,
		AgentID:    agentID,
		Start:      *start,
		End:        *end,
	}
	if exclude != nil {
		cq.ExcludeID = *exclude
	}

	conflicts, err := h.db.FindConflicts(cq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_conflict": len(conflicts) > 0, "conflicts": conflicts})
}

// CreateVisit books a visit. The caller is the agent unless one is given.
func (h *CalendarHandler) CreateVisit(c *gin.Context) {
	var req visitRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := bodyTime(c, "start_time", req.StartTime)
	if !ok {
		return
	}
	end, ok := bodyTime(c, "end_time", req.EndTime)
	if !ok {
		return
	}
	if !end.After(start) {
		respondFieldError(c, "end_time", "must be after start_time")
		return
	}

	visit := &models.PropertyVisit{
		PropertyID: req.PropertyID,
		ClientID:   req.ClientID,
		AgentID:    req.AgentID,
		StartTime:  start,
		EndTime:    end,
		Status:     req.Status,
		Notes:      req.Notes,
	}
	if visit.AgentID == nil {
		visit.AgentID = middleware.CurrentUserID(c)
	}

	if err := h.db.CreateVisit(visit); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, visit)
}

// UpdateVisit edits a visit, re-checking the calendar when it moves
func (h *CalendarHandler) UpdateVisit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req visitUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.StartTime != nil {
		t, ok := bodyTime(c, "start_time", *req.StartTime)
		if !ok {
			return
		}
		updates["start_time"] = t
	}
	if req.EndTime != nil {
		t, ok := bodyTime(c, "end_time", *req.EndTime)
		if !ok {
			return
		}
		updates["end_time"] = t
	}
	if req.PropertyID != nil {
		updates["property_id"] = *req.PropertyID
	}
	if req.ClientID != nil {
		updates["client_id"] = *req.ClientID
	}
	if req.AgentID != nil {
		updates["agent_id"] = *req.AgentID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Feedback != nil {
		updates["feedback"] = *req.Feedback
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	visit, err := h.db.UpdateVisit(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// UpdateVisitStatus moves a visit through its lifecycle
func (h *CalendarHandler) UpdateVisitStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req visitStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	visit, err := h.db.UpdateVisitStatus(id, req.Status, req.Feedback, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// DeleteVisit removes a visit
func (h *CalendarHandler) DeleteVisit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteVisit(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visit deleted"})
}
