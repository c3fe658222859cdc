package handlers

import (
	"net/http"
	"time"

	"real-estate-crm/internal/alerts"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/export"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"

	"github.com/gin-gonic/gin"
)

// RentalHandler handles contracts, payments, contract documents and alerts
type RentalHandler struct {
	db       *database.GormDB
	alerts   *alerts.Service
	alertCfg alerts.Config
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(db *database.GormDB, alertSvc *alerts.Service, alertCfg alerts.Config) *RentalHandler {
	return &RentalHandler{db: db, alerts: alertSvc, alertCfg: alertCfg}
}

type contractRequest struct {
	PropertyID  uint                  `json:"property_id" binding:"required"`
	TenantID    uint                  `json:"tenant_id" binding:"required"`
	LandlordID  *uint                 `json:"landlord_id"`
	StartDate   string                `json:"start_date" binding:"required"`
	EndDate     string                `json:"end_date" binding:"required"`
	MonthlyRent float64               `json:"monthly_rent" binding:"gt=0"`
	Deposit     float64               `json:"deposit" binding:"gte=0"`
	PaymentDay  int                   `json:"payment_day" binding:"omitempty,min=1,max=28"`
	Status      models.ContractStatus `json:"status" binding:"omitempty,oneof=draft active terminated expired"`
	Notes       string                `json:"notes"`
}

type contractUpdateRequest struct {
	PropertyID  *uint                  `json:"property_id" binding:"omitempty,min=1"`
	TenantID    *uint                  `json:"tenant_id" binding:"omitempty,min=1"`
	LandlordID  *uint                  `json:"landlord_id"`
	StartDate   *string                `json:"start_date"`
	EndDate     *string                `json:"end_date"`
	MonthlyRent *float64               `json:"monthly_rent" binding:"omitempty,gt=0"`
	Deposit     *float64               `json:"deposit" binding:"omitempty,gte=0"`
	PaymentDay  *int                   `json:"payment_day" binding:"omitempty,min=1,max=28"`
	Status      *models.ContractStatus `json:"status" binding:"omitempty,oneof=draft active terminated expired"`
	Notes       *string                `json:"notes"`
}

type paymentRequest struct {
	ContractID uint                 `json:"contract_id" binding:"required"`
	DueDate    string               `json:"due_date" binding:"required"`
	Amount     float64              `json:"amount" binding:"gt=0"`
	Status     models.PaymentStatus `json:"status" binding:"omitempty,oneof=pending paid partial late cancelled"`
	Method     string               `json:"method" binding:"max=30"`
	Reference  string               `json:"reference" binding:"max=100"`
	Notes      string               `json:"notes"`
}

type paymentUpdateRequest struct {
	DueDate   *string               `json:"due_date"`
	Amount    *float64              `json:"amount" binding:"omitempty,gt=0"`
	Status    *models.PaymentStatus `json:"status" binding:"omitempty,oneof=pending paid partial late cancelled"`
	Method    *string               `json:"method" binding:"omitempty,max=30"`
	Reference *string               `json:"reference" binding:"omitempty,max=100"`
	Notes     *string               `json:"notes"`
}

type payRequest struct {
	Amount    float64 `json:"amount" binding:"gt=0"`
	Method    string  `json:"method" binding:"max=30"`
	Reference string  `json:"reference" binding:"max=100"`
	PaidAt    *string `json:"paid_at"`
}

type rentalDocumentRequest struct {
	Name    string               `json:"name" binding:"required,max=255"`
	DocType models.RentalDocType `json:"doc_type" binding:"omitempty,oneof=lease inventory identity insurance other"`
	FileURL string               `json:"file_url" binding:"required,url,max=1000"`
}

// ListContracts returns a filtered page of contracts
func (h *RentalHandler) ListContracts(c *gin.Context) {
	q := newQueryParser(c)
	f := database.ContractFilter{
		Status:     q.OneOf("status", "draft", "active", "terminated", "expired"),
		PropertyID: q.Uint("property_id"),
		TenantID:   q.Uint("tenant_id"),
	}
	if !q.Done() {
		return
	}

	page := parsePage(c)
	contracts, total, err := h.db.ListContracts(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, contracts, total, page)
}

// GetContract returns a contract with payments and documents
func (h *RentalHandler) GetContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contract, err := h.db.GetContract(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// CreateContract signs a new lease
func (h *RentalHandler) CreateContract(c *gin.Context) {
	var req contractRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := bodyTime(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	end, ok := bodyTime(c, "end_date", req.EndDate)
	if !ok {
		return
	}
	if !end.After(start) {
		respondFieldError(c, "end_date", "must be after start_date")
		return
	}

	contract := &models.RentalContract{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		LandlordID:  req.LandlordID,
		StartDate:   start,
		EndDate:     end,
		MonthlyRent: req.MonthlyRent,
		Deposit:     req.Deposit,
		PaymentDay:  req.PaymentDay,
		Status:      req.Status,
		Notes:       req.Notes,
	}
	if contract.PaymentDay == 0 {
		contract.PaymentDay = 1
	}

	if err := h.db.CreateContract(contract); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// UpdateContract edits a contract
func (h *RentalHandler) UpdateContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req contractUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.StartDate != nil {
		t, ok := bodyTime(c, "start_date", *req.StartDate)
		if !ok {
			return
		}
		updates["start_date"] = t
	}
	if req.EndDate != nil {
		t, ok := bodyTime(c, "end_date", *req.EndDate)
		if !ok {
			return
		}
		updates["end_date"] = t
	}
	if req.PropertyID != nil {
		updates["property_id"] = *req.PropertyID
	}
	if req.TenantID != nil {
		updates["tenant_id"] = *req.TenantID
	}
	if req.LandlordID != nil {
		updates["landlord_id"] = *req.LandlordID
	}
	if req.MonthlyRent != nil {
		updates["monthly_rent"] = *req.MonthlyRent
	}
	if req.Deposit != nil {
		updates["deposit"] = *req.Deposit
	}
	if req.PaymentDay != nil {
		updates["payment_day"] = *req.PaymentDay
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	contract, err := h.db.UpdateContract(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// DeleteContract removes a contract with its payments, documents and alerts
func (h *RentalHandler) DeleteContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteContract(id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// GeneratePayments fills in the monthly payment schedule of a contract
func (h *RentalHandler) GeneratePayments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	created, err := h.db.GeneratePayments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(created), "items": created})
}

func (h *RentalHandler) paymentFilter(c *gin.Context) (database.PaymentFilter, bool) {
	q := newQueryParser(c)
	f := database.PaymentFilter{
		Status:     q.OneOf("status", "pending", "paid", "partial", "late", "cancelled"),
		ContractID: q.Uint("contract_id"),
		From:       q.Time("from"),
		To:         q.Time("to"),
	}
	return f, q.Done()
}

// ListPayments returns a filtered page of payments
func (h *RentalHandler) ListPayments(c *gin.Context) {
	f, ok := h.paymentFilter(c)
	if !ok {
		return
	}
	page := parsePage(c)
	payments, total, err := h.db.ListPayments(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, payments, total, page)
}

// CreatePayment adds a one-off payment to a contract
func (h *RentalHandler) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	due, ok := bodyTime(c, "due_date", req.DueDate)
	if !ok {
		return
	}

	payment := &models.RentalPayment{
		ContractID: req.ContractID,
		DueDate:    database.DateOnly(due),
		Amount:     req.Amount,
		Status:     req.Status,
		Method:     req.Method,
		Reference:  req.Reference,
		Notes:      req.Notes,
	}
	if err := h.db.CreatePayment(payment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// UpdatePayment edits a payment
func (h *RentalHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req paymentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.DueDate != nil {
		t, ok := bodyTime(c, "due_date", *req.DueDate)
		if !ok {
			return
		}
		updates["due_date"] = database.DateOnly(t)
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Method != nil {
		updates["method"] = *req.Method
	}
	if req.Reference != nil {
		updates["reference"] = *req.Reference
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	payment, err := h.db.UpdatePayment(id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// RecordPayment registers money received against a payment
func (h *RentalHandler) RecordPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req payRequest
	if !bindJSON(c, &req) {
		return
	}

	paidAt := time.Now().UTC()
	if at, ok := optionalBodyTime(c, "paid_at", req.PaidAt); !ok {
		return
	} else if at != nil {
		paidAt = *at
	}

	payment, err := h.db.RecordPayment(id, database.PaymentReceipt{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    paidAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment removes a payment
func (h *RentalHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeletePayment(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted"})
}

// ExportPayments streams the filtered payment list as an xlsx workbook
func (h *RentalHandler) ExportPayments(c *gin.Context) {
	f, ok := h.paymentFilter(c)
	if !ok {
		return
	}
	payments, err := h.db.ExportPayments(f)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := export.Payments(payments)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, export.Filename("payments", time.Now()), data)
}

// ListDocuments returns the documents of a contract
func (h *RentalHandler) ListDocuments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	docs, err := h.db.ListContractDocuments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": docs, "total": len(docs)})
}

// CreateDocument attaches a document to a contract
func (h *RentalHandler) CreateDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req rentalDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	doc := &models.RentalDocument{
		ContractID: id,
		Name:       req.Name,
		DocType:    req.DocType,
		FileURL:    req.FileURL,
		UploadedBy: middleware.CurrentUserID(c),
	}
	if doc.DocType == "" {
		doc.DocType = models.RentalDocOther
	}
	if err := h.db.CreateContractDocument(doc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DeleteDocument removes a contract document
func (h *RentalHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteContractDocument(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// ListAlerts returns a filtered page of alerts
func (h *RentalHandler) ListAlerts(c *gin.Context) {
	q := newQueryParser(c)
	f := database.AlertFilter{
		IsRead: q.Bool("is_read"),
		Type:   q.OneOf("type", "payment_due", "payment_overdue", "contract_expiring", "contract_expired"),
	}
	if !q.Done() {
		return
	}

	page := parsePage(c)
	items, total, err := h.db.ListAlerts(f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, total, page)
}

// MarkAlertRead flags an alert as read
func (h *RentalHandler) MarkAlertRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	alert, err := h.db.MarkAlertRead(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// GenerateAlerts runs the alert generator synchronously
func (h *RentalHandler) GenerateAlerts(c *gin.Context) {
	result, err := h.alerts.Generate(h.alertCfg, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
