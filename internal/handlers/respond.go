package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"real-estate-crm/internal/database"
	"real-estate-crm/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 400 validation response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report json keys, not Go names
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name == "" {
					return fld.Name
				}
				return name
			})
		}
	})
}

// bindJSON decodes and validates the body, writing the 400 itself on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}

func respondValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": out})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		respondFieldError(c, typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.Kind()))
		return
	}
	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		respondFieldError(c, "body", "dates must be RFC 3339 timestamps")
		return
	}
	respondFieldError(c, "body", "Invalid JSON body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func respondFieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{{Field: field, Message: message}}})
}

// respondError maps database errors onto HTTP statuses. Anything unknown is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var nf *database.NotFoundError
	var conflict *database.ConflictError
	var state *database.StateError

	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Scheduling conflict",
			"conflicts": conflict.Conflicts,
		})
	case errors.Is(err, database.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A record with this email already exists"})
	case errors.Is(err, database.ErrLastAdmin):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete the last admin"})
	case errors.Is(err, database.ErrLastActiveAdmin):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove the last active admin"})
	case errors.Is(err, database.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
	case errors.As(err, &state):
		c.JSON(http.StatusBadRequest, gin.H{"error": state.Message})
	case errors.Is(err, database.ErrContractOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": "The property already has an active contract for these dates"})
	case errors.Is(err, database.ErrPropertyInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Property has an active rental contract"})
	case errors.Is(err, database.ErrClientInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Client is party to an active rental contract"})
	default:
		_ = c.Error(err)
		logger.Component("handlers").WithError(err).
			WithField("path", c.FullPath()).
			Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseID reads a positive integer path parameter, writing the 400 itself
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func parsePage(c *gin.Context) database.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return database.NewPage(limit, offset)
}

func respondList(c *gin.Context, items interface{}, total int64, page database.Page) {
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// queryParser collects typed query parameters and remembers the first
// malformed one
type queryParser struct {
	c   *gin.Context
	bad *FieldError
}

func newQueryParser(c *gin.Context) *queryParser {
	return &queryParser{c: c}
}

func (q *queryParser) fail(field, msg string) {
	if q.bad == nil {
		q.bad = &FieldError{Field: field, Message: msg}
	}
}

func (q *queryParser) Uint(name string) *uint {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		q.fail(name, "must be a positive integer")
		return nil
	}
	u := uint(v)
	return &u
}

func (q *queryParser) Int(name string) *int {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "must be an integer")
		return nil
	}
	return &v
}

func (q *queryParser) Float(name string) *float64 {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, "must be a number")
		return nil
	}
	return &v
}

func (q *queryParser) Bool(name string) *bool {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, "must be true or false")
		return nil
	}
	return &v
}

func (q *queryParser) Time(name string) *time.Time {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := parseTime(raw)
	if err != nil {
		q.fail(name, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return nil
	}
	return &t
}

func (q *queryParser) OneOf(name string, allowed ...string) string {
	raw := q.c.Query(name)
	if raw == "" {
		return ""
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	q.fail(name, "must be one of: "+strings.Join(allowed, ", "))
	return ""
}

// Done writes the 400 for the first malformed parameter
func (q *queryParser) Done() bool {
	if q.bad != nil {
		q.c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{*q.bad}})
		return false
	}
	return true
}

// parseTime accepts a calendar date or an RFC 3339 timestamp and returns UTC
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// bodyTime parses a required date field of a request body
func bodyTime(c *gin.Context, field, raw string) (time.Time, bool) {
	t, err := parseTime(raw)
	if err != nil {
		respondFieldError(c, field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

// optionalBodyTime parses an optional date field; nil stays nil
func optionalBodyTime(c *gin.Context, field string, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, ok := bodyTime(c, field, *raw)
	if !ok {
		return nil, false
	}
	return &t, true
}
