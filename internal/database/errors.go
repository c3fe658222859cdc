package database

import (
	"errors"
	"fmt"

	"real-estate-crm/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already in use")
	ErrLastAdmin       = errors.New("cannot delete the last admin")
	ErrLastActiveAdmin = errors.New("cannot remove the last active admin")
	ErrSelfDelete      = errors.New("cannot delete your own account")
	ErrVisitConflict   = errors.New("scheduling conflict")
	ErrContractOverlap = errors.New("an active contract already covers these dates")
	ErrPropertyInUse   = errors.New("property has an active rental contract")
	ErrClientInUse     = errors.New("client is party to an active rental contract")
	ErrInvalidState    = errors.New("invalid state")
)

// NotFoundError names the missing entity so callers can report it
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// lookupErr converts gorm's miss into a NotFoundError for entity
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return err
}

// ConflictError carries the confirmed visits that overlap a requested slot
type ConflictError struct {
	Conflicts []models.PropertyVisit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict with %d visit(s)", len(e.Conflicts))
}

// Is lets errors.Is(err, ErrVisitConflict) match
func (e *ConflictError) Is(target error) bool {
	return target == ErrVisitConflict
}

// StateError is a rule violation with a caller-facing message
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidState) match
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState(format string, args ...interface{}) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}
