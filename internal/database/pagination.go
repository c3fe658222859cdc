package database

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is a limit/offset window over a listing
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPage clamps limit into [1, MaxLimit] and offset to >= 0
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// paginate counts the filtered rows and fetches one page of them.
// q must carry a Model so Count knows the table.
func paginate[T any](q *gorm.DB, page Page, order string) ([]T, int64, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}
	if err := q.Order(order).Offset(page.Offset).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// likeEscaper escapes LIKE wildcards with '!', which every dialect accepts
// as an ESCAPE character. Queries using likePattern must add ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern matches q as a literal substring
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
