package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"real-estate-crm/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query           string
	Status          string
	Type            string
	TransactionType string
	City            string
	MinPrice        *float64
	MaxPrice        *float64
	MinBedrooms     *int
	SortBy          string
	Limit           int64
}

// BuildFilter turns the params into a Meilisearch filter expression
func BuildFilter(params FilterParams) string {
	var filters []string

	for _, f := range []struct{ attr, value string }{
		{"status", params.Status},
		{"type", params.Type},
		{"transaction_type", params.TransactionType},
		{"city", params.City},
	} {
		if f.value != "" {
			filters = append(filters, fmt.Sprintf("%s = %s", f.attr, quote(f.value)))
		}
	}

	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, "price >= "+formatNumber(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, "price <= "+formatNumber(*params.MaxPrice))
	}

	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	return strings.Join(filters, " AND ")
}

// sortFor maps the API sort names onto sortable attributes
func sortFor(sortBy string) []string {
	switch sortBy {
	case "price_asc":
		return []string{"price:asc"}
	case "price_desc":
		return []string{"price:desc"}
	case "area_desc":
		return []string{"area:desc"}
	case "newest":
		return []string{"created_at:desc"}
	}
	return nil
}

// FilterSearch performs full-text search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Property, error) {
	// Default limit
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filterStr := BuildFilter(params); filterStr != "" {
		searchReq.Filter = filterStr
	}
	if sort := sortFor(params.SortBy); len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	// Convert hits to properties
	properties := make([]models.Property, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var doc propertyDocument
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}

		properties = append(properties, fromDocument(doc))
	}

	return properties, nil
}

func fromDocument(doc propertyDocument) models.Property {
	return models.Property{
		ID:              doc.ID,
		Title:           doc.Title,
		Description:     doc.Description,
		Type:            models.PropertyType(doc.Type),
		TransactionType: models.TransactionType(doc.TransactionType),
		Status:          models.PropertyStatus(doc.Status),
		Price:           doc.Price,
		Area:            doc.Area,
		Bedrooms:        doc.Bedrooms,
		Bathrooms:       doc.Bathrooms,
		Address:         doc.Address,
		City:            doc.City,
		PostalCode:      doc.PostalCode,
		AgentID:         doc.AgentID,
	}
}

// quote wraps a value for a filter expression, escaping embedded quotes
func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
