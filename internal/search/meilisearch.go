package search

import (
	"strconv"
	"time"

	"real-estate-crm/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

// Engine mirrors properties into a full-text index
type Engine interface {
	IndexProperty(p *models.Property) error
	DeleteProperty(id uint) error
	FilterSearch(params FilterParams) ([]models.Property, error)
}

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    host,
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	})

	if index == "" {
		index = "properties"
	}
	return &SearchClient{
		client: client,
		index:  index,
	}
}

// propertyDocument is the indexed shape of a property
type propertyDocument struct {
	ID              uint     `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Type            string   `json:"type"`
	TransactionType string   `json:"transaction_type"`
	Status          string   `json:"status"`
	Price           float64  `json:"price"`
	Area            *float64 `json:"area,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	Bathrooms       *int     `json:"bathrooms,omitempty"`
	Address         string   `json:"address,omitempty"`
	City            string   `json:"city,omitempty"`
	PostalCode      string   `json:"postal_code,omitempty"`
	AgentID         *uint    `json:"agent_id,omitempty"`
	CreatedAt       int64    `json:"created_at"`
}

func toDocument(p *models.Property) propertyDocument {
	return propertyDocument{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Type:            string(p.Type),
		TransactionType: string(p.TransactionType),
		Status:          string(p.Status),
		Price:           p.Price,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Address:         p.Address,
		City:            p.City,
		PostalCode:      p.PostalCode,
		AgentID:         p.AgentID,
		CreatedAt:       p.CreatedAt.Unix(),
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Creation is queued; an existing index makes the task fail, not the call
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	}); err != nil {
		return err
	}

	// Configure searchable attributes
	_, err := s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"address",
		"city",
		"postal_code",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"status",
		"type",
		"transaction_type",
		"city",
		"price",
		"bedrooms",
		"agent_id",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"area",
		"created_at",
	})
	return err
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]propertyDocument{toDocument(property)}, "id")
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]propertyDocument, 0, len(properties))
	for i := range properties {
		docs = append(docs, toDocument(&properties[i]))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs, "id")
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// Healthy reports whether the Meilisearch server answers
func (s *SearchClient) Healthy() bool {
	return s.client.IsHealthy()
}
