package search

import (
	"errors"
	"testing"
	"time"

	"real-estate-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	err     error
	calls   int
	indexed []uint
}

func (f *fakeEngine) IndexProperty(p *models.Property) error {
	f.calls++
	if f.err == nil {
		f.indexed = append(f.indexed, p.ID)
	}
	return f.err
}

func (f *fakeEngine) DeleteProperty(id uint) error {
	f.calls++
	return f.err
}

func (f *fakeEngine) FilterSearch(params FilterParams) ([]models.Property, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.Property{{ID: 1, Title: params.Query}}, nil
}

func TestBreaker_PassesThroughWhenHealthy(t *testing.T) {
	engine := &fakeEngine{}
	b := NewBreaker(engine, 3, time.Minute)

	res, err := b.FilterSearch(FilterParams{Query: "loft"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "loft", res[0].Title)

	require.NoError(t, b.IndexProperty(&models.Property{ID: 7}))
	assert.Equal(t, []uint{7}, engine.indexed)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	engine := &fakeEngine{err: errors.New("connection refused")}
	b := NewBreaker(engine, 2, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	_, err := b.FilterSearch(FilterParams{})
	assert.EqualError(t, err, "connection refused")
	_, err = b.FilterSearch(FilterParams{})
	assert.EqualError(t, err, "connection refused")

	isOpen, failures, _ := b.Status()
	assert.True(t, isOpen)
	assert.Equal(t, 2, failures)

	// Open: the engine is not called at all
	_, err = b.FilterSearch(FilterParams{})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Equal(t, 2, engine.calls)
}

func TestBreaker_HalfOpensAfterTimeout(t *testing.T) {
	engine := &fakeEngine{err: errors.New("timeout")}
	b := NewBreaker(engine, 1, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	assert.Error(t, b.DeleteProperty(1))
	assert.ErrorIs(t, b.DeleteProperty(1), ErrEngineUnavailable)

	now = now.Add(2 * time.Minute)
	engine.err = nil
	assert.NoError(t, b.DeleteProperty(1))

	isOpen, failures, total := b.Status()
	assert.False(t, isOpen)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 1, total)
}

func TestBreaker_BulkIndexRequiresSupport(t *testing.T) {
	b := NewBreaker(&fakeEngine{}, 3, time.Minute)
	assert.Error(t, b.IndexProperties([]models.Property{{ID: 1}}))
}
