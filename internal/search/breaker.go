package search

import (
	"errors"
	"sync"
	"time"

	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/models"
)

// ErrEngineUnavailable is returned while the breaker is open
var ErrEngineUnavailable = errors.New("search engine unavailable")

// Breaker stops calling a failing engine for a cooling period so requests
// fall back to SQL without waiting on timeouts
type Breaker struct {
	engine           Engine
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time

	mutex               sync.Mutex
	failures            int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time
}

// NewBreaker wraps engine. The breaker opens after failureThreshold
// consecutive failures, or once 40% of at least 20 calls have failed.
func NewBreaker(engine Engine, failureThreshold int, resetTimeout time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Breaker{
		engine:           engine,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

func (b *Breaker) IndexProperty(p *models.Property) error {
	return b.call(func() error { return b.engine.IndexProperty(p) })
}

func (b *Breaker) DeleteProperty(id uint) error {
	return b.call(func() error { return b.engine.DeleteProperty(id) })
}

func (b *Breaker) FilterSearch(params FilterParams) ([]models.Property, error) {
	var out []models.Property
	err := b.call(func() error {
		var err error
		out, err = b.engine.FilterSearch(params)
		return err
	})
	return out, err
}

// IndexProperties delegates bulk indexing when the wrapped engine supports it
func (b *Breaker) IndexProperties(properties []models.Property) error {
	bulk, ok := b.engine.(interface {
		IndexProperties([]models.Property) error
	})
	if !ok {
		return errors.New("engine does not support bulk indexing")
	}
	return b.call(func() error { return bulk.IndexProperties(properties) })
}

// Status reports whether the breaker is open and its failure counters
func (b *Breaker) Status() (isOpen bool, failures int, total int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.isOpen, b.failures, b.totalRequests
}

func (b *Breaker) call(fn func() error) error {
	if !b.canProceed() {
		return ErrEngineUnavailable
	}
	if err := fn(); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordSuccess() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.totalRequests++
	b.consecutiveFailures = 0
}

func (b *Breaker) recordFailure() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.failures++
	b.consecutiveFailures++
	b.totalRequests++
	b.lastFailureTime = b.now()

	if b.isOpen {
		return
	}
	if b.consecutiveFailures >= b.failureThreshold {
		b.isOpen = true
		logger.Component("search").Warnf("Circuit open after %d consecutive failures, retrying in %v",
			b.consecutiveFailures, b.resetTimeout)
		return
	}

	if b.totalRequests >= 20 {
		rate := float64(b.failures) / float64(b.totalRequests)
		if rate >= 0.40 {
			b.isOpen = true
			logger.Component("search").Warnf("Circuit open at %.1f%% failure rate (%d/%d), retrying in %v",
				rate*100, b.failures, b.totalRequests, b.resetTimeout)
		}
	}
}

// canProceed lets one probe through once the reset timeout has passed
func (b *Breaker) canProceed() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.isOpen {
		return true
	}
	if b.now().Sub(b.lastFailureTime) > b.resetTimeout {
		b.isOpen = false
		b.failures = 0
		b.totalRequests = 0
		b.consecutiveFailures = 0
		return true
	}
	return false
}
