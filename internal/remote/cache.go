package remote

import (
	"context"
	"sync"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

// DefaultMetaTTL is how long cached categories and topics stay fresh.
const DefaultMetaTTL = 5 * time.Minute

// MetaCache is the explicit, timestamped cache of remote taxonomy metadata.
// It is owned by the orchestration context and handed to both the payload
// builder and the backlink resolver, so one publish invocation observes a
// single consistent snapshot instead of implicit process-global state.
//
// Refresh is lazy on read; Invalidate must be called on credential or
// profile change.
type MetaCache struct {
	client Client
	ttl    time.Duration

	mu         sync.Mutex
	categories []models.Category
	topics     []models.Topic
	fetchedAt  time.Time
}

// NewMetaCache wraps client with a TTL cache. ttl <= 0 uses DefaultMetaTTL.
func NewMetaCache(client Client, ttl time.Duration) *MetaCache {
	if ttl <= 0 {
		ttl = DefaultMetaTTL
	}
	return &MetaCache{client: client, ttl: ttl}
}

// Categories returns the cached category list, refreshing when stale.
func (m *MetaCache) Categories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return m.categories, nil
}

// Topics returns the cached topic list, refreshing when stale.
func (m *MetaCache) Topics(ctx context.Context) ([]models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return m.topics, nil
}

// Invalidate drops the cached snapshot so the next read refetches.
func (m *MetaCache) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = nil
	m.topics = nil
	m.fetchedAt = time.Time{}
}

func (m *MetaCache) refreshLocked(ctx context.Context) error {
	if !m.fetchedAt.IsZero() && time.Since(m.fetchedAt) < m.ttl {
		return nil
	}
	cats, err := m.client.Categories(ctx)
	if err != nil {
		return err
	}
	topics, err := m.client.Topics(ctx)
	if err != nil {
		return err
	}
	m.categories = cats
	m.topics = topics
	m.fetchedAt = time.Now()
	return nil
}
