package schema

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
)

// Catalog is the narrow contract the compiler needs from the topic/pipeline
// schema store: look up a topic by id or by its stable code, a pipeline by
// id, and every pipeline bound to a given topic and trigger type — each
// scoped to a tenant, since two tenants may define topics under the same
// code. Concrete stores live in other packages (storetest.Catalog is an
// in-memory one).
type Catalog interface {
	TopicByID(tenantID, topicID string) (*Topic, bool, error)
	TopicByCode(tenantID, code string) (*Topic, bool, error)
	Pipeline(tenantID, pipelineID string) (*Pipeline, bool, error)
	PipelinesBoundTo(tenantID, topicID string, trigger TriggerType) ([]*Pipeline, error)
}

// cacheKey identifies a tenant-scoped lookup for the LRU cache.
type cacheKey struct {
	tenantID string
	key      string
}

// CachedCatalog wraps a Catalog with an LRU cache over TopicByID/TopicByCode
// lookups, since the compiler re-resolves the same handful of topic schemas
// across every pipeline it compiles in a batch.
type CachedCatalog struct {
	inner Catalog
	cache *lru.Cache[cacheKey, *Topic]
}

// NewCachedCatalog wraps inner with an LRU topic cache of the given size.
func NewCachedCatalog(inner Catalog, size int) (*CachedCatalog, error) {
	cache, err := lru.New[cacheKey, *Topic](size)
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	return &CachedCatalog{inner: inner, cache: cache}, nil
}

func (c *CachedCatalog) TopicByID(tenantID, topicID string) (*Topic, bool, error) {
	k := cacheKey{tenantID, "id:" + topicID}
	if t, ok := c.cache.Get(k); ok {
		return t, true, nil
	}
	t, ok, err := c.inner.TopicByID(tenantID, topicID)
	if err != nil || !ok {
		return nil, ok, err
	}
	c.cache.Add(k, t)
	return t, true, nil
}

func (c *CachedCatalog) TopicByCode(tenantID, code string) (*Topic, bool, error) {
	k := cacheKey{tenantID, "code:" + code}
	if t, ok := c.cache.Get(k); ok {
		return t, true, nil
	}
	t, ok, err := c.inner.TopicByCode(tenantID, code)
	if err != nil || !ok {
		return nil, ok, err
	}
	c.cache.Add(k, t)
	return t, true, nil
}

func (c *CachedCatalog) Pipeline(tenantID, pipelineID string) (*Pipeline, bool, error) {
	return c.inner.Pipeline(tenantID, pipelineID)
}

func (c *CachedCatalog) PipelinesBoundTo(tenantID, topicID string, trigger TriggerType) ([]*Pipeline, error) {
	return c.inner.PipelinesBoundTo(tenantID, topicID, trigger)
}
