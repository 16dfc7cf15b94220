package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/value"
)

func TestFactorByIDAndName(t *testing.T) {
	topic := &Topic{
		ID: "t1",
		Factors: []Factor{
			{ID: "f1", Name: "amount", Kind: value.KindNumber},
			{ID: "f2", Name: "order.status", Kind: value.KindString},
		},
	}
	f, ok := topic.FactorByID("f2")
	require.True(t, ok)
	assert.Equal(t, "order.status", f.Name)

	f, ok = topic.FactorByName("amount")
	require.True(t, ok)
	assert.Equal(t, "f1", f.ID)

	_, ok = topic.FactorByID("missing")
	assert.False(t, ok)
}

func TestSupportsTrigger(t *testing.T) {
	cases := []struct {
		kind TopicKind
		want bool
	}{
		{TopicKindSystem, true},
		{TopicKindBusiness, true},
		{TopicKindSynonym, false},
		{TopicKindRaw, false},
	}
	for _, c := range cases {
		topic := &Topic{Kind: c.kind}
		assert.Equal(t, c.want, topic.SupportsTrigger(), string(c.kind))
	}
}

type fakeCatalog struct {
	topics    map[string]*Topic // keyed by id
	byCode    map[string]*Topic
	pipelines map[string]*Pipeline
}

func (f *fakeCatalog) TopicByID(tenantID, id string) (*Topic, bool, error) {
	t, ok := f.topics[id]
	return t, ok, nil
}

func (f *fakeCatalog) TopicByCode(tenantID, code string) (*Topic, bool, error) {
	t, ok := f.byCode[code]
	return t, ok, nil
}

func (f *fakeCatalog) Pipeline(tenantID, id string) (*Pipeline, bool, error) {
	p, ok := f.pipelines[id]
	return p, ok, nil
}

func (f *fakeCatalog) PipelinesBoundTo(tenantID, topicID string, trigger TriggerType) ([]*Pipeline, error) {
	var out []*Pipeline
	for _, p := range f.pipelines {
		if p.TopicID == topicID && p.TriggerType == trigger {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCachedCatalogCachesTopicLookups(t *testing.T) {
	inner := &fakeCatalog{topics: map[string]*Topic{"t1": {ID: "t1", Name: "orders"}}}
	cached, err := NewCachedCatalog(inner, 8)
	require.NoError(t, err)

	t1, ok, err := cached.TopicByID("tenant-a", "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orders", t1.Name)

	delete(inner.topics, "t1")
	t1Again, ok, err := cached.TopicByID("tenant-a", "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orders", t1Again.Name)
}

func TestCachedCatalogMissPassesThrough(t *testing.T) {
	inner := &fakeCatalog{topics: map[string]*Topic{}}
	cached, err := NewCachedCatalog(inner, 8)
	require.NoError(t, err)

	_, ok, err := cached.TopicByID("tenant-a", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedCatalogTopicByCodeCachesSeparatelyFromByID(t *testing.T) {
	shared := &Topic{ID: "t1", Code: "orders-v1", Name: "orders"}
	inner := &fakeCatalog{
		topics: map[string]*Topic{"t1": shared},
		byCode: map[string]*Topic{"orders-v1": shared},
	}
	cached, err := NewCachedCatalog(inner, 8)
	require.NoError(t, err)

	byID, ok, err := cached.TopicByID("tenant-a", "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "orders", byID.Name)

	delete(inner.byCode, "orders-v1")
	_, ok, err = cached.TopicByCode("tenant-a", "orders-v1")
	require.NoError(t, err)
	assert.False(t, ok, "byCode lookup must miss its own cache slot, not reuse the byID entry")
}

func TestCachedCatalogPipelinesBoundTo(t *testing.T) {
	inner := &fakeCatalog{pipelines: map[string]*Pipeline{
		"p1": {ID: "p1", TopicID: "t1", TriggerType: TriggerInsert},
		"p2": {ID: "p2", TopicID: "t1", TriggerType: TriggerDelete},
	}}
	cached, err := NewCachedCatalog(inner, 8)
	require.NoError(t, err)

	bound, err := cached.PipelinesBoundTo("tenant-a", "t1", TriggerInsert)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, "p1", bound[0].ID)
}
