package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// alwaysTrue is a minimal cond.Condition that matches every row, so these
// tests can exercise ReadRow/Exists without building a parsed expression
// tree.
type alwaysTrue struct{}

func (alwaysTrue) IsTrue(f *memview.Frame) (bool, error)  { return true, nil }
func (alwaysTrue) IsFalse(f *memview.Frame) (bool, error) { return false, nil }

func ordersTopic() *schema.Topic {
	return &schema.Topic{
		ID:   "topic-orders",
		Code: "orders",
		Kind: schema.TopicKindBusiness,
		Factors: []schema.Factor{
			{ID: "f-amount", Name: "amount", Kind: value.KindNumber},
		},
	}
}

func TestCatalogLookupsByIDAndCode(t *testing.T) {
	topic := ordersTopic()
	pipeline := &schema.Pipeline{ID: "p1", TopicID: topic.ID, TriggerType: schema.TriggerInsert}
	catalog := NewCatalog([]*schema.Topic{topic}, []*schema.Pipeline{pipeline})

	got, ok, err := catalog.TopicByCode("t1", "orders")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, topic.ID, got.ID)

	bound, err := catalog.PipelinesBoundTo("t1", topic.ID, schema.TriggerInsert)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, "p1", bound[0].ID)
}

func TestStorageInsertThenReadRow(t *testing.T) {
	topic := ordersTopic()
	s := NewStorage()

	inserted, err := s.Insert(context.Background(), topic, value.Map(map[string]value.Value{"amount": value.NumberFromInt(5)}))
	require.NoError(t, err)
	id := inserted.AsMap()[collab.ColumnID].AsString()
	require.NotEmpty(t, id)

	row, ok, err := s.ReadRow(context.Background(), topic, alwaysTrue{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, row.AsMap()[collab.ColumnID].AsString())
}

func TestStorageMergeRequiresID(t *testing.T) {
	topic := ordersTopic()
	s := NewStorage()

	_, _, err := s.Merge(context.Background(), topic, value.Map(map[string]value.Value{"amount": value.NumberFromInt(1)}))
	require.Error(t, err)
}

func TestStorageInsertOrMergeInsertsWithoutID(t *testing.T) {
	topic := ordersTopic()
	s := NewStorage()

	previous, current, err := s.InsertOrMerge(context.Background(), topic, value.Map(map[string]value.Value{"amount": value.NumberFromInt(1)}))
	require.NoError(t, err)
	assert.Nil(t, previous)
	assert.NotEmpty(t, current.AsMap()[collab.ColumnID].AsString())
}

func TestStorageDeleteRemovesRow(t *testing.T) {
	topic := ordersTopic()
	s := NewStorage()

	inserted, err := s.Insert(context.Background(), topic, value.Map(map[string]value.Value{"amount": value.NumberFromInt(1)}))
	require.NoError(t, err)

	_, err = s.Delete(context.Background(), topic, inserted)
	require.NoError(t, err)

	ok, err := s.Exists(context.Background(), topic, alwaysTrue{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAlarmCollectsSentMessages(t *testing.T) {
	a := NewAlarm()
	require.NoError(t, a.Send(context.Background(), collab.AlarmCritical, "disk full"))
	require.Len(t, a.Sent, 1)
	assert.Equal(t, "disk full", a.Sent[0].Message)
}
