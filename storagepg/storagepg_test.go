package storagepg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/value"
)

func TestTopicDataRowTableName(t *testing.T) {
	assert.Equal(t, "topic_data", topicDataRow{}.TableName())
}

func TestRowToValueDecodesDataAndInjectsID(t *testing.T) {
	row := topicDataRow{
		ID:         "row-1",
		TopicCode:  "orders",
		TenantID:   "tenant-a",
		Data:       `{"amount":"12.50","status":"open"}`,
		Version:    3,
		InsertTime: time.Now(),
		UpdateTime: time.Now(),
	}

	v, err := rowToValue(row)
	require.NoError(t, err)
	assert.Equal(t, value.KindMap, v.Kind())

	fields := v.AsMap()
	assert.Equal(t, "row-1", fields[collab.ColumnID].AsString())
	assert.Equal(t, "open", fields["status"].AsString())
}

func TestRecordIDReadsReservedField(t *testing.T) {
	record := value.Map(map[string]value.Value{
		collab.ColumnID: value.String("row-9"),
		"status":        value.String("open"),
	})

	id, ok := recordID(record)
	require.True(t, ok)
	assert.Equal(t, "row-9", id)
}

func TestRecordIDAbsentWhenNotYetPersisted(t *testing.T) {
	record := value.Map(map[string]value.Value{"status": value.String("open")})

	_, ok := recordID(record)
	assert.False(t, ok)
}

func TestRecordIDRejectsBlankID(t *testing.T) {
	record := value.Map(map[string]value.Value{collab.ColumnID: value.String("")})

	_, ok := recordID(record)
	assert.False(t, ok)
}

func TestWithoutReservedStripsIDField(t *testing.T) {
	record := value.Map(map[string]value.Value{
		collab.ColumnID: value.String("row-1"),
		"status":        value.String("open"),
	})

	stripped := withoutReserved(record)
	_, hasID := stripped.AsMap()[collab.ColumnID]
	assert.False(t, hasID)
	assert.Equal(t, "open", stripped.AsMap()["status"].AsString())
}

func TestWithoutReservedPassesThroughNonMapValues(t *testing.T) {
	v := value.String("plain")
	assert.Equal(t, v, withoutReserved(v))
}

func TestStoreSatisfiesCollabStorage(t *testing.T) {
	var _ collab.Storage = (*Store)(nil)
}
