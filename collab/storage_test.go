package collab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// fakeStorage is an in-process stand-in proving the Storage interface shape
// is usable from a caller's perspective; storagepg carries the real adapter.
type fakeStorage struct {
	rows []value.Value
}

func (f *fakeStorage) Insert(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	f.rows = append(f.rows, record)
	return record, nil
}

func (f *fakeStorage) InsertOrMerge(ctx context.Context, topic *schema.Topic, record value.Value) (*value.Value, value.Value, error) {
	return nil, record, nil
}

func (f *fakeStorage) Merge(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, value.Value, error) {
	return value.None, record, nil
}

func (f *fakeStorage) Delete(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	return record, nil
}

func (f *fakeStorage) ReadRow(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (value.Value, bool, error) {
	if len(f.rows) == 0 {
		return value.None, false, nil
	}
	return f.rows[0], true, nil
}

func (f *fakeStorage) ReadRows(ctx context.Context, topic *schema.Topic, criteria cond.Condition) ([]value.Value, error) {
	return f.rows, nil
}

func (f *fakeStorage) ReadFactor(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) (value.Value, bool, error) {
	return value.None, false, nil
}

func (f *fakeStorage) ReadFactors(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) ([]value.Value, error) {
	return nil, nil
}

func (f *fakeStorage) Exists(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (bool, error) {
	return len(f.rows) > 0, nil
}

func TestFakeStorageSatisfiesStorageInterface(t *testing.T) {
	var s Storage = &fakeStorage{}
	topic := &schema.Topic{ID: "t1"}

	record := value.String("hello")
	_, err := s.Insert(context.Background(), topic, record)
	require.NoError(t, err)

	exists, err := s.Exists(context.Background(), topic, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	rows, err := s.ReadRows(context.Background(), topic, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

type fakeAlarm struct {
	sent []string
}

func (f *fakeAlarm) Send(ctx context.Context, severity AlarmSeverity, message string) error {
	f.sent = append(f.sent, string(severity)+":"+message)
	return nil
}

func TestFakeAlarmSatisfiesAlarmDelivery(t *testing.T) {
	var a AlarmDelivery = &fakeAlarm{}
	require.NoError(t, a.Send(context.Background(), AlarmCritical, "disk full"))
	assert.Equal(t, []string{"critical:disk full"}, a.(*fakeAlarm).sent)
}

type fakeExternalCaller struct {
	calls map[string]value.Value
}

func (f *fakeExternalCaller) Call(ctx context.Context, name string, payload value.Value) error {
	if f.calls == nil {
		f.calls = map[string]value.Value{}
	}
	f.calls[name] = payload
	return nil
}

func TestFakeExternalCallerSatisfiesExternalCaller(t *testing.T) {
	var c ExternalCaller = &fakeExternalCaller{}
	require.NoError(t, c.Call(context.Background(), "billing", value.String("payload")))
	assert.Equal(t, value.String("payload"), c.(*fakeExternalCaller).calls["billing"])
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "id_", ColumnID)
	assert.Equal(t, "data_", ColumnRawData)
	assert.Equal(t, "aggregate_assist_", ColumnAggregateAssist)
	assert.Equal(t, "version_", ColumnVersion)
	assert.Equal(t, "tenant_id_", ColumnTenant)
	assert.Equal(t, "insert_time_", ColumnInsertTime)
	assert.Equal(t, "update_time_", ColumnUpdateTime)
}
