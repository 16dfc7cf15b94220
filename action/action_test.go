package action

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/encrypt"
	"github.com/evalgo-labs/pipeflow/funcs"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/param"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

func frameWith(current value.Value) *memview.Frame {
	return memview.NewFrame(&current, nil, funcs.DefaultEnv())
}

func mustParse(t *testing.T, s string) *path.Path {
	t.Helper()
	p, err := path.Parse(s)
	require.NoError(t, err)
	return p
}

type fakeStorage struct {
	rows         []value.Value
	inserted     value.Value
	merged       value.Value
	deletedCalls int
}

func (f *fakeStorage) Insert(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	f.inserted = record
	return record, nil
}

func (f *fakeStorage) InsertOrMerge(ctx context.Context, topic *schema.Topic, record value.Value) (*value.Value, value.Value, error) {
	f.merged = record
	return nil, record, nil
}

func (f *fakeStorage) Merge(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, value.Value, error) {
	f.merged = record
	return value.None, record, nil
}

func (f *fakeStorage) Delete(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	f.deletedCalls++
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
	return value.NumberFromInt(7), true, nil
}

func (f *fakeStorage) ReadFactors(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) ([]value.Value, error) {
	return []value.Value{value.NumberFromInt(1), value.NumberFromInt(2)}, nil
}

func (f *fakeStorage) Exists(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (bool, error) {
	return len(f.rows) > 0, nil
}

type fakeAlarm struct {
	sent []string
}

func (f *fakeAlarm) Send(ctx context.Context, severity collab.AlarmSeverity, message string) error {
	f.sent = append(f.sent, message)
	return nil
}

type fakeExternal struct {
	payloads []value.Value
}

func (f *fakeExternal) Call(ctx context.Context, name string, payload value.Value) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestRunCopyToMemory(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"amount": value.NumberFromInt(10)}))
	ca := &compiler.CompiledAction{
		Kind:      schema.ActionCopyToMemory,
		Variable:  "v",
		Parameter: param.NewTopicFactorParameter(mustParse(t, "amount")),
	}

	res, err := Run(context.Background(), ca, frame, Deps{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(10), res.Touched["v"])

	got, err := frame.ValueOf(mustParse(t, "v"))
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(10), got)
}

func TestRunAlarmSkippedWhenPrerequisiteFalse(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"f1": value.NumberFromInt(10)}))
	frame.SetVariable("threshold", value.NumberFromInt(100))
	prereq, err := cond.NewExpression(cond.OpMoreThan,
		param.NewTopicFactorParameter(mustParse(t, "f1")),
		param.NewConstantParameter(mustParse(t, "threshold")))
	require.NoError(t, err)

	ca := &compiler.CompiledAction{
		Kind:         schema.ActionAlarm,
		Prerequisite: prereq,
		MessagePath:  mustParse(t, "f1"),
		Severity:     "high",
	}

	alarm := &fakeAlarm{}
	res, err := Run(context.Background(), ca, frame, Deps{Alarm: alarm})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, alarm.sent)
}

func TestRunAlarmFiresWhenPrerequisiteTrue(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"f1": value.NumberFromInt(150)}))
	frame.SetVariable("threshold", value.NumberFromInt(100))
	prereq, err := cond.NewExpression(cond.OpMoreThan,
		param.NewTopicFactorParameter(mustParse(t, "f1")),
		param.NewConstantParameter(mustParse(t, "threshold")))
	require.NoError(t, err)

	ca := &compiler.CompiledAction{
		Kind:         schema.ActionAlarm,
		Prerequisite: prereq,
		MessagePath:  mustParse(t, "f1"),
		Severity:     "high",
	}

	alarm := &fakeAlarm{}
	res, err := Run(context.Background(), ca, frame, Deps{Alarm: alarm})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	require.Len(t, alarm.sent, 1)
}

func TestRunAlarmMasksEncryptedFactorMessage(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"f1": value.String("4012888888881881")}))

	ca := &compiler.CompiledAction{
		Kind:        schema.ActionAlarm,
		MessagePath: mustParse(t, "f1"),
		Severity:    "high",
		MaskDigits:  6,
	}

	alarm := &fakeAlarm{}
	res, err := Run(context.Background(), ca, frame, Deps{Alarm: alarm})
	require.NoError(t, err)
	require.Len(t, alarm.sent, 1)
	assert.NotEqual(t, "4012888888881881", alarm.sent[0])
	assert.Equal(t, value.String(alarm.sent[0]), res.Touched["message"])
}

func TestRunInsertRowProducesFollowUp(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"amount": value.NumberFromInt(20)}))
	target := &schema.Topic{ID: "t2", Factors: []schema.Factor{{ID: "g1", Name: "total", Kind: value.KindNumber}}}

	ca := &compiler.CompiledAction{
		Kind:        schema.ActionInsertRow,
		TargetTopic: target,
		Mapping: []compiler.CompiledFactorMapping{
			{FactorID: "g1", Parameter: param.NewTopicFactorParameter(mustParse(t, "amount"))},
		},
	}

	storage := &fakeStorage{}
	res, err := Run(context.Background(), ca, frame, Deps{Storage: storage})
	require.NoError(t, err)
	require.Len(t, res.FollowUps, 1)
	assert.Equal(t, "t2", res.FollowUps[0].TopicID)
	assert.Equal(t, schema.TriggerInsert, res.FollowUps[0].Trigger)
	assert.Equal(t, value.NumberFromInt(20), storage.inserted.AsMap()["total"])
}

func TestRunDeleteRowsProducesOneFollowUpPerRow(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{}))
	topic := &schema.Topic{ID: "t1"}
	storage := &fakeStorage{rows: []value.Value{value.NumberFromInt(1), value.NumberFromInt(2)}}

	ca := &compiler.CompiledAction{Kind: schema.ActionDeleteRows, SourceTopic: topic}
	res, err := Run(context.Background(), ca, frame, Deps{Storage: storage})
	require.NoError(t, err)
	assert.Equal(t, 2, storage.deletedCalls)
	assert.Len(t, res.FollowUps, 2)
}

func TestRunInsertRowEncryptsAESFactor(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"ssn": value.String("123-45-6789")}))
	target := &schema.Topic{ID: "t3", Factors: []schema.Factor{
		{ID: "g1", Name: "ssn_enc", Kind: value.KindString, Encrypt: schema.EncryptAES},
	}}

	ca := &compiler.CompiledAction{
		Kind:        schema.ActionInsertRow,
		TargetTopic: target,
		Mapping: []compiler.CompiledFactorMapping{
			{FactorID: "g1", Parameter: param.NewTopicFactorParameter(mustParse(t, "ssn"))},
		},
	}

	storage := &fakeStorage{}
	cipher := encrypt.NewAESCipher("test-key-secret", "test-iv-secret")
	_, err := Run(context.Background(), ca, frame, Deps{Storage: storage, Encrypt: cipher})
	require.NoError(t, err)

	stored := storage.inserted.AsMap()["ssn_enc"].ToString()
	assert.NotEqual(t, "123-45-6789", stored)

	ciphertext, err := base64.StdEncoding.DecodeString(stored)
	require.NoError(t, err)
	plain, err := cipher.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "123-45-6789", string(plain))
}

func TestRunInsertRowFailsWithoutConfiguredCipher(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"ssn": value.String("123-45-6789")}))
	target := &schema.Topic{ID: "t3", Factors: []schema.Factor{
		{ID: "g1", Name: "ssn_enc", Kind: value.KindString, Encrypt: schema.EncryptAES},
	}}

	ca := &compiler.CompiledAction{
		Kind:        schema.ActionInsertRow,
		TargetTopic: target,
		Mapping: []compiler.CompiledFactorMapping{
			{FactorID: "g1", Parameter: param.NewTopicFactorParameter(mustParse(t, "ssn"))},
		},
	}

	_, err := Run(context.Background(), ca, frame, Deps{Storage: &fakeStorage{}})
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeEncryptionNotConfigured, pipeflowerr.CodeOf(err))
}

func TestRunWriteToExternalSendsPayload(t *testing.T) {
	frame := frameWith(value.Map(map[string]value.Value{"amount": value.NumberFromInt(5)}))
	ca := &compiler.CompiledAction{
		Kind:         schema.ActionWriteToExternal,
		ExternalName: "billing",
		Payload:      param.NewTopicFactorParameter(mustParse(t, "amount")),
	}

	ext := &fakeExternal{}
	_, err := Run(context.Background(), ca, frame, Deps{External: ext})
	require.NoError(t, err)
	require.Len(t, ext.payloads, 1)
	assert.Equal(t, value.NumberFromInt(5), ext.payloads[0])
}
