package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/param"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

type fakeCatalog struct {
	topics map[string]*schema.Topic
}

func (f *fakeCatalog) TopicByID(tenantID, id string) (*schema.Topic, bool, error) {
	t, ok := f.topics[id]
	return t, ok, nil
}

func (f *fakeCatalog) TopicByCode(tenantID, code string) (*schema.Topic, bool, error) {
	return nil, false, nil
}

func (f *fakeCatalog) Pipeline(tenantID, id string) (*schema.Pipeline, bool, error) {
	return nil, false, nil
}

func (f *fakeCatalog) PipelinesBoundTo(tenantID, topicID string, trigger schema.TriggerType) ([]*schema.Pipeline, error) {
	return nil, nil
}

func orderTopic() *schema.Topic {
	return &schema.Topic{
		ID:   "t1",
		Kind: schema.TopicKindBusiness,
		Factors: []schema.Factor{
			{ID: "f1", Name: "amount", Kind: value.KindNumber},
			{ID: "f2", Name: "tenant", Kind: value.KindNumber},
			{ID: "f3", Name: "items", Kind: value.KindVec},
		},
	}
}

func totalsTopic() *schema.Topic {
	return &schema.Topic{
		ID:   "t2",
		Kind: schema.TopicKindBusiness,
		Factors: []schema.Factor{
			{ID: "g1", Name: "total", Kind: value.KindNumber},
		},
	}
}

func newCompiler() *Compiler {
	return New(&fakeCatalog{topics: map[string]*schema.Topic{
		"t1": orderTopic(),
		"t2": totalsTopic(),
	}})
}

func TestCompileSimpleAlarmPipeline(t *testing.T) {
	p := &schema.Pipeline{
		ID:          "p1",
		TopicID:     "t1",
		TriggerType: schema.TriggerInsert,
		Stages: []schema.Stage{
			{
				ID: "s1",
				Units: []schema.Unit{
					{
						ID: "u1",
						Actions: []schema.ActionSpec{
							{
								Kind:        schema.ActionAlarm,
								MessagePath: "amount",
								Severity:    "high",
								Prerequisite: &schema.ConditionSpec{
									Kind:     schema.ConditionExpression,
									Operator: ">",
									Left:     &schema.ParameterSpec{Kind: schema.ParameterTopic, TopicID: "t1", FactorID: "f1"},
									Right:    &schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "100"},
								},
							},
						},
					},
				},
			},
		},
	}

	compiled, err := newCompiler().Compile("tenant-a", p)
	require.NoError(t, err)
	require.Len(t, compiled.Stages, 1)
	require.Len(t, compiled.Stages[0].Units, 1)
	require.Len(t, compiled.Stages[0].Units[0].Actions, 1)
	action := compiled.Stages[0].Units[0].Actions[0]
	assert.Equal(t, schema.ActionAlarm, action.Kind)
	assert.Equal(t, "high", action.Severity)
	assert.NotNil(t, action.Prerequisite)
}

func TestCompileAlarmSetsMaskDigitsForEncryptedFactor(t *testing.T) {
	topic := &schema.Topic{
		ID:   "t1",
		Kind: schema.TopicKindBusiness,
		Factors: []schema.Factor{
			{ID: "f1", Name: "amount", Kind: value.KindNumber},
			{ID: "f2", Name: "card_number", Kind: value.KindString, Encrypt: schema.EncryptAES},
		},
	}
	c := New(&fakeCatalog{topics: map[string]*schema.Topic{"t1": topic}})

	p := &schema.Pipeline{
		ID:          "p1",
		TopicID:     "t1",
		TriggerType: schema.TriggerInsert,
		Stages: []schema.Stage{
			{ID: "s1", Units: []schema.Unit{
				{ID: "u1", Actions: []schema.ActionSpec{
					{Kind: schema.ActionAlarm, MessagePath: "card_number", Severity: "high"},
				}},
			}},
		},
	}

	compiled, err := c.Compile("tenant-a", p)
	require.NoError(t, err)
	action := compiled.Stages[0].Units[0].Actions[0]
	assert.Equal(t, maskDigitsForFactor, action.MaskDigits)
}

func TestCompileAlarmLeavesMaskDigitsZeroForPlainFactor(t *testing.T) {
	p := &schema.Pipeline{
		ID:          "p1",
		TopicID:     "t1",
		TriggerType: schema.TriggerInsert,
		Stages: []schema.Stage{
			{ID: "s1", Units: []schema.Unit{
				{ID: "u1", Actions: []schema.ActionSpec{
					{Kind: schema.ActionAlarm, MessagePath: "amount", Severity: "high"},
				}},
			}},
		},
	}

	compiled, err := newCompiler().Compile("tenant-a", p)
	require.NoError(t, err)
	action := compiled.Stages[0].Units[0].Actions[0]
	assert.Equal(t, 0, action.MaskDigits)
}

func TestCompileUnknownFactorFails(t *testing.T) {
	p := &schema.Pipeline{
		ID:      "p1",
		TopicID: "t1",
		Stages: []schema.Stage{{
			ID: "s1",
			Units: []schema.Unit{{
				ID: "u1",
				Actions: []schema.ActionSpec{{
					Kind:      schema.ActionCopyToMemory,
					Variable:  "v",
					Parameter: &schema.ParameterSpec{Kind: schema.ParameterTopic, TopicID: "t1", FactorID: "missing"},
				}},
			}},
		}},
	}

	_, err := newCompiler().Compile("tenant-a", p)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeFactorNotFound, pipeflowerr.CodeOf(err))
}

func TestCompileBlankVariableNameFails(t *testing.T) {
	p := &schema.Pipeline{
		ID:      "p1",
		TopicID: "t1",
		Stages: []schema.Stage{{
			ID: "s1",
			Units: []schema.Unit{{
				ID: "u1",
				Actions: []schema.ActionSpec{{
					Kind:      schema.ActionCopyToMemory,
					Variable:  "",
					Parameter: &schema.ParameterSpec{Kind: schema.ParameterTopic, TopicID: "t1", FactorID: "f1"},
				}},
			}},
		}},
	}

	_, err := newCompiler().Compile("tenant-a", p)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeBlankVariableName, pipeflowerr.CodeOf(err))
}

func TestCompileVecFactorSetsIsVec(t *testing.T) {
	c := newCompiler()
	s := &session{c: c, tenantID: "tenant-a", topics: map[string]*schema.Topic{}}

	p, err := s.compileTopicFactorParameter("t1", "f3")
	require.NoError(t, err)
	tfp, ok := p.(*param.TopicFactorParameter)
	require.True(t, ok)
	assert.True(t, tfp.Path.IsVec)
}

func TestCompileWriteFactorValidatesTargetMapping(t *testing.T) {
	as := schema.ActionSpec{
		Kind:          schema.ActionWriteFactor,
		TargetTopicID: "t2",
		Mapping: []schema.FactorMappingSpec{
			{FactorID: "g1", Parameter: schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "42"}},
		},
	}
	c := newCompiler()
	s := &session{c: c, tenantID: "tenant-a", topics: map[string]*schema.Topic{}}

	compiled, err := s.compileAction(&as)
	require.NoError(t, err)
	assert.Equal(t, "t2", compiled.TargetTopic.ID)
	require.Len(t, compiled.Mapping, 1)
	assert.Equal(t, "g1", compiled.Mapping[0].FactorID)
}

func TestCompileWriteFactorUnknownTargetFactorFails(t *testing.T) {
	as := schema.ActionSpec{
		Kind:          schema.ActionWriteFactor,
		TargetTopicID: "t2",
		Mapping: []schema.FactorMappingSpec{
			{FactorID: "missing", Parameter: schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "42"}},
		},
	}
	c := newCompiler()
	s := &session{c: c, tenantID: "tenant-a", topics: map[string]*schema.Topic{}}

	_, err := s.compileAction(&as)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeFactorNotFound, pipeflowerr.CodeOf(err))
}

func TestCompileCaseThenWithDefaultRoute(t *testing.T) {
	ps := &schema.ParameterSpec{
		Kind:     schema.ParameterComputed,
		Operator: schema.OpCaseThen,
		Default:  &schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "1"},
		Routes: []schema.CaseRouteSpec{
			{
				On:        schema.ConditionSpec{Kind: schema.ConditionExpression, Operator: "empty", Left: &schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "x"}},
				Parameter: schema.ParameterSpec{Kind: schema.ParameterConstant, Path: "2"},
			},
		},
	}
	c := newCompiler()
	s := &session{c: c, tenantID: "tenant-a", topics: map[string]*schema.Topic{}}

	p, err := s.compileParameter(ps)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestCompilePipelineOnUnsupportedTriggerTopicFails(t *testing.T) {
	cat := &fakeCatalog{topics: map[string]*schema.Topic{
		"raw1": {ID: "raw1", Kind: schema.TopicKindRaw},
	}}
	c := New(cat)
	p := &schema.Pipeline{ID: "p1", TopicID: "raw1", TriggerType: schema.TriggerInsert}

	_, err := c.Compile("tenant-a", p)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeTriggerTypeNotSupported, pipeflowerr.CodeOf(err))
}
