package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

func TestValidateAcceptsWellFormedAdminRequest(t *testing.T) {
	p := Principal{TenantID: "tenant-a", UserID: "u1", Role: RoleAdmin}
	d := Data{Code: "orders", TriggerType: schema.TriggerInsert, Record: value.NumberFromInt(1)}

	v, err := Validate(p, d)
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", v.Data.TenantID)
	assert.NotEmpty(t, v.Data.TraceID)
}

func TestValidatePreservesGivenTraceID(t *testing.T) {
	p := Principal{TenantID: "tenant-a", Role: RoleConsole}
	d := Data{Code: "orders", TriggerType: schema.TriggerInsert, Record: value.NumberFromInt(1), TraceID: "trace-123"}

	v, err := Validate(p, d)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", v.Data.TraceID)
}

func TestValidateCollectsMultipleFailures(t *testing.T) {
	p := Principal{TenantID: "tenant-a", Role: RoleAdmin}
	d := Data{}

	_, err := Validate(p, d)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeMultiple, pipeflowerr.CodeOf(err))
}

func TestValidateRejectsTenantMismatchForNonSuperAdmin(t *testing.T) {
	p := Principal{TenantID: "tenant-a", Role: RoleAdmin}
	d := Data{Code: "orders", TriggerType: schema.TriggerInsert, Record: value.NumberFromInt(1), TenantID: "tenant-b"}

	_, err := Validate(p, d)
	require.Error(t, err)
}

func TestValidateRequiresTenantForSuperAdmin(t *testing.T) {
	p := Principal{Role: RoleSuperAdmin}
	d := Data{Code: "orders", TriggerType: schema.TriggerInsert, Record: value.NumberFromInt(1)}

	_, err := Validate(p, d)
	require.Error(t, err)
}

func TestValidateSuperAdminMaySetAnyTenant(t *testing.T) {
	p := Principal{Role: RoleSuperAdmin}
	d := Data{Code: "orders", TriggerType: schema.TriggerInsert, Record: value.NumberFromInt(1), TenantID: "tenant-z"}

	v, err := Validate(p, d)
	require.NoError(t, err)
	assert.Equal(t, "tenant-z", v.Data.TenantID)
}

func TestValidateRejectsUnrecognizedTriggerType(t *testing.T) {
	p := Principal{TenantID: "tenant-a", Role: RoleAdmin}
	d := Data{Code: "orders", TriggerType: "bogus", Record: value.NumberFromInt(1)}

	_, err := Validate(p, d)
	require.Error(t, err)
}

func TestCheckTopicKindRejectsMergeOnRawTopic(t *testing.T) {
	err := CheckTopicKind(schema.TopicKindRaw, schema.TriggerMerge)
	require.Error(t, err)
	assert.Equal(t, pipeflowerr.CodeTriggerTypeNotSupported, pipeflowerr.CodeOf(err))
}

func TestCheckTopicKindRejectsDeleteOnSynonymTopic(t *testing.T) {
	err := CheckTopicKind(schema.TopicKindSynonym, schema.TriggerDelete)
	require.Error(t, err)
}

func TestCheckTopicKindAllowsInsertOnRawTopic(t *testing.T) {
	assert.NoError(t, CheckTopicKind(schema.TopicKindRaw, schema.TriggerInsert))
}

func TestCheckTopicKindAllowsAnyTriggerOnBusinessTopic(t *testing.T) {
	assert.NoError(t, CheckTopicKind(schema.TopicKindBusiness, schema.TriggerDelete))
}
