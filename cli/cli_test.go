package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const ordersCatalog = `{
  "topics": [
    {"topicId": "topic-1", "tenantId": "t1", "code": "orders", "kind": "business", "factors": [
      {"factorId": "f-amount", "name": "amount", "kind": 2}
    ]}
  ],
  "pipelines": [
    {"pipelineId": "p1", "tenantId": "t1", "topicId": "topic-1", "triggerType": "insert", "stages": []}
  ]
}`

func TestLoadCatalogParsesFixture(t *testing.T) {
	path := writeFixture(t, "catalog.json", ordersCatalog)

	catalog, err := loadCatalog(path)
	require.NoError(t, err)

	topic, ok, err := catalog.TopicByCode("t1", "orders")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "topic-1", topic.ID)

	bound, err := catalog.PipelinesBoundTo("t1", "topic-1", "insert")
	require.NoError(t, err)
	require.Len(t, bound, 1)
}

func TestLoadCatalogFailsOnMissingFile(t *testing.T) {
	_, err := loadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunTriggerSucceedsOnEmptyPipeline(t *testing.T) {
	catalogPath := writeFixture(t, "catalog.json", ordersCatalog)
	triggerPath := writeFixture(t, "trigger.json", `{
      "principal": {"tenantId": "t1", "userId": "u1", "role": "admin"},
      "code": "orders",
      "triggerType": "insert",
      "data": {"amount": 5}
    }`)

	triggerCatalogPath = catalogPath
	triggerFilePath = triggerPath

	err := runTrigger(triggerCmd, nil)
	assert.NoError(t, err)
}

func TestRunTriggerFailsOnUnknownTopic(t *testing.T) {
	catalogPath := writeFixture(t, "catalog.json", `{"topics": [], "pipelines": []}`)
	triggerPath := writeFixture(t, "trigger.json", `{
      "principal": {"tenantId": "t1", "userId": "u1", "role": "admin"},
      "code": "orders",
      "triggerType": "insert",
      "data": {"amount": 5}
    }`)

	triggerCatalogPath = catalogPath
	triggerFilePath = triggerPath

	err := runTrigger(triggerCmd, nil)
	assert.Error(t, err)
}

func TestRunTriggerFailsOnValidation(t *testing.T) {
	catalogPath := writeFixture(t, "catalog.json", ordersCatalog)
	triggerPath := writeFixture(t, "trigger.json", `{
      "principal": {"tenantId": "t1", "userId": "u1", "role": "admin"},
      "code": "orders",
      "data": {"amount": 5}
    }`)

	triggerCatalogPath = catalogPath
	triggerFilePath = triggerPath

	err := runTrigger(triggerCmd, nil)
	assert.Error(t, err)
}
