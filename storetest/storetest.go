// Package storetest provides an in-process catalog/storage/alarm
// collaborator trio backed by plain maps, for wiring the executor in tests
// and in the reference CLI without a real Postgres/Redis connection.
package storetest

import (
	"context"
	"sync"

	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/idgen"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// Catalog is a fixed, in-memory schema.Catalog: topics and the pipelines
// bound to them are registered once at construction and never change
// during a run.
type Catalog struct {
	Topics    map[string]*schema.Topic     // by topic id
	Pipelines map[string][]*schema.Pipeline // topic id -> pipelines bound to it
	byID      map[string]*schema.Pipeline
}

// NewCatalog builds a Catalog from a flat topic list, indexing pipelines by
// every topic id they are bound to.
func NewCatalog(topics []*schema.Topic, pipelines []*schema.Pipeline) *Catalog {
	c := &Catalog{
		Topics:    make(map[string]*schema.Topic, len(topics)),
		Pipelines: make(map[string][]*schema.Pipeline),
		byID:      make(map[string]*schema.Pipeline, len(pipelines)),
	}
	for _, t := range topics {
		c.Topics[t.ID] = t
	}
	for _, p := range pipelines {
		c.byID[p.ID] = p
		c.Pipelines[p.TopicID] = append(c.Pipelines[p.TopicID], p)
	}
	return c
}

func (c *Catalog) TopicByID(tenantID, topicID string) (*schema.Topic, bool, error) {
	t, ok := c.Topics[topicID]
	return t, ok, nil
}

func (c *Catalog) TopicByCode(tenantID, code string) (*schema.Topic, bool, error) {
	for _, t := range c.Topics {
		if t.Code == code {
			return t, true, nil
		}
	}
	return nil, false, nil
}

func (c *Catalog) Pipeline(tenantID, pipelineID string) (*schema.Pipeline, bool, error) {
	p, ok := c.byID[pipelineID]
	return p, ok, nil
}

func (c *Catalog) PipelinesBoundTo(tenantID, topicID string, trigger schema.TriggerType) ([]*schema.Pipeline, error) {
	var out []*schema.Pipeline
	for _, p := range c.Pipelines[topicID] {
		if p.TriggerType == trigger {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ schema.Catalog = (*Catalog)(nil)

// Storage is an in-memory collab.Storage keyed by topic id, scoped to a
// single process run. Criteria matching follows the same fetch-then-filter
// approach a SQL-backed adapter uses when it can't translate a compiled
// condition tree into its own query language: decode every candidate row
// into a Frame and ask the condition directly.
type Storage struct {
	mu   sync.Mutex
	rows map[string]map[string]value.Value // topic id -> record id -> record
}

// NewStorage returns an empty Storage ready to accept writes.
func NewStorage() *Storage {
	return &Storage{rows: make(map[string]map[string]value.Value)}
}

func (s *Storage) bucket(topicID string) map[string]value.Value {
	b, ok := s.rows[topicID]
	if !ok {
		b = make(map[string]value.Value)
		s.rows[topicID] = b
	}
	return b
}

func recordID(record value.Value) (string, bool) {
	if record.Kind() != value.KindMap {
		return "", false
	}
	id, ok := record.AsMap()[collab.ColumnID]
	if !ok || id.AsString() == "" {
		return "", false
	}
	return id.AsString(), true
}

func withID(record value.Value, id string) value.Value {
	fields := make(map[string]value.Value)
	if record.Kind() == value.KindMap {
		for k, v := range record.AsMap() {
			fields[k] = v
		}
	}
	fields[collab.ColumnID] = value.String(id)
	return value.Map(fields)
}

func (s *Storage) Insert(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := idgen.NewRecordID()
	stored := withID(record, id)
	s.bucket(topic.ID)[id] = stored
	return stored, nil
}

func (s *Storage) mergeByID(topicID, id string, record value.Value) (value.Value, value.Value, error) {
	bucket := s.bucket(topicID)
	previous, ok := bucket[id]
	if !ok {
		return value.None, value.None, pipeflowerr.Newf(pipeflowerr.CodeInfrastructure, "record %q not found on topic %q", id, topicID)
	}
	merged := make(map[string]value.Value)
	for k, v := range previous.AsMap() {
		merged[k] = v
	}
	if record.Kind() == value.KindMap {
		for k, v := range record.AsMap() {
			merged[k] = v
		}
	}
	current := value.Map(merged)
	bucket[id] = current
	return previous, current, nil
}

func (s *Storage) Merge(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := recordID(record)
	if !ok {
		return value.None, value.None, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "merge requires a record carrying an id_ field")
	}
	return s.mergeByID(topic.ID, id, record)
}

func (s *Storage) InsertOrMerge(ctx context.Context, topic *schema.Topic, record value.Value) (*value.Value, value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := recordID(record)
	if !ok {
		newID := idgen.NewRecordID()
		stored := withID(record, newID)
		s.bucket(topic.ID)[newID] = stored
		return nil, stored, nil
	}
	previous, current, err := s.mergeByID(topic.ID, id, record)
	if err != nil {
		return nil, value.None, err
	}
	return &previous, current, nil
}

func (s *Storage) Delete(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := recordID(record)
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "delete requires a record carrying an id_ field")
	}
	bucket := s.bucket(topic.ID)
	previous, ok := bucket[id]
	if !ok {
		return value.None, pipeflowerr.Newf(pipeflowerr.CodeInfrastructure, "record %q not found on topic %q", id, topic.ID)
	}
	delete(bucket, id)
	return previous, nil
}

func (s *Storage) matching(topic *schema.Topic, criteria cond.Condition) ([]value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []value.Value
	for _, record := range s.bucket(topic.ID) {
		current := record
		frame := memview.NewFrame(&current, nil, nil)
		ok, err := criteria.IsTrue(frame)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *Storage) ReadRow(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (value.Value, bool, error) {
	rows, err := s.matching(topic, criteria)
	if err != nil || len(rows) == 0 {
		return value.None, false, err
	}
	return rows[0], true, nil
}

func (s *Storage) ReadRows(ctx context.Context, topic *schema.Topic, criteria cond.Condition) ([]value.Value, error) {
	return s.matching(topic, criteria)
}

func (s *Storage) ReadFactor(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) (value.Value, bool, error) {
	row, ok, err := s.ReadRow(ctx, topic, criteria)
	if err != nil || !ok {
		return value.None, ok, err
	}
	factor, ok := topic.FactorByID(factorID)
	if !ok {
		return value.None, false, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", factorID, topic.ID)
	}
	return row.AsMap()[factor.Name], true, nil
}

func (s *Storage) ReadFactors(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) ([]value.Value, error) {
	rows, err := s.matching(topic, criteria)
	if err != nil {
		return nil, err
	}
	factor, ok := topic.FactorByID(factorID)
	if !ok {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", factorID, topic.ID)
	}
	out := make([]value.Value, len(rows))
	for i, r := range rows {
		out[i] = r.AsMap()[factor.Name]
	}
	return out, nil
}

func (s *Storage) Exists(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (bool, error) {
	rows, err := s.matching(topic, criteria)
	return len(rows) > 0, err
}

var _ collab.Storage = (*Storage)(nil)

// Alarm collects every alarm sent to it, for a test or CLI run to inspect
// or print after the fact.
type Alarm struct {
	mu   sync.Mutex
	Sent []AlarmEntry
}

type AlarmEntry struct {
	Severity collab.AlarmSeverity
	Message  string
}

func NewAlarm() *Alarm { return &Alarm{} }

func (a *Alarm) Send(ctx context.Context, severity collab.AlarmSeverity, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Sent = append(a.Sent, AlarmEntry{Severity: severity, Message: message})
	return nil
}

var _ collab.AlarmDelivery = (*Alarm)(nil)
