// Package storagepg is the reference collab.Storage adapter: every topic's
// records live in one shared topic_data table, keyed by topic code and
// tenant, with the record itself carried as a JSON blob in data_. Matching
// by compiled criteria is done in memory against the decoded rows rather
// than pushed down as SQL, since a criteria tree is an arbitrary cond.Condition
// over parsed path values, not a fixed filter shape a query builder can
// translate a priori.
package storagepg

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/idgen"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// topicDataRow is the physical row shape every topic shares; topic_code_
// plus tenant_id_ scope a topic's records within the one table.
type topicDataRow struct {
	ID              string    `gorm:"column:id_;primaryKey;size:64"`
	TopicCode       string    `gorm:"column:topic_code_;size:128;index:idx_topic_tenant"`
	TenantID        string    `gorm:"column:tenant_id_;size:64;index:idx_topic_tenant"`
	Data            string    `gorm:"column:data_;type:text"`
	AggregateAssist string    `gorm:"column:aggregate_assist_;type:text"`
	Version         int64     `gorm:"column:version_"`
	InsertTime      time.Time `gorm:"column:insert_time_"`
	UpdateTime      time.Time `gorm:"column:update_time_"`
}

func (topicDataRow) TableName() string { return "topic_data" }

// Store is a gorm-backed collab.Storage implementation.
type Store struct {
	db *gorm.DB
}

// Open connects to pgUrl and configures the pool the same way the rest of
// this service's Postgres-backed components do: a modest idle pool, a
// bounded max, and an hour-long connection lifetime so the driver recycles
// connections before the database (or a pooler in front of it) does.
func Open(pgUrl string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(pgUrl), &gorm.Config{})
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

// Migrate creates or updates the topic_data table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&topicDataRow{})
}

func rowToValue(r topicDataRow) (value.Value, error) {
	var decoded value.Value
	if err := json.Unmarshal([]byte(r.Data), &decoded); err != nil {
		return value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	fields := map[string]value.Value{}
	if decoded.Kind() == value.KindMap {
		for k, v := range decoded.AsMap() {
			fields[k] = v
		}
	}
	fields[collab.ColumnID] = value.String(r.ID)
	return value.Map(fields), nil
}

// recordID reads the reserved id_ field a previously-read record carries;
// absent on a record freshly materialized for insert.
func recordID(record value.Value) (string, bool) {
	if record.Kind() != value.KindMap {
		return "", false
	}
	idv, ok := record.AsMap()[collab.ColumnID]
	if !ok || idv.Kind() != value.KindString || idv.AsString() == "" {
		return "", false
	}
	return idv.AsString(), true
}

// withoutReserved strips the id_ field before a record is serialized, so
// the stored data_ blob carries only factor fields.
func withoutReserved(record value.Value) value.Value {
	if record.Kind() != value.KindMap {
		return record
	}
	fields := make(map[string]value.Value, record.Len())
	for k, v := range record.AsMap() {
		if k == collab.ColumnID {
			continue
		}
		fields[k] = v
	}
	return value.Map(fields)
}

func (s *Store) fetchAll(ctx context.Context, topic *schema.Topic) ([]topicDataRow, error) {
	var rows []topicDataRow
	err := s.db.WithContext(ctx).
		Where("topic_code_ = ? AND tenant_id_ = ?", topic.Code, topic.TenantID).
		Find(&rows).Error
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	return rows, nil
}

// matching decodes every row for topic and keeps only those satisfying
// criteria (a nil criteria matches everything).
func matching(ctx context.Context, s *Store, topic *schema.Topic, criteria cond.Condition) ([]value.Value, error) {
	rows, err := s.fetchAll(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(rows))
	for _, r := range rows {
		v, err := rowToValue(r)
		if err != nil {
			return nil, err
		}
		if criteria == nil {
			out = append(out, v)
			continue
		}
		frame := memview.NewFrame(&v, nil, nil)
		ok, err := criteria.IsTrue(frame)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	data, err := json.Marshal(withoutReserved(record))
	if err != nil {
		return value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}

	now := time.Now().UTC()
	row := topicDataRow{
		ID:         idgen.NewRecordID(),
		TopicCode:  topic.Code,
		TenantID:   topic.TenantID,
		Data:       string(data),
		Version:    1,
		InsertTime: now,
		UpdateTime: now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	return rowToValue(row)
}

// mergeByID loads the row identified by id, applies fields onto its
// decoded data, and writes the merged result back with a bumped version.
func (s *Store) mergeByID(ctx context.Context, topic *schema.Topic, id string, fields value.Value) (value.Value, value.Value, error) {
	var row topicDataRow
	err := s.db.WithContext(ctx).
		Where("id_ = ? AND topic_code_ = ? AND tenant_id_ = ?", id, topic.Code, topic.TenantID).
		First(&row).Error
	if err != nil {
		return value.None, value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	previous, err := rowToValue(row)
	if err != nil {
		return value.None, value.None, err
	}

	merged := make(map[string]value.Value, previous.Len())
	for k, v := range previous.AsMap() {
		merged[k] = v
	}
	if fields.Kind() == value.KindMap {
		for k, v := range fields.AsMap() {
			merged[k] = v
		}
	}
	delete(merged, collab.ColumnID)

	data, err := json.Marshal(value.Map(merged))
	if err != nil {
		return value.None, value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	row.Data = string(data)
	row.Version++
	row.UpdateTime = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return value.None, value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}

	current, err := rowToValue(row)
	if err != nil {
		return value.None, value.None, err
	}
	return previous, current, nil
}

func (s *Store) Merge(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, value.Value, error) {
	id, ok := recordID(record)
	if !ok {
		return value.None, value.None, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "merge requires a previously-read row carrying id_")
	}
	return s.mergeByID(ctx, topic, id, record)
}

func (s *Store) InsertOrMerge(ctx context.Context, topic *schema.Topic, record value.Value) (*value.Value, value.Value, error) {
	if id, ok := recordID(record); ok {
		previous, current, err := s.mergeByID(ctx, topic, id, record)
		if err != nil {
			return nil, value.None, err
		}
		return &previous, current, nil
	}
	current, err := s.Insert(ctx, topic, record)
	if err != nil {
		return nil, value.None, err
	}
	return nil, current, nil
}

func (s *Store) Delete(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error) {
	id, ok := recordID(record)
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "delete requires a row carrying id_")
	}

	var row topicDataRow
	err := s.db.WithContext(ctx).
		Where("id_ = ? AND topic_code_ = ? AND tenant_id_ = ?", id, topic.Code, topic.TenantID).
		First(&row).Error
	if err != nil {
		return value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	previous, err := rowToValue(row)
	if err != nil {
		return value.None, err
	}

	if err := s.db.WithContext(ctx).Delete(&topicDataRow{}, "id_ = ?", id).Error; err != nil {
		return value.None, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	return previous, nil
}

func (s *Store) ReadRow(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (value.Value, bool, error) {
	rows, err := matching(ctx, s, topic, criteria)
	if err != nil {
		return value.None, false, err
	}
	if len(rows) == 0 {
		return value.None, false, nil
	}
	return rows[0], true, nil
}

func (s *Store) ReadRows(ctx context.Context, topic *schema.Topic, criteria cond.Condition) ([]value.Value, error) {
	return matching(ctx, s, topic, criteria)
}

func (s *Store) ReadFactor(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) (value.Value, bool, error) {
	factor, ok := topic.FactorByID(factorID)
	if !ok {
		return value.None, false, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", factorID, topic.ID)
	}
	row, found, err := s.ReadRow(ctx, topic, criteria)
	if err != nil || !found {
		return value.None, found, err
	}
	v, ok := row.AsMap()[factor.Name]
	if !ok {
		return value.None, false, nil
	}
	return v, true, nil
}

func (s *Store) ReadFactors(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) ([]value.Value, error) {
	factor, ok := topic.FactorByID(factorID)
	if !ok {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", factorID, topic.ID)
	}
	rows, err := matching(ctx, s, topic, criteria)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.AsMap()[factor.Name]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) Exists(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (bool, error) {
	rows, err := matching(ctx, s, topic, criteria)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

var _ collab.Storage = (*Store)(nil)
