// Package compiler turns a declared schema.Pipeline into an executable
// tree: every parameter resolved against its topic schema, every path
// schema-checked and IsVec-tagged, every condition compiled into a
// cond.Condition, and every action's type-specific preconditions validated.
// Compilation never touches storage or alarm collaborators; it is a pure
// function of the pipeline tree and the schema catalog.
package compiler

import (
	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
)

// Compiler resolves pipeline trees against a schema catalog.
type Compiler struct {
	catalog schema.Catalog
}

// New builds a Compiler over the given schema catalog. Callers that want a
// warm topic-schema cache across many Compile calls should wrap catalog in
// a *schema.CachedCatalog before passing it here.
func New(catalog schema.Catalog) *Compiler {
	return &Compiler{catalog: catalog}
}

// session carries per-Compile-call state: a local topic cache (so a single
// compilation never hits the catalog twice for the same topic, on top of
// whatever cache the catalog itself already applies) and the tenant the
// pipeline belongs to.
type session struct {
	c           *Compiler
	tenantID    string
	topics      map[string]*schema.Topic
	sourceTopic *schema.Topic // the pipeline's own trigger topic, for alarm message masking
}

func (s *session) topic(topicID string) (*schema.Topic, error) {
	if t, ok := s.topics[topicID]; ok {
		return t, nil
	}
	t, ok, err := s.c.catalog.TopicByID(s.tenantID, topicID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "topic %q not found", topicID)
	}
	s.topics[topicID] = t
	return t, nil
}

// CompiledPipeline is the executable form of a schema.Pipeline: the same
// shape, with ConditionSpec/ParameterSpec trees replaced by compiled
// cond.Condition/param.Parameter trees.
type CompiledPipeline struct {
	ID          string
	TenantID    string
	TopicID     string
	TriggerType schema.TriggerType
	Guard       cond.Condition // nil when the pipeline is unconditional
	Stages      []*CompiledStage
}

type CompiledStage struct {
	ID    string
	Guard cond.Condition
	Units []*CompiledUnit
}

type CompiledUnit struct {
	ID           string
	Guard        cond.Condition
	LoopVariable string // plain variable name; "" when the unit does not loop
	Actions      []*CompiledAction
}

// Compile validates and resolves p against the schema catalog, under the
// given tenant (normally p.TenantID itself; callers compiling on behalf of
// a request carry the request's tenant to keep lookups tenant-scoped).
func (c *Compiler) Compile(tenantID string, p *schema.Pipeline) (*CompiledPipeline, error) {
	s := &session{c: c, tenantID: tenantID, topics: map[string]*schema.Topic{}}

	sourceTopic, err := s.topic(p.TopicID)
	if err != nil {
		return nil, err
	}
	if !sourceTopic.SupportsTrigger() {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeTriggerTypeNotSupported, "topic %q does not support trigger %q", p.TopicID, p.TriggerType)
	}
	s.sourceTopic = sourceTopic

	var errs []error

	guard, err := compileOptionalCondition(s, p.Conditional, p.On)
	if err != nil {
		errs = append(errs, err)
	}

	stages := make([]*CompiledStage, 0, len(p.Stages))
	for i := range p.Stages {
		stage, err := s.compileStage(&p.Stages[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		stages = append(stages, stage)
	}

	if err := pipeflowerr.Multiple(errs...); err != nil {
		return nil, err
	}

	return &CompiledPipeline{
		ID:          p.ID,
		TenantID:    tenantID,
		TopicID:     p.TopicID,
		TriggerType: p.TriggerType,
		Guard:       guard,
		Stages:      stages,
	}, nil
}

func (s *session) compileStage(st *schema.Stage) (*CompiledStage, error) {
	guard, err := compileOptionalCondition(s, st.Conditional, st.On)
	if err != nil {
		return nil, err
	}

	var errs []error
	units := make([]*CompiledUnit, 0, len(st.Units))
	for i := range st.Units {
		unit, err := s.compileUnit(&st.Units[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, unit)
	}
	if err := pipeflowerr.Multiple(errs...); err != nil {
		return nil, err
	}

	return &CompiledStage{ID: st.ID, Guard: guard, Units: units}, nil
}

func (s *session) compileUnit(u *schema.Unit) (*CompiledUnit, error) {
	guard, err := compileOptionalCondition(s, u.Conditional, u.On)
	if err != nil {
		return nil, err
	}

	loopVar := u.LoopVariableName
	if loopVar != "" {
		if err := validatePlainVariableName(loopVar); err != nil {
			return nil, err
		}
	}

	var errs []error
	actions := make([]*CompiledAction, 0, len(u.Actions))
	for i := range u.Actions {
		action, err := s.compileAction(&u.Actions[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		actions = append(actions, action)
	}
	if err := pipeflowerr.Multiple(errs...); err != nil {
		return nil, err
	}

	return &CompiledUnit{ID: u.ID, Guard: guard, LoopVariable: loopVar, Actions: actions}, nil
}

// compileOptionalCondition compiles on if the node is conditional, else
// returns a nil Condition (the node is treated as unconditionally true).
func compileOptionalCondition(s *session, conditional bool, on *schema.ConditionSpec) (cond.Condition, error) {
	if !conditional || on == nil {
		return nil, nil
	}
	return s.compileCondition(on)
}
