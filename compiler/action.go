package compiler

import (
	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/param"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
)

// CompiledAction is the executable form of one ActionSpec. Only the fields
// relevant to Kind are populated, mirroring ActionSpec itself.
type CompiledAction struct {
	Kind schema.ActionKind

	// alarm
	Prerequisite cond.Condition
	MessagePath  *path.Path
	Severity     string
	MaskDigits   int // >0 when MessagePath resolves to an AES-encrypted source factor

	// copyToMemory / readRow / readFactor / exists / readRows / readFactors
	Variable  string // plain variable name
	Parameter param.Parameter

	// writeToExternal
	ExternalName string
	Payload      param.Parameter

	// readRow/readRows/exists/readFactor/readFactors/deleteRow/deleteRows
	SourceTopic *schema.Topic
	Criteria    cond.Condition
	FactorID    string
	FactorIDs   []string

	// insertRow/mergeRow/insertOrMergeRow/writeFactor
	TargetTopic *schema.Topic
	Mapping     []CompiledFactorMapping
}

// CompiledFactorMapping binds one target factor id to the compiled
// parameter producing its value.
type CompiledFactorMapping struct {
	FactorID  string
	Parameter param.Parameter
}

func validatePlainVariableName(name string) error {
	if name == "" {
		return pipeflowerr.New(pipeflowerr.CodeBlankVariableName, "variable name must not be blank")
	}
	p, err := path.Parse(name)
	if err != nil {
		return err
	}
	if !p.Simple() {
		return pipeflowerr.Newf(pipeflowerr.CodeBlankVariableName, "variable name %q must be a plain path with no function segments", name)
	}
	return nil
}

// compileAction resolves one ActionSpec into a CompiledAction, validating
// the type-specific preconditions each action kind requires.
func (s *session) compileAction(as *schema.ActionSpec) (*CompiledAction, error) {
	switch as.Kind {
	case schema.ActionAlarm:
		return s.compileAlarm(as)
	case schema.ActionCopyToMemory:
		return s.compileCopyToMemory(as)
	case schema.ActionWriteToExternal:
		return s.compileWriteToExternal(as)
	case schema.ActionReadRow, schema.ActionExists, schema.ActionReadRows:
		return s.compileReadRowLike(as)
	case schema.ActionReadFactor, schema.ActionReadFactors:
		return s.compileReadFactorLike(as)
	case schema.ActionInsertRow, schema.ActionMergeRow, schema.ActionInsertOrMergeRow, schema.ActionWriteFactor:
		return s.compileWriteLike(as)
	case schema.ActionDeleteRow, schema.ActionDeleteRows:
		return s.compileDeleteLike(as)
	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "unknown action kind %q", as.Kind)
	}
}

func (s *session) compileAlarm(as *schema.ActionSpec) (*CompiledAction, error) {
	var prereq cond.Condition
	if as.Prerequisite != nil {
		c, err := s.compileCondition(as.Prerequisite)
		if err != nil {
			return nil, err
		}
		prereq = c
	}
	if as.MessagePath == "" {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "alarm action requires a message path")
	}
	msgPath, err := path.Parse(as.MessagePath)
	if err != nil {
		return nil, err
	}
	maskDigits := 0
	if s.sourceTopic != nil && msgPath.Simple() {
		if factor, ok := s.sourceTopic.FactorByName(msgPath.PlainName()); ok && factor.Encrypt == schema.EncryptAES {
			maskDigits = maskDigitsForFactor
		}
	}
	return &CompiledAction{Kind: as.Kind, Prerequisite: prereq, MessagePath: msgPath, Severity: as.Severity, MaskDigits: maskDigits}, nil
}

// maskDigitsForFactor is the trailing-digit count masked in an alarm message
// rendered over an AES-encrypted factor. encrypt.MaskLastChars only supports
// 3 or 6; 6 matches the masking the alarm channel expects for factor values.
const maskDigitsForFactor = 6

func (s *session) compileCopyToMemory(as *schema.ActionSpec) (*CompiledAction, error) {
	if err := validatePlainVariableName(as.Variable); err != nil {
		return nil, err
	}
	if as.Parameter == nil {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "copyToMemory action requires a parameter")
	}
	p, err := s.compileParameter(as.Parameter)
	if err != nil {
		return nil, err
	}
	return &CompiledAction{Kind: as.Kind, Variable: as.Variable, Parameter: p}, nil
}

func (s *session) compileWriteToExternal(as *schema.ActionSpec) (*CompiledAction, error) {
	if as.ExternalName == "" {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "writeToExternal action requires an external collaborator name")
	}
	if as.Payload == nil {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "writeToExternal action requires a payload parameter")
	}
	payload, err := s.compileParameter(as.Payload)
	if err != nil {
		return nil, err
	}
	return &CompiledAction{Kind: as.Kind, ExternalName: as.ExternalName, Payload: payload}, nil
}

// compileReadRowLike covers readRow/exists/readRows: a non-blank variable
// name parsing as a plain path, a source topic schema, and compiled
// criteria.
func (s *session) compileReadRowLike(as *schema.ActionSpec) (*CompiledAction, error) {
	if err := validatePlainVariableName(as.Variable); err != nil {
		return nil, err
	}
	topic, err := s.topic(as.SourceTopicID)
	if err != nil {
		return nil, err
	}
	criteria, err := s.compileOptionalCriteria(as.Criteria)
	if err != nil {
		return nil, err
	}
	return &CompiledAction{Kind: as.Kind, Variable: as.Variable, SourceTopic: topic, Criteria: criteria}, nil
}

// compileReadFactorLike covers readFactor/readFactors: as above, plus the
// named factor(s) must exist on the source topic.
func (s *session) compileReadFactorLike(as *schema.ActionSpec) (*CompiledAction, error) {
	if err := validatePlainVariableName(as.Variable); err != nil {
		return nil, err
	}
	topic, err := s.topic(as.SourceTopicID)
	if err != nil {
		return nil, err
	}
	criteria, err := s.compileOptionalCriteria(as.Criteria)
	if err != nil {
		return nil, err
	}

	compiled := &CompiledAction{Kind: as.Kind, Variable: as.Variable, SourceTopic: topic, Criteria: criteria}
	if as.Kind == schema.ActionReadFactor {
		if _, ok := topic.FactorByID(as.FactorID); !ok {
			return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", as.FactorID, as.SourceTopicID)
		}
		compiled.FactorID = as.FactorID
		return compiled, nil
	}

	if len(as.FactorIDs) == 0 {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "readFactors action requires at least one factor id")
	}
	for _, id := range as.FactorIDs {
		if _, ok := topic.FactorByID(id); !ok {
			return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", id, as.SourceTopicID)
		}
	}
	compiled.FactorIDs = as.FactorIDs
	return compiled, nil
}

// compileWriteLike covers insertRow/mergeRow/insertOrMergeRow/writeFactor:
// requires a target topic schema and a mapping whose factor ids all exist
// on it.
func (s *session) compileWriteLike(as *schema.ActionSpec) (*CompiledAction, error) {
	topic, err := s.topic(as.TargetTopicID)
	if err != nil {
		return nil, err
	}
	if len(as.Mapping) == 0 {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "mapping action requires at least one factor mapping")
	}

	var errs []error
	mapping := make([]CompiledFactorMapping, 0, len(as.Mapping))
	for i := range as.Mapping {
		m := &as.Mapping[i]
		if _, ok := topic.FactorByID(m.FactorID); !ok {
			errs = append(errs, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", m.FactorID, as.TargetTopicID))
			continue
		}
		p, err := s.compileParameter(&m.Parameter)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mapping = append(mapping, CompiledFactorMapping{FactorID: m.FactorID, Parameter: p})
	}
	if err := pipeflowerr.Multiple(errs...); err != nil {
		return nil, err
	}

	return &CompiledAction{Kind: as.Kind, TargetTopic: topic, Mapping: mapping}, nil
}

func (s *session) compileDeleteLike(as *schema.ActionSpec) (*CompiledAction, error) {
	topic, err := s.topic(as.SourceTopicID)
	if err != nil {
		return nil, err
	}
	criteria, err := s.compileOptionalCriteria(as.Criteria)
	if err != nil {
		return nil, err
	}
	return &CompiledAction{Kind: as.Kind, SourceTopic: topic, Criteria: criteria}, nil
}

func (s *session) compileOptionalCriteria(cs *schema.ConditionSpec) (cond.Condition, error) {
	if cs == nil {
		return nil, nil
	}
	return s.compileCondition(cs)
}
