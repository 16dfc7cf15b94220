package schema

// TriggerType names the event kind a pipeline is bound to.
type TriggerType string

const (
	TriggerInsert        TriggerType = "insert"
	TriggerMerge         TriggerType = "merge"
	TriggerInsertOrMerge TriggerType = "insert-or-merge"
	TriggerDelete        TriggerType = "delete"
)

// ParameterKind tags which of the three parameter shapes a ParameterSpec
// carries.
type ParameterKind string

const (
	ParameterTopic    ParameterKind = "topic"
	ParameterConstant ParameterKind = "constant"
	ParameterComputed ParameterKind = "computed"
)

// ComputedOperator names one of the computed-parameter operators.
type ComputedOperator string

const (
	OpAdd         ComputedOperator = "add"
	OpSubtract    ComputedOperator = "subtract"
	OpMultiply    ComputedOperator = "multiply"
	OpDivide      ComputedOperator = "divide"
	OpModulus     ComputedOperator = "modulus"
	OpYearOf      ComputedOperator = "yearOf"
	OpHalfYearOf  ComputedOperator = "halfYearOf"
	OpQuarterOf   ComputedOperator = "quarterOf"
	OpMonthOf     ComputedOperator = "monthOf"
	OpWeekOfYear  ComputedOperator = "weekOfYear"
	OpWeekOfMonth ComputedOperator = "weekOfMonth"
	OpDayOfMonth  ComputedOperator = "dayOfMonth"
	OpDayOfWeek   ComputedOperator = "dayOfWeek"
	OpCaseThen    ComputedOperator = "caseThen"
)

// ParameterSpec is the source-level (uncompiled) shape of a parameter: a
// topic-factor reference, a constant path, or a computed operator over
// sub-parameters. The compiler resolves a ParameterSpec tree into a
// param.Parameter tree, binding topic/factor references to schema-checked
// data paths along the way.
type ParameterSpec struct {
	Kind ParameterKind `json:"kind"`

	// ParameterTopic
	TopicID  string `json:"topicId,omitempty"`
	FactorID string `json:"factorId,omitempty"`

	// ParameterConstant
	Path string `json:"path,omitempty"`

	// ParameterComputed
	Operator   ComputedOperator `json:"operator,omitempty"`
	Parameters []ParameterSpec  `json:"parameters,omitempty"` // add/subtract/multiply/divide/modulus
	Operand    *ParameterSpec   `json:"operand,omitempty"`    // the *-of operators (single sub-parameter)
	Routes     []CaseRouteSpec  `json:"routes,omitempty"`     // caseThen
	Default    *ParameterSpec   `json:"default,omitempty"`    // caseThen
}

// CaseRouteSpec is one conditional route of a caseThen computed parameter.
type CaseRouteSpec struct {
	On        ConditionSpec `json:"on"`
	Parameter ParameterSpec `json:"parameter"`
}

// ConditionKind tags whether a ConditionSpec is a leaf expression or a
// joint of sub-conditions.
type ConditionKind string

const (
	ConditionExpression ConditionKind = "expression"
	ConditionJoint      ConditionKind = "joint"
)

// ConditionSpec is the source-level shape of a condition tree.
type ConditionSpec struct {
	Kind ConditionKind `json:"kind"`

	// ConditionExpression
	Operator string         `json:"operator,omitempty"` // empty/notEmpty/=/≠/</≤/>/≥/in/notIn
	Left     *ParameterSpec `json:"left,omitempty"`
	Right    *ParameterSpec `json:"right,omitempty"`

	// ConditionJoint
	JointType  string          `json:"jointType,omitempty"` // and/or
	Conditions []ConditionSpec `json:"conditions,omitempty"`
}

// ActionKind names one of the fourteen action types a unit may perform.
type ActionKind string

const (
	ActionAlarm            ActionKind = "alarm"
	ActionCopyToMemory     ActionKind = "copyToMemory"
	ActionWriteToExternal  ActionKind = "writeToExternal"
	ActionReadRow          ActionKind = "readRow"
	ActionReadFactor       ActionKind = "readFactor"
	ActionExists           ActionKind = "exists"
	ActionReadRows         ActionKind = "readRows"
	ActionReadFactors      ActionKind = "readFactors"
	ActionInsertRow        ActionKind = "insertRow"
	ActionMergeRow         ActionKind = "mergeRow"
	ActionInsertOrMergeRow ActionKind = "insertOrMergeRow"
	ActionWriteFactor      ActionKind = "writeFactor"
	ActionDeleteRow        ActionKind = "deleteRow"
	ActionDeleteRows       ActionKind = "deleteRows"
)

// FactorMappingSpec binds one target factor to the parameter that
// produces its value, used by the row-materializing actions.
type FactorMappingSpec struct {
	FactorID  string        `json:"factorId"`
	Parameter ParameterSpec `json:"parameter"`
}

// ActionSpec is the source-level shape of one action. Only the fields
// relevant to Kind are populated; the compiler validates that the
// combination is complete for the declared kind.
type ActionSpec struct {
	Kind ActionKind `json:"kind"`

	// alarm
	Prerequisite *ConditionSpec `json:"prerequisite,omitempty"`
	MessagePath  string         `json:"messagePath,omitempty"`
	Severity     string         `json:"severity,omitempty"`

	// copyToMemory / readRow / readFactor / exists / readRows / readFactors:
	// Variable is the plain-path (no functions) target variable name.
	Variable  string         `json:"variable,omitempty"`
	Parameter *ParameterSpec `json:"parameter,omitempty"` // copyToMemory

	// writeToExternal
	ExternalName string         `json:"externalName,omitempty"`
	Payload      *ParameterSpec `json:"payload,omitempty"`

	// readRow/readRows/exists/deleteRow/deleteRows query criteria;
	// readFactor/readFactors additionally need FactorID/FactorIDs.
	SourceTopicID string         `json:"sourceTopicId,omitempty"`
	Criteria      *ConditionSpec `json:"criteria,omitempty"`
	FactorID      string         `json:"factorId,omitempty"`
	FactorIDs     []string       `json:"factorIds,omitempty"`

	// insertRow/mergeRow/insertOrMergeRow/writeFactor
	TargetTopicID string              `json:"targetTopicId,omitempty"`
	Mapping       []FactorMappingSpec `json:"mapping,omitempty"`
}

// Unit is an ordered list of actions, optionally conditional, optionally
// looping over a vec-valued variable (zero iterations if none, one per
// element if vec, a compile error for any other kind).
type Unit struct {
	ID               string         `json:"unitId"`
	Conditional      bool           `json:"conditional"`
	On               *ConditionSpec `json:"on,omitempty"`
	LoopVariableName string         `json:"loopVariableName,omitempty"`
	Actions          []ActionSpec   `json:"actions"`
}

// Stage is an ordered list of units, optionally conditional.
type Stage struct {
	ID          string         `json:"stageId"`
	Conditional bool           `json:"conditional"`
	On          *ConditionSpec `json:"on,omitempty"`
	Units       []Unit         `json:"units"`
}

// Pipeline is bound to one trigger topic and trigger type, with an
// optional guard and an ordered list of stages.
type Pipeline struct {
	ID          string         `json:"pipelineId"`
	TenantID    string         `json:"tenantId"`
	TopicID     string         `json:"topicId"`
	TriggerType TriggerType    `json:"triggerType"`
	Conditional bool           `json:"conditional"`
	On          *ConditionSpec `json:"on,omitempty"`
	Stages      []Stage        `json:"stages"`
}
