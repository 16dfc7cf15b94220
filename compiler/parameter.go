package compiler

import (
	"github.com/evalgo-labs/pipeflow/param"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// compileParameter resolves one ParameterSpec into a param.Parameter,
// binding topic-factor references against the schema catalog and setting
// IsVec on the resulting path from the factor's declared kind.
func (s *session) compileParameter(ps *schema.ParameterSpec) (param.Parameter, error) {
	if ps == nil {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "parameter is required")
	}

	switch ps.Kind {
	case schema.ParameterTopic:
		return s.compileTopicFactorParameter(ps.TopicID, ps.FactorID)

	case schema.ParameterConstant:
		p, err := path.Parse(ps.Path)
		if err != nil {
			return nil, err
		}
		return param.NewConstantParameter(p), nil

	case schema.ParameterComputed:
		return s.compileComputedParameter(ps)

	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "unknown parameter kind %q", ps.Kind)
	}
}

func (s *session) compileTopicFactorParameter(topicID, factorID string) (param.Parameter, error) {
	topic, err := s.topic(topicID)
	if err != nil {
		return nil, err
	}
	factor, ok := topic.FactorByID(factorID)
	if !ok {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", factorID, topicID)
	}
	p, err := path.Parse(factor.Name)
	if err != nil {
		return nil, err
	}
	p.IsVec = factor.Kind == value.KindVec
	return param.NewTopicFactorParameter(p), nil
}

func (s *session) compileComputedParameter(ps *schema.ParameterSpec) (param.Parameter, error) {
	switch ps.Operator {
	case schema.OpAdd:
		return s.compileVariadicArithmetic(ps.Parameters, func(ps []param.Parameter) (param.Parameter, error) { return param.NewAddParameter(ps) })
	case schema.OpSubtract:
		return s.compileVariadicArithmetic(ps.Parameters, func(ps []param.Parameter) (param.Parameter, error) { return param.NewSubtractParameter(ps) })
	case schema.OpMultiply:
		return s.compileVariadicArithmetic(ps.Parameters, func(ps []param.Parameter) (param.Parameter, error) { return param.NewMultiplyParameter(ps) })
	case schema.OpDivide:
		return s.compileVariadicArithmetic(ps.Parameters, func(ps []param.Parameter) (param.Parameter, error) { return param.NewDivideParameter(ps) })
	case schema.OpModulus:
		return s.compileVariadicArithmetic(ps.Parameters, func(ps []param.Parameter) (param.Parameter, error) { return param.NewModulusParameter(ps) })

	case schema.OpYearOf, schema.OpHalfYearOf, schema.OpQuarterOf, schema.OpMonthOf,
		schema.OpWeekOfYear, schema.OpWeekOfMonth, schema.OpDayOfMonth, schema.OpDayOfWeek:
		return s.compileDateOf(ps)

	case schema.OpCaseThen:
		return s.compileCaseThen(ps)

	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "unknown computed operator %q", ps.Operator)
	}
}

func (s *session) compileVariadicArithmetic(specs []schema.ParameterSpec, build func([]param.Parameter) (param.Parameter, error)) (param.Parameter, error) {
	operands := make([]param.Parameter, 0, len(specs))
	for i := range specs {
		p, err := s.compileParameter(&specs[i])
		if err != nil {
			return nil, err
		}
		operands = append(operands, p)
	}
	return build(operands)
}

func (s *session) compileDateOf(ps *schema.ParameterSpec) (param.Parameter, error) {
	if ps.Operand == nil {
		return nil, pipeflowerr.Newf(pipeflowerr.CodeMissingRequiredParameter, "operator %q requires an operand", ps.Operator)
	}
	operand, err := s.compileParameter(ps.Operand)
	if err != nil {
		return nil, err
	}
	switch ps.Operator {
	case schema.OpYearOf:
		return param.NewYearOfParameter(operand), nil
	case schema.OpHalfYearOf:
		return param.NewHalfYearOfParameter(operand), nil
	case schema.OpQuarterOf:
		return param.NewQuarterOfParameter(operand), nil
	case schema.OpMonthOf:
		return param.NewMonthOfParameter(operand), nil
	case schema.OpWeekOfYear:
		return param.NewWeekOfYearParameter(operand), nil
	case schema.OpWeekOfMonth:
		return param.NewWeekOfMonthParameter(operand), nil
	case schema.OpDayOfMonth:
		return param.NewDayOfMonthParameter(operand), nil
	case schema.OpDayOfWeek:
		return param.NewDayOfWeekParameter(operand), nil
	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "operator %q is not a date-of operator", ps.Operator)
	}
}

func (s *session) compileCaseThen(ps *schema.ParameterSpec) (param.Parameter, error) {
	ct := param.NewCaseThenParameter()
	for i := range ps.Routes {
		route := &ps.Routes[i]
		joint, err := s.compileCondition(&route.On)
		if err != nil {
			return nil, err
		}
		routeParam, err := s.compileParameter(&route.Parameter)
		if err != nil {
			return nil, err
		}
		ct.AddRoute(joint, routeParam)
	}
	if ps.Default != nil {
		defParam, err := s.compileParameter(ps.Default)
		if err != nil {
			return nil, err
		}
		if err := ct.SetDefault(defParam); err != nil {
			return nil, err
		}
	}
	return ct, nil
}
