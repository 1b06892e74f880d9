// Sequencing rule evaluation. Pure functions over an activity and the
// session's tracked state; no side effects.
package sequencing

import (
	"fmt"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// EvaluateRules evaluates the activity's rules of the given category against
// the session state. Rules are checked in declaration order; the first rule
// whose condition set matches wins and its action is returned. When no rule
// matches, types.ActionNone is returned and the caller applies the
// control-mode-derived default for the category.
func EvaluateRules(node *types.ActivityNode, session *types.SequencingSession, category string) (string, error) {
	var rules []types.SequencingRule
	switch category {
	case types.RulePrecondition:
		rules = node.PreconditionRules
	case types.RuleExit:
		rules = node.ExitRules
	case types.RulePostcondition:
		rules = node.PostconditionRules
	default:
		return types.ActionNone, fmt.Errorf("%w: %s", types.ErrUnknownCategory, category)
	}

	state := session.StateOf(node.ActivityID)
	for _, rule := range rules {
		matched, err := conditionsMatch(rule.Combination, rule.Conditions, node, state)
		if err != nil {
			return types.ActionNone, err
		}
		if matched {
			return rule.Action, nil
		}
	}
	return types.ActionNone, nil
}

// conditionsMatch evaluates a condition set against one activity's state.
// An empty condition set never matches, so a rule without conditions is
// inert rather than always firing.
func conditionsMatch(combination string, conditions []types.RuleCondition, node *types.ActivityNode, state types.ActivityState) (bool, error) {
	if len(conditions) == 0 {
		return false, nil
	}
	if combination == "" {
		combination = types.CombinationAll
	}

	for _, cond := range conditions {
		ok, err := evaluateCondition(cond, node, state)
		if err != nil {
			return false, err
		}
		switch combination {
		case types.CombinationAll:
			if !ok {
				return false, nil
			}
		case types.CombinationAny:
			if ok {
				return true, nil
			}
		default:
			return false, fmt.Errorf("%w: combination %q", types.ErrUnknownCondition, combination)
		}
	}
	return combination == types.CombinationAll, nil
}

// evaluateCondition evaluates one atomic condition against an activity's
// tracked state.
func evaluateCondition(cond types.RuleCondition, node *types.ActivityNode, state types.ActivityState) (bool, error) {
	var result bool
	switch cond.Condition {
	case types.ConditionSatisfied:
		result = state.ObjectiveStatusKnown && state.ObjectiveSatisfied
	case types.ConditionObjectiveStatusKnown:
		result = state.ObjectiveStatusKnown
	case types.ConditionMeasureKnown:
		result = state.ObjectiveMeasureKnown
	case types.ConditionCompleted:
		result = state.ProgressDetermined && state.Completed
	case types.ConditionProgressKnown:
		result = state.ProgressDetermined
	case types.ConditionAttempted:
		result = state.Attempted
	case types.ConditionAttemptLimitExceeded:
		result = node.AttemptLimit > 0 && state.AttemptCount >= node.AttemptLimit
	case types.ConditionAlways:
		result = true
	default:
		return false, fmt.Errorf("%w: %s", types.ErrUnknownCondition, cond.Condition)
	}

	if cond.Negate {
		result = !result
	}
	return result, nil
}
