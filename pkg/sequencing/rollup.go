// Rollup: upward propagation of satisfaction, completion, and measure from
// children to ancestors.
package sequencing

import (
	"fmt"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// Rollup recomputes the tracked state of every ancestor of the given
// activity, walking from its parent to the root. Each ancestor's
// satisfaction, completion, and normalized measure are derived from its
// rollup-contributing children. The activity's own directly-tracked state is
// never touched; a leaf's completion is set only by direct tracking.
//
// When includeCompletion is false (abandonment), satisfaction and measure
// still roll up but completion status is left as it was.
func Rollup(tree *ActivityTree, session *types.SequencingSession, activityID string, includeCompletion bool) error {
	if !tree.Contains(activityID) {
		return fmt.Errorf("%w: %s", types.ErrUnknownActivity, activityID)
	}
	for _, ancestor := range tree.AncestorsOf(activityID) {
		if err := rollupActivity(tree, session, ancestor, includeCompletion); err != nil {
			return err
		}
	}
	return nil
}

// rollupActivity recomputes one cluster's state from its contributing
// children. A cluster with zero contributing children keeps its own state.
func rollupActivity(tree *ActivityTree, session *types.SequencingSession, node *types.ActivityNode, includeCompletion bool) error {
	var contributing []*types.ActivityNode
	for _, child := range tree.ChildrenOf(node.ActivityID) {
		if child.ContributesToRollup() {
			contributing = append(contributing, child)
		}
	}
	if len(contributing) == 0 {
		return nil
	}

	state := session.State(node.ActivityID)

	rollupMeasure(session, node, contributing, state)
	if err := rollupSatisfaction(session, node, contributing, state); err != nil {
		return err
	}
	if includeCompletion {
		if err := rollupCompletion(session, node, contributing, state); err != nil {
			return err
		}
	}
	return nil
}

// rollupMeasure recomputes the weighted average of the contributing
// children's measures, clamped to [-1, 1]. Children whose progress has not
// been determined are excluded from numerator and denominator alike, not
// treated as zero. With no included child the measure stays unknown.
func rollupMeasure(session *types.SequencingSession, node *types.ActivityNode, contributing []*types.ActivityNode, state *types.ActivityState) {
	var sum, totalWeight float64
	for _, child := range contributing {
		cs := session.StateOf(child.ActivityID)
		if !cs.ProgressDetermined || !cs.ObjectiveMeasureKnown {
			continue
		}
		weight := child.MeasureWeight
		if weight == 0 {
			weight = 1
		}
		sum += cs.ObjectiveNormalizedMeasure * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return
	}

	measure := sum / totalWeight
	if measure > 1 {
		measure = 1
	}
	if measure < -1 {
		measure = -1
	}
	state.ObjectiveMeasureKnown = true
	state.ObjectiveNormalizedMeasure = measure
}

// rollupSatisfaction applies the activity's satisfaction rollup rules, or
// the default all-children policy when none match. Explicit rules are
// evaluated in declaration order; the first matching satisfied/notSatisfied
// rule wins.
func rollupSatisfaction(session *types.SequencingSession, node *types.ActivityNode, contributing []*types.ActivityNode, state *types.ActivityState) error {
	applied, err := applyRollupRules(session, node, contributing, state, types.RollupSatisfied, types.RollupNotSatisfied)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	// When the activity itself is satisfied by measure, the rolled-up
	// measure decides.
	if obj := node.PrimaryObjective(); obj != nil && obj.SatisfiedByMeasure {
		if state.ObjectiveMeasureKnown {
			state.ObjectiveStatusKnown = true
			state.ObjectiveSatisfied = state.ObjectiveNormalizedMeasure >= obj.MinNormalizedMeasure
		}
		return nil
	}

	// Default: satisfied iff every contributing child is known satisfied.
	allKnown := true
	allSatisfied := true
	for _, child := range contributing {
		cs := session.StateOf(child.ActivityID)
		if !cs.ObjectiveStatusKnown {
			allKnown = false
			break
		}
		if !cs.ObjectiveSatisfied {
			allSatisfied = false
		}
	}
	if allKnown {
		state.ObjectiveStatusKnown = true
		state.ObjectiveSatisfied = allSatisfied
	}
	return nil
}

// rollupCompletion applies the activity's completion rollup rules, the
// completion threshold when configured, or the default all-children policy.
func rollupCompletion(session *types.SequencingSession, node *types.ActivityNode, contributing []*types.ActivityNode, state *types.ActivityState) error {
	applied, err := applyRollupRules(session, node, contributing, state, types.RollupCompleted, types.RollupIncomplete)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	if node.CompletionThreshold != nil {
		if state.ObjectiveMeasureKnown {
			state.ProgressDetermined = true
			state.Completed = state.ObjectiveNormalizedMeasure >= *node.CompletionThreshold
		}
		return nil
	}

	// Default: completed iff every contributing child is known completed.
	allKnown := true
	allCompleted := true
	for _, child := range contributing {
		cs := session.StateOf(child.ActivityID)
		if !cs.ProgressDetermined {
			allKnown = false
			break
		}
		if !cs.Completed {
			allCompleted = false
		}
	}
	if allKnown {
		state.ProgressDetermined = true
		state.Completed = allCompleted
	}
	return nil
}

// applyRollupRules evaluates the activity's rollup rules whose action is
// positive or negative for one status family, in declaration order. The
// first rule whose child activity set matches applies; true is returned when
// a rule fired.
func applyRollupRules(session *types.SequencingSession, node *types.ActivityNode, contributing []*types.ActivityNode, state *types.ActivityState, positive, negative string) (bool, error) {
	for _, rule := range node.RollupRules {
		if rule.Action != positive && rule.Action != negative {
			continue
		}
		matched, err := childSetMatches(session, rule, contributing)
		if err != nil {
			return false, err
		}
		if !matched {
			continue
		}
		switch rule.Action {
		case types.RollupSatisfied, types.RollupNotSatisfied:
			state.ObjectiveStatusKnown = true
			state.ObjectiveSatisfied = rule.Action == types.RollupSatisfied
		case types.RollupCompleted, types.RollupIncomplete:
			state.ProgressDetermined = true
			state.Completed = rule.Action == types.RollupCompleted
		}
		return true, nil
	}
	return false, nil
}

// childSetMatches evaluates a rollup rule's condition set against each
// contributing child and checks the child activity set requirement.
func childSetMatches(session *types.SequencingSession, rule types.RollupRule, contributing []*types.ActivityNode) (bool, error) {
	matchCount := 0
	for _, child := range contributing {
		ok, err := conditionsMatch(rule.Combination, rule.Conditions, child, session.StateOf(child.ActivityID))
		if err != nil {
			return false, err
		}
		if ok {
			matchCount++
		}
	}

	total := len(contributing)
	switch rule.ChildActivitySet {
	case types.RollupSetAll:
		return matchCount == total, nil
	case types.RollupSetAny:
		return matchCount > 0, nil
	case types.RollupSetNone:
		return matchCount == 0, nil
	case types.RollupSetAtLeastCount:
		return matchCount >= rule.MinimumCount, nil
	case types.RollupSetAtLeastPercent:
		if total == 0 {
			return false, nil
		}
		return float64(matchCount)/float64(total) >= rule.MinimumPercent, nil
	default:
		return false, fmt.Errorf("%w: child activity set %q", types.ErrUnknownAction, rule.ChildActivitySet)
	}
}
