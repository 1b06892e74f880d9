// Sequencing and rollup rule model. Rules are data interpreted by the engine;
// adding a condition or action kind is additive.
package types

import "errors"

// Condition combination operators.
const (
	CombinationAll = "all"
	CombinationAny = "any"
)

// Atomic rule conditions, evaluated against an activity's tracked state.
const (
	ConditionSatisfied            = "satisfied"
	ConditionObjectiveStatusKnown = "objectiveStatusKnown"
	ConditionMeasureKnown         = "objectiveMeasureKnown"
	ConditionCompleted            = "completed"
	ConditionProgressKnown        = "progressKnown"
	ConditionAttempted            = "attempted"
	ConditionAttemptLimitExceeded = "attemptLimitExceeded"
	ConditionAlways               = "always"
)

// Precondition rule actions.
const (
	ActionSkip             = "skip"
	ActionDisabled         = "disabled"
	ActionHiddenFromChoice = "hiddenFromChoice"
)

// Exit-condition rule actions.
const (
	ActionExit       = "exit"
	ActionExitParent = "exitParent"
	ActionExitAll    = "exitAll"
)

// Postcondition rule actions.
const (
	ActionContinue = "continue"
	ActionPrevious = "previous"
	ActionRetry    = "retry"
)

// ActionNone is returned when no rule in a category matched; the
// control-mode-derived default applies.
const ActionNone = ""

// Rule categories.
const (
	RulePrecondition  = "precondition"
	RuleExit          = "exit"
	RulePostcondition = "postcondition"
)

// Rollup child activity sets.
const (
	RollupSetAll            = "all"
	RollupSetAny            = "any"
	RollupSetNone           = "none"
	RollupSetAtLeastCount   = "atLeastCount"
	RollupSetAtLeastPercent = "atLeastPercent"
)

// Rollup rule actions.
const (
	RollupSatisfied    = "satisfied"
	RollupNotSatisfied = "notSatisfied"
	RollupCompleted    = "completed"
	RollupIncomplete   = "incomplete"
)

// Rule evaluation errors.
var (
	ErrUnknownCondition = errors.New("unknown rule condition")
	ErrUnknownAction    = errors.New("unknown rule action")
	ErrUnknownCategory  = errors.New("unknown rule category")
)

// RuleCondition is one atomic condition inside a rule.
type RuleCondition struct {
	// Condition names the atomic condition (one of the Condition constants).
	Condition string `json:"condition"`

	// Negate inverts the condition result.
	Negate bool `json:"negate,omitempty"`
}

// SequencingRule is a condition-action pair attached to an activity.
// Rules are evaluated in declaration order; the first rule whose condition
// set matches wins.
type SequencingRule struct {
	// Combination joins the conditions: "all" requires every condition to
	// hold, "any" requires at least one. Defaults to "all" when empty.
	Combination string `json:"combination,omitempty"`

	// Conditions is the condition set. A rule with no conditions never
	// matches.
	Conditions []RuleCondition `json:"conditions"`

	// Action is applied when the condition set matches.
	Action string `json:"action"`
}

// RollupRule overrides the default rollup policy of an activity. The
// condition set is evaluated against each rollup-contributing child; the
// child activity set decides how many children must match for the action to
// apply.
type RollupRule struct {
	// ChildActivitySet is one of the RollupSet constants.
	ChildActivitySet string `json:"child_activity_set"`

	// MinimumCount applies to the "atLeastCount" set.
	MinimumCount int `json:"minimum_count,omitempty"`

	// MinimumPercent applies to the "atLeastPercent" set. Range [0, 1].
	MinimumPercent float64 `json:"minimum_percent,omitempty"`

	// Combination joins the conditions per child, as in SequencingRule.
	Combination string `json:"combination,omitempty"`

	// Conditions is evaluated against each contributing child.
	Conditions []RuleCondition `json:"conditions"`

	// Action is one of the Rollup action constants.
	Action string `json:"action"`
}
