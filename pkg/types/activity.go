// Activity node model for the course hierarchy.
package types

// ControlMode holds the per-activity flags that govern how a learner may
// navigate among the activity's children.
type ControlMode struct {
	// Choice permits direct selection of a child by the learner.
	Choice bool `json:"choice"`

	// ChoiceExit permits choosing an activity outside the current one
	// while it is still active.
	ChoiceExit bool `json:"choice_exit"`

	// Flow permits system-directed forward traversal into the children.
	Flow bool `json:"flow"`

	// ForwardOnly forbids backward traversal among the children.
	ForwardOnly bool `json:"forward_only"`
}

// Objective describes a learning objective attached to an activity.
type Objective struct {
	// ObjectiveID identifies the objective within the activity.
	ObjectiveID string `json:"objective_id"`

	// SatisfiedByMeasure derives satisfaction from the normalized measure
	// instead of direct status tracking.
	SatisfiedByMeasure bool `json:"satisfied_by_measure"`

	// MinNormalizedMeasure is the satisfaction threshold when
	// SatisfiedByMeasure is set. Range [-1, 1].
	MinNormalizedMeasure float64 `json:"min_normalized_measure"`

	// ContributesToRollup includes this activity's satisfaction and measure
	// in the parent's rollup.
	ContributesToRollup bool `json:"contributes_to_rollup"`
}

// ActivityNode is one node of the course hierarchy. Structure is fixed at
// tree-construction time; all mutable tracking lives in ActivityState.
type ActivityNode struct {
	// ActivityID is the stable identifier of the node, unique within a course.
	ActivityID string `json:"activity_id"`

	// Title is the human-readable name.
	Title string `json:"title"`

	// ParentID is the identifier of the parent node; empty for the root.
	ParentID string `json:"parent_id"`

	// ChildIDs lists the children in sibling order. The order is significant
	// for continue/previous traversal.
	ChildIDs []string `json:"child_ids"`

	// Leaf marks a directly launchable content activity. Leaves have no
	// children.
	Leaf bool `json:"leaf"`

	// Visible controls whether the subtree participates in traversal and
	// choice at all.
	Visible bool `json:"visible"`

	// LaunchHref is the content location delivered for a leaf.
	LaunchHref string `json:"launch_href,omitempty"`

	// LaunchParameters is passed to the runtime player untouched.
	LaunchParameters string `json:"launch_parameters,omitempty"`

	// ControlMode gates navigation among this activity's children.
	ControlMode ControlMode `json:"control_mode"`

	// AttemptLimit caps attempts on this activity; zero means unlimited.
	AttemptLimit int `json:"attempt_limit,omitempty"`

	// CompletionThreshold, when set, derives a cluster's completion from its
	// rolled-up measure instead of child completion counting.
	CompletionThreshold *float64 `json:"completion_threshold,omitempty"`

	// MeasureWeight is the weight of this activity's measure in the parent's
	// measure rollup. Defaults to 1.
	MeasureWeight float64 `json:"measure_weight"`

	// Objectives holds the activity's objectives. The first objective is the
	// primary one used for satisfaction tracking.
	Objectives []Objective `json:"objectives,omitempty"`

	// PreconditionRules are evaluated before delivery or traversal entry.
	PreconditionRules []SequencingRule `json:"precondition_rules,omitempty"`

	// ExitRules are evaluated when an attempt on the activity ends.
	ExitRules []SequencingRule `json:"exit_rules,omitempty"`

	// PostconditionRules are evaluated after an attempt ends to redirect
	// sequencing.
	PostconditionRules []SequencingRule `json:"postcondition_rules,omitempty"`

	// RollupRules override the default rollup policies for this activity.
	RollupRules []RollupRule `json:"rollup_rules,omitempty"`
}

// ContributesToRollup reports whether this activity participates in its
// parent's rollup. An activity without objectives contributes by default;
// otherwise the primary objective decides.
func (n *ActivityNode) ContributesToRollup() bool {
	if len(n.Objectives) == 0 {
		return true
	}
	return n.Objectives[0].ContributesToRollup
}

// PrimaryObjective returns the activity's primary objective, or nil when the
// activity has none.
func (n *ActivityNode) PrimaryObjective() *Objective {
	if len(n.Objectives) == 0 {
		return nil
	}
	return &n.Objectives[0]
}
