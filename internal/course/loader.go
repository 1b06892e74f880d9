// Package course loads YAML course definitions into validated activity
// trees. This is a CLI and test convenience for content produced by the
// ingestion pipeline, not a SCORM manifest parser.
package course

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pathway/pkg/sequencing"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

// courseYAML is the top-level document shape.
type courseYAML struct {
	CourseID string   `yaml:"course_id"`
	Title    string   `yaml:"title"`
	Root     nodeYAML `yaml:"root"`
}

// nodeYAML is one activity in the definition. Children nest directly; an
// activity without children is a launchable leaf. Pointer fields
// distinguish "omitted" from explicit false so defaults can apply.
type nodeYAML struct {
	ID               string `yaml:"id"`
	Title            string `yaml:"title"`
	Visible          *bool  `yaml:"visible"`
	LaunchHref       string `yaml:"launch_href"`
	LaunchParameters string `yaml:"launch_parameters"`

	ControlMode struct {
		Choice      *bool `yaml:"choice"`
		ChoiceExit  *bool `yaml:"choice_exit"`
		Flow        *bool `yaml:"flow"`
		ForwardOnly *bool `yaml:"forward_only"`
	} `yaml:"control_mode"`

	AttemptLimit        int              `yaml:"attempt_limit"`
	CompletionThreshold *float64         `yaml:"completion_threshold"`
	MeasureWeight       *float64         `yaml:"measure_weight"`
	Objectives          []objectiveYAML  `yaml:"objectives"`
	PreconditionRules   []ruleYAML       `yaml:"precondition_rules"`
	ExitRules           []ruleYAML       `yaml:"exit_rules"`
	PostconditionRules  []ruleYAML       `yaml:"postcondition_rules"`
	RollupRules         []rollupRuleYAML `yaml:"rollup_rules"`
	Children            []nodeYAML       `yaml:"children"`
}

type objectiveYAML struct {
	ID                   string  `yaml:"id"`
	SatisfiedByMeasure   bool    `yaml:"satisfied_by_measure"`
	MinNormalizedMeasure float64 `yaml:"min_normalized_measure"`
	ContributesToRollup  *bool   `yaml:"contributes_to_rollup"`
}

type conditionYAML struct {
	Condition string `yaml:"condition"`
	Negate    bool   `yaml:"negate"`
}

type ruleYAML struct {
	Combination string          `yaml:"combination"`
	Conditions  []conditionYAML `yaml:"conditions"`
	Action      string          `yaml:"action"`
}

type rollupRuleYAML struct {
	ChildActivitySet string          `yaml:"child_activity_set"`
	MinimumCount     int             `yaml:"minimum_count"`
	MinimumPercent   float64         `yaml:"minimum_percent"`
	Combination      string          `yaml:"combination"`
	Conditions       []conditionYAML `yaml:"conditions"`
	Action           string          `yaml:"action"`
}

// LoadFile reads a YAML course definition from disk and returns the
// validated course. Structural problems are reported with the tree's
// integrity errors.
func LoadFile(path string) (*types.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course definition: %w", err)
	}
	return Load(data)
}

// Load parses a YAML course definition and validates the resulting tree.
func Load(data []byte) (*types.Course, error) {
	var doc courseYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse course definition: %w", err)
	}
	if doc.CourseID == "" {
		return nil, fmt.Errorf("course definition: %w", types.ErrInvalidID)
	}
	if doc.Root.ID == "" {
		return nil, types.ErrNoRoot
	}

	course := &types.Course{
		CourseID:  doc.CourseID,
		Title:     doc.Title,
		RootID:    doc.Root.ID,
		CreatedAt: time.Now().UTC(),
	}
	flatten(&doc.Root, "", course)

	// Building the tree runs the full structural validation.
	if _, err := sequencing.NewTree(course); err != nil {
		return nil, err
	}
	return course, nil
}

// flatten converts the nested definition into the course's node arena,
// applying defaults: activities are visible, clusters permit flow and
// choice, and measures weigh 1 unless stated otherwise.
func flatten(n *nodeYAML, parentID string, course *types.Course) {
	node := &types.ActivityNode{
		ActivityID:          n.ID,
		Title:               n.Title,
		ParentID:            parentID,
		Leaf:                len(n.Children) == 0,
		Visible:             boolOr(n.Visible, true),
		LaunchHref:          n.LaunchHref,
		LaunchParameters:    n.LaunchParameters,
		AttemptLimit:        n.AttemptLimit,
		CompletionThreshold: n.CompletionThreshold,
		MeasureWeight:       floatOr(n.MeasureWeight, 1),
		ControlMode: types.ControlMode{
			Choice:      boolOr(n.ControlMode.Choice, true),
			ChoiceExit:  boolOr(n.ControlMode.ChoiceExit, true),
			Flow:        boolOr(n.ControlMode.Flow, true),
			ForwardOnly: boolOr(n.ControlMode.ForwardOnly, false),
		},
		PreconditionRules:  convertRules(n.PreconditionRules),
		ExitRules:          convertRules(n.ExitRules),
		PostconditionRules: convertRules(n.PostconditionRules),
	}

	for _, o := range n.Objectives {
		node.Objectives = append(node.Objectives, types.Objective{
			ObjectiveID:          o.ID,
			SatisfiedByMeasure:   o.SatisfiedByMeasure,
			MinNormalizedMeasure: o.MinNormalizedMeasure,
			ContributesToRollup:  boolOr(o.ContributesToRollup, true),
		})
	}
	for _, r := range n.RollupRules {
		node.RollupRules = append(node.RollupRules, types.RollupRule{
			ChildActivitySet: r.ChildActivitySet,
			MinimumCount:     r.MinimumCount,
			MinimumPercent:   r.MinimumPercent,
			Combination:      r.Combination,
			Conditions:       convertConditions(r.Conditions),
			Action:           r.Action,
		})
	}
	for i := range n.Children {
		node.ChildIDs = append(node.ChildIDs, n.Children[i].ID)
	}

	course.Nodes = append(course.Nodes, node)
	for i := range n.Children {
		flatten(&n.Children[i], n.ID, course)
	}
}

func convertRules(rules []ruleYAML) []types.SequencingRule {
	var out []types.SequencingRule
	for _, r := range rules {
		out = append(out, types.SequencingRule{
			Combination: r.Combination,
			Conditions:  convertConditions(r.Conditions),
			Action:      r.Action,
		})
	}
	return out
}

func convertConditions(conditions []conditionYAML) []types.RuleCondition {
	var out []types.RuleCondition
	for _, c := range conditions {
		out = append(out, types.RuleCondition{Condition: c.Condition, Negate: c.Negate})
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
