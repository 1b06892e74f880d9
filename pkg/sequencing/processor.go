// Navigation request processor: the state machine that converts navigation
// intents into delivery or termination instructions.
package sequencing

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// Processor integrity errors. These indicate programming or data errors and
// abort processing; they are never returned as sequencing exceptions.
var (
	ErrNilSession     = errors.New("session is nil")
	ErrCourseMismatch = errors.New("session course does not match tree")
	ErrNotLeaf        = errors.New("activity is not a leaf")
)

// Processor orchestrates rule evaluation, tree traversal, and rollup for one
// course's activity tree. It holds no mutable state and is safe for
// concurrent use across sessions; the caller must not process two requests
// for the same session concurrently.
type Processor struct {
	tree *ActivityTree
}

// NewProcessor creates a Processor over a validated activity tree.
func NewProcessor(tree *ActivityTree) *Processor {
	return &Processor{tree: tree}
}

// Tree returns the activity tree the processor operates on.
func (p *Processor) Tree() *ActivityTree { return p.tree }

// Process handles one navigation request against the session and returns
// the resulting session and response.
//
// The transition is atomic: the processor works on a deep copy and returns
// it only when the whole sequence succeeded. On a sequencing exception the
// original session is returned unchanged alongside a response carrying the
// exception code. Integrity violations return a non-nil error and no
// response.
func (p *Processor) Process(session *types.SequencingSession, request types.NavigationRequest) (*types.SequencingSession, types.NavigationResponse, error) {
	if session == nil {
		return nil, types.NavigationResponse{}, ErrNilSession
	}
	if session.CourseID != p.tree.CourseID() {
		return nil, types.NavigationResponse{}, fmt.Errorf("%w: session %s, tree %s", ErrCourseMismatch, session.CourseID, p.tree.CourseID())
	}
	if err := request.Validate(); err != nil {
		return session, p.reject(session, types.ExceptionUnknownRequest), nil
	}

	switch request.Type {
	case types.RequestStart:
		return p.processStart(session)
	case types.RequestResume:
		return p.processResume(session)
	case types.RequestContinue:
		return p.processContinue(session)
	case types.RequestPrevious:
		return p.processPrevious(session)
	case types.RequestChoice:
		return p.processChoice(session, request.TargetID)
	case types.RequestExit:
		return p.processExit(session, false)
	case types.RequestExitAll:
		return p.processExitAll(session, true)
	case types.RequestAbandon:
		return p.processExit(session, true)
	case types.RequestAbandonAll:
		return p.processExitAll(session, false)
	case types.RequestSuspendAll:
		return p.processSuspendAll(session)
	default:
		return session, p.reject(session, types.ExceptionUnknownRequest), nil
	}
}

// reject builds the unchanged-session exception response.
func (p *Processor) reject(session *types.SequencingSession, code string) types.NavigationResponse {
	return types.NavigationResponse{
		Success:           false,
		CurrentActivityID: session.Global.CurrentActivityID,
		Exception:         code,
	}
}

// processStart delivers the tree's first deliverable leaf.
// Valid only from notStarted.
func (p *Processor) processStart(session *types.SequencingSession) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleNotStarted {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}

	next := session.Clone()
	leafID, found, err := p.flowFrom(next, "", true)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if !found {
		return session, p.reject(session, types.ExceptionNoActivityAvailable), nil
	}

	if err := next.Begin(); err != nil {
		return nil, types.NavigationResponse{}, err
	}
	resp, err := p.deliver(next, leafID, types.DeliveryStart)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// processResume restores the suspended activity as current.
// Valid only from suspended.
func (p *Processor) processResume(session *types.SequencingSession) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleSuspended {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	suspendedID := session.Global.SuspendedActivityID
	if suspendedID == "" || !p.tree.Contains(suspendedID) {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}

	next := session.Clone()
	if err := next.Reactivate(); err != nil {
		return nil, types.NavigationResponse{}, err
	}
	next.Global.SuspendedActivityID = ""
	state := next.State(suspendedID)
	state.Suspended = false
	for _, ancestor := range p.tree.AncestorsOf(suspendedID) {
		next.State(ancestor.ActivityID).Suspended = false
	}

	resp, err := p.deliver(next, suspendedID, types.DeliveryResume)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// processContinue ends the current attempt and flows forward to the next
// eligible leaf. When no next leaf exists the session is left untouched and
// the response carries an exit-all termination with the no-activity
// exception; repeating the request yields the identical outcome.
//
// An exit rule firing "exit" coincides with the attempt end Continue
// performs anyway, and a postcondition "continue" coincides with the default
// forward flow, so both fall through to the unmatched path.
func (p *Processor) processContinue(session *types.SequencingSession) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	currentID := session.Global.CurrentActivityID
	if currentID == "" {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}
	current, err := p.tree.Node(currentID)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}

	next := session.Clone()

	exitAction, err := EvaluateRules(current, next, types.RuleExit)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	switch exitAction {
	case types.ActionExitAll:
		return p.terminateAll(session, next, currentID, true, "exit rule")
	case types.ActionExitParent:
		return p.exitParent(session, next, currentID)
	}

	if err := p.endAttempt(next, currentID, true); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	postAction, err := EvaluateRules(current, next, types.RulePostcondition)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	switch postAction {
	case types.ActionRetry:
		resp, err := p.deliver(next, currentID, types.DeliveryStart)
		if err != nil {
			return nil, types.NavigationResponse{}, err
		}
		return next, resp, nil
	case types.ActionExitAll:
		return p.terminateAll(session, next, currentID, true, "postcondition rule")
	case types.ActionPrevious:
		leafID, found, err := p.flowFrom(next, currentID, false)
		if err != nil {
			return nil, types.NavigationResponse{}, err
		}
		if !found {
			return session, p.reject(session, types.ExceptionNoActivityAvailable), nil
		}
		resp, err := p.deliver(next, leafID, types.DeliveryStart)
		if err != nil {
			return nil, types.NavigationResponse{}, err
		}
		return next, resp, nil
	}

	leafID, found, err := p.flowFrom(next, currentID, true)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if !found {
		resp := p.reject(session, types.ExceptionNoActivityAvailable)
		resp.Termination = &types.TerminationRequest{
			Type:   types.TerminationExitAll,
			Reason: "no next activity",
		}
		return session, resp, nil
	}

	resp, err := p.deliver(next, leafID, types.DeliveryStart)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// processPrevious mirrors Continue in the reverse traversal direction.
// Forbidden when the current activity's nearest ancestor is forward-only.
func (p *Processor) processPrevious(session *types.SequencingSession) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	currentID := session.Global.CurrentActivityID
	if currentID == "" {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}
	if _, err := p.tree.Node(currentID); err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if parent := p.tree.ParentOf(currentID); parent != nil && parent.ControlMode.ForwardOnly {
		return session, p.reject(session, types.ExceptionPreviousForbidden), nil
	}

	next := session.Clone()
	if err := p.endAttempt(next, currentID, true); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	leafID, found, err := p.flowFrom(next, currentID, false)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if !found {
		return session, p.reject(session, types.ExceptionNoActivityAvailable), nil
	}

	resp, err := p.deliver(next, leafID, types.DeliveryStart)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// processChoice delivers a learner-chosen activity. The target must be
// offered in the session's available children, its parent must permit
// choice, and its preconditions must not hide or disable it; otherwise the
// request is rejected without mutating state.
func (p *Processor) processChoice(session *types.SequencingSession, targetID string) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	target, err := p.tree.Node(targetID)
	if err != nil {
		// An id outside the tree is a choice the learner was never offered.
		return session, p.reject(session, types.ExceptionChoiceNotAvailable), nil
	}

	if !containsID(session.Global.AvailableChildren, targetID) {
		return session, p.reject(session, types.ExceptionChoiceNotAvailable), nil
	}
	parent := p.tree.ParentOf(targetID)
	if parent == nil || !parent.ControlMode.Choice {
		return session, p.reject(session, types.ExceptionChoiceNotAvailable), nil
	}

	preAction, err := EvaluateRules(target, session, types.RulePrecondition)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if preAction == types.ActionHiddenFromChoice || preAction == types.ActionDisabled {
		return session, p.reject(session, types.ExceptionChoiceNotAvailable), nil
	}

	next := session.Clone()
	if currentID := next.Global.CurrentActivityID; currentID != "" && currentID != targetID {
		if err := p.endAttempt(next, currentID, true); err != nil {
			return nil, types.NavigationResponse{}, err
		}
	}

	leafID := targetID
	if !target.Leaf {
		id, found, err := p.firstLeafIn(next, targetID)
		if err != nil {
			return nil, types.NavigationResponse{}, err
		}
		if !found {
			return session, p.reject(session, types.ExceptionNoActivityAvailable), nil
		}
		leafID = id
	}

	resp, err := p.deliver(next, leafID, types.DeliveryStart)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// processExit ends the current attempt and hands the cursor to the parent
// cluster. With abandon set, completion rollup is skipped and the attempt's
// completion status stays whatever it was before.
func (p *Processor) processExit(session *types.SequencingSession, abandon bool) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	currentID := session.Global.CurrentActivityID
	if currentID == "" {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}
	if _, err := p.tree.Node(currentID); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	next := session.Clone()
	if err := p.endAttempt(next, currentID, !abandon); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	parentID := ""
	if parent := p.tree.ParentOf(currentID); parent != nil {
		parentID = parent.ActivityID
	}
	next.Global.CurrentActivityID = parentID
	next.Global.AvailableChildren = nil

	termType := types.TerminationExit
	reason := "activity exited"
	if abandon {
		termType = types.TerminationAbandon
		reason = "activity abandoned"
	}
	return next, types.NavigationResponse{
		Success:           true,
		CurrentActivityID: parentID,
		Termination:       &types.TerminationRequest{Type: termType, Reason: reason},
	}, nil
}

// processExitAll terminates the current activity and every ancestor, then
// the session. With rollup disabled (abandon all), completion status is left
// untouched at every level.
func (p *Processor) processExitAll(session *types.SequencingSession, rollup bool) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	currentID := session.Global.CurrentActivityID
	if currentID == "" {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}
	if _, err := p.tree.Node(currentID); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	next := session.Clone()
	reason := "all activities exited"
	if !rollup {
		reason = "all activities abandoned"
	}
	return p.terminateAll(session, next, currentID, rollup, reason)
}

// processSuspendAll records the suspended activity and parks the session.
func (p *Processor) processSuspendAll(session *types.SequencingSession) (*types.SequencingSession, types.NavigationResponse, error) {
	if session.Lifecycle != types.LifecycleActive {
		return session, p.reject(session, types.ExceptionRequestNotValid), nil
	}
	currentID := session.Global.CurrentActivityID
	if currentID == "" {
		return session, p.reject(session, types.ExceptionNoCurrentActivity), nil
	}
	if _, err := p.tree.Node(currentID); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	next := session.Clone()
	state := next.State(currentID)
	state.Active = false
	state.Suspended = true
	for _, ancestor := range p.tree.AncestorsOf(currentID) {
		as := next.State(ancestor.ActivityID)
		as.Active = false
		as.Suspended = true
	}
	next.Global.SuspendedActivityID = currentID
	next.Global.CurrentActivityID = ""
	next.Global.AvailableChildren = nil
	if err := next.Suspend(); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	return next, types.NavigationResponse{
		Success:     true,
		Termination: &types.TerminationRequest{Type: types.TerminationSuspend, Reason: "session suspended"},
	}, nil
}

// terminateAll ends the current attempt and all ancestor attempts, running
// rollup at each level when requested, and terminates the session.
func (p *Processor) terminateAll(original, next *types.SequencingSession, currentID string, rollup bool, reason string) (*types.SequencingSession, types.NavigationResponse, error) {
	if err := p.endAttempt(next, currentID, rollup); err != nil {
		return nil, types.NavigationResponse{}, err
	}
	for _, ancestor := range p.tree.AncestorsOf(currentID) {
		as := next.State(ancestor.ActivityID)
		as.Active = false
		as.Suspended = false
	}
	next.Global.CurrentActivityID = ""
	next.Global.AvailableChildren = nil
	if err := next.Terminate(); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	termType := types.TerminationExitAll
	if !rollup {
		termType = types.TerminationAbandon
	}
	return next, types.NavigationResponse{
		Success:     true,
		Termination: &types.TerminationRequest{Type: termType, Reason: reason},
	}, nil
}

// exitParent ends the current attempt and the enclosing cluster's attempt,
// then flows forward from beyond the cluster's subtree. Firing on a child of
// the root behaves like exit-all past the end: the session is left untouched
// with the no-activity exception.
func (p *Processor) exitParent(original, next *types.SequencingSession, currentID string) (*types.SequencingSession, types.NavigationResponse, error) {
	parent := p.tree.ParentOf(currentID)
	if parent == nil {
		return p.terminateAll(original, next, currentID, true, "exit rule")
	}

	if err := p.endAttempt(next, currentID, true); err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if err := p.endAttempt(next, parent.ActivityID, true); err != nil {
		return nil, types.NavigationResponse{}, err
	}

	leafID, found, err := p.flowFrom(next, p.lastDescendantOf(parent.ActivityID), true)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	if !found {
		resp := p.reject(original, types.ExceptionNoActivityAvailable)
		resp.Termination = &types.TerminationRequest{
			Type:   types.TerminationExitAll,
			Reason: "no next activity",
		}
		return original, resp, nil
	}

	resp, err := p.deliver(next, leafID, types.DeliveryStart)
	if err != nil {
		return nil, types.NavigationResponse{}, err
	}
	return next, resp, nil
}

// lastDescendantOf returns the last pre-order id inside the subtree rooted
// at rootID, so forward flow from it leaves the subtree entirely.
func (p *Processor) lastDescendantOf(rootID string) string {
	last := rootID
	for _, id := range p.tree.PreOrder() {
		if id == rootID || p.tree.IsDescendant(rootID, id) {
			last = id
		}
	}
	return last
}

// endAttempt closes the attempt on an activity and rolls its state up to
// the root. Abandonment passes includeCompletion=false so completion rollup
// is bypassed while the attempt still ends.
func (p *Processor) endAttempt(session *types.SequencingSession, activityID string, includeCompletion bool) error {
	state := session.State(activityID)
	state.Active = false
	state.Suspended = false
	return Rollup(p.tree, session, activityID, includeCompletion)
}

// deliver marks a leaf as the current activity, starts or resumes its
// attempt, and recomputes the available-children set for choice navigation.
func (p *Processor) deliver(session *types.SequencingSession, leafID, deliveryType string) (types.NavigationResponse, error) {
	leaf, err := p.tree.Node(leafID)
	if err != nil {
		return types.NavigationResponse{}, err
	}
	if !leaf.Leaf {
		return types.NavigationResponse{}, fmt.Errorf("%w: %s", ErrNotLeaf, leafID)
	}

	state := session.State(leafID)
	state.Active = true
	if deliveryType == types.DeliveryStart {
		state.Attempted = true
		state.AttemptCount++
	}
	for _, ancestor := range p.tree.AncestorsOf(leafID) {
		as := session.State(ancestor.ActivityID)
		as.Active = true
		if deliveryType == types.DeliveryStart && !as.Attempted {
			as.Attempted = true
			as.AttemptCount++
		}
	}

	session.Global.CurrentActivityID = leafID
	available, err := p.availableChildren(session, leafID)
	if err != nil {
		return types.NavigationResponse{}, err
	}
	session.Global.AvailableChildren = available

	return types.NavigationResponse{
		Success:           true,
		CurrentActivityID: leafID,
		Delivery: &types.DeliveryRequest{
			Type:       deliveryType,
			ActivityID: leafID,
			LaunchHref: leaf.LaunchHref,
			Parameters: leaf.LaunchParameters,
		},
	}, nil
}

// availableChildren computes the activity ids offered for choice navigation
// from the delivered leaf. Every choice-enabled ancestor contributes its
// children, nearest cluster first, so targets in sibling clusters stay
// reachable. An ancestor with choice-exit disabled caps the walk: while it is
// active, nothing outside its subtree is offered. Hidden, disabled, and
// invisible candidates are excluded.
func (p *Processor) availableChildren(session *types.SequencingSession, leafID string) ([]string, error) {
	var available []string
	for _, ancestor := range p.tree.AncestorsOf(leafID) {
		if ancestor.ControlMode.Choice {
			for _, child := range p.tree.ChildrenOf(ancestor.ActivityID) {
				if !child.Visible {
					continue
				}
				action, err := EvaluateRules(child, session, types.RulePrecondition)
				if err != nil {
					return nil, err
				}
				if action == types.ActionHiddenFromChoice || action == types.ActionDisabled {
					continue
				}
				available = append(available, child.ActivityID)
			}
		}
		if !ancestor.ControlMode.ChoiceExit {
			break
		}
	}
	return available, nil
}

// flowFrom finds the next deliverable leaf in pre-order, forward or
// backward, strictly after (or before) fromID. An empty fromID starts at
// the tree boundary. The boolean result distinguishes the expected
// no-activity-available outcome from an error.
func (p *Processor) flowFrom(session *types.SequencingSession, fromID string, forward bool) (string, bool, error) {
	order := p.tree.PreOrder()
	start := 0
	if fromID != "" {
		idx := -1
		for i, id := range order {
			if id == fromID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", false, fmt.Errorf("%w: %s", types.ErrUnknownActivity, fromID)
		}
		if forward {
			start = idx + 1
		} else {
			start = idx - 1
		}
	} else if !forward {
		start = len(order) - 1
	}

	step := 1
	if !forward {
		step = -1
	}
	for i := start; i >= 0 && i < len(order); i += step {
		node, err := p.tree.Node(order[i])
		if err != nil {
			return "", false, err
		}
		if !node.Leaf {
			continue
		}
		ok, err := p.deliverableViaFlow(session, node)
		if err != nil {
			return "", false, err
		}
		if ok {
			return node.ActivityID, true, nil
		}
	}
	return "", false, nil
}

// firstLeafIn finds the first deliverable leaf within the subtree rooted at
// rootID, used when a cluster is chosen directly.
func (p *Processor) firstLeafIn(session *types.SequencingSession, rootID string) (string, bool, error) {
	for _, id := range p.tree.PreOrder() {
		if id != rootID && !p.tree.IsDescendant(rootID, id) {
			continue
		}
		node, err := p.tree.Node(id)
		if err != nil {
			return "", false, err
		}
		if !node.Leaf {
			continue
		}
		ok, err := p.deliverable(session, node)
		if err != nil {
			return "", false, err
		}
		if ok {
			return node.ActivityID, true, nil
		}
	}
	return "", false, nil
}

// deliverableViaFlow reports whether a leaf may be reached by system-directed
// flow: the leaf itself must be deliverable and every cluster above it must
// be visible, not skipped, and permit flow.
func (p *Processor) deliverableViaFlow(session *types.SequencingSession, leaf *types.ActivityNode) (bool, error) {
	ok, err := p.deliverable(session, leaf)
	if err != nil || !ok {
		return false, err
	}
	for _, ancestor := range p.tree.AncestorsOf(leaf.ActivityID) {
		if !ancestor.Visible || !ancestor.ControlMode.Flow {
			return false, nil
		}
		action, err := EvaluateRules(ancestor, session, types.RulePrecondition)
		if err != nil {
			return false, err
		}
		if action == types.ActionSkip || action == types.ActionDisabled {
			return false, nil
		}
	}
	return true, nil
}

// deliverable reports whether a leaf itself may be delivered: visible, not
// skipped or disabled by preconditions, and within its attempt limit.
func (p *Processor) deliverable(session *types.SequencingSession, leaf *types.ActivityNode) (bool, error) {
	if !leaf.Visible {
		return false, nil
	}
	action, err := EvaluateRules(leaf, session, types.RulePrecondition)
	if err != nil {
		return false, err
	}
	if action == types.ActionSkip || action == types.ActionDisabled {
		return false, nil
	}
	if leaf.AttemptLimit > 0 && session.StateOf(leaf.ActivityID).AttemptCount >= leaf.AttemptLimit {
		return false, nil
	}
	return true, nil
}
