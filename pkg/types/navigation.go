// Navigation request and response types exchanged with the runtime layer.
package types

// Navigation request types.
const (
	RequestStart      = "start"
	RequestResume     = "resume"
	RequestContinue   = "continue"
	RequestPrevious   = "previous"
	RequestChoice     = "choice"
	RequestExit       = "exit"
	RequestExitAll    = "exitAll"
	RequestAbandon    = "abandon"
	RequestAbandonAll = "abandonAll"
	RequestSuspendAll = "suspendAll"
)

// validRequestTypes is the set of recognized navigation request types.
var validRequestTypes = map[string]bool{
	RequestStart:      true,
	RequestResume:     true,
	RequestContinue:   true,
	RequestPrevious:   true,
	RequestChoice:     true,
	RequestExit:       true,
	RequestExitAll:    true,
	RequestAbandon:    true,
	RequestAbandonAll: true,
	RequestSuspendAll: true,
}

// Delivery request types.
const (
	DeliveryStart  = "start"
	DeliveryResume = "resume"
)

// Termination request types.
const (
	TerminationExit    = "exit"
	TerminationExitAll = "exitAll"
	TerminationSuspend = "suspend"
	TerminationAbandon = "abandon"
)

// Sequencing exception codes. These are expected, testable outcomes carried
// in the NavigationResponse, never Go errors.
const (
	ExceptionNone                = ""
	ExceptionNoActivityAvailable = "noActivityAvailable"
	ExceptionChoiceNotAvailable  = "choiceNotAvailable"
	ExceptionPreviousForbidden   = "previousNavigationForbidden"
	ExceptionRequestNotValid     = "requestNotValidForLifecycle"
	ExceptionNoCurrentActivity   = "noCurrentActivity"
	ExceptionUnknownRequest      = "unknownRequestType"
)

// NavigationRequest is a learner- or system-initiated navigation intent.
type NavigationRequest struct {
	// Type is one of the Request constants.
	Type string `json:"type"`

	// TargetID is the chosen activity for choice requests; empty otherwise.
	TargetID string `json:"target_id,omitempty"`
}

// Validate checks that the request is well-formed.
func (r NavigationRequest) Validate() error {
	if !validRequestTypes[r.Type] {
		return ErrUnknownRequestType
	}
	if r.Type == RequestChoice && r.TargetID == "" {
		return ErrChoiceTargetMissing
	}
	return nil
}

// DeliveryRequest instructs the runtime player to launch a leaf activity.
type DeliveryRequest struct {
	// Type is DeliveryStart or DeliveryResume.
	Type string `json:"type"`

	ActivityID string `json:"activity_id"`
	LaunchHref string `json:"launch_href,omitempty"`
	Parameters string `json:"parameters,omitempty"`
}

// TerminationRequest instructs the runtime player to unload content.
type TerminationRequest struct {
	// Type is one of the Termination constants.
	Type string `json:"type"`

	// Reason explains the termination for diagnostics.
	Reason string `json:"reason,omitempty"`
}

// NavigationResponse is the outcome of processing one navigation request.
// Exactly one of Delivery and Termination is set on success; neither is set
// when the request was rejected with an exception.
type NavigationResponse struct {
	// Success reports whether the request was carried out and the session
	// mutated.
	Success bool `json:"success"`

	// CurrentActivityID is the session cursor after processing.
	CurrentActivityID string `json:"current_activity_id"`

	Delivery    *DeliveryRequest    `json:"delivery,omitempty"`
	Termination *TerminationRequest `json:"termination,omitempty"`

	// Exception is a sequencing exception code; empty on success.
	Exception string `json:"exception,omitempty"`
}
